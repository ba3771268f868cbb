package template

import "testing"

func TestExpandedTemplateOriginalPathLongestPrefixMatch(t *testing.T) {
	expanded := &ExpandedTemplate{
		ResourceMappings: map[string]string{
			"resources[0]":              "resources[0]",
			"resources[0].resources[0]": "resources[1]",
		},
	}

	cases := []struct {
		name string
		path string
		want string
	}{
		{
			name: "exact match on a resource root",
			path: "resources[0]",
			want: "resources[0]",
		},
		{
			name: "leaf path under the shallower mapping",
			path: "resources[0].properties.httpsOnly",
			want: "resources[0].properties.httpsOnly",
		},
		{
			name: "leaf path under the deeper, more specific mapping",
			path: "resources[0].resources[0].properties.cors.allowedOrigins[0]",
			want: "resources[1].properties.cors.allowedOrigins[0]",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := expanded.OriginalPath(c.path)
			if !ok {
				t.Fatalf("expected a mapping for %s", c.path)
			}
			if got != c.want {
				t.Errorf("OriginalPath(%q) = %q, want %q", c.path, got, c.want)
			}
		})
	}
}

func TestExpandedTemplateOriginalPathNoMapping(t *testing.T) {
	expanded := &ExpandedTemplate{ResourceMappings: map[string]string{}}
	if _, ok := expanded.OriginalPath("resources[0].properties.x"); ok {
		t.Error("expected no mapping to be found")
	}
}
