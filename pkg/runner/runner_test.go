package runner

import (
	"testing"

	"github.com/Azure/template-analyzer-go/pkg/expression"
	"github.com/Azure/template-analyzer-go/pkg/rules"
)

type fakeView struct {
	byType map[string][]expression.ResourceRef
}

func (v fakeView) ResourcesOfType(resourceType string) []expression.ResourceRef {
	return v.byType[resourceType]
}

func TestAnalyzeTagsFindingsWithRuleMetadata(t *testing.T) {
	catalog, err := rules.Load([]byte(`[
		{"id":"TA-1","description":"d","severity":2,"evaluation":{
			"resourceType":"Microsoft.Web/sites","path":"properties.httpsOnly","equals":true
		}}
	]`))
	if err != nil {
		t.Fatal(err)
	}

	view := fakeView{byType: map[string][]expression.ResourceRef{
		"Microsoft.Web/sites": {{
			Path: "resources[0]",
			Resource: map[string]interface{}{
				"properties": map[string]interface{}{"httpsOnly": false},
			},
		}},
	}}

	findings, err := Analyze(catalog, view, nil, "template.json")
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d: %+v", len(findings), findings)
	}
	f := findings[0]
	if f.RuleID != "TA-1" || f.FileIdentifier != "template.json" || f.Passed {
		t.Errorf("unexpected finding: %+v", f)
	}
}

func TestAnalyzeKubernetesVersionRule(t *testing.T) {
	catalog, err := rules.Load([]byte(`[
		{"id":"TA-000025","description":"unsupported k8s version","severity":1,"evaluation":{
			"resourceType":"Microsoft.ContainerService/managedClusters",
			"allOf":[
				{"not":{"path":"properties.kubernetesVersion","regex":"^1\\.11\\..*$"}},
				{"not":{"path":"properties.kubernetesVersion","regex":"^1\\.12\\..*$"}}
			]
		}}
	]`))
	if err != nil {
		t.Fatal(err)
	}

	cluster := func(version string) fakeView {
		return fakeView{byType: map[string][]expression.ResourceRef{
			"Microsoft.ContainerService/managedClusters": {{
				Path: "resources[0]",
				Resource: map[string]interface{}{
					"properties": map[string]interface{}{"kubernetesVersion": version},
				},
			}},
		}}
	}

	findings, err := Analyze(catalog, cluster("1.11.8"), nil, "aks.json")
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 || findings[0].Passed {
		t.Fatalf("expected 1.11.8 to fail the rule, got %+v", findings)
	}

	findings, err = Analyze(catalog, cluster("1.14.0"), nil, "aks.json")
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 || !findings[0].Passed {
		t.Fatalf("expected 1.14.0 to pass the rule, got %+v", findings)
	}
}

func TestAnalyzeNoMatchingResourceTypeYieldsNoFindings(t *testing.T) {
	catalog, err := rules.Load([]byte(`[
		{"id":"TA-1","description":"d","severity":2,"evaluation":{
			"resourceType":"Microsoft.Network/virtualNetworks","path":"x","exists":true
		}}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	findings, err := Analyze(catalog, fakeView{}, nil, "t.json")
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Errorf("expected no findings, got %+v", findings)
	}
}
