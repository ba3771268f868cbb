package template

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"go.uber.org/zap"
)

func TestProcessCopyLoopExpansion(t *testing.T) {
	tmplJSON := `{
		"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
		"resources": [
			{
				"type": "Microsoft.Storage/storageAccounts",
				"apiVersion": "2021-09-01",
				"name": "[concat('acct', copyIndex())]",
				"copy": {"name": "loop", "count": 3},
				"properties": {}
			}
		]
	}`

	expanded, err := Process([]byte(tmplJSON), nil, Options{FunctionLibrary: concatLib{}}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	refs := expanded.ResourcesOfType("Microsoft.Storage/storageAccounts")
	if len(refs) != 3 {
		t.Fatalf("expected 3 resources, got %d", len(refs))
	}
	seen := map[string]bool{}
	for _, r := range refs {
		name, _ := r.Resource["name"].(string)
		seen[name] = true
	}
	for _, want := range []string{"acct0", "acct1", "acct2"} {
		if !seen[want] {
			t.Errorf("expected a resource named %q among copies, got %v", want, seen)
		}
	}

	for i := 0; i < 3; i++ {
		path := "resources[" + strconv.Itoa(i) + "]"
		orig, ok := expanded.ResourceMappings[path]
		if !ok {
			t.Fatalf("expected a mapping for %s", path)
		}
		if orig != "resources[0]" {
			t.Errorf("expected %s to map back to the prototype resources[0], got %s", path, orig)
		}
	}

	if len(expanded.FlattenedResources) != 3 {
		t.Fatalf("expected 3 flattened resources, got %d", len(expanded.FlattenedResources))
	}
}

func TestProcessMissingParametersGeneratesPlaceholder(t *testing.T) {
	tmplJSON := `{
		"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
		"parameters": {
			"storageName": {"type": "string", "minLength": 3}
		},
		"resources": [
			{
				"type": "Microsoft.Storage/storageAccounts",
				"apiVersion": "2021-09-01",
				"name": "[parameters('storageName')]",
				"properties": {}
			}
		]
	}`

	expanded, err := Process([]byte(tmplJSON), nil, Options{}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	refs := expanded.ResourcesOfType("Microsoft.Storage/storageAccounts")
	if len(refs) != 1 {
		t.Fatalf("expected 1 resource, got %d", len(refs))
	}
	name, _ := refs[0].Resource["name"].(string)
	if len(name) < 3 {
		t.Errorf("expected the placeholder to satisfy minLength 3, got %q", name)
	}
}

func TestProcessPropertyCopyExpansion(t *testing.T) {
	tmplJSON := `{
		"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
		"resources": [
			{
				"type": "Microsoft.Network/networkInterfaces",
				"apiVersion": "2022-01-01",
				"name": "nic1",
				"properties": {
					"copy": [
						{
							"name": "ipConfigurations",
							"count": 2,
							"input": {"name": "[concat('ipconfig', copyIndex('ipConfigurations'))]"}
						}
					]
				}
			}
		]
	}`

	expanded, err := Process([]byte(tmplJSON), nil, Options{FunctionLibrary: concatLib{}}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	refs := expanded.ResourcesOfType("Microsoft.Network/networkInterfaces")
	if len(refs) != 1 {
		t.Fatalf("expected 1 resource, got %d", len(refs))
	}
	props, _ := refs[0].Resource["properties"].(map[string]interface{})
	if _, stillThere := props["copy"]; stillThere {
		t.Error("expected the copy descriptor to be consumed during expansion")
	}
	configs, _ := props["ipConfigurations"].([]interface{})
	if len(configs) != 2 {
		t.Fatalf("expected 2 expanded ipConfigurations, got %d", len(configs))
	}
	for i, c := range configs {
		cfg, _ := c.(map[string]interface{})
		want := "ipconfig" + strconv.Itoa(i)
		if cfg["name"] != want {
			t.Errorf("ipConfigurations[%d].name = %v, want %q", i, cfg["name"], want)
		}
	}
}

func TestProcessDependsOnAttachment(t *testing.T) {
	tmplJSON := `{
		"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
		"resources": [
			{
				"type": "Microsoft.Storage/storageAccounts",
				"apiVersion": "2021-09-01",
				"name": "storage1",
				"properties": {}
			},
			{
				"type": "Microsoft.Web/sites",
				"apiVersion": "2021-02-01",
				"name": "site1",
				"dependsOn": ["storage1"],
				"properties": {}
			}
		]
	}`

	expanded, err := Process([]byte(tmplJSON), nil, Options{}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	storage, ok := expanded.FlattenedResources["storage1 microsoft.storage/storageaccounts"]
	if !ok {
		t.Fatalf("expected a flattened entry for storage1, got keys: %+v", keysOf(expanded.FlattenedResources))
	}
	children, _ := storage.Content["resources"].([]interface{})
	if len(children) != 1 {
		t.Fatalf("expected site1 to be attached under storage1, got %d children", len(children))
	}
	if _, ok := expanded.ResourceMappings["resources[0].resources[0]"]; !ok {
		t.Error("expected a propagated mapping for the attached dependent")
	}
}

func TestProcessDependsOnCycleIsSkipped(t *testing.T) {
	tmplJSON := `{
		"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
		"resources": [
			{
				"type": "Microsoft.Storage/storageAccounts",
				"apiVersion": "2021-09-01",
				"name": "storage1",
				"dependsOn": ["site1"],
				"properties": {}
			},
			{
				"type": "Microsoft.Web/sites",
				"apiVersion": "2021-02-01",
				"name": "site1",
				"dependsOn": ["storage1"],
				"properties": {}
			}
		]
	}`

	expanded, err := Process([]byte(tmplJSON), nil, Options{}, zap.NewNop())
	if err != nil {
		t.Fatalf("expected cyclic dependsOn to be skipped, not rejected outright: %v", err)
	}

	storage, ok := expanded.FlattenedResources["storage1 microsoft.storage/storageaccounts"]
	if !ok {
		t.Fatalf("expected a flattened entry for storage1, got keys: %+v", keysOf(expanded.FlattenedResources))
	}
	site, ok := expanded.FlattenedResources["site1 microsoft.web/sites"]
	if !ok {
		t.Fatalf("expected a flattened entry for site1, got keys: %+v", keysOf(expanded.FlattenedResources))
	}

	storageChildren, _ := storage.Content["resources"].([]interface{})
	siteChildren, _ := site.Content["resources"].([]interface{})
	if len(storageChildren) != 0 && len(siteChildren) != 0 {
		t.Fatalf("expected the second attachment that would close the cycle to be skipped, got %d storage children and %d site children", len(storageChildren), len(siteChildren))
	}
	if len(storageChildren)+len(siteChildren) != 1 {
		t.Fatalf("expected exactly one of the two mutual dependsOn references to attach, got %d storage children and %d site children", len(storageChildren), len(siteChildren))
	}
}

type concatLib struct{}

func (concatLib) Call(name string, args []interface{}) (interface{}, error) {
	if name != "concat" {
		return nil, errUnknownTestFunction
	}
	out := ""
	for _, a := range args {
		out += fmt.Sprint(a)
	}
	return out, nil
}

var errUnknownTestFunction = errors.New("unknown function in test library")

func keysOf(m map[string]FlatResource) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
