package engine

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Azure/template-analyzer-go/pkg/rules"
)

const testTemplate = `{
	"$schema": "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#",
	"resources": [
		{
			"type": "Microsoft.Web/sites",
			"apiVersion": "2021-02-01",
			"name": "site1",
			"kind": "app",
			"properties": {
				"httpsOnly": false
			}
		}
	]
}`

const testCatalog = `[
	{"id":"TA-000004","description":"HTTPS only","severity":2,"evaluation":{
		"resourceType":"Microsoft.Web/sites","path":"properties.httpsOnly","equals":true
	}}
]`

func TestBuildTemplateContextAndAnalyze(t *testing.T) {
	catalog, err := rules.Load([]byte(testCatalog))
	if err != nil {
		t.Fatal(err)
	}

	ctx, err := BuildTemplateContext([]byte(testTemplate), nil, "site.json", Options{}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	findings, err := Analyze(catalog, ctx, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Passed {
		t.Error("expected httpsOnly:false to fail the rule")
	}
	if f.Result == nil || f.Result.LineNumber == 0 {
		t.Errorf("expected a resolved line number, got %+v", f.Result)
	}
}

func TestBuildTemplateContextClassifiesErrors(t *testing.T) {
	var engErr *EngineError

	_, err := BuildTemplateContext([]byte(`{not json`), nil, "bad.json", Options{}, zap.NewNop())
	if !errors.As(err, &engErr) || engErr.Kind != KindTemplateParse {
		t.Errorf("expected a TemplateParse EngineError for malformed template, got %v", err)
	}

	badParams := `{"noParametersKey": true}`
	_, err = BuildTemplateContext([]byte(testTemplate), []byte(badParams), "site.json", Options{}, zap.NewNop())
	if !errors.As(err, &engErr) || engErr.Kind != KindParameterParse {
		t.Errorf("expected a ParameterParse EngineError for a parameters doc with no parameters key, got %v", err)
	}
}

func TestLoadCatalogWrapsParseFailure(t *testing.T) {
	var engErr *EngineError
	_, err := LoadCatalog([]byte(`[{"id":"X","severity":9,"evaluation":{"path":"a","exists":true}}]`), false)
	if !errors.As(err, &engErr) || engErr.Kind != KindCatalogParse {
		t.Errorf("expected a CatalogParse EngineError, got %v", err)
	}
}

func TestAnalyzeAllRunsIndependently(t *testing.T) {
	catalog, err := rules.Load([]byte(testCatalog))
	if err != nil {
		t.Fatal(err)
	}

	var ctxs []*TemplateContext
	for i := 0; i < 3; i++ {
		ctx, err := BuildTemplateContext([]byte(testTemplate), nil, "site.json", Options{}, zap.NewNop())
		if err != nil {
			t.Fatal(err)
		}
		ctxs = append(ctxs, ctx)
	}

	results, err := AnalyzeAll(catalog, ctxs, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 result sets, got %d", len(results))
	}
	for _, findings := range results {
		if len(findings) != 1 {
			t.Errorf("expected 1 finding per template, got %d", len(findings))
		}
	}
}
