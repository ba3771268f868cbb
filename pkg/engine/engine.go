package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Azure/template-analyzer-go/pkg/armexpr"
	"github.com/Azure/template-analyzer-go/pkg/lineinfo"
	"github.com/Azure/template-analyzer-go/pkg/logging"
	"github.com/Azure/template-analyzer-go/pkg/rules"
	"github.com/Azure/template-analyzer-go/pkg/runner"
	"github.com/Azure/template-analyzer-go/pkg/template"
)

// TemplateContext bundles one template's expanded form with everything the
// runner and the caller need to turn a failing Evaluation into a reported
// finding: the original source paths, the line resolver, and an identifier
// for the template itself (a file path, typically).
type TemplateContext struct {
	Expanded           *template.ExpandedTemplate
	Lines              *lineinfo.Resolver
	TemplateIdentifier string
}

// Options configures a single analysis run.
type Options struct {
	Mode            armexpr.EvaluationMode
	FunctionLibrary armexpr.FunctionLibrary
}

// BuildTemplateContext runs the Template Processor (and, for JSON sources,
// the line-number indexer) over raw template and parameters text. Bicep
// compilation is an external front-end's job; callers that
// start from Bicep must compile to JSON + source map first and attach the
// source map to the returned context's Lines resolver themselves.
func BuildTemplateContext(templateRaw, parametersRaw []byte, templateIdentifier string, opts Options, log *zap.Logger) (*TemplateContext, error) {
	expanded, err := template.Process(templateRaw, parametersRaw, template.Options{
		Mode:            opts.Mode,
		FunctionLibrary: opts.FunctionLibrary,
	}, log)
	if err != nil {
		return nil, wrap(classifyProcessError(err), err)
	}

	lines, err := lineinfo.Build(templateRaw)
	if err != nil {
		log.Warn("line number indexing failed; failing evaluations will report line 0",
			zap.String(logging.TemplateIdentifier, templateIdentifier),
			zap.Error(err))
		lines = nil
	}

	return &TemplateContext{
		Expanded:           expanded,
		Lines:              lines,
		TemplateIdentifier: templateIdentifier,
	}, nil
}

// classifyProcessError maps a Template Processor failure onto the error
// taxonomy: a bad parameters document and a mapping conflict each get
// their own kind, everything else is a template parse failure.
func classifyProcessError(err error) ErrorKind {
	switch {
	case errors.Is(err, template.ErrParametersSchema):
		return KindParameterParse
	case errors.Is(err, template.ErrMappingConflict):
		return KindResourceMappingConflict
	default:
		return KindTemplateParse
	}
}

// LoadCatalog parses and compiles a rule catalog, surfacing any failure as
// an EngineError of kind CatalogParse. data is dispatched to the JSON or
// YAML loader based on asYAML.
func LoadCatalog(data []byte, asYAML bool) ([]rules.RuleDefinition, error) {
	load := rules.Load
	if asYAML {
		load = rules.LoadYAML
	}
	catalog, err := load(data)
	if err != nil {
		return nil, wrap(KindCatalogParse, err)
	}
	return catalog, nil
}

// Analyze runs every rule in catalog against ctx and resolves a line number
// for every failing Result.
func Analyze(catalog []rules.RuleDefinition, ctx *TemplateContext, log *zap.Logger) ([]runner.Finding, error) {
	findings, err := runner.Analyze(catalog, ctx.Expanded, ctx.Expanded.Root, ctx.TemplateIdentifier)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", ctx.TemplateIdentifier, err)
	}

	for i := range findings {
		resolveLine(&findings[i], ctx, log)
	}
	return findings, nil
}

func resolveLine(f *runner.Finding, ctx *TemplateContext, log *zap.Logger) {
	if f.Result == nil {
		return
	}
	originalPath, ok := ctx.Expanded.OriginalPath(f.Result.Path)
	if !ok {
		originalPath = f.Result.Path
	}
	line, _ := ctx.Lines.Resolve(originalPath)
	f.Result.LineNumber = line
	if line == 0 {
		log.Debug("no line number found for failing path",
			zap.String(logging.RuleID, f.RuleID),
			zap.String(logging.ResourcePath, f.Result.Path),
			zap.String(logging.OriginalPath, originalPath))
	}
}
