package engine

import (
	"golang.org/x/sync/errgroup"

	"go.uber.org/zap"

	"github.com/Azure/template-analyzer-go/pkg/rules"
	"github.com/Azure/template-analyzer-go/pkg/runner"
)

// AnalyzeAll runs Analyze over every context concurrently. Each template
// analysis is independent and shares no mutable state, so results are
// returned in the same order as ctxs regardless of completion order. Every
// analysis runs to completion; if any of them fails, the first error is
// returned and no results are.
func AnalyzeAll(catalog []rules.RuleDefinition, ctxs []*TemplateContext, log *zap.Logger) ([][]runner.Finding, error) {
	results := make([][]runner.Finding, len(ctxs))

	var g errgroup.Group
	for i, ctx := range ctxs {
		i, ctx := i, ctx
		g.Go(func() error {
			findings, err := Analyze(catalog, ctx, log)
			if err != nil {
				return err
			}
			results[i] = findings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
