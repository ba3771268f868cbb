package expression

import (
	"fmt"
	"strings"

	"github.com/Azure/template-analyzer-go/pkg/jsonpath"
	"github.com/Azure/template-analyzer-go/pkg/operators"
)

// Evaluate walks expr against scope (a single resource subtree, or the
// whole expanded template for a rule's root) and returns the resulting
// Evaluations, resolving scope shifts against view as needed.
func Evaluate(expr Expr, view TemplateView, scope map[string]interface{}, scopePath string) ([]Evaluation, error) {
	switch expr.Kind {
	case KindLeaf:
		return evaluateLeaf(expr, scope, scopePath)
	case KindAllOf:
		return evaluateAllOf(expr, view, scope, scopePath)
	case KindAnyOf:
		return evaluateAnyOf(expr, view, scope, scopePath)
	case KindNot:
		return evaluateNot(expr, view, scope, scopePath)
	case KindScoped:
		return evaluateScoped(expr, view, scope, scopePath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, expr.Kind)
	}
}

func evaluateLeaf(expr Expr, scope map[string]interface{}, scopePath string) ([]Evaluation, error) {
	fn, err := operators.Lookup(expr.Operator)
	if err != nil {
		return nil, err
	}

	results, err := jsonpath.Resolve(scope, expr.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving leaf path %q: %w", expr.Path, err)
	}
	if len(results) == 0 {
		// Intermediate segment missing: the operator still gets to see the
		// Missing sentinel at the leaf's own (unresolved) path.
		results = []jsonpath.Result{{Value: jsonpath.Missing, Path: expr.Path}}
	}

	// Universal quantification: every resolved sub-document must satisfy
	// the predicate. Each failing sub-document produces its own Evaluation
	// with a distinct failing Result.
	var evals []Evaluation
	for _, r := range results {
		ok, err := fn(r.Value, expr.Operand)
		if err != nil {
			return nil, fmt.Errorf("evaluating operator %q at %q: %w", expr.Operator, r.Path, err)
		}
		if !ok {
			evals = append(evals, Evaluation{
				Passed: false,
				Result: &Result{Path: joinPath(scopePath, r.Path)},
			})
		}
	}
	if len(evals) == 0 {
		return []Evaluation{{Passed: true}}, nil
	}
	return evals, nil
}

func evaluateAllOf(expr Expr, view TemplateView, scope map[string]interface{}, scopePath string) ([]Evaluation, error) {
	var all []Evaluation
	for _, child := range expr.Children {
		childEvals, err := Evaluate(child, view, scope, scopePath)
		if err != nil {
			return nil, err
		}
		all = append(all, childEvals...)
	}
	return []Evaluation{aggregate(all, allPassed(all))}, nil
}

func evaluateAnyOf(expr Expr, view TemplateView, scope map[string]interface{}, scopePath string) ([]Evaluation, error) {
	var all []Evaluation
	anyPassed := false
	for _, child := range expr.Children {
		childEvals, err := Evaluate(child, view, scope, scopePath)
		if err != nil {
			return nil, err
		}
		all = append(all, childEvals...)
		if allPassed(childEvals) {
			anyPassed = true
		}
	}
	return []Evaluation{aggregate(all, anyPassed)}, nil
}

func evaluateNot(expr Expr, view TemplateView, scope map[string]interface{}, scopePath string) ([]Evaluation, error) {
	if expr.Child == nil {
		return nil, fmt.Errorf("%w: not expression missing child", ErrUnknownKind)
	}
	childEvals, err := Evaluate(*expr.Child, view, scope, scopePath)
	if err != nil {
		return nil, err
	}
	// Suppress the child's own pass/fail flags from contributing
	// independently: only the inversion of the aggregate matters upward,
	// but the raw sub-evaluations remain for diagnostics.
	e := Evaluation{
		Passed:         !allPassed(childEvals),
		SubEvaluations: childEvals,
	}
	if !e.Passed {
		// A failed negation means the guarded expression passed, so none
		// of the sub-evaluations carry a Result to promote. Point the
		// failure at the guarded leaf's own path (or the enclosing scope
		// for a non-leaf child) so the finding still names a concrete
		// location.
		e.Result = &Result{Path: notFailurePath(*expr.Child, scopePath)}
	}
	return []Evaluation{e}, nil
}

func notFailurePath(child Expr, scopePath string) string {
	if child.Kind == KindLeaf {
		return joinPath(scopePath, child.Path)
	}
	return scopePath
}

func evaluateScoped(expr Expr, view TemplateView, scope map[string]interface{}, scopePath string) ([]Evaluation, error) {
	if expr.Body == nil {
		return nil, ErrEmptyScopeBody
	}

	if expr.ResourceType == "" {
		if expr.Where != nil {
			whereEvals, err := Evaluate(*expr.Where, view, scope, scopePath)
			if err != nil {
				return nil, err
			}
			if !allPassed(whereEvals) {
				return nil, nil
			}
		}
		return Evaluate(*expr.Body, view, scope, scopePath)
	}

	resources := view.ResourcesOfType(expr.ResourceType)
	var results []Evaluation
	for _, res := range resources {
		if expr.Where != nil {
			whereEvals, err := Evaluate(*expr.Where, view, res.Resource, res.Path)
			if err != nil {
				return nil, err
			}
			if !allPassed(whereEvals) {
				continue
			}
		}

		bodyEvals, err := Evaluate(*expr.Body, view, res.Resource, res.Path)
		if err != nil {
			return nil, err
		}
		results = append(results, aggregate(bodyEvals, allPassed(bodyEvals)))
	}
	return results, nil
}

func allPassed(evals []Evaluation) bool {
	for _, e := range evals {
		if !e.Passed {
			return false
		}
	}
	return true
}

// aggregate wraps child evaluations into a single parent Evaluation.
// SubEvaluations always holds the full diagnostic tree; on failure, Result
// is promoted from the first failing descendant so that a caller reporting
// only the top-level Evaluation (the Rule Runner's Finding) still sees
// a concrete failing path without having to drill into SubEvaluations.
func aggregate(children []Evaluation, passed bool) Evaluation {
	e := Evaluation{Passed: passed, SubEvaluations: children}
	if !passed {
		e.Result = firstResult(children)
	}
	return e
}

func firstResult(evals []Evaluation) *Result {
	for _, e := range evals {
		if e.Result != nil {
			return e.Result
		}
	}
	for _, e := range evals {
		if r := firstResult(e.SubEvaluations); r != nil {
			return r
		}
	}
	return nil
}

func joinPath(scopePath, relative string) string {
	if scopePath == "" {
		return relative
	}
	if relative == "" {
		return scopePath
	}
	if strings.HasPrefix(relative, "[") {
		return scopePath + relative
	}
	return scopePath + "." + relative
}
