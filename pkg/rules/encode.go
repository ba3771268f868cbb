package rules

import (
	"fmt"

	"github.com/Azure/template-analyzer-go/pkg/expression"
)

// EncodeExpr renders a compiled expression tree back into the rule DSL's
// JSON object shape, the inverse of compileExpr. Round-tripping a rule
// through CompileRule and EncodeExpr yields an equivalent tree.
func EncodeExpr(expr expression.Expr) (map[string]interface{}, error) {
	out := map[string]interface{}{}

	switch expr.Kind {
	case expression.KindLeaf:
		out["path"] = expr.Path
		out[string(expr.Operator)] = expr.Operand
	case expression.KindAllOf, expression.KindAnyOf:
		children := make([]interface{}, 0, len(expr.Children))
		for _, c := range expr.Children {
			enc, err := EncodeExpr(c)
			if err != nil {
				return nil, err
			}
			children = append(children, enc)
		}
		out[string(expr.Kind)] = children
	case expression.KindNot:
		if expr.Child == nil {
			return nil, fmt.Errorf("%w: not expression missing child", ErrUnrecognizedExpression)
		}
		enc, err := EncodeExpr(*expr.Child)
		if err != nil {
			return nil, err
		}
		out["not"] = enc
	case expression.KindScoped:
		if expr.Body == nil {
			return nil, expression.ErrEmptyScopeBody
		}
		body, err := EncodeExpr(*expr.Body)
		if err != nil {
			return nil, err
		}
		for k, v := range body {
			out[k] = v
		}
		if expr.ResourceType != "" {
			out["resourceType"] = expr.ResourceType
		}
		if expr.Where != nil {
			where, err := EncodeExpr(*expr.Where)
			if err != nil {
				return nil, err
			}
			out["where"] = where
		}
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrUnrecognizedExpression, expr.Kind)
	}
	return out, nil
}
