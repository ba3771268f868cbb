package rules

import (
	"fmt"

	"github.com/Azure/template-analyzer-go/pkg/expression"
	"github.com/Azure/template-analyzer-go/pkg/operators"
)

var knownOperators = []operators.Name{
	operators.Equals,
	operators.NotEquals,
	operators.HasValue,
	operators.Exists,
	operators.In,
	operators.Regex,
	operators.Greater,
	operators.GreaterOrEquals,
	operators.Less,
	operators.LessOrEquals,
}

// compileExpr parses one DSL node (the grammar's `expr` production) into an
// expression.Expr. Any node may carry resourceType/where to open a new
// scope alongside its leaf/combinator body.
func compileExpr(raw map[string]interface{}) (expression.Expr, error) {
	resourceType, _ := raw["resourceType"].(string)

	var wherePtr *expression.Expr
	if whereRaw, ok := raw["where"]; ok {
		whereMap, ok := whereRaw.(map[string]interface{})
		if !ok {
			return expression.Expr{}, fmt.Errorf("%w: \"where\" must be an object", ErrUnrecognizedExpression)
		}
		where, err := compileExpr(whereMap)
		if err != nil {
			return expression.Expr{}, err
		}
		wherePtr = &where
	}

	body, hasBody, err := compileBody(raw)
	if err != nil {
		return expression.Expr{}, err
	}

	if resourceType != "" || wherePtr != nil {
		if !hasBody {
			return expression.Expr{}, expression.ErrEmptyScopeBody
		}
		return expression.Expr{
			Kind:         expression.KindScoped,
			ResourceType: resourceType,
			Where:        wherePtr,
			Body:         &body,
		}, nil
	}

	if !hasBody {
		return expression.Expr{}, fmt.Errorf("%w: node has neither a scope shift nor a body", ErrUnrecognizedExpression)
	}
	return body, nil
}

// compileBody parses the leaf|combinator portion of a DSL node, ignoring
// the resourceType/where keys that compileExpr already consumed.
func compileBody(raw map[string]interface{}) (expression.Expr, bool, error) {
	if v, ok := raw["allOf"]; ok {
		children, err := compileChildren(v)
		if err != nil {
			return expression.Expr{}, false, err
		}
		return expression.Expr{Kind: expression.KindAllOf, Children: children}, true, nil
	}
	if v, ok := raw["anyOf"]; ok {
		children, err := compileChildren(v)
		if err != nil {
			return expression.Expr{}, false, err
		}
		return expression.Expr{Kind: expression.KindAnyOf, Children: children}, true, nil
	}
	if v, ok := raw["not"]; ok {
		childMap, ok := v.(map[string]interface{})
		if !ok {
			return expression.Expr{}, false, fmt.Errorf("%w: \"not\" must be an object", ErrUnrecognizedExpression)
		}
		child, err := compileExpr(childMap)
		if err != nil {
			return expression.Expr{}, false, err
		}
		return expression.Expr{Kind: expression.KindNot, Child: &child}, true, nil
	}
	if pathRaw, ok := raw["path"]; ok {
		path, ok := pathRaw.(string)
		if !ok {
			return expression.Expr{}, false, fmt.Errorf("%w: \"path\" must be a string", ErrUnrecognizedExpression)
		}
		for _, op := range knownOperators {
			if operand, ok := raw[string(op)]; ok {
				return expression.Expr{Kind: expression.KindLeaf, Path: path, Operator: op, Operand: operand}, true, nil
			}
		}
		return expression.Expr{}, false, fmt.Errorf("%w", ErrUnknownLeafOperator)
	}
	return expression.Expr{}, false, nil
}

func compileChildren(raw interface{}) ([]expression.Expr, error) {
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: combinator operand must be an array", ErrUnrecognizedExpression)
	}
	children := make([]expression.Expr, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: combinator element must be an object", ErrUnrecognizedExpression)
		}
		child, err := compileExpr(m)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// CompileRule compiles a rule's top-level evaluation object. The rule root
// is always a ScopedExpression, explicit or implicit: a raw
// evaluation with no resourceType/where is wrapped in an implicit scope
// that stays in the initial scope (the whole expanded template).
func CompileRule(raw map[string]interface{}) (expression.Expr, error) {
	expr, err := compileExpr(raw)
	if err != nil {
		return expression.Expr{}, err
	}
	if expr.Kind != expression.KindScoped {
		expr = expression.Expr{Kind: expression.KindScoped, Body: &expr}
	}
	return expr, nil
}
