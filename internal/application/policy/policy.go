// Package policy evaluates the configurable review policy for payout
// requests. The policy is a boolean expression over request parameters;
// requests matching it are flagged for expedited admin review.
package policy

import (
	"errors"
	"strings"

	"github.com/Knetic/govaluate"
)

// Engine evaluates one configured expression. A zero Engine (empty
// expression) flags nothing.
type Engine struct {
	expression string
}

// NewEngine validates the expression up front so a bad policy fails at
// startup, not per request.
func NewEngine(expression string) (*Engine, error) {
	expr := strings.TrimSpace(expression)
	if expr != "" {
		if _, err := govaluate.NewEvaluableExpression(expr); err != nil {
			return nil, err
		}
	}
	return &Engine{expression: expr}, nil
}

// Evaluate reports whether the parameters match the policy. Empty policy
// returns false. Supports "true"/"false" literals.
func (e *Engine) Evaluate(params map[string]interface{}) (bool, error) {
	if e == nil || e.expression == "" {
		return false, nil
	}
	switch strings.ToLower(e.expression) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}

	expr, err := govaluate.NewEvaluableExpression(e.expression)
	if err != nil {
		return false, err
	}
	result, err := expr.Evaluate(flatten(params))
	if err != nil {
		return false, err
	}
	b, ok := result.(bool)
	if !ok {
		return false, errors.New("policy did not evaluate to boolean")
	}
	return b, nil
}

func flatten(params map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	for k, v := range params {
		out[k] = v
	}
	flattenInto("", params, out)
	return out
}

func flattenInto(prefix string, m map[string]interface{}, out map[string]interface{}) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			flattenInto(key, nested, out)
			continue
		}
		out[key] = v
	}
}
