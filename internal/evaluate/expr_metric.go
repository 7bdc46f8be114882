package evaluate

import (
	"fmt"

	"github.com/Knetic/govaluate"

	"github.com/dspygo/optimizer/internal/contracts"
	"github.com/dspygo/optimizer/internal/primitives"
)

// NewExpressionMetric builds a contracts.MetricFn from a boolean or
// arithmetic expression over example and prediction fields, evaluated with
// govaluate. A prediction field is referenced by its own name and an example
// field by "expected_" plus its name — e.g. "answer == expected_answer" or
// "confidence >= 0.5"; see exprParams. No functions are registered with the
// evaluator, so an expression uses operators only, and one that fails to
// evaluate (for instance by naming an absent field) scores 0.
//
// This is intentionally a small constructor, not a metric DSL: one
// expression, one metric, evaluated once per example.
func NewExpressionMetric(expression string) (contracts.MetricFn, error) {
	expr, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid metric expression %q: %w", expression, err)
	}

	return func(example *primitives.Example, prediction *primitives.Prediction) float64 {
		params := exprParams(example, prediction)
		result, err := expr.Evaluate(params)
		if err != nil {
			return 0.0
		}
		return toScore(result)
	}, nil
}

// exprParams merges an example's fields (prefixed "expected_") and a
// prediction's fields (unprefixed) into one parameter set an expression can
// reference by name.
func exprParams(example *primitives.Example, prediction *primitives.Prediction) map[string]interface{} {
	params := make(map[string]interface{})
	for k, v := range example.Data() {
		params["expected_"+k] = v
	}
	for k, v := range prediction.Fields() {
		params[k] = v
	}
	return params
}

// toScore maps an expression's result to a 0..1 score: true/false map to
// 1/0, a numeric result is clamped to [0, 1].
func toScore(result interface{}) float64 {
	switch v := result.(type) {
	case bool:
		if v {
			return 1.0
		}
		return 0.0
	case float64:
		if v < 0 {
			return 0.0
		}
		if v > 1 {
			return 1.0
		}
		return v
	default:
		return 0.0
	}
}
