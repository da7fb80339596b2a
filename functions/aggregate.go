// aggregate(aggregator, init?), grounded on
// original_source/crates/fhirpath-registry/src/operations/aggregate.rs:
// folds the input collection through the aggregator lambda, threading the
// running value through $total (accessible inside the lambda body via the
// evaluator's Context.total, set per call through CallEvaluator's total
// parameter) the same way where()/select() thread $this/$index.
package functions

import (
	"context"

	"fhirpath-go/registry"
	"fhirpath-go/value"
)

func registerAggregate(reg *registry.Registry) {
	reg.Register(registry.Func{
		Name: "aggregate", Category: registry.CategoryAggregate, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 2},
		Sync: func(ctx context.Context, call registry.Call) (value.Collection, error) {
			var total value.Collection
			if len(call.ArgValues) == 2 {
				total = call.ArgValues[1]
			}
			for i, this := range call.Focus {
				next, err := call.Eval(ctx, 0, this, i, total)
				if err != nil {
					return nil, err
				}
				total = next
			}
			return total, nil
		},
	})
}
