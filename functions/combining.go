package functions

import (
	"context"

	"fhirpath-go/registry"
	"fhirpath-go/value"
)

func registerCombining(reg *registry.Registry) {
	reg.Register(registry.Func{
		Name: "union", Category: registry.CategoryCombining, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			return value.UnionDedup(call.Focus, call.ArgValues[0]), nil
		},
	})
	reg.Register(registry.Func{
		Name: "combine", Category: registry.CategoryCombining, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			out := append(value.Collection(nil), call.Focus...)
			return append(out, call.ArgValues[0]...), nil
		},
	})
	reg.Register(registry.Func{
		Name: "intersect", Category: registry.CategoryCombining, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			other := call.ArgValues[0]
			var out value.Collection
			for _, v := range value.Distinct(call.Focus) {
				if containsEquivalent(other, v) {
					out = append(out, v)
				}
			}
			return out, nil
		},
	})
	reg.Register(registry.Func{
		Name: "exclude", Category: registry.CategoryCombining, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			other := call.ArgValues[0]
			var out value.Collection
			for _, v := range call.Focus {
				if !containsEquivalent(other, v) {
					out = append(out, v)
				}
			}
			return out, nil
		},
	})
}
