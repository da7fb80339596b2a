// Package functions registers every FHIRPath function body (spec.md §5)
// into a registry.Registry. Each file groups one of the spec's function
// categories; RegisterAll wires them all into a fresh registry, the way the
// teacher wires its OperationDefinition builders off of one shared
// constructor (internal/backend.go's FHIRPathOperationDefinition family).
//
// Grounding for exact per-function semantics is
// original_source/crates/fhirpath-registry/src/operations/* (see
// DESIGN.md's ledger); the Go shape (one SyncFunc closure per entry,
// registered positionally) is this repo's own idiom for the parser/registry
// split described in spec.md §4.2.
package functions

import (
	"context"

	"fhirpath-go/diagnostics"
	"fhirpath-go/registry"
	"fhirpath-go/value"
)

// RegisterAll populates reg with every function in every category.
func RegisterAll(reg *registry.Registry) {
	registerExistence(reg)
	registerFiltering(reg)
	registerSubsetting(reg)
	registerSort(reg)
	registerCombining(reg)
	registerConversion(reg)
	registerStrings(reg)
	registerMath(reg)
	registerTemporal(reg)
	registerReflection(reg)
	registerAggregate(reg)
	registerUtility(reg)
	registerTerminology(reg)
}

func registerExistence(reg *registry.Registry) {
	reg.Register(registry.Func{
		Name: "empty", Category: registry.CategoryExistence, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			return value.Of(value.Bool(len(call.Focus) == 0)), nil
		},
	})
	reg.Register(registry.Func{
		Name: "exists", Category: registry.CategoryExistence, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 1},
		Sync: func(ctx context.Context, call registry.Call) (value.Collection, error) {
			if len(call.ArgValues) == 0 {
				return value.Of(value.Bool(len(call.Focus) > 0)), nil
			}
			filtered, err := filterByLambda(ctx, call, 0)
			if err != nil {
				return nil, err
			}
			return value.Of(value.Bool(len(filtered) > 0)), nil
		},
	})
	reg.Register(registry.Func{
		Name: "count", Category: registry.CategoryExistence, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			return value.Of(value.Int(int64(len(call.Focus)))), nil
		},
	})
	reg.Register(registry.Func{
		Name: "hasValue", Category: registry.CategoryExistence, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			if len(call.Focus) != 1 {
				return value.Of(value.Bool(false)), nil
			}
			return value.Of(value.Bool(!call.Focus[0].IsEmpty())), nil
		},
	})
	reg.Register(registry.Func{
		Name: "all", Category: registry.CategoryExistence, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(ctx context.Context, call registry.Call) (value.Collection, error) {
			for i, this := range call.Focus {
				result, err := call.Eval(ctx, 0, this, i, nil)
				if err != nil {
					return nil, err
				}
				tri, err := result.SingletonBool()
				if err != nil {
					return nil, diagnostics.Wrap(diagnostics.TypeError, "all() criteria must be boolean", err)
				}
				if tri != value.TriTrue {
					return value.Of(value.Bool(false)), nil
				}
			}
			return value.Of(value.Bool(true)), nil
		},
	})
	reg.Register(registry.Func{
		Name: "allTrue", Category: registry.CategoryExistence, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: boolAggregate(func(all, any bool) bool { return all }),
	})
	reg.Register(registry.Func{
		Name: "anyTrue", Category: registry.CategoryExistence, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: boolAggregate(func(all, any bool) bool { return any }),
	})
	reg.Register(registry.Func{
		Name: "allFalse", Category: registry.CategoryExistence, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: boolAggregate(func(all, any bool) bool { return !any }),
	})
	reg.Register(registry.Func{
		Name: "anyFalse", Category: registry.CategoryExistence, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: boolAggregate(func(all, any bool) bool { return !all }),
	})
	reg.Register(registry.Func{
		Name: "subsetOf", Category: registry.CategoryExistence, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			other := call.ArgValues[0]
			for _, v := range call.Focus {
				if !containsEquivalent(other, v) {
					return value.Of(value.Bool(false)), nil
				}
			}
			return value.Of(value.Bool(true)), nil
		},
	})
	reg.Register(registry.Func{
		Name: "supersetOf", Category: registry.CategoryExistence, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			other := call.ArgValues[0]
			for _, v := range other {
				if !containsEquivalent(call.Focus, v) {
					return value.Of(value.Bool(false)), nil
				}
			}
			return value.Of(value.Bool(true)), nil
		},
	})
	reg.Register(registry.Func{
		Name: "isDistinct", Category: registry.CategoryExistence, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			return value.Of(value.Bool(len(value.Distinct(call.Focus)) == len(call.Focus))), nil
		},
	})
}

func containsEquivalent(haystack value.Collection, needle value.Value) bool {
	for _, v := range haystack {
		if value.Equivalent(v, needle) {
			return true
		}
	}
	return false
}

func boolAggregate(combine func(all, any bool) bool) registry.SyncFunc {
	return func(_ context.Context, call registry.Call) (value.Collection, error) {
		all, any := true, false
		for _, v := range call.Focus {
			b, ok := v.Bool()
			if !ok {
				continue
			}
			if b {
				any = true
			} else {
				all = false
			}
		}
		return value.Of(value.Bool(combine(all, any))), nil
	}
}

// filterByLambda evaluates lambda argument argIdx against every element of
// call.Focus, keeping elements whose predicate is true — the shared core of
// where()/exists(criteria).
func filterByLambda(ctx context.Context, call registry.Call, argIdx int) (value.Collection, error) {
	var out value.Collection
	for i, this := range call.Focus {
		result, err := call.Eval(ctx, argIdx, this, i, nil)
		if err != nil {
			return nil, err
		}
		tri, err := result.SingletonBool()
		if err != nil {
			return nil, diagnostics.Wrap(diagnostics.TypeError, "criteria must evaluate to a boolean", err)
		}
		if tri == value.TriTrue {
			out = append(out, this)
		}
	}
	return out, nil
}
