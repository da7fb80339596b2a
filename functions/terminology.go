// Terminology functions (memberOf, subsumes, subsumedBy, translate,
// designation, property), grounded on
// original_source/crates/fhirpath-registry/src/operations/terminology/*.rs.
// All six are async-only (spec.md §4.2's sync/async split): they reach a
// registry.TerminologyProvider, which may itself call out to a terminology
// server, so none has a Sync body — calling one from the synchronous
// evaluation entry point surfaces FP0054 rather than blocking.
package functions

import (
	"context"

	"fhirpath-go/diagnostics"
	"fhirpath-go/registry"
	"fhirpath-go/value"
)

func registerTerminology(reg *registry.Registry) {
	reg.Register(registry.Func{
		Name: "memberOf", Category: registry.CategoryTerminology, Pure: true, AsyncOnly: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Async: func(ctx context.Context, call registry.Call) (value.Collection, error) {
			coded, ok := singleton(call.Focus)
			if !ok {
				return nil, nil
			}
			valueSet, ok := singletonString(call.ArgValues[0])
			if !ok {
				return nil, diagnostics.New(diagnostics.TypeError, "memberOf() requires a string valueSet argument")
			}
			term, err := requireTerminology(call)
			if err != nil {
				return nil, err
			}
			ok, err = term.MemberOf(ctx, coded, valueSet)
			if err != nil {
				return nil, err
			}
			return value.Of(value.Bool(ok)), nil
		},
	})
	reg.Register(registry.Func{
		Name: "subsumes", Category: registry.CategoryTerminology, Pure: true, AsyncOnly: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Async: subsumptionFunc(false),
	})
	reg.Register(registry.Func{
		Name: "subsumedBy", Category: registry.CategoryTerminology, Pure: true, AsyncOnly: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Async: subsumptionFunc(true),
	})
	reg.Register(registry.Func{
		Name: "translate", Category: registry.CategoryTerminology, Pure: true, AsyncOnly: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Async: func(ctx context.Context, call registry.Call) (value.Collection, error) {
			coded, ok := singleton(call.Focus)
			if !ok {
				return nil, nil
			}
			conceptMap, ok := singletonString(call.ArgValues[0])
			if !ok {
				return nil, diagnostics.New(diagnostics.TypeError, "translate() requires a string conceptMap argument")
			}
			term, err := requireTerminology(call)
			if err != nil {
				return nil, err
			}
			return term.Translate(ctx, coded, conceptMap)
		},
	})
	reg.Register(registry.Func{
		Name: "designation", Category: registry.CategoryTerminology, Pure: true, AsyncOnly: true,
		Arity: registry.Arity{Min: 0, Max: 1},
		Async: func(ctx context.Context, call registry.Call) (value.Collection, error) {
			coded, ok := singleton(call.Focus)
			if !ok {
				return nil, nil
			}
			language := ""
			if len(call.ArgValues) == 1 {
				language, _ = singletonString(call.ArgValues[0])
			}
			term, err := requireTerminology(call)
			if err != nil {
				return nil, err
			}
			return term.Designation(ctx, coded, language)
		},
	})
	reg.Register(registry.Func{
		Name: "property", Category: registry.CategoryTerminology, Pure: true, AsyncOnly: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Async: func(ctx context.Context, call registry.Call) (value.Collection, error) {
			coded, ok := singleton(call.Focus)
			if !ok {
				return nil, nil
			}
			property, ok := singletonString(call.ArgValues[0])
			if !ok {
				return nil, diagnostics.New(diagnostics.TypeError, "property() requires a string property name")
			}
			term, err := requireTerminology(call)
			if err != nil {
				return nil, err
			}
			return term.Property(ctx, coded, property)
		},
	})
}

func subsumptionFunc(flip bool) registry.AsyncFunc {
	return func(ctx context.Context, call registry.Call) (value.Collection, error) {
		a, ok := singleton(call.Focus)
		if !ok {
			return nil, nil
		}
		b, ok := singleton(call.ArgValues[0])
		if !ok {
			return nil, nil
		}
		if flip {
			a, b = b, a
		}
		term, err := requireTerminology(call)
		if err != nil {
			return nil, err
		}
		relationship, err := term.Subsumes(ctx, a, b)
		if err != nil {
			return nil, err
		}
		return value.Of(value.Str(relationship)), nil
	}
}

func requireTerminology(call registry.Call) (registry.TerminologyProvider, error) {
	if call.Env == nil || call.Env.TerminologyProvider() == nil {
		return nil, diagnostics.New(diagnostics.NoTerminologyProvider, "no terminology provider configured")
	}
	return call.Env.TerminologyProvider(), nil
}
