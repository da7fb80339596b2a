package functions

import (
	"context"

	"fhirpath-go/diagnostics"
	"fhirpath-go/registry"
	"fhirpath-go/value"
)

func registerFiltering(reg *registry.Registry) {
	reg.Register(registry.Func{
		Name: "where", Category: registry.CategoryFiltering, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(ctx context.Context, call registry.Call) (value.Collection, error) {
			return filterByLambda(ctx, call, 0)
		},
	})
	reg.Register(registry.Func{
		Name: "select", Category: registry.CategoryFiltering, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(ctx context.Context, call registry.Call) (value.Collection, error) {
			var out value.Collection
			for i, this := range call.Focus {
				result, err := call.Eval(ctx, 0, this, i, nil)
				if err != nil {
					return nil, err
				}
				out = append(out, result...)
			}
			return out, nil
		},
	})
	reg.Register(registry.Func{
		Name: "any", Category: registry.CategoryExistence, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(ctx context.Context, call registry.Call) (value.Collection, error) {
			filtered, err := filterByLambda(ctx, call, 0)
			if err != nil {
				return nil, err
			}
			return value.Of(value.Bool(len(filtered) > 0)), nil
		},
	})
	reg.Register(registry.Func{
		Name: "repeat", Category: registry.CategoryFiltering, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(ctx context.Context, call registry.Call) (value.Collection, error) {
			return repeatUntilFixedPoint(ctx, call)
		},
	})
}

// maxRepeatDepth caps repeat()'s fixed-point iteration so a cyclic resource
// graph (or a projection that keeps growing) cannot loop forever.
const maxRepeatDepth = 256

// repeatUntilFixedPoint implements spec.md §5's repeat(projection):
// iteratively apply projection to the frontier, accumulating newly seen
// (by Equivalent) results, until a pass contributes nothing new.
func repeatUntilFixedPoint(ctx context.Context, call registry.Call) (value.Collection, error) {
	seen := value.Distinct(call.Focus)
	frontier := seen
	var result value.Collection
	for depth := 0; depth < maxRepeatDepth && len(frontier) > 0; depth++ {
		var next value.Collection
		for i, this := range frontier {
			projected, err := call.Eval(ctx, 0, this, i, nil)
			if err != nil {
				return nil, err
			}
			for _, v := range projected {
				if containsEquivalent(seen, v) {
					continue
				}
				seen = append(seen, v)
				next = append(next, v)
				result = append(result, v)
			}
		}
		frontier = next
	}
	return result, nil
}

func registerSubsetting(reg *registry.Registry) {
	reg.Register(registry.Func{
		Name: "first", Category: registry.CategorySubsetting, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			if len(call.Focus) == 0 {
				return nil, nil
			}
			return value.Of(call.Focus[0]), nil
		},
	})
	reg.Register(registry.Func{
		Name: "last", Category: registry.CategorySubsetting, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			if len(call.Focus) == 0 {
				return nil, nil
			}
			return value.Of(call.Focus[len(call.Focus)-1]), nil
		},
	})
	reg.Register(registry.Func{
		Name: "tail", Category: registry.CategorySubsetting, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			if len(call.Focus) <= 1 {
				return nil, nil
			}
			return append(value.Collection(nil), call.Focus[1:]...), nil
		},
	})
	reg.Register(registry.Func{
		Name: "skip", Category: registry.CategorySubsetting, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			n, err := singleIntArg(call.ArgValues[0], "skip")
			if err != nil {
				return nil, err
			}
			if n < 0 {
				n = 0
			}
			if n >= len(call.Focus) {
				return nil, nil
			}
			return append(value.Collection(nil), call.Focus[n:]...), nil
		},
	})
	reg.Register(registry.Func{
		Name: "take", Category: registry.CategorySubsetting, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			n, err := singleIntArg(call.ArgValues[0], "take")
			if err != nil {
				return nil, err
			}
			if n <= 0 {
				return nil, nil
			}
			if n > len(call.Focus) {
				n = len(call.Focus)
			}
			return append(value.Collection(nil), call.Focus[:n]...), nil
		},
	})
	reg.Register(registry.Func{
		Name: "single", Category: registry.CategorySubsetting, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			if len(call.Focus) == 0 {
				return nil, nil
			}
			if len(call.Focus) != 1 {
				return nil, diagnostics.Newf(diagnostics.TypeError, "single() requires zero or one items, got %d", len(call.Focus))
			}
			return value.Of(call.Focus[0]), nil
		},
	})
	reg.Register(registry.Func{
		Name: "distinct", Category: registry.CategorySubsetting, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			return value.Distinct(call.Focus), nil
		},
	})
	reg.Register(registry.Func{
		Name: "reverse", Category: registry.CategorySubsetting, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			n := len(call.Focus)
			out := make(value.Collection, n)
			for i, v := range call.Focus {
				out[n-1-i] = v
			}
			return out, nil
		},
	})
}

// registerSort wires sort(criteria): spec.md §4.2/§4.6 treats sort like
// where()/select() — criteria is a lambda wrapping an expression evaluated
// once per element with $this bound, here to produce a sort key rather than
// a predicate or projection. The focus is stably reordered ascending by
// that key.
func registerSort(reg *registry.Registry) {
	reg.Register(registry.Func{
		Name: "sort", Category: registry.CategoryFiltering, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(ctx context.Context, call registry.Call) (value.Collection, error) {
			return sortByLambda(ctx, call)
		},
	})
}

// sortByLambda computes each element's sort key, then stably reorders via
// value.SortStableBy -- sorting the *indices* rather than the elements
// themselves, since the elements may repeat while their sort keys (or vice
// versa) need not.
func sortByLambda(ctx context.Context, call registry.Call) (value.Collection, error) {
	keys := make([]value.Value, len(call.Focus))
	indices := make(value.Collection, len(call.Focus))
	for i, this := range call.Focus {
		result, err := call.Eval(ctx, 0, this, i, nil)
		if err != nil {
			return nil, err
		}
		key, ok := singleton(result)
		if !ok {
			return nil, diagnostics.New(diagnostics.TypeError, "sort() criteria must evaluate to a singleton")
		}
		keys[i] = key
		indices[i] = value.Int(int64(i))
	}
	sorted := value.SortStableBy(indices, func(a, b value.Value) (bool, bool) {
		ai, _ := a.Int()
		bi, _ := b.Int()
		cmp, ok := value.Compare(keys[ai], keys[bi])
		return cmp < 0, ok
	})
	out := make(value.Collection, len(sorted))
	for i, idxVal := range sorted {
		idx, _ := idxVal.Int()
		out[i] = call.Focus[idx]
	}
	return out, nil
}

func singleIntArg(c value.Collection, fn string) (int, error) {
	if len(c) != 1 {
		return 0, diagnostics.Newf(diagnostics.ArgumentCountMismatch, "%s requires a single integer argument", fn)
	}
	i, ok := c[0].Int()
	if !ok {
		return 0, diagnostics.Newf(diagnostics.TypeError, "%s requires an integer argument", fn)
	}
	return int(i), nil
}
