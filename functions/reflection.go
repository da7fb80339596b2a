// Reflection functions: type(), is(type), as(type), ofType(type),
// children(), descendants(). The binary is/as *operators* (spec.md §4.6's
// keyword forms) are handled directly by package evaluator; these are their
// function-call counterparts plus the navigation reflection family,
// grounded on
// original_source/crates/fhirpath-analyzer/src/children_analyzer.rs for the
// children()/descendants() traversal idiom (read for structure, not
// transliterated — this package walks value.Resource trees, not a
// model-provider-typed AST).
package functions

import (
	"context"

	"fhirpath-go/diagnostics"
	"fhirpath-go/registry"
	"fhirpath-go/value"
)

func registerReflection(reg *registry.Registry) {
	reg.Register(registry.Func{
		Name: "type", Category: registry.CategoryReflection, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			var out value.Collection
			for _, v := range call.Focus {
				out = append(out, value.TypeInfoVal(v.TypeInfo()))
			}
			return out, nil
		},
	})
	reg.Register(registry.Func{
		Name: "is", Category: registry.CategoryReflection, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			typeName, ok := singletonTypeName(call.ArgValues[0])
			if !ok {
				return nil, diagnostics.New(diagnostics.TypeError, "is() requires a type specifier argument")
			}
			v, ok := singleton(call.Focus)
			if !ok {
				return nil, nil
			}
			return value.Of(value.Bool(matchesType(call.Env.ModelProvider(), v, typeName))), nil
		},
	})
	reg.Register(registry.Func{
		Name: "as", Category: registry.CategoryReflection, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			typeName, ok := singletonTypeName(call.ArgValues[0])
			if !ok {
				return nil, diagnostics.New(diagnostics.TypeError, "as() requires a type specifier argument")
			}
			v, ok := singleton(call.Focus)
			if !ok {
				return nil, nil
			}
			if !matchesType(call.Env.ModelProvider(), v, typeName) {
				return nil, nil
			}
			return value.Of(v), nil
		},
	})
	reg.Register(registry.Func{
		Name: "ofType", Category: registry.CategoryReflection, Pure: true,
		Arity: registry.Arity{Min: 1, Max: 1},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			typeName, ok := singletonTypeName(call.ArgValues[0])
			if !ok {
				return nil, diagnostics.New(diagnostics.TypeError, "ofType() requires a type specifier argument")
			}
			var out value.Collection
			for _, v := range call.Focus {
				if matchesType(call.Env.ModelProvider(), v, typeName) {
					out = append(out, v)
				}
			}
			return out, nil
		},
	})
	reg.Register(registry.Func{
		Name: "children", Category: registry.CategoryReflection, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			return childrenEnv(call.Env, call.Focus), nil
		},
	})
	reg.Register(registry.Func{
		Name: "descendants", Category: registry.CategoryReflection, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
			return descendantsEnv(call.Env, call.Focus, maxRepeatDepth), nil
		},
	})
}

// singletonTypeName extracts a type specifier argument's name, accepting
// either a TypeInfo value (from a prior type() call) or a plain string.
func singletonTypeName(c value.Collection) (string, bool) {
	v, ok := singleton(c)
	if !ok {
		return "", false
	}
	if ti, ok := v.AsTypeInfo(); ok {
		return ti.Name, true
	}
	return v.StringVal()
}

func matchesType(model registry.ModelProvider, v value.Value, typeName string) bool {
	if r, ok := v.Resource(); ok {
		if r.TypeHint == typeName {
			return true
		}
		return model != nil && model.IsSubtypeOf(r.TypeHint, typeName)
	}
	sti, ok := v.SystemTypeInfo()
	if !ok {
		return false
	}
	return sti.Name == typeName
}

// childrenEnv/descendantsEnv reimplement evaluator.ChildrenOf's traversal
// directly against a registry.Env's ModelProvider, since function bodies
// only ever see the narrow Env seam (never an *evaluator.Context), matching
// the package boundary set out in DESIGN.md (functions must not import
// evaluator to avoid a cycle back through the root fhirpath package).
func childrenEnv(env registry.Env, base value.Collection) value.Collection {
	var out value.Collection
	for _, v := range base {
		res, ok := v.Resource()
		if !ok {
			continue
		}
		for _, key := range res.Keys() {
			raw, _ := res.RawChild(key)
			elemType := ""
			if env != nil && env.ModelProvider() != nil {
				if t, ok := env.ModelProvider().ElementType(res.TypeHint, key); ok {
					elemType = t
				}
			}
			out = append(out, jsonToValuesEnv(raw, elemType)...)
		}
	}
	return out
}

func descendantsEnv(env registry.Env, base value.Collection, maxDepth int) value.Collection {
	frontier := childrenEnv(env, base)
	var out value.Collection
	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		out = append(out, frontier...)
		frontier = childrenEnv(env, frontier)
	}
	return out
}
