package evaluator

import (
	"context"
	"fmt"

	"fhirpath-go/ast"
	"fhirpath-go/registry"
	"fhirpath-go/value"
)

// Async, when true, routes function dispatch through the registry's
// asynchronous path (required for terminology functions). The root
// fhirpath package's Evaluate never sets it, so every call made through
// Evaluate is dispatched synchronously and an async-only function surfaces
// FP0054 instead of silently blocking.
func (c *Context) SetAsync(async bool) { c.async = async }

func callFunction(ctxGo context.Context, ec *Context, tree *ast.Tree, name string, argNodes []ast.NodeID, focus value.Collection) (value.Collection, error) {
	fn, err := ec.Registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	if err := registry.CheckArity(fn, len(argNodes)); err != nil {
		return nil, err
	}

	argValues := make([]value.Collection, len(argNodes))
	for i, argID := range argNodes {
		if tree.Node(argID).Kind == ast.KindLambda {
			continue // left nil: lambda positions are evaluated per-element via Eval below
		}
		v, err := Eval(ctxGo, ec, tree, argID)
		if err != nil {
			return nil, err
		}
		argValues[i] = v
	}

	callEvaluator := func(innerCtx context.Context, lambdaArgIndex int, this value.Value, index int, total value.Collection) (value.Collection, error) {
		if lambdaArgIndex < 0 || lambdaArgIndex >= len(argNodes) {
			return nil, fmt.Errorf("%s: invalid lambda argument index %d", name, lambdaArgIndex)
		}
		lambdaNode := tree.Node(argNodes[lambdaArgIndex])
		lc := ec.WithFocus(this, index, total)
		return Eval(innerCtx, lc, tree, lambdaNode.Body)
	}

	call := registry.Call{
		Focus:     focus,
		ArgValues: argValues,
		Eval:      callEvaluator,
		Env:       ec,
	}
	return registry.Dispatch(ctxGo, fn, call, !ec.async)
}
