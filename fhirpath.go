// Package fhirpath is the public entry point for this module: parsing
// expressions, evaluating them against a resource, and wiring the ambient
// evaluation environment (variables, tracer, decimal precision, model
// provider) through a plain context.Context.
//
// The call shape here (Parse/MustParse/Evaluate/EvaluateExpression plus
// WithEnv/WithTracer/WithAPDContext) mirrors the public surface the teacher
// consumes from the wrapped library it wraps
// (other_examples/*damedic-fhir-toolbox-go*examples-fhirpath-main.go*):
// fhirpath.MustParse, fhirpath.Evaluate(ctx, element, expr),
// fhirpath.WithEnv(ctx, name, value), fhirpath.WithTracer(ctx, tracer),
// fhirpath.WithAPDContext(ctx, apd.BaseContext.WithPrecision(n)). Unlike the
// teacher, this package backs that surface with its own lexer/parser/
// evaluator instead of forwarding to an external engine (SPEC_FULL.md §3).
package fhirpath

import (
	"context"

	"github.com/cockroachdb/apd/v3"

	"fhirpath-go/ast"
	"fhirpath-go/evaluator"
	"fhirpath-go/functions"
	"fhirpath-go/modelprovider"
	"fhirpath-go/parser"
	"fhirpath-go/registry"
	"fhirpath-go/trace"
	"fhirpath-go/value"
)

type ctxKey int

const (
	envKey ctxKey = iota
	tracerKey
	apdKey
	modelKey
	termKey
)

// DefaultRegistry is the process-wide function/operator catalogue every
// Evaluate call dispatches through; hosts introspect it for completion or
// documentation (spec.md §6.1's "registry accessor").
var DefaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *registry.Registry {
	r := registry.New()
	functions.RegisterAll(r)
	return r
}

// Parse turns source into an AST, or returns the lex/parse error.
func Parse(source string) (*ast.Tree, error) {
	return parser.Parse(source)
}

// MustParse is Parse, panicking on error; for callers with compile-time
// constant expressions (tests, examples).
func MustParse(source string) *ast.Tree {
	tree, err := Parse(source)
	if err != nil {
		panic(err)
	}
	return tree
}

// WithEnv binds name (usable as %name in the expression) to v for the
// duration of ctx's descendants. Calling it repeatedly accumulates bindings;
// the last call for a given name wins.
func WithEnv(ctx context.Context, name string, v value.Value) context.Context {
	prev, _ := ctx.Value(envKey).(map[string]value.Collection)
	next := make(map[string]value.Collection, len(prev)+1)
	for k, existing := range prev {
		next[k] = existing
	}
	next[name] = value.Of(v)
	return context.WithValue(ctx, envKey, next)
}

// WithTracer installs the sink fed by the trace() function; without one,
// trace() entries are discarded (trace.Noop).
func WithTracer(ctx context.Context, sink trace.Sink) context.Context {
	return context.WithValue(ctx, tracerKey, sink)
}

// WithAPDContext overrides the arbitrary-precision decimal context
// (rounding mode, precision) used by Decimal arithmetic and conversions.
func WithAPDContext(ctx context.Context, apdCtx *apd.Context) context.Context {
	return context.WithValue(ctx, apdKey, apdCtx)
}

// WithModelProvider installs the schema source used for navigation,
// children(), type reflection, and resolve(); without one, Evaluate falls
// back to modelprovider.NewDefault().
func WithModelProvider(ctx context.Context, mp modelprovider.Provider) context.Context {
	return context.WithValue(ctx, modelKey, mp)
}

// WithTerminologyProvider installs the async terminology backend consulted
// by memberOf/subsumes/subsumedBy/translate/designation/property when they
// are dispatched asynchronously; without one they report FP0060. Evaluate
// dispatches synchronously, where these async-only functions report FP0054.
func WithTerminologyProvider(ctx context.Context, tp registry.TerminologyProvider) context.Context {
	return context.WithValue(ctx, termKey, tp)
}

// Evaluate runs tree against input under the environment ctx carries
// (WithEnv/WithTracer/WithAPDContext/WithModelProvider), returning the
// result collection.
func Evaluate(ctx context.Context, input value.Value, tree *ast.Tree) (value.Collection, error) {
	mp, _ := ctx.Value(modelKey).(modelprovider.Provider)
	if mp == nil {
		mp = modelprovider.NewDefault()
	}

	ec := evaluator.New(DefaultRegistry, mp, input)
	if apdCtx, ok := ctx.Value(apdKey).(*apd.Context); ok && apdCtx != nil {
		ec.APD = apdCtx
	}
	if sink, ok := ctx.Value(tracerKey).(trace.Sink); ok && sink != nil {
		ec.Tracer = sink
	}
	if tp, ok := ctx.Value(termKey).(registry.TerminologyProvider); ok {
		ec.Terminology = tp
	}
	if env, ok := ctx.Value(envKey).(map[string]value.Collection); ok {
		for name, v := range env {
			ec.DefineVariable(name, v)
		}
	}

	return evaluator.Eval(ctx, ec, tree, tree.Root)
}

// EvaluateExpression is Parse followed by Evaluate, for callers with a
// one-shot expression string.
func EvaluateExpression(ctx context.Context, input value.Value, source string) (value.Collection, error) {
	tree, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return Evaluate(ctx, input, tree)
}
