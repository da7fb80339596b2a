// Package registry holds the FHIRPath function catalogue: arity, dispatch
// category, and the sync/async implementation callbacks the evaluator
// invokes for FunctionCall nodes. Functions registering themselves live in
// package functions; this package only owns the table and lookup/dispatch
// rules, mirroring how the teacher keeps operation metadata (name, in/out
// parameters, arity) separate from the operation bodies in its
// OperationDefinition builders (internal/backend.go).
package registry

import (
	"context"
	"sort"

	"golang.org/x/exp/maps"

	"fhirpath-go/diagnostics"
	"fhirpath-go/modelprovider"
	"fhirpath-go/value"
)

// Category groups functions the way spec.md §5 tables them, used only for
// documentation/introspection via Func.Category.
type Category string

const (
	CategoryExistence   Category = "existence"
	CategoryFiltering   Category = "filtering"
	CategorySubsetting  Category = "subsetting"
	CategoryCombining   Category = "combining"
	CategoryConversion  Category = "conversion"
	CategoryString      Category = "string"
	CategoryMath        Category = "math"
	CategoryTemporal    Category = "temporal"
	CategoryReflection  Category = "reflection"
	CategoryAggregate   Category = "aggregate"
	CategoryUtility     Category = "utility"
	CategoryTerminology Category = "terminology"
)

// Arity bounds a function's argument count. Max of -1 means unbounded.
type Arity struct {
	Min int
	Max int
}

// CallEvaluator evaluates the lambda-position argument lambdaArgIndex of a
// call once, with this/index/total bound as $this/$index/$total; it is the
// callback lambda-taking functions use to evaluate their lambda per element.
// CallEvaluator is supplied by the evaluator package and kept as an opaque
// function value here to avoid an import cycle between registry and
// evaluator.
type CallEvaluator func(ctx context.Context, lambdaArgIndex int, this value.Value, index int, total value.Collection) (value.Collection, error)

// Call is everything a Func implementation needs: the focus collection
// (`$this` at the call site), raw argument node references it may choose to
// evaluate eagerly (via ArgValues, already computed by the evaluator for
// non-lambda positions) or per-element (via Eval, for lambda positions), plus
// the ambient environment.
type Call struct {
	Focus     value.Collection
	ArgValues []value.Collection // nil entries mark lambda-position args
	Eval      CallEvaluator
	Env       Env
}

// Env carries the pieces of evaluation state a function body may need:
// model provider, terminology provider, apd context, variable bindings. It
// is declared here (rather than imported from evaluator) to avoid a cycle;
// evaluator.Context satisfies it structurally and passes itself through.
type Env interface {
	ModelProvider() ModelProvider
	TerminologyProvider() TerminologyProvider
	RootResource() value.Value
	Variable(name string) (value.Collection, bool)
	DefineVariable(name string, val value.Collection)
	Trace(name string, values value.Collection)
}

// ModelProvider aliases modelprovider.Provider: function bodies (children(),
// ofType(), is/as/type()) need the full schema-knowledge surface, not just
// the hierarchy check, so this is a straight alias rather than a narrowed
// local interface.
type ModelProvider = modelprovider.Provider

// TerminologyProvider is the async-only terminology service seam
// (spec.md §5's memberOf/subsumes/translate/designation/property family).
type TerminologyProvider interface {
	MemberOf(ctx context.Context, coded value.Value, valueSet string) (bool, error)
	Subsumes(ctx context.Context, a, b value.Value) (string, error)
	Translate(ctx context.Context, coded value.Value, conceptMap string) (value.Collection, error)
	Designation(ctx context.Context, coded value.Value, language string) (value.Collection, error)
	Property(ctx context.Context, coded value.Value, property string) (value.Collection, error)
}

// SyncFunc is a function body that never needs to suspend for I/O.
type SyncFunc func(ctx context.Context, call Call) (value.Collection, error)

// AsyncFunc is a function body that may perform I/O (terminology lookups).
// It is only reachable through the evaluator's async entry point.
type AsyncFunc func(ctx context.Context, call Call) (value.Collection, error)

// Func is one registered operation: its metadata plus a Sync body, an Async
// body, or both (AsyncOnly marks "has no sync path at all").
type Func struct {
	Name       string
	Category   Category
	Arity      Arity
	Pure       bool // no side effects beyond trace(); used for const-folding callers
	Sync       SyncFunc
	Async      AsyncFunc
	AsyncOnly  bool // true for terminology functions: FP0054 from a sync call-site
}

// Registry is the function catalogue consulted by the evaluator.
type Registry struct {
	funcs map[string]Func
}

func New() *Registry {
	return &Registry{funcs: map[string]Func{}}
}

// Register adds f, panicking on a duplicate name: a programmer error in this
// module, never a runtime condition.
func (r *Registry) Register(f Func) {
	if _, exists := r.funcs[f.Name]; exists {
		panic("registry: duplicate function " + f.Name)
	}
	r.funcs[f.Name] = f
}

// Lookup returns the registered function, or FP0054 if unknown.
func (r *Registry) Lookup(name string) (Func, error) {
	f, ok := r.funcs[name]
	if !ok {
		return Func{}, diagnostics.Newf(diagnostics.UnknownFunction, "unknown function %q", name)
	}
	return f, nil
}

// CheckArity validates argc against f's declared bounds.
func CheckArity(f Func, argc int) error {
	if argc < f.Arity.Min || (f.Arity.Max >= 0 && argc > f.Arity.Max) {
		return diagnostics.Newf(diagnostics.ArgumentCountMismatch,
			"%s expects %s arguments, got %d", f.Name, arityString(f.Arity), argc)
	}
	return nil
}

func arityString(a Arity) string {
	if a.Max < 0 {
		if a.Min == 0 {
			return "any number of"
		}
		return "at least " + itoa(a.Min)
	}
	if a.Min == a.Max {
		return "exactly " + itoa(a.Min)
	}
	return "between " + itoa(a.Min) + " and " + itoa(a.Max)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Names returns every registered function name, sorted, for introspection
// and tests.
func (r *Registry) Names() []string {
	names := maps.Keys(r.funcs)
	sort.Strings(names)
	return names
}

// Dispatch runs f against call, honoring the sync/async rule of spec.md
// §4.4: an async-only function invoked from the synchronous entry point
// (preferSync) is rejected with FP0054, the same error kind as a missing
// function -- from a sync call site it is simply not callable, not merely
// unimplemented. With preferSync false, Dispatch prefers the Async
// implementation when present, falling back to Sync otherwise;
// fhirpath.Evaluate always dispatches with preferSync true.
func Dispatch(ctx context.Context, f Func, call Call, preferSync bool) (value.Collection, error) {
	if preferSync {
		if f.AsyncOnly {
			return nil, diagnostics.Newf(diagnostics.UnknownFunction,
				"unknown function %q (requires asynchronous evaluation)", f.Name)
		}
		if f.Sync != nil {
			return f.Sync(ctx, call)
		}
		return f.Async(ctx, call)
	}
	if f.Async != nil {
		return f.Async(ctx, call)
	}
	return f.Sync(ctx, call)
}
