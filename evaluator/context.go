// Package evaluator tree-walks an ast.Tree against a Context, producing the
// value.Collection every FHIRPath expression evaluates to (spec.md §4).
//
// The dispatch loop is grounded on the teacher's own consumption pattern of
// fhirpath.Evaluate(ctx, element, parsedExpr) in internal/backend.go, and the
// per-node-kind semantics are grounded, file by file, on
// original_source/crates/fhirpath-evaluator/src (see DESIGN.md's ledger).
package evaluator

import (
	"github.com/cockroachdb/apd/v3"

	"fhirpath-go/modelprovider"
	"fhirpath-go/registry"
	"fhirpath-go/trace"
	"fhirpath-go/value"
)

// Context is the evaluation environment every node evaluator receives as a
// pointer. Each lambda iteration runs against a clone made by WithFocus, so
// bindings made inside a lambda body are not seen outside it;
// defineVariable binds on the Context it is called with, without copying it.
type Context struct {
	Registry    *registry.Registry
	Model       modelprovider.Provider
	Terminology registry.TerminologyProvider
	APD         *apd.Context
	Tracer      trace.Sink

	root value.Value
	vars map[string]value.Collection

	this  value.Value
	index int
	total value.Collection
	hasThis bool
	async bool
}

// New builds a root Context for evaluating against root, the way
// fhirpath.WithEnv(ctx, "resource", ...) seeds the teacher's environment.
func New(reg *registry.Registry, model modelprovider.Provider, root value.Value) *Context {
	return &Context{
		Registry: reg,
		Model:    model,
		APD:      apd.BaseContext.WithPrecision(34),
		Tracer:   trace.Noop{},
		root:     root,
		vars:     systemVariables(),
		this:     root,
		hasThis:  true,
	}
}

// systemVariables seeds the well-known terminology-system URI constants
// spec.md §3.3 names (%sct/%loinc/%ucum); %context/%resource/%rootResource
// are handled specially by Variable itself since they track $this/root.
func systemVariables() map[string]value.Collection {
	return map[string]value.Collection{
		"sct":   value.Of(value.Str("http://snomed.info/sct")),
		"loinc": value.Of(value.Str("http://loinc.org")),
		"ucum":  value.Of(value.Str("http://unitsofmeasure.org")),
	}
}

// clone copies the variable map (copy-on-write semantics: writes to the
// clone never affect the parent) along with $this/$index/$total, for
// lambda-entry scoping.
func (c *Context) clone() *Context {
	vars := make(map[string]value.Collection, len(c.vars))
	for k, v := range c.vars {
		vars[k] = v
	}
	cp := *c
	cp.vars = vars
	return &cp
}

// WithFocus returns a Context with $this/$index bound to one element of a
// lambda iteration (where/select/all/any/repeat/sort).
func (c *Context) WithFocus(this value.Value, index int, total value.Collection) *Context {
	cp := c.clone()
	cp.this = this
	cp.index = index
	cp.total = total
	cp.hasThis = true
	return cp
}

func (c *Context) This() (value.Value, bool)    { return c.this, c.hasThis }
func (c *Context) Index() int                   { return c.index }
func (c *Context) TotalCollection() value.Collection { return c.total }

// ModelProvider / TerminologyProvider / RootResource / Variable /
// DefineVariable / Trace implement registry.Env so function bodies can reach
// the ambient environment without importing package evaluator (avoiding a
// cycle: evaluator imports functions' registrations transitively via the
// root fhirpath package, not the other way around).
func (c *Context) ModelProvider() registry.ModelProvider           { return c.Model }
func (c *Context) TerminologyProvider() registry.TerminologyProvider { return c.Terminology }
func (c *Context) RootResource() value.Value                       { return c.root }

func (c *Context) Variable(name string) (value.Collection, bool) {
	switch name {
	case "context":
		return value.Of(c.this), true
	case "resource", "rootResource":
		return value.Of(c.root), true
	}
	v, ok := c.vars[name]
	return v, ok
}

// DefineVariable binds name on this Context only: callers that want
// chain-scoped visibility must be holding the clone created at the start of
// the chain (the evaluator's Path/Invocation walk reuses one Context across
// a left-to-right chain, per DESIGN.md).
func (c *Context) DefineVariable(name string, val value.Collection) {
	c.vars[name] = val
}

func (c *Context) Trace(name string, values value.Collection) {
	c.Tracer.Log(name, values)
}
