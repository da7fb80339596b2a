package evaluator

import (
	"context"
	"testing"

	"fhirpath-go/functions"
	"fhirpath-go/modelprovider"
	"fhirpath-go/parser"
	"fhirpath-go/registry"
	"fhirpath-go/value"
)

func newTestContext(t *testing.T, doc string) *Context {
	t.Helper()
	r, err := value.NewResource([]byte(doc))
	if err != nil {
		t.Fatalf("NewResource: %v", err)
	}
	reg := registry.New()
	functions.RegisterAll(reg)
	return New(reg, modelprovider.NewDefault(), value.ResourceVal(r))
}

func eval(t *testing.T, ec *Context, src string) value.Collection {
	t.Helper()
	tree, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	got, err := Eval(context.Background(), ec, tree, tree.Root)
	if err != nil {
		t.Fatalf("Eval(%q): %v", src, err)
	}
	return got
}

func TestNavigateSimplePath(t *testing.T) {
	ec := newTestContext(t, `{"resourceType":"Patient","name":[{"family":"Smith"}]}`)
	got := eval(t, ec, "Patient.name.family")
	if len(got) != 1 {
		t.Fatalf("Patient.name.family = %v", got)
	}
	if s, _ := got[0].StringVal(); s != "Smith" {
		t.Fatalf("family = %q, want Smith", s)
	}
}

func TestNavigateMissingElementIsEmpty(t *testing.T) {
	ec := newTestContext(t, `{"resourceType":"Patient"}`)
	got := eval(t, ec, "Patient.name.family")
	if got != nil {
		t.Fatalf("missing path = %v, want Empty", got)
	}
}

func TestDefineVariableVisibleDownstream(t *testing.T) {
	ec := newTestContext(t, `{"resourceType":"Patient"}`)
	got := eval(t, ec, "defineVariable('x', 42).select(%x + 1)")
	if len(got) != 1 {
		t.Fatalf("got %v", got)
	}
	if i, ok := got[0].Int(); !ok || i != 43 {
		t.Fatalf("select(%%x+1) = %v, want 43", got)
	}
}

func TestDefineVariableOnChildNotVisibleToParent(t *testing.T) {
	// a variable defined on a WithFocus clone must not be visible on the
	// Context it was cloned from (lambda-entry isolation per WithFocus).
	ec := newTestContext(t, `{"resourceType":"Patient"}`)
	child := ec.WithFocus(value.Int(1), 0, value.Of(value.Int(1)))
	child.DefineVariable("local", value.Of(value.Str("v")))
	if _, ok := ec.Variable("local"); ok {
		t.Fatalf("parent context should not see child-defined variable")
	}
	if _, ok := child.Variable("local"); !ok {
		t.Fatalf("child context should see its own defined variable")
	}
}

func TestWithFocusSetsThisIndexTotal(t *testing.T) {
	ec := newTestContext(t, `{"resourceType":"Patient"}`)
	total := value.Of(value.Int(10), value.Int(20))
	child := ec.WithFocus(value.Int(20), 1, total)

	this, ok := child.This()
	if !ok {
		t.Fatalf("This() not set")
	}
	if i, _ := this.Int(); i != 20 {
		t.Fatalf("This() = %v, want 20", this)
	}
	if child.Index() != 1 {
		t.Fatalf("Index() = %d, want 1", child.Index())
	}
	if len(child.TotalCollection()) != 2 {
		t.Fatalf("TotalCollection() = %v", child.TotalCollection())
	}
}

func TestSystemVariablesSeeded(t *testing.T) {
	ec := newTestContext(t, `{"resourceType":"Patient"}`)
	got := eval(t, ec, "%loinc")
	if len(got) != 1 {
		t.Fatalf("%%loinc = %v", got)
	}
	if s, _ := got[0].StringVal(); s != "http://loinc.org" {
		t.Fatalf("%%loinc = %q", s)
	}
}

func TestContextVariableTracksThis(t *testing.T) {
	ec := newTestContext(t, `{"resourceType":"Patient","name":[{"family":"A"},{"family":"B"}]}`)
	got := eval(t, ec, "name.where(%context.family = 'B').family")
	if len(got) != 1 {
		t.Fatalf("got %v", got)
	}
	if s, _ := got[0].StringVal(); s != "B" {
		t.Fatalf("%%context-filtered family = %q, want B", s)
	}
}

func TestIndexExpression(t *testing.T) {
	ec := newTestContext(t, `{"resourceType":"Patient","name":[{"family":"A"},{"family":"B"}]}`)
	got := eval(t, ec, "name[1].family")
	if len(got) != 1 {
		t.Fatalf("got %v", got)
	}
	if s, _ := got[0].StringVal(); s != "B" {
		t.Fatalf("name[1].family = %q, want B", s)
	}
}

func TestIndexOutOfRangeIsEmpty(t *testing.T) {
	ec := newTestContext(t, `{"resourceType":"Patient","name":[{"family":"A"}]}`)
	got := eval(t, ec, "name[5].family")
	if got != nil {
		t.Fatalf("out-of-range index = %v, want Empty", got)
	}
}

func TestUnionOperator(t *testing.T) {
	ec := newTestContext(t, `{"resourceType":"Patient"}`)
	got := eval(t, ec, "(1 | 2) | 2")
	if len(got) != 2 {
		t.Fatalf("(1|2)|2 = %v, want 2 distinct elements", got)
	}
}
