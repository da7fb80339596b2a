package fhirpath_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/apd/v3"

	fhirpath "fhirpath-go"
	"fhirpath-go/trace"
	"fhirpath-go/value"
)

func mustResource(t *testing.T, doc string) value.Value {
	t.Helper()
	r, err := value.NewResource([]byte(doc))
	if err != nil {
		t.Fatalf("NewResource: %v", err)
	}
	return value.ResourceVal(r)
}

// TestEndToEndScenarios runs spec.md §8's concrete table, end to end through
// Parse+Evaluate.
func TestEndToEndScenarios(t *testing.T) {
	tests := []struct {
		name     string
		resource string
		expr     string
		want     string
	}{
		{"first given name", `{"resourceType":"Patient","active":true,"name":[{"given":["John","William"],"family":"Smith"}]}`, "Patient.name.given.first()", "John"},
		{"given name count", `{"resourceType":"Patient","name":[{"given":["John","William"]}]}`, "Patient.name.given.count()", "2"},
		{"choice type unit", `{"resourceType":"Observation","valueQuantity":{"value":185,"unit":"lbs"}}`, "Observation.value.unit", "lbs"},
		{"choice type string", `{"resourceType":"Observation","valueString":"Normal"}`, "Observation.value", "Normal"},
		{"choice type boolean", `{"resourceType":"Patient","deceasedBoolean":true}`, "Patient.deceased", "true"},
		{"is DomainResource", `{"resourceType":"Patient"}`, "Patient is DomainResource", "true"},
		{"union dedup", `{"resourceType":"Patient"}`, "(1 | 2 | 2 | 3).count()", "3"},
		{"date comparison", `{"resourceType":"Patient"}`, "('2014-01-05' as Date) < @2015", "true"},
		{"quantity unit conversion", `{"resourceType":"Patient"}`, "4 'g' = 4000 'mg'", "true"},
		{"iif", `{"resourceType":"Patient"}`, "iif(true, 'a', 'b')", "a"},
		{"string length and empty", `{"resourceType":"Patient"}`, "('abc'.length() = 3) and (''.empty())", "true"},
		{"three-valued or", `{"resourceType":"Patient"}`, "(1 = {}) or true", "true"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := mustResource(t, tc.resource)
			got, err := fhirpath.EvaluateExpression(context.Background(), input, tc.expr)
			if err != nil {
				t.Fatalf("EvaluateExpression(%q): %v", tc.expr, err)
			}
			if len(got) != 1 || got[0].String() != tc.want {
				t.Fatalf("%s => %v, want [%s]", tc.expr, got, tc.want)
			}
		})
	}
}

// TestWithAPDContextPrecision mirrors the retrieved example's "setting
// decimal precision" scenario.
func TestWithAPDContextPrecision(t *testing.T) {
	input := mustResource(t, `{"resourceType":"Patient"}`)
	ctx := fhirpath.WithAPDContext(context.Background(), apd.BaseContext.WithPrecision(10))
	got, err := fhirpath.EvaluateExpression(ctx, input, "10.0 / 3")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want one result, got %v", got)
	}
	if len(got[0].String()) < 8 {
		t.Fatalf("expected a high-precision decimal string, got %q", got[0].String())
	}
}

// TestWithEnvAndDefineVariable mirrors the retrieved example's "Define
// Variable" scenario: %a bound via WithEnv, and defineVariable() binding a
// new variable visible to the rest of the chain.
func TestWithEnvAndDefineVariable(t *testing.T) {
	input := mustResource(t, `{"resourceType":"Patient"}`)
	ctx := fhirpath.WithEnv(context.Background(), "bound", value.Str("outer"))

	got, err := fhirpath.EvaluateExpression(ctx, input, "%bound")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(got) != 1 || got[0].String() != "outer" {
		t.Fatalf("%%bound => %v", got)
	}

	got, err = fhirpath.EvaluateExpression(ctx, input, "defineVariable('a', 'b').select(%a)")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(got) != 1 || got[0].String() != "b" {
		t.Fatalf("defineVariable chain => %v", got)
	}
}

// TestWithTracer checks that trace() forwards its label and input unchanged
// to the installed Sink while passing the focus through untouched.
func TestWithTracer(t *testing.T) {
	input := mustResource(t, `{"resourceType":"Patient","name":[{"given":["Alice"]}]}`)
	mem := &trace.Memory{}
	ctx := fhirpath.WithTracer(context.Background(), mem)

	got, err := fhirpath.EvaluateExpression(ctx, input, "Patient.name.trace('names').given")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(got) != 1 || got[0].String() != "Alice" {
		t.Fatalf("trace() passthrough broke result: %v", got)
	}
	if len(mem.Entries) != 1 || mem.Entries[0].Name != "names" {
		t.Fatalf("expected one 'names' trace entry, got %#v", mem.Entries)
	}
}

// TestMustParsePanicsOnError exercises the library API shape named in
// SPEC_FULL.md §3 (MustParse), matching the retrieved example's call site.
func TestMustParsePanicsOnError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected MustParse to panic on invalid syntax")
		}
	}()
	fhirpath.MustParse("Patient..name")
}

// TestUnknownFunctionError exercises the FP0054 registry-dispatch error
// path (spec.md §4.4/§4.10).
func TestUnknownFunctionError(t *testing.T) {
	input := mustResource(t, `{"resourceType":"Patient"}`)
	_, err := fhirpath.EvaluateExpression(context.Background(), input, "Patient.nope()")
	if err == nil {
		t.Fatalf("expected an unknown-function error")
	}
}
