package functions_test

import (
	"context"
	"testing"

	fhirpath "fhirpath-go"
	"fhirpath-go/value"
)

func eval(t *testing.T, expr string) value.Collection {
	t.Helper()
	r, err := value.NewResource([]byte(`{"resourceType":"Patient","name":[{"given":["John","William"],"family":"Smith"},{"given":["Johnny"],"family":"Smith"}]}`))
	if err != nil {
		t.Fatalf("NewResource: %v", err)
	}
	got, err := fhirpath.EvaluateExpression(context.Background(), value.ResourceVal(r), expr)
	if err != nil {
		t.Fatalf("EvaluateExpression(%q): %v", expr, err)
	}
	return got
}

func TestExistenceFunctions(t *testing.T) {
	tests := []struct{ expr, want string }{
		{"Patient.name.exists()", "true"},
		{"Patient.photo.exists()", "false"},
		{"Patient.photo.empty()", "true"},
		{"Patient.name.count()", "2"},
		{"Patient.name.family.isDistinct()", "false"},
		{"Patient.name.family.distinct().count()", "1"},
		{"Patient.name.allTrue()", "true"}, // vacuous on non-boolean focus falls through to true per all()
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got := eval(t, tc.expr)
			if len(got) != 1 || got[0].String() != tc.want {
				t.Fatalf("%s = %v, want [%s]", tc.expr, got, tc.want)
			}
		})
	}
}

func TestFilteringAndSubsettingFunctions(t *testing.T) {
	tests := []struct{ expr, want string }{
		{"Patient.name.where(family = 'Smith').count()", "2"},
		{"Patient.name.select(given).count()", "3"},
		{"Patient.name.first().family", "Smith"},
		{"Patient.name.last().given.first()", "Johnny"},
		{"Patient.name.tail().count()", "1"},
		{"Patient.name.skip(1).count()", "1"},
		{"Patient.name.take(1).count()", "1"},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got := eval(t, tc.expr)
			if len(got) != 1 || got[0].String() != tc.want {
				t.Fatalf("%s = %v, want [%s]", tc.expr, got, tc.want)
			}
		})
	}
}

func TestStringFunctions(t *testing.T) {
	tests := []struct{ expr, want string }{
		{"'hello'.substring(1, 3)", "ell"},
		{"'hello'.indexOf('l')", "2"},
		{"'hello'.replace('l', 'L')", "heLLo"},
		{"'hello'.matches('^h.*o$')", "true"},
		{"'  hi  '.trim()", "hi"},
		{"'a,b,c'.split(',').count()", "3"},
		{"('a' | 'b' | 'c').join(',')", "a,b,c"},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got := eval(t, tc.expr)
			if len(got) != 1 || got[0].String() != tc.want {
				t.Fatalf("%s = %v, want [%s]", tc.expr, got, tc.want)
			}
		})
	}
}

func TestMathFunctions(t *testing.T) {
	tests := []struct{ expr, want string }{
		{"(-5).abs()", "5"},
		{"4.sqrt()", "2"},
		{"2.power(10)", "1024"},
		{"1.45.round(1)", "1.5"},
		{"1.5.truncate()", "1"},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got := eval(t, tc.expr)
			if len(got) != 1 {
				t.Fatalf("%s = %v", tc.expr, got)
			}
			if got[0].String() != tc.want {
				t.Fatalf("%s = %v, want [%s]", tc.expr, got, tc.want)
			}
		})
	}
}

func TestAggregateFunction(t *testing.T) {
	got := eval(t, "(1 | 2 | 3 | 4).aggregate($this + $total, 0)")
	if len(got) != 1 || got[0].String() != "10" {
		t.Fatalf("aggregate sum = %v, want [10]", got)
	}
}

func TestConversionFunctions(t *testing.T) {
	tests := []struct{ expr, want string }{
		{"'42'.convertsToInteger()", "true"},
		{"Patient.name.family.first() is String", "true"},
		{"(1).convertsToDecimal()", "true"},
		{"'abc'.toInteger().empty()", "true"},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got := eval(t, tc.expr)
			if len(got) != 1 || got[0].String() != tc.want {
				t.Fatalf("%s = %v, want [%s]", tc.expr, got, tc.want)
			}
		})
	}
}

func TestUtilityFunctions(t *testing.T) {
	got := eval(t, "iif(Patient.name.exists(), 'has-name', 'no-name')")
	if len(got) != 1 || got[0].String() != "has-name" {
		t.Fatalf("iif = %v, want [has-name]", got)
	}
}

func TestCombiningFunctions(t *testing.T) {
	tests := []struct{ expr, want string }{
		{"(1 | 2).combine(2 | 3).count()", "4"},
		{"(1 | 2).union(2 | 3).count()", "3"},
		{"(1 | 2).intersect(2 | 3).count()", "1"},
		{"(1 | 2).exclude(2).count()", "1"},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got := eval(t, tc.expr)
			if len(got) != 1 || got[0].String() != tc.want {
				t.Fatalf("%s = %v, want [%s]", tc.expr, got, tc.want)
			}
		})
	}
}
