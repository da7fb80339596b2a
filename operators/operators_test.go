package operators

import (
	"testing"

	"github.com/cockroachdb/apd/v3"

	"fhirpath-go/ast"
	"fhirpath-go/value"
)

func TestApplyArithmetic(t *testing.T) {
	got, err := Apply(ast.OpAdd, value.Of(value.Int(2)), value.Of(value.Int(3)), apd.BaseContext.WithPrecision(16))
	if err != nil {
		t.Fatalf("Apply(Add): %v", err)
	}
	if i, ok := got[0].Int(); !ok || i != 5 {
		t.Fatalf("2+3 = %v, want 5", got)
	}
}

func TestArithmeticDivisionByZeroIsEmpty(t *testing.T) {
	got, err := Apply(ast.OpDiv, value.Of(value.Int(1)), value.Of(value.Int(0)), apd.BaseContext.WithPrecision(16))
	if err != nil {
		t.Fatalf("Apply(Div): %v", err)
	}
	if got != nil {
		t.Fatalf("1/0 = %v, want empty", got)
	}
}

func TestArithmeticIntDivPromotesToInt(t *testing.T) {
	got, err := Apply(ast.OpIntDiv, value.Of(value.Int(7)), value.Of(value.Int(2)), apd.BaseContext.WithPrecision(16))
	if err != nil {
		t.Fatalf("Apply(IntDiv): %v", err)
	}
	if i, ok := got[0].Int(); !ok || i != 3 {
		t.Fatalf("7 div 2 = %v, want 3", got)
	}
}

func TestEqualityEmptyOnLengthMismatch(t *testing.T) {
	got := Equality(false, value.Of(value.Int(1), value.Int(2)), value.Of(value.Int(1)))
	if got != nil {
		t.Fatalf("Equality on mismatched lengths = %v, want Empty", got)
	}
}

func TestEqualityBothEmptyYieldsEmpty(t *testing.T) {
	got := Equality(false, nil, nil)
	if got != nil {
		t.Fatalf("Equality({}, {}) = %v, want Empty (not true)", got)
	}
}

func TestEquivalenceBothEmptyYieldsTrue(t *testing.T) {
	got := Equivalence(false, nil, nil)
	if len(got) != 1 {
		t.Fatalf("Equivalence({}, {}) = %v", got)
	}
	if b, _ := got[0].Bool(); !b {
		t.Fatalf("Equivalence({}, {}) = %v, want true", got)
	}
}

func TestRelationalOrdering(t *testing.T) {
	got, err := Relational(ast.OpLt, value.Of(value.Int(1)), value.Of(value.Int(2)))
	if err != nil {
		t.Fatalf("Relational: %v", err)
	}
	if b, _ := got[0].Bool(); !b {
		t.Fatalf("1 < 2 = %v, want true", got)
	}
}

func TestRelationalNonSingletonIsEmpty(t *testing.T) {
	got, err := Relational(ast.OpLt, value.Of(value.Int(1), value.Int(2)), value.Of(value.Int(3)))
	if err != nil {
		t.Fatalf("Relational: %v", err)
	}
	if got != nil {
		t.Fatalf("Relational over multi-item collection = %v, want Empty", got)
	}
}

func TestConcatTreatsEmptyAsBlank(t *testing.T) {
	got, err := Concat(nil, value.Of(value.Str("b")))
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}
	if s, _ := got[0].StringVal(); s != "b" {
		t.Fatalf("{} & 'b' = %q, want \"b\"", s)
	}
}

func TestInAndContains(t *testing.T) {
	haystack := value.Of(value.Str("a"), value.Str("b"), value.Str("c"))
	in := In(value.Of(value.Str("b")), haystack)
	if b, _ := in[0].Bool(); !b {
		t.Fatalf("'b' in haystack = %v, want true", in)
	}
	contains := Contains(haystack, value.Of(value.Str("z")))
	if b, _ := contains[0].Bool(); b {
		t.Fatalf("haystack contains 'z' = %v, want false", contains)
	}
}

func TestUnionDedups(t *testing.T) {
	got := Union(value.Of(value.Int(1), value.Int(2)), value.Of(value.Int(2), value.Int(3)))
	if len(got) != 3 {
		t.Fatalf("Union = %v, want 3 elements", got)
	}
}

func TestUnaryMinusAndPlus(t *testing.T) {
	got, err := Unary(ast.OpUnaryMinus, value.Of(value.Int(5)))
	if err != nil {
		t.Fatalf("Unary(-): %v", err)
	}
	if i, _ := got[0].Int(); i != -5 {
		t.Fatalf("-5 = %v, want -5", got)
	}

	got, err = Unary(ast.OpUnaryPlus, value.Of(value.Int(5)))
	if err != nil {
		t.Fatalf("Unary(+): %v", err)
	}
	if i, _ := got[0].Int(); i != 5 {
		t.Fatalf("+5 = %v, want 5", got)
	}
}

func TestQuantityArithmeticIncompatibleUnits(t *testing.T) {
	l := value.NewQuantity(apd.New(1, 0), "kg")
	r := value.NewQuantity(apd.New(1, 0), "s")
	_, err := Apply(ast.OpAdd, value.Of(value.QuantityVal(l)), value.Of(value.QuantityVal(r)), apd.BaseContext.WithPrecision(16))
	if err == nil {
		t.Fatalf("expected an incompatible-units error for kg + s")
	}
}

func TestQuantityArithmeticConvertsCompatibleUnits(t *testing.T) {
	l := value.NewQuantity(apd.New(4, 0), "g")
	r := value.NewQuantity(apd.New(4000, 0), "mg")
	got, err := Apply(ast.OpAdd, value.Of(value.QuantityVal(l)), value.Of(value.QuantityVal(r)), apd.BaseContext.WithPrecision(16))
	if err != nil {
		t.Fatalf("4g + 4000mg: %v", err)
	}
	q, ok := got[0].Quantity()
	if !ok {
		t.Fatalf("result is not a Quantity: %v", got)
	}
	if q.Unit != "g" {
		t.Fatalf("unit = %q, want g (left operand's unit)", q.Unit)
	}
}

func TestTemporalArithmeticMonthClampsToLastValidDay(t *testing.T) {
	date, err := value.ParseDate("2014-01-31")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	month := value.NewQuantity(apd.New(1, 0), "month")
	got, err := Apply(ast.OpAdd, value.Of(value.DateVal(date)), value.Of(value.QuantityVal(month)), apd.BaseContext.WithPrecision(16))
	if err != nil {
		t.Fatalf("@2014-01-31 + 1 month: %v", err)
	}
	shifted, ok := got[0].Temporal()
	if !ok {
		t.Fatalf("result is not temporal: %v", got)
	}
	if shifted.Year != 2014 || shifted.Month != 2 || shifted.Day != 28 {
		t.Fatalf("@2014-01-31 + 1 month = %04d-%02d-%02d, want 2014-02-28", shifted.Year, shifted.Month, shifted.Day)
	}
	if shifted.String() != "2014-02" {
		t.Fatalf("@2014-01-31 + 1 month = %s, want 2014-02 (precision reduced to month)", shifted.String())
	}
}

func TestTemporalArithmeticYearReducesPrecisionToYear(t *testing.T) {
	date, err := value.ParseDate("2014-01-31")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	year := value.NewQuantity(apd.New(1, 0), "year")
	got, err := Apply(ast.OpAdd, value.Of(value.DateVal(date)), value.Of(value.QuantityVal(year)), apd.BaseContext.WithPrecision(16))
	if err != nil {
		t.Fatalf("@2014-01-31 + 1 year: %v", err)
	}
	shifted, ok := got[0].Temporal()
	if !ok {
		t.Fatalf("result is not temporal: %v", got)
	}
	if shifted.Precision != value.PrecisionYear {
		t.Fatalf("precision = %s, want year (min of day precision and year granularity)", shifted.Precision)
	}
	if shifted.String() != "2015" {
		t.Fatalf("@2014-01-31 + 1 year = %s, want 2015", shifted.String())
	}
}
