// Package operators implements the eager binary/unary operators of
// spec.md §4.6 over already-evaluated Collections: arithmetic, string
// concatenation, comparison, equality/equivalence, and containment. The
// short-circuiting Boolean connectives (and/or/xor/implies) need access to
// the unevaluated right-hand AST and stay in package evaluator.
//
// Grounded on original_source/crates/fhirpath-registry/src/operations's
// comparison/logical/unified_operators families (translated into Go's
// singleton/collection idiom, not transliterated) and on apd/v3's own
// Context.Add/Sub/Mul/Quo/QuoInteger/Rem usage pattern as seen across the
// retrieval pack wherever apd is used for arbitrary-precision math.
package operators

import (
	"github.com/cockroachdb/apd/v3"

	"fhirpath-go/diagnostics"
	"fhirpath-go/value"
	"fhirpath-go/value/quantity"
)

// singleton reduces a Collection to its one element, erroring (as Empty,
// not a Go error) when the count isn't exactly one: most operators in this
// package are only meaningfully defined for singleton operands
// (spec.md §4.6: "applying to multi-item collections is an error"), which
// the evaluator surfaces as an empty result rather than a thrown error,
// matching FHIRPath's general tolerance for shape mismatches.
func singleton(c value.Collection) (value.Value, bool) {
	if len(c) != 1 {
		return value.Value{}, false
	}
	return c[0], true
}

// Arithmetic implements +, -, *, /, div, mod between two singleton operands,
// supporting Integer/Decimal promotion, String/Date/Time offsetting for +/-
// where the right operand is a Quantity, and Quantity±Quantity.
func Arithmetic(op Kind, left, right value.Collection, apdCtx *apd.Context) (value.Collection, error) {
	l, lok := singleton(left)
	r, rok := singleton(right)
	if !lok || !rok {
		return nil, nil
	}

	if lq, ok := l.Quantity(); ok {
		rq, ok := r.Quantity()
		if !ok {
			return nil, diagnostics.Newf(diagnostics.TypeError, "cannot apply %s between Quantity and non-Quantity", op)
		}
		return quantityArithmetic(op, lq, rq, apdCtx)
	}

	if isNumeric(l) && isNumeric(r) {
		return numericArithmetic(op, l, r, apdCtx)
	}

	if op == KindAdd {
		if ls, ok := l.StringVal(); ok {
			if rs, ok := r.StringVal(); ok {
				return value.Of(value.Str(ls + rs)), nil
			}
		}
	}

	if t, ok := l.Temporal(); ok && (op == KindAdd || op == KindSub) {
		rq, ok := r.Quantity()
		if !ok {
			return nil, diagnostics.Newf(diagnostics.TypeError, "%s requires a Quantity offset", op)
		}
		return temporalArithmetic(op, l.Kind, t, rq)
	}

	return nil, diagnostics.Newf(diagnostics.TypeError, "unsupported operand types for %s", op)
}

func isNumeric(v value.Value) bool {
	_, okI := v.Int()
	_, okD := v.Decimal()
	return okI || okD
}

func numericArithmetic(op Kind, l, r value.Value, apdCtx *apd.Context) (value.Collection, error) {
	li, liok := l.Int()
	ri, riok := r.Int()
	if liok && riok && op != KindDiv {
		result, err := intArithmetic(op, li, ri)
		if err != nil {
			return nil, err
		}
		return value.Of(result), nil
	}
	ld, _ := l.AsDecimal()
	rd, _ := r.AsDecimal()
	out := new(apd.Decimal)
	switch op {
	case KindAdd:
		if _, err := apdCtx.Add(out, ld, rd); err != nil {
			return nil, diagnostics.Wrap(diagnostics.TypeError, "decimal addition failed", err)
		}
	case KindSub:
		if _, err := apdCtx.Sub(out, ld, rd); err != nil {
			return nil, diagnostics.Wrap(diagnostics.TypeError, "decimal subtraction failed", err)
		}
	case KindMul:
		if _, err := apdCtx.Mul(out, ld, rd); err != nil {
			return nil, diagnostics.Wrap(diagnostics.TypeError, "decimal multiplication failed", err)
		}
	case KindDiv:
		if rd.IsZero() {
			return nil, nil // FHIRPath: division by zero yields {}, not an error
		}
		if _, err := apdCtx.Quo(out, ld, rd); err != nil {
			return nil, diagnostics.Wrap(diagnostics.TypeError, "decimal division failed", err)
		}
	case KindIntDiv:
		if rd.IsZero() {
			return nil, nil
		}
		if _, err := apdCtx.QuoInteger(out, ld, rd); err != nil {
			return nil, diagnostics.Wrap(diagnostics.TypeError, "integer division failed", err)
		}
		i, err := out.Int64()
		if err != nil {
			return value.Of(value.Dec(out)), nil
		}
		return value.Of(value.Int(i)), nil
	case KindMod:
		if rd.IsZero() {
			return nil, nil
		}
		if _, err := apdCtx.Rem(out, ld, rd); err != nil {
			return nil, diagnostics.Wrap(diagnostics.TypeError, "modulo failed", err)
		}
	default:
		return nil, diagnostics.Newf(diagnostics.TypeError, "%s is not an arithmetic operator", op)
	}
	return value.Of(value.Dec(out)), nil
}

func intArithmetic(op Kind, l, r int64) (value.Value, error) {
	switch op {
	case KindAdd:
		return value.Int(l + r), nil
	case KindSub:
		return value.Int(l - r), nil
	case KindMul:
		return value.Int(l * r), nil
	case KindIntDiv:
		if r == 0 {
			return value.Value{}, nil
		}
		return value.Int(l / r), nil
	case KindMod:
		if r == 0 {
			return value.Value{}, nil
		}
		return value.Int(l % r), nil
	default:
		return value.Value{}, diagnostics.Newf(diagnostics.TypeError, "%s is not an integer operator", op)
	}
}

func quantityArithmetic(op Kind, l, r value.Quantity, apdCtx *apd.Context) (value.Collection, error) {
	switch op {
	case KindAdd, KindSub:
		if !quantity.Compatible(l.Unit, r.Unit) {
			return nil, diagnostics.Newf(diagnostics.IncompatibleUnits, "incompatible units %q and %q", l.Unit, r.Unit)
		}
		conv, ok := quantity.ConvertTo(r.Value, r.Unit, l.Unit, apdCtx)
		if !ok {
			return nil, diagnostics.Newf(diagnostics.IncompatibleUnits, "cannot convert %q to %q", r.Unit, l.Unit)
		}
		out := new(apd.Decimal)
		if op == KindAdd {
			apdCtx.Add(out, l.Value, conv)
		} else {
			apdCtx.Sub(out, l.Value, conv)
		}
		return value.Of(value.QuantityVal(value.NewQuantity(out, l.Unit))), nil
	case KindMul:
		out := new(apd.Decimal)
		apdCtx.Mul(out, l.Value, r.Value)
		return value.Of(value.QuantityVal(value.NewQuantity(out, combineUnits(l.Unit, r.Unit, "*")))), nil
	case KindDiv:
		if r.Value.IsZero() {
			return nil, nil
		}
		out := new(apd.Decimal)
		apdCtx.Quo(out, l.Value, r.Value)
		return value.Of(value.QuantityVal(value.NewQuantity(out, combineUnits(l.Unit, r.Unit, "/")))), nil
	default:
		return nil, diagnostics.Newf(diagnostics.TypeError, "%s is not defined for Quantity", op)
	}
}

// combineUnits is a best-effort unit-string combiner (e.g. "m" * "s" ->
// "m.s"): full UCUM unit algebra is out of scope (see value/quantity's
// package doc), so this only covers the common same-unit cancellation case.
func combineUnits(a, b, op string) string {
	if op == "/" && a == b {
		return "1"
	}
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if op == "*" {
		op = "."
	}
	return a + op + b
}

// temporalArithmetic implements +/- between a Date/DateTime/Time and a
// calendar-unit Quantity (spec.md §4.7): year/month units step calendar
// fields with day-of-month clamping (Temporal.ShiftCalendar), the remaining
// units shift by a fixed number of days/fractional days (Temporal.ShiftDays).
// The result's precision is reduced to the minimum of t's own precision and
// the unit's granularity, never increased past either.
func temporalArithmetic(op Kind, kind value.Kind, t value.Temporal, offset value.Quantity) (value.Collection, error) {
	f, err := offset.Value.Float64()
	if err != nil {
		return nil, diagnostics.Newf(diagnostics.TypeError, "invalid duration magnitude for %s", op)
	}
	sign := 1
	if op == KindSub {
		sign = -1
	}

	var shifted value.Temporal
	var granularity value.Precision
	switch quantity.Canonical(offset.Unit) {
	case "a":
		shifted = t.ShiftCalendar(sign*roundToInt(f), 0)
		granularity = value.PrecisionYear
	case "mo":
		shifted = t.ShiftCalendar(0, sign*roundToInt(f))
		granularity = value.PrecisionMonth
	case "wk":
		shifted = t.ShiftDays(float64(sign) * f * 7)
		granularity = value.PrecisionDay
	case "d":
		shifted = t.ShiftDays(float64(sign) * f)
		granularity = value.PrecisionDay
	case "h":
		shifted = t.ShiftDays(float64(sign) * f / 24)
		granularity = value.PrecisionHour
	case "min":
		shifted = t.ShiftDays(float64(sign) * f / (24 * 60))
		granularity = value.PrecisionMinute
	case "s":
		shifted = t.ShiftDays(float64(sign) * f / 86400)
		granularity = value.PrecisionSecond
	case "ms":
		shifted = t.ShiftDays(float64(sign) * f / 86400000)
		granularity = value.PrecisionMillisecond
	default:
		return nil, diagnostics.Newf(diagnostics.TypeError, "unsupported duration unit %q", offset.Unit)
	}
	if granularity < shifted.Precision {
		shifted.Precision = granularity
	}
	switch kind {
	case value.KindDate:
		return value.Of(value.DateVal(shifted)), nil
	case value.KindDateTime:
		return value.Of(value.DateTimeVal(shifted)), nil
	default:
		return value.Of(value.TimeVal(shifted)), nil
	}
}

// roundToInt rounds a duration magnitude to the nearest whole unit: calendar
// (year/month) stepping has no fractional meaning once day-clamping is
// involved, unlike the fixed-duration units which shift by fractional days.
func roundToInt(f float64) int {
	if f < 0 {
		return -roundToInt(-f)
	}
	return int(f + 0.5)
}
