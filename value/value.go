// Package value implements the FHIRPath unified value model: a tagged
// Value union, the Collection it is gathered into, and the operator-level
// semantics (equality, equivalence, ordering) that depend only on the value
// shapes themselves, not on any particular resource schema (spec.md §3.1).
package value

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"fhirpath-go/value/quantity"
)

// Kind discriminates the variant held by a Value.
type Kind int

const (
	KindEmpty Kind = iota
	KindBoolean
	KindInteger
	KindDecimal
	KindString
	KindDate
	KindDateTime
	KindTime
	KindQuantity
	KindResource
	KindTypeInfoValue
)

// Value is the single tagged union every FHIRPath expression produces and
// consumes. The zero Value is Empty.
type Value struct {
	Kind Kind

	boolVal bool
	intVal  int64
	decVal  *apd.Decimal
	strVal  string
	tmpVal  Temporal
	qtyVal  Quantity
	res     *Resource
	typeVal TypeInfo
}

// Collection is an ordered, possibly heterogeneous sequence of Values — the
// return type of every FHIRPath expression (spec.md §3.1/GLOSSARY).
type Collection []Value

func Empty() Value { return Value{Kind: KindEmpty} }

func Bool(b bool) Value { return Value{Kind: KindBoolean, boolVal: b} }

func Int(i int64) Value { return Value{Kind: KindInteger, intVal: i} }

func Dec(d *apd.Decimal) Value { return Value{Kind: KindDecimal, decVal: d} }

func DecFromInt64(i int64) Value { return Dec(apd.New(i, 0)) }

func Str(s string) Value { return Value{Kind: KindString, strVal: s} }

func DateVal(t Temporal) Value { return Value{Kind: KindDate, tmpVal: t} }

func DateTimeVal(t Temporal) Value { return Value{Kind: KindDateTime, tmpVal: t} }

func TimeVal(t Temporal) Value { return Value{Kind: KindTime, tmpVal: t} }

func QuantityVal(q Quantity) Value { return Value{Kind: KindQuantity, qtyVal: q} }

func ResourceVal(r *Resource) Value { return Value{Kind: KindResource, res: r} }

func TypeInfoVal(t TypeInfo) Value { return Value{Kind: KindTypeInfoValue, typeVal: t} }

func (v Value) IsEmpty() bool { return v.Kind == KindEmpty }

func (v Value) Bool() (bool, bool)         { return v.boolVal, v.Kind == KindBoolean }
func (v Value) Int() (int64, bool)         { return v.intVal, v.Kind == KindInteger }
func (v Value) Decimal() (*apd.Decimal, bool) { return v.decVal, v.Kind == KindDecimal }
func (v Value) StringVal() (string, bool)  { return v.strVal, v.Kind == KindString }
func (v Value) Temporal() (Temporal, bool) {
	return v.tmpVal, v.Kind == KindDate || v.Kind == KindDateTime || v.Kind == KindTime
}
func (v Value) Quantity() (Quantity, bool) { return v.qtyVal, v.Kind == KindQuantity }
func (v Value) Resource() (*Resource, bool) { return v.res, v.Kind == KindResource }
func (v Value) AsTypeInfo() (TypeInfo, bool) { return v.typeVal, v.Kind == KindTypeInfoValue }

// AsDecimal promotes Integer/Decimal values to a Decimal for arithmetic that
// needs a single numeric representation (spec.md §3.1's numeric-promotion
// invariant).
func (v Value) AsDecimal() (*apd.Decimal, bool) {
	switch v.Kind {
	case KindDecimal:
		return v.decVal, true
	case KindInteger:
		return apd.New(v.intVal, 0), true
	default:
		return nil, false
	}
}

// String renders v for display/trace purposes (not a FHIRPath toString()).
func (v Value) String() string {
	switch v.Kind {
	case KindEmpty:
		return "{}"
	case KindBoolean:
		return fmt.Sprintf("%v", v.boolVal)
	case KindInteger:
		return fmt.Sprintf("%d", v.intVal)
	case KindDecimal:
		return v.decVal.String()
	case KindString:
		return v.strVal
	case KindDate, KindDateTime, KindTime:
		return "@" + v.tmpVal.String()
	case KindQuantity:
		if v.qtyVal.Unit == "" {
			return v.qtyVal.Value.String()
		}
		return fmt.Sprintf("%s '%s'", v.qtyVal.Value.String(), v.qtyVal.Unit)
	case KindResource:
		return v.res.String()
	case KindTypeInfoValue:
		return v.typeVal.String()
	default:
		return ""
	}
}

func (c Collection) String() string {
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Singleton wraps v in a one-element Collection, the common case for
// Literal/operator evaluation (spec.md §4.5).
func Singleton(v Value) Collection { return Collection{v} }

// Of builds a Collection from Empty-dropping Values: a Value of KindEmpty
// contributes nothing, matching the "Empty and empty collection both mean no
// result" decision in DESIGN.md.
func Of(vs ...Value) Collection {
	out := make(Collection, 0, len(vs))
	for _, v := range vs {
		if v.IsEmpty() {
			continue
		}
		out = append(out, v)
	}
	return out
}

// SingletonBool extracts a single Boolean from a Collection per the implicit
// collection-to-Boolean conversion used by and/or/where/iif conditions:
// empty -> (false, Empty-meaning), single true/false -> that value, anything
// else is a type error left to the caller to raise.
func (c Collection) SingletonBool() (TriState, error) {
	if len(c) == 0 {
		return TriEmpty, nil
	}
	if len(c) != 1 {
		return TriEmpty, fmt.Errorf("expected a single boolean, got %d values", len(c))
	}
	b, ok := c[0].Bool()
	if !ok {
		return TriEmpty, fmt.Errorf("expected a boolean value, got %s", c[0].TypeInfo())
	}
	if b {
		return TriTrue, nil
	}
	return TriFalse, nil
}

// TriState is the three-valued logic lattice of spec.md §4.8.
type TriState int

const (
	TriFalse TriState = iota
	TriTrue
	TriEmpty
)

func (t TriState) ToValue() Value {
	switch t {
	case TriTrue:
		return Bool(true)
	case TriFalse:
		return Bool(false)
	default:
		return Empty()
	}
}

func BoolToTri(b bool) TriState {
	if b {
		return TriTrue
	}
	return TriFalse
}

// And implements spec.md §4.8's and-table.
func And(a, b TriState) TriState {
	if a == TriFalse || b == TriFalse {
		return TriFalse
	}
	if a == TriTrue && b == TriTrue {
		return TriTrue
	}
	return TriEmpty
}

// Or implements spec.md §4.8's or-table.
func Or(a, b TriState) TriState {
	if a == TriTrue || b == TriTrue {
		return TriTrue
	}
	if a == TriFalse && b == TriFalse {
		return TriFalse
	}
	return TriEmpty
}

// Xor implements spec.md §4.8's xor-table.
func Xor(a, b TriState) TriState {
	if a == TriEmpty || b == TriEmpty {
		return TriEmpty
	}
	return BoolToTri(a != b)
}

// Not implements "not Empty = Empty".
func Not(a TriState) TriState {
	switch a {
	case TriTrue:
		return TriFalse
	case TriFalse:
		return TriTrue
	default:
		return TriEmpty
	}
}

// Implies implements "a implies b == (not a) or b".
func Implies(a, b TriState) TriState {
	return Or(Not(a), b)
}

// Equal implements identity equality (=): numeric promotion, temporal
// precision-aware comparison, quantity unit conversion, and — unlike
// Equivalent — collections of differing length are never equal.
// ok=false means the comparison result is Empty, per spec.md §3.1/§3.4.
func Equal(a, b Value) (result bool, ok bool) {
	return compareEq(a, b, false)
}

// Equivalent implements semantic equivalence (~): like Equal but never
// reports Empty — incomparable values are simply not equivalent — and is
// used by union/distinct/in/contains deduplication (spec.md §4.3).
func Equivalent(a, b Value) bool {
	r, ok := compareEq(a, b, true)
	return ok && r
}

func compareEq(a, b Value, equivalence bool) (bool, bool) {
	if a.Kind == KindEmpty || b.Kind == KindEmpty {
		if equivalence {
			return a.Kind == b.Kind, true
		}
		return false, false
	}
	switch {
	case isNumeric(a.Kind) && isNumeric(b.Kind):
		da, _ := a.AsDecimal()
		db, _ := b.AsDecimal()
		return da.Cmp(db) == 0, true
	case isTemporal(a.Kind) && isTemporal(b.Kind):
		if a.Kind != b.Kind {
			return false, true
		}
		cmp, ok := CompareTemporal(a.tmpVal, b.tmpVal)
		if !ok {
			if equivalence {
				return false, true
			}
			return false, false
		}
		return cmp == 0, true
	case a.Kind == KindQuantity && b.Kind == KindQuantity:
		if !quantity.Compatible(a.qtyVal.Unit, b.qtyVal.Unit) {
			return false, true
		}
		conv, ok := quantity.ConvertTo(b.qtyVal.Value, b.qtyVal.Unit, a.qtyVal.Unit, apd.BaseContext.WithPrecision(34))
		if !ok {
			return false, true
		}
		return a.qtyVal.Value.Cmp(conv) == 0, true
	case a.Kind == KindString && b.Kind == KindString:
		return a.strVal == b.strVal, true
	case a.Kind == KindBoolean && b.Kind == KindBoolean:
		return a.boolVal == b.boolVal, true
	case a.Kind == KindResource && b.Kind == KindResource:
		return a.res.StructurallyEqual(b.res), true
	case a.Kind == KindTypeInfoValue && b.Kind == KindTypeInfoValue:
		return a.typeVal == b.typeVal, true
	default:
		return false, true
	}
}

func isNumeric(k Kind) bool { return k == KindInteger || k == KindDecimal }
func isTemporal(k Kind) bool {
	return k == KindDate || k == KindDateTime || k == KindTime
}

// Compare implements ordering (<, <=, >, >=). ok=false means Empty.
func Compare(a, b Value) (cmp int, ok bool) {
	if a.Kind == KindEmpty || b.Kind == KindEmpty {
		return 0, false
	}
	switch {
	case isNumeric(a.Kind) && isNumeric(b.Kind):
		da, _ := a.AsDecimal()
		db, _ := b.AsDecimal()
		return da.Cmp(db), true
	case isTemporal(a.Kind) && isTemporal(b.Kind):
		if a.Kind != b.Kind {
			return 0, false
		}
		return CompareTemporal(a.tmpVal, b.tmpVal)
	case a.Kind == KindString && b.Kind == KindString:
		return strings.Compare(a.strVal, b.strVal), true
	case a.Kind == KindQuantity && b.Kind == KindQuantity:
		if !quantity.Compatible(a.qtyVal.Unit, b.qtyVal.Unit) {
			return 0, false
		}
		conv, ok := quantity.ConvertTo(b.qtyVal.Value, b.qtyVal.Unit, a.qtyVal.Unit, apd.BaseContext.WithPrecision(34))
		if !ok {
			return 0, false
		}
		return a.qtyVal.Value.Cmp(conv), true
	case a.Kind == KindBoolean && b.Kind == KindBoolean:
		if a.boolVal == b.boolVal {
			return 0, true
		}
		if !a.boolVal {
			return -1, true
		}
		return 1, true
	default:
		return 0, false
	}
}

// UnionDedup concatenates a and b, eliminating duplicates by Equivalent
// (spec.md §4.3). The first occurrence of each equivalence class is kept.
func UnionDedup(a, b Collection) Collection {
	out := make(Collection, 0, len(a)+len(b))
	for _, v := range a {
		out = appendDistinct(out, v)
	}
	for _, v := range b {
		out = appendDistinct(out, v)
	}
	return out
}

func appendDistinct(out Collection, v Value) Collection {
	for _, existing := range out {
		if Equivalent(existing, v) {
			return out
		}
	}
	return append(out, v)
}

// Distinct removes duplicate elements by Equivalent, preserving first-seen
// order (backing distinct()/isDistinct()).
func Distinct(c Collection) Collection {
	var out Collection
	for _, v := range c {
		out = appendDistinct(out, v)
	}
	return out
}

// SortStableBy sorts a copy of c using less, which must return (result,
// ok) per element-pair the way Compare does; pairs where ok is false keep
// their relative order (stable).
func SortStableBy(c Collection, less func(a, b Value) (bool, bool)) Collection {
	out := append(Collection(nil), c...)
	sort.SliceStable(out, func(i, j int) bool {
		r, ok := less(out[i], out[j])
		return ok && r
	})
	return out
}
