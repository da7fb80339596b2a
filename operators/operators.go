package operators

import (
	"github.com/cockroachdb/apd/v3"

	"fhirpath-go/ast"
	"fhirpath-go/diagnostics"
	"fhirpath-go/value"
)

// Kind aliases ast.Operator so this package reads naturally at call sites
// without re-exporting the ast package everywhere operators is used.
type Kind = ast.Operator

const (
	KindAdd    = ast.OpAdd
	KindSub    = ast.OpSub
	KindMul    = ast.OpMul
	KindDiv    = ast.OpDiv
	KindIntDiv = ast.OpIntDiv
	KindMod    = ast.OpMod
)

// Equality implements = and !=: spec.md §4.6's rule that collections of
// differing length (including one empty, one not) compare to {} (Empty),
// not false, and that equal-length collections compare pairwise in order.
func Equality(negate bool, left, right value.Collection) value.Collection {
	result, ok := collectionEqual(left, right, false)
	if !ok {
		return nil
	}
	if negate {
		result = !result
	}
	return value.Of(value.Bool(result))
}

// Equivalence implements ~ and !~: unlike Equality, never produces Empty —
// incomparable or differing-length collections are simply not equivalent.
func Equivalence(negate bool, left, right value.Collection) value.Collection {
	result, _ := collectionEqual(left, right, true)
	if negate {
		result = !result
	}
	return value.Of(value.Bool(result))
}

func collectionEqual(a, b value.Collection, equivalence bool) (bool, bool) {
	if len(a) == 0 && len(b) == 0 {
		if equivalence {
			return true, true
		}
		return false, false
	}
	if len(a) != len(b) {
		if equivalence {
			return false, true
		}
		return false, false
	}
	for i := range a {
		if equivalence {
			if !value.Equivalent(a[i], b[i]) {
				return false, true
			}
			continue
		}
		eq, ok := value.Equal(a[i], b[i])
		if !ok {
			return false, false
		}
		if !eq {
			return false, true
		}
	}
	return true, true
}

// Relational implements <, <=, >, >= between singleton operands.
func Relational(op Kind, left, right value.Collection) (value.Collection, error) {
	l, lok := singleton(left)
	r, rok := singleton(right)
	if !lok || !rok {
		return nil, nil
	}
	cmp, ok := value.Compare(l, r)
	if !ok {
		return nil, nil
	}
	var result bool
	switch op {
	case ast.OpLt:
		result = cmp < 0
	case ast.OpLte:
		result = cmp <= 0
	case ast.OpGt:
		result = cmp > 0
	case ast.OpGte:
		result = cmp >= 0
	default:
		return nil, diagnostics.Newf(diagnostics.TypeError, "%s is not a relational operator", op)
	}
	return value.Of(value.Bool(result)), nil
}

// Concat implements & (spec.md §4.6's string concatenation where either
// side may be an empty collection, treated as "").
func Concat(left, right value.Collection) (value.Collection, error) {
	ls, err := concatOperand(left)
	if err != nil {
		return nil, err
	}
	rs, err := concatOperand(right)
	if err != nil {
		return nil, err
	}
	return value.Of(value.Str(ls + rs)), nil
}

func concatOperand(c value.Collection) (string, error) {
	if len(c) == 0 {
		return "", nil
	}
	v, ok := singleton(c)
	if !ok {
		return "", diagnostics.New(diagnostics.TypeError, "& requires singleton or empty operands")
	}
	if s, ok := v.StringVal(); ok {
		return s, nil
	}
	return v.String(), nil
}

// In implements `in` (left contains in right), Contains implements
// `contains` (right contains in left) — both defined over Equivalent
// membership per spec.md §4.6.
func In(left, right value.Collection) value.Collection {
	l, ok := singleton(left)
	if !ok {
		if len(left) == 0 {
			return nil
		}
		return value.Of(value.Bool(false))
	}
	for _, r := range right {
		if value.Equivalent(l, r) {
			return value.Of(value.Bool(true))
		}
	}
	return value.Of(value.Bool(false))
}

func Contains(left, right value.Collection) value.Collection {
	return In(right, left)
}

// Union implements |, deduplicating via value.Equivalent (spec.md §4.3).
func Union(left, right value.Collection) value.Collection {
	return value.UnionDedup(left, right)
}

// Apply dispatches a binary operator to its concrete implementation. and,
// or, xor, and implies are intentionally absent: the evaluator short-
// circuits those directly against unevaluated AST, never calling Apply.
func Apply(op Kind, left, right value.Collection, apdCtx *apd.Context) (value.Collection, error) {
	switch op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpIntDiv, ast.OpMod:
		return Arithmetic(op, left, right, apdCtx)
	case ast.OpConcat:
		return Concat(left, right)
	case ast.OpEq:
		return Equality(false, left, right), nil
	case ast.OpNeq:
		return Equality(true, left, right), nil
	case ast.OpEquiv:
		return Equivalence(false, left, right), nil
	case ast.OpNEquiv:
		return Equivalence(true, left, right), nil
	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		return Relational(op, left, right)
	case ast.OpIn:
		return In(left, right), nil
	case ast.OpContains:
		return Contains(left, right), nil
	default:
		return nil, diagnostics.Newf(diagnostics.TypeError, "operator %s is not handled by Apply", op)
	}
}

// Unary implements prefix + and - (not is evaluated in the three-valued
// logic layer via value.Not, since it works in TriState space rather than
// singleton Value space).
func Unary(op Kind, operand value.Collection) (value.Collection, error) {
	v, ok := singleton(operand)
	if !ok {
		return nil, nil
	}
	if op == ast.OpUnaryPlus {
		return value.Of(v), nil
	}
	if op != ast.OpUnaryMinus {
		return nil, diagnostics.Newf(diagnostics.TypeError, "%s is not a unary operator", op)
	}
	if i, ok := v.Int(); ok {
		return value.Of(value.Int(-i)), nil
	}
	if d, ok := v.Decimal(); ok {
		neg := new(apd.Decimal).Neg(d)
		return value.Of(value.Dec(neg)), nil
	}
	if q, ok := v.Quantity(); ok {
		neg := new(apd.Decimal).Neg(q.Value)
		return value.Of(value.QuantityVal(value.NewQuantity(neg, q.Unit))), nil
	}
	return nil, diagnostics.New(diagnostics.TypeError, "unary - requires a numeric or Quantity operand")
}
