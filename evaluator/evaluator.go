package evaluator

import (
	"context"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"fhirpath-go/ast"
	"fhirpath-go/diagnostics"
	"fhirpath-go/operators"
	"fhirpath-go/registry"
	"fhirpath-go/value"
)

// Eval walks tree starting at node under ec, the single recursive entry
// point every node kind (and every registered function, via the
// CallEvaluator closure built in callFunction) funnels through.
func Eval(ctxGo context.Context, ec *Context, tree *ast.Tree, node ast.NodeID) (value.Collection, error) {
	if node == 0 {
		return nil, nil
	}
	n := tree.Node(node)
	switch n.Kind {
	case ast.KindLiteral:
		v, err := evalLiteral(n)
		if err != nil {
			return nil, err
		}
		return value.Of(v), nil

	case ast.KindIdentifier:
		return evalIdentifier(ec, n), nil

	case ast.KindVariable:
		return evalVariable(ec, n)

	case ast.KindPath:
		base, err := Eval(ctxGo, ec, tree, n.Base)
		if err != nil {
			return nil, err
		}
		memberName := tree.Node(n.Member).Name
		return navigateMember(ec, base, memberName), nil

	case ast.KindIndex:
		base, err := Eval(ctxGo, ec, tree, n.Base)
		if err != nil {
			return nil, err
		}
		idxCol, err := Eval(ctxGo, ec, tree, n.Member)
		if err != nil {
			return nil, err
		}
		if len(idxCol) != 1 {
			return nil, nil
		}
		i, ok := idxCol[0].Int()
		if !ok || i < 0 || int(i) >= len(base) {
			return nil, nil
		}
		return value.Of(base[i]), nil

	case ast.KindInvocation:
		base, err := Eval(ctxGo, ec, tree, n.Base)
		if err != nil {
			return nil, err
		}
		return callFunction(ctxGo, ec, tree, n.Name, n.Args, base)

	case ast.KindFunctionCall:
		this, _ := ec.This()
		return callFunction(ctxGo, ec, tree, n.Name, n.Args, value.Of(this))

	case ast.KindLambda:
		return Eval(ctxGo, ec, tree, n.Body)

	case ast.KindUnion:
		left, err := Eval(ctxGo, ec, tree, n.Base)
		if err != nil {
			return nil, err
		}
		right, err := Eval(ctxGo, ec, tree, n.Member)
		if err != nil {
			return nil, err
		}
		return operators.Union(left, right), nil

	case ast.KindUnary:
		return evalUnary(ctxGo, ec, tree, n)

	case ast.KindBinary:
		return evalBinary(ctxGo, ec, tree, n)

	case ast.KindTypeCheck:
		return evalTypeCheck(ctxGo, ec, tree, n)

	case ast.KindTypeCast:
		return evalTypeCast(ctxGo, ec, tree, n)

	default:
		return nil, diagnostics.Newf(diagnostics.Unimplemented, "unhandled node kind %s", n.Kind).WithSpan(n.Span)
	}
}

func evalIdentifier(ec *Context, n *ast.Node) value.Collection {
	this, ok := ec.This()
	if !ok {
		return nil
	}
	focus := value.Of(this)
	if ec.Model != nil && ec.Model.IsResourceType(n.Name) {
		var out value.Collection
		for _, v := range focus {
			r, ok := v.Resource()
			if !ok {
				continue
			}
			if r.TypeHint == n.Name || ec.Model.IsSubtypeOf(r.TypeHint, n.Name) {
				out = append(out, v)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return navigateMember(ec, focus, n.Name)
}

func evalVariable(ec *Context, n *ast.Node) (value.Collection, error) {
	switch n.Name {
	case "this":
		this, ok := ec.This()
		if !ok {
			return nil, nil
		}
		return value.Of(this), nil
	case "index":
		return value.Of(value.Int(int64(ec.Index()))), nil
	case "total":
		return ec.TotalCollection(), nil
	default:
		v, ok := ec.Variable(n.Name)
		if !ok {
			return nil, diagnostics.Newf(diagnostics.UnknownVariable, "unknown variable %%%s", n.Name).WithSpan(n.Span)
		}
		return v, nil
	}
}

func evalUnary(ctxGo context.Context, ec *Context, tree *ast.Tree, n *ast.Node) (value.Collection, error) {
	operand, err := Eval(ctxGo, ec, tree, n.Left)
	if err != nil {
		return nil, err
	}
	if n.Op == ast.OpNot {
		tri, err := operand.SingletonBool()
		if err != nil {
			return nil, diagnostics.Wrap(diagnostics.TypeError, "not() requires a boolean operand", err).WithSpan(n.Span)
		}
		return value.Of(value.Not(tri).ToValue()), nil
	}
	return operators.Unary(n.Op, operand)
}

func evalBinary(ctxGo context.Context, ec *Context, tree *ast.Tree, n *ast.Node) (value.Collection, error) {
	switch n.Op {
	case ast.OpAnd, ast.OpOr, ast.OpXor, ast.OpImplies:
		return evalLogical(ctxGo, ec, tree, n)
	default:
		left, err := Eval(ctxGo, ec, tree, n.Left)
		if err != nil {
			return nil, err
		}
		right, err := Eval(ctxGo, ec, tree, n.Right)
		if err != nil {
			return nil, err
		}
		return operators.Apply(n.Op, left, right, ec.APD)
	}
}

// evalLogical implements and/or/xor/implies with short-circuiting of the
// right operand (spec.md §4.8): `false and X`, `true or X`, and `false
// implies X` never evaluate X at all, matching FHIRPath's tri-valued
// boolean tables rather than Go's.
func evalLogical(ctxGo context.Context, ec *Context, tree *ast.Tree, n *ast.Node) (value.Collection, error) {
	leftCol, err := Eval(ctxGo, ec, tree, n.Left)
	if err != nil {
		return nil, err
	}
	lt, err := leftCol.SingletonBool()
	if err != nil {
		return nil, diagnostics.Wrap(diagnostics.TypeError, "boolean operator requires boolean operands", err).WithSpan(n.Span)
	}
	switch n.Op {
	case ast.OpAnd:
		if lt == value.TriFalse {
			return value.Of(value.Bool(false)), nil
		}
	case ast.OpOr:
		if lt == value.TriTrue {
			return value.Of(value.Bool(true)), nil
		}
	case ast.OpImplies:
		if lt == value.TriFalse {
			return value.Of(value.Bool(true)), nil
		}
	}
	rightCol, err := Eval(ctxGo, ec, tree, n.Right)
	if err != nil {
		return nil, err
	}
	rt, err := rightCol.SingletonBool()
	if err != nil {
		return nil, diagnostics.Wrap(diagnostics.TypeError, "boolean operator requires boolean operands", err).WithSpan(n.Span)
	}
	var result value.TriState
	switch n.Op {
	case ast.OpAnd:
		result = value.And(lt, rt)
	case ast.OpOr:
		result = value.Or(lt, rt)
	case ast.OpXor:
		result = value.Xor(lt, rt)
	case ast.OpImplies:
		result = value.Implies(lt, rt)
	}
	return value.Of(result.ToValue()), nil
}

func splitTypeName(typeName string) (ns, name string) {
	if idx := strings.LastIndex(typeName, "."); idx >= 0 {
		return typeName[:idx], typeName[idx+1:]
	}
	return "", typeName
}

func typeMatches(ec *Context, v value.Value, typeName string) bool {
	ns, name := splitTypeName(typeName)
	if r, ok := v.Resource(); ok {
		if ns != "" && ns != "FHIR" {
			return false
		}
		if r.TypeHint == name {
			return true
		}
		return ec.Model != nil && ec.Model.IsSubtypeOf(r.TypeHint, name)
	}
	sti, ok := v.SystemTypeInfo()
	if !ok {
		return false
	}
	if ns != "" && ns != "System" {
		return false
	}
	return sti.Name == name
}

func evalTypeCheck(ctxGo context.Context, ec *Context, tree *ast.Tree, n *ast.Node) (value.Collection, error) {
	operand, err := Eval(ctxGo, ec, tree, n.Expr)
	if err != nil {
		return nil, err
	}
	if len(operand) == 0 {
		return nil, nil
	}
	if len(operand) != 1 {
		return nil, diagnostics.New(diagnostics.TypeError, "is requires a singleton operand").WithSpan(n.Span)
	}
	return value.Of(value.Bool(typeMatches(ec, operand[0], n.TypeName))), nil
}

func evalTypeCast(ctxGo context.Context, ec *Context, tree *ast.Tree, n *ast.Node) (value.Collection, error) {
	operand, err := Eval(ctxGo, ec, tree, n.Expr)
	if err != nil {
		return nil, err
	}
	if len(operand) == 0 {
		return nil, nil
	}
	if len(operand) != 1 {
		return nil, diagnostics.New(diagnostics.TypeError, "as requires a singleton operand").WithSpan(n.Span)
	}
	v := operand[0]
	if typeMatches(ec, v, n.TypeName) {
		return value.Of(v), nil
	}
	if converted, ok := convertForCast(v, n.TypeName); ok {
		return value.Of(converted), nil
	}
	return nil, nil
}

// convertForCast implements the implicit String -> System-type conversions
// `as` performs when the operand isn't already of the target type (spec.md
// §4.6/§8: `('2014-01-05' as Date) < @2015`), mirroring the toX() family in
// package functions' conversion.go without importing it (those helpers are
// unexported, scoped to the function-call surface).
func convertForCast(v value.Value, typeName string) (value.Value, bool) {
	ns, name := splitTypeName(typeName)
	if ns != "" && ns != "System" {
		return value.Value{}, false
	}
	s, ok := v.StringVal()
	if !ok {
		return value.Value{}, false
	}
	switch name {
	case "Date":
		if t, err := value.ParseDate(strings.TrimPrefix(s, "@")); err == nil {
			return value.DateVal(t), true
		}
	case "DateTime":
		if t, err := value.ParseDateTime(strings.TrimPrefix(s, "@")); err == nil {
			return value.DateTimeVal(t), true
		}
	case "Time":
		if t, err := value.ParseTime(strings.TrimPrefix(s, "@T")); err == nil {
			return value.TimeVal(t), true
		}
	case "Integer":
		if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return value.Int(i), true
		}
	case "Decimal":
		if d, _, err := apd.NewFromString(strings.TrimSpace(s)); err == nil {
			return value.Dec(d), true
		}
	case "Boolean":
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "t", "yes", "y", "1", "1.0":
			return value.Bool(true), true
		case "false", "f", "no", "n", "0", "0.0":
			return value.Bool(false), true
		}
	}
	return value.Value{}, false
}
