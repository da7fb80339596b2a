package evaluator

import (
	"github.com/cockroachdb/apd/v3"

	"fhirpath-go/ast"
	"fhirpath-go/diagnostics"
	"fhirpath-go/value"
)

func evalLiteral(n *ast.Node) (value.Value, error) {
	switch n.LitKind {
	case ast.LitEmpty:
		return value.Empty(), nil
	case ast.LitBoolean:
		return value.Bool(n.LitText == "true"), nil
	case ast.LitString:
		return value.Str(n.LitText), nil
	case ast.LitInteger:
		i, _, err := apd.NewFromString(n.LitText)
		if err != nil {
			return value.Value{}, diagnostics.Wrap(diagnostics.ParseError, "malformed integer literal", err).WithSpan(n.Span)
		}
		iv, err := i.Int64()
		if err != nil {
			return value.Value{}, diagnostics.Wrap(diagnostics.ParseError, "integer literal out of range", err).WithSpan(n.Span)
		}
		return value.Int(iv), nil
	case ast.LitDecimal:
		d, _, err := apd.NewFromString(n.LitText)
		if err != nil {
			return value.Value{}, diagnostics.Wrap(diagnostics.ParseError, "malformed decimal literal", err).WithSpan(n.Span)
		}
		return value.Dec(d), nil
	case ast.LitDate:
		t, err := value.ParseDate(n.LitText)
		if err != nil {
			return value.Value{}, diagnostics.Wrap(diagnostics.ParseError, "malformed date literal", err).WithSpan(n.Span)
		}
		return value.DateVal(t), nil
	case ast.LitDateTime:
		t, err := value.ParseDateTime(n.LitText)
		if err != nil {
			return value.Value{}, diagnostics.Wrap(diagnostics.ParseError, "malformed dateTime literal", err).WithSpan(n.Span)
		}
		return value.DateTimeVal(t), nil
	case ast.LitTime:
		t, err := value.ParseTime(n.LitText)
		if err != nil {
			return value.Value{}, diagnostics.Wrap(diagnostics.ParseError, "malformed time literal", err).WithSpan(n.Span)
		}
		return value.TimeVal(t), nil
	case ast.LitQuantity:
		d, _, err := apd.NewFromString(n.LitText)
		if err != nil {
			return value.Value{}, diagnostics.Wrap(diagnostics.ParseError, "malformed quantity literal", err).WithSpan(n.Span)
		}
		return value.QuantityVal(value.NewQuantity(d, n.LitUnit)), nil
	default:
		return value.Value{}, diagnostics.New(diagnostics.ParseError, "unknown literal kind").WithSpan(n.Span)
	}
}
