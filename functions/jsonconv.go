package functions

import (
	"encoding/json"

	"github.com/cockroachdb/apd/v3"

	"fhirpath-go/value"
)

// jsonToValuesEnv mirrors evaluator.navigateMember's raw-JSON decoding for
// package functions's own reflection traversal (children/descendants),
// since function bodies only see the registry.Env seam and cannot reuse the
// evaluator.Context-scoped helpers directly.
func jsonToValuesEnv(raw any, elemType string) value.Collection {
	if arr, ok := raw.([]any); ok {
		out := make(value.Collection, 0, len(arr))
		for _, item := range arr {
			out = append(out, jsonToValuesEnv(item, elemType)...)
		}
		return out
	}
	return value.Of(jsonToValueEnv(raw, elemType))
}

func jsonToValueEnv(raw any, elemType string) value.Value {
	switch t := raw.(type) {
	case nil:
		return value.Empty()
	case bool:
		return value.Bool(t)
	case string:
		return stringLikeValueEnv(t, elemType)
	case json.Number:
		return numberValueEnv(string(t), elemType)
	case float64:
		return numberValueEnv(trimFloatEnv(t), elemType)
	case map[string]any:
		return value.ResourceVal(&value.Resource{Raw: t, TypeHint: elemType})
	default:
		return value.Empty()
	}
}

func stringLikeValueEnv(s string, elemType string) value.Value {
	switch elemType {
	case "date", "Date":
		if t, err := value.ParseDate(s); err == nil {
			return value.DateVal(t)
		}
	case "dateTime", "DateTime", "instant":
		if t, err := value.ParseDateTime(s); err == nil {
			return value.DateTimeVal(t)
		}
	case "time", "Time":
		if t, err := value.ParseTime(s); err == nil {
			return value.TimeVal(t)
		}
	}
	return value.Str(s)
}

func numberValueEnv(s string, elemType string) value.Value {
	switch elemType {
	case "integer", "Integer", "positiveInt", "unsignedInt":
		if d, _, err := apd.NewFromString(s); err == nil {
			if i, err := d.Int64(); err == nil {
				return value.Int(i)
			}
		}
	}
	if d, _, err := apd.NewFromString(s); err == nil {
		return value.Dec(d)
	}
	return value.Str(s)
}

func trimFloatEnv(f float64) string {
	d := new(apd.Decimal)
	if _, err := d.SetFloat64(f); err != nil {
		return "0"
	}
	return d.String()
}
