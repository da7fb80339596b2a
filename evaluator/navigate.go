package evaluator

import (
	"encoding/json"

	"github.com/cockroachdb/apd/v3"

	"fhirpath-go/value"
)

// navigateMember implements the Path/Invocation-base member step: for every
// Resource-kind element of base, look up memberName directly, then fall
// back to the model provider's choice-type projections (e.g.
// Observation.value -> valueQuantity/valueString/...) when the property is
// absent verbatim, per spec.md §4.9. Non-Resource elements contribute
// nothing (scalars have no navigable children).
// NavigateMember is navigateMember exported for reuse by package functions
// (ofType, children, descendants all need the same property-resolution
// rules used by plain Path navigation).
func NavigateMember(ec *Context, base value.Collection, memberName string) value.Collection {
	return navigateMember(ec, base, memberName)
}

// ChildrenOf is childrenOf exported for package functions's children()/
// descendants() implementations.
func ChildrenOf(ec *Context, base value.Collection) value.Collection {
	return childrenOf(ec, base)
}

func navigateMember(ec *Context, base value.Collection, memberName string) value.Collection {
	var out value.Collection
	for _, v := range base {
		res, ok := v.Resource()
		if !ok {
			continue
		}
		if raw, present := res.RawChild(memberName); present {
			elemType, _ := elementType(ec, res.TypeHint, memberName)
			out = append(out, jsonToValues(raw, elemType)...)
			continue
		}
		if ec.Model == nil {
			continue
		}
		for _, proj := range ec.Model.ChoiceProjections(res.TypeHint, memberName) {
			if raw, present := res.RawChild(proj.Property); present {
				out = append(out, jsonToValues(raw, proj.Type)...)
			}
		}
	}
	return out
}

func elementType(ec *Context, onType, property string) (string, bool) {
	if ec.Model == nil || onType == "" {
		return "", false
	}
	return ec.Model.ElementType(onType, property)
}

// childrenOf implements the children() function: every immediate property
// value of every Resource element in base, in the order value.Resource.Keys
// returns the properties (Go map iteration order, which is not defined); the
// model provider only supplies each property's element type.
func childrenOf(ec *Context, base value.Collection) value.Collection {
	var out value.Collection
	for _, v := range base {
		res, ok := v.Resource()
		if !ok {
			continue
		}
		for _, key := range res.Keys() {
			raw, _ := res.RawChild(key)
			elemType, _ := elementType(ec, res.TypeHint, key)
			out = append(out, jsonToValues(raw, elemType)...)
		}
	}
	return out
}

// jsonToValues converts one decoded JSON property value (scalar, array, or
// object) into the Values it contributes to a navigation step, using
// elemType (when known from the model provider) to disambiguate FHIR
// primitive kinds from generic JSON numbers/strings.
func jsonToValues(raw any, elemType string) value.Collection {
	if arr, ok := raw.([]any); ok {
		out := make(value.Collection, 0, len(arr))
		for _, item := range arr {
			out = append(out, jsonToValues(item, elemType)...)
		}
		return out
	}
	return value.Of(jsonToValue(raw, elemType))
}

func jsonToValue(raw any, elemType string) value.Value {
	switch t := raw.(type) {
	case nil:
		return value.Empty()
	case bool:
		return value.Bool(t)
	case string:
		return stringLikeValue(t, elemType)
	case json.Number:
		return numberValue(string(t), elemType)
	case float64:
		return numberValue(trimFloat(t), elemType)
	case map[string]any:
		return value.ResourceVal(&value.Resource{Raw: t, TypeHint: elemType})
	default:
		return value.Empty()
	}
}

func stringLikeValue(s string, elemType string) value.Value {
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

func numberValue(s string, elemType string) value.Value {
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

func trimFloat(f float64) string {
	d := new(apd.Decimal)
	if _, err := d.SetFloat64(f); err != nil {
		return "0"
	}
	return d.String()
}
