// Conversion functions (toX / convertsToX), grounded on
// original_source/crates/fhirpath-registry/src/operations/conversion/*.rs:
// each toX returns {} when the singleton input cannot convert, and
// convertsToX reports that same possibility as a boolean without erroring.
package functions

import (
	"context"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"fhirpath-go/registry"
	"fhirpath-go/value"
)

type converter func(v value.Value) (value.Value, bool)

func registerConversion(reg *registry.Registry) {
	register := func(name string, conv converter) {
		reg.Register(registry.Func{
			Name: name, Category: registry.CategoryConversion, Pure: true,
			Arity: registry.Arity{Min: 0, Max: 0},
			Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
				v, ok := singleton(call.Focus)
				if !ok {
					return nil, nil
				}
				out, ok := conv(v)
				if !ok {
					return nil, nil
				}
				return value.Of(out), nil
			},
		})
		reg.Register(registry.Func{
			Name: "convertsTo" + name[2:], Category: registry.CategoryConversion, Pure: true,
			Arity: registry.Arity{Min: 0, Max: 0},
			Sync: func(_ context.Context, call registry.Call) (value.Collection, error) {
				v, ok := singleton(call.Focus)
				if !ok {
					return value.Of(value.Bool(false)), nil
				}
				_, ok = conv(v)
				return value.Of(value.Bool(ok)), nil
			},
		})
	}
	register("toString", toStringConv)
	register("toInteger", toIntegerConv)
	register("toDecimal", toDecimalConv)
	register("toBoolean", toBooleanConv)
	register("toQuantity", toQuantityConv)
	register("toDateTime", toDateTimeConv)
	register("toDate", toDateConv)
	register("toTime", toTimeConv)
}

func singleton(c value.Collection) (value.Value, bool) {
	if len(c) != 1 {
		return value.Value{}, false
	}
	return c[0], true
}

func toStringConv(v value.Value) (value.Value, bool) {
	return value.Str(v.String()), true
}

func toIntegerConv(v value.Value) (value.Value, bool) {
	if i, ok := v.Int(); ok {
		return value.Int(i), true
	}
	if s, ok := v.StringVal(); ok {
		if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return value.Int(i), true
		}
		return value.Value{}, false
	}
	if b, ok := v.Bool(); ok {
		if b {
			return value.Int(1), true
		}
		return value.Int(0), true
	}
	return value.Value{}, false
}

func toDecimalConv(v value.Value) (value.Value, bool) {
	if d, ok := v.Decimal(); ok {
		return value.Dec(d), true
	}
	if i, ok := v.Int(); ok {
		return value.DecFromInt64(i), true
	}
	if s, ok := v.StringVal(); ok {
		if d, _, err := apd.NewFromString(strings.TrimSpace(s)); err == nil {
			return value.Dec(d), true
		}
		return value.Value{}, false
	}
	if b, ok := v.Bool(); ok {
		if b {
			return value.DecFromInt64(1), true
		}
		return value.DecFromInt64(0), true
	}
	return value.Value{}, false
}

func toBooleanConv(v value.Value) (value.Value, bool) {
	if b, ok := v.Bool(); ok {
		return value.Bool(b), true
	}
	if s, ok := v.StringVal(); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "t", "yes", "y", "1", "1.0":
			return value.Bool(true), true
		case "false", "f", "no", "n", "0", "0.0":
			return value.Bool(false), true
		}
		return value.Value{}, false
	}
	if i, ok := v.Int(); ok {
		if i == 1 {
			return value.Bool(true), true
		}
		if i == 0 {
			return value.Bool(false), true
		}
	}
	return value.Value{}, false
}

func toQuantityConv(v value.Value) (value.Value, bool) {
	if _, ok := v.Quantity(); ok {
		return v, true
	}
	if d, ok := v.AsDecimal(); ok {
		return value.QuantityVal(value.NewQuantity(d, "")), true
	}
	if s, ok := v.StringVal(); ok {
		parts := strings.Fields(s)
		if len(parts) == 0 {
			return value.Value{}, false
		}
		d, _, err := apd.NewFromString(parts[0])
		if err != nil {
			return value.Value{}, false
		}
		unit := ""
		if len(parts) > 1 {
			unit = strings.Trim(parts[1], "'")
		}
		return value.QuantityVal(value.NewQuantity(d, unit)), true
	}
	if b, ok := v.Bool(); ok {
		if b {
			return value.QuantityVal(value.NewQuantity(apd.New(1, 0), "")), true
		}
		return value.QuantityVal(value.NewQuantity(apd.New(0, 0), "")), true
	}
	return value.Value{}, false
}

func toDateTimeConv(v value.Value) (value.Value, bool) {
	if t, ok := v.Temporal(); ok && v.Kind == value.KindDateTime {
		return value.DateTimeVal(t), true
	}
	if t, ok := v.Temporal(); ok && v.Kind == value.KindDate {
		return value.DateTimeVal(t), true
	}
	if s, ok := v.StringVal(); ok {
		if t, err := value.ParseDateTime(strings.TrimPrefix(s, "@")); err == nil {
			return value.DateTimeVal(t), true
		}
	}
	return value.Value{}, false
}

func toDateConv(v value.Value) (value.Value, bool) {
	if t, ok := v.Temporal(); ok && v.Kind != value.KindTime {
		return value.DateVal(t), true
	}
	if s, ok := v.StringVal(); ok {
		if t, err := value.ParseDate(strings.TrimPrefix(s, "@")); err == nil {
			return value.DateVal(t), true
		}
	}
	return value.Value{}, false
}

func toTimeConv(v value.Value) (value.Value, bool) {
	if t, ok := v.Temporal(); ok && v.Kind == value.KindTime {
		return value.TimeVal(t), true
	}
	if s, ok := v.StringVal(); ok {
		if t, err := value.ParseTime(strings.TrimPrefix(s, "@T")); err == nil {
			return value.TimeVal(t), true
		}
	}
	return value.Value{}, false
}
