// Temporal functions (today/now/timeOfDay plus the low/high-boundary pair),
// grounded on
// original_source/crates/fhirpath-registry/src/operations/datetime/*.rs.
// now()/today()/timeOfDay() read wall-clock time, which is why they are not
// Pure.
package functions

import (
	"context"
	"time"

	"fhirpath-go/registry"
	"fhirpath-go/value"
)

func registerTemporal(reg *registry.Registry) {
	reg.Register(registry.Func{
		Name: "now", Category: registry.CategoryTemporal, Pure: false,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: func(_ context.Context, _ registry.Call) (value.Collection, error) {
			return value.Of(value.DateTimeVal(temporalFromTime(time.Now(), false))), nil
		},
	})
	reg.Register(registry.Func{
		Name: "today", Category: registry.CategoryTemporal, Pure: false,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: func(_ context.Context, _ registry.Call) (value.Collection, error) {
			t := temporalFromTime(time.Now(), false)
			t.Precision = value.PrecisionDay
			return value.Of(value.DateVal(t)), nil
		},
	})
	reg.Register(registry.Func{
		Name: "timeOfDay", Category: registry.CategoryTemporal, Pure: false,
		Arity: registry.Arity{Min: 0, Max: 0},
		Sync: func(_ context.Context, _ registry.Call) (value.Collection, error) {
			t := temporalFromTime(time.Now(), true)
			return value.Of(value.TimeVal(t)), nil
		},
	})
	reg.Register(registry.Func{
		Name: "lowBoundary", Category: registry.CategoryTemporal, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 1},
		Sync: boundaryFunc(false),
	})
	reg.Register(registry.Func{
		Name: "highBoundary", Category: registry.CategoryTemporal, Pure: true,
		Arity: registry.Arity{Min: 0, Max: 1},
		Sync: boundaryFunc(true),
	})
}

func temporalFromTime(t time.Time, timeOnly bool) value.Temporal {
	_, offset := t.Zone()
	return value.Temporal{
		Year: t.Year(), Month: int(t.Month()), Day: t.Day(),
		Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Ns: t.Nanosecond(),
		HasTZ: true, TZOffsetSeconds: offset,
		Precision:  value.PrecisionMillisecond,
		IsTimeOnly: timeOnly,
	}
}

// boundaryFunc fills unspecified trailing components to their minimum
// (lowBoundary) or maximum (highBoundary) value, per spec.md's
// partial-precision temporal handling — e.g. @2020 .highBoundary() ==
// @2020-12-31T23:59:59.999.
func boundaryFunc(high bool) registry.SyncFunc {
	return func(_ context.Context, call registry.Call) (value.Collection, error) {
		v, ok := singleton(call.Focus)
		if !ok {
			return nil, nil
		}
		t, ok := v.Temporal()
		if !ok {
			return nil, nil
		}
		out := t
		if t.Precision < value.PrecisionMonth {
			out.Month = boundaryOr(t.Month, 1, 12, high)
		}
		if t.Precision < value.PrecisionDay {
			out.Day = boundaryOr(t.Day, 1, daysInMonth(out.Year, out.Month), high)
		}
		if t.Precision < value.PrecisionHour {
			out.Hour = boundaryOr(t.Hour, 0, 23, high)
		}
		if t.Precision < value.PrecisionMinute {
			out.Minute = boundaryOr(t.Minute, 0, 59, high)
		}
		if t.Precision < value.PrecisionSecond {
			out.Second = boundaryOr(t.Second, 0, 59, high)
		}
		if t.Precision < value.PrecisionMillisecond {
			out.Ns = boundaryOr(t.Ns, 0, 999000000, high)
		}
		out.Precision = value.PrecisionMillisecond
		switch v.Kind {
		case value.KindDate:
			return value.Of(value.DateVal(out)), nil
		case value.KindDateTime:
			return value.Of(value.DateTimeVal(out)), nil
		default:
			return value.Of(value.TimeVal(out)), nil
		}
	}
}

func boundaryOr(current, min, max int, high bool) int {
	if current != 0 {
		return current
	}
	if high {
		return max
	}
	return min
}

func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
