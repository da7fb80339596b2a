// Package quantity provides UCUM-subset dimensional-compatibility checks and
// unit conversion for FHIRPath Quantity arithmetic and comparison
// (spec.md §4.7).
//
// It implements the dimension table directly over apd/v3 rather than
// depending on github.com/iimos/ucum: that module is named only in a go.mod
// manifest in the retrieval pack with no accompanying source, so its exact
// API could not be grounded without risking code that does not compile
// against the real library (see DESIGN.md). Only the units in unitTable and
// the calendar-duration words are understood; arbitrary unit expressions,
// annotations and custom units are not.
package quantity

import (
	"strings"
	"sync"

	"github.com/cockroachdb/apd/v3"
)

// dimension identifies a physical quantity kind (mass, length, time, ...).
type dimension int

const (
	dimNone dimension = iota
	dimMass
	dimLength
	dimTime
	dimVolume
	dimTemperatureDelta
	dimArbitrary // unit string opaque to this table but still comparable to itself
)

// unitDef is one recognized UCUM atom: its dimension and its ratio to that
// dimension's base unit (gram, meter, second, liter).
type unitDef struct {
	dim   dimension
	ratio string // decimal ratio to the base unit, parsed lazily via apd
}

// Base units: g (mass), m (length), s (time), L (volume). Ratios taken from
// the UCUM table for the units FHIR resources use in practice.
var unitTable = map[string]unitDef{
	"g":  {dimMass, "1"},
	"kg": {dimMass, "1000"},
	"mg": {dimMass, "0.001"},
	"ug": {dimMass, "0.000001"},
	"ng": {dimMass, "0.000000001"},
	"lb_av": {dimMass, "453.59237"},

	"m":  {dimLength, "1"},
	"cm": {dimLength, "0.01"},
	"mm": {dimLength, "0.001"},
	"km": {dimLength, "1000"},
	"in_i": {dimLength, "0.0254"},

	"s":   {dimTime, "1"},
	"ms":  {dimTime, "0.001"},
	"min": {dimTime, "60"},
	"h":   {dimTime, "3600"},
	"d":   {dimTime, "86400"},
	"wk":  {dimTime, "604800"},
	"a":   {dimTime, "31557600"}, // Julian year
	"mo":  {dimTime, "2629800"},  // 1/12 Julian year

	"L":  {dimVolume, "1"},
	"l":  {dimVolume, "1"},
	"mL": {dimVolume, "0.001"},
	"ml": {dimVolume, "0.001"},
	"dL": {dimVolume, "0.1"},
	"dl": {dimVolume, "0.1"},
}

// calendarWords maps the singular and plural English words the FHIRPath
// quantity grammar accepts unquoted onto unitTable's time atoms
// (spec.md §6.3), e.g. `4 days`.
var calendarWords = map[string]string{
	"year": "a", "years": "a",
	"month": "mo", "months": "mo",
	"week": "wk", "weeks": "wk",
	"day": "d", "days": "d",
	"hour": "h", "hours": "h",
	"minute": "min", "minutes": "min",
	"second": "s", "seconds": "s",
	"millisecond": "ms", "milliseconds": "ms",
}

// normalize maps a quantity literal's unit spelling onto its canonical UCUM
// atom (resolving calendar-duration words), or returns it unchanged for
// UCUM atoms the table does not know about.
func normalize(unit string) string {
	unit = strings.TrimSpace(unit)
	if canon, ok := calendarWords[strings.ToLower(unit)]; ok {
		return canon
	}
	return unit
}

var ratioCache sync.Map // canonical unit string -> *apd.Decimal

func ratioFor(unit string) (*apd.Decimal, dimension, bool) {
	def, ok := unitTable[unit]
	if !ok {
		if unit == "" || unit == "1" {
			return apd.New(1, 0), dimNone, true
		}
		return nil, dimArbitrary, false
	}
	if cached, ok := ratioCache.Load(unit); ok {
		return cached.(*apd.Decimal), def.dim, true
	}
	d, _, err := apd.NewFromString(def.ratio)
	if err != nil {
		return nil, def.dim, false
	}
	ratioCache.Store(unit, d)
	return d, def.dim, true
}

// Compatible reports whether two units can be compared/added after
// conversion. Units this table does not recognize are only compatible with
// themselves (an opaque-but-equal UCUM string), matching spec.md §4.7's
// "incompatible units" fallback behaviour for comparisons.
func Compatible(a, b string) bool {
	a, b = normalize(a), normalize(b)
	if a == b {
		return true
	}
	_, dimA, okA := ratioFor(a)
	_, dimB, okB := ratioFor(b)
	if !okA || !okB {
		return false
	}
	return dimA == dimB && dimA != dimArbitrary
}

// ConvertTo converts value expressed in fromUnit into toUnit's scale. ok is
// false when the units are not dimensionally compatible.
func ConvertTo(value *apd.Decimal, fromUnit, toUnit string, apdCtx *apd.Context) (*apd.Decimal, bool) {
	from, to := normalize(fromUnit), normalize(toUnit)
	if from == to {
		out := new(apd.Decimal)
		out.Set(value)
		return out, true
	}
	fromRatio, fromDim, okFrom := ratioFor(from)
	toRatio, toDim, okTo := ratioFor(to)
	if !okFrom || !okTo || fromDim != toDim || fromDim == dimArbitrary {
		return nil, false
	}
	base := new(apd.Decimal)
	apdCtx.Mul(base, value, fromRatio)
	out := new(apd.Decimal)
	_, err := apdCtx.Quo(out, base, toRatio)
	if err != nil {
		return nil, false
	}
	return out, true
}

// Canonical exposes normalize for callers outside the package (equality
// needs it to decide whether two unit spellings denote the same unit).
func Canonical(unit string) string { return normalize(unit) }
