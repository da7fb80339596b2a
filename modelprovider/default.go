package modelprovider

//go:generate go run ../internal/cmd/gen

import (
	"strings"

	"github.com/iancoleman/strcase"

	"fhirpath-go/value"
)

// Default is a small, embedded model provider covering the FHIR
// inheritance backbone and choice-type patterns common enough to exercise
// the evaluator's polymorphic navigation without depending on a generated
// FHIR release package. Real deployments supply a schema-complete Provider
// (e.g. one generated the way fhir-toolbox-go's model/gen packages are);
// Default exists so this module is usable standalone, per spec.md §4.9.
type Default struct {
	// extraParents lets a caller register additional resource types/hierarchy
	// entries without forking this type.
	extraParents map[string]string
}

func NewDefault() *Default {
	return &Default{extraParents: map[string]string{}}
}

// RegisterResourceType adds resourceType as a subtype of parent (typically
// "DomainResource"), for callers extending the embedded table.
func (d *Default) RegisterResourceType(resourceType, parent string) {
	d.extraParents[resourceType] = parent
}

// fhirParents (the DomainResource/Resource backbone) lives in
// zz_generated_inheritance.go, produced by internal/cmd/gen from the table
// there; edit that table and re-run `go generate ./...`, not this file.

// systemParents holds System-type parent edges; it is empty because the
// System types have no supertype besides Any, which is modeled implicitly
// (IsSubtypeOf(x, "Any") is always true).
var systemParents = map[string]string{}

func (d *Default) IsResourceType(name string) bool {
	if _, ok := fhirParents[name]; ok {
		return true
	}
	if _, ok := d.extraParents[name]; ok {
		return true
	}
	return name == "Resource"
}

func (d *Default) parentOf(name string) (string, bool) {
	if p, ok := d.extraParents[name]; ok {
		return p, true
	}
	if p, ok := fhirParents[name]; ok {
		return p, true
	}
	if p, ok := systemParents[name]; ok {
		return p, true
	}
	return "", false
}

func (d *Default) IsSubtypeOf(child, parent string) bool {
	if child == parent || parent == "Any" {
		return true
	}
	seen := map[string]bool{}
	cur := child
	for {
		if seen[cur] {
			return false // cycle guard
		}
		seen[cur] = true
		p, ok := d.parentOf(cur)
		if !ok {
			return false
		}
		if p == parent {
			return true
		}
		cur = p
	}
}

// choiceElements maps "ResourceType.base" to the System/FHIR type names
// accepted by that choice element, the way FHIR StructureDefinitions do for
// value[x]-shaped properties. Deliberately only covers the handful of
// elements the spec.md scenarios and common test resources exercise.
var choiceElements = map[string][]string{
	"Observation.value":  {"Quantity", "CodeableConcept", "String", "Boolean", "Integer", "Range", "Ratio", "DateTime", "Period"},
	"Patient.deceased":   {"Boolean", "DateTime"},
	"Patient.multipleBirth": {"Boolean", "Integer"},
	"Condition.onset":    {"DateTime", "Age", "Period", "Range", "String"},
	"Condition.abatement": {"DateTime", "Age", "Period", "Range", "String", "Boolean"},
}

func (d *Default) ChoiceProjections(onType, base string) []ChoiceProjection {
	types, ok := choiceElements[onType+"."+base]
	if !ok {
		// generic fallback: common FHIR value[x] datatypes, so that any
		// "...value" choice element navigates even without a specific
		// table entry.
		if base == "value" {
			types = []string{"Quantity", "CodeableConcept", "String", "Boolean", "Integer", "DateTime", "Range", "Ratio", "Period"}
		} else {
			return nil
		}
	}
	out := make([]ChoiceProjection, 0, len(types))
	for _, t := range types {
		out = append(out, ChoiceProjection{Property: base + strcase.ToCamel(t), Type: t})
	}
	return out
}

func (d *Default) ElementType(onType, property string) (string, bool) {
	// Default has no full StructureDefinition table; it can only answer for
	// choice-element bases it already modeled above.
	for key, types := range choiceElements {
		parts := strings.SplitN(key, ".", 2)
		if parts[0] != onType {
			continue
		}
		for _, t := range types {
			if parts[1]+strcase.ToCamel(t) == property {
				return t, true
			}
		}
	}
	return "", false
}

func (d *Default) ChildrenOf(onType string) []ChoiceProjection {
	var out []ChoiceProjection
	for key, types := range choiceElements {
		parts := strings.SplitN(key, ".", 2)
		if parts[0] != onType {
			continue
		}
		for _, t := range types {
			out = append(out, ChoiceProjection{Property: parts[1] + strcase.ToCamel(t), Type: t})
		}
	}
	return out
}

// ResolveReference is a no-op in Default: spec.md §4.9 allows "may be a
// no-op in constrained deployments", and chasing `reference` strings
// requires an external resource store, out of this module's scope
// (spec.md §1 Non-goals: "persistent storage").
func (d *Default) ResolveReference(ctxResource *value.Resource, reference string) (value.Value, bool) {
	return value.Empty(), false
}
