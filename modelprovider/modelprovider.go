// Package modelprovider defines the schema-knowledge interface the evaluator
// consults for resource/element types, choice-type (value[x]) resolution,
// inheritance, children(), and reference resolution (spec.md §4.9).
//
// The core only owns the interface and its contract. Concrete FHIR R4/R4B/R5
// schema providers (compile-time generated or package-backed, as
// fhir-toolbox-go's model/gen packages are) are external; this package ships
// one small table-based default so the engine is usable
// without one, following spec.md's "may be embedded" allowance.
package modelprovider

import "fhirpath-go/value"

// ChoiceProjection is one candidate property name + declared type for a
// value[x]-style choice element, e.g. {Property: "valueQuantity", Type:
// "Quantity"}.
type ChoiceProjection struct {
	Property string
	Type     string
}

// Provider supplies FHIR/System schema knowledge to the evaluator.
type Provider interface {
	// IsResourceType reports whether name is a known top-level resource type.
	IsResourceType(name string) bool

	// IsSubtypeOf reports whether child is, directly or transitively, a
	// subtype of parent in either the FHIR type hierarchy (e.g. Patient is
	// DomainResource is Resource) or the System type hierarchy. child ==
	// parent is always true.
	IsSubtypeOf(child, parent string) bool

	// ElementType returns the declared type of property on a node of type
	// onType, when schema knowledge is available.
	ElementType(onType, property string) (string, bool)

	// ChoiceProjections returns the candidate (property, type) pairs for a
	// choice element base name (e.g. "value" on Observation yields
	// valueQuantity/Quantity, valueString/String, ...).
	ChoiceProjections(onType, base string) []ChoiceProjection

	// ChildrenOf returns every (property, declared type) pair defined on
	// onType. The children() function does not call it; it enumerates the
	// properties present on each node.
	ChildrenOf(onType string) []ChoiceProjection

	// ResolveReference resolves a `reference` string (e.g. "Patient/123")
	// against ctxResource, for resolve(). Returns Empty, false when
	// resolution is unsupported or the target cannot be found.
	ResolveReference(ctxResource *value.Resource, reference string) (value.Value, bool)
}
