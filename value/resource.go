package value

import (
	"encoding/json"
	"reflect"
)

// Resource is a shared, immutable reference to a node in a frozen FHIR JSON
// tree (spec.md §3.1's "pointer to a JSON-shaped FHIR resource node"). Raw
// holds the decoded JSON object for this node; TypeHint is the declared FHIR
// type of this node when known (the resourceType for a resource root, or the
// element type supplied by the model provider while navigating into a
// backbone/complex element).
type Resource struct {
	Raw      map[string]any
	TypeHint string
}

// NewResource decodes a JSON document into a root Resource. The resourceType
// property, if present, seeds TypeHint.
func NewResource(jsonDoc []byte) (*Resource, error) {
	var raw map[string]any
	if err := json.Unmarshal(jsonDoc, &raw); err != nil {
		return nil, err
	}
	typeHint, _ := raw["resourceType"].(string)
	return &Resource{Raw: raw, TypeHint: typeHint}, nil
}

// RawChild returns the raw (unconverted) JSON value stored under name, and
// whether the key is present at all. The evaluator is responsible for
// turning this into correctly typed Values (possibly consulting the model
// provider for choice-type suffixes when absent here).
func (r *Resource) RawChild(name string) (any, bool) {
	if r == nil || r.Raw == nil {
		return nil, false
	}
	v, ok := r.Raw[name]
	return v, ok
}

// Keys returns every property name present on this node, for children().
func (r *Resource) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, len(r.Raw))
	for k := range r.Raw {
		if k == "resourceType" {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

// StructurallyEqual implements spec.md §3.1's "equality on Resource is
// structural over the underlying JSON".
func (r *Resource) StructurallyEqual(other *Resource) bool {
	if r == other {
		return true
	}
	if r == nil || other == nil {
		return false
	}
	return reflect.DeepEqual(r.Raw, other.Raw)
}

// String renders the node back to JSON, used by trace output and debugging.
func (r *Resource) String() string {
	if r == nil {
		return "null"
	}
	b, err := json.Marshal(r.Raw)
	if err != nil {
		return "{}"
	}
	return string(b)
}
