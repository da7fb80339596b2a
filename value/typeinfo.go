package value

// TypeInfo is the first-class type value returned by type() and consulted by
// is/as/ofType.
type TypeInfo struct {
	Namespace string // "System" or "FHIR"
	Name      string
}

func (t TypeInfo) String() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// System type names, per spec.md §4.5.
const (
	SystemBoolean  = "Boolean"
	SystemString   = "String"
	SystemInteger  = "Integer"
	SystemDecimal  = "Decimal"
	SystemDate     = "Date"
	SystemDateTime = "DateTime"
	SystemTime     = "Time"
	SystemQuantity = "Quantity"
)

// SystemTypeInfo returns the System-namespace TypeInfo for a Value's Kind, or
// the zero TypeInfo for Kind values that have no System type (Resource,
// Collection, Empty).
func (v Value) SystemTypeInfo() (TypeInfo, bool) {
	switch v.Kind {
	case KindBoolean:
		return TypeInfo{Namespace: "System", Name: SystemBoolean}, true
	case KindInteger:
		return TypeInfo{Namespace: "System", Name: SystemInteger}, true
	case KindDecimal:
		return TypeInfo{Namespace: "System", Name: SystemDecimal}, true
	case KindString:
		return TypeInfo{Namespace: "System", Name: SystemString}, true
	case KindDate:
		return TypeInfo{Namespace: "System", Name: SystemDate}, true
	case KindDateTime:
		return TypeInfo{Namespace: "System", Name: SystemDateTime}, true
	case KindTime:
		return TypeInfo{Namespace: "System", Name: SystemTime}, true
	case KindQuantity:
		return TypeInfo{Namespace: "System", Name: SystemQuantity}, true
	default:
		return TypeInfo{}, false
	}
}

// TypeInfo reports the best available type for v: the resource's FHIR type
// hint when v is a Resource, otherwise its System type.
func (v Value) TypeInfo() TypeInfo {
	if v.Kind == KindResource && v.res != nil {
		name := v.res.TypeHint
		if name == "" {
			name = "Element"
		}
		return TypeInfo{Namespace: "FHIR", Name: name}
	}
	if ti, ok := v.SystemTypeInfo(); ok {
		return ti
	}
	return TypeInfo{}
}
