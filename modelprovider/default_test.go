package modelprovider

import "testing"

func TestIsResourceType(t *testing.T) {
	d := NewDefault()
	if !d.IsResourceType("Patient") {
		t.Fatalf("Patient should be a known resource type")
	}
	if d.IsResourceType("NotAType") {
		t.Fatalf("NotAType should not be a known resource type")
	}
}

func TestIsSubtypeOfWalksHierarchy(t *testing.T) {
	d := NewDefault()
	if !d.IsSubtypeOf("Patient", "DomainResource") {
		t.Fatalf("Patient should be a subtype of DomainResource")
	}
	if !d.IsSubtypeOf("Patient", "Resource") {
		t.Fatalf("Patient should transitively be a subtype of Resource")
	}
	if !d.IsSubtypeOf("Patient", "Any") {
		t.Fatalf("everything is a subtype of Any")
	}
	if d.IsSubtypeOf("Patient", "Observation") {
		t.Fatalf("Patient should not be a subtype of Observation")
	}
}

func TestRegisterResourceTypeExtendsHierarchy(t *testing.T) {
	d := NewDefault()
	d.RegisterResourceType("CustomThing", "DomainResource")
	if !d.IsResourceType("CustomThing") {
		t.Fatalf("CustomThing should be registered as a resource type")
	}
	if !d.IsSubtypeOf("CustomThing", "Resource") {
		t.Fatalf("CustomThing should walk up through the registered parent")
	}
}

func TestChoiceProjectionsKnownElement(t *testing.T) {
	d := NewDefault()
	projs := d.ChoiceProjections("Patient", "deceased")
	if len(projs) != 2 {
		t.Fatalf("Patient.deceased projections = %v, want 2", projs)
	}
	var sawBoolean bool
	for _, p := range projs {
		if p.Property == "deceasedBoolean" && p.Type == "Boolean" {
			sawBoolean = true
		}
	}
	if !sawBoolean {
		t.Fatalf("expected a deceasedBoolean projection, got %v", projs)
	}
}

func TestChoiceProjectionsGenericValueFallback(t *testing.T) {
	d := NewDefault()
	projs := d.ChoiceProjections("UnmodeledType", "value")
	if len(projs) == 0 {
		t.Fatalf("expected generic value[x] fallback projections")
	}
}

func TestChoiceProjectionsUnknownNonValueBase(t *testing.T) {
	d := NewDefault()
	if got := d.ChoiceProjections("UnmodeledType", "notAChoice"); got != nil {
		t.Fatalf("unmodeled non-value base should yield no projections, got %v", got)
	}
}

func TestElementTypeRoundTripsChoiceProjection(t *testing.T) {
	d := NewDefault()
	typ, ok := d.ElementType("Patient", "deceasedBoolean")
	if !ok || typ != "Boolean" {
		t.Fatalf("ElementType(Patient, deceasedBoolean) = (%q, %v), want (Boolean, true)", typ, ok)
	}
}

func TestChildrenOfListsAllChoiceProjections(t *testing.T) {
	d := NewDefault()
	children := d.ChildrenOf("Patient")
	if len(children) == 0 {
		t.Fatalf("expected Patient's choice children, got none")
	}
}

func TestResolveReferenceIsNoOp(t *testing.T) {
	d := NewDefault()
	v, ok := d.ResolveReference(nil, "Patient/123")
	if ok {
		t.Fatalf("ResolveReference should report ok=false")
	}
	if !v.IsEmpty() {
		t.Fatalf("ResolveReference should yield Empty, got %v", v)
	}
}
