// Command gen regenerates modelprovider's embedded System/FHIR inheritance
// table from the data below, the way the teacher's internal/cmd/gen
// generated its R4/R4B/R5 release bindings with text/template — repurposed
// here because modelprovider.Default needs no FHIR release package, only
// the DomainResource/Resource backbone (spec.md §4.9).
package main

import (
	"os"
	"text/template"
)

// entry is one resourceType -> parent edge in the embedded inheritance
// table. Extend this list to widen modelprovider.Default's coverage; run
// `go generate ./...` from the repo root afterwards.
type entry struct {
	Type   string
	Parent string
}

type data struct {
	Entries []entry
}

var table = []entry{
	{"DomainResource", "Resource"},
	{"Patient", "DomainResource"},
	{"Observation", "DomainResource"},
	{"Condition", "DomainResource"},
	{"Encounter", "DomainResource"},
	{"Practitioner", "DomainResource"},
	{"PractitionerRole", "DomainResource"},
	{"Organization", "DomainResource"},
	{"Medication", "DomainResource"},
	{"MedicationRequest", "DomainResource"},
	{"Procedure", "DomainResource"},
	{"DiagnosticReport", "DomainResource"},
	{"AllergyIntolerance", "DomainResource"},
	{"Immunization", "DomainResource"},
	{"CarePlan", "DomainResource"},
	{"Location", "DomainResource"},
	{"Device", "DomainResource"},
	{"Bundle", "Resource"},
	{"Parameters", "Resource"},
	{"OperationOutcome", "DomainResource"},
}

func main() {
	// go generate runs this from the directory of the go:generate directive
	// (modelprovider/, see default.go), so the template is reached relative
	// to it and the output lands beside default.go.
	tmpl, err := template.ParseFiles("../internal/cmd/gen/inheritance.go.tmpl")
	if err != nil {
		panic(err)
	}

	f, err := os.Create("zz_generated_inheritance.go")
	if err != nil {
		panic(err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data{Entries: table}); err != nil {
		panic(err)
	}
}
