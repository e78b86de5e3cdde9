// Package template defines the jurisdiction standard-clause model and the
// in-memory store the classification cascade compares contract clauses
// against.
package template

import (
	"fmt"

	"github.com/ravi-ivar-7/hilabs/internal/domain/clause"
)

// Jurisdiction identifies a state whose standard contract template is on
// file.
type Jurisdiction string

const (
	JurisdictionTN Jurisdiction = "TN"
	JurisdictionWA Jurisdiction = "WA"
)

// Jurisdictions lists every supported jurisdiction in a stable order.
func Jurisdictions() []Jurisdiction {
	return []Jurisdiction{JurisdictionTN, JurisdictionWA}
}

// ParseJurisdiction validates and canonicalises a jurisdiction code.
func ParseJurisdiction(s string) (Jurisdiction, bool) {
	switch Jurisdiction(s) {
	case JurisdictionTN:
		return JurisdictionTN, true
	case JurisdictionWA:
		return JurisdictionWA, true
	}
	return "", false
}

// Attribute is one of the contract provisions the platform audits.
type Attribute string

const (
	AttrMedicaidTimelyFiling Attribute = "Medicaid Timely Filing"
	AttrMedicareTimelyFiling Attribute = "Medicare Timely Filing"
	AttrNoSteerageSOC        Attribute = "No Steerage/SOC"
	AttrMedicaidFeeSchedule  Attribute = "Medicaid Fee Schedule"
	AttrMedicareFeeSchedule  Attribute = "Medicare Fee Schedule"
)

// TargetAttributes lists the audited attributes in a stable order.
func TargetAttributes() []Attribute {
	return []Attribute{
		AttrMedicaidTimelyFiling,
		AttrMedicareTimelyFiling,
		AttrNoSteerageSOC,
		AttrMedicaidFeeSchedule,
		AttrMedicareFeeSchedule,
	}
}

// ParseAttribute validates an attribute name.
func ParseAttribute(s string) (Attribute, bool) {
	for _, a := range TargetAttributes() {
		if Attribute(s) == a {
			return a, true
		}
	}
	return "", false
}

// Clause is one jurisdiction standard clause, preprocessed once at load so
// every comparison sees identical derived text.
type Clause struct {
	// Name uniquely identifies the clause, e.g. "TN_Medicaid_Timely_Filing".
	Name string

	Jurisdiction Jurisdiction
	Attribute    Attribute

	// RawText is the clause exactly as extracted from the jurisdiction
	// template document.
	RawText string

	// NormText is RawText after matching normalization; exact and lexical
	// gates compare against this form.
	NormText string

	// HasExceptionTokens records whether the template itself carries
	// conditional language, which suppresses the exception gate for clauses
	// compared against it.
	HasExceptionTokens bool
}

// newClause derives the preprocessed fields from raw template text.
func newClause(j Jurisdiction, a Attribute, raw string) Clause {
	return Clause{
		Name:               fmt.Sprintf("%s_%s", j, attributeSlug(a)),
		Jurisdiction:       j,
		Attribute:          a,
		RawText:            raw,
		NormText:           clause.NormalizeForMatching(raw),
		HasExceptionTokens: clause.ContainsExceptionTokens(raw, false),
	}
}

func attributeSlug(a Attribute) string {
	out := make([]rune, 0, len(a))
	for _, r := range a {
		switch r {
		case ' ', '/':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
