package classification

import (
	"regexp"
	"strings"

	"github.com/ravi-ivar-7/hilabs/internal/domain/template"
)

// attributePatterns maps each audited attribute to the program-specific
// phrasings that mark a clause as relevant.  Patterns run against lowercased
// text.
var attributePatterns = map[template.Attribute][]*regexp.Regexp{
	template.AttrMedicaidTimelyFiling: compileAll(
		`medicaid.*claim.*\d+.*day`,
		`medicaid.*filing`,
		`medicaid.*submission`,
		`120.*day.*medicaid`,
		`medicaid.*eligibility.*date`,
	),
	template.AttrMedicareTimelyFiling: compileAll(
		`medicare.*claim.*\d+.*day`,
		`medicare.*filing`,
		`medicare.*submission`,
		`365.*day.*medicare`,
		`medicare.*secondary.*payor`,
	),
	template.AttrNoSteerageSOC: compileAll(
		`network.*participation`,
		`provider.*network`,
		`steerage`,
		`standard.*care`,
		`network.*designated`,
		`participation.*attachment`,
	),
	template.AttrMedicaidFeeSchedule: compileAll(
		`medicaid.*fee.*schedule`,
		`medicaid.*\d+.*percent`,
		`medicaid.*eligible.*charge`,
		`medicaid.*compensation`,
		`medicaid.*rate`,
	),
	template.AttrMedicareFeeSchedule: compileAll(
		`medicare.*advantage`,
		`medicare.*fee.*schedule`,
		`medicare.*eligible.*charge`,
		`ma.*covered.*service`,
		`medicare.*rate`,
	),
}

// genericTimelyFilingPatterns cover filing-deadline language that omits the
// program name; the detector resolves the program from context keywords.
var genericTimelyFilingPatterns = compileAll(
	`timely.*filing`,
	`submit.*claims.*\d+.*days?`,
	`filing.*deadline`,
	`claims.*rendered.*refuse payment`,
	`secondary payor.*\d+.*days?`,
)

// Context keywords that, co-occurring with a program keyword, mark a clause
// as speaking to that program's attribute even when no attribute pattern
// fires.
var (
	timelyFilingContext = []string{"filing", "claim", "submission", "days"}
	feeScheduleContext  = []string{"fee", "schedule", "payment", "rate"}
)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// Detector decides which audited attributes a clause speaks to.  Detection is
// pure pattern matching and therefore deterministic.
type Detector struct{}

// NewDetector constructs a Detector.
func NewDetector() *Detector { return &Detector{} }

// Detect returns the attributes relevant to text, in the stable target-
// attribute order, without duplicates.  An empty result means the clause is
// outside audit scope.
func (d *Detector) Detect(text string) []template.Attribute {
	lower := strings.ToLower(text)
	found := make(map[template.Attribute]bool)

	for _, attr := range template.TargetAttributes() {
		for _, re := range attributePatterns[attr] {
			if re.MatchString(lower) {
				found[attr] = true
				break
			}
		}
	}

	// Generic filing phrasing and program/context keyword co-occurrence both
	// resolve to the program named in the clause; without a program keyword
	// the clause stays undetected rather than guessed.
	hasMedicaid := strings.Contains(lower, "medicaid")
	hasMedicare := strings.Contains(lower, "medicare")
	if hasMedicaid || hasMedicare {
		generic := false
		for _, re := range genericTimelyFilingPatterns {
			if re.MatchString(lower) {
				generic = true
				break
			}
		}
		if generic || containsAny(lower, timelyFilingContext) {
			if hasMedicaid {
				found[template.AttrMedicaidTimelyFiling] = true
			}
			if hasMedicare {
				found[template.AttrMedicareTimelyFiling] = true
			}
		}
		if containsAny(lower, feeScheduleContext) {
			if hasMedicaid {
				found[template.AttrMedicaidFeeSchedule] = true
			}
			if hasMedicare {
				found[template.AttrMedicareFeeSchedule] = true
			}
		}
	}

	var out []template.Attribute
	for _, attr := range template.TargetAttributes() {
		if found[attr] {
			out = append(out, attr)
		}
	}
	return out
}

// methodologyPatterns mark references to payment methodologies that differ
// from the template's fee-schedule basis.
var methodologyPatterns = compileAll(
	`medicare.*rate`,
	`billed.*charge`,
	`usual.*customary`,
	`fair.*market`,
	`negotiated.*rate`,
	`contracted.*rate`,
)

// referencesAlternateMethodology reports whether text mentions a payment
// basis other than the standard fee schedule.
func referencesAlternateMethodology(text string) bool {
	lower := strings.ToLower(text)
	for _, re := range methodologyPatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}
