package clause

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderRule rewrites one family of substitutable values to a canonical
// token.  Rules are ordered; earlier rules win when patterns overlap.
type placeholderRule struct {
	re    *regexp.Regexp
	token string
}

// placeholderRules canonicalises the value families that jurisdiction
// templates leave open: percentages, fee-schedule references, party names,
// member synonyms, program names, document references, payment terms, dates,
// and blanks.  Two clauses differing only in these families normalise to the
// same string.
var placeholderRules = []placeholderRule{
	// Percentages: [(XX%)] placeholders, numeric forms, spelled-out forms.
	{regexp.MustCompile(`(?i)\[\(?\s*XX\s*%\s*\)?\]`), "<PCT>"},
	{regexp.MustCompile(`(?i)\b\d{1,3}\s*%`), "<PCT>"},
	{regexp.MustCompile(`(?i)\b(one\s*hundred|ninety[-\s]*five|fifty)\s*percent\b`), "<PCT>"},

	// Compensation and fee references.
	{regexp.MustCompile(`(?i)\b(Fee\s+Schedule|Compensation\s+Schedule|Plan\s+Compensation\s+Schedule|WCS|PCS)\b`), "<FEE_SCHEDULE>"},
	{regexp.MustCompile(`(?i)\b(Rate|Eligible\s+Charges?)\b`), "<RATE>"},

	// Parties and organisations.
	{regexp.MustCompile(`(?i)\b(Plan|Company|Network|Agency|Affiliate|Other\s+Payors?)\b`), "<ORG>"},
	{regexp.MustCompile(`(?i)\b(Provider|Participating\s+Provider)\b`), "<PROVIDER>"},

	// Members.
	{regexp.MustCompile(`(?i)\b(Member|Enrollee|Subscriber|Insured|Beneficiary|Covered\s+(Person|Individual)|Dependent)\b`), "<MEMBER>"},

	// Government programs.
	{regexp.MustCompile(`(?i)\b(Government\s+Program|Medicare|Medicaid|CMS|HCA)\b`), "<GOV_PROGRAM>"},

	// Documents.
	{regexp.MustCompile(`(?i)\b(Participation\s+Attachments?)\b`), "<ATTACHMENT>"},
	{regexp.MustCompile(`(?i)\b(provider\s+manual\(s\))\b`), "<PROVIDER_MANUAL>"},
	{regexp.MustCompile(`(?i)\b(Health\s+Benefit\s+Plan)\b`), "<PLAN_DOC>"},

	// Payments.
	{regexp.MustCompile(`(?i)\b(Cost\s*Shares?|copayments?|coinsurance|deductibles?)\b`), "<COST_SHARE>"},
	{regexp.MustCompile(`(?i)\b(Claims?)\b`), "<CLAIM>"},

	// Legal.
	{regexp.MustCompile(`(?i)\b(Regulatory\s+Requirements?)\b`), "<REG_REQ>"},
	{regexp.MustCompile(`(?i)\b(Effective\s+Date|MM/DD/YYYY)\b`), "<DATE>"},
	{regexp.MustCompile(`\[\s*_{2,}\s*\]`), "<BLANK>"},

	// Misc healthcare terms.
	{regexp.MustCompile(`(?i)\b(Health\s+Services?|Covered\s+Services?)\b`), "<SERVICE>"},
	{regexp.MustCompile(`(?i)\b(Medically\s+Necessary|Medical\s+Necessity)\b`), "<MEDICAL_NECESSITY>"},
}

// ApplyPlaceholders rewrites all known substitutable values in s to canonical
// tokens and converts remaining spelled-out percentages to numeric form, so
// "ninety (90) days" style variation cannot defeat lexical comparison.
func ApplyPlaceholders(s string) string {
	out := s
	for _, rule := range placeholderRules {
		out = rule.re.ReplaceAllString(out, rule.token)
	}

	out = numPercentRe.ReplaceAllString(out, "$1%")
	out = wordPercentRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := wordPercentRe.FindStringSubmatch(m)
		if n, ok := wordsToNumber(sub[1]); ok {
			return fmt.Sprintf("%d%%", n)
		}
		return m
	})
	return out
}

var numberWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

// wordsToNumber parses a spelled-out cardinal up to 999 ("one hundred
// twenty", "ninety-five").  Returns false when any word is unrecognised so
// callers can leave the original text untouched.
func wordsToNumber(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", " ")
	words := strings.Fields(s)
	if len(words) == 0 {
		return 0, false
	}

	total, current := 0, 0
	for _, w := range words {
		if w == "and" {
			continue
		}
		if w == "hundred" {
			if current == 0 {
				current = 1
			}
			current *= 100
			continue
		}
		n, ok := numberWords[w]
		if !ok {
			return 0, false
		}
		current += n
	}
	total += current
	return total, true
}
