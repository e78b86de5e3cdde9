// Package classification implements the deterministic multi-signal cascade
// that labels contract clauses against jurisdiction standard templates.
package classification

import (
	"github.com/ravi-ivar-7/hilabs/internal/domain/template"
)

// Label is the classification outcome for one clause/attribute pair.
type Label string

const (
	// LabelStandard means the clause matches the jurisdiction template.
	LabelStandard Label = "Standard"

	// LabelNonStandard means the clause deviates from the template.
	LabelNonStandard Label = "Non-Standard"

	// LabelAmbiguous means the evidence is inconclusive and the clause needs
	// human review.
	LabelAmbiguous Label = "Ambiguous"

	// LabelSkip means no audited attribute applies to the clause.
	LabelSkip Label = "Skip"
)

// Priority orders labels for best-template selection: a Standard finding on
// any template beats Ambiguous, which beats Non-Standard.  Skip never
// competes.
func (l Label) Priority() int {
	switch l {
	case LabelStandard:
		return 3
	case LabelAmbiguous:
		return 2
	case LabelNonStandard:
		return 1
	default:
		return 0
	}
}

// IsTerminalReviewable reports whether the label represents a real
// classification (as opposed to a Skip).
func (l Label) IsTerminalReviewable() bool {
	return l == LabelStandard || l == LabelNonStandard || l == LabelAmbiguous
}

// Rule identifiers, one per cascade exit.  Stable strings: they are persisted
// with each decision and consumed by reviewers and reporting.
const (
	RuleNewCondition         = "new_condition"
	RuleExactNorm            = "exact_norm"
	RulePlaceholderSubst     = "placeholder_subst"
	RuleLexicalHigh          = "lexical_high"
	RuleSemanticHigh         = "semantic_high"
	RuleSemanticAmbiguous    = "semantic_ambiguous"
	RuleDifferentMethodology = "different_methodology"
	RuleEntailmentHigh       = "entailment_high"
	RuleLowSimilarity        = "low_similarity"
	RuleNoTargetAttribute    = "no_target_attribute"
	RuleEmptyClause          = "empty_clause"
)

// Step names, one per cascade stage, recorded in order in every decision
// trace.
const (
	StepExceptionCheck     = "exception_check"
	StepExactNormMatch     = "exact_normalized_match"
	StepPlaceholderSubst   = "placeholder_substitution"
	StepFuzzyLexical       = "fuzzy_lexical"
	StepSemanticSimilarity = "semantic_similarity"
	StepSemanticAmbiguous  = "semantic_ambiguous_band"
	StepMethodology        = "different_methodology"
	StepEntailment         = "entailment"
	StepDefault            = "default_nonstandard"
)

// Step records the outcome of one cascade stage.  Score is nil for boolean
// stages and for stages whose engine was unavailable; a skipped stage is
// never given a defaulted numeric score.
type Step struct {
	Name   string   `json:"name"`
	Passed bool     `json:"passed"`
	Score  *float64 `json:"score,omitempty"`
	Reason string   `json:"reason"`
}

// Decision is the final outcome for one clause/attribute pair, including the
// full step trace for auditability.
type Decision struct {
	ClauseID     int                `json:"clause_id"`
	Text         string             `json:"text"`
	Attribute    template.Attribute `json:"attribute,omitempty"`
	TemplateUsed string             `json:"template_used,omitempty"`
	Label        Label              `json:"label"`
	Score        float64            `json:"score"`
	Rule         string             `json:"rule"`
	Steps        []Step             `json:"steps,omitempty"`
}

func scoreOf(v float64) *float64 { return &v }
