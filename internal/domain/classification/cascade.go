package classification

import (
	"context"
	"fmt"
	"strings"

	"github.com/ravi-ivar-7/hilabs/internal/domain/clause"
	"github.com/ravi-ivar-7/hilabs/internal/domain/template"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
)

// Params holds the cascade thresholds and toggles.  All similarity gates are
// expressed in [0, 1].
type Params struct {
	FuzzyThreshold       float64
	PlaceholderThreshold float64
	SemanticThreshold    float64
	SemanticAmbigLow     float64
	EntailmentThreshold  float64
	EnableEntailment     bool
	EntailmentFirst      bool
	MinClauseLength      int
}

// DefaultParams returns the published methodology defaults.
func DefaultParams() Params {
	return Params{
		FuzzyThreshold:       0.70,
		PlaceholderThreshold: 0.90,
		SemanticThreshold:    0.60,
		SemanticAmbigLow:     0.50,
		EntailmentThreshold:  0.70,
		EnableEntailment:     false,
		EntailmentFirst:      false,
		MinClauseLength:      10,
	}
}

// Fixed confidence scores attached to boolean cascade exits.  Numeric exits
// (semantic, entailment, default) carry the measured similarity instead.
const (
	confNewCondition     = 0.90
	confExactNorm        = 0.99
	confPlaceholderSubst = 0.95
	confLexicalHigh      = 0.90
	confMethodology      = 0.85
)

// Classifier runs the multi-signal cascade for clauses of one contract.
// Construction is cheap; a Classifier is safe for concurrent use.
type Classifier struct {
	params     Params
	detector   *Detector
	store      *template.Store
	semantic   SemanticScorer
	entailment EntailmentScorer
	log        logging.Logger
}

// NewClassifier wires the cascade.  semantic may be nil (semantic stages are
// then recorded as skipped); entailment may be nil unless
// params.EnableEntailment is set, in which case entailment stages are
// likewise skipped and logged.
func NewClassifier(params Params, store *template.Store, semantic SemanticScorer, entailment EntailmentScorer, log logging.Logger) *Classifier {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Classifier{
		params:     params,
		detector:   NewDetector(),
		store:      store,
		semantic:   semantic,
		entailment: entailment,
		log:        log.Named("cascade"),
	}
}

// Classify labels every clause against the jurisdiction's templates.  One
// clause yields one decision per detected attribute, or a single Skip
// decision when nothing applies.  Decisions preserve clause order.
func (c *Classifier) Classify(ctx context.Context, clauses []clause.Clause, j template.Jurisdiction) ([]Decision, error) {
	decisions := make([]Decision, 0, len(clauses))

	for _, cl := range clauses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if len(strings.TrimSpace(cl.Text)) < c.params.MinClauseLength {
			decisions = append(decisions, Decision{
				ClauseID: cl.ID,
				Text:     cl.Text,
				Label:    LabelSkip,
				Rule:     RuleEmptyClause,
			})
			continue
		}

		attrs := c.detector.Detect(cl.Text)
		if len(attrs) == 0 {
			decisions = append(decisions, Decision{
				ClauseID: cl.ID,
				Text:     cl.Text,
				Label:    LabelSkip,
				Rule:     RuleNoTargetAttribute,
			})
			continue
		}

		for _, attr := range attrs {
			d, err := c.classifyForAttribute(ctx, cl, j, attr)
			if err != nil {
				return nil, err
			}
			decisions = append(decisions, d)
		}
	}
	return decisions, nil
}

// classifyForAttribute runs the cascade against every template for the
// attribute and keeps the most favourable outcome (label priority first,
// score second).
func (c *Classifier) classifyForAttribute(ctx context.Context, cl clause.Clause, j template.Jurisdiction, attr template.Attribute) (Decision, error) {
	templates, err := c.store.ForAttribute(j, attr)
	if err != nil {
		// A missing template is a configuration defect, not a property of the
		// clause; fail the run rather than emit a misleading Non-Standard.
		return Decision{}, err
	}

	best := Decision{Score: -1}
	for _, tpl := range templates {
		label, score, rule, steps := c.runCascade(ctx, cl, tpl)
		cand := Decision{
			ClauseID:     cl.ID,
			Text:         cl.Text,
			Attribute:    attr,
			TemplateUsed: tpl.Name,
			Label:        label,
			Score:        score,
			Rule:         rule,
			Steps:        steps,
		}
		if better(cand, best) {
			best = cand
		}
	}
	return best, nil
}

func better(a, b Decision) bool {
	if a.Label.Priority() != b.Label.Priority() {
		return a.Label.Priority() > b.Label.Priority()
	}
	return a.Score > b.Score
}

// runCascade applies the ordered rules for one clause/template pair.  The
// first rule whose condition holds decides; every evaluated stage is recorded
// in the trace.
func (c *Classifier) runCascade(ctx context.Context, cl clause.Clause, tpl template.Clause) (Label, float64, string, []Step) {
	var steps []Step

	// Rule 1: added conditional language.
	hasExc := clause.ContainsExceptionTokens(cl.Text, tpl.HasExceptionTokens)
	steps = append(steps, Step{
		Name: StepExceptionCheck, Passed: hasExc,
		Reason: "conditional/exception tokens present in clause but not template",
	})
	if hasExc {
		return LabelNonStandard, confNewCondition, RuleNewCondition, steps
	}

	// Rule 2: exact match after normalization.
	exact := cl.NormText == tpl.NormText
	steps = append(steps, Step{
		Name: StepExactNormMatch, Passed: exact,
		Reason: "clause equals template after normalization",
	})
	if exact {
		return LabelStandard, confExactNorm, RuleExactNorm, steps
	}

	// Rule 3: differences limited to placeholder value substitutions.
	phScore := placeholderSimilarity(cl.Text, tpl.RawText)
	phPass := phScore >= c.params.PlaceholderThreshold
	steps = append(steps, Step{
		Name: StepPlaceholderSubst, Passed: phPass, Score: scoreOf(phScore),
		Reason: "placeholder/value substitutions align",
	})
	if phPass {
		return LabelStandard, confPlaceholderSubst, RulePlaceholderSubst, steps
	}

	if c.params.EnableEntailment && c.params.EntailmentFirst {
		if label, score, rule, done := c.entailmentGate(ctx, cl, tpl, &steps); done {
			return label, score, rule, steps
		}
	}

	// Rule 4: high lexical similarity.
	lex := LexicalRatio(cl.NormText, tpl.NormText)
	lexPass := lex >= c.params.FuzzyThreshold
	steps = append(steps, Step{
		Name: StepFuzzyLexical, Passed: lexPass, Score: scoreOf(lex),
		Reason: fmt.Sprintf("lexical ratio=%.3f", lex),
	})
	if lexPass {
		return LabelStandard, confLexicalHigh, RuleLexicalHigh, steps
	}

	// Rules 5 and 6: embedding similarity, Standard gate then Ambiguous band.
	var semScore *float64
	if c.semantic != nil {
		sim, err := c.semantic.Similarity(ctx, cl.Text, tpl.RawText)
		if err != nil {
			c.log.Warn("semantic scorer unavailable, stage skipped",
				logging.Int("clause_id", cl.ID),
				logging.String("template", tpl.Name),
				logging.Err(err),
			)
			steps = append(steps, Step{
				Name: StepSemanticSimilarity, Passed: false,
				Reason: "semantic engine unavailable",
			})
		} else {
			semScore = scoreOf(sim)
			semPass := sim >= c.params.SemanticThreshold
			steps = append(steps, Step{
				Name: StepSemanticSimilarity, Passed: semPass, Score: scoreOf(sim),
				Reason: fmt.Sprintf("embedding cosine=%.3f", sim),
			})
			if semPass {
				return LabelStandard, sim, RuleSemanticHigh, steps
			}
			if sim >= c.params.SemanticAmbigLow {
				steps = append(steps, Step{
					Name: StepSemanticAmbiguous, Passed: true, Score: scoreOf(sim),
					Reason: "embedding similarity in ambiguous band, needs review",
				})
				return LabelAmbiguous, sim, RuleSemanticAmbiguous, steps
			}
		}
	} else {
		steps = append(steps, Step{
			Name: StepSemanticSimilarity, Passed: false,
			Reason: "semantic engine not configured",
		})
	}

	// Rule 7: alternate payment methodology.
	diffMeth := referencesAlternateMethodology(cl.Text)
	steps = append(steps, Step{
		Name: StepMethodology, Passed: diffMeth,
		Reason: "references alternate payment methodology",
	})
	if diffMeth {
		return LabelNonStandard, confMethodology, RuleDifferentMethodology, steps
	}

	// Rule 8: optional entailment gate.
	if c.params.EnableEntailment && !c.params.EntailmentFirst {
		if label, score, rule, done := c.entailmentGate(ctx, cl, tpl, &steps); done {
			return label, score, rule, steps
		}
	}

	// Rule 9: nothing held, the clause deviates.  The measured similarity is
	// reported as the confidence, floored at zero: a negative cosine would
	// leak outside the decision score range.
	final := lex
	if semScore != nil {
		final = *semScore
	}
	if final < 0 {
		final = 0
	}
	steps = append(steps, Step{
		Name: StepDefault, Passed: true, Score: scoreOf(final),
		Reason: "low similarity, no earlier rule satisfied",
	})
	return LabelNonStandard, final, RuleLowSimilarity, steps
}

// entailmentGate runs the cross-encoder stage.  done is true only when the
// gate fires; an unavailable scorer records a skipped stage and lets the
// cascade continue.
func (c *Classifier) entailmentGate(ctx context.Context, cl clause.Clause, tpl template.Clause, steps *[]Step) (Label, float64, string, bool) {
	if c.entailment == nil {
		*steps = append(*steps, Step{
			Name: StepEntailment, Passed: false,
			Reason: "entailment engine not configured",
		})
		return "", 0, "", false
	}
	prob, err := c.entailment.EntailmentProbability(ctx, cl.Text, tpl.RawText)
	if err != nil {
		c.log.Warn("entailment scorer unavailable, stage skipped",
			logging.Int("clause_id", cl.ID),
			logging.String("template", tpl.Name),
			logging.Err(err),
		)
		*steps = append(*steps, Step{
			Name: StepEntailment, Passed: false,
			Reason: "entailment engine unavailable",
		})
		return "", 0, "", false
	}
	pass := prob >= c.params.EntailmentThreshold
	*steps = append(*steps, Step{
		Name: StepEntailment, Passed: pass, Score: scoreOf(prob),
		Reason: fmt.Sprintf("entailment probability=%.3f", prob),
	})
	if pass {
		return LabelStandard, prob, RuleEntailmentHigh, true
	}
	return "", 0, "", false
}

// placeholderSimilarity measures lexical similarity after canonicalising
// substitutable values on both sides, so that a clause differing from the
// template only in filled-in values scores near 1.
func placeholderSimilarity(clauseText, templateText string) float64 {
	a := strings.ToLower(clause.ApplyPlaceholders(clauseText))
	b := strings.ToLower(clause.ApplyPlaceholders(templateText))
	return LexicalRatio(a, b)
}
