package classification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravi-ivar-7/hilabs/internal/domain/clause"
	"github.com/ravi-ivar-7/hilabs/internal/domain/template"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	apperrors "github.com/ravi-ivar-7/hilabs/pkg/errors"
)

// semanticFunc adapts a function to the SemanticScorer interface.
type semanticFunc func(ctx context.Context, a, b string) (float64, error)

func (f semanticFunc) Similarity(ctx context.Context, a, b string) (float64, error) {
	return f(ctx, a, b)
}

// entailmentFunc adapts a function to the EntailmentScorer interface.
type entailmentFunc func(ctx context.Context, premise, hypothesis string) (float64, error)

func (f entailmentFunc) EntailmentProbability(ctx context.Context, premise, hypothesis string) (float64, error) {
	return f(ctx, premise, hypothesis)
}

func fixedSemantic(score float64) SemanticScorer {
	return semanticFunc(func(context.Context, string, string) (float64, error) { return score, nil })
}

func failingSemantic() SemanticScorer {
	return semanticFunc(func(context.Context, string, string) (float64, error) {
		return 0, errors.New("encoder unreachable")
	})
}

func fixedEntailment(prob float64) EntailmentScorer {
	return entailmentFunc(func(context.Context, string, string) (float64, error) { return prob, nil })
}

func newTestClassifier(t *testing.T, params Params, semantic SemanticScorer, entailment EntailmentScorer) (*Classifier, *template.Store) {
	t.Helper()
	store := template.NewStore(logging.NewNopLogger())
	return NewClassifier(params, store, semantic, entailment, logging.NewNopLogger()), store
}

func asClause(id int, text string) clause.Clause {
	return clause.Clause{ID: id, Text: text, NormText: clause.NormalizeForMatching(text)}
}

// ninetyDayClause is a timely-filing clause reworded and shortened relative
// to the TN template, with a 90-day deadline instead of 120.
const ninetyDayClause = "Provider must file all Medicaid claims with the payor no later than ninety (90) days after the date of service; claims received after the filing deadline will be denied."

// ─────────────────────────────────────────────────────────────────────────────
// Cascade properties
// ─────────────────────────────────────────────────────────────────────────────

func TestCascade_ExactMatchAlwaysStandard(t *testing.T) {
	c, store := newTestClassifier(t, DefaultParams(), fixedSemantic(0.0), nil)

	for _, tpl := range store.All() {
		cl := asClause(1, tpl.RawText)
		label, score, rule, steps := c.runCascade(context.Background(), cl, tpl)

		assert.Equal(t, LabelStandard, label, tpl.Name)
		assert.Equal(t, RuleExactNorm, rule, tpl.Name)
		assert.GreaterOrEqual(t, score, 0.95, tpl.Name)
		assert.NotEmpty(t, steps, tpl.Name)
	}
}

func TestCascade_OverrideDominance(t *testing.T) {
	c, store := newTestClassifier(t, DefaultParams(), fixedSemantic(0.99), nil)

	for _, tpl := range store.All() {
		if tpl.HasExceptionTokens {
			continue
		}
		cl := asClause(1, tpl.RawText+" unless otherwise agreed")
		label, score, rule, _ := c.runCascade(context.Background(), cl, tpl)

		assert.Equal(t, LabelNonStandard, label, tpl.Name)
		assert.Equal(t, RuleNewCondition, rule, tpl.Name)
		assert.InDelta(t, 0.90, score, 1e-9, tpl.Name)
	}
}

func TestCascade_WAVerbatimScenario(t *testing.T) {
	c, store := newTestClassifier(t, DefaultParams(), fixedSemantic(0.0), nil)

	tpl, err := store.Get(template.JurisdictionWA, template.AttrMedicareTimelyFiling)
	require.NoError(t, err)

	label, score, rule, _ := c.runCascade(context.Background(), asClause(1, tpl.RawText), tpl)
	assert.Equal(t, LabelStandard, label)
	assert.Equal(t, RuleExactNorm, rule)
	assert.InDelta(t, 0.99, score, 1e-9)
}

func TestCascade_TN90DayScenario(t *testing.T) {
	// Reworded 90-day deadline against the TN 120-day template: every
	// similarity gate fails, so the clause lands Non-Standard.
	c, store := newTestClassifier(t, DefaultParams(), fixedSemantic(0.30), nil)

	tpl, err := store.Get(template.JurisdictionTN, template.AttrMedicaidTimelyFiling)
	require.NoError(t, err)

	label, _, rule, steps := c.runCascade(context.Background(), asClause(1, ninetyDayClause), tpl)
	assert.Equal(t, LabelNonStandard, label)
	assert.Contains(t, []string{RuleLowSimilarity, RuleDifferentMethodology}, rule)

	// The lexical gate was evaluated and genuinely fell short.
	var sawFuzzy bool
	for _, s := range steps {
		if s.Name == StepFuzzyLexical {
			sawFuzzy = true
			require.NotNil(t, s.Score)
			assert.Less(t, *s.Score, c.params.FuzzyThreshold)
		}
	}
	assert.True(t, sawFuzzy)
}

func TestCascade_AmbiguousBandContainment(t *testing.T) {
	store := template.NewStore(logging.NewNopLogger())
	tpl, err := store.Get(template.JurisdictionTN, template.AttrMedicaidTimelyFiling)
	require.NoError(t, err)
	cl := asClause(1, ninetyDayClause)
	params := DefaultParams()

	for s := 0.0; s < 1.0; s += 0.05 {
		c := NewClassifier(params, store, fixedSemantic(s), nil, logging.NewNopLogger())
		label, score, rule, _ := c.runCascade(context.Background(), cl, tpl)

		if label == LabelAmbiguous {
			assert.GreaterOrEqual(t, score, params.SemanticAmbigLow, "sim=%.2f", s)
			assert.Less(t, score, params.SemanticThreshold, "sim=%.2f", s)
			assert.Equal(t, RuleSemanticAmbiguous, rule)
		}
		if s >= params.SemanticThreshold {
			assert.Equal(t, LabelStandard, label, "sim=%.2f", s)
			assert.Equal(t, RuleSemanticHigh, rule, "sim=%.2f", s)
		}
		if s < params.SemanticAmbigLow {
			assert.NotEqual(t, LabelAmbiguous, label, "sim=%.2f", s)
		}
	}
}

func TestCascade_StepTraceOrder(t *testing.T) {
	c, store := newTestClassifier(t, DefaultParams(), fixedSemantic(0.30), nil)
	tpl, err := store.Get(template.JurisdictionTN, template.AttrMedicaidTimelyFiling)
	require.NoError(t, err)

	_, _, _, steps := c.runCascade(context.Background(), asClause(1, ninetyDayClause), tpl)

	var names []string
	for _, s := range steps {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		StepExceptionCheck,
		StepExactNormMatch,
		StepPlaceholderSubst,
		StepFuzzyLexical,
		StepSemanticSimilarity,
		StepMethodology,
		StepDefault,
	}, names)
}

func TestCascade_DegradedSemanticEngine(t *testing.T) {
	c, store := newTestClassifier(t, DefaultParams(), failingSemantic(), nil)
	tpl, err := store.Get(template.JurisdictionTN, template.AttrMedicaidTimelyFiling)
	require.NoError(t, err)

	cl := asClause(1, ninetyDayClause)
	label, score, rule, steps := c.runCascade(context.Background(), cl, tpl)

	assert.Equal(t, LabelNonStandard, label)
	assert.Equal(t, RuleLowSimilarity, rule)

	// The semantic stage is recorded as skipped with no defaulted score, and
	// the final score falls back to the lexical ratio.
	var semStep *Step
	for i := range steps {
		if steps[i].Name == StepSemanticSimilarity {
			semStep = &steps[i]
		}
	}
	require.NotNil(t, semStep)
	assert.False(t, semStep.Passed)
	assert.Nil(t, semStep.Score)
	assert.InDelta(t, LexicalRatio(cl.NormText, tpl.NormText), score, 1e-9)
}

func TestCascade_NegativeCosineClampedToZero(t *testing.T) {
	// Encoders can return a negative cosine for dissimilar text; the default
	// rule reports it as the decision confidence, which must stay in [0, 1].
	c, store := newTestClassifier(t, DefaultParams(), fixedSemantic(-0.2), nil)
	tpl, err := store.Get(template.JurisdictionTN, template.AttrMedicaidTimelyFiling)
	require.NoError(t, err)

	label, score, rule, _ := c.runCascade(context.Background(), asClause(1, ninetyDayClause), tpl)
	assert.Equal(t, LabelNonStandard, label)
	assert.Equal(t, RuleLowSimilarity, rule)
	assert.InDelta(t, 0.0, score, 1e-9)
}

func TestCascade_NoSemanticEngineRecordsSkippedStep(t *testing.T) {
	// A classifier built without an embedding engine still traces the semantic
	// stage, the same way an unavailable engine does.
	c, store := newTestClassifier(t, DefaultParams(), nil, nil)
	tpl, err := store.Get(template.JurisdictionTN, template.AttrMedicaidTimelyFiling)
	require.NoError(t, err)

	cl := asClause(1, ninetyDayClause)
	label, score, rule, steps := c.runCascade(context.Background(), cl, tpl)
	assert.Equal(t, LabelNonStandard, label)
	assert.Equal(t, RuleLowSimilarity, rule)
	assert.InDelta(t, LexicalRatio(cl.NormText, tpl.NormText), score, 1e-9)

	var semStep *Step
	for i := range steps {
		if steps[i].Name == StepSemanticSimilarity {
			semStep = &steps[i]
		}
	}
	require.NotNil(t, semStep)
	assert.False(t, semStep.Passed)
	assert.Nil(t, semStep.Score)
	assert.Equal(t, "semantic engine not configured", semStep.Reason)
}

func TestCascade_EntailmentGate(t *testing.T) {
	params := DefaultParams()
	params.EnableEntailment = true

	store := template.NewStore(logging.NewNopLogger())
	tpl, err := store.Get(template.JurisdictionTN, template.AttrMedicaidTimelyFiling)
	require.NoError(t, err)
	cl := asClause(1, ninetyDayClause)

	t.Run("fires_above_threshold", func(t *testing.T) {
		c := NewClassifier(params, store, fixedSemantic(0.30), fixedEntailment(0.82), logging.NewNopLogger())
		label, score, rule, _ := c.runCascade(context.Background(), cl, tpl)
		assert.Equal(t, LabelStandard, label)
		assert.Equal(t, RuleEntailmentHigh, rule)
		assert.InDelta(t, 0.82, score, 1e-9)
	})

	t.Run("below_threshold_falls_through", func(t *testing.T) {
		c := NewClassifier(params, store, fixedSemantic(0.30), fixedEntailment(0.40), logging.NewNopLogger())
		label, _, rule, _ := c.runCascade(context.Background(), cl, tpl)
		assert.Equal(t, LabelNonStandard, label)
		assert.Equal(t, RuleLowSimilarity, rule)
	})

	t.Run("unavailable_engine_is_skipped_not_defaulted", func(t *testing.T) {
		failing := entailmentFunc(func(context.Context, string, string) (float64, error) {
			return 0, errors.New("cross-encoder unreachable")
		})
		c := NewClassifier(params, store, fixedSemantic(0.30), failing, logging.NewNopLogger())
		label, _, rule, steps := c.runCascade(context.Background(), cl, tpl)
		assert.Equal(t, LabelNonStandard, label)
		assert.Equal(t, RuleLowSimilarity, rule)

		var sawSkippedEntailment bool
		for _, s := range steps {
			if s.Name == StepEntailment && !s.Passed && s.Score == nil {
				sawSkippedEntailment = true
			}
		}
		assert.True(t, sawSkippedEntailment)
	})
}

func TestCascade_EntailmentFirstToggle(t *testing.T) {
	// A near-verbatim clause ("only" -> "solely") passes the lexical gate.
	// With EntailmentFirst the cross-encoder decides before lexical does.
	// PlaceholderThreshold is raised so the placeholder gate stays out of the
	// way of the comparison.
	store := template.NewStore(logging.NewNopLogger())
	tpl, err := store.Get(template.JurisdictionTN, template.AttrNoSteerageSOC)
	require.NoError(t, err)
	cl := asClause(1, "Provider shall be eligible to participate solely in those Networks designated on the Provider Networks Attachment")

	params := DefaultParams()
	params.EnableEntailment = true
	params.PlaceholderThreshold = 0.995

	t.Run("entailment_first", func(t *testing.T) {
		p := params
		p.EntailmentFirst = true
		c := NewClassifier(p, store, fixedSemantic(0.30), fixedEntailment(0.91), logging.NewNopLogger())
		label, score, rule, _ := c.runCascade(context.Background(), cl, tpl)
		assert.Equal(t, LabelStandard, label)
		assert.Equal(t, RuleEntailmentHigh, rule)
		assert.InDelta(t, 0.91, score, 1e-9)
	})

	t.Run("entailment_last", func(t *testing.T) {
		c := NewClassifier(params, store, fixedSemantic(0.30), fixedEntailment(0.91), logging.NewNopLogger())
		label, _, rule, _ := c.runCascade(context.Background(), cl, tpl)
		assert.Equal(t, LabelStandard, label)
		assert.Equal(t, RuleLexicalHigh, rule)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Best-template selection
// ─────────────────────────────────────────────────────────────────────────────

func TestBetter_PriorityOrdering(t *testing.T) {
	standard := Decision{Label: LabelStandard, Score: 0.6}
	ambiguous := Decision{Label: LabelAmbiguous, Score: 0.9}
	nonStandard := Decision{Label: LabelNonStandard, Score: 0.95}

	best := Decision{Score: -1}
	for _, d := range []Decision{nonStandard, ambiguous, standard} {
		if better(d, best) {
			best = d
		}
	}
	assert.Equal(t, LabelStandard, best.Label)
	assert.InDelta(t, 0.6, best.Score, 1e-9)

	// Within the same label, higher score wins.
	assert.True(t, better(
		Decision{Label: LabelStandard, Score: 0.9},
		Decision{Label: LabelStandard, Score: 0.6},
	))
}

// ─────────────────────────────────────────────────────────────────────────────
// Contract-level classification
// ─────────────────────────────────────────────────────────────────────────────

const classifiableClause = "Provider shall submit Medicaid Claims within one hundred twenty (120) days from the date services are rendered."

func TestClassify_SkipAccountingAndDeterminism(t *testing.T) {
	text := classifiableClause +
		"\n\nThe parties agree to maintain confidentiality of all records.\n\nN/A."
	clauses := clause.Segment(text, 5000)
	require.Len(t, clauses, 3)

	c, _ := newTestClassifier(t, DefaultParams(), fixedSemantic(0.72), nil)

	first, err := c.Classify(context.Background(), clauses, template.JurisdictionTN)
	require.NoError(t, err)
	second, err := c.Classify(context.Background(), clauses, template.JurisdictionTN)
	require.NoError(t, err)

	// Determinism: identical inputs, identical decisions including traces.
	assert.Equal(t, first, second)

	require.Len(t, first, 3)
	assert.Equal(t, LabelStandard, first[0].Label)
	assert.Equal(t, RuleSemanticHigh, first[0].Rule)
	assert.Equal(t, template.AttrMedicaidTimelyFiling, first[0].Attribute)
	assert.Equal(t, "TN_Medicaid_Timely_Filing", first[0].TemplateUsed)

	assert.Equal(t, LabelSkip, first[1].Label)
	assert.Equal(t, RuleNoTargetAttribute, first[1].Rule)
	assert.Equal(t, LabelSkip, first[2].Label)
	assert.Equal(t, RuleEmptyClause, first[2].Rule)

	// Skip accounting: classified counts sum to total minus skips.
	s := Summarize(first)
	assert.Equal(t, 3, s.TotalClauses)
	assert.Equal(t, 2, s.SkippedCount)
	assert.Equal(t, s.TotalClauses-s.SkippedCount,
		s.StandardCount+s.NonStandardCount+s.AmbiguousCount)
}

func TestClassify_UnsupportedJurisdictionFailsRun(t *testing.T) {
	c, _ := newTestClassifier(t, DefaultParams(), fixedSemantic(0.5), nil)
	clauses := []clause.Clause{asClause(1, classifiableClause)}

	_, err := c.Classify(context.Background(), clauses, template.Jurisdiction("CA"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeJurisdictionUnsupported))
}

func TestClassify_ContextCancellation(t *testing.T) {
	c, _ := newTestClassifier(t, DefaultParams(), fixedSemantic(0.5), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Classify(ctx, []clause.Clause{asClause(1, classifiableClause)}, template.JurisdictionTN)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassify_EveryDecisionHasRule(t *testing.T) {
	c, _ := newTestClassifier(t, DefaultParams(), fixedSemantic(0.55), nil)
	text := classifiableClause +
		"\n\nReimbursement shall follow the Medicaid fee schedule in effect on the date of service." +
		"\n\nGoverning law shall be the law of the state."
	decisions, err := c.Classify(context.Background(), clause.Segment(text, 5000), template.JurisdictionTN)
	require.NoError(t, err)
	require.NotEmpty(t, decisions)
	for _, d := range decisions {
		assert.NotEmpty(t, d.Rule, "clause %d", d.ClauseID)
		assert.NotEmpty(t, d.Label, "clause %d", d.ClauseID)
	}
}
