package classification

import (
	"math"

	"github.com/ravi-ivar-7/hilabs/internal/domain/template"
)

// Summary aggregates the decisions of one classification run.  Skip decisions
// are counted but excluded from every rate denominator.
type Summary struct {
	TotalClauses      int `json:"total_clauses"`
	ClassifiedClauses int `json:"classified_clauses"`
	StandardCount     int `json:"standard_count"`
	NonStandardCount  int `json:"non_standard_count"`
	AmbiguousCount    int `json:"ambiguous_count"`
	SkippedCount      int `json:"skipped_count"`

	// CompliancePercentage is the share of classified clauses labelled
	// Standard, rounded to one decimal.
	CompliancePercentage float64 `json:"compliance_percentage"`

	// AverageConfidence is the mean score across classified clauses, rounded
	// to three decimals.
	AverageConfidence float64 `json:"average_confidence"`

	// HighRiskAttributes lists attributes with a confident Non-Standard
	// finding (score above highRiskScore), deduplicated, in stable order.
	HighRiskAttributes []template.Attribute `json:"high_risk_attributes"`

	// RuleBreakdown counts decisions per terminating rule.
	RuleBreakdown map[string]int `json:"rule_breakdown"`
}

// highRiskScore is the confidence above which a Non-Standard finding is
// flagged for priority review.
const highRiskScore = 0.75

// Summarize folds a decision list into a Summary.
func Summarize(decisions []Decision) Summary {
	s := Summary{
		TotalClauses:  len(decisions),
		RuleBreakdown: make(map[string]int, 8),
	}

	highRisk := make(map[template.Attribute]bool)
	var scoreSum float64

	for _, d := range decisions {
		s.RuleBreakdown[d.Rule]++

		switch d.Label {
		case LabelStandard:
			s.StandardCount++
		case LabelNonStandard:
			s.NonStandardCount++
			if d.Score > highRiskScore && d.Attribute != "" {
				highRisk[d.Attribute] = true
			}
		case LabelAmbiguous:
			s.AmbiguousCount++
		case LabelSkip:
			s.SkippedCount++
			continue
		}
		s.ClassifiedClauses++
		scoreSum += d.Score
	}

	if s.ClassifiedClauses > 0 {
		s.CompliancePercentage = round1(float64(s.StandardCount) / float64(s.ClassifiedClauses) * 100)
		s.AverageConfidence = round3(scoreSum / float64(s.ClassifiedClauses))
	}

	for _, attr := range template.TargetAttributes() {
		if highRisk[attr] {
			s.HighRiskAttributes = append(s.HighRiskAttributes, attr)
		}
	}
	return s
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
