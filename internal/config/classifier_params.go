package config

import "github.com/ravi-ivar-7/hilabs/internal/domain/classification"

// Params converts the classifier section into cascade parameters.
func (c ClassifierConfig) Params() classification.Params {
	return classification.Params{
		FuzzyThreshold:       c.FuzzyThreshold,
		PlaceholderThreshold: c.PlaceholderThreshold,
		SemanticThreshold:    c.SemanticThreshold,
		SemanticAmbigLow:     c.SemanticAmbigLow,
		EntailmentThreshold:  c.EntailmentThreshold,
		EnableEntailment:     c.EnableEntailment,
		EntailmentFirst:      c.EntailmentFirst,
		MinClauseLength:      c.MinClauseLength,
	}
}
