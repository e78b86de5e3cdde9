package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ravi-ivar-7/hilabs/internal/domain/classification"
	"github.com/ravi-ivar-7/hilabs/internal/domain/clause"
	"github.com/ravi-ivar-7/hilabs/internal/domain/template"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/internal/intelligence/models"
	"github.com/ravi-ivar-7/hilabs/internal/intelligence/serving"
	"github.com/ravi-ivar-7/hilabs/pkg/errors"
)

func newClassifyCmd() *cobra.Command {
	var (
		filePath     string
		jurisdiction string
		withModels   bool
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a contract document against jurisdiction templates",
		Long: "Segments the document into clauses and runs the classification cascade.\n" +
			"Without --with-models only the lexical and placeholder signals are used;\n" +
			"with --with-models the configured encoder (and entailment) servers score\n" +
			"the semantic stages too.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			j, ok := template.ParseJurisdiction(jurisdiction)
			if !ok {
				return errors.Newf(errors.ErrCodeJurisdictionUnsupported,
					"jurisdiction %q is not supported", jurisdiction)
			}

			raw, err := os.ReadFile(filePath)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeDocumentUnavailable, "failed to read document").
					WithDetail(filePath)
			}

			log := logging.NewNopLogger()
			store := template.NewStore(log)

			var semantic classification.SemanticScorer
			var entailment classification.EntailmentScorer
			if withModels {
				encoder, err := serving.NewEncoderClient(serving.Options{
					BaseURL: cfg.Models.EncoderURL,
					Model:   cfg.Models.EncoderModel,
					Timeout: cfg.Models.RequestTimeout,
				}, log)
				if err != nil {
					return err
				}
				semantic = models.NewSemanticModel(encoder, nil, log)

				if cfg.Classifier.EnableEntailment {
					entail, err := serving.NewEntailmentClient(serving.Options{
						BaseURL: cfg.Models.EntailmentURL,
						Model:   cfg.Models.EntailmentModel,
						Timeout: cfg.Models.RequestTimeout,
					}, log)
					if err != nil {
						return err
					}
					entailment = models.NewEntailmentModel(entail, log)
				}
			}

			classifier := classification.NewClassifier(cfg.Classifier.Params(), store, semantic, entailment, log)

			clauses := clause.Segment(string(raw), cfg.Classifier.MaxClauseLength)
			decisions, err := classifier.Classify(cmd.Context(), clauses, j)
			if err != nil {
				return err
			}
			summary := classification.Summarize(decisions)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"decisions": decisions,
					"summary":   summary,
				})
			}
			printDecisions(cmd, decisions, summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "path to the contract document (required)")
	cmd.Flags().StringVarP(&jurisdiction, "jurisdiction", "j", "", "jurisdiction code: TN or WA (required)")
	cmd.Flags().BoolVar(&withModels, "with-models", false, "score semantic stages via the configured model servers")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of a table")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("jurisdiction")
	return cmd
}

func printDecisions(cmd *cobra.Command, decisions []classification.Decision, summary classification.Summary) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CLAUSE\tATTRIBUTE\tLABEL\tSCORE\tRULE\tTEMPLATE")
	for _, d := range decisions {
		attr := string(d.Attribute)
		if attr == "" {
			attr = "-"
		}
		tpl := d.TemplateUsed
		if tpl == "" {
			tpl = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.3f\t%s\t%s\n", d.ClauseID, attr, d.Label, d.Score, d.Rule, tpl)
	}
	w.Flush()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nClauses: %d  Classified: %d  Standard: %d  Non-Standard: %d  Ambiguous: %d  Skipped: %d\n",
		summary.TotalClauses, summary.ClassifiedClauses, summary.StandardCount,
		summary.NonStandardCount, summary.AmbiguousCount, summary.SkippedCount)
	fmt.Fprintf(out, "Compliance: %.1f%%  Average confidence: %.3f\n",
		summary.CompliancePercentage, summary.AverageConfidence)
	if len(summary.HighRiskAttributes) > 0 {
		fmt.Fprintf(out, "High-risk attributes: %v\n", summary.HighRiskAttributes)
	}
}
