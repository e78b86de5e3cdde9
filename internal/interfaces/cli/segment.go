package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ravi-ivar-7/hilabs/internal/domain/clause"
	"github.com/ravi-ivar-7/hilabs/pkg/errors"
)

func newSegmentCmd() *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Preview how a document splits into clauses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(filePath)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeDocumentUnavailable, "failed to read document").
					WithDetail(filePath)
			}

			clauses := clause.Segment(string(raw), cfg.Classifier.MaxClauseLength)
			out := cmd.OutOrStdout()
			for _, cl := range clauses {
				fmt.Fprintf(out, "[%d] %s\n", cl.ID, cl.Text)
			}
			fmt.Fprintf(out, "\n%d clauses\n", len(clauses))
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "path to the contract document (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
