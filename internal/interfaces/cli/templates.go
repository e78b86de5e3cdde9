package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ravi-ivar-7/hilabs/internal/domain/template"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/pkg/errors"
)

func newTemplatesCmd() *cobra.Command {
	var jurisdiction string
	var full bool

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the jurisdiction template clauses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter template.Jurisdiction
			if jurisdiction != "" {
				j, ok := template.ParseJurisdiction(jurisdiction)
				if !ok {
					return errors.Newf(errors.ErrCodeJurisdictionUnsupported,
						"jurisdiction %q is not supported", jurisdiction)
				}
				filter = j
			}

			store := template.NewStore(logging.NewNopLogger())
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tJURISDICTION\tATTRIBUTE\tEXCEPTION LANGUAGE")
			for _, tpl := range store.All() {
				if filter != "" && tpl.Jurisdiction != filter {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\n",
					tpl.Name, tpl.Jurisdiction, tpl.Attribute, tpl.HasExceptionTokens)
			}
			w.Flush()

			if full {
				out := cmd.OutOrStdout()
				for _, tpl := range store.All() {
					if filter != "" && tpl.Jurisdiction != filter {
						continue
					}
					fmt.Fprintf(out, "\n%s:\n  %s\n", tpl.Name, tpl.RawText)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&jurisdiction, "jurisdiction", "j", "", "filter by jurisdiction code")
	cmd.Flags().BoolVar(&full, "full", false, "print full template text")
	return cmd
}
