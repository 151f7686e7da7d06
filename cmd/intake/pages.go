package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-intake/pkg/schema"
)

func newPagesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pages",
		Short: "List the form's pages in walk order",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openSession(cmd.Context(), "")
			if err != nil {
				return err
			}
			defer sess.Close()

			cfg := sess.engine.Config()
			if cfg == nil {
				return sess.engine.Err()
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tCODE\tTITLE\tQUESTIONS\tTYPE")
			for i, page := range cfg.Pages {
				kind := "form"
				if page.IsPayment() {
					kind = "payment"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", i+1, page.Code, page.Title, len(schema.Flatten(page.Questions)), kind)
			}
			return tw.Flush()
		},
	}
}
