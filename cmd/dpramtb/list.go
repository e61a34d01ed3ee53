package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/sarchlab/dpramtb/regression"
	"github.com/spf13/cobra"
)

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered tests.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, t := range regression.NewTests(cfg.Options()) {
				fmt.Fprintf(w, "%s\t%s\n", t.Name, t.Doc)
			}

			return w.Flush()
		},
	}
}
