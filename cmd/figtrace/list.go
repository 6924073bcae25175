package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"figtrace/pkg/trace"
)

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the figures of a library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := opts.library()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d figures", lib.Len())))
			for i, f := range lib.Figures {
				fig, err := trace.LoadFigure(f.Records, opts.config())
				status := okStyle.Render(fmt.Sprintf("tolerance %.1f", fig.MatchTolerance()))
				if err != nil {
					status = errorStyle.Render(err.Error())
				}
				fmt.Fprintf(out, "%3d  %s %2d edges  %s\n", i, nameStyle.Render(f.Name), len(f.Records), status)
			}
			return nil
		},
	}
}
