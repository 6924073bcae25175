package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"figtrace/internal/figures"
	"figtrace/pkg/trace"
)

var errInvalidLibrary = errors.New("library contains invalid figures")

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check that every figure of a library can be played",
		Long: `Validate loads every figure, checks edge lengths and corner angles, and
prints the matching tolerance or the reason a figure is rejected. The exit
status is non-zero when any figure is invalid.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				lib *figures.Library
				err error
			)
			if len(args) == 1 {
				lib, err = figures.LoadFile(args[0])
			} else {
				lib, err = opts.library()
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			bad := 0
			for i, f := range lib.Figures {
				fig, err := trace.LoadFigure(f.Records, opts.config())
				if err != nil {
					bad++
					fmt.Fprintf(out, "%s %d %s: %v\n", errorStyle.Render("FAIL"), i, f.Name, err)
					continue
				}
				fmt.Fprintf(out, "%s %d %s %s\n", okStyle.Render("ok  "), i, f.Name,
					dimStyle.Render(fmt.Sprintf("corners %v, tolerance %.1f", roundAll(fig.Corners()), fig.MatchTolerance())))
			}
			if bad > 0 {
				return fmt.Errorf("%w: %d of %d", errInvalidLibrary, bad, lib.Len())
			}
			return nil
		},
	}
}

func roundAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(int(v*10+0.5)) / 10
	}
	return out
}
