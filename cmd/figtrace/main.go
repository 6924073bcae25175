package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"figtrace/internal/figures"
	"figtrace/pkg/trace"
)

type options struct {
	figuresPath string
	sensitivity float64
}

func (o *options) config() trace.Config {
	cfg := trace.DefaultConfig()
	if o.sensitivity > 0 {
		cfg.Sensitivity = o.sensitivity
	}
	return cfg
}

// library loads the file named by --figures, or the built-in library.
func (o *options) library() (*figures.Library, error) {
	if o.figuresPath == "" {
		return figures.Default(), nil
	}
	return figures.LoadFile(o.figuresPath)
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "figtrace",
		Short: "Inspect figure libraries and replay recorded traces",
		Long: `figtrace works with the figure libraries used by the tracing game.
It validates libraries, lists their figures, renders previews and replays
recorded pointer traces through the recogniser.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.figuresPath, "figures", os.Getenv("FIGURES_PATH"), "figure library XML (default: built-in library)")
	root.PersistentFlags().Float64Var(&opts.sensitivity, "sensitivity", 0, "tolerance divisor (default 2)")

	root.AddCommand(
		newListCmd(opts),
		newValidateCmd(opts),
		newReplayCmd(opts),
		newPreviewCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}
