package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"figtrace/internal/preview"
)

func newPreviewCmd(opts *options) *cobra.Command {
	var (
		index  int
		output string
		size   int
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render a figure to a PNG file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := opts.library()
			if err != nil {
				return err
			}
			fig, ok := lib.At(index)
			if !ok {
				return fmt.Errorf("no figure %d in library of %d", index, lib.Len())
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			po := preview.DefaultOptions()
			po.Size = size
			if err := preview.WritePNG(f, fig.Records, po); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, %dpx)\n", output, fig.Name, size)
			return nil
		},
	}
	cmd.Flags().IntVar(&index, "figure", 0, "index of the figure to render")
	cmd.Flags().StringVarP(&output, "output", "o", "figure.png", "output file")
	cmd.Flags().IntVar(&size, "size", 256, "image size in pixels")
	return cmd
}
