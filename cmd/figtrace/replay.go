package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"figtrace/internal/game"
	"figtrace/pkg/trace"
)

func newReplayCmd(opts *options) *cobra.Command {
	var index int
	cmd := &cobra.Command{
		Use:   "replay <trace.json>",
		Short: "Feed a recorded pointer trace through the recogniser",
		Long: `Replay reads a JSON array of pointer events, the same batches the browser
posts, in the form {"type": "start"|"move"|"end", "x": 0, "y": 0}, and reports
every committed line and whether the figure was traced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := opts.library()
			if err != nil {
				return err
			}
			fig, ok := lib.At(index)
			if !ok {
				return fmt.Errorf("no figure %d in library of %d", index, lib.Len())
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var events []game.PointerEvent
			if err := json.Unmarshal(raw, &events); err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			r := trace.NewRecognizer(opts.config())
			lines := 0
			r.OnLineDetected(func(angle float64) {
				lines++
				fmt.Fprintf(out, "line %d  %7.1f\n", lines, angle)
			})
			var traced []trace.Direction
			r.OnDrawSuccess(func(dir trace.Direction) { traced = append(traced, dir) })
			if err := r.Load(fig.Records); err != nil {
				return fmt.Errorf("figure %d %s: %w", index, fig.Name, err)
			}

			for _, e := range events {
				p := trace.Point{X: e.X, Y: e.Y}
				switch e.Type {
				case game.PointerStart:
					r.TouchStart(p)
				case game.PointerMove:
					r.PointerMove(p)
				case game.PointerEnd:
					r.TouchEnd()
				}
			}
			if len(traced) == 0 {
				reason := "incomplete"
				if r.Lost() {
					reason = "lost"
				}
				fmt.Fprintf(out, "%s %s not traced, %s (best run %d of %d edges)\n",
					errorStyle.Render("MISS"), fig.Name, reason, r.Progress(), len(fig.Records))
				return nil
			}
			for _, dir := range traced {
				fmt.Fprintf(out, "%s %s traced %s\n", okStyle.Render("MATCH"), fig.Name, dir)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&index, "figure", 0, "index of the figure to trace")
	return cmd
}
