package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/inkpad/internal/compositor"
	"github.com/platinummonkey/inkpad/internal/ink"
	"github.com/platinummonkey/inkpad/internal/input"
)

func newDrawCmd(a *app) *cobra.Command {
	var (
		scriptPath    string
		displayWidth  float64
		displayHeight float64
	)

	cmd := &cobra.Command{
		Use:   "draw <surface>",
		Short: "Replay recorded pointer events onto a surface",
		Long: `Replay a YAML script of pointer events onto a surface and save the result.

Events are in display coordinates. When --view-width/--view-height are
given they are mapped onto the surface the way a scaled canvas element would.

Script format:
  tool: {tool: pen, color: "#000000", width: 3}
  events:
    - {type: down, x: 10, y: 10}
    - {type: move, x: 60, y: 12}
    - {type: up}
    - {type: down, x: 20, y: 40, tool: {tool: highlighter, color: "#ffff00", width: 12}}
    - {type: move, x: 200, y: 44}
    - {type: up}

Example:
  inkpad draw 1 --script strokes.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(scriptPath)
			if err != nil {
				return fmt.Errorf("failed to open script: %w", err)
			}
			defer f.Close()

			script, err := input.LoadScript(f)
			if err != nil {
				return err
			}

			m, err := a.openStore()
			if err != nil {
				return err
			}
			surface, err := m.Resolve(args[0])
			if err != nil {
				return err
			}

			viewport := input.IdentityViewport(surface.Width, surface.Height)
			if displayWidth > 0 && displayHeight > 0 {
				viewport.DisplayWidth = displayWidth
				viewport.DisplayHeight = displayHeight
			}

			updates := 0
			session := input.NewSession(&input.Config{
				Surface: surface,
				Renderer: compositor.New(&compositor.Config{
					Width:   surface.Width,
					Height:  surface.Height,
					Options: a.compositorOptions(),
					Logger:  a.log,
				}),
				Viewport:     viewport,
				EraserRadius: a.cfg.EraserRadius,
				OnUpdate:     func(ink.Surface) { updates++ },
				Logger:       a.log,
			})

			replayErr := input.Replay(session, script)

			result := session.Surface()
			if updates > 0 {
				if err := m.Put(result); err != nil {
					return err
				}
				if err := m.Save(); err != nil {
					return err
				}
			}
			if replayErr != nil {
				return replayErr
			}

			a.log.WithSurfaceID(result.ID).WithFields(
				"events", len(script.Events),
				"updates", updates,
				"strokes", len(result.Paths),
			).Info("Script replayed")
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d strokes\n", result.ID, len(result.Paths))
			return nil
		},
	}

	cmd.Flags().StringVar(&scriptPath, "script", "", "YAML event script")
	cmd.Flags().Float64Var(&displayWidth, "view-width", 0, "displayed canvas width the events were recorded at")
	cmd.Flags().Float64Var(&displayHeight, "view-height", 0, "displayed canvas height the events were recorded at")
	_ = cmd.MarkFlagRequired("script")
	return cmd
}

func (a *app) compositorOptions() *compositor.Options {
	opts := compositor.DefaultOptions()
	opts.HighlighterAlpha = a.cfg.HighlighterAlpha
	return opts
}
