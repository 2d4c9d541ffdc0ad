package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/inkpad/internal/compositor"
	"github.com/platinummonkey/inkpad/internal/ink"
)

func newNewCmd(a *app) *cobra.Command {
	var (
		title         string
		width, height int
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a blank surface",
		Long: `Create a blank white surface and print its ID.

The size defaults to display-width x display-height from the configuration.

Example:
  inkpad new --title "standup notes" --width 1280 --height 720`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if width <= 0 {
				width = a.cfg.DisplayWidth
			}
			if height <= 0 {
				height = a.cfg.DisplayHeight
			}

			m, err := a.openStore()
			if err != nil {
				return err
			}

			s := ink.NewSurface(width, height)
			s.Title = title
			if err := m.Put(s); err != nil {
				return err
			}
			if err := m.Save(); err != nil {
				return err
			}

			a.log.WithSurfaceID(s.ID).WithFields("width", width, "height", height).Info("Surface created")
			fmt.Fprintln(cmd.OutOrStdout(), s.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "surface title")
	cmd.Flags().IntVar(&width, "width", 0, "surface width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "surface height in pixels")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List surfaces in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.openStore()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tID\tTITLE\tSIZE\tSTROKES\tUPDATED")
			for i, s := range m.List() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%dx%d\t%d\t%s\n",
					i+1, s.ID, s.Title, s.Width, s.Height, len(s.Paths), s.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <surface>",
		Short: "Print surface metadata as JSON",
		Long: `Print metadata for a surface.

A surface is referenced by its ID, its position in "inkpad list", or a
unique ID prefix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.openStore()
			if err != nil {
				return err
			}
			s, err := m.Resolve(args[0])
			if err != nil {
				return err
			}

			meta := compositor.ExportMetadata(s)
			if s.Summary != "" {
				meta["summary"] = s.Summary
			}
			data, err := json.MarshalIndent(meta, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode metadata: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <surface>",
		Short: "Delete a surface",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.openStore()
			if err != nil {
				return err
			}
			s, err := m.Resolve(args[0])
			if err != nil {
				return err
			}
			if err := m.Delete(s.ID); err != nil {
				return err
			}
			if err := m.Save(); err != nil {
				return err
			}
			a.log.WithSurfaceID(s.ID).Info("Surface deleted")
			return nil
		},
	}
}

func newMoveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Reorder surfaces",
	}

	for _, dir := range []string{"up", "down"} {
		cmd.AddCommand(&cobra.Command{
			Use:   dir + " <surface>",
			Short: "Move a surface one position " + dir,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := a.openStore()
				if err != nil {
					return err
				}
				s, err := m.Resolve(args[0])
				if err != nil {
					return err
				}
				if dir == "up" {
					err = m.MoveUp(s.ID)
				} else {
					err = m.MoveDown(s.ID)
				}
				if err != nil {
					return err
				}
				return m.Save()
			},
		})
	}
	return cmd
}
