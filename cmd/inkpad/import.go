package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/inkpad/internal/ink"
	"github.com/platinummonkey/inkpad/internal/slides"
)

func newImportCmd(a *app) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a PDF or image as background surfaces",
		Long: `Import slides as surfaces to draw on.

Every page of a PDF becomes one surface whose background is the rasterized
page (slide-dpi, slide-max-width). A PNG or JPEG becomes a single surface.

Examples:
  inkpad import lecture.pdf
  inkpad import whiteboard.jpg --title "whiteboard"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			importer := slides.NewImporter(&slides.Config{
				DPI:      a.cfg.SlideDPI,
				MaxWidth: a.cfg.SlideMaxWidth,
				Logger:   a.log,
			})

			var imported []ink.Surface
			switch strings.ToLower(filepath.Ext(path)) {
			case ".pdf":
				surfaces, err := importer.ImportPDF(path)
				if err != nil {
					return err
				}
				imported = surfaces
			default:
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", path, err)
				}
				s, err := importer.ImportImage(f)
				f.Close()
				if err != nil {
					return err
				}
				imported = []ink.Surface{s}
			}

			if title != "" {
				for i := range imported {
					imported[i].Title = pageTitle(title, i, len(imported))
				}
			} else if len(imported) == 1 && imported[0].Title == "" {
				imported[0].Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}

			m, err := a.openStore()
			if err != nil {
				return err
			}
			for _, s := range imported {
				if err := m.Put(s); err != nil {
					return err
				}
			}
			if err := m.Save(); err != nil {
				return err
			}

			a.log.WithFields("file", path, "surfaces", len(imported)).Info("Slides imported")
			for _, s := range imported {
				fmt.Fprintln(cmd.OutOrStdout(), s.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "title for imported surfaces (default is the file name)")
	return cmd
}

func pageTitle(base string, i, n int) string {
	if n == 1 {
		return base
	}
	return fmt.Sprintf("%s p.%d", base, i+1)
}
