package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/folio/internal/adapters/driven/raster"
	"github.com/custodia-labs/folio/internal/core/services"
)

var (
	renderPage        int
	renderScale       string
	renderOut         string
	renderAnnotations bool
	renderFind        string
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render a page to PNG",
	Long: `Renders one page at the given scale and writes it as a PNG image.

The scale is a number ("1.5", "150%") or a preset: page-width, page-fit,
page-actual or auto. Use --out - to write to stdout.

Examples:
  folio render report.pdf --page 3 --scale 2 --out page3.png
  folio render report.pdf --page 1 --annotations --find invoice --out -`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().IntVarP(&renderPage, "page", "p", 1, "page number")
	renderCmd.Flags().StringVarP(&renderScale, "scale", "s", "", "display scale (default from settings)")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "output PNG file, - for stdout")
	renderCmd.Flags().BoolVar(&renderAnnotations, "annotations", false, "draw stored annotations")
	renderCmd.Flags().StringVar(&renderFind, "find", "", "highlight matches of a query")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	if renderOut == "" {
		return errors.New("--out is required")
	}
	if renderOut == "-" && isTerminal(cmd.OutOrStdout()) {
		return errors.New("refusing to write PNG data to a terminal, use --out FILE")
	}

	ctx := cmd.Context()
	target := raster.NewTarget()
	s, err := openSession(ctx, args[0], sessionOptions{target: target})
	if err != nil {
		return err
	}
	defer s.close()

	if renderScale != "" {
		if err := s.viewer.SetScale(renderScale); err != nil {
			return fmt.Errorf("invalid scale: %w", err)
		}
	}
	if err := s.viewer.RenderPage(ctx, renderPage); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	surface, ok := target.Page(renderPage)
	if !ok {
		return fmt.Errorf("render failed: page %d produced no image", renderPage)
	}
	scale := s.viewer.Scale()

	if renderFind != "" {
		if _, err := s.viewer.Find().FindAll(ctx, renderFind, s.settings.Find.Options()); err != nil {
			return fmt.Errorf("find failed: %w", err)
		}
		services.PaintHighlights(surface, s.viewer.Find().PageHighlightRects(renderPage), scale)
	}
	if renderAnnotations {
		list, err := s.annotations.List(ctx, renderPage)
		if err != nil {
			return fmt.Errorf("failed to list annotations: %w", err)
		}
		services.PaintAnnotations(surface, list, scale, s.settings.Annotations.Color)
	}

	return writeOutput(cmd, renderOut, func(w io.Writer) error {
		return raster.EncodePNG(w, surface.Image())
	})
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writeOutput writes to the named file, or to the command's output for "-".
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
