package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var (
	annotatePage      int
	annotateScale     float64
	annotateColor     string
	annotateType      string
	annotateRects     []string
	annotateStrokes   []string
	annotateThickness float64
)

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Create annotations",
	Long: `Create annotations on a document.

Coordinates are pixels relative to the page's top-left corner with the page
displayed at --scale. At the default scale of 1 they are document units.`,
}

var annotateHighlightCmd = &cobra.Command{
	Use:   "highlight [file]",
	Short: "Create a text markup annotation from selection rectangles",
	Long: `Creates a highlight, underline, strikeout or squiggly annotation.
Rectangles on the same line are merged before they become quads.

Example:
  folio annotate highlight report.pdf --page 2 --rect 72,100,120,12 --rect 72,114,80,12`,
	Args: cobra.ExactArgs(1),
	RunE: runAnnotateHighlight,
}

var annotateInkCmd = &cobra.Command{
	Use:   "ink [file]",
	Short: "Create an ink annotation from strokes",
	Long: `Creates an ink annotation. Each --stroke is a list of x,y points
separated by semicolons.

Example:
  folio annotate ink report.pdf --page 1 --stroke "10,10;50,40;90,10" --thickness 2`,
	Args: cobra.ExactArgs(1),
	RunE: runAnnotateInk,
}

var annotateFreehandCmd = &cobra.Command{
	Use:   "freehand [file]",
	Short: "Create a highlight from a freehand path",
	Long: `Creates a highlight annotation whose quads follow one pointer path,
each segment widened to --thickness.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnnotateFreehand,
}

func init() {
	for _, c := range []*cobra.Command{annotateHighlightCmd, annotateInkCmd, annotateFreehandCmd} {
		c.Flags().IntVarP(&annotatePage, "page", "p", 1, "page number")
		c.Flags().Float64Var(&annotateScale, "scale", 1, "display scale the coordinates were taken at")
		c.Flags().StringVar(&annotateColor, "color", "", "colour as #RRGGBB or #RRGGBBAA (default from settings)")
		annotateCmd.AddCommand(c)
	}
	annotateHighlightCmd.Flags().StringVar(&annotateType, "type", string(domain.AnnotationHighlight),
		"highlight, underline, strikeout or squiggly")
	annotateHighlightCmd.Flags().StringArrayVar(&annotateRects, "rect", nil, "selection rectangle x,y,w,h (repeatable)")
	annotateInkCmd.Flags().StringArrayVar(&annotateStrokes, "stroke", nil, "stroke points x,y;x,y;... (repeatable)")
	annotateFreehandCmd.Flags().StringArrayVar(&annotateStrokes, "path", nil, "path points x,y;x,y;...")
	for _, c := range []*cobra.Command{annotateInkCmd, annotateFreehandCmd} {
		c.Flags().Float64Var(&annotateThickness, "thickness", 1, "line width in pixels")
	}
	rootCmd.AddCommand(annotateCmd)
}

func runAnnotateHighlight(cmd *cobra.Command, args []string) error {
	typ := domain.AnnotationType(annotateType)
	if !typ.UsesQuads() {
		return fmt.Errorf("%w: annotation type %q", domain.ErrInvalidInput, annotateType)
	}
	if len(annotateRects) == 0 {
		return fmt.Errorf("%w: at least one --rect is required", domain.ErrInvalidInput)
	}
	rects := make([]domain.Rect, len(annotateRects))
	for i, r := range annotateRects {
		rect, err := parseRect(r)
		if err != nil {
			return err
		}
		rects[i] = rect
	}

	ctx := cmd.Context()
	s, origin, err := openAnnotateSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.close()

	for i := range rects {
		rects[i].X += origin.X
		rects[i].Y += origin.Y
	}
	a, err := s.annotations.CreateFromSelection(ctx, annotatePage, typ, rects, annotateColor)
	if err != nil {
		return fmt.Errorf("failed to create annotation: %w", err)
	}
	printCreated(cmd, a)
	return nil
}

func runAnnotateInk(cmd *cobra.Command, args []string) error {
	strokes, err := parseStrokes(annotateStrokes)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, origin, err := openAnnotateSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.close()

	for i := range strokes {
		for j := range strokes[i].Points {
			strokes[i].Points[j] = strokes[i].Points[j].Add(origin)
		}
	}
	a, err := s.annotations.CreateInk(ctx, annotatePage, strokes, annotateThickness, annotateColor)
	if err != nil {
		return fmt.Errorf("failed to create annotation: %w", err)
	}
	printCreated(cmd, a)
	return nil
}

func runAnnotateFreehand(cmd *cobra.Command, args []string) error {
	strokes, err := parseStrokes(annotateStrokes)
	if err != nil {
		return err
	}
	if len(strokes) != 1 {
		return fmt.Errorf("%w: exactly one --path is required", domain.ErrInvalidInput)
	}

	ctx := cmd.Context()
	s, origin, err := openAnnotateSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.close()

	points := strokes[0].Points
	for i := range points {
		points[i] = points[i].Add(origin)
	}
	a, err := s.annotations.CreateFreehandHighlight(ctx, annotatePage, points, annotateThickness, annotateColor)
	if err != nil {
		return fmt.Errorf("failed to create annotation: %w", err)
	}
	printCreated(cmd, a)
	return nil
}

// openAnnotateSession opens the document at --scale with --page scrolled
// into view, and returns the page's on-screen origin.
func openAnnotateSession(cmd *cobra.Command, path string) (*session, domain.Point, error) {
	s, err := openSession(cmd.Context(), path, sessionOptions{})
	if err != nil {
		return nil, domain.Point{}, err
	}
	if annotateScale <= 0 {
		s.close()
		return nil, domain.Point{}, fmt.Errorf("%w: scale %v", domain.ErrInvalidScale, annotateScale)
	}
	s.viewer.SetScaleValue(annotateScale)
	if err := s.viewer.GoToPage(annotatePage); err != nil {
		s.close()
		return nil, domain.Point{}, err
	}
	bounds, ok := s.layout.ContainerBounds(annotatePage)
	if !ok {
		s.close()
		return nil, domain.Point{}, fmt.Errorf("page %d: %w", annotatePage, domain.ErrPageOutOfRange)
	}
	return s, bounds.Origin(), nil
}

func printCreated(cmd *cobra.Command, a *domain.Annotation) {
	cmd.Printf("Created %s annotation %s on page %d\n", a.Type, a.ID, a.Page)
	cmd.Printf("  Rect: %.2f, %.2f, %.2f, %.2f\n", a.Rect.X, a.Rect.Y, a.Rect.Width, a.Rect.Height)
}

// parseRect parses "x,y,w,h".
func parseRect(s string) (domain.Rect, error) {
	v, err := parseFloats(s, ",")
	if err != nil || len(v) != 4 {
		return domain.Rect{}, fmt.Errorf("%w: rectangle %q, want x,y,w,h", domain.ErrInvalidInput, s)
	}
	return domain.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

// parseStrokes parses strokes written as "x,y;x,y;...".
func parseStrokes(specs []string) ([]domain.Stroke, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: at least one stroke is required", domain.ErrInvalidInput)
	}
	strokes := make([]domain.Stroke, 0, len(specs))
	for _, spec := range specs {
		var stroke domain.Stroke
		for _, p := range strings.Split(spec, ";") {
			if strings.TrimSpace(p) == "" {
				continue
			}
			v, err := parseFloats(p, ",")
			if err != nil || len(v) != 2 {
				return nil, fmt.Errorf("%w: point %q, want x,y", domain.ErrInvalidInput, p)
			}
			stroke.Points = append(stroke.Points, domain.Point{X: v[0], Y: v[1]})
		}
		if len(stroke.Points) == 0 {
			return nil, fmt.Errorf("%w: empty stroke %q", domain.ErrInvalidInput, spec)
		}
		strokes = append(strokes, stroke)
	}
	return strokes, nil
}

func parseFloats(s, sep string) ([]float64, error) {
	parts := strings.Split(s, sep)
	out := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}
