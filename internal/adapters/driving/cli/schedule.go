package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var (
	scheduleFirst     int
	scheduleLast      int
	scheduleDirection string
	scheduleScale     string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule [file]",
	Short: "Show the render order for a visible range",
	Long: `Renders pages the way the viewer does when pages first to last are on
screen and prints the order in which they were rendered. Visible pages come
first in scroll direction, then pages after and before the visible range up
to viewer.prerender_pages.`,
	Args: cobra.ExactArgs(1),
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().IntVar(&scheduleFirst, "first", 1, "first visible page")
	scheduleCmd.Flags().IntVar(&scheduleLast, "last", 1, "last visible page")
	scheduleCmd.Flags().StringVar(&scheduleDirection, "direction", "down", "scroll direction: up or down")
	scheduleCmd.Flags().StringVarP(&scheduleScale, "scale", "s", "", "display scale (default from settings)")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	direction, err := domain.ParseScrollDirection(scheduleDirection)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := openSession(ctx, args[0], sessionOptions{})
	if err != nil {
		return err
	}
	defer s.close()

	count := s.viewer.PageCount()
	if scheduleFirst < 1 || scheduleLast < scheduleFirst || scheduleLast > count {
		return fmt.Errorf("visible range %d-%d of %d pages: %w", scheduleFirst, scheduleLast, count, domain.ErrPageOutOfRange)
	}
	if scheduleScale != "" {
		if err := s.viewer.SetScale(scheduleScale); err != nil {
			return fmt.Errorf("invalid scale: %w", err)
		}
	}

	visible := domain.VisibleRange{First: scheduleFirst, Last: scheduleLast, Direction: direction}
	scheduler := s.viewer.Scheduler()
	failed := make(map[int]bool)
	var order []int
	for {
		n := scheduler.NextPage(visible, failed)
		if n == 0 {
			break
		}
		if err := scheduler.RenderPage(ctx, n); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			cmd.Printf("  page %d failed: %v\n", n, err)
			failed[n] = true
			continue
		}
		order = append(order, n)
	}

	cmd.Printf("Visible: %d-%d (%s) at scale %.2f\n", scheduleFirst, scheduleLast, direction, s.viewer.Scale())
	cmd.Printf("Render order: %s\n", joinInts(order))
	return nil
}

func joinInts(ns []int) string {
	if len(ns) == 0 {
		return "(none)"
	}
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
