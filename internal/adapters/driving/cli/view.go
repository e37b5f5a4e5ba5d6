package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/adapters/driven/textgrid"
	"github.com/custodia-labs/folio/internal/adapters/driven/watch"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/logger"
)

var viewWatch bool

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Open a document in the terminal viewer",
	Long: `Open a document in the interactive terminal viewer.

Pages are rendered as text cells. Controls:
  ↑/k, ↓/j     - Scroll
  PgUp/PgDn    - Scroll one screen
  g/G          - First / last page
  +/-/0/w      - Zoom in / out / 100% / fit width
  /            - Find
  n/N          - Next / previous match
  ?            - Toggle help
  q            - Quit

With --watch the document is reloaded when the file changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	viewCmd.Flags().BoolVarP(&viewWatch, "watch", "w", false, "reload when the file changes")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	if !isTerminal(cmd.OutOrStdout()) {
		return errors.New("view needs an interactive terminal")
	}

	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	path := args[0]
	inbox := tui.NewInbox()
	grids := textgrid.NewTarget(textgrid.CellWidth, textgrid.CellHeight)
	s, err := openSession(ctx, path, sessionOptions{target: grids, announcer: inbox})
	if err != nil {
		return err
	}
	defer s.close()

	sub := s.viewer.Bus().SubscribeAll(inbox.Publish)
	defer sub.Unsubscribe()

	go func() {
		if err := s.viewer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("rendering stopped: %v", err)
		}
	}()

	if viewWatch {
		if err := watchDocument(ctx, path, inbox); err != nil {
			return err
		}
	}

	ports := &tui.Ports{
		Viewer: s.viewer,
		Find:   s.viewer.Find(),
		Pages:  grids,
		Layout: s.layout,
		Reload: func(ctx context.Context) error {
			grids.Reset()
			return s.viewer.Load(ctx, path)
		},
	}
	app, err := tui.NewApp(ports, inbox, s.settings.Find.Options())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(ctx).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// watchDocument forwards file changes to the inbox until ctx is done.
func watchDocument(ctx context.Context, path string, inbox *tui.Inbox) error {
	w, err := watch.New(path, 0)
	if err != nil {
		return err
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	go func() {
		for c := range changes {
			if c.Removed {
				inbox.Send(messages.ErrorOccurred{Err: fmt.Errorf("%s was removed", c.Path)})
				continue
			}
			inbox.Send(messages.DocumentChanged{Path: c.Path})
		}
	}()
	return nil
}
