package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Show document information",
	Long:  `Prints the page count, fingerprint, page sizes and annotation count of a document.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, args[0], sessionOptions{})
	if err != nil {
		return err
	}
	defer s.close()

	doc := s.viewer.Document()
	cmd.Printf("Document: %s\n", args[0])
	cmd.Printf("  Pages: %d\n", doc.PageCount())
	cmd.Printf("  Fingerprint: %s\n", doc.Fingerprint())

	annotations, err := s.annotations.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list annotations: %w", err)
	}
	cmd.Printf("  Annotations: %d\n", len(annotations))
	cmd.Println()

	for n := 1; n <= doc.PageCount(); n++ {
		page, err := doc.Page(ctx, n)
		if err != nil {
			cmd.Printf("  [%d] error: %v\n", n, err)
			continue
		}
		vp := page.UnitViewport()
		cmd.Printf("  [%d] %.0f x %.0f", n, vp.Width, vp.Height)
		if vp.Rotation != 0 {
			cmd.Printf(" (rotated %d)", vp.Rotation)
		}
		cmd.Println()
	}
	return nil
}
