package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var (
	findCaseSensitive bool
	findEntireWord    bool
	findJSON          bool
)

var findCmd = &cobra.Command{
	Use:   "find [file] [query]",
	Short: "Find text in a document",
	Long: `Extracts the text of every page and lists the matches of the query
in page order. Whitespace in the query matches any whitespace, including
line breaks.`,
	Args: cobra.ExactArgs(2),
	RunE: runFind,
}

func init() {
	findCmd.Flags().BoolVar(&findCaseSensitive, "case-sensitive", false, "match case")
	findCmd.Flags().BoolVar(&findEntireWord, "entire-word", false, "match whole words only")
	findCmd.Flags().BoolVar(&findJSON, "json", false, "output matches as JSON")
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, args[0], sessionOptions{})
	if err != nil {
		return err
	}
	defer s.close()

	opts := s.settings.Find.Options()
	if cmd.Flags().Changed("case-sensitive") {
		opts.CaseSensitive = findCaseSensitive
	}
	if cmd.Flags().Changed("entire-word") {
		opts.EntireWord = findEntireWord
	}

	matches, err := s.viewer.Find().FindAll(ctx, args[1], opts)
	if err != nil {
		return fmt.Errorf("find failed: %w", err)
	}

	if findJSON {
		return outputFindJSON(cmd, matches)
	}
	return outputFindTable(cmd, s, matches)
}

func outputFindJSON(cmd *cobra.Command, matches []*domain.Match) error {
	if matches == nil {
		matches = []*domain.Match{}
	}
	data, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal matches: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputFindTable(cmd *cobra.Command, s *session, matches []*domain.Match) error {
	if len(matches) == 0 {
		cmd.Println("No matches found.")
		return nil
	}

	cmd.Printf("%d matches:\n", len(matches))
	cmd.Println()
	for i, m := range matches {
		cmd.Printf("  [%d] page %d: %s\n", i+1, m.Page, snippet(cmd.Context(), s, m))
	}
	return nil
}

// snippetContext is how many bytes around a match a snippet shows.
const snippetContext = 30

// snippet returns the match with surrounding page text on one line.
func snippet(ctx context.Context, s *session, m *domain.Match) string {
	content, err := s.viewer.Find().PageText(ctx, m.Page)
	if err != nil || content == nil {
		return m.Text
	}
	text := content.FullString
	start := max(m.Start-snippetContext, 0)
	end := min(m.End+snippetContext, len(text))
	for start > 0 && !isRuneStart(text[start]) {
		start--
	}
	for end < len(text) && !isRuneStart(text[end]) {
		end++
	}

	out := text[start:m.Start] + "[" + text[m.Start:m.End] + "]" + text[m.End:end]
	out = strings.Join(strings.Fields(out), " ")
	if start > 0 {
		out = "..." + out
	}
	if end < len(text) {
		out += "..."
	}
	return out
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
