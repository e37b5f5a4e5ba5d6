package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Start the MCP server for a document",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server opens one document and offers the find, page_text and
list_annotations tools plus the folio://document and
folio://pages/{page}/text resources.

By default, the server communicates over stdio using JSON-RPC. Use --port
to start an HTTP server instead.

Examples:
  # Stdio mode (default)
  folio mcp serve report.pdf

  # HTTP mode (for MCP Inspector, remote access)
  folio mcp serve report.pdf --port 8080`,
	Args: cobra.ExactArgs(1),
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, args []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	s, err := openSession(cmd.Context(), args[0], sessionOptions{})
	if err != nil {
		return err
	}
	defer s.close()

	server, err := newMCPServer(s)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

// newMCPServer exposes a session over MCP.
func newMCPServer(s *session) (*mcp.Server, error) {
	return mcp.NewServer(&mcp.Ports{
		Viewer:      s.viewer,
		Find:        s.viewer.Find(),
		Annotations: s.annotations,
	})
}
