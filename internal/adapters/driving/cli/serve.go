package cli

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/adapters/driving/httpapi"
)

var (
	serveAddr  string
	serveNoMCP bool
)

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve a document over HTTP",
	Long: `Opens a document and serves a JSON API for its text, matches and
annotations. The MCP streamable endpoint is mounted at /mcp.

Routes:
  GET    /api/v1/document
  GET    /api/v1/pages/{page}/text
  GET    /api/v1/find?q=&case=&word=
  GET    /api/v1/annotations[?page=]
  POST   /api/v1/annotations
  POST   /api/v1/annotations/import
  DELETE /api/v1/annotations/{id}

Examples:
  folio serve report.pdf
  folio serve report.pdf --addr 127.0.0.1:9000 --no-mcp`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "listen address")
	serveCmd.Flags().BoolVar(&serveNoMCP, "no-mcp", false, "do not mount the MCP endpoint")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, args[0], sessionOptions{})
	if err != nil {
		return err
	}
	defer s.close()

	extra := map[string]http.Handler{}
	if !serveNoMCP {
		mcpServer, err := newMCPServer(s)
		if err != nil {
			return err
		}
		extra["/mcp"] = mcpServer.Handler()
	}

	server, err := httpapi.NewServer(httpapi.Ports{
		Viewer:      s.viewer,
		Find:        s.viewer.Find(),
		Annotations: s.annotations,
	}, extra)
	if err != nil {
		return err
	}

	cmd.Printf("Serving %s on http://%s\n", args[0], serveAddr)
	return server.Run(ctx, serveAddr)
}
