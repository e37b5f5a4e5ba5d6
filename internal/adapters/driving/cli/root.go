package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/logger"
)

// version is set at build time.
var version = "dev"

var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Incremental document viewer",
	Long: `folio opens PDF documents and renders, searches and annotates them.

Pages are rendered lazily around the visible area, text is extracted in the
background for find, and annotations are stored per document.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "configuration directory (default ~/.folio)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

// errNotConfigured is returned when main has not provided services.
var errNotConfigured = errors.New("services not configured")
