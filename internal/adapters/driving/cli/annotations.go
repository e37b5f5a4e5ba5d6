package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// Export formats.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	annotationsPage   int
	annotationsJSON   bool
	annotationsFormat string
	annotationsOut    string
)

var annotationsCmd = &cobra.Command{
	Use:   "annotations",
	Short: "Manage stored annotations",
	Long:  `List, export, import and delete the annotations stored for a document.`,
}

var annotationsListCmd = &cobra.Command{
	Use:   "list [file]",
	Short: "List annotations",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotationsList,
}

var annotationsExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export annotations as JSON or YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotationsExport,
}

var annotationsImportCmd = &cobra.Command{
	Use:   "import [file] [annotations-file]",
	Short: "Import annotations from a JSON or YAML file",
	Long: `Imports annotations exported by folio or produced by another tool.
Files ending in .yaml or .yml are read as YAML, anything else as JSON.
Imported annotations keep their IDs; missing IDs are generated.`,
	Args: cobra.ExactArgs(2),
	RunE: runAnnotationsImport,
}

var annotationsDeleteCmd = &cobra.Command{
	Use:   "delete [file] [id]",
	Short: "Delete an annotation",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnnotationsDelete,
}

func init() {
	annotationsListCmd.Flags().IntVarP(&annotationsPage, "page", "p", 0, "only list this page")
	annotationsListCmd.Flags().BoolVar(&annotationsJSON, "json", false, "output as JSON")
	annotationsExportCmd.Flags().StringVarP(&annotationsFormat, "format", "f", formatJSON, "json or yaml")
	annotationsExportCmd.Flags().StringVarP(&annotationsOut, "out", "o", "-", "output file, - for stdout")

	annotationsCmd.AddCommand(annotationsListCmd)
	annotationsCmd.AddCommand(annotationsExportCmd)
	annotationsCmd.AddCommand(annotationsImportCmd)
	annotationsCmd.AddCommand(annotationsDeleteCmd)
	rootCmd.AddCommand(annotationsCmd)
}

func runAnnotationsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, args[0], sessionOptions{})
	if err != nil {
		return err
	}
	defer s.close()

	var list []domain.Annotation
	if annotationsPage > 0 {
		list, err = s.annotations.List(ctx, annotationsPage)
	} else {
		list, err = s.annotations.ListAll(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to list annotations: %w", err)
	}

	if annotationsJSON {
		data, err := encodeAnnotations(list, formatJSON)
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}

	if len(list) == 0 {
		cmd.Println("No annotations.")
		return nil
	}
	cmd.Println("Annotations:")
	cmd.Println()
	for i := range list {
		a := &list[i]
		cmd.Printf("  %s  page %-3d %-10s %s  (%.0f, %.0f, %.0f x %.0f)\n",
			a.ID, a.Page, a.Type, a.Color, a.Rect.X, a.Rect.Y, a.Rect.Width, a.Rect.Height)
	}
	return nil
}

func runAnnotationsExport(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(annotationsFormat)
	if format != formatJSON && format != formatYAML {
		return fmt.Errorf("%w: format %q, want json or yaml", domain.ErrInvalidInput, annotationsFormat)
	}

	ctx := cmd.Context()
	s, err := openSession(ctx, args[0], sessionOptions{})
	if err != nil {
		return err
	}
	defer s.close()

	var data []byte
	if format == formatJSON {
		data, err = s.annotations.Export(ctx)
	} else {
		var list []domain.Annotation
		if list, err = s.annotations.ListAll(ctx); err == nil {
			data, err = encodeAnnotations(list, formatYAML)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to export annotations: %w", err)
	}

	return writeOutput(cmd, annotationsOut, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func runAnnotationsImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[1], err)
	}

	ctx := cmd.Context()
	s, err := openSession(ctx, args[0], sessionOptions{})
	if err != nil {
		return err
	}
	defer s.close()

	var n int
	switch strings.ToLower(filepath.Ext(args[1])) {
	case ".yaml", ".yml":
		var list []domain.Annotation
		if err := yaml.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidInput, args[1], err)
		}
		n, err = s.annotations.ImportAnnotations(ctx, list)
	default:
		n, err = s.annotations.Import(ctx, data)
	}
	if err != nil {
		return fmt.Errorf("failed to import annotations: %w", err)
	}
	cmd.Printf("Imported %d annotations\n", n)
	return nil
}

func runAnnotationsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, args[0], sessionOptions{})
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.annotations.Delete(ctx, args[1]); err != nil {
		return fmt.Errorf("failed to delete annotation: %w", err)
	}
	cmd.Printf("Deleted annotation %s\n", args[1])
	return nil
}

// encodeAnnotations marshals annotations in the given format.
func encodeAnnotations(list []domain.Annotation, format string) ([]byte, error) {
	if list == nil {
		list = []domain.Annotation{}
	}
	var (
		data []byte
		err  error
	)
	if format == formatYAML {
		data, err = yaml.Marshal(list)
	} else {
		data, err = json.MarshalIndent(list, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal annotations: %w", err)
	}
	return data, nil
}
