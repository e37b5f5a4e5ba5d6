package cli

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change viewer, find and annotation settings.

Use subcommands to change a single key or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: `Change one setting and save it.

Keys:
  viewer.default_scale      number or page-width, page-fit, page-actual, auto
  viewer.page_gap           pixels between pages
  viewer.prerender_pages    pages rendered ahead of each end of the visible range
  viewer.scale_throttle_ms  minimum interval between background render passes
  find.case_sensitive       true or false
  find.entire_word          true or false
  find.highlight_all        true or false
  annotations.color         #RRGGBB or #RRGGBBAA
  annotations.opacity       0-1
  annotations.store         sqlite or memory
  data.dir                  annotation database directory`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the main settings step by step.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}
	settings, err := svc.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Viewer]")
	cmd.Printf("  Default scale: %s\n", settings.Viewer.DefaultScale)
	cmd.Printf("  Page gap: %g\n", settings.Viewer.PageGap)
	cmd.Printf("  Pre-render pages: %d\n", settings.Viewer.PreRenderPages)
	cmd.Printf("  Scale throttle: %dms\n", settings.Viewer.ScaleThrottleMS)
	cmd.Println()

	cmd.Println("[Find]")
	cmd.Printf("  Case sensitive: %t\n", settings.Find.CaseSensitive)
	cmd.Printf("  Entire word: %t\n", settings.Find.EntireWord)
	cmd.Printf("  Highlight all: %t\n", settings.Find.HighlightAll)
	cmd.Println()

	cmd.Println("[Annotations]")
	cmd.Printf("  Color: %s\n", settings.Annotations.Color)
	cmd.Printf("  Opacity: %g\n", settings.Annotations.Opacity)
	cmd.Printf("  Store: %s\n", settings.Annotations.Store)
	dataDir := settings.DataDir
	if dataDir == "" {
		dataDir = "(default)"
	}
	cmd.Printf("  Data dir: %s\n", dataDir)
	cmd.Println()

	cmd.Printf("Config file: %s\n", svc.Settings.ConfigPath())
	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}
	settings, err := svc.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := applySetting(settings, args[0], args[1]); err != nil {
		return err
	}
	if err := svc.Settings.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

// settingSetters maps config keys to their parsers.
var settingSetters = map[string]func(s *domain.Settings, v string) error{
	"viewer.default_scale": func(s *domain.Settings, v string) error {
		if _, _, err := domain.ParseScale(v); err != nil {
			return err
		}
		s.Viewer.DefaultScale = v
		return nil
	},
	"viewer.page_gap": func(s *domain.Settings, v string) error {
		return parseInto(&s.Viewer.PageGap, v, strconv.ParseFloat)
	},
	"viewer.prerender_pages": func(s *domain.Settings, v string) error {
		return parseInto(&s.Viewer.PreRenderPages, v, parseInt)
	},
	"viewer.scale_throttle_ms": func(s *domain.Settings, v string) error {
		return parseInto(&s.Viewer.ScaleThrottleMS, v, parseInt)
	},
	"find.case_sensitive": func(s *domain.Settings, v string) error {
		return parseInto(&s.Find.CaseSensitive, v, parseBool)
	},
	"find.entire_word": func(s *domain.Settings, v string) error {
		return parseInto(&s.Find.EntireWord, v, parseBool)
	},
	"find.highlight_all": func(s *domain.Settings, v string) error {
		return parseInto(&s.Find.HighlightAll, v, parseBool)
	},
	"annotations.color": func(s *domain.Settings, v string) error {
		c, err := domain.ParseColor(v)
		if err != nil {
			return err
		}
		s.Annotations.Color = domain.FormatColor(c)
		return nil
	},
	"annotations.opacity": func(s *domain.Settings, v string) error {
		return parseInto(&s.Annotations.Opacity, v, strconv.ParseFloat)
	},
	"annotations.store": func(s *domain.Settings, v string) error {
		kind := domain.AnnotationStoreKind(strings.ToLower(v))
		if !kind.IsValid() {
			return fmt.Errorf("%w: annotation store %q", domain.ErrInvalidInput, v)
		}
		s.Annotations.Store = kind
		return nil
	},
	"data.dir": func(s *domain.Settings, v string) error {
		s.DataDir = v
		return nil
	},
}

// applySetting sets one key on settings.
func applySetting(settings *domain.Settings, key, value string) error {
	set, ok := settingSetters[key]
	if !ok {
		keys := make([]string, 0, len(settingSetters))
		for k := range settingSetters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Errorf("%w: unknown key %q (known: %s)", domain.ErrInvalidInput, key, strings.Join(keys, ", "))
	}
	return set(settings, strings.TrimSpace(value))
}

func parseInto[T any](dst *T, v string, parse func(string, int) (T, error)) error {
	val, err := parse(v, 64)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", domain.ErrInvalidInput, v, err)
	}
	*dst = val
	return nil
}

func parseInt(v string, _ int) (int, error) {
	return strconv.Atoi(v)
}

func parseBool(v string, _ int) (bool, error) {
	return strconv.ParseBool(v)
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}
	settings, err := svc.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Folio Settings Wizard")
	cmd.Println("=====================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: default scale
	cmd.Println("Step 1: Default Scale")
	cmd.Println("---------------------")
	presets := []domain.ScalePreset{domain.ScaleAuto, domain.ScalePageWidth, domain.ScalePageFit, domain.ScalePageActual}
	for i, p := range presets {
		cmd.Printf("  %d. %s\n", i+1, p)
	}
	cmd.Print("\nEnter choice [1]: ")
	settings.Viewer.DefaultScale = string(presets[parseChoice(readLine(reader), len(presets), 1)-1])
	cmd.Printf("Default scale: %s\n\n", settings.Viewer.DefaultScale)

	// Step 2: annotation store
	cmd.Println("Step 2: Annotation Storage")
	cmd.Println("--------------------------")
	stores := []domain.AnnotationStoreKind{domain.AnnotationStoreSQLite, domain.AnnotationStoreMemory}
	cmd.Println("  1. sqlite (annotations are kept between runs)")
	cmd.Println("  2. memory (annotations last for one run)")
	cmd.Print("\nEnter choice [1]: ")
	settings.Annotations.Store = stores[parseChoice(readLine(reader), len(stores), 1)-1]
	cmd.Printf("Annotation store: %s\n\n", settings.Annotations.Store)

	// Step 3: annotation colour
	cmd.Println("Step 3: Annotation Color")
	cmd.Println("------------------------")
	cmd.Printf("Enter color [%s]: ", settings.Annotations.Color)
	if input := readLine(reader); input != "" {
		if err := applySetting(settings, "annotations.color", input); err != nil {
			cmd.Printf("Keeping %s: %v\n", settings.Annotations.Color, err)
		}
	}
	cmd.Println()

	if err := svc.Settings.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	cmd.Printf("Saved to %s\n", svc.Settings.ConfigPath())
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}
