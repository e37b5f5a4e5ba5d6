// Command folio opens, renders, searches and annotates PDF documents.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/folio/internal/adapters/driven/config/file"
	"github.com/custodia-labs/folio/internal/adapters/driven/pdf"
	"github.com/custodia-labs/folio/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/folio/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/folio/internal/adapters/driven/textnorm"
	"github.com/custodia-labs/folio/internal/adapters/driving/cli"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetServicesFactory(newServices)

	err := cli.Execute()
	if closeErr := cli.Shutdown(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newServices wires the file config, the annotation store chosen in the
// settings and the PDF loader.
func newServices(configDir string) (*cli.Services, error) {
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	svc := &cli.Services{
		Settings:  settingsService,
		Loader:    pdf.NewLoader(),
		Normalize: textnorm.Normalize,
	}

	switch settings.Annotations.Store {
	case domain.AnnotationStoreMemory:
		svc.Annotations = memory.NewAnnotationStore()
	default:
		dataDir := settings.DataDir
		if dataDir == "" {
			dataDir = filepath.Join(configDir, "data")
		}
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("open annotation store: %w", err)
		}
		svc.Annotations = store.AnnotationStore()
		svc.Close = store.Close
	}
	return svc, nil
}
