package pdf

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

var disableConfigDir sync.Once

// Loader opens PDF files from the local filesystem.
type Loader struct {
	conf *model.Configuration
}

// NewLoader creates a PDF loader with relaxed validation, which accepts
// the minor spec violations common in real-world files.
func NewLoader() *Loader {
	// pdfcpu otherwise creates a config directory under the user's home.
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Loader{conf: conf}
}

// Load reads, validates and indexes the file at source.
func (l *Loader) Load(ctx context.Context, source string) (driven.Document, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDocumentLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := l.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDocumentLoad, source, err)
	}
	logger.Debug("pdf: %s: %d pages, fingerprint %s", source, doc.PageCount(), doc.Fingerprint()[:12])
	return doc, nil
}

// LoadBytes opens an in-memory PDF.
func (l *Loader) LoadBytes(data []byte) (*Document, error) {
	pctx, err := api.ReadContext(bytes.NewReader(data), l.conf)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if err := api.ValidateContext(pctx); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	reader, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open content reader: %w", err)
	}
	if reader.NumPage() != pctx.PageCount {
		logger.Warn("pdf: page count mismatch: pdfcpu %d, content reader %d", pctx.PageCount, reader.NumPage())
	}

	sum := sha256.Sum256(data)
	return &Document{
		ctx:         pctx,
		reader:      reader,
		fingerprint: hex.EncodeToString(sum[:]),
		pages:       make(map[int]*Page),
	}, nil
}
