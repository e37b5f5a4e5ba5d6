package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/folio/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// DatabaseFileName is the annotation database inside the data directory.
const DatabaseFileName = "annotations.db"

// Store is a SQLite-based storage for annotations.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.folio/data/annotations.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".folio", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFileName)

	// WAL lets the viewer read while an MCP or HTTP session writes
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// AnnotationStore returns an AnnotationStore interface backed by this store.
func (s *Store) AnnotationStore() driven.AnnotationStore {
	return &annotationStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_annotations.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("starting migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Annotation Store ====================

// annotationStore implements driven.AnnotationStore.
type annotationStore struct {
	store *Store
}

var _ driven.AnnotationStore = (*annotationStore)(nil)

const annotationColumns = `id, type, page, rect, quads, strokes, thickness, color, opacity, contents, created_at`

// Save stores or updates an annotation.
func (s *annotationStore) Save(ctx context.Context, doc string, a *domain.Annotation) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("%w: annotation without id", domain.ErrInvalidInput)
	}

	rectJSON, err := json.Marshal(a.Rect)
	if err != nil {
		return fmt.Errorf("marshalling rect: %w", err)
	}
	quadsJSON, err := marshalOptional(a.Quads)
	if err != nil {
		return fmt.Errorf("marshalling quads: %w", err)
	}
	strokesJSON, err := marshalOptional(a.Strokes)
	if err != nil {
		return fmt.Errorf("marshalling strokes: %w", err)
	}

	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO annotations (document, `+annotationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document, id) DO UPDATE SET
			type = excluded.type,
			page = excluded.page,
			rect = excluded.rect,
			quads = excluded.quads,
			strokes = excluded.strokes,
			thickness = excluded.thickness,
			color = excluded.color,
			opacity = excluded.opacity,
			contents = excluded.contents
	`, doc, a.ID, string(a.Type), a.Page, string(rectJSON), quadsJSON, strokesJSON,
		a.Thickness, a.Color, a.Opacity, a.Contents, createdAt.UTC())

	if err != nil {
		return fmt.Errorf("saving annotation: %w", err)
	}
	return nil
}

// Get retrieves an annotation by ID.
func (s *annotationStore) Get(ctx context.Context, doc, id string) (*domain.Annotation, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+annotationColumns+`
		FROM annotations WHERE document = ? AND id = ?
	`, doc, id)

	a, err := scanAnnotation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// List returns the annotations of one page, or of every page when page is 0.
func (s *annotationStore) List(ctx context.Context, doc string, page int) ([]domain.Annotation, error) {
	query := `SELECT ` + annotationColumns + ` FROM annotations WHERE document = ?`
	args := []any{doc}
	if page > 0 {
		query += ` AND page = ?`
		args = append(args, page)
	}
	query += ` ORDER BY page, created_at, id`

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying annotations: %w", err)
	}
	defer rows.Close()

	var annotations []domain.Annotation //nolint:prealloc // size unknown from query
	for rows.Next() {
		a, err := scanAnnotation(rows)
		if err != nil {
			return nil, err
		}
		annotations = append(annotations, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating annotations: %w", err)
	}

	return annotations, nil
}

// Delete removes an annotation.
func (s *annotationStore) Delete(ctx context.Context, doc, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM annotations WHERE document = ? AND id = ?", doc, id)
	if err != nil {
		return fmt.Errorf("deleting annotation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting annotation: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnnotation(row rowScanner) (*domain.Annotation, error) {
	var a domain.Annotation
	var typ, rectJSON string
	var quadsJSON, strokesJSON sql.NullString
	var createdAt sql.NullTime
	if err := row.Scan(&a.ID, &typ, &a.Page, &rectJSON, &quadsJSON, &strokesJSON,
		&a.Thickness, &a.Color, &a.Opacity, &a.Contents, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning annotation: %w", err)
	}

	a.Type = domain.AnnotationType(typ)
	if err := json.Unmarshal([]byte(rectJSON), &a.Rect); err != nil {
		return nil, fmt.Errorf("unmarshalling rect: %w", err)
	}
	if quadsJSON.Valid {
		if err := json.Unmarshal([]byte(quadsJSON.String), &a.Quads); err != nil {
			return nil, fmt.Errorf("unmarshalling quads: %w", err)
		}
	}
	if strokesJSON.Valid {
		if err := json.Unmarshal([]byte(strokesJSON.String), &a.Strokes); err != nil {
			return nil, fmt.Errorf("unmarshalling strokes: %w", err)
		}
	}
	if createdAt.Valid {
		a.CreatedAt = createdAt.Time
	}
	return &a, nil
}

// marshalOptional stores empty slices as NULL.
func marshalOptional[T any](v []T) (sql.NullString, error) {
	if len(v) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
