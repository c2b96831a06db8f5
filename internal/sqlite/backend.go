package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/invitekit/pkg/types"
)

// dbFileName is the query database, rebuilt from JSONL on every attach.
const dbFileName = "invitekit.db"

// Compile-time interface check.
var _ types.Store = (*Backend)(nil)

// Backend implements types.Store using SQLite as the query engine and
// templates.jsonl as the source of truth.
type Backend struct {
	mu        sync.RWMutex
	attached  bool
	config    types.Config
	db        *sql.DB
	templates *templatesTable
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach validates config, creates DataDir if needed, recreates the query
// database, loads templates.jsonl into it, and seeds config.Presets when no
// template was loaded.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	if config.DataDir == "" {
		config.DataDir = "."
	}
	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(config.DataDir, dbFileName)
	// The database is a cache of the JSONL file; start from a fresh schema.
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	jsonlPath := filepath.Join(config.DataDir, templatesJSONL)
	if err := ensureJSONL(jsonlPath); err != nil {
		db.Close()
		return fmt.Errorf("initializing %s: %w", templatesJSONL, err)
	}
	if _, err := loadTemplatesJSONL(db, config.DataDir); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.templates = &templatesTable{backend: b}
	if err := b.seedLocked(); err != nil {
		db.Close()
		b.db, b.templates = nil, nil
		return err
	}

	b.attached = true
	return nil
}

// seedLocked stores the configured presets on an empty store and persists
// them. The caller must hold the write lock.
func (b *Backend) seedLocked() error {
	seeded, err := seedPresets(b.db, b.config.Presets)
	if err != nil || !seeded {
		return err
	}
	if err := b.templates.persistLocked(); err != nil {
		return fmt.Errorf("persisting seeded templates: %w", err)
	}
	return nil
}

// Detach closes the SQLite connection. After Detach, Templates returns
// ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	b.templates = nil
	if b.db != nil {
		err := b.db.Close()
		b.db = nil
		return err
	}
	return nil
}

// Templates returns the templates table.
// Returns ErrStoreDetached if the backend is not attached.
func (b *Backend) Templates() (types.TemplateTable, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return b.templates, nil
}

// DataDir returns the directory the backend is attached to, or "".
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return ""
	}
	return b.config.DataDir
}
