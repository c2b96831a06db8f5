// Preset seeding on first attach.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/invitekit/pkg/types"
)

// seedPresets stores presets when the templates table is empty. It reports
// whether anything was inserted. Presets failing validation or repeating a
// slug are skipped.
func seedPresets(db *sql.DB, presets []*types.Template) (bool, error) {
	if len(presets) == 0 {
		return false, nil
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM templates").Scan(&count); err != nil {
		return false, fmt.Errorf("counting templates: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return false, fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	seeded := false
	for _, p := range presets {
		if p == nil || p.Validate() != nil {
			continue
		}
		id, err := uuid.NewV7()
		if err != nil {
			return false, fmt.Errorf("generating template UUID: %w", err)
		}
		t := *p
		t.TemplateID = id.String()
		t.CreatedAt = now
		t.UpdatedAt = now

		row, err := rowFromTemplate(&t)
		if err != nil {
			return false, fmt.Errorf("seeding %s: %w", p.Slug, err)
		}
		res, err := tx.Exec("INSERT OR IGNORE INTO templates ("+templateColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)", row.args()...)
		if err != nil {
			return false, fmt.Errorf("seeding %s: %w", p.Slug, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			seeded = true
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing seed transaction: %w", err)
	}
	return seeded, nil
}
