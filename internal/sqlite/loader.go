// JSONL loading on attach.
package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
)

// loadTemplatesJSONL reads templates.jsonl from dataDir and inserts its
// records into a fresh database. Loading is transactional: all records load
// or the database stays empty. Malformed records, records missing required
// fields, and records repeating an ID or slug are skipped; unknown JSON
// fields are ignored.
func loadTemplatesJSONL(db *sql.DB, dataDir string) (int, error) {
	records, err := readJSONL(filepath.Join(dataDir, templatesJSONL))
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO templates (" + templateColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("preparing template insert: %w", err)
	}
	defer stmt.Close()

	loaded := 0
	for _, rec := range records {
		row, err := rowFromRecord(rec)
		if err != nil {
			continue
		}
		res, err := stmt.Exec(row.args()...)
		if err != nil {
			continue
		}
		if n, _ := res.RowsAffected(); n > 0 {
			loaded++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing load transaction: %w", err)
	}
	return loaded, nil
}
