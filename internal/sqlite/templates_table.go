// Templates table accessor.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/invitekit/pkg/types"
)

// Compile-time interface check.
var _ types.TemplateTable = (*templatesTable)(nil)

// templatesTable hydrates and dehydrates between templates rows and
// *types.Template and re-persists templates.jsonl after every write. Reads
// hold the backend read lock; writes hold the write lock.
type templatesTable struct {
	backend *Backend
}

// Get retrieves a template by ID.
func (tt *templatesTable) Get(id string) (*types.Template, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	return tt.getOne("template_id = ?", id)
}

// GetBySlug retrieves a template by slug.
func (tt *templatesTable) GetBySlug(slug string) (*types.Template, error) {
	if slug == "" {
		return nil, types.ErrInvalidSlug
	}
	return tt.getOne("slug = ?", slug)
}

func (tt *templatesTable) getOne(where string, arg any) (*types.Template, error) {
	b := tt.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	row, err := scanTemplateRow(b.db.QueryRow("SELECT "+templateColumns+" FROM templates WHERE "+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting template: %w", err)
	}
	return row.template()
}

// Set stores t. With an empty id a UUID v7 is generated and the template is
// created; otherwise the template with that id is created or replaced,
// keeping its original creation time. Slugs must be unique. On success
// t.TemplateID, t.CreatedAt and t.UpdatedAt reflect the stored values.
func (tt *templatesTable) Set(id string, t *types.Template) (string, error) {
	if t == nil {
		return "", types.ErrInvalidData
	}
	if err := t.Validate(); err != nil {
		return "", err
	}

	b := tt.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return "", types.ErrStoreDetached
	}

	now := time.Now().UTC()
	created := now
	if id == "" {
		newID, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("generating UUID v7: %w", err)
		}
		id = newID.String()
	} else {
		var createdAt string
		err := b.db.QueryRow("SELECT created_at FROM templates WHERE template_id = ?", id).Scan(&createdAt)
		switch {
		case err == nil:
			if created, err = parseTime(createdAt); err != nil {
				return "", fmt.Errorf("parsing created_at of %s: %w", id, err)
			}
		case !errors.Is(err, sql.ErrNoRows):
			return "", fmt.Errorf("checking template existence: %w", err)
		}
	}

	var owner string
	err := b.db.QueryRow("SELECT template_id FROM templates WHERE slug = ?", t.Slug).Scan(&owner)
	switch {
	case err == nil && owner != id:
		return "", fmt.Errorf("%w: %s", types.ErrDuplicateSlug, t.Slug)
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("checking slug: %w", err)
	}

	stored := *t
	stored.TemplateID = id
	stored.CreatedAt = created
	stored.UpdatedAt = now
	row, err := rowFromTemplate(&stored)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}

	_, err = b.db.Exec(
		"INSERT INTO templates ("+templateColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?) "+
			"ON CONFLICT(template_id) DO UPDATE SET slug = excluded.slug, name = excluded.name, "+
			"category = excluded.category, sections = excluded.sections, section_order = excluded.section_order, "+
			"updated_at = excluded.updated_at",
		row.args()...,
	)
	if err != nil {
		return "", fmt.Errorf("persisting template: %w", err)
	}
	if err := tt.persistLocked(); err != nil {
		return "", fmt.Errorf("persisting %s: %w", templatesJSONL, err)
	}

	t.TemplateID = id
	t.CreatedAt = stored.CreatedAt
	t.UpdatedAt = stored.UpdatedAt
	return id, nil
}

// Delete removes a template by ID.
func (tt *templatesTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}

	b := tt.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreDetached
	}

	res, err := b.db.Exec("DELETE FROM templates WHERE template_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("deleting template: %w", err)
	} else if n == 0 {
		return types.ErrNotFound
	}
	if err := tt.persistLocked(); err != nil {
		return fmt.Errorf("persisting %s: %w", templatesJSONL, err)
	}
	return nil
}

// Fetch returns templates matching filter ordered by created_at, then slug.
// Filter values must be strings; unknown keys are rejected with
// ErrInvalidFilter.
func (tt *templatesTable) Fetch(filter types.Filter) ([]*types.Template, error) {
	var conditions []string
	var args []any
	for key, v := range filter {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a string", types.ErrInvalidFilter, key)
		}
		switch key {
		case types.FilterCategory:
			conditions = append(conditions, "category = ?")
		case types.FilterSlug:
			conditions = append(conditions, "slug = ?")
		default:
			return nil, fmt.Errorf("%w: unknown key %q", types.ErrInvalidFilter, key)
		}
		args = append(args, s)
	}

	query := "SELECT " + templateColumns + " FROM templates"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at ASC, slug ASC"

	b := tt.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching templates: %w", err)
	}
	defer rows.Close()

	results := []*types.Template{}
	for rows.Next() {
		row, err := scanTemplateRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		t, err := row.template()
		if err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating templates: %w", err)
	}
	return results, nil
}

// persistLocked rewrites templates.jsonl from the database. The caller must
// hold the backend write lock.
func (tt *templatesTable) persistLocked() error {
	b := tt.backend
	rows, err := b.db.Query("SELECT " + templateColumns + " FROM templates ORDER BY created_at ASC, slug ASC")
	if err != nil {
		return fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		row, err := scanTemplateRow(rows)
		if err != nil {
			return fmt.Errorf("scanning template: %w", err)
		}
		rec, err := row.record()
		if err != nil {
			return fmt.Errorf("encoding template %s: %w", row.id, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()
	return writeJSONL(filepath.Join(b.config.DataDir, templatesJSONL), records)
}
