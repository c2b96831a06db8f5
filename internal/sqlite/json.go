// JSONL record structure and row conversion for templates.jsonl.
package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesh-intelligence/invitekit/pkg/types"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// templateJSON represents a template in templates.jsonl. Sections and Order
// are kept raw so unknown section value shapes survive a load and persist
// cycle unchanged.
type templateJSON struct {
	TemplateID string          `json:"template_id"`
	Slug       string          `json:"slug"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Sections   json.RawMessage `json:"sections"`
	Order      json.RawMessage `json:"order"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`
}

// templateRow is one templates row as stored in SQLite.
type templateRow struct {
	id, slug, name, category string
	sections, order          string
	createdAt, updatedAt     string
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTemplateRow(s scanner) (templateRow, error) {
	var r templateRow
	err := s.Scan(&r.id, &r.slug, &r.name, &r.category, &r.sections, &r.order, &r.createdAt, &r.updatedAt)
	return r, err
}

func (r templateRow) args() []any {
	return []any{r.id, r.slug, r.name, r.category, r.sections, r.order, r.createdAt, r.updatedAt}
}

// rowFromTemplate dehydrates t into a row.
func rowFromTemplate(t *types.Template) (templateRow, error) {
	sections := []byte("{}")
	if t.Sections != nil {
		b, err := json.Marshal(t.Sections)
		if err != nil {
			return templateRow{}, fmt.Errorf("encoding sections: %w", err)
		}
		sections = b
	}
	order := []byte("[]")
	if len(t.Order) > 0 {
		b, err := json.Marshal(t.Order)
		if err != nil {
			return templateRow{}, fmt.Errorf("encoding order: %w", err)
		}
		order = b
	}
	return templateRow{
		id:        t.TemplateID,
		slug:      t.Slug,
		name:      t.Name,
		category:  t.Category,
		sections:  string(sections),
		order:     string(order),
		createdAt: formatTime(t.CreatedAt),
		updatedAt: formatTime(t.UpdatedAt),
	}, nil
}

// template hydrates the row. Undecodable sections or order degrade to an
// empty configuration.
func (r templateRow) template() (*types.Template, error) {
	created, err := parseTime(r.createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at of %s: %w", r.id, err)
	}
	updated, err := parseTime(r.updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at of %s: %w", r.id, err)
	}

	cfg := &types.SectionsConfig{}
	if err := json.Unmarshal([]byte(r.sections), cfg); err != nil {
		cfg = &types.SectionsConfig{}
	}
	var order types.OrderHint
	if err := json.Unmarshal([]byte(r.order), &order); err != nil {
		order = nil
	}
	if len(order) == 0 {
		order = nil
	}

	return &types.Template{
		TemplateID: r.id,
		Slug:       r.slug,
		Name:       r.name,
		Category:   r.category,
		Sections:   cfg,
		Order:      order,
		CreatedAt:  created,
		UpdatedAt:  updated,
	}, nil
}

// record converts the row to its JSONL form.
func (r templateRow) record() (json.RawMessage, error) {
	return json.Marshal(templateJSON{
		TemplateID: r.id,
		Slug:       r.slug,
		Name:       r.name,
		Category:   r.category,
		Sections:   json.RawMessage(r.sections),
		Order:      json.RawMessage(r.order),
		CreatedAt:  r.createdAt,
		UpdatedAt:  r.updatedAt,
	})
}

// rowFromRecord validates a JSONL record and normalizes it into a row.
func rowFromRecord(rec json.RawMessage) (templateRow, error) {
	var j templateJSON
	if err := json.Unmarshal(rec, &j); err != nil {
		return templateRow{}, err
	}
	if j.TemplateID == "" {
		return templateRow{}, types.ErrInvalidID
	}
	if !types.IsValidSlug(j.Slug) {
		return templateRow{}, types.ErrInvalidSlug
	}
	created, err := parseTime(j.CreatedAt)
	if err != nil {
		return templateRow{}, err
	}
	updated, err := parseTime(j.UpdatedAt)
	if err != nil {
		updated = created
	}

	sections := "{}"
	if len(j.Sections) > 0 && string(j.Sections) != "null" {
		sections = string(j.Sections)
	}
	order := "[]"
	if len(j.Order) > 0 && string(j.Order) != "null" {
		order = string(j.Order)
	}
	return templateRow{
		id:        j.TemplateID,
		slug:      j.Slug,
		name:      j.Name,
		category:  j.Category,
		sections:  sections,
		order:     order,
		createdAt: formatTime(created),
		updatedAt: formatTime(updated),
	}, nil
}
