// Package sqlite implements the SQLite template store. SQLite is the query
// engine; templates.jsonl in the data directory is the source of truth.
package sqlite

// Schema DDL for the template store.
const (
	createTemplates = `CREATE TABLE templates (
    template_id TEXT PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    category TEXT NOT NULL,
    sections TEXT NOT NULL,
    section_order TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	idxTemplatesCategory = `CREATE INDEX idx_templates_category ON templates(category);`
	idxTemplatesCreated  = `CREATE INDEX idx_templates_created ON templates(created_at, slug);`
)

// schemaDDL lists all statements executed on a fresh database.
var schemaDDL = []string{
	createTemplates,
	idxTemplatesCategory,
	idxTemplatesCreated,
}

// templateColumns is the column list shared by every templates query.
const templateColumns = "template_id, slug, name, category, sections, section_order, created_at, updated_at"
