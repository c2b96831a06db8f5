package types

// Filter narrows TemplateTable.Fetch results. Supported keys are
// FilterCategory and FilterSlug; values must be strings.
type Filter map[string]any

// Filter keys accepted by TemplateTable.Fetch.
const (
	FilterCategory = "category"
	FilterSlug     = "slug"
)

// TemplateTable provides CRUD operations over stored templates.
type TemplateTable interface {
	// Get retrieves the template with the given ID.
	// Returns ErrNotFound if no template exists with that ID.
	Get(id string) (*Template, error)

	// GetBySlug retrieves the template with the given slug.
	GetBySlug(slug string) (*Template, error)

	// Set creates or updates a template. When id is empty a new UUID v7 is
	// generated. Returns the actual ID used.
	Set(id string, t *Template) (string, error)

	// Delete removes the template with the given ID.
	// Returns ErrNotFound if no template exists with that ID.
	Delete(id string) error

	// Fetch returns all templates matching the filter, oldest first.
	// An empty filter returns every template.
	Fetch(filter Filter) ([]*Template, error)
}

// Store is the persisted template configuration. Callers attach to a
// backend, use the templates table, and detach when done.
type Store interface {
	// Attach connects the store to the backend described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	Detach() error

	// Templates returns the templates table.
	// Returns ErrStoreDetached when the store is not attached.
	Templates() (TemplateTable, error)
}
