// Template entity: one persisted invitation design with its section setup.
package types

import (
	"regexp"
	"time"
)

// Template is a stored template instance. Sections and Order are the
// persisted configuration read by the resolver; the resolver never writes
// them.
type Template struct {
	TemplateID string          `json:"template_id"`
	Slug       string          `json:"slug"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Sections   *SectionsConfig `json:"sections"`
	Order      OrderHint       `json:"order,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// slugPattern matches lowercase words separated by single dashes.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// IsValidSlug reports whether s can be used as a template slug.
func IsValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Validate checks the fields a template needs before it is stored.
func (t *Template) Validate() error {
	if !IsValidSlug(t.Slug) {
		return ErrInvalidSlug
	}
	if t.Name == "" {
		return ErrInvalidName
	}
	if t.Category == "" {
		return ErrInvalidCategory
	}
	return nil
}
