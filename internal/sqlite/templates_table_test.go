package sqlite

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/invitekit/pkg/types"
)

func TestTemplatesSetCreates(t *testing.T) {
	tbl := templatesOf(t, attachBackend(t, t.TempDir()))

	tpl := preset("romantico-floral", "wedding")
	before := time.Now().UTC().Add(-time.Second)
	id, err := tbl.Set("", tpl)
	require.NoError(t, err)

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Equal(t, id, tpl.TemplateID)
	assert.True(t, tpl.CreatedAt.After(before))
	assert.Equal(t, tpl.CreatedAt, tpl.UpdatedAt)

	got, err := tbl.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "romantico-floral", got.Slug)
	assert.Equal(t, "wedding", got.Category)
	hero, ok := got.Sections.Get("hero")
	require.True(t, ok)
	assert.Equal(t, "hero_1", hero.Variant())
	assert.True(t, got.CreatedAt.Equal(tpl.CreatedAt))
}

func TestTemplatesSetUpdates(t *testing.T) {
	tbl := templatesOf(t, attachBackend(t, t.TempDir()))

	id, err := tbl.Set("", preset("mine", "wedding"))
	require.NoError(t, err)
	orig, err := tbl.Get(id)
	require.NoError(t, err)

	update := preset("mine-renamed", "wedding")
	update.Sections.Set("gallery", types.UseVariant("gallery_2"))
	got, err := tbl.Set(id, update)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	stored, err := tbl.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "mine-renamed", stored.Slug)
	assert.True(t, stored.CreatedAt.Equal(orig.CreatedAt), "creation time is kept")
	assert.False(t, stored.UpdatedAt.Before(orig.UpdatedAt))
	assert.Equal(t, []string{"hero", "welcome", "gallery"}, stored.Sections.Names())

	_, err = tbl.GetBySlug("mine")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestTemplatesSetWithNewID(t *testing.T) {
	tbl := templatesOf(t, attachBackend(t, t.TempDir()))

	id, err := tbl.Set("custom-id", preset("mine", "wedding"))
	require.NoError(t, err)
	assert.Equal(t, "custom-id", id)

	got, err := tbl.GetBySlug("mine")
	require.NoError(t, err)
	assert.Equal(t, "custom-id", got.TemplateID)
}

func TestTemplatesSetErrors(t *testing.T) {
	tbl := templatesOf(t, attachBackend(t, t.TempDir()))
	_, err := tbl.Set("", preset("taken", "wedding"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		tpl     *types.Template
		wantErr error
	}{
		{"nil template", nil, types.ErrInvalidData},
		{"invalid slug", &types.Template{Slug: "Not Valid", Name: "x", Category: "wedding"}, types.ErrInvalidSlug},
		{"empty name", &types.Template{Slug: "ok", Category: "wedding"}, types.ErrInvalidName},
		{"empty category", &types.Template{Slug: "ok", Name: "x"}, types.ErrInvalidCategory},
		{"duplicate slug", preset("taken", "event"), types.ErrDuplicateSlug},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tbl.Set("", tt.tpl)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTemplatesGetErrors(t *testing.T) {
	tbl := templatesOf(t, attachBackend(t, t.TempDir()))

	_, err := tbl.Get("")
	assert.ErrorIs(t, err, types.ErrInvalidID)
	_, err = tbl.Get("missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = tbl.GetBySlug("")
	assert.ErrorIs(t, err, types.ErrInvalidSlug)
	_, err = tbl.GetBySlug("missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestTemplatesDelete(t *testing.T) {
	dir := t.TempDir()
	tbl := templatesOf(t, attachBackend(t, dir))

	id, err := tbl.Set("", preset("doomed", "wedding"))
	require.NoError(t, err)
	_, err = tbl.Set("", preset("kept", "wedding"))
	require.NoError(t, err)

	require.NoError(t, tbl.Delete(id))
	_, err = tbl.Get(id)
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.ErrorIs(t, tbl.Delete(id), types.ErrNotFound)
	assert.ErrorIs(t, tbl.Delete(""), types.ErrInvalidID)

	records, err := readJSONL(filepath.Join(dir, templatesJSONL))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, string(records[0]), `"slug":"kept"`)
}

func TestTemplatesFetch(t *testing.T) {
	tbl := templatesOf(t, attachBackend(t, t.TempDir()))
	for _, p := range []*types.Template{
		preset("b-wedding", "wedding"),
		preset("a-event", "event"),
		preset("c-wedding", "wedding"),
	} {
		_, err := tbl.Set("", p)
		require.NoError(t, err)
	}

	slugs := func(ts []*types.Template) []string {
		out := make([]string, len(ts))
		for i, x := range ts {
			out[i] = x.Slug
		}
		return out
	}

	all, err := tbl.Fetch(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"b-wedding", "a-event", "c-wedding"}, slugs(all), "creation order")

	weddings, err := tbl.Fetch(types.Filter{types.FilterCategory: "wedding"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b-wedding", "c-wedding"}, slugs(weddings))

	one, err := tbl.Fetch(types.Filter{types.FilterCategory: "event", types.FilterSlug: "a-event"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a-event"}, slugs(one))

	none, err := tbl.Fetch(types.Filter{types.FilterCategory: "graduation"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = tbl.Fetch(types.Filter{types.FilterCategory: 3})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
	_, err = tbl.Fetch(types.Filter{"states": "open"})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}

func TestTemplatesConcurrentWrites(t *testing.T) {
	dir := t.TempDir()
	tbl := templatesOf(t, attachBackend(t, dir))

	var wg sync.WaitGroup
	errs := make([]error, 12)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			slug := "t-" + string(rune('a'+i))
			_, errs[i] = tbl.Set("", preset(slug, "wedding"))
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	all, err := tbl.Fetch(nil)
	require.NoError(t, err)
	assert.Len(t, all, 12)

	records, err := readJSONL(filepath.Join(dir, templatesJSONL))
	require.NoError(t, err)
	assert.Len(t, records, 12)
}
