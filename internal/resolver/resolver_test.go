package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/invitekit/internal/catalog"
	"github.com/mesh-intelligence/invitekit/internal/logging"
	"github.com/mesh-intelligence/invitekit/pkg/types"
)

func weddingResolver(t *testing.T) *Resolver {
	t.Helper()
	reg, err := catalog.Load("")
	require.NoError(t, err)
	cat, err := reg.Catalog("wedding")
	require.NoError(t, err)
	return New(cat, nil)
}

const driftCatalog = `category: drift
basic_fields: [title, ghost]
fields:
  - {key: title, label: Título, type: text, sections: [hero], category: Titles}
  - {key: names, label: Nombres, type: text, sections: [sidebar, hero], category: Titles}
sections:
  - name: hero
    fields: [title, gallery_image_1_url, names]
    variants:
      hero_1: [title, missing_key]
`

func driftResolver(t *testing.T) (*Resolver, *bytes.Buffer) {
	t.Helper()
	f, err := catalog.Parse([]byte(driftCatalog))
	require.NoError(t, err)
	reg, err := catalog.NewRegistry([]*catalog.File{f})
	require.NoError(t, err)
	cat, err := reg.Catalog("drift")
	require.NoError(t, err)

	var buf bytes.Buffer
	log, err := logging.New("debug", "text", &buf)
	require.NoError(t, err)
	return New(cat, log), &buf
}

func sectionsConfig(t *testing.T, js string) *types.SectionsConfig {
	t.Helper()
	var cfg types.SectionsConfig
	require.NoError(t, json.Unmarshal([]byte(js), &cfg))
	return &cfg
}

func orderHint(t *testing.T, js string) types.OrderHint {
	t.Helper()
	var h types.OrderHint
	require.NoError(t, json.Unmarshal([]byte(js), &h))
	return h
}

func keys(fields []types.FieldDefinition) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Key
	}
	return out
}

func TestDetectActiveSections(t *testing.T) {
	tests := []struct {
		name string
		cfg  string
		hint string
		want []string
	}{
		{
			name: "filters inactive sections",
			cfg:  `{"hero":true,"welcome":{"enabled":false},"gallery":"gallery_1"}`,
			want: []string{"hero", "gallery"},
		},
		{
			name: "hint order is authoritative",
			cfg:  `{"hero":true,"welcome":{"enabled":false},"gallery":"gallery_1"}`,
			hint: `[["gallery","gallery_1"],["hero",true]]`,
			want: []string{"gallery", "hero"},
		},
		{
			name: "hint sections missing from config are skipped",
			cfg:  `{"hero":true}`,
			hint: `[["music",true],["hero",true]]`,
			want: []string{"hero"},
		},
		{
			name: "active sections outside the hint follow in config order",
			cfg:  `{"footer":true,"hero":true,"rsvp":"rsvp_1"}`,
			hint: `[["hero",true]]`,
			want: []string{"hero", "footer", "rsvp"},
		},
		{
			name: "inactive hint entries stay inactive",
			cfg:  `{"hero":false,"gallery":true}`,
			hint: `[["hero","hero_1"],["gallery",true]]`,
			want: []string{"gallery"},
		},
		{
			name: "object without enabled flag is active",
			cfg:  `{"music":{"variant":""},"gifts":{}}`,
			want: []string{"music", "gifts"},
		},
		{
			name: "unrecognized shapes are inactive",
			cfg:  `{"hero":1,"welcome":null,"gallery":["x"],"rsvp":true}`,
			want: []string{"rsvp"},
		},
		{
			name: "malformed object members degrade per entry",
			cfg:  `{"hero":true,"welcome":{"enabled":"no"},"music":{"enabled":1,"variant":false},"rsvp":{"enabled":false,"variant":3},"gallery":"gallery_1"}`,
			want: []string{"hero", "welcome", "music", "gallery"},
		},
		{
			name: "empty config",
			cfg:  `{}`,
			hint: `[["hero",true]]`,
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hint types.OrderHint
			if tt.hint != "" {
				hint = orderHint(t, tt.hint)
			}
			assert.Equal(t, tt.want, DetectActiveSections(sectionsConfig(t, tt.cfg), hint))
		})
	}
}

func TestDetectActiveSectionsNilConfig(t *testing.T) {
	got := DetectActiveSections(nil, types.OrderHint{{Section: "hero"}})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDetectActiveSectionsMapConfigIsAlphabetical(t *testing.T) {
	cfg := types.NewSectionsConfig(map[string]types.SectionValue{
		"hero":    types.Enabled(true),
		"gallery": types.UseVariant("gallery_1"),
		"welcome": types.SectionObject(false, ""),
	})
	assert.Equal(t, []string{"gallery", "hero"}, DetectActiveSections(cfg, nil))
}

func TestAvailableFields(t *testing.T) {
	r := weddingResolver(t)
	ctx := context.Background()

	t.Run("section defaults sorted by category", func(t *testing.T) {
		got := r.AvailableFields(ctx, []string{"welcome"})
		assert.Equal(t, []string{
			"welcome_description", "welcome_signature", // Content
			"welcome_image_url", // Images
			"welcome_title", "welcome_subtitle", // Titles
		}, keys(got))
	})

	t.Run("shared fields appear once", func(t *testing.T) {
		got := r.AvailableFields(ctx, []string{"hero", "footer"})
		assert.Equal(t, []string{
			"footer_message", "footer_hashtag",
			"wedding_date",
			"hero_image_url",
			"hero_video_url",
			"couple_names", "hero_subtitle",
		}, keys(got))
	})

	t.Run("no sections", func(t *testing.T) {
		got := r.AvailableFields(ctx, nil)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("unknown section dropped", func(t *testing.T) {
		got := r.AvailableFields(ctx, []string{"sidebar", "music"})
		assert.Equal(t, []string{"music_url", "music_autoplay"}, keys(got))
	})
}

func TestAvailableFieldsDropsUnknownKeys(t *testing.T) {
	r, logs := driftResolver(t)

	got := r.AvailableFields(context.Background(), []string{"hero", "sidebar"})
	assert.Equal(t, []string{"title", "names"}, keys(got))

	out := logs.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "key=gallery_image_1_url")
	assert.Contains(t, out, "section=sidebar")
	assert.Contains(t, out, "category=drift")
}

func TestAvailableFieldsForVariant(t *testing.T) {
	r := weddingResolver(t)
	ctx := context.Background()

	t.Run("variant narrows the section", func(t *testing.T) {
		defaults := r.AvailableFields(ctx, []string{"welcome"})
		require.Len(t, defaults, 5)

		cfg := sectionsConfig(t, `{"welcome":"welcome_2"}`)
		got := r.AvailableFieldsForVariant(ctx, []string{"welcome"}, cfg)
		assert.Equal(t, []string{"welcome_description"}, keys(got))
	})

	t.Run("object variant", func(t *testing.T) {
		cfg := sectionsConfig(t, `{"hero":{"enabled":true,"variant":"hero_1"}}`)
		got := r.AvailableFieldsForVariant(ctx, []string{"hero"}, cfg)
		assert.Equal(t, []string{"wedding_date", "hero_image_url", "couple_names"}, keys(got))
	})

	t.Run("no variant uses defaults", func(t *testing.T) {
		cfg := sectionsConfig(t, `{"welcome":true}`)
		got := r.AvailableFieldsForVariant(ctx, []string{"welcome"}, cfg)
		assert.Equal(t, keys(r.AvailableFields(ctx, []string{"welcome"})), keys(got))
	})

	t.Run("unknown variant falls back to defaults", func(t *testing.T) {
		cfg := sectionsConfig(t, `{"welcome":"welcome_9"}`)
		got := r.AvailableFieldsForVariant(ctx, []string{"welcome"}, cfg)
		assert.Len(t, got, 5)
	})

	t.Run("variant of another section falls back to defaults", func(t *testing.T) {
		cfg := sectionsConfig(t, `{"welcome":"hero_1"}`)
		got := r.AvailableFieldsForVariant(ctx, []string{"welcome"}, cfg)
		assert.Len(t, got, 5)
	})

	t.Run("nil config uses defaults", func(t *testing.T) {
		got := r.AvailableFieldsForVariant(ctx, []string{"welcome"}, nil)
		assert.Len(t, got, 5)
	})
}

func TestAvailableFieldsForVariantLogsFallback(t *testing.T) {
	r, logs := driftResolver(t)
	ctx := context.Background()

	got := r.AvailableFieldsForVariant(ctx, []string{"hero"}, sectionsConfig(t, `{"hero":"hero_1"}`))
	assert.Equal(t, []string{"title"}, keys(got))
	assert.Contains(t, logs.String(), "key=missing_key")

	logs.Reset()
	r.AvailableFieldsForVariant(ctx, []string{"hero"}, sectionsConfig(t, `{"hero":"hero_7"}`))
	assert.Contains(t, logs.String(), "level=DEBUG")
	assert.Contains(t, logs.String(), "variant=hero_7")
}

func TestGroupByOrderedSections(t *testing.T) {
	r := weddingResolver(t)
	ctx := context.Background()

	groupKeys := func(groups []SectionGroup) map[string][]string {
		out := make(map[string][]string, len(groups))
		for _, g := range groups {
			out[g.Section] = keys(g.Fields)
		}
		return out
	}

	t.Run("first active owner wins", func(t *testing.T) {
		active := []string{"hero", "footer"}
		groups := GroupByOrderedSections(r.AvailableFields(ctx, active), active)
		require.Len(t, groups, 2)
		assert.Equal(t, "hero", groups[0].Section)
		assert.Equal(t, "footer", groups[1].Section)
		assert.Equal(t, map[string][]string{
			"hero":   {"wedding_date", "hero_image_url", "hero_video_url", "couple_names", "hero_subtitle"},
			"footer": {"footer_message", "footer_hashtag"},
		}, groupKeys(groups))
	})

	t.Run("reversed order moves the shared field", func(t *testing.T) {
		active := []string{"footer", "hero"}
		groups := GroupByOrderedSections(r.AvailableFields(ctx, active), active)
		require.Len(t, groups, 2)
		assert.Equal(t, "footer", groups[0].Section)
		assert.Equal(t, []string{"footer_message", "footer_hashtag", "couple_names"}, keys(groups[0].Fields))
		assert.NotContains(t, keys(groups[1].Fields), "couple_names")
	})

	t.Run("every multi-owner field lands in exactly one group", func(t *testing.T) {
		active := []string{"countdown", "footer", "hero"}
		groups := GroupByOrderedSections(r.AvailableFields(ctx, active), active)
		count := map[string]int{}
		for _, g := range groups {
			for _, f := range g.Fields {
				count[f.Key]++
			}
		}
		for key, n := range count {
			assert.Equal(t, 1, n, key)
		}
		assert.Contains(t, groupKeys(groups)["countdown"], "wedding_date")
		assert.Contains(t, groupKeys(groups)["footer"], "couple_names")
	})

	t.Run("empty groups omitted and orphans dropped", func(t *testing.T) {
		fields := []types.FieldDefinition{
			{Key: "a", Sections: []string{"gallery"}},
			{Key: "b", Sections: []string{"sidebar"}},
			{Key: "c", Sections: []string{"gallery"}},
		}
		groups := GroupByOrderedSections(fields, []string{"hero", "gallery"})
		require.Len(t, groups, 1)
		assert.Equal(t, "gallery", groups[0].Section)
		assert.Equal(t, []string{"a", "c"}, keys(groups[0].Fields))
	})

	t.Run("no fields", func(t *testing.T) {
		groups := GroupByOrderedSections(nil, []string{"hero"})
		assert.NotNil(t, groups)
		assert.Empty(t, groups)
	})
}

func TestFilterByMode(t *testing.T) {
	r := weddingResolver(t)
	ctx := context.Background()
	all := r.AvailableFields(ctx, []string{"hero", "welcome", "gallery", "footer"})

	t.Run("full is identity", func(t *testing.T) {
		assert.Equal(t, all, r.FilterByMode(all, types.ModeFull))
	})

	t.Run("basic is a subset of the allow-list in caller order", func(t *testing.T) {
		got := r.FilterByMode(all, types.ModeBasic)
		basic := r.Catalog().BasicFieldKeys()
		for _, f := range got {
			assert.Contains(t, basic, f.Key)
		}
		assert.Equal(t, []string{"welcome_description", "wedding_date", "hero_image_url", "gallery_images", "couple_names"}, keys(got))
	})

	t.Run("allow-listed keys that were not resolved are absent", func(t *testing.T) {
		got := r.FilterByMode(all, types.ModeBasic)
		assert.NotContains(t, keys(got), "rsvp_deadline")
	})

	t.Run("does not re-sort", func(t *testing.T) {
		in := []types.FieldDefinition{
			{Key: "music_url", Category: "Links"},
			{Key: "couple_names", Category: "Titles"},
			{Key: "ceremony_venue", Category: "Content"},
		}
		assert.Equal(t, []string{"music_url", "couple_names", "ceremony_venue"}, keys(r.FilterByMode(in, types.ModeBasic)))
	})
}

func TestResolutionIsDeterministic(t *testing.T) {
	r := weddingResolver(t)
	ctx := context.Background()
	cfg := sectionsConfig(t, `{"hero":"hero_3","welcome":"welcome_1","countdown":true,"gallery":"gallery_2","rsvp":"rsvp_1","footer":true}`)
	active := DetectActiveSections(cfg, nil)

	first := r.AvailableFieldsForVariant(ctx, active, cfg)
	for range 5 {
		assert.Equal(t, active, DetectActiveSections(cfg, nil))
		assert.Equal(t, r.AvailableFields(ctx, active), r.AvailableFields(ctx, active))
		assert.Equal(t, first, r.AvailableFieldsForVariant(ctx, active, cfg))
		assert.Equal(t, GroupByOrderedSections(first, active), GroupByOrderedSections(first, active))
		assert.Equal(t, r.FilterByMode(first, types.ModeBasic), r.FilterByMode(first, types.ModeBasic))
	}
}

func TestResultsAreCopies(t *testing.T) {
	r := weddingResolver(t)
	ctx := context.Background()

	got := r.AvailableFields(ctx, []string{"hero"})
	for i := range got {
		got[i].Sections[0] = "mutated"
		got[i].Label = "mutated"
	}

	again := r.AvailableFields(ctx, []string{"hero"})
	for _, f := range again {
		assert.NotEqual(t, "mutated", f.Sections[0])
		assert.NotEqual(t, "mutated", f.Label)
	}
	names, _ := r.Catalog().Field("couple_names")
	assert.Equal(t, []string{"hero", "footer"}, names.Sections)
}

func TestConcurrentResolution(t *testing.T) {
	r := weddingResolver(t)
	ctx := context.Background()
	cfg := sectionsConfig(t, `{"hero":"hero_1","welcome":"welcome_2","ceremony":true,"gallery":"gallery_1","footer":true}`)
	want := r.Form(ctx, cfg, nil, types.ModeFull)

	var wg sync.WaitGroup
	results := make([]Form, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Form(ctx, cfg, nil, types.ModeFull)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}
