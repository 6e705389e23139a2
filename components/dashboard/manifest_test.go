package dashboard

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeManifest(t *testing.T) {
	const payload = `
version: 1
name: community-pack
widgets:
  - widget:
      id: community-metrics
      title: Community Metrics
      description: Shows metrics pushed by the community pack.
      category: agent
      size: large
    maintainers: ["ops"]
    tags: ["metrics"]
  - widget:
      id: bare
      title: Bare
layouts:
  - id: grid-5
    name: 5 Columns
    columns: 5
`
	doc, err := DecodeManifest(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, doc.Widgets, 2)

	entry := doc.Widgets[0]
	assert.Equal(t, "community-metrics", entry.Widget.ID)
	assert.Equal(t, SizeLarge, entry.Widget.Size)
	assert.Equal(t, []string{"ops"}, entry.Maintainers)
	assert.Equal(t, CategoryAll, doc.Widgets[1].Widget.Category)
	assert.Equal(t, SizeMedium, doc.Widgets[1].Widget.Size)
	assert.Equal(t, 5, doc.Layouts[0].Columns)
}

func TestDecodeManifestRejectsUnknownFields(t *testing.T) {
	_, err := DecodeManifest(strings.NewReader("widgets:\n  - widget:\n      id: x\n      title: X\n      in_use: true\n"))
	require.Error(t, err)
}

func TestRegistryLoadManifest(t *testing.T) {
	doc := &CatalogManifest{
		Version: manifestVersionV1,
		Widgets: []ManifestWidget{{
			Widget: Widget{ID: "inventory", Title: "Inventory", Category: "agent", Size: SizeSmall},
			Tags:   []string{"stock"},
		}},
		Themes: []ColorTheme{{ID: "blue", Name: "Navy", Primary: "#1e3a8a"}},
	}
	reg := NewRegistry()
	require.NoError(t, reg.LoadManifest(doc))

	w, ok := reg.Widget("inventory")
	require.True(t, ok)
	assert.Equal(t, "Inventory", w.Title)
	widgets := reg.Widgets()
	assert.Equal(t, "inventory", widgets[len(widgets)-1].ID, "manifest widgets append to the catalog")

	meta, ok := reg.Metadata("inventory")
	require.True(t, ok)
	assert.Equal(t, []string{"stock"}, meta.Tags)

	themes := reg.Themes()
	assert.Len(t, themes, len(DefaultThemes()), "themes with known ids are replaced")
	assert.Equal(t, "#1e3a8a", themes[0].Primary)

	opts := reg.CustomizerOptions(ViewerContext{UserID: "u1", Roles: []string{"agent"}, Locale: "es"})
	assert.Equal(t, "agent", opts.Role)
	c, err := NewCustomizer(opts)
	require.NoError(t, err)
	assert.True(t, c.AddWidget("inventory"))
}

func TestManifestValidationCollectsErrors(t *testing.T) {
	const payload = `
widgets:
  - widget:
      id: dup
      title: First
  - widget:
      id: dup
      size: huge
`
	_, err := DecodeManifest(strings.NewReader(payload))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicates widget id dup")
	assert.Contains(t, err.Error(), "missing widget.title")
	assert.Contains(t, err.Error(), `unknown size "huge"`)
}

func TestEncodeManifestRoundTrip(t *testing.T) {
	doc := &CatalogManifest{Version: ManifestVersion, Widgets: []ManifestWidget{{
		Widget: Widget{ID: "x", Title: "X", Category: CategoryAll, Size: SizeSmall},
	}}}
	var buf bytes.Buffer
	require.NoError(t, EncodeManifest(&buf, doc))
	decoded, err := DecodeManifest(&buf)
	require.NoError(t, err)
	assert.Equal(t, "x", decoded.Widgets[0].Widget.ID)
}

func TestDocsManifestsAreValid(t *testing.T) {
	dir := filepath.Join("..", "..", "docs", "manifests")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	ids := map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		doc, err := ReadManifest(path)
		require.NoErrorf(t, err, "manifest %s should parse", path)
		for _, w := range doc.Widgets {
			if prev, exists := ids[w.Widget.ID]; exists {
				t.Fatalf("widget id %s defined in both %s and %s", w.Widget.ID, prev, path)
			}
			ids[w.Widget.ID] = path
		}
	}
	reg := NewRegistry()
	_, err = reg.LoadManifestFile(filepath.Join(dir, "tickets.yaml"))
	require.NoError(t, err)
	_, ok := reg.Widget("price-watch")
	assert.True(t, ok)
}
