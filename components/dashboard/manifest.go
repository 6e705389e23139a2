package dashboard

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// CatalogManifest models a YAML document extending the widget catalog.
type CatalogManifest struct {
	Version string           `json:"version" yaml:"version"`
	Name    string           `json:"name,omitempty" yaml:"name,omitempty"`
	Package string           `json:"package,omitempty" yaml:"package,omitempty"`
	Widgets []ManifestWidget `json:"widgets" yaml:"widgets"`
	Layouts []LayoutTemplate `json:"layouts,omitempty" yaml:"layouts,omitempty"`
	Themes  []ColorTheme     `json:"themes,omitempty" yaml:"themes,omitempty"`
	Source  string           `json:"-" yaml:"-"`
}

// ManifestWidget describes a single catalog entry within a manifest.
type ManifestWidget struct {
	Widget      Widget   `json:"widget" yaml:"widget"`
	Maintainers []string `json:"maintainers,omitempty" yaml:"maintainers,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// LoadManifestFile reads a manifest from disk, registers it against the registry, and returns the document.
func (r *Registry) LoadManifestFile(path string) (*CatalogManifest, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifest(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifest registers widgets, layouts and themes from a decoded manifest.
func (r *Registry) LoadManifest(doc *CatalogManifest) error {
	if doc == nil {
		return fmt.Errorf("dashboard: manifest document is nil")
	}
	for _, entry := range doc.Widgets {
		if err := r.RegisterWidget(entry.Widget); err != nil {
			return fmt.Errorf("dashboard: register widget %s from %s: %w", entry.Widget.ID, doc.Source, err)
		}
		r.recordMetadata(entry.Widget.ID, entry)
	}
	for _, tmpl := range doc.Layouts {
		if err := r.RegisterLayout(tmpl); err != nil {
			return fmt.Errorf("dashboard: register layout %s from %s: %w", tmpl.ID, doc.Source, err)
		}
	}
	for _, theme := range doc.Themes {
		if err := r.RegisterTheme(theme); err != nil {
			return fmt.Errorf("dashboard: register theme %s from %s: %w", theme.ID, doc.Source, err)
		}
	}
	return nil
}

// ReadManifest loads a manifest file from disk without registering it.
func ReadManifest(path string) (*CatalogManifest, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*CatalogManifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc CatalogManifest
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeManifest writes doc as YAML.
func EncodeManifest(w io.Writer, doc *CatalogManifest) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("dashboard: encode manifest: %w", err)
	}
	return encoder.Close()
}

// Validate ensures the manifest satisfies required fields.
func (doc *CatalogManifest) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version)
	}
	var errs []error
	seen := make(map[string]struct{}, len(doc.Widgets))
	for idx, entry := range doc.Widgets {
		w := entry.Widget
		if w.ID == "" {
			errs = append(errs, fmt.Errorf("dashboard: manifest widget at index %d is missing widget.id", idx))
			continue
		}
		if w.Title == "" {
			errs = append(errs, fmt.Errorf("dashboard: manifest widget %s missing widget.title", w.ID))
		}
		switch w.Size {
		case SizeSmall, SizeMedium, SizeLarge:
		default:
			errs = append(errs, fmt.Errorf("dashboard: manifest widget %s has unknown size %q", w.ID, w.Size))
		}
		if _, exists := seen[w.ID]; exists {
			errs = append(errs, fmt.Errorf("dashboard: manifest duplicates widget id %s", w.ID))
		}
		seen[w.ID] = struct{}{}
	}
	for _, tmpl := range doc.Layouts {
		if tmpl.ID == "" || tmpl.Columns < 1 {
			errs = append(errs, fmt.Errorf("dashboard: manifest layout %q needs an id and at least one column", tmpl.ID))
		}
	}
	return errors.Join(errs...)
}

func (doc *CatalogManifest) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	for i := range doc.Widgets {
		w := &doc.Widgets[i].Widget
		if w.Category == "" {
			w.Category = CategoryAll
		}
		if w.Size == "" {
			w.Size = SizeMedium
		}
	}
}
