package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-uistate/components/dashboard"
	"github.com/goliatone/go-uistate/pkg/config"
	"github.com/goliatone/go-uistate/pkg/persist"
)

type scaffoldCmd struct {
	Title        string            `required:"" help:"Display title for the widget."`
	ID           string            `help:"Widget id (defaults to the kebab-cased title)."`
	Description  string            `help:"One-line description shown in the catalog."`
	Category     string            `default:"all" help:"Catalog category (analytics, sports, tickets, ...)."`
	Size         string            `default:"medium" enum:"small,medium,large" help:"Widget size."`
	Icon         string            `help:"Icon name."`
	Color        string            `help:"Accent color."`
	Localized    map[string]string `help:"Localized titles as locale=title pairs."`
	Tag          []string          `help:"Tags to record in the manifest (repeatable)."`
	Maintainer   []string          `help:"Maintainers to record in the manifest (repeatable)."`
	ManifestPath string            `required:"" name:"manifest" type:"path" help:"Manifest YAML file to create or update."`
	Overwrite    bool              `help:"Replace an existing entry with the same id."`
}

func (cmd *scaffoldCmd) Run(e *env) error {
	id := cmd.ID
	if id == "" {
		id = deriveWidgetID(cmd.Title)
	}
	if id == "" {
		return errors.New("uistatectl: widget id is empty")
	}
	doc, err := loadOrInitManifest(cmd.ManifestPath)
	if err != nil {
		return err
	}
	entry := dashboard.ManifestWidget{
		Widget: dashboard.Widget{
			ID:             id,
			Title:          cmd.Title,
			TitleLocalized: cmd.Localized,
			Description:    cmd.Description,
			Icon:           cmd.Icon,
			Color:          cmd.Color,
			Category:       cmd.Category,
			Size:           dashboard.WidgetSize(cmd.Size),
		},
		Maintainers: cmd.Maintainer,
		Tags:        cmd.Tag,
	}

	replaced := false
	for idx := range doc.Widgets {
		if doc.Widgets[idx].Widget.ID != id {
			continue
		}
		if !cmd.Overwrite {
			return fmt.Errorf("uistatectl: manifest already defines widget %s (use --overwrite to replace)", id)
		}
		doc.Widgets[idx] = entry
		replaced = true
		break
	}
	if !replaced {
		doc.Widgets = append(doc.Widgets, entry)
	}
	sort.Slice(doc.Widgets, func(i, j int) bool {
		return doc.Widgets[i].Widget.ID < doc.Widgets[j].Widget.ID
	})
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeManifest(cmd.ManifestPath, doc); err != nil {
		return err
	}
	e.logger.Info("manifest updated", "widget", id, "manifest", cmd.ManifestPath, "replaced", replaced)
	fmt.Fprintf(e.out, "added %s to %s\n", id, cmd.ManifestPath)
	return nil
}

func deriveWidgetID(title string) string {
	return strcase.ToKebab(strings.TrimSpace(title))
}

func loadOrInitManifest(path string) (*dashboard.CatalogManifest, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &dashboard.CatalogManifest{
				Version: dashboard.ManifestVersion,
				Widgets: []dashboard.ManifestWidget{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("uistatectl: stat manifest: %w", err)
	}
	return dashboard.ReadManifest(path)
}

func writeManifest(path string, doc *dashboard.CatalogManifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("uistatectl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("uistatectl: create manifest %s: %w", path, err)
	}
	defer file.Close()
	return dashboard.EncodeManifest(file, doc)
}

type validateCmd struct {
	Files    []string `arg:"" type:"existingfile" help:"Snapshot files to validate."`
	Codec    string   `default:"json" enum:"json,cbor" help:"Snapshot encoding."`
	Manifest string   `type:"existingfile" help:"Manifest extending the catalog before layout and widget checks."`
}

func (cmd *validateCmd) Run(e *env) error {
	registry := dashboard.NewRegistry()
	manifest := cmd.Manifest
	if manifest == "" {
		manifest = e.cfg.Catalog.Manifest
	}
	if manifest != "" {
		if _, err := registry.LoadManifestFile(manifest); err != nil {
			return err
		}
	}
	var codec persist.Codec = persist.JSONCodec{}
	if cmd.Codec == "cbor" {
		codec = persist.CBORCodec{}
	}
	validator := dashboard.NewJSONSchemaValidator()

	var errs []error
	for _, path := range cmd.Files {
		if err := validateSnapshotFile(path, codec, validator, registry, e); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			fmt.Fprintf(e.out, "FAIL %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(e.out, "ok   %s\n", path)
	}
	return errors.Join(errs...)
}

func validateSnapshotFile(path string, codec persist.Codec, validator *dashboard.JSONSchemaValidator, registry *dashboard.Registry, e *env) error {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	var snap dashboard.Snapshot
	if err := codec.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %v", dashboard.ErrMalformedSnapshot, err)
	}
	if err := validator.ValidateSnapshot(snap); err != nil {
		return err
	}
	layouts := map[string]int{}
	for _, tmpl := range registry.Layouts() {
		layouts[tmpl.ID] = tmpl.Columns
	}
	if _, ok := layouts[snap.Layout]; !ok {
		return fmt.Errorf("%w: unknown layout %s", dashboard.ErrMalformedSnapshot, snap.Layout)
	}
	for _, ids := range snap.Columns {
		for _, id := range ids {
			if _, ok := registry.Widget(id); !ok {
				e.logger.Warn("snapshot references a widget outside the catalog", "file", path, "widget", id)
			}
		}
	}
	return nil
}

type defaultsCmd struct{}

func (defaultsCmd) Run(e *env) error {
	registry := dashboard.NewRegistry()
	doc := &dashboard.CatalogManifest{
		Version: dashboard.ManifestVersion,
		Name:    "built-in",
		Layouts: registry.Layouts(),
		Themes:  registry.Themes(),
	}
	for _, w := range registry.Widgets() {
		doc.Widgets = append(doc.Widgets, dashboard.ManifestWidget{Widget: w})
	}
	return dashboard.EncodeManifest(e.out, doc)
}

type showCmd struct {
	Format string `default:"toml" enum:"toml,yaml" help:"Output format."`
}

func (cmd *showCmd) Run(e *env) error {
	if cmd.Format == "yaml" {
		enc := yaml.NewEncoder(e.out)
		enc.SetIndent(2)
		if err := enc.Encode(e.cfg); err != nil {
			return fmt.Errorf("uistatectl: encode config: %w", err)
		}
		return enc.Close()
	}
	return config.Encode(e.out, e.cfg)
}
