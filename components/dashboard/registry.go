package dashboard

import (
	"fmt"
	"sync"
)

// CatalogHook lets packages register widgets during init().
type CatalogHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []CatalogHook
)

// RegisterCatalogHook registers a hook executed against new registries.
func RegisterCatalogHook(h CatalogHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry holds the widget catalog, layout templates and themes shared by
// every customizer session. Registration order is preserved.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	widgets map[string]Widget
	meta    map[string]ManifestWidget
	layouts []LayoutTemplate
	themes  []ColorTheme
}

// NewRegistry builds a registry seeded with the built-in catalog and applies
// global hooks.
func NewRegistry() *Registry {
	reg := &Registry{
		widgets: map[string]Widget{},
		meta:    map[string]ManifestWidget{},
		layouts: DefaultLayouts(),
		themes:  DefaultThemes(),
	}
	for _, w := range DefaultWidgets() {
		_ = reg.RegisterWidget(w)
	}
	_ = reg.ApplyHooks()
	return reg
}

// ApplyHooks executes registered catalog hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterWidget adds or replaces a catalog widget.
func (r *Registry) RegisterWidget(w Widget) error {
	if w.ID == "" {
		return errEmptyWidgetID
	}
	if w.Category == "" {
		w.Category = CategoryAll
	}
	if w.Size == "" {
		w.Size = SizeMedium
	}
	w.InUse = false
	w.TitleLocalized = normalizeLocaleMap(w.TitleLocalized)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.widgets[w.ID]; !exists {
		r.order = append(r.order, w.ID)
	}
	r.widgets[w.ID] = w
	return nil
}

// RegisterLayout adds or replaces a layout template.
func (r *Registry) RegisterLayout(tmpl LayoutTemplate) error {
	if tmpl.ID == "" {
		return fmt.Errorf("dashboard: layout id is required")
	}
	if tmpl.Columns < 1 {
		return fmt.Errorf("%w: %s", errInvalidColumns, tmpl.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.layouts {
		if existing.ID == tmpl.ID {
			r.layouts[i] = tmpl
			return nil
		}
	}
	r.layouts = append(r.layouts, tmpl)
	return nil
}

// RegisterTheme adds or replaces a color theme.
func (r *Registry) RegisterTheme(theme ColorTheme) error {
	if theme.ID == "" {
		return fmt.Errorf("dashboard: theme id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.themes {
		if existing.ID == theme.ID {
			r.themes[i] = theme
			return nil
		}
	}
	r.themes = append(r.themes, theme)
	return nil
}

// Widget fetches a catalog entry.
func (r *Registry) Widget(id string) (Widget, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.widgets[id]
	if !ok {
		return Widget{}, false
	}
	return w.clone(), true
}

// Metadata returns the manifest entry a widget was registered from.
func (r *Registry) Metadata(id string) (ManifestWidget, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.meta[id]
	return meta, ok
}

// Widgets returns the catalog in registration order.
func (r *Registry) Widgets() []Widget {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Widget, len(r.order))
	for i, id := range r.order {
		out[i] = r.widgets[id].clone()
	}
	return out
}

// Layouts returns the registered layout templates.
func (r *Registry) Layouts() []LayoutTemplate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]LayoutTemplate(nil), r.layouts...)
}

// Themes returns the registered color themes.
func (r *Registry) Themes() []ColorTheme {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ColorTheme(nil), r.themes...)
}

// CustomizerOptions seeds options for viewer from the registry contents.
func (r *Registry) CustomizerOptions(viewer ViewerContext) CustomizerOptions {
	return CustomizerOptions{
		Catalog: r.Widgets(),
		Role:    viewer.PrimaryRole(),
		Locale:  viewer.Locale,
		Layouts: r.Layouts(),
		Themes:  r.Themes(),
	}
}

func (r *Registry) recordMetadata(id string, meta ManifestWidget) {
	if len(meta.Maintainers) == 0 && len(meta.Tags) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meta[id] = meta
}
