package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-uistate/pkg/events"
)

// ColumnView is one rendered column.
type ColumnView struct {
	ID      string   `json:"id"`
	Hovered bool     `json:"hovered"`
	Widgets []Widget `json:"widgets"`
}

// View is the render-ready description of a customizer.
type View struct {
	ID          string           `json:"id"`
	Layout      LayoutTemplate   `json:"layout"`
	Theme       *ThemeSelection  `json:"theme"`
	Customizing bool             `json:"customizing"`
	Dragging    bool             `json:"dragging"`
	Dragged     string           `json:"dragged,omitempty"`
	Loading     bool             `json:"loading"`
	Columns     []ColumnView     `json:"columns"`
	Available   []Widget         `json:"available"`
	Layouts     []LayoutTemplate `json:"layouts"`
	Themes      []ColorTheme     `json:"themes"`
}

// View returns the current state for rendering. Widget titles are localized.
func (c *Customizer) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	view := View{
		ID:          c.id,
		Layout:      c.layouts[c.layout],
		Theme:       NewThemeSelection(c.themes[c.theme], c.darkMode, c.compactMode),
		Customizing: c.customizing,
		Dragging:    c.dragging,
		Dragged:     c.dragged,
		Loading:     c.loading > 0,
		Columns:     make([]ColumnView, len(c.columns)),
		Available:   c.availableLocked(),
		Layouts:     append([]LayoutTemplate(nil), c.opts.Layouts...),
		Themes:      append([]ColorTheme(nil), c.opts.Themes...),
	}
	for i, col := range c.columns {
		widgets := make([]Widget, 0, len(col.WidgetIDs))
		for _, id := range col.WidgetIDs {
			widgets = append(widgets, c.localizedLocked(id))
		}
		view.Columns[i] = ColumnView{ID: col.ID, Hovered: col.ID == c.hovered, Widgets: widgets}
	}
	return view
}

// AvailableWidgets lists catalog widgets that are not placed, in catalog order.
func (c *Customizer) AvailableWidgets() []Widget {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.availableLocked()
}

func (c *Customizer) availableLocked() []Widget {
	out := make([]Widget, 0, len(c.order))
	for _, id := range c.order {
		if !c.catalog[id].InUse {
			out = append(out, c.localizedLocked(id))
		}
	}
	return out
}

func (c *Customizer) localizedLocked(id string) Widget {
	w := c.catalog[id].clone()
	w.Title = w.TitleForLocale(c.opts.Locale)
	return w
}

// Catalog returns every widget visible to the customizer's role.
func (c *Customizer) Catalog() []Widget {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Widget, len(c.order))
	for i, id := range c.order {
		out[i] = c.catalog[id].clone()
	}
	return out
}

// Columns returns a copy of the current placements.
func (c *Customizer) Columns() []Column {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneColumns(c.columns)
}

// Layout returns the active layout template id.
func (c *Customizer) Layout() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layout
}

// Theme returns the active theme id.
func (c *Customizer) Theme() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.theme
}

// Dragging reports whether a drag is in progress and which widget it carries.
func (c *Customizer) Dragging() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dragged, c.dragging
}

// Hovered returns the column currently marked as drop target.
func (c *Customizer) Hovered() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hovered
}

// Customizing reports whether customization mode is on.
func (c *Customizer) Customizing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.customizing
}

// Loading reports whether a Save or Load is in flight.
func (c *Customizer) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading > 0
}

// InUse reports whether widgetID is placed.
func (c *Customizer) InUse(widgetID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.catalog[widgetID]
	return ok && w.InUse
}

// Snapshot captures the persistable state.
func (c *Customizer) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Customizer) snapshotLocked() Snapshot {
	cols := make([][]string, len(c.columns))
	for i, col := range c.columns {
		cols[i] = append([]string{}, col.WidgetIDs...)
	}
	return Snapshot{
		Version:     SnapshotVersion,
		Layout:      c.layout,
		Theme:       c.theme,
		DarkMode:    c.darkMode,
		CompactMode: c.compactMode,
		Columns:     cols,
		SavedAt:     c.opts.Now().UTC(),
	}
}

// Apply replaces the current state with snapshot. Malformed snapshots are
// rejected with ErrMalformedSnapshot and leave state untouched. Widgets no
// longer in the catalog are skipped and unknown themes use the default.
func (c *Customizer) Apply(snapshot Snapshot) error {
	c.mu.Lock()
	err := c.applyLocked(snapshot)
	var evt events.Event
	if err == nil {
		evt = c.event(EventLoaded, map[string]any{"layout": c.layout, "theme": c.theme})
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.emitter.Emit(evt)
	return nil
}

func (c *Customizer) applyLocked(snapshot Snapshot) error {
	if err := c.opts.Validator.ValidateSnapshot(snapshot); err != nil {
		return err
	}
	tmpl, ok := c.layouts[snapshot.Layout]
	if !ok {
		return fmt.Errorf("%w: unknown layout %s", ErrMalformedSnapshot, snapshot.Layout)
	}
	for _, w := range c.catalog {
		w.InUse = false
	}
	c.columns = emptyColumns(tmpl.Columns)
	var orphans []string
	for ci, ids := range snapshot.Columns {
		for _, id := range ids {
			w, known := c.catalog[id]
			if !known {
				continue
			}
			w.InUse = true
			if ci >= len(c.columns) {
				orphans = append(orphans, id)
				continue
			}
			c.columns[ci].WidgetIDs = append(c.columns[ci].WidgetIDs, id)
		}
	}
	for _, id := range orphans {
		idx := fewestChildren(c.columns)
		c.columns[idx].WidgetIDs = append(c.columns[idx].WidgetIDs, id)
	}
	c.layout = tmpl.ID
	c.theme = c.opts.DefaultTheme
	if _, ok := c.themes[snapshot.Theme]; ok {
		c.theme = snapshot.Theme
	}
	c.darkMode = snapshot.DarkMode
	c.compactMode = snapshot.CompactMode
	c.dragging = false
	c.dragged = ""
	c.hovered = ""
	return nil
}

// Save persists the current state. Failures notify once and keep local state.
func (c *Customizer) Save(ctx context.Context) error {
	if c.opts.Store == nil {
		return errMissingSnapshots
	}
	c.mu.Lock()
	snap := c.snapshotLocked()
	c.loading++
	c.mu.Unlock()

	err := c.opts.Store.Save(ctx, snap)

	c.mu.Lock()
	c.loading--
	c.mu.Unlock()

	if err != nil {
		c.telemetry.Record(ctx, "dashboard.customization.save_failed", map[string]any{
			"customizer": c.id,
			"error":      err.Error(),
		})
		c.opts.Notifier.Notify(ctx, LevelError, "Save failed", "Your dashboard changes could not be saved.")
		c.emitter.Emit(c.event(EventSaveFailed, map[string]any{"error": err.Error()}))
		return fmt.Errorf("dashboard: save customization: %w", err)
	}
	c.telemetry.Record(ctx, "dashboard.customization.saved", map[string]any{
		"customizer": c.id,
		"layout":     snap.Layout,
	})
	c.opts.Notifier.Notify(ctx, LevelSuccess, "Dashboard saved", "Your customization has been saved.")
	c.emitter.Emit(c.event(EventSaved, map[string]any{"layout": snap.Layout, "theme": snap.Theme}))
	return nil
}

// Load restores persisted state. An empty store keeps the current state, a
// malformed snapshot resets to defaults with one error notice, and a store
// failure notifies and returns the error without touching state.
func (c *Customizer) Load(ctx context.Context) error {
	if c.opts.Store == nil {
		return errMissingSnapshots
	}
	c.mu.Lock()
	c.loading++
	c.mu.Unlock()

	snap, err := c.opts.Store.Load(ctx)
	if errors.Is(err, ErrMalformedSnapshot) {
		snap, err = &Snapshot{}, nil
	}

	c.mu.Lock()
	c.loading--
	if err != nil {
		c.mu.Unlock()
		c.telemetry.Record(ctx, "dashboard.customization.load_failed", map[string]any{
			"customizer": c.id,
			"error":      err.Error(),
		})
		c.opts.Notifier.Notify(ctx, LevelError, "Load failed", "Your saved dashboard could not be loaded.")
		return fmt.Errorf("dashboard: load customization: %w", err)
	}
	if snap == nil {
		c.mu.Unlock()
		return nil
	}
	applyErr := c.applyLocked(*snap)
	if applyErr != nil {
		c.resetLocked()
	}
	evt := c.event(EventLoaded, map[string]any{
		"layout":   c.layout,
		"theme":    c.theme,
		"fallback": applyErr != nil,
	})
	c.mu.Unlock()

	if applyErr != nil {
		c.telemetry.Record(ctx, "dashboard.customization.malformed", map[string]any{
			"customizer": c.id,
			"error":      applyErr.Error(),
		})
		c.opts.Notifier.Notify(ctx, LevelError, "Layout reset", "Your saved dashboard was unreadable and has been reset.")
	}
	c.emitter.Emit(evt)
	return nil
}
