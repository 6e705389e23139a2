package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-uistate/pkg/events"
)

// Event names emitted by a Customizer.
const (
	EventDragStarted    = "drag.started"
	EventDragOver       = "drag.over"
	EventDragEnded      = "drag.ended"
	EventWidgetPlaced   = "widget.placed"
	EventWidgetRemoved  = "widget.removed"
	EventWidgetMoved    = "widget.moved"
	EventLayoutChanged  = "layout.changed"
	EventThemeChanged   = "theme.changed"
	EventDisplayChanged = "display.changed"
	EventModeChanged    = "customizing.changed"
	EventReset          = "layout.reset"
	EventSaved          = "customization.saved"
	EventSaveFailed     = "customization.save_failed"
	EventLoaded         = "customization.loaded"
)

var (
	errNoLayouts        = errors.New("dashboard: at least one layout template is required")
	errEmptyWidgetID    = errors.New("dashboard: widget id is required")
	errInvalidColumns   = errors.New("dashboard: layout templates need at least one column")
	errUnknownDefault   = errors.New("dashboard: default layout is not a known template")
	errMissingSnapshots = errors.New("dashboard: snapshot store not configured")
)

// CustomizerOptions configures a Customizer. Nil collaborators fall back to
// safe defaults.
type CustomizerOptions struct {
	ID            string
	Catalog       []Widget
	Role          string
	Locale        string
	Layouts       []LayoutTemplate
	Themes        []ColorTheme
	DefaultLayout string
	DefaultTheme  string
	// DropZones maps renderer drop-zone ids to column ids.
	DropZones map[string]string
	Store     SnapshotStore
	Notifier  Notifier
	Validator SnapshotValidator
	Telemetry Telemetry
	Now       func() time.Time
}

// Customizer is the drag/drop placement engine behind the dashboard
// customizer. It never inspects markup; drop targets arrive as ids.
type Customizer struct {
	mu sync.Mutex

	id        string
	opts      CustomizerOptions
	order     []string
	catalog   map[string]*Widget
	layouts   map[string]LayoutTemplate
	themes    map[string]ColorTheme
	telemetry Telemetry

	columns     []Column
	layout      string
	theme       string
	darkMode    bool
	compactMode bool
	customizing bool

	dragging bool
	dragged  string
	hovered  string
	loading  int

	emitter events.Emitter
}

// NewCustomizer validates opts and builds an empty layout using the default
// template.
func NewCustomizer(opts CustomizerOptions) (*Customizer, error) {
	if opts.Catalog == nil {
		opts.Catalog = DefaultWidgets()
	}
	if opts.Layouts == nil {
		opts.Layouts = DefaultLayouts()
	}
	if opts.Themes == nil {
		opts.Themes = DefaultThemes()
	}
	if opts.DefaultLayout == "" {
		opts.DefaultLayout = DefaultLayoutID
	}
	if opts.DefaultTheme == "" {
		opts.DefaultTheme = DefaultThemeID
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	if opts.Notifier == nil {
		opts.Notifier = noopNotifier{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.Layouts) == 0 {
		return nil, errNoLayouts
	}
	c := &Customizer{
		id:        opts.ID,
		opts:      opts,
		catalog:   make(map[string]*Widget),
		layouts:   make(map[string]LayoutTemplate, len(opts.Layouts)),
		themes:    make(map[string]ColorTheme, len(opts.Themes)),
		telemetry: normalizeTelemetry(opts.Telemetry),
	}
	if c.id == "" {
		c.id = uuid.NewString()
	}
	for _, tmpl := range opts.Layouts {
		if tmpl.Columns < 1 {
			return nil, fmt.Errorf("%w: %s", errInvalidColumns, tmpl.ID)
		}
		c.layouts[tmpl.ID] = tmpl
	}
	if _, ok := c.layouts[opts.DefaultLayout]; !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownDefault, opts.DefaultLayout)
	}
	for _, theme := range opts.Themes {
		c.themes[theme.ID] = theme
	}
	for _, w := range FilterByRole(opts.Catalog, opts.Role) {
		if w.ID == "" {
			return nil, errEmptyWidgetID
		}
		if _, dup := c.catalog[w.ID]; dup {
			return nil, fmt.Errorf("dashboard: duplicate widget id %s", w.ID)
		}
		widget := w.clone()
		widget.InUse = false
		c.catalog[w.ID] = &widget
		c.order = append(c.order, w.ID)
	}
	c.resetLocked()
	return c, nil
}

// ID identifies the customizer in emitted events.
func (c *Customizer) ID() string { return c.id }

// Subscribe registers a change listener.
func (c *Customizer) Subscribe(fn events.Listener) func() {
	return c.emitter.Subscribe(fn)
}

// BeginDrag records widgetID as the widget being moved. Unknown ids are ignored.
func (c *Customizer) BeginDrag(widgetID string) bool {
	c.mu.Lock()
	if _, ok := c.catalog[widgetID]; !ok {
		c.mu.Unlock()
		return false
	}
	c.dragging = true
	c.dragged = widgetID
	c.hovered = ""
	evt := c.event(EventDragStarted, map[string]any{"widget_id": widgetID})
	c.mu.Unlock()
	c.emitter.Emit(evt)
	return true
}

// DragOver marks target as the single hovered column. Unresolvable targets
// clear the hover marker.
func (c *Customizer) DragOver(target string) {
	c.mu.Lock()
	if !c.dragging {
		c.mu.Unlock()
		return
	}
	idx := c.resolveColumnLocked(target)
	hovered := ""
	if idx >= 0 {
		hovered = c.columns[idx].ID
	}
	if hovered == c.hovered {
		c.mu.Unlock()
		return
	}
	c.hovered = hovered
	evt := c.event(EventDragOver, map[string]any{"column_id": hovered})
	c.mu.Unlock()
	c.emitter.Emit(evt)
}

// Drop places the dragged widget into target, or into the column with the
// fewest widgets when target does not resolve. The drag always ends.
func (c *Customizer) Drop(target string) bool {
	c.mu.Lock()
	if !c.dragging {
		c.mu.Unlock()
		return false
	}
	var evts []events.Event
	placed := false
	if w := c.catalog[c.dragged]; w != nil && !w.InUse {
		idx := c.resolveColumnLocked(target)
		if idx < 0 {
			idx = fewestChildren(c.columns)
		}
		evts = append(evts, c.placeLocked(w, idx))
		placed = true
	}
	evts = append(evts, c.endDragLocked()...)
	c.mu.Unlock()
	c.emitter.Emit(evts...)
	return placed
}

// CancelDrag ends a drag without placing anything.
func (c *Customizer) CancelDrag() {
	c.mu.Lock()
	evts := c.endDragLocked()
	c.mu.Unlock()
	c.emitter.Emit(evts...)
}

func (c *Customizer) endDragLocked() []events.Event {
	if !c.dragging {
		return nil
	}
	c.dragging = false
	c.dragged = ""
	c.hovered = ""
	return []events.Event{c.event(EventDragEnded, nil)}
}

// AddWidget places widgetID using the fewest-children heuristic.
func (c *Customizer) AddWidget(widgetID string) bool {
	c.mu.Lock()
	w := c.catalog[widgetID]
	if w == nil || w.InUse {
		c.mu.Unlock()
		return false
	}
	evt := c.placeLocked(w, fewestChildren(c.columns))
	c.mu.Unlock()
	c.emitter.Emit(evt)
	return true
}

// PlaceAt places widgetID into target in one step, falling back to the
// column with the fewest widgets when target does not resolve. A drag that
// carries the same widget ends.
func (c *Customizer) PlaceAt(widgetID, target string) bool {
	c.mu.Lock()
	w := c.catalog[widgetID]
	if w == nil || w.InUse {
		c.mu.Unlock()
		return false
	}
	idx := c.resolveColumnLocked(target)
	if idx < 0 {
		idx = fewestChildren(c.columns)
	}
	evts := []events.Event{c.placeLocked(w, idx)}
	if c.dragged == widgetID {
		evts = append(evts, c.endDragLocked()...)
	}
	c.mu.Unlock()
	c.emitter.Emit(evts...)
	return true
}

func (c *Customizer) placeLocked(w *Widget, idx int) events.Event {
	c.columns[idx].WidgetIDs = append(c.columns[idx].WidgetIDs, w.ID)
	w.InUse = true
	return c.event(EventWidgetPlaced, map[string]any{
		"widget_id": w.ID,
		"column_id": c.columns[idx].ID,
	})
}

// RemoveWidget takes widgetID out of its column and frees it in the catalog.
func (c *Customizer) RemoveWidget(widgetID string) bool {
	c.mu.Lock()
	w := c.catalog[widgetID]
	ci, wi := locateWidget(c.columns, widgetID)
	if w == nil || ci < 0 {
		c.mu.Unlock()
		return false
	}
	c.columns[ci].WidgetIDs = removeAt(c.columns[ci].WidgetIDs, wi)
	w.InUse = false
	evt := c.event(EventWidgetRemoved, map[string]any{
		"widget_id": widgetID,
		"column_id": c.columns[ci].ID,
	})
	c.mu.Unlock()
	c.emitter.Emit(evt)
	return true
}

// MoveWidget reorders a placed widget into target at position index. Indexes
// past the end append.
func (c *Customizer) MoveWidget(widgetID, target string, index int) bool {
	c.mu.Lock()
	ci, wi := locateWidget(c.columns, widgetID)
	dest := c.resolveColumnLocked(target)
	if ci < 0 || dest < 0 {
		c.mu.Unlock()
		return false
	}
	c.columns[ci].WidgetIDs = removeAt(c.columns[ci].WidgetIDs, wi)
	c.columns[dest].WidgetIDs = insertAt(c.columns[dest].WidgetIDs, index, widgetID)
	evt := c.event(EventWidgetMoved, map[string]any{
		"widget_id": widgetID,
		"column_id": c.columns[dest].ID,
		"index":     index,
	})
	c.mu.Unlock()
	c.emitter.Emit(evt)
	return true
}

// ChangeLayout switches the column template. Widgets from columns that no
// longer exist are reflowed with the fewest-children heuristic.
func (c *Customizer) ChangeLayout(layoutID string) bool {
	c.mu.Lock()
	tmpl, ok := c.layouts[layoutID]
	if !ok {
		c.mu.Unlock()
		return false
	}
	reflowed := c.applyTemplateLocked(tmpl)
	c.layout = tmpl.ID
	evt := c.event(EventLayoutChanged, map[string]any{
		"layout":   tmpl.ID,
		"columns":  tmpl.Columns,
		"reflowed": reflowed,
	})
	c.mu.Unlock()
	c.emitter.Emit(evt)
	return true
}

func (c *Customizer) applyTemplateLocked(tmpl LayoutTemplate) []string {
	cols, orphans := resizeColumns(c.columns, tmpl.Columns)
	c.columns = cols
	for _, id := range orphans {
		idx := fewestChildren(c.columns)
		c.columns[idx].WidgetIDs = append(c.columns[idx].WidgetIDs, id)
	}
	if c.hovered != "" && indexOfColumn(c.columns, c.hovered) < 0 {
		c.hovered = ""
	}
	return orphans
}

// ChangeTheme switches the color theme. Unknown ids are ignored.
func (c *Customizer) ChangeTheme(themeID string) bool {
	c.mu.Lock()
	theme, ok := c.themes[themeID]
	if !ok {
		c.mu.Unlock()
		return false
	}
	c.theme = theme.ID
	evt := c.event(EventThemeChanged, map[string]any{"theme": theme.ID, "primary": theme.Primary})
	c.mu.Unlock()
	c.emitter.Emit(evt)
	return true
}

// SetDarkMode toggles the dark palette.
func (c *Customizer) SetDarkMode(enabled bool) {
	c.setDisplay(&c.darkMode, "dark_mode", enabled)
}

// SetCompactMode toggles dense spacing.
func (c *Customizer) SetCompactMode(enabled bool) {
	c.setDisplay(&c.compactMode, "compact_mode", enabled)
}

func (c *Customizer) setDisplay(field *bool, name string, enabled bool) {
	c.mu.Lock()
	if *field == enabled {
		c.mu.Unlock()
		return
	}
	*field = enabled
	evt := c.event(EventDisplayChanged, map[string]any{name: enabled})
	c.mu.Unlock()
	c.emitter.Emit(evt)
}

// ToggleCustomizing flips customization mode. Leaving the mode cancels any drag.
func (c *Customizer) ToggleCustomizing() bool {
	c.mu.Lock()
	c.customizing = !c.customizing
	evts := []events.Event{c.event(EventModeChanged, map[string]any{"customizing": c.customizing})}
	if !c.customizing {
		evts = append(evts, c.endDragLocked()...)
	}
	state := c.customizing
	c.mu.Unlock()
	c.emitter.Emit(evts...)
	return state
}

// ResetToDefault clears every placement and restores the default layout,
// theme and display modes. Persisted state is untouched until the next Save.
func (c *Customizer) ResetToDefault() {
	c.mu.Lock()
	c.resetLocked()
	evt := c.event(EventReset, map[string]any{"layout": c.layout, "theme": c.theme})
	c.mu.Unlock()
	c.emitter.Emit(evt)
}

func (c *Customizer) resetLocked() {
	for _, w := range c.catalog {
		w.InUse = false
	}
	tmpl := c.layouts[c.opts.DefaultLayout]
	c.columns = emptyColumns(tmpl.Columns)
	c.layout = tmpl.ID
	c.theme = c.opts.DefaultTheme
	c.darkMode = false
	c.compactMode = false
	c.dragging = false
	c.dragged = ""
	c.hovered = ""
}

// resolveColumnLocked maps a drop-zone id or column id to a column index.
func (c *Customizer) resolveColumnLocked(target string) int {
	if target == "" {
		return -1
	}
	if mapped, ok := c.opts.DropZones[target]; ok {
		target = mapped
	}
	return indexOfColumn(c.columns, target)
}

func (c *Customizer) event(name string, payload map[string]any) events.Event {
	return events.Event{Name: name, Source: c.id, Payload: payload}
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, string, string, string) {}
