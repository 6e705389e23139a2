package table

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-uistate/pkg/persist"
)

// ErrNoStore is returned by Save and Load when no store is configured.
var ErrNoStore = errors.New("table: no snapshot store configured")

// NoticeError is the level passed to a Notifier when persistence fails.
const NoticeError = "error"

// Notifier surfaces persistence failures to the viewer.
type Notifier interface {
	Notify(ctx context.Context, level, title, body string)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, string, string, string) {}

// Page returns the current 1-based page.
func (e *Engine) Page() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.page
}

// PageSize returns the rows per page.
func (e *Engine) PageSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pageSize
}

// TotalPages is max(1, ceil(filtered / pageSize)).
func (e *Engine) TotalPages() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalPagesLocked()
}

// FilteredRows returns the filtered and sorted rows.
func (e *Engine) FilteredRows() []Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Row(nil), e.filtered...)
}

// FilteredCount returns the number of rows passing search and filters.
func (e *Engine) FilteredCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.filtered)
}

// PageRows returns the rows of the current page.
func (e *Engine) PageRows() []Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pageRowsLocked()
}

func (e *Engine) pageRowsLocked() []Row {
	start := (e.page - 1) * e.pageSize
	if start >= len(e.filtered) {
		return []Row{}
	}
	end := start + e.pageSize
	if end > len(e.filtered) {
		end = len(e.filtered)
	}
	return append([]Row(nil), e.filtered[start:end]...)
}

// VisiblePages returns the page numbers within two of the current page.
func (e *Engine) VisiblePages() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visiblePagesLocked()
}

func (e *Engine) visiblePagesLocked() []int {
	start := e.page - 2
	if start < 1 {
		start = 1
	}
	end := e.page + 2
	if total := e.totalPagesLocked(); end > total {
		end = total
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// Sort returns the sort column and direction. The column is empty when unsorted.
func (e *Engine) Sort() (string, Direction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sortColumn, e.sortDir
}

// AriaSort returns the aria-sort value for a column header.
func (e *Engine) AriaSort(key string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ariaSortLocked(key)
}

func (e *Engine) ariaSortLocked(key string) string {
	if e.sortColumn != key {
		return "none"
	}
	if e.sortDir == Descending {
		return "descending"
	}
	return "ascending"
}

// SearchTerm returns the global search term.
func (e *Engine) SearchTerm() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.search
}

// ColumnFilters returns a copy of the active column filters.
func (e *Engine) ColumnFilters() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]string, len(e.filters))
	for k, v := range e.filters {
		out[k] = v
	}
	return out
}

// Columns returns every column, hidden ones included.
func (e *Engine) Columns() []Column {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Column(nil), e.columns...)
}

// VisibleColumns returns the columns not hidden by the viewer.
func (e *Engine) VisibleColumns() []Column {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visibleColumnsLocked(false)
}

// MobileColumns returns visible columns that are kept on mobile layouts.
func (e *Engine) MobileColumns() []Column {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visibleColumnsLocked(true)
}

func (e *Engine) visibleColumnsLocked(mobile bool) []Column {
	out := make([]Column, 0, len(e.columns))
	for _, col := range e.columns {
		if col.Hidden || (mobile && col.HideOnMobile) {
			continue
		}
		out = append(out, col)
	}
	return out
}

// MobileLayout returns the current mobile presentation.
func (e *Engine) MobileLayout() MobileLayout {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mobile
}

// Loading reports whether Save or Load is in flight.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading > 0
}

// HeaderView is one rendered column header.
type HeaderView struct {
	Column
	AriaSort string `json:"aria_sort"`
	Sortable bool   `json:"sortable"`
}

// View is the render-ready description of the table.
type View struct {
	ID           string       `json:"id"`
	Headers      []HeaderView `json:"headers"`
	Cells        [][]string   `json:"cells"`
	Page         int          `json:"page"`
	PageSize     int          `json:"page_size"`
	TotalPages   int          `json:"total_pages"`
	VisiblePages []int        `json:"visible_pages"`
	Total        int          `json:"total"`
	Filtered     int          `json:"filtered"`
	Search       string       `json:"search"`
	MobileLayout MobileLayout `json:"mobile_layout"`
	Loading      bool         `json:"loading"`
	Empty        bool         `json:"empty"`
}

// View formats the current page for rendering.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	cols := e.visibleColumnsLocked(false)
	headers := make([]HeaderView, len(cols))
	for i, col := range cols {
		headers[i] = HeaderView{Column: col, AriaSort: e.ariaSortLocked(col.Key), Sortable: !col.Unsortable}
	}
	rows := e.pageRowsLocked()
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(cols))
		for j, col := range cols {
			cells[i][j] = e.opts.Formatter.Format(row[col.Key], col.Type)
		}
	}
	return View{
		ID:           e.id,
		Headers:      headers,
		Cells:        cells,
		Page:         e.page,
		PageSize:     e.pageSize,
		TotalPages:   e.totalPagesLocked(),
		VisiblePages: e.visiblePagesLocked(),
		Total:        len(e.rows),
		Filtered:     len(e.filtered),
		Search:       e.search,
		MobileLayout: e.mobile,
		Loading:      e.loading > 0,
		Empty:        len(e.filtered) == 0,
	}
}

// Snapshot captures column visibility and page size.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	hidden := []string{}
	for _, col := range e.columns {
		if col.Hidden {
			hidden = append(hidden, col.Key)
		}
	}
	return Snapshot{HiddenColumns: hidden, PageSize: e.pageSize, SavedAt: e.opts.Now().UTC()}
}

// Restore applies snapshot. Unknown columns are skipped and a non-positive
// page size keeps the current one.
func (e *Engine) Restore(snapshot Snapshot) {
	e.mu.Lock()
	e.applyLocked(snapshot)
	evt := e.event(EventRestored, map[string]any{"hidden": len(snapshot.HiddenColumns), "page_size": e.pageSize})
	e.mu.Unlock()
	e.emitter.Emit(evt)
}

func (e *Engine) applyLocked(snapshot Snapshot) {
	hidden := make(map[string]bool, len(snapshot.HiddenColumns))
	for _, key := range snapshot.HiddenColumns {
		hidden[key] = true
	}
	for i := range e.columns {
		e.columns[i].Hidden = hidden[e.columns[i].Key]
	}
	if snapshot.PageSize > 0 && snapshot.PageSize != e.pageSize {
		e.pageSize = snapshot.PageSize
		e.page = 1
	}
	e.clampPageLocked()
}

func (e *Engine) resetLocked() {
	for i := range e.columns {
		e.columns[i].Hidden = false
		for _, col := range e.opts.Columns {
			if col.Key == e.columns[i].Key {
				e.columns[i].Hidden = col.Hidden
			}
		}
	}
	e.pageSize = e.opts.PageSize
	e.page = 1
	e.clampPageLocked()
}

// Save persists the current Snapshot.
func (e *Engine) Save(ctx context.Context) error {
	if e.opts.Store == nil {
		return ErrNoStore
	}
	e.mu.Lock()
	snap := e.snapshotLocked()
	e.loading++
	e.mu.Unlock()

	err := persist.Save(ctx, e.opts.Store, e.opts.Codec, e.opts.Key, snap)

	e.mu.Lock()
	e.loading--
	e.mu.Unlock()
	if err != nil {
		e.opts.Notifier.Notify(ctx, NoticeError, "Save failed", "Your table preferences could not be saved.")
		return fmt.Errorf("table: save %s: %w", e.opts.Key, err)
	}
	return nil
}

// Load restores a persisted Snapshot and reports whether one was found. A
// corrupt snapshot resets column visibility and page size to defaults.
func (e *Engine) Load(ctx context.Context) (bool, error) {
	if e.opts.Store == nil {
		return false, ErrNoStore
	}
	e.mu.Lock()
	e.loading++
	e.mu.Unlock()

	snap, err := persist.Load[Snapshot](ctx, e.opts.Store, e.opts.Codec, e.opts.Key)

	e.mu.Lock()
	e.loading--
	switch {
	case errors.Is(err, persist.ErrDecode):
		e.resetLocked()
		evt := e.event(EventRestored, map[string]any{"fallback": true, "page_size": e.pageSize})
		e.mu.Unlock()
		e.emitter.Emit(evt)
		e.opts.Notifier.Notify(ctx, NoticeError, "Table reset", "Your saved table preferences were unreadable and have been reset.")
		return false, nil
	case err != nil:
		e.mu.Unlock()
		e.opts.Notifier.Notify(ctx, NoticeError, "Load failed", "Your table preferences could not be loaded.")
		return false, fmt.Errorf("table: load %s: %w", e.opts.Key, err)
	case snap == nil:
		e.mu.Unlock()
		return false, nil
	}
	e.applyLocked(*snap)
	evt := e.event(EventRestored, map[string]any{"hidden": len(snap.HiddenColumns), "page_size": e.pageSize})
	e.mu.Unlock()
	e.emitter.Emit(evt)
	return true, nil
}
