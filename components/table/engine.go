package table

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/goliatone/go-uistate/pkg/events"
	"github.com/goliatone/go-uistate/pkg/persist"
)

// Options configures an Engine.
type Options struct {
	ID           string
	Columns      []Column
	Rows         []Row
	PageSize     int
	MobileLayout MobileLayout
	Formatter    *Formatter
	// Store persists Snapshot values under Key.
	Store persist.Store
	Codec persist.Codec
	Key   string
	Cache *ChartCache
	// Notifier receives one error notice per failed Save or Load.
	Notifier Notifier
	Now      func() time.Time
}

// Engine derives the filtered, sorted and paginated view of a row set.
type Engine struct {
	mu      sync.Mutex
	id      string
	opts    Options
	columns []Column
	index   map[string]int
	rows    []Row

	filtered   []Row
	search     string
	filters    map[string]string
	sortColumn string
	sortDir    Direction
	page       int
	pageSize   int
	mobile     MobileLayout
	loading    int
	revision   uint64

	emitter events.Emitter
}

// NewEngine validates opts and computes the initial view. A negative page
// size, an empty column key or a duplicate column key is an error.
func NewEngine(opts Options) (*Engine, error) {
	if opts.PageSize < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, opts.PageSize)
	}
	if opts.PageSize == 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.MobileLayout == "" {
		opts.MobileLayout = LayoutCards
	}
	if opts.Formatter == nil {
		opts.Formatter = NewFormatter(DefaultLocale)
	}
	if opts.Codec == nil {
		opts.Codec = persist.JSONCodec{}
	}
	if opts.Key == "" {
		opts.Key = "uistate:table:" + opts.ID
	}
	if opts.Cache == nil {
		opts.Cache = NewChartCache(DefaultChartTTL)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Notifier == nil {
		opts.Notifier = noopNotifier{}
	}
	e := &Engine{
		id:       opts.ID,
		opts:     opts,
		index:    make(map[string]int, len(opts.Columns)),
		filters:  map[string]string{},
		sortDir:  Ascending,
		page:     1,
		pageSize: opts.PageSize,
		mobile:   opts.MobileLayout,
	}
	for _, col := range opts.Columns {
		if col.Key == "" {
			return nil, ErrEmptyColumnKey
		}
		if _, dup := e.index[col.Key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, col.Key)
		}
		if col.Label == "" {
			col.Label = col.Key
		}
		if col.Type == "" {
			col.Type = TypeText
		}
		e.index[col.Key] = len(e.columns)
		e.columns = append(e.columns, col)
	}
	e.rows = append([]Row(nil), opts.Rows...)
	e.recomputeLocked()
	return e, nil
}

// ID returns the engine id used as event source.
func (e *Engine) ID() string { return e.id }

// Subscribe registers a change listener.
func (e *Engine) Subscribe(fn events.Listener) func() {
	return e.emitter.Subscribe(fn)
}

func (e *Engine) event(name string, payload map[string]any) events.Event {
	return events.Event{Name: name, Source: e.id, Payload: payload}
}

// SetRows replaces the source rows and recomputes the view.
func (e *Engine) SetRows(rows []Row) {
	e.mu.Lock()
	e.rows = append([]Row(nil), rows...)
	e.recomputeLocked()
	evt := e.event(EventRowsChanged, map[string]any{"rows": len(e.rows), "filtered": len(e.filtered)})
	e.mu.Unlock()
	e.emitter.Emit(evt)
}

// SetGlobalSearch keeps rows where any column contains text, ignoring case.
// Surrounding whitespace is trimmed, as for column filters. A changed term
// resets the page to 1.
func (e *Engine) SetGlobalSearch(text string) {
	text = strings.TrimSpace(text)
	e.mu.Lock()
	if text == e.search {
		e.mu.Unlock()
		return
	}
	e.search = text
	e.page = 1
	e.recomputeLocked()
	evt := e.event(EventSearchChanged, map[string]any{"term": text, "filtered": len(e.filtered)})
	e.mu.Unlock()
	e.emitter.Emit(evt)
}

// ClearSearch drops the global search term.
func (e *Engine) ClearSearch() { e.SetGlobalSearch("") }

// SetColumnFilter narrows rows to those whose column contains text. Filters
// compose with AND. Empty text removes the filter. Unknown keys are ignored.
func (e *Engine) SetColumnFilter(key, text string) bool {
	e.mu.Lock()
	if _, ok := e.index[key]; !ok {
		e.mu.Unlock()
		return false
	}
	text = strings.TrimSpace(text)
	current, had := e.filters[key]
	if (text == "" && !had) || (had && current == text) {
		e.mu.Unlock()
		return true
	}
	if text == "" {
		delete(e.filters, key)
	} else {
		e.filters[key] = text
	}
	e.page = 1
	e.recomputeLocked()
	evt := e.event(EventFilterChanged, map[string]any{"column": key, "text": text, "filtered": len(e.filtered)})
	e.mu.Unlock()
	e.emitter.Emit(evt)
	return true
}

// ClearColumnFilters drops every column filter.
func (e *Engine) ClearColumnFilters() {
	e.mu.Lock()
	if len(e.filters) == 0 {
		e.mu.Unlock()
		return
	}
	e.filters = map[string]string{}
	e.page = 1
	e.recomputeLocked()
	evt := e.event(EventFilterChanged, map[string]any{"cleared": true, "filtered": len(e.filtered)})
	e.mu.Unlock()
	e.emitter.Emit(evt)
}

// SortBy sorts ascending by key, or flips the direction when key is already
// the sort column. Unknown and unsortable columns are ignored.
func (e *Engine) SortBy(key string) bool {
	e.mu.Lock()
	idx, ok := e.index[key]
	if !ok || e.columns[idx].Unsortable {
		e.mu.Unlock()
		return false
	}
	if e.sortColumn == key {
		if e.sortDir == Ascending {
			e.sortDir = Descending
		} else {
			e.sortDir = Ascending
		}
	} else {
		e.sortColumn = key
		e.sortDir = Ascending
	}
	e.recomputeLocked()
	evt := e.event(EventSorted, map[string]any{"column": key, "direction": string(e.sortDir)})
	e.mu.Unlock()
	e.emitter.Emit(evt)
	return true
}

// GoToPage clamps n into [1, TotalPages] and returns the resulting page.
func (e *Engine) GoToPage(n int) int {
	e.mu.Lock()
	prev := e.page
	e.page = n
	e.clampPageLocked()
	page := e.page
	if page == prev {
		e.mu.Unlock()
		return page
	}
	evt := e.event(EventPageChanged, map[string]any{"page": page, "total_pages": e.totalPagesLocked()})
	e.mu.Unlock()
	e.emitter.Emit(evt)
	return page
}

// NextPage advances one page, staying on the last page.
func (e *Engine) NextPage() int { return e.GoToPage(e.Page() + 1) }

// PrevPage goes back one page, staying on the first page.
func (e *Engine) PrevPage() int { return e.GoToPage(e.Page() - 1) }

// SetPageSize changes the page size and returns to page 1.
func (e *Engine) SetPageSize(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, n)
	}
	e.mu.Lock()
	if n == e.pageSize {
		e.mu.Unlock()
		return nil
	}
	e.pageSize = n
	e.page = 1
	evt := e.event(EventPageSizeChanged, map[string]any{"page_size": n, "total_pages": e.totalPagesLocked()})
	e.mu.Unlock()
	e.emitter.Emit(evt)
	return nil
}

// ToggleColumnVisibility shows or hides a column. Row membership is unaffected.
func (e *Engine) ToggleColumnVisibility(key string) bool {
	e.mu.Lock()
	idx, ok := e.index[key]
	if !ok {
		e.mu.Unlock()
		return false
	}
	e.columns[idx].Hidden = !e.columns[idx].Hidden
	evt := e.event(EventColumnToggled, map[string]any{"column": key, "visible": !e.columns[idx].Hidden})
	e.mu.Unlock()
	e.emitter.Emit(evt)
	return true
}

// ToggleMobileLayout switches between card and scroll layouts.
func (e *Engine) ToggleMobileLayout() MobileLayout {
	e.mu.Lock()
	if e.mobile == LayoutCards {
		e.mobile = LayoutScroll
	} else {
		e.mobile = LayoutCards
	}
	layout := e.mobile
	evt := e.event(EventLayoutChanged, map[string]any{"layout": string(layout)})
	e.mu.Unlock()
	e.emitter.Emit(evt)
	return layout
}

func (e *Engine) recomputeLocked() {
	term := fold(e.search)
	filters := make(map[string]string, len(e.filters))
	for key, text := range e.filters {
		filters[key] = fold(text)
	}
	out := make([]Row, 0, len(e.rows))
	for _, row := range e.rows {
		if e.matchesLocked(row, term, filters) {
			out = append(out, row)
		}
	}
	if e.sortColumn != "" {
		key, desc := e.sortColumn, e.sortDir == Descending
		sort.SliceStable(out, func(i, j int) bool {
			cmp := compareValues(out[i][key], out[j][key])
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}
	e.filtered = out
	e.revision++
	e.clampPageLocked()
}

func (e *Engine) matchesLocked(row Row, term string, filters map[string]string) bool {
	for key, text := range filters {
		if !strings.Contains(fold(stringify(row[key])), text) {
			return false
		}
	}
	if term == "" {
		return true
	}
	if len(e.columns) == 0 {
		for _, value := range row {
			if value != nil && strings.Contains(fold(stringify(value)), term) {
				return true
			}
		}
		return false
	}
	for _, col := range e.columns {
		value := row[col.Key]
		if value != nil && strings.Contains(fold(stringify(value)), term) {
			return true
		}
	}
	return false
}

func (e *Engine) totalPagesLocked() int {
	n := len(e.filtered)
	if n == 0 {
		return 1
	}
	return (n + e.pageSize - 1) / e.pageSize
}

func (e *Engine) clampPageLocked() {
	if e.page < 1 {
		e.page = 1
	}
	if total := e.totalPagesLocked(); e.page > total {
		e.page = total
	}
}

func fold(s string) string {
	if s == "" {
		return ""
	}
	return cases.Fold().String(norm.NFC.String(s))
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// compareValues orders numerically when both values parse as numbers and
// lexicographically otherwise.
func compareValues(a, b any) int {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(stringify(a), stringify(b))
}

// toFloat reports finite numbers only, so NaN and infinities sort as text.
func toFloat(v any) (float64, bool) {
	f, ok := rawFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func rawFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case interface{ Float64() (float64, error) }:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
