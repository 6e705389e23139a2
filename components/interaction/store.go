package interaction

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/goliatone/go-uistate/pkg/clock"
	"github.com/goliatone/go-uistate/pkg/events"
)

// Config describes a widget instance at mount time.
type Config struct {
	ID            string
	Options       []Option
	Mode          Mode
	MaxSelections int
	// CloseOnSelect applies to single-select; nil means true.
	CloseOnSelect *bool
	Searchable    bool
	Initial       []string
	Scheduler     clock.Scheduler
}

// Store backs dropdowns, multi-selects and menus. Each instance belongs to one
// mount point; the mutex only guards against the focus timer callback.
type Store struct {
	mu sync.Mutex

	id            string
	mode          Mode
	maxSelections int
	closeOnSelect bool
	searchable    bool

	options []Option
	index   map[string]int

	open      bool
	search    string
	selection []string
	active    string

	sched      clock.Scheduler
	focusTimer clock.Timer
	torn       bool

	emitter events.Emitter
}

// New validates cfg and builds a closed Store.
func New(cfg Config) (*Store, error) {
	mode := cfg.Mode
	if mode == "" {
		mode = ModeSingle
	}
	if mode != ModeSingle && mode != ModeMulti {
		return nil, fmt.Errorf("%w: %q", errUnknownMode, mode)
	}
	if cfg.MaxSelections < 0 {
		return nil, errNegativeMax
	}
	if mode == ModeSingle && cfg.MaxSelections > 1 {
		return nil, errSingleMaxMismatch
	}
	s := &Store{
		id:            cfg.ID,
		mode:          mode,
		maxSelections: cfg.MaxSelections,
		closeOnSelect: true,
		searchable:    cfg.Searchable,
		options:       make([]Option, 0, len(cfg.Options)),
		index:         make(map[string]int, len(cfg.Options)),
		sched:         clock.Normalize(cfg.Scheduler),
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if cfg.CloseOnSelect != nil {
		s.closeOnSelect = *cfg.CloseOnSelect
	}
	for _, opt := range cfg.Options {
		if opt.ID == "" {
			return nil, errEmptyOptionID
		}
		if _, dup := s.index[opt.ID]; dup {
			return nil, fmt.Errorf("interaction: duplicate option id %q", opt.ID)
		}
		s.index[opt.ID] = len(s.options)
		s.options = append(s.options, opt)
	}
	s.seedSelection(cfg.Initial)
	return s, nil
}

// seedSelection drops stale ids from persisted state instead of failing.
func (s *Store) seedSelection(initial []string) {
	for _, id := range initial {
		idx, ok := s.index[id]
		if !ok || s.options[idx].Disabled || s.contains(id) {
			continue
		}
		if s.mode == ModeSingle {
			s.selection = []string{id}
			return
		}
		if s.atCapacity() {
			return
		}
		s.selection = append(s.selection, id)
	}
}

// ID identifies the store in emitted events.
func (s *Store) ID() string { return s.id }

// Subscribe registers a change listener.
func (s *Store) Subscribe(fn events.Listener) func() {
	return s.emitter.Subscribe(fn)
}

// Open shows the panel. Search-enabled stores schedule a focus request for the
// next render pass.
func (s *Store) Open() {
	s.mu.Lock()
	evts := s.openLocked()
	s.mu.Unlock()
	s.emitter.Emit(evts...)
}

func (s *Store) openLocked() []events.Event {
	if s.torn || s.open {
		return nil
	}
	s.open = true
	s.search = ""
	s.active = ""
	if s.searchable {
		s.scheduleFocusLocked()
	}
	return []events.Event{s.event(EventOpened, nil)}
}

func (s *Store) scheduleFocusLocked() {
	if s.focusTimer != nil {
		s.focusTimer.Stop()
	}
	s.focusTimer = s.sched.AfterFunc(0, func() {
		s.mu.Lock()
		if s.torn || !s.open {
			s.mu.Unlock()
			return
		}
		s.focusTimer = nil
		evt := s.event(EventFocusSearch, nil)
		s.mu.Unlock()
		s.emitter.Emit(evt)
	})
}

// Close hides the panel and clears the search text. Selection is untouched.
func (s *Store) Close() {
	s.mu.Lock()
	evts := s.closeLocked()
	s.mu.Unlock()
	s.emitter.Emit(evts...)
}

// OutsideClick is the dismissal path for clicks outside the widget.
func (s *Store) OutsideClick() { s.Close() }

func (s *Store) closeLocked() []events.Event {
	if s.torn {
		return nil
	}
	wasOpen := s.open
	s.open = false
	s.search = ""
	s.active = ""
	if s.focusTimer != nil {
		s.focusTimer.Stop()
		s.focusTimer = nil
	}
	if !wasOpen {
		return nil
	}
	return []events.Event{s.event(EventClosed, nil)}
}

// Toggle flips visibility.
func (s *Store) Toggle() {
	s.mu.Lock()
	var evts []events.Event
	if s.open {
		evts = s.closeLocked()
	} else {
		evts = s.openLocked()
	}
	s.mu.Unlock()
	s.emitter.Emit(evts...)
}

// Select applies single or multi selection rules to id.
func (s *Store) Select(id string) SelectResult {
	s.mu.Lock()
	result, evts := s.selectLocked(id)
	s.mu.Unlock()
	s.emitter.Emit(evts...)
	return result
}

func (s *Store) selectLocked(id string) (SelectResult, []events.Event) {
	if s.torn {
		return Ignored, nil
	}
	idx, ok := s.index[id]
	if !ok || s.options[idx].Disabled {
		return Ignored, nil
	}
	if s.mode == ModeSingle {
		var evts []events.Event
		if len(s.selection) != 1 || s.selection[0] != id {
			s.selection = []string{id}
			evts = append(evts, s.selectionEvent())
		}
		if s.closeOnSelect {
			evts = append(evts, s.closeLocked()...)
		}
		return Selected, evts
	}
	if s.contains(id) {
		s.remove(id)
		return Deselected, []events.Event{s.selectionEvent()}
	}
	if s.atCapacity() {
		return LimitReached, []events.Event{s.event(EventLimitReached, map[string]any{
			"value": id,
			"max":   s.maxSelections,
		})}
	}
	s.selection = append(s.selection, id)
	return Selected, []events.Event{s.selectionEvent()}
}

// Clear empties the selection.
func (s *Store) Clear() {
	s.mu.Lock()
	if s.torn || len(s.selection) == 0 {
		s.mu.Unlock()
		return
	}
	s.selection = nil
	evt := s.selectionEvent()
	s.mu.Unlock()
	s.emitter.Emit(evt)
}

// SetSearch filters the visible options. Setting the same text twice is a no-op.
func (s *Store) SetSearch(text string) {
	s.mu.Lock()
	if s.torn || s.search == text {
		s.mu.Unlock()
		return
	}
	s.search = text
	if s.active != "" && !s.navigable(s.active) {
		s.active = ""
	}
	evt := s.event(EventSearchChanged, map[string]any{"term": text})
	s.mu.Unlock()
	s.emitter.Emit(evt)
}

// HandleKey routes keyboard input. Enter on an open panel selects the active
// option when there is one.
func (s *Store) HandleKey(key string) {
	s.mu.Lock()
	var evts []events.Event
	switch key {
	case KeyEscape:
		evts = s.closeLocked()
	case KeyEnter:
		if !s.open {
			evts = s.openLocked()
		} else if s.active != "" {
			_, evts = s.selectLocked(s.active)
		}
	case KeyArrowDown:
		s.moveActiveLocked(1)
	case KeyArrowUp:
		s.moveActiveLocked(-1)
	}
	s.mu.Unlock()
	s.emitter.Emit(evts...)
}

func (s *Store) moveActiveLocked(step int) {
	if s.torn || !s.open {
		return
	}
	candidates := s.navigableOptions()
	if len(candidates) == 0 {
		s.active = ""
		return
	}
	pos := -1
	for i, opt := range candidates {
		if opt.ID == s.active {
			pos = i
			break
		}
	}
	switch {
	case pos < 0 && step > 0:
		pos = 0
	case pos < 0:
		pos = len(candidates) - 1
	default:
		pos = (pos + step + len(candidates)) % len(candidates)
	}
	s.active = candidates[pos].ID
}

// Teardown cancels pending timers. Every later operation is a no-op.
func (s *Store) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.focusTimer != nil {
		s.focusTimer.Stop()
		s.focusTimer = nil
	}
	s.torn = true
	s.open = false
}

// IsOpen reports panel visibility.
func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// SearchTerm returns the current filter text.
func (s *Store) SearchTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search
}

// Selected returns selected ids in selection order.
func (s *Store) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.selection...)
}

// IsSelected reports whether id is selected.
func (s *Store) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contains(id)
}

// AtCapacity reports whether a bounded multi-select is full.
func (s *Store) AtCapacity() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode == ModeMulti && s.atCapacity()
}

// Options returns the immutable mount snapshot.
func (s *Store) Options() []Option {
	return append([]Option(nil), s.options...)
}

// VisibleOptions returns the options matching the search term, disabled
// entries included.
func (s *Store) VisibleOptions() []Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleOptions()
}

// ActiveOption returns the keyboard cursor target.
func (s *Store) ActiveOption() (Option, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == "" {
		return Option{}, false
	}
	return s.options[s.index[s.active]], true
}

// ARIA returns the accessibility state for the widget root.
func (s *Store) ARIA() ARIA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ARIA{
		Expanded:         s.open,
		ActiveDescendant: s.active,
		Multiselectable:  s.mode == ModeMulti,
	}
}

func (s *Store) visibleOptions() []Option {
	if s.search == "" {
		return append([]Option(nil), s.options...)
	}
	needle := fold(s.search)
	out := make([]Option, 0, len(s.options))
	for _, opt := range s.options {
		if strings.Contains(fold(opt.Text()), needle) {
			out = append(out, opt)
		}
	}
	return out
}

func (s *Store) navigableOptions() []Option {
	visible := s.visibleOptions()
	out := visible[:0]
	for _, opt := range visible {
		if !opt.Disabled {
			out = append(out, opt)
		}
	}
	return out
}

func (s *Store) navigable(id string) bool {
	for _, opt := range s.navigableOptions() {
		if opt.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) contains(id string) bool {
	for _, selected := range s.selection {
		if selected == id {
			return true
		}
	}
	return false
}

func (s *Store) remove(id string) {
	for i, selected := range s.selection {
		if selected == id {
			s.selection = append(s.selection[:i], s.selection[i+1:]...)
			return
		}
	}
}

func (s *Store) atCapacity() bool {
	return s.maxSelections > 0 && len(s.selection) >= s.maxSelections
}

func (s *Store) selectionEvent() events.Event {
	if s.mode == ModeMulti {
		return s.event(EventSelectionChanged, map[string]any{
			"selected": append([]string{}, s.selection...),
		})
	}
	value, text := "", ""
	if len(s.selection) == 1 {
		value = s.selection[0]
		text = s.options[s.index[value]].Text()
	}
	return s.event(EventSelectionChanged, map[string]any{
		"value": value,
		"text":  text,
	})
}

func (s *Store) event(name string, payload map[string]any) events.Event {
	return events.Event{Name: name, Source: s.id, Payload: payload}
}

// fold normalizes text for case-insensitive matching, including non-ASCII
// labels such as "Atlético".
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
