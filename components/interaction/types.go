package interaction

import (
	"errors"
	"fmt"
)

// Mode selects single or bounded-multi selection.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeMulti  Mode = "multi"
)

// Event names emitted by a Store.
const (
	EventOpened           = "opened"
	EventClosed           = "closed"
	EventSelectionChanged = "selection.changed"
	EventSearchChanged    = "search.changed"
	EventLimitReached     = "limit.reached"
	EventFocusSearch      = "focus.search"
)

// Keys understood by HandleKey.
const (
	KeyEscape    = "Escape"
	KeyEnter     = "Enter"
	KeyArrowDown = "ArrowDown"
	KeyArrowUp   = "ArrowUp"
)

var (
	errEmptyOptionID     = errors.New("interaction: option id is required")
	errNegativeMax       = errors.New("interaction: max selections cannot be negative")
	errUnknownMode       = errors.New("interaction: unknown selection mode")
	errSingleMaxMismatch = errors.New("interaction: single-select cannot set max selections above 1")
)

// Option is one selectable entry. The display text resolves from Label, then
// Value formatted with %v, then ID.
type Option struct {
	ID       string `json:"id"`
	Label    string `json:"label,omitempty"`
	Value    any    `json:"value,omitempty"`
	Group    string `json:"group,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Text returns the display text for the option.
func (o Option) Text() string {
	if o.Label != "" {
		return o.Label
	}
	if o.Value != nil {
		if s := fmt.Sprintf("%v", o.Value); s != "" {
			return s
		}
	}
	return o.ID
}

// SelectResult reports what Select did.
type SelectResult int

const (
	// Ignored means the option was unknown, disabled, or the store was torn down.
	Ignored SelectResult = iota
	Selected
	Deselected
	// LimitReached means a multi-select was at capacity; nothing changed.
	LimitReached
)

func (r SelectResult) String() string {
	switch r {
	case Selected:
		return "selected"
	case Deselected:
		return "deselected"
	case LimitReached:
		return "limit_reached"
	default:
		return "ignored"
	}
}

// ARIA exposes the toggle semantics the rendering layer must mirror.
type ARIA struct {
	Expanded         bool   `json:"aria_expanded"`
	ActiveDescendant string `json:"aria_activedescendant,omitempty"`
	Multiselectable  bool   `json:"aria_multiselectable"`
}
