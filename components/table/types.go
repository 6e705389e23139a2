// Package table holds the sort, filter, search and pagination state of a
// data table over an in-memory row collection.
package table

import (
	"errors"
	"time"
)

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ColumnType selects how FormatCell renders a value.
type ColumnType string

const (
	TypeText     ColumnType = "text"
	TypeCurrency ColumnType = "currency"
	TypeNumber   ColumnType = "number"
	TypeDate     ColumnType = "date"
	TypeDateTime ColumnType = "datetime"
)

// MobileLayout is the presentation used on narrow viewports.
type MobileLayout string

const (
	LayoutCards  MobileLayout = "cards"
	LayoutScroll MobileLayout = "scroll"
	LayoutStack  MobileLayout = "stack"
)

// DefaultPageSize matches the original table's items per page.
const DefaultPageSize = 10

// Event names.
const (
	EventRowsChanged     = "table.rows.changed"
	EventSearchChanged   = "table.search.changed"
	EventFilterChanged   = "table.filter.changed"
	EventSorted          = "table.sorted"
	EventPageChanged     = "table.page.changed"
	EventPageSizeChanged = "table.page_size.changed"
	EventColumnToggled   = "table.column.toggled"
	EventLayoutChanged   = "table.layout.changed"
	EventRestored        = "table.restored"
)

var (
	// ErrInvalidPageSize is returned for a negative page size.
	ErrInvalidPageSize = errors.New("table: page size must be positive")
	// ErrEmptyColumnKey is returned when a column has no key.
	ErrEmptyColumnKey = errors.New("table: column key is required")
	// ErrDuplicateColumn is returned when two columns share a key.
	ErrDuplicateColumn = errors.New("table: duplicate column key")
)

// Row is one opaque record.
type Row map[string]any

// Column describes a rendered column.
type Column struct {
	Key   string     `json:"key" yaml:"key"`
	Label string     `json:"label" yaml:"label"`
	Type  ColumnType `json:"type,omitempty" yaml:"type,omitempty"`
	// Unsortable disables SortBy for the column.
	Unsortable bool `json:"unsortable,omitempty" yaml:"unsortable,omitempty"`
	// HideOnMobile drops the column from mobile layouts.
	HideOnMobile bool `json:"hide_on_mobile,omitempty" yaml:"hide_on_mobile,omitempty"`
	Hidden       bool `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// Snapshot is the persisted presentation state of a table.
type Snapshot struct {
	HiddenColumns []string  `json:"hidden_columns"`
	PageSize      int       `json:"page_size"`
	SavedAt       time.Time `json:"saved_at"`
}
