package dashboard

import (
	"context"
	"time"
)

// SnapshotStore is the persistence sink for customizations. Load returns nil
// when nothing was saved.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
}

// SnapshotValidator rejects malformed persisted snapshots.
type SnapshotValidator interface {
	ValidateSnapshot(snapshot Snapshot) error
}

// Notifier surfaces user-facing messages (toasts) for persistence outcomes.
type Notifier interface {
	Notify(ctx context.Context, level, title, body string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, level, title, body string)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, level, title, body string) {
	f(ctx, level, title, body)
}

// Notification levels passed to Notifier.
const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"
)

// WidgetSize hints how much room a widget card needs.
type WidgetSize string

const (
	SizeSmall  WidgetSize = "small"
	SizeMedium WidgetSize = "medium"
	SizeLarge  WidgetSize = "large"
)

// CategoryAll marks widgets every role may place.
const CategoryAll = "all"

// Widget is a placeable dashboard card from the catalog.
type Widget struct {
	ID             string            `json:"id" yaml:"id"`
	Title          string            `json:"title" yaml:"title"`
	TitleLocalized map[string]string `json:"title_localized,omitempty" yaml:"title_localized,omitempty"`
	Description    string            `json:"description,omitempty" yaml:"description,omitempty"`
	Icon           string            `json:"icon,omitempty" yaml:"icon,omitempty"`
	Color          string            `json:"color,omitempty" yaml:"color,omitempty"`
	Category       string            `json:"category" yaml:"category"`
	Size           WidgetSize        `json:"size" yaml:"size"`
	InUse          bool              `json:"in_use" yaml:"-"`
}

// Column is a vertical placement slot in the grid.
type Column struct {
	ID        string   `json:"id"`
	WidgetIDs []string `json:"widget_ids"`
}

// LayoutTemplate describes a grid arrangement.
type LayoutTemplate struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Columns   int    `json:"columns" yaml:"columns"`
	GridClass string `json:"grid_class" yaml:"grid_class"`
}

// ColorTheme is a named primary color.
type ColorTheme struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Primary string `json:"primary" yaml:"primary"`
}

// SnapshotVersion is the current persisted format version.
const SnapshotVersion = 1

// Snapshot is the persisted customization document.
type Snapshot struct {
	Version     int        `json:"version" yaml:"version" cbor:"version"`
	Layout      string     `json:"layout" yaml:"layout" cbor:"layout"`
	Theme       string     `json:"theme" yaml:"theme" cbor:"theme"`
	DarkMode    bool       `json:"dark_mode" yaml:"dark_mode" cbor:"dark_mode"`
	CompactMode bool       `json:"compact_mode" yaml:"compact_mode" cbor:"compact_mode"`
	Columns     [][]string `json:"columns" yaml:"columns" cbor:"columns"`
	SavedAt     time.Time  `json:"saved_at,omitempty" yaml:"saved_at,omitempty" cbor:"saved_at,omitempty"`
}

// ViewerContext captures the active user/locale information needed to render dashboards.
type ViewerContext struct {
	UserID string `json:"user_id"`
	// SessionID keys guest sessions when UserID is empty.
	SessionID string   `json:"session_id,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	Locale    string   `json:"locale,omitempty"`
}

// PrimaryRole returns the first role, used for catalog filtering.
func (v ViewerContext) PrimaryRole() string {
	if len(v.Roles) == 0 {
		return ""
	}
	return v.Roles[0]
}
