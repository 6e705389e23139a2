package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-uistate/pkg/persist"
)

// ErrNotApplied reports an operation the customizer ignored, such as placing
// a widget that is already in use or switching to an unknown layout.
var ErrNotApplied = errors.New("dashboard: operation not applied")

// ErrAnonymousViewer reports a save for a viewer with neither a user id nor a
// session id. Such viewers get a fresh customizer per call.
var ErrAnonymousViewer = errors.New("dashboard: anonymous viewer cannot persist")

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	Registry *Registry
	// Storage backs the default per-viewer snapshot store.
	Storage    persist.Store
	Codec      persist.Codec
	StorageKey string
	// StoreFactory overrides Storage when set.
	StoreFactory func(viewer ViewerContext) SnapshotStore
	// RemoteFactory mirrors snapshots through MirrorStore when set.
	RemoteFactory func(viewer ViewerContext) SnapshotStore
	Notifier      Notifier
	Broadcast     *BroadcastHook
	Telemetry     Telemetry
	DropZones     map[string]string
	DefaultLayout string
	DefaultTheme  string
}

// Service keeps one customizer per viewer for server-driven rendering.
type Service struct {
	opts Options

	mu       sync.Mutex
	sessions map[string]*Customizer
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.Storage == nil {
		opts.Storage = persist.NewMemoryStore()
	}
	if opts.Codec == nil {
		opts.Codec = persist.JSONCodec{}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{opts: opts, sessions: map[string]*Customizer{}}
}

// Registry exposes the catalog shared by every session.
func (s *Service) Registry() *Registry { return s.opts.Registry }

// Broadcast exposes the event fan-out, which may be nil.
func (s *Service) Broadcast() *BroadcastHook { return s.opts.Broadcast }

func sessionKey(viewer ViewerContext) string {
	switch {
	case viewer.UserID != "":
		return viewer.UserID
	case viewer.SessionID != "":
		return "session-" + viewer.SessionID
	default:
		return ""
	}
}

const sessionSourcePrefix = "customizer-"

// SessionSource is the event source of the viewer's cached customizer, or ""
// for anonymous viewers.
func SessionSource(viewer ViewerContext) string {
	if key := sessionKey(viewer); key != "" {
		return sessionSourcePrefix + key
	}
	return ""
}

func viewerLabel(viewer ViewerContext) string {
	if key := sessionKey(viewer); key != "" {
		return key
	}
	return "anonymous"
}

// Session returns the viewer's customizer, creating it and loading any
// persisted snapshot on first access. Viewers without a user or session id
// get an unshared customizer that is neither cached nor persisted.
func (s *Service) Session(ctx context.Context, viewer ViewerContext) (*Customizer, error) {
	key := sessionKey(viewer)
	if key == "" {
		return s.newCustomizer(viewer, "", nil)
	}
	s.mu.Lock()
	if c, ok := s.sessions[key]; ok {
		s.mu.Unlock()
		return c, nil
	}
	s.mu.Unlock()

	c, err := s.newCustomizer(viewer, SessionSource(viewer), s.storeFor(viewer))
	if err != nil {
		return nil, err
	}
	if err := c.Load(ctx); err != nil {
		s.opts.Telemetry.Record(ctx, "dashboard.session.load_failed", map[string]any{
			"viewer": key,
			"error":  err.Error(),
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[key]; ok {
		return existing, nil
	}
	if s.opts.Broadcast != nil {
		c.Subscribe(s.opts.Broadcast.Publish)
	}
	s.sessions[key] = c
	s.opts.Telemetry.Record(ctx, "dashboard.session.start", map[string]any{"viewer": key})
	return c, nil
}

func (s *Service) newCustomizer(viewer ViewerContext, id string, store SnapshotStore) (*Customizer, error) {
	opts := s.opts.Registry.CustomizerOptions(viewer)
	opts.ID = id
	opts.DropZones = s.opts.DropZones
	opts.DefaultLayout = s.opts.DefaultLayout
	opts.DefaultTheme = s.opts.DefaultTheme
	opts.Store = store
	opts.Notifier = s.opts.Notifier
	opts.Telemetry = s.opts.Telemetry
	c, err := NewCustomizer(opts)
	if err != nil {
		return nil, fmt.Errorf("dashboard: build session for %s: %w", viewerLabel(viewer), err)
	}
	return c, nil
}

// EndSession forgets the viewer's customizer. Unsaved changes are dropped.
func (s *Service) EndSession(viewer ViewerContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey(viewer))
}

// Sessions reports how many customizers are held.
func (s *Service) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Service) storeFor(viewer ViewerContext) SnapshotStore {
	var local SnapshotStore
	if s.opts.StoreFactory != nil {
		local = s.opts.StoreFactory(viewer)
	} else {
		local = NewKVSnapshotStore(s.opts.Storage, s.opts.Codec, SnapshotKey(s.opts.StorageKey, viewer))
	}
	if s.opts.RemoteFactory == nil {
		return local
	}
	return MirrorStore{Local: local, Remote: s.opts.RemoteFactory(viewer), Telemetry: s.opts.Telemetry}
}

// View returns the render-ready state for viewer.
func (s *Service) View(ctx context.Context, viewer ViewerContext) (View, error) {
	c, err := s.Session(ctx, viewer)
	if err != nil {
		return View{}, err
	}
	return c.View(), nil
}

// Snapshot returns the viewer's current persistable state.
func (s *Service) Snapshot(ctx context.Context, viewer ViewerContext) (Snapshot, error) {
	c, err := s.Session(ctx, viewer)
	if err != nil {
		return Snapshot{}, err
	}
	return c.Snapshot(), nil
}

// AddWidget places widgetID, into column when given, else by the
// fewest-children heuristic.
func (s *Service) AddWidget(ctx context.Context, viewer ViewerContext, widgetID, column string) error {
	return s.apply(ctx, viewer, "dashboard.widget.add", map[string]any{"widget_id": widgetID, "column_id": column}, func(c *Customizer) bool {
		if column == "" {
			return c.AddWidget(widgetID)
		}
		return c.PlaceAt(widgetID, column)
	})
}

// RemoveWidget takes widgetID off the dashboard.
func (s *Service) RemoveWidget(ctx context.Context, viewer ViewerContext, widgetID string) error {
	return s.apply(ctx, viewer, "dashboard.widget.remove", map[string]any{"widget_id": widgetID}, func(c *Customizer) bool {
		return c.RemoveWidget(widgetID)
	})
}

// MoveWidget reorders a placed widget.
func (s *Service) MoveWidget(ctx context.Context, viewer ViewerContext, widgetID, column string, index int) error {
	return s.apply(ctx, viewer, "dashboard.widget.move", map[string]any{"widget_id": widgetID, "column_id": column, "index": index}, func(c *Customizer) bool {
		return c.MoveWidget(widgetID, column, index)
	})
}

// ChangeLayout switches the viewer's layout template.
func (s *Service) ChangeLayout(ctx context.Context, viewer ViewerContext, layoutID string) error {
	return s.apply(ctx, viewer, "dashboard.layout.change", map[string]any{"layout": layoutID}, func(c *Customizer) bool {
		return c.ChangeLayout(layoutID)
	})
}

// DisplayUpdate carries optional theme and display mode changes.
type DisplayUpdate struct {
	Theme       string
	DarkMode    *bool
	CompactMode *bool
}

// UpdateDisplay applies theme and display mode changes. An unknown theme is
// reported after the mode toggles are applied.
func (s *Service) UpdateDisplay(ctx context.Context, viewer ViewerContext, update DisplayUpdate) error {
	return s.apply(ctx, viewer, "dashboard.display.update", map[string]any{"theme": update.Theme}, func(c *Customizer) bool {
		if update.DarkMode != nil {
			c.SetDarkMode(*update.DarkMode)
		}
		if update.CompactMode != nil {
			c.SetCompactMode(*update.CompactMode)
		}
		if update.Theme == "" {
			return true
		}
		return c.ChangeTheme(update.Theme)
	})
}

// Reset restores the viewer's defaults without saving.
func (s *Service) Reset(ctx context.Context, viewer ViewerContext) error {
	return s.apply(ctx, viewer, "dashboard.layout.reset", nil, func(c *Customizer) bool {
		c.ResetToDefault()
		return true
	})
}

// Save persists the viewer's customization.
func (s *Service) Save(ctx context.Context, viewer ViewerContext) error {
	if sessionKey(viewer) == "" {
		return ErrAnonymousViewer
	}
	c, err := s.Session(ctx, viewer)
	if err != nil {
		return err
	}
	return c.Save(ctx)
}

func (s *Service) apply(ctx context.Context, viewer ViewerContext, event string, payload map[string]any, fn func(*Customizer) bool) error {
	c, err := s.Session(ctx, viewer)
	if err != nil {
		return err
	}
	if !fn(c) {
		return ErrNotApplied
	}
	if payload == nil {
		payload = map[string]any{}
	}
	payload["viewer"] = viewerLabel(viewer)
	s.opts.Telemetry.Record(ctx, event, payload)
	return nil
}
