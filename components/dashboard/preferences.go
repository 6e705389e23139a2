package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-uistate/pkg/persist"
	"github.com/goliatone/go-uistate/pkg/remote"
)

// DefaultStorageKey matches the key the browser used for local persistence.
const DefaultStorageKey = "hd_tickets_customization"

// SnapshotKey scopes the storage key to a viewer.
func SnapshotKey(prefix string, viewer ViewerContext) string {
	if prefix == "" {
		prefix = DefaultStorageKey
	}
	switch {
	case viewer.UserID != "":
		return prefix + ":" + viewer.UserID
	case viewer.SessionID != "":
		return prefix + ":session:" + viewer.SessionID
	default:
		return prefix
	}
}

// InMemorySnapshotStore keeps a single snapshot in memory.
type InMemorySnapshotStore struct {
	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewInMemorySnapshotStore creates an empty store.
func NewInMemorySnapshotStore() *InMemorySnapshotStore {
	return &InMemorySnapshotStore{}
}

// Save replaces the stored snapshot.
func (s *InMemorySnapshotStore) Save(_ context.Context, snapshot Snapshot) error {
	copied := cloneSnapshot(snapshot)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = &copied
	return nil
}

// Load returns the stored snapshot or nil.
func (s *InMemorySnapshotStore) Load(context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, nil
	}
	copied := cloneSnapshot(*s.snapshot)
	return &copied, nil
}

func cloneSnapshot(snapshot Snapshot) Snapshot {
	cols := make([][]string, len(snapshot.Columns))
	for i, col := range snapshot.Columns {
		cols[i] = append([]string{}, col...)
	}
	snapshot.Columns = cols
	return snapshot
}

// KVSnapshotStore encodes snapshots into a persist.Store under one key.
type KVSnapshotStore struct {
	Store persist.Store
	Codec persist.Codec
	Key   string
}

// NewKVSnapshotStore defaults the codec to JSON and the key to DefaultStorageKey.
func NewKVSnapshotStore(store persist.Store, codec persist.Codec, key string) *KVSnapshotStore {
	if codec == nil {
		codec = persist.JSONCodec{}
	}
	if key == "" {
		key = DefaultStorageKey
	}
	return &KVSnapshotStore{Store: store, Codec: codec, Key: key}
}

// Save encodes and stores snapshot.
func (s *KVSnapshotStore) Save(ctx context.Context, snapshot Snapshot) error {
	return persist.Save(ctx, s.Store, s.Codec, s.Key, snapshot)
}

// Load decodes the stored snapshot. Undecodable bytes report ErrMalformedSnapshot.
func (s *KVSnapshotStore) Load(ctx context.Context) (*Snapshot, error) {
	snap, err := persist.Load[Snapshot](ctx, s.Store, s.Codec, s.Key)
	if errors.Is(err, persist.ErrDecode) {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	return snap, err
}

// RemoteSnapshotStore mirrors snapshots to the host application's endpoint.
type RemoteSnapshotStore struct {
	Client *remote.Client
}

// Save posts the snapshot.
func (s RemoteSnapshotStore) Save(ctx context.Context, snapshot Snapshot) error {
	return s.Client.Save(ctx, snapshot)
}

// Load fetches the snapshot; a missing document is not an error.
func (s RemoteSnapshotStore) Load(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	if err := s.Client.Load(ctx, &snap); err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snap, nil
}

// MirrorStore writes locally first and mirrors to Remote on a best-effort
// basis. Remote failures are recorded, never returned.
type MirrorStore struct {
	Local     SnapshotStore
	Remote    SnapshotStore
	Telemetry Telemetry
}

// Save persists to Local, then Remote.
func (m MirrorStore) Save(ctx context.Context, snapshot Snapshot) error {
	if err := m.Local.Save(ctx, snapshot); err != nil {
		return err
	}
	if m.Remote == nil {
		return nil
	}
	if err := m.Remote.Save(ctx, snapshot); err != nil {
		normalizeTelemetry(m.Telemetry).Record(ctx, "dashboard.customization.mirror_failed", map[string]any{
			"operation": "save",
			"error":     err.Error(),
		})
	}
	return nil
}

// Load prefers Local and falls back to Remote, caching a remote hit locally.
func (m MirrorStore) Load(ctx context.Context) (*Snapshot, error) {
	snap, err := m.Local.Load(ctx)
	if err != nil || snap != nil || m.Remote == nil {
		return snap, err
	}
	snap, err = m.Remote.Load(ctx)
	if err != nil {
		normalizeTelemetry(m.Telemetry).Record(ctx, "dashboard.customization.mirror_failed", map[string]any{
			"operation": "load",
			"error":     err.Error(),
		})
		return nil, nil
	}
	if snap == nil {
		return nil, nil
	}
	if err := m.Local.Save(ctx, *snap); err != nil {
		normalizeTelemetry(m.Telemetry).Record(ctx, "dashboard.customization.cache_failed", map[string]any{
			"operation": "load",
			"error":     err.Error(),
		})
	}
	return snap, nil
}
