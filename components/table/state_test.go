package table

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-uistate/pkg/persist"
)

type failingStore struct {
	err error
}

func (s failingStore) Get(context.Context, string) ([]byte, error) { return nil, s.err }
func (s failingStore) Put(context.Context, string, []byte) error   { return s.err }
func (s failingStore) Delete(context.Context, string) error        { return s.err }

type notice struct {
	level string
	title string
}

type recordingNotifier struct {
	notices []notice
}

func (n *recordingNotifier) Notify(_ context.Context, level, title, _ string) {
	n.notices = append(n.notices, notice{level: level, title: title})
}

func fixedNow() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

func TestSnapshotSaveAndLoad(t *testing.T) {
	store := persist.NewMemoryStore()
	for _, codec := range []persist.Codec{persist.JSONCodec{}, persist.CBORCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			opts := Options{ID: "orders", Columns: ticketColumns(), Store: store, Codec: codec, Key: "tbl:" + codec.Name(), Now: fixedNow}
			first, err := NewEngine(opts)
			require.NoError(t, err)
			first.ToggleColumnVisibility("venue")
			first.ToggleColumnVisibility("sold")
			require.NoError(t, first.SetPageSize(25))
			require.NoError(t, first.Save(context.Background()))
			assert.False(t, first.Loading())

			second, err := NewEngine(opts)
			require.NoError(t, err)
			found, err := second.Load(context.Background())
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, []string{"venue", "sold"}, second.Snapshot().HiddenColumns)
			assert.Equal(t, 25, second.PageSize())
		})
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	e, err := NewEngine(Options{Columns: ticketColumns(), Store: persist.NewMemoryStore()})
	require.NoError(t, err)
	found, err := e.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, DefaultPageSize, e.PageSize())
}

func TestLoadCorruptSnapshotResets(t *testing.T) {
	store := persist.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), "tbl", []byte("{not json")))
	e, err := NewEngine(Options{Columns: ticketColumns(), Store: store, Key: "tbl", PageSize: 5})
	require.NoError(t, err)
	e.ToggleColumnVisibility("event")
	require.NoError(t, e.SetPageSize(50))

	found, err := e.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, e.Snapshot().HiddenColumns)
	assert.Equal(t, 5, e.PageSize())
}

func TestPersistenceFailures(t *testing.T) {
	boom := errors.New("boom")
	notifier := &recordingNotifier{}
	e, err := NewEngine(Options{Columns: ticketColumns(), Store: failingStore{err: boom}, Notifier: notifier})
	require.NoError(t, err)
	e.ToggleColumnVisibility("venue")

	require.ErrorIs(t, e.Save(context.Background()), boom)
	assert.Equal(t, []notice{{level: NoticeError, title: "Save failed"}}, notifier.notices)
	_, err = e.Load(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []notice{{level: NoticeError, title: "Save failed"}, {level: NoticeError, title: "Load failed"}}, notifier.notices)
	assert.Equal(t, []string{"venue"}, e.Snapshot().HiddenColumns)
	assert.False(t, e.Loading())

	bare, err := NewEngine(Options{})
	require.NoError(t, err)
	require.ErrorIs(t, bare.Save(context.Background()), ErrNoStore)
}

func TestCorruptSnapshotResetsWithOneNotice(t *testing.T) {
	store := persist.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), "tbl:orders", []byte("{broken")))
	notifier := &recordingNotifier{}
	e, err := NewEngine(Options{Columns: ticketColumns(), Store: store, Key: "tbl:orders", PageSize: 5, Notifier: notifier})
	require.NoError(t, err)
	e.ToggleColumnVisibility("venue")
	require.NoError(t, e.SetPageSize(2))

	found, err := e.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, e.Snapshot().HiddenColumns)
	assert.Equal(t, 5, e.PageSize())
	assert.Equal(t, []notice{{level: NoticeError, title: "Table reset"}}, notifier.notices)
}

func TestRestoreSkipsUnknownColumns(t *testing.T) {
	e := newTicketEngine(t)
	e.Restore(Snapshot{HiddenColumns: []string{"price", "gone"}, PageSize: 0})
	assert.Equal(t, []string{"price"}, e.Snapshot().HiddenColumns)
	assert.Equal(t, DefaultPageSize, e.PageSize())
}
