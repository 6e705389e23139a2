package uistate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-uistate/components/table"
	"github.com/goliatone/go-uistate/components/toast"
	"github.com/goliatone/go-uistate/pkg/config"
)

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("disk gone") }
func (brokenStore) Put(context.Context, string, []byte) error   { return errors.New("disk gone") }
func (brokenStore) Delete(context.Context, string) error        { return errors.New("disk gone") }

func fileConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Backend = "file"
	cfg.Storage.Dir = t.TempDir()
	cfg.Table.PageSize = 5
	cfg.Table.Locale = "es-ES"
	return cfg
}

func TestOpenWiresServiceAndToasts(t *testing.T) {
	cfg := fileConfig(t)
	rt, err := Open(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	stream, cancel := rt.Broadcast.Subscribe()
	defer cancel()

	ctx := context.Background()
	viewer := ViewerContext{UserID: "facade"}
	require.NoError(t, rt.Service.AddWidget(ctx, viewer, "recent-activity", ""))
	require.NoError(t, rt.Service.Save(ctx, viewer))

	entries := rt.Toasts.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Dashboard saved", entries[0].Title)
	assert.NotEmpty(t, stream)

	reopened, err := Open(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	snap, err := reopened.Service.Snapshot(ctx, viewer)
	require.NoError(t, err)
	assert.Contains(t, snap.Columns[0], "recent-activity")
}

func TestRuntimeTableUsesConfig(t *testing.T) {
	rt, err := Open(fileConfig(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	engine, err := rt.NewTable(TableOptions{
		ID:      "orders",
		Columns: []table.Column{{Key: "id", Label: "ID", Type: table.TypeNumber}},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, engine.PageSize())

	require.NoError(t, engine.SetPageSize(20))
	require.NoError(t, engine.Save(context.Background()))

	again, err := rt.NewTable(TableOptions{ID: "orders", Columns: []table.Column{{Key: "id"}}})
	require.NoError(t, err)
	ok, err := again.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 20, again.PageSize())
}

func TestRuntimeTableSurfacesPersistenceFailure(t *testing.T) {
	rt, err := Open(fileConfig(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	engine, err := rt.NewTable(TableOptions{ID: "orders", Columns: []table.Column{{Key: "id"}}, Store: brokenStore{}})
	require.NoError(t, err)
	require.Error(t, engine.Save(context.Background()))

	entries := rt.Toasts.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, toast.KindError, entries[0].Kind)
	assert.Equal(t, "Save failed", entries[0].Title)
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "etcd"
	_, err := Open(cfg, nil)
	assert.Error(t, err)
}

func TestProxies(t *testing.T) {
	store, err := NewInteraction(InteractionConfig{ID: "teams"})
	require.NoError(t, err)
	assert.NotNil(t, store)

	q := NewToastQueue(ToastOptions{})
	defer q.Close()
	q.Info("Heads up", "")
	assert.Equal(t, 1, q.Len())

	_, err = NewTable(TableOptions{PageSize: -1})
	assert.Error(t, err)
	assert.NotNil(t, NewService(Options{}))
}
