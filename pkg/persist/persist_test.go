package persist

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type layoutDoc struct {
	Layout  string     `json:"layout" cbor:"layout"`
	Columns [][]string `json:"columns" cbor:"columns"`
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "hd_tickets_customization:u1")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "hd_tickets_customization:u1", []byte("first")))
	require.NoError(t, store.Put(ctx, "hd_tickets_customization:u1", []byte("second")))
	got, err := store.Get(ctx, "hd_tickets_customization:u1")
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	require.NoError(t, store.Delete(ctx, "hd_tickets_customization:u1"))
	require.NoError(t, store.Delete(ctx, "hd_tickets_customization:u1"))
	_, err = store.Get(ctx, "hd_tickets_customization:u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemoryStore()
	value := []byte("abc")
	require.NoError(t, store.Put(context.Background(), "k", value))
	value[0] = 'z'
	got, _ := store.Get(context.Background(), "k")
	assert.Equal(t, "abc", string(got))
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, store)

	_, err = NewFileStore("")
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	store, err := NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	exerciseStore(t, store)
}

type fakeRedis struct {
	data map[string]string
	ttl  map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	value, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = string(value.([]byte))
	f.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisStore(t *testing.T) {
	client := newFakeRedis()
	store := NewRedisStoreWithClient(client, "uistate:", time.Hour)
	exerciseStore(t, store)

	require.NoError(t, store.Put(context.Background(), "k", []byte("v")))
	assert.Contains(t, client.data, "uistate:k")
	assert.Equal(t, time.Hour, client.ttl["uistate:k"])

	client.err = errors.New("connection refused")
	_, err := store.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestTypedLoadSave(t *testing.T) {
	for _, codec := range []Codec{JSONCodec{}, CBORCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			ctx := context.Background()
			store := NewMemoryStore()

			missing, err := Load[layoutDoc](ctx, store, codec, "layout")
			require.NoError(t, err)
			assert.Nil(t, missing)

			doc := layoutDoc{Layout: "grid-2", Columns: [][]string{{"revenue-chart"}, {"support-tickets"}}}
			require.NoError(t, Save(ctx, store, codec, "layout", doc))
			loaded, err := Load[layoutDoc](ctx, store, codec, "layout")
			require.NoError(t, err)
			assert.Equal(t, doc, *loaded)
		})
	}
}

func TestTypedLoadReportsCorruptData(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), "layout", []byte("{not json")))
	_, err := Load[layoutDoc](context.Background(), store, JSONCodec{}, "layout")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestCodecByName(t *testing.T) {
	assert.Equal(t, "cbor", CodecByName("cbor").Name())
	assert.Equal(t, "json", CodecByName("").Name())
}
