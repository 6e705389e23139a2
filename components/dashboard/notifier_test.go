package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-uistate/components/toast"
	"github.com/goliatone/go-uistate/pkg/clock"
)

func TestToastNotifierSurfacesSaveFailure(t *testing.T) {
	sched := clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	queue := toast.NewQueue(toast.Options{Scheduler: sched})
	t.Cleanup(queue.Close)

	c, err := NewCustomizer(CustomizerOptions{
		Store:    &failingStore{err: errors.New("disk full")},
		Notifier: ToastNotifier{Queue: queue},
	})
	require.NoError(t, err)
	require.Error(t, c.Save(context.Background()))

	entries := queue.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, toast.KindError, entries[0].Kind)
	assert.Equal(t, "Save failed", entries[0].Title)
	assert.Equal(t, toast.DurationFor(toast.KindError), entries[0].Duration)
	assert.Equal(t, "assertive", entries[0].Live())
}

func TestToastNotifierWithoutQueue(t *testing.T) {
	ToastNotifier{}.Notify(context.Background(), LevelInfo, "ignored", "")
}
