package dashboard

import (
	"context"

	"github.com/goliatone/go-uistate/components/toast"
)

// ToastNotifier surfaces customizer outcomes on a notification queue.
type ToastNotifier struct {
	Queue *toast.Queue
}

// Notify enqueues a toast using the conventional duration for level.
func (n ToastNotifier) Notify(_ context.Context, level, title, body string) {
	if n.Queue == nil {
		return
	}
	kind := toast.KindInfo
	switch level {
	case LevelSuccess:
		kind = toast.KindSuccess
	case LevelError:
		kind = toast.KindError
	}
	n.Queue.EnqueueKind(kind, title, body)
}
