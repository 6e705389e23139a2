package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/goliatone/go-uistate/pkg/events"
)

// BroadcastHook fans engine events out to SSE and WebSocket subscribers.
// Slow subscribers drop events instead of blocking the engine.
type BroadcastHook struct {
	mu   sync.RWMutex
	subs map[int]subscriber
	next int
}

type subscriber struct {
	ch     chan events.Event
	accept func(events.Event) bool
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{
		subs: make(map[int]subscriber),
	}
}

// Publish delivers evt to every subscriber that accepts it. It satisfies
// events.Listener so it can be passed straight to an engine's Subscribe.
func (h *BroadcastHook) Publish(evt events.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.accept != nil && !sub.accept(evt) {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
		}
	}
}

// Subscribe returns a channel carrying every published event and a cancel func.
func (h *BroadcastHook) Subscribe() (<-chan events.Event, func()) {
	return h.subscribe(nil)
}

// SubscribeViewer returns a stream scoped to viewer: customizer events from
// other sessions are dropped, while shared sources such as toasts and tables
// pass through. Anonymous viewers receive no customizer events at all.
func (h *BroadcastHook) SubscribeViewer(viewer ViewerContext) (<-chan events.Event, func()) {
	own := SessionSource(viewer)
	return h.subscribe(func(evt events.Event) bool {
		if !strings.HasPrefix(evt.Source, sessionSourcePrefix) {
			return true
		}
		return own != "" && evt.Source == own
	})
}

func (h *BroadcastHook) subscribe(accept func(events.Event) bool) (<-chan events.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan events.Event, 16)
	h.subs[id] = subscriber{ch: ch, accept: accept}
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub.ch)
		}
	}
	return ch, cancel
}

// SubscribeContext scopes the stream to the viewer attached to ctx with
// ContextWithViewer, falling back to Subscribe.
func (h *BroadcastHook) SubscribeContext(ctx context.Context) (<-chan events.Event, func()) {
	if viewer, ok := ViewerFromContext(ctx); ok {
		return h.SubscribeViewer(viewer)
	}
	return h.Subscribe()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams events as JSON. A viewer
// attached with ContextWithViewer scopes the stream to that viewer.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	stream, cancel := h.SubscribeContext(r.Context())
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-stream:
			if !ok {
				return
			}
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		}
	}
}

// ServeSSE provides a Server-Sent Events endpoint.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	stream, cancel := h.SubscribeContext(r.Context())
	defer cancel()

	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-stream:
			if !ok {
				return
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				return
			}
			if _, err := w.Write([]byte("event: " + evt.Name + "\ndata: ")); err != nil {
				return
			}
			_, _ = w.Write(payload)
			_, _ = w.Write([]byte("\n\n"))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
