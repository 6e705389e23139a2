// Package events carries the named change notifications every engine emits.
package events

import "sync"

// Event is one logical state change.
type Event struct {
	Name    string         `json:"name"`
	Source  string         `json:"source,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Listener receives events synchronously.
type Listener func(Event)

// Emitter fans events out to listeners in subscription order.
type Emitter struct {
	mu        sync.RWMutex
	next      int
	order     []int
	listeners map[int]Listener
}

// Subscribe registers fn and returns a cancel func.
func (e *Emitter) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[int]Listener)
	}
	id := e.next
	e.next++
	e.listeners[id] = fn
	e.order = append(e.order, id)
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, ok := e.listeners[id]; !ok {
			return
		}
		delete(e.listeners, id)
		for i, candidate := range e.order {
			if candidate == id {
				e.order = append(e.order[:i], e.order[i+1:]...)
				break
			}
		}
	}
}

// Emit delivers each event to every listener. Callers must not hold locks that
// listeners may need.
func (e *Emitter) Emit(evts ...Event) {
	if len(evts) == 0 {
		return
	}
	e.mu.RLock()
	listeners := make([]Listener, 0, len(e.order))
	for _, id := range e.order {
		listeners = append(listeners, e.listeners[id])
	}
	e.mu.RUnlock()
	for _, evt := range evts {
		for _, fn := range listeners {
			fn(evt)
		}
	}
}

// Recorder collects events, handy in tests and for replaying to late subscribers.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Record appends evt.
func (r *Recorder) Record(evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

// Events returns a copy of everything recorded.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Names returns the recorded event names in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, evt := range r.events {
		names[i] = evt.Name
	}
	return names
}
