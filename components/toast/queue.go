package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-uistate/pkg/clock"
	"github.com/goliatone/go-uistate/pkg/events"
)

// Options configures a Queue. Zero values fall back to the defaults above.
type Options struct {
	Scheduler       clock.Scheduler
	EnterDelay      time.Duration
	ExitDelay       time.Duration
	TickInterval    time.Duration
	DefaultDuration time.Duration
	// MaxVisible dismisses the oldest live entries beyond the limit. 0 disables.
	MaxVisible int
	// DedupeWindow coalesces identical kind/title/body within the window. 0 disables.
	DedupeWindow time.Duration
	// Limiter drops enqueues once exhausted. nil disables.
	Limiter     *rate.Limiter
	IDGenerator func() string
}

// Queue stacks toasts in insertion order, each with its own timers.
type Queue struct {
	mu      sync.Mutex
	opts    Options
	sched   clock.Scheduler
	entries []*entry
	byID    map[string]*entry
	closed  bool
	emitter events.Emitter
}

type entry struct {
	Entry
	elapsed   time.Duration
	expired   bool
	enterTime clock.Timer
	tickTime  clock.Timer
	exitTime  clock.Timer
}

// NewQueue builds an empty queue.
func NewQueue(opts Options) *Queue {
	if opts.EnterDelay <= 0 {
		opts.EnterDelay = DefaultEnterDelay
	}
	if opts.ExitDelay <= 0 {
		opts.ExitDelay = DefaultExitDelay
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.DefaultDuration <= 0 {
		opts.DefaultDuration = DefaultDuration
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = uuid.NewString
	}
	return &Queue{
		opts:  opts,
		sched: clock.Normalize(opts.Scheduler),
		byID:  make(map[string]*entry),
	}
}

// Subscribe registers a change listener.
func (q *Queue) Subscribe(fn events.Listener) func() {
	return q.emitter.Subscribe(fn)
}

// Enqueue appends a toast and returns its id. A zero duration is sticky and a
// negative one uses the queue default. An empty id means the limiter dropped it.
func (q *Queue) Enqueue(kind Kind, title, body string, duration time.Duration, extra map[string]any) string {
	q.mu.Lock()
	id, evts := q.enqueueLocked(kind, title, body, duration, extra)
	q.mu.Unlock()
	q.emitter.Emit(evts...)
	return id
}

// EnqueueKind uses the conventional duration for kind.
func (q *Queue) EnqueueKind(kind Kind, title, body string) string {
	return q.Enqueue(kind, title, body, DurationFor(kind), nil)
}

// Success enqueues a success toast.
func (q *Queue) Success(title, body string) string { return q.EnqueueKind(KindSuccess, title, body) }

// Error enqueues an error toast.
func (q *Queue) Error(title, body string) string { return q.EnqueueKind(KindError, title, body) }

// Warning enqueues a warning toast.
func (q *Queue) Warning(title, body string) string { return q.EnqueueKind(KindWarning, title, body) }

// Info enqueues an info toast.
func (q *Queue) Info(title, body string) string { return q.EnqueueKind(KindInfo, title, body) }

func (q *Queue) enqueueLocked(kind Kind, title, body string, duration time.Duration, extra map[string]any) (string, []events.Event) {
	if q.closed {
		return "", nil
	}
	now := q.sched.Now()
	if existing := q.duplicateLocked(kind, title, body, now); existing != nil {
		return existing.ID, nil
	}
	if q.opts.Limiter != nil && !q.opts.Limiter.AllowN(now, 1) {
		return "", nil
	}
	if kind == "" {
		kind = KindInfo
	}
	if duration < 0 {
		duration = q.opts.DefaultDuration
	}
	e := &entry{Entry: Entry{
		ID:             q.opts.IDGenerator(),
		Kind:           kind,
		Title:          title,
		Body:           body,
		Duration:       duration,
		RemainingRatio: 1,
		Phase:          PhaseEntering,
		Extra:          copyExtra(extra),
		CreatedAt:      now,
	}}
	q.entries = append(q.entries, e)
	q.byID[e.ID] = e

	id := e.ID
	e.enterTime = q.sched.AfterFunc(q.opts.EnterDelay, func() { q.onEnter(id) })
	if duration > 0 {
		q.scheduleTickLocked(e)
	}
	evts := []events.Event{q.event(EventEnqueued, e, nil)}
	evts = append(evts, q.enforceMaxVisibleLocked()...)
	return id, evts
}

func (q *Queue) duplicateLocked(kind Kind, title, body string, now time.Time) *entry {
	if q.opts.DedupeWindow <= 0 {
		return nil
	}
	for i := len(q.entries) - 1; i >= 0; i-- {
		e := q.entries[i]
		if e.Phase == PhaseLeaving || e.Phase == PhaseRemoved {
			continue
		}
		if e.Kind == kind && e.Title == title && e.Body == body && now.Sub(e.CreatedAt) <= q.opts.DedupeWindow {
			return e
		}
	}
	return nil
}

func (q *Queue) enforceMaxVisibleLocked() []events.Event {
	if q.opts.MaxVisible <= 0 {
		return nil
	}
	live := 0
	for _, e := range q.entries {
		if e.Phase != PhaseLeaving {
			live++
		}
	}
	var evts []events.Event
	for _, e := range q.entries {
		if live <= q.opts.MaxVisible {
			break
		}
		if e.Phase == PhaseLeaving {
			continue
		}
		evts = append(evts, q.dismissLocked(e)...)
		live--
	}
	return evts
}

func (q *Queue) scheduleTickLocked(e *entry) {
	step := q.opts.TickInterval
	if left := e.Duration - e.elapsed; left < step {
		step = left
	}
	id := e.ID
	e.tickTime = q.sched.AfterFunc(step, func() { q.onTick(id, step) })
}

func (q *Queue) onEnter(id string) {
	q.mu.Lock()
	e, ok := q.byID[id]
	if !ok || q.closed || e.Phase != PhaseEntering {
		q.mu.Unlock()
		return
	}
	e.enterTime = nil
	e.Phase = PhaseVisible
	e.Visible = true
	evt := q.event(EventVisible, e, nil)
	q.mu.Unlock()
	q.emitter.Emit(evt)
}

func (q *Queue) onTick(id string, step time.Duration) {
	q.mu.Lock()
	e, ok := q.byID[id]
	if !ok || q.closed || e.Phase == PhaseLeaving || e.Phase == PhaseRemoved {
		q.mu.Unlock()
		return
	}
	e.tickTime = nil
	e.elapsed += step
	ratio := float64(e.Duration-e.elapsed) / float64(e.Duration)
	if ratio < 0 {
		ratio = 0
	}
	e.RemainingRatio = ratio
	var evts []events.Event
	if e.elapsed >= e.Duration {
		e.expired = true
		evts = q.dismissLocked(e)
	} else {
		q.scheduleTickLocked(e)
	}
	q.mu.Unlock()
	q.emitter.Emit(evts...)
}

// Dismiss hides the entry now and forgets it after the exit delay. Unknown or
// already dismissed ids are ignored.
func (q *Queue) Dismiss(id string) {
	q.mu.Lock()
	var evts []events.Event
	if e, ok := q.byID[id]; ok && !q.closed {
		evts = q.dismissLocked(e)
	}
	q.mu.Unlock()
	q.emitter.Emit(evts...)
}

// DismissAll hides every live entry; each is forgotten after the exit delay.
func (q *Queue) DismissAll() {
	q.mu.Lock()
	var evts []events.Event
	if !q.closed {
		for _, e := range q.entries {
			evts = append(evts, q.dismissLocked(e)...)
		}
	}
	q.mu.Unlock()
	q.emitter.Emit(evts...)
}

func (q *Queue) dismissLocked(e *entry) []events.Event {
	if e.Phase == PhaseLeaving || e.Phase == PhaseRemoved {
		return nil
	}
	stopTimer(&e.enterTime)
	stopTimer(&e.tickTime)
	e.Visible = false
	e.Phase = PhaseLeaving
	id := e.ID
	e.exitTime = q.sched.AfterFunc(q.opts.ExitDelay, func() { q.onExit(id) })
	return []events.Event{q.event(EventDismissed, e, map[string]any{"expired": e.expired})}
}

func (q *Queue) onExit(id string) {
	q.mu.Lock()
	e, ok := q.byID[id]
	if !ok || q.closed || e.Phase != PhaseLeaving {
		q.mu.Unlock()
		return
	}
	e.exitTime = nil
	e.Phase = PhaseRemoved
	delete(q.byID, id)
	for i, candidate := range q.entries {
		if candidate == e {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			break
		}
	}
	evts := []events.Event{q.event(EventRemoved, e, nil)}
	if e.expired {
		payload := map[string]any{"duration": e.Duration.Milliseconds()}
		if loadingID, ok := e.Extra["loadingId"]; ok {
			payload["loadingId"] = loadingID
		}
		evts = append(evts, q.event(EventCompleted, e, payload))
	}
	q.mu.Unlock()
	q.emitter.Emit(evts...)
}

// Close cancels every pending timer and empties the queue. Later calls are no-ops.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	for _, e := range q.entries {
		stopTimer(&e.enterTime)
		stopTimer(&e.tickTime)
		stopTimer(&e.exitTime)
	}
	q.entries = nil
	q.byID = map[string]*entry{}
}

// Entries returns the queue in insertion order.
func (q *Queue) Entries() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Entry, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.snapshot()
	}
	return out
}

// Get returns a single entry.
func (q *Queue) Get(id string) (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.byID[id]
	if !ok {
		return Entry{}, false
	}
	return e.snapshot(), true
}

// Len returns the number of entries, leaving ones included.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

func (e *entry) snapshot() Entry {
	out := e.Entry
	out.Extra = copyExtra(e.Extra)
	return out
}

func (q *Queue) event(name string, e *entry, extra map[string]any) events.Event {
	payload := map[string]any{
		"id":   e.ID,
		"kind": string(e.Kind),
	}
	for k, v := range extra {
		payload[k] = v
	}
	return events.Event{Name: name, Source: e.ID, Payload: payload}
}

func stopTimer(t *clock.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

func copyExtra(extra map[string]any) map[string]any {
	if len(extra) == 0 {
		return nil
	}
	out := make(map[string]any, len(extra))
	for k, v := range extra {
		out[k] = v
	}
	return out
}
