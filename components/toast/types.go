package toast

import (
	"time"
)

// Kind classifies a toast. Domain kinds are plain strings.
type Kind string

const (
	KindSuccess         Kind = "success"
	KindError           Kind = "error"
	KindWarning         Kind = "warning"
	KindInfo            Kind = "info"
	KindPriceAlert      Kind = "price_alert"
	KindPurchaseSuccess Kind = "purchase_success"
)

// Phase tracks the enter/exit transition state machine.
type Phase string

const (
	PhaseEntering Phase = "entering"
	PhaseVisible  Phase = "visible"
	PhaseLeaving  Phase = "leaving"
	PhaseRemoved  Phase = "removed"
)

// Event names emitted by a Queue.
const (
	EventEnqueued  = "toast.enqueued"
	EventVisible   = "toast.visible"
	EventDismissed = "toast.dismissed"
	EventRemoved   = "toast.removed"
	EventCompleted = "toast.completed"
)

const (
	DefaultEnterDelay   = 50 * time.Millisecond
	DefaultExitDelay    = 150 * time.Millisecond
	DefaultTickInterval = 100 * time.Millisecond
	DefaultDuration     = 5 * time.Second
)

var kindDurations = map[Kind]time.Duration{
	KindSuccess:         5 * time.Second,
	KindError:           7 * time.Second,
	KindWarning:         6 * time.Second,
	KindInfo:            5 * time.Second,
	KindPriceAlert:      10 * time.Second,
	KindPurchaseSuccess: 15 * time.Second,
}

// DurationFor returns the conventional display time for kind.
func DurationFor(kind Kind) time.Duration {
	if d, ok := kindDurations[kind]; ok {
		return d
	}
	return DefaultDuration
}

// Entry is a read-only view of one toast.
type Entry struct {
	ID             string         `json:"id"`
	Kind           Kind           `json:"kind"`
	Title          string         `json:"title"`
	Body           string         `json:"body"`
	Duration       time.Duration  `json:"duration"`
	RemainingRatio float64        `json:"remaining_ratio"`
	Visible        bool           `json:"visible"`
	Phase          Phase          `json:"phase"`
	Extra          map[string]any `json:"extra,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Sticky reports whether the entry never auto-dismisses.
func (e Entry) Sticky() bool { return e.Duration == 0 }

// Progress returns the remaining ratio as a whole percentage.
func (e Entry) Progress() int {
	return int(e.RemainingRatio*100 + 0.5)
}

// Live returns the aria-live politeness for the entry.
func (e Entry) Live() string {
	if e.Kind == KindError {
		return "assertive"
	}
	return "polite"
}

// Role returns the ARIA role matching Live.
func (e Entry) Role() string {
	if e.Kind == KindError {
		return "alert"
	}
	return "status"
}
