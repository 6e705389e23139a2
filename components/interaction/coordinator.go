package interaction

import (
	"sync"

	"github.com/goliatone/go-uistate/pkg/events"
)

// Coordinator closes sibling stores when one of them opens. It replaces the
// page-wide "currently open dropdown" global.
type Coordinator struct {
	mu      sync.Mutex
	members map[string]*member
}

type member struct {
	store  *Store
	cancel func()
}

// NewCoordinator builds an empty coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{members: make(map[string]*member)}
}

// Register subscribes to store and returns an unregister func.
func (c *Coordinator) Register(store *Store) func() {
	if store == nil {
		return func() {}
	}
	id := store.ID()
	cancel := store.Subscribe(func(evt events.Event) {
		if evt.Name == EventOpened {
			c.closeSiblings(id)
		}
	})
	c.mu.Lock()
	if prev, ok := c.members[id]; ok {
		prev.cancel()
	}
	c.members[id] = &member{store: store, cancel: cancel}
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if m, ok := c.members[id]; ok && m.store == store {
			m.cancel()
			delete(c.members, id)
		}
	}
}

// Open reports the id of the currently open member, if any.
func (c *Coordinator) Open() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, m := range c.members {
		if m.store.IsOpen() {
			return id, true
		}
	}
	return "", false
}

func (c *Coordinator) closeSiblings(openedID string) {
	c.mu.Lock()
	siblings := make([]*Store, 0, len(c.members))
	for id, m := range c.members {
		if id != openedID {
			siblings = append(siblings, m.store)
		}
	}
	c.mu.Unlock()
	for _, s := range siblings {
		s.Close()
	}
}
