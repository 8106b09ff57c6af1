package entities

import "sync"

// EventType names what happened to a repository.
type EventType string

const (
	EventCommitted          EventType = "committed"
	EventMerged             EventType = "merged"
	EventPushed             EventType = "pushed"
	EventFetched            EventType = "fetched"
	EventReset              EventType = "reset"
	EventBranchDeleted      EventType = "branch-deleted"
	EventWorkingTreeChanged EventType = "working-tree-changed"
	EventRepositoryCreated  EventType = "repository-created"
)

// RepositoryEvent is published after a repository changed.
type RepositoryEvent struct {
	Type       EventType
	Repository Repository
	Detail     string
}

// Listener receives repository events.
type Listener interface {
	RepositoryChanged(event RepositoryEvent)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(event RepositoryEvent)

// RepositoryChanged calls the function.
func (f ListenerFunc) RepositoryChanged(event RepositoryEvent) { f(event) }

// EventBus is handed to the components that publish repository changes.
// Listeners are called synchronously on the publishing goroutine.
type EventBus struct {
	mu        sync.RWMutex
	listeners []Listener
}

// NewEventBus creates a bus without listeners.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a listener and returns a function removing it again.
func (b *EventBus) Subscribe(l Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, existing := range b.listeners {
			if existing == l {
				b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

// Publish notifies every listener. A nil bus drops the event.
func (b *EventBus) Publish(event RepositoryEvent) {
	if b == nil {
		return
	}
	b.mu.RLock()
	listeners := append([]Listener(nil), b.listeners...)
	b.mu.RUnlock()
	for _, l := range listeners {
		l.RepositoryChanged(event)
	}
}
