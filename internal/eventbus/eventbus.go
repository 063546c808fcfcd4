package eventbus

import (
	"runtime/debug"
	"sync"

	"github.com/go-logr/logr"

	"usersearch/internal/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventQueryRejected   = domain.EventQueryRejected
	EventLookupStarted   = domain.EventLookupStarted
	EventLookupSucceeded = domain.EventLookupSucceeded
	EventLookupNotFound  = domain.EventLookupNotFound
	EventLookupFailed    = domain.EventLookupFailed
	EventLookupDiscarded = domain.EventLookupDiscarded
	EventSearchReset     = domain.EventSearchReset
	EventConfigSaved     = domain.EventConfigSaved
)

// Re-export domain event types
type QueryRejectedEvent = domain.QueryRejectedEvent
type LookupStartedEvent = domain.LookupStartedEvent
type LookupSucceededEvent = domain.LookupSucceededEvent
type LookupNotFoundEvent = domain.LookupNotFoundEvent
type LookupFailedEvent = domain.LookupFailedEvent
type LookupDiscardedEvent = domain.LookupDiscardedEvent
type SearchResetEvent = domain.SearchResetEvent
type ConfigSavedEvent = domain.ConfigSavedEvent

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	// Subscribe returns an unsubscribe function
	Subscribe(eventType EventType, handler EventHandler) func()
	Close()
}

type subscription struct {
	id      uint64
	handler EventHandler
}

// bus is the concrete implementation of EventBus
type bus struct {
	log       logr.Logger
	mu        sync.RWMutex
	handlers  map[EventType][]subscription
	nextID    uint64
	eventChan chan DomainEvent
	wg        sync.WaitGroup
	quit      chan struct{}
	closeOnce sync.Once
}

// New creates a new event bus and starts its dispatcher
func New(log logr.Logger) EventBus {
	b := &bus{
		log:       log.WithName("eventbus"),
		handlers:  make(map[EventType][]subscription),
		eventChan: make(chan DomainEvent, 256),
		quit:      make(chan struct{}),
	}

	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish queues an event for all subscribers. It never blocks; when the
// queue is full the event is dropped.
func (b *bus) Publish(event DomainEvent) {
	b.log.V(1).Info("publishing event", "type", event.Type())

	select {
	case <-b.quit:
		return
	default:
	}

	select {
	case b.eventChan <- event:
	default:
		b.log.Info("event bus channel full, dropping event", "type", event.Type())
	}
}

// Subscribe subscribes to events of a specific type
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Close stops the dispatcher. Events still queued are discarded.
func (b *bus) Close() {
	b.closeOnce.Do(func() {
		close(b.quit)
		b.wg.Wait()
	})
}

// dispatch handles event distribution to subscribers
func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventChan:
			b.mu.RLock()
			subs := b.handlers[event.Type()]
			// copy so handlers run without the lock held
			handlers := make([]EventHandler, len(subs))
			for i, s := range subs {
				handlers[i] = s.handler
			}
			b.mu.RUnlock()

			for _, handler := range handlers {
				b.call(handler, event)
			}

		case <-b.quit:
			for {
				select {
				case <-b.eventChan:
				default:
					return
				}
			}
		}
	}
}

func (b *bus) call(h EventHandler, event DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Info("event handler panic", "type", event.Type(), "panic", r, "stack", string(debug.Stack()))
		}
	}()
	h(event)
}
