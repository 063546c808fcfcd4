package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventQueryRejected   EventType = "QueryRejected"
	EventLookupStarted   EventType = "LookupStarted"
	EventLookupSucceeded EventType = "LookupSucceeded"
	EventLookupNotFound  EventType = "LookupNotFound"
	EventLookupFailed    EventType = "LookupFailed"
	EventLookupDiscarded EventType = "LookupDiscarded"
	EventSearchReset     EventType = "SearchReset"
	EventConfigSaved     EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// QueryRejectedEvent is emitted when a submit fails validation
type QueryRejectedEvent struct {
	Query  string
	Reason error
}

func (e QueryRejectedEvent) Type() EventType { return EventQueryRejected }

// LookupStartedEvent is emitted when a lookup enters Pending
type LookupStartedEvent struct {
	Seq      uint64
	Username string
}

func (e LookupStartedEvent) Type() EventType { return EventLookupStarted }

// LookupSucceededEvent is emitted when a lookup found a user
type LookupSucceededEvent struct {
	Seq    uint64
	Record UserRecord
}

func (e LookupSucceededEvent) Type() EventType { return EventLookupSucceeded }

// LookupNotFoundEvent is emitted when the directory has no such user
type LookupNotFoundEvent struct {
	Seq      uint64
	Username string
}

func (e LookupNotFoundEvent) Type() EventType { return EventLookupNotFound }

// LookupFailedEvent carries a swallowed transport failure
type LookupFailedEvent struct {
	Seq      uint64
	Username string
	Err      error
}

func (e LookupFailedEvent) Type() EventType { return EventLookupFailed }

// LookupDiscardedEvent is emitted when a stale result arrives
type LookupDiscardedEvent struct {
	Seq      uint64
	Current  uint64 // in-flight sequence at the time, 0 if none
	Username string
}

func (e LookupDiscardedEvent) Type() EventType { return EventLookupDiscarded }

// SearchResetEvent is emitted when the controller returns to Idle
type SearchResetEvent struct{}

func (e SearchResetEvent) Type() EventType { return EventSearchReset }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
