package ui

import (
	"usersearch/internal/eventbus"
	"usersearch/internal/search"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// lookupResultMsg carries a settled lookup back to the update loop
type lookupResultMsg struct {
	result search.Result
}

// avatarMsg carries a rendered avatar for url
type avatarMsg struct {
	url      string
	rendered string
	err      error
}
