package chathub

import "chatterbox/backend/internal/models"

// Client is the interface for one active connection. It abstracts the
// underlying transport so the hub can manage connections uniformly and tests
// can substitute doubles.
type Client interface {
	// GetConnID returns the connection's unique identity. Room broadcasts
	// use it to exclude the originating connection from relays.
	GetConnID() string
	// GetUserID returns the authenticated user behind the connection.
	GetUserID() string

	// GetSendChannel returns the channel the hub writes outbound events to.
	GetSendChannel() chan<- models.Event

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's outbound channel.
	Close()
}

// InboundEvent pairs a decoded wire event with the connection it came from.
type InboundEvent struct {
	Client Client
	Event  models.Event
}
