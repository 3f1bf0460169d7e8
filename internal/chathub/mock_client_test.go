package chathub_test

import (
	"chatterbox/backend/internal/chathub"
	"chatterbox/backend/internal/models"
)

// MockClient is a test double for the chathub.Client interface with a
// buffered receive channel so hub broadcasts never block.
type MockClient struct {
	connID string
	userID string
	Recv   chan models.Event
	closed bool
}

var _ chathub.Client = (*MockClient)(nil)

func newMockClient(connID, userID string) *MockClient {
	return newMockClientWithBuffer(connID, userID, 10)
}

// newMockClientWithBuffer builds a client whose receive buffer can be made
// tiny, so tests can overflow it and force the hub to drop the connection.
func newMockClientWithBuffer(connID, userID string, size int) *MockClient {
	return &MockClient{
		connID: connID,
		userID: userID,
		Recv:   make(chan models.Event, size),
	}
}

func (c *MockClient) GetConnID() string                   { return c.connID }
func (c *MockClient) GetUserID() string                   { return c.userID }
func (c *MockClient) GetSendChannel() chan<- models.Event { return c.Recv }

func (c *MockClient) Run() {}

func (c *MockClient) Close() {
	if !c.closed {
		c.closed = true
		close(c.Recv)
	}
}

// received drains one event without blocking; ok is false when nothing
// arrived.
func (c *MockClient) received() (models.Event, bool) {
	select {
	case evt, open := <-c.Recv:
		return evt, open
	default:
		return models.Event{}, false
	}
}
