package models

import "encoding/json"

// Realtime event names. Inbound events are consumed by the dispatcher,
// outbound events are emitted into rooms.
const (
	EventRegisterSession = "register-session"
	EventJoinRoom        = "join-room"
	EventTypingStart     = "typing-start"
	EventTypingStop      = "typing-stop"
	EventMessageSent     = "message-sent"
	EventReadReceipt     = "read-receipt"

	EventSessionReady        = "session-ready"
	EventMessageReceived     = "message-received"
	EventNotificationCreated = "notification-created"
	EventReadReceiptAck      = "read-receipt-ack"
)

// Event is the wire envelope for the websocket surface.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent marshals the payload into an envelope. Marshal failures surface
// to the caller so a bad payload is dropped instead of sent half-built.
func NewEvent(name string, payload any) (Event, error) {
	if payload == nil {
		return Event{Name: name}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Name: name, Data: data}, nil
}

// RoomEvent is the envelope published on the redis relay: the target room,
// the event, and the originating connection id so the origin can be excluded
// from local broadcast (typing relays never echo back to their source).
type RoomEvent struct {
	Room   string `json:"room"`
	Origin string `json:"origin,omitempty"`
	Event  Event  `json:"payload"`
}

// RegisterSessionPayload binds a connection to the user's room.
type RegisterSessionPayload struct {
	UserID string `json:"userId" validate:"required"`
}

// JoinRoomPayload binds a connection to a chat room.
type JoinRoomPayload struct {
	ChatID string `json:"chatId" validate:"required"`
}

// TypingPayload is relayed verbatim to the other connections in the room.
type TypingPayload struct {
	ChatID string  `json:"chatId" validate:"required"`
	User   Profile `json:"user"`
}

// TypingRelay is the outbound half of a typing event.
type TypingRelay struct {
	User Profile `json:"user"`
}

// ReadReceiptPayload marks everything in the chat as read by the user.
type ReadReceiptPayload struct {
	ChatID string `json:"chatId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
}

// ReadReceiptAck confirms the batch read to the chat room.
type ReadReceiptAck struct {
	ChatID     string   `json:"chatId"`
	User       Profile  `json:"user"`
	MessageIDs []string `json:"messageIds"`
}

// NotificationPush is the live notification payload delivered alongside a
// stored Notification record.
type NotificationPush struct {
	Chat    *Chat   `json:"chat"`
	Sender  Profile `json:"sender"`
	Content string  `json:"content"`
}
