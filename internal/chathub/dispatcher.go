package chathub

import (
	"encoding/json"
	"errors"
	"log"

	"chatterbox/backend/internal/models"
	"chatterbox/backend/internal/storage"
)

// handleEvent routes one inbound event. Malformed payloads are dropped with
// a log line; no failure here ever terminates the connection. Events from a
// connection the hub has already dropped are ignored, since its read pump
// can still deliver a few before it notices the teardown.
func (m *ManagerService) handleEvent(client Client, evt models.Event) {
	if _, ok := m.clients[client]; !ok {
		log.Printf("WARNING: Ignoring %q from dropped client %s", evt.Name, client.GetConnID())
		return
	}

	switch evt.Name {
	case models.EventRegisterSession:
		m.handleRegisterSession(client, evt.Data)
	case models.EventJoinRoom:
		m.handleJoinRoom(client, evt.Data)
	case models.EventTypingStart, models.EventTypingStop:
		m.handleTyping(client, evt.Name, evt.Data)
	case models.EventMessageSent:
		m.handleMessageSent(evt.Data)
	case models.EventReadReceipt:
		m.handleReadReceipt(client, evt.Data)
	default:
		log.Printf("WARNING: Unknown event %q from client %s", evt.Name, client.GetConnID())
	}
}

// handleRegisterSession binds the connection to the user's room and
// acknowledges directly. Idempotent per connection.
func (m *ManagerService) handleRegisterSession(client Client, data json.RawMessage) {
	var payload models.RegisterSessionPayload
	if err := m.decode(data, &payload); err != nil {
		log.Printf("WARNING: Dropping register-session: %v", err)
		return
	}

	m.joinRoom(client, payload.UserID)
	m.sendDirect(client, models.EventSessionReady, nil)
}

// handleJoinRoom binds the connection to a chat room. Membership is not
// checked here; it is enforced at the message-creation layer.
func (m *ManagerService) handleJoinRoom(client Client, data json.RawMessage) {
	var payload models.JoinRoomPayload
	if err := m.decode(data, &payload); err != nil {
		log.Printf("WARNING: Dropping join-room: %v", err)
		return
	}

	m.joinRoom(client, payload.ChatID)
}

// handleTyping relays a typing indicator to every other connection in the
// chat room. Pure relay: nothing is persisted and nothing is acknowledged.
func (m *ManagerService) handleTyping(client Client, name string, data json.RawMessage) {
	var payload models.TypingPayload
	if err := m.decode(data, &payload); err != nil {
		log.Printf("WARNING: Dropping %s: %v", name, err)
		return
	}

	m.emit(payload.ChatID, client.GetConnID(), name, models.TypingRelay{User: payload.User})
}

// handleMessageSent fans a freshly created message out to every chat member
// except the sender: one message-received emission, one stored notification,
// and one notification-created emission per recipient. The notification
// write completes before its emission; a failing member is logged and
// skipped so the rest still get delivery.
func (m *ManagerService) handleMessageSent(data json.RawMessage) {
	var msg models.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("WARNING: Dropping message-sent: %v", err)
		return
	}
	if msg.Chat == nil || len(msg.Chat.Users) == 0 {
		log.Printf("WARNING: message-sent without chat members, dropping")
		return
	}

	for _, member := range msg.Chat.Recipients(msg.Sender.ID) {
		m.emit(member.ID, "", models.EventMessageReceived, msg)

		notification := models.NewNotification(member.ID, &msg)
		if err := m.Storage.CreateNotification(notification); err != nil {
			log.Printf("WARNING: Notification for user %s failed, continuing fan-out: %v", member.ID, err)
			continue
		}

		m.emit(member.ID, "", models.EventNotificationCreated, models.NotificationPush{
			Chat:    msg.Chat,
			Sender:  msg.Sender,
			Content: msg.Content,
		})

		if m.relay != nil {
			m.relay.Notify(member.ID, notification)
		}
	}
}

// handleReadReceipt marks every unread message in the chat as read by the
// user, then emits one acknowledgement carrying the reader's profile and the
// affected message ids. The batch is not transactional: a partial update is
// safe because each append is idempotent.
func (m *ManagerService) handleReadReceipt(client Client, data json.RawMessage) {
	var payload models.ReadReceiptPayload
	if err := m.decode(data, &payload); err != nil {
		log.Printf("WARNING: Dropping read-receipt: %v", err)
		return
	}

	messages, err := m.Storage.UnreadMessages(payload.ChatID, payload.UserID)
	if err != nil {
		log.Printf("ERROR: Failed to load unread messages for chat %s: %v", payload.ChatID, err)
		return
	}

	messageIDs := make([]string, 0, len(messages))
	for i := range messages {
		if err := m.Storage.MarkMessageRead(messages[i].ID, payload.UserID); err != nil {
			log.Printf("WARNING: Failed to mark message %s read: %v", messages[i].ID, err)
			continue
		}
		messageIDs = append(messageIDs, messages[i].ID)
	}

	user, err := m.Storage.GetUserByID(payload.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Printf("WARNING: read-receipt for unknown user %s", payload.UserID)
		} else {
			log.Printf("ERROR: Failed to load user %s: %v", payload.UserID, err)
		}
		return
	}

	m.emit(payload.ChatID, client.GetConnID(), models.EventReadReceiptAck, models.ReadReceiptAck{
		ChatID:     payload.ChatID,
		User:       user.Profile(),
		MessageIDs: messageIDs,
	})
}

// decode unmarshals and validates an event payload.
func (m *ManagerService) decode(data json.RawMessage, payload any) error {
	if err := json.Unmarshal(data, payload); err != nil {
		return err
	}
	return m.validate.Struct(payload)
}
