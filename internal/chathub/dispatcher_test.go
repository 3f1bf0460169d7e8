package chathub_test

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"chatterbox/backend/internal/chathub"
	"chatterbox/backend/internal/models"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// publishLog collects relayed room events from the storage mock.
type publishLog struct {
	mu     sync.Mutex
	events []models.RoomEvent
}

func (l *publishLog) add(evt models.RoomEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, evt)
}

func (l *publishLog) byName(name string) []models.RoomEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.RoomEvent
	for _, evt := range l.events {
		if evt.Event.Name == name {
			out = append(out, evt)
		}
	}
	return out
}

func capturePublishes(storageMock *MockStorage) *publishLog {
	log := &publishLog{}
	storageMock.On("PublishEvent", mock.AnythingOfType("models.RoomEvent")).
		Return(nil).
		Run(func(args mock.Arguments) {
			log.add(args.Get(0).(models.RoomEvent))
		})
	return log
}

func groupMessage(content string) models.Message {
	chat := &models.Chat{
		ID:          "chat_1",
		Name:        "friends",
		IsGroupChat: true,
		AdminID:     "user_A",
		UserIDs:     pq.StringArray{"user_A", "user_B", "user_C"},
		Users: []models.Profile{
			{ID: "user_A", Name: "Ann"},
			{ID: "user_B", Name: "Bee"},
			{ID: "user_C", Name: "Cee"},
		},
	}
	return models.Message{
		ID:      "msg_1",
		Content: content,
		Sender:  models.Profile{ID: "user_A", Name: "Ann"},
		Chat:    chat,
	}
}

func TestDispatcher_MessageFanOut(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)
	publishes := capturePublishes(storageMock)

	var notifications []*models.Notification
	var mu sync.Mutex
	storageMock.On("CreateNotification", mock.AnythingOfType("*models.Notification")).
		Return(nil).
		Run(func(args mock.Arguments) {
			mu.Lock()
			defer mu.Unlock()
			notifications = append(notifications, args.Get(0).(*models.Notification))
		})

	go hub.Run()

	sender := newMockClient("conn_A", "user_A")
	hub.RegisterCh <- sender
	evt, err := models.NewEvent(models.EventMessageSent, groupMessage(strings.Repeat("x", 60)))
	assert.NoError(t, err)
	hub.IncomingCh <- chathub.InboundEvent{Client: sender, Event: evt}
	time.Sleep(100 * time.Millisecond)

	// One notification record per recipient, sender excluded.
	mu.Lock()
	assert.Len(t, notifications, 2)
	recipients := []string{notifications[0].UserID, notifications[1].UserID}
	assert.ElementsMatch(t, []string{"user_B", "user_C"}, recipients)
	for _, n := range notifications {
		assert.Equal(t, "msg_1", n.MessageID)
		assert.Equal(t, "user_A", n.SenderID)
		assert.Equal(t, strings.Repeat("x", models.PreviewLength)+"...", n.Content)
	}
	mu.Unlock()

	// One message-received / notification-created pair per recipient.
	received := publishes.byName(models.EventMessageReceived)
	created := publishes.byName(models.EventNotificationCreated)
	assert.Len(t, received, 2)
	assert.Len(t, created, 2)

	receivedRooms := []string{received[0].Room, received[1].Room}
	assert.ElementsMatch(t, []string{"user_B", "user_C"}, receivedRooms)

	var push models.NotificationPush
	assert.NoError(t, json.Unmarshal(created[0].Event.Data, &push))
	assert.Equal(t, "user_A", push.Sender.ID)
	assert.Equal(t, strings.Repeat("x", 60), push.Content, "live push carries the full content")
}

func TestDispatcher_FanOutIsolatesMemberFailures(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)
	publishes := capturePublishes(storageMock)

	storageMock.On("CreateNotification", mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == "user_B"
	})).Return(errors.New("write failed"))
	storageMock.On("CreateNotification", mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == "user_C"
	})).Return(nil)

	go hub.Run()

	sender := newMockClient("conn_A", "user_A")
	hub.RegisterCh <- sender
	evt, err := models.NewEvent(models.EventMessageSent, groupMessage("hello"))
	assert.NoError(t, err)
	hub.IncomingCh <- chathub.InboundEvent{Client: sender, Event: evt}
	time.Sleep(100 * time.Millisecond)

	// Delivery still reaches both members; only the failed member's
	// notification emission is omitted.
	received := publishes.byName(models.EventMessageReceived)
	assert.Len(t, received, 2)

	created := publishes.byName(models.EventNotificationCreated)
	assert.Len(t, created, 1)
	assert.Equal(t, "user_C", created[0].Room)
}

func TestDispatcher_ReadReceipt(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)
	publishes := capturePublishes(storageMock)

	unread := []models.Message{{ID: "m1"}, {ID: "m2"}}
	storageMock.On("UnreadMessages", "chat_1", "user_B").Return(unread, nil)
	storageMock.On("MarkMessageRead", "m1", "user_B").Return(nil)
	storageMock.On("MarkMessageRead", "m2", "user_B").Return(nil)
	storageMock.On("GetUserByID", "user_B").Return(&models.User{ID: "user_B", Name: "Bee"}, nil)

	go hub.Run()

	reader := newMockClient("conn_B", "user_B")
	hub.RegisterCh <- reader
	evt, err := models.NewEvent(models.EventReadReceipt, models.ReadReceiptPayload{ChatID: "chat_1", UserID: "user_B"})
	assert.NoError(t, err)
	hub.IncomingCh <- chathub.InboundEvent{Client: reader, Event: evt}
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertCalled(t, "MarkMessageRead", "m1", "user_B")
	storageMock.AssertCalled(t, "MarkMessageRead", "m2", "user_B")

	acks := publishes.byName(models.EventReadReceiptAck)
	assert.Len(t, acks, 1)
	assert.Equal(t, "chat_1", acks[0].Room)
	assert.Equal(t, "conn_B", acks[0].Origin, "the reader's own connection is excluded")

	var ack models.ReadReceiptAck
	assert.NoError(t, json.Unmarshal(acks[0].Event.Data, &ack))
	assert.Equal(t, "user_B", ack.User.ID)
	assert.Equal(t, []string{"m1", "m2"}, ack.MessageIDs)
}

func TestDispatcher_ReadReceiptSkipsFailedUpdates(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)
	publishes := capturePublishes(storageMock)

	unread := []models.Message{{ID: "m1"}, {ID: "m2"}}
	storageMock.On("UnreadMessages", "chat_1", "user_B").Return(unread, nil)
	storageMock.On("MarkMessageRead", "m1", "user_B").Return(errors.New("write failed"))
	storageMock.On("MarkMessageRead", "m2", "user_B").Return(nil)
	storageMock.On("GetUserByID", "user_B").Return(&models.User{ID: "user_B"}, nil)

	go hub.Run()

	reader := newMockClient("conn_B", "user_B")
	hub.RegisterCh <- reader
	evt, err := models.NewEvent(models.EventReadReceipt, models.ReadReceiptPayload{ChatID: "chat_1", UserID: "user_B"})
	assert.NoError(t, err)
	hub.IncomingCh <- chathub.InboundEvent{Client: reader, Event: evt}
	time.Sleep(100 * time.Millisecond)

	acks := publishes.byName(models.EventReadReceiptAck)
	assert.Len(t, acks, 1)

	var ack models.ReadReceiptAck
	assert.NoError(t, json.Unmarshal(acks[0].Event.Data, &ack))
	assert.Equal(t, []string{"m2"}, ack.MessageIDs, "failed updates are skipped, not fatal")
}

func TestDispatcher_ReadReceiptWithNothingUnreadStillAcks(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)
	publishes := capturePublishes(storageMock)

	storageMock.On("UnreadMessages", "chat_1", "user_B").Return([]models.Message{}, nil)
	storageMock.On("GetUserByID", "user_B").Return(&models.User{ID: "user_B"}, nil)

	go hub.Run()

	reader := newMockClient("conn_B", "user_B")
	hub.RegisterCh <- reader
	evt, err := models.NewEvent(models.EventReadReceipt, models.ReadReceiptPayload{ChatID: "chat_1", UserID: "user_B"})
	assert.NoError(t, err)
	hub.IncomingCh <- chathub.InboundEvent{Client: reader, Event: evt}
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertNotCalled(t, "MarkMessageRead", mock.Anything, mock.Anything)

	acks := publishes.byName(models.EventReadReceiptAck)
	assert.Len(t, acks, 1)

	var ack models.ReadReceiptAck
	assert.NoError(t, json.Unmarshal(acks[0].Event.Data, &ack))
	assert.Empty(t, ack.MessageIDs)
}

func TestDispatcher_TypingRelay(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)
	publishes := capturePublishes(storageMock)

	go hub.Run()

	typer := newMockClient("conn_A", "user_A")
	hub.RegisterCh <- typer
	payload := models.TypingPayload{ChatID: "chat_1", User: models.Profile{ID: "user_A", Name: "Ann"}}
	evt, err := models.NewEvent(models.EventTypingStart, payload)
	assert.NoError(t, err)
	hub.IncomingCh <- chathub.InboundEvent{Client: typer, Event: evt}
	time.Sleep(100 * time.Millisecond)

	relays := publishes.byName(models.EventTypingStart)
	assert.Len(t, relays, 1)
	assert.Equal(t, "chat_1", relays[0].Room)
	assert.Equal(t, "conn_A", relays[0].Origin)

	var relay models.TypingRelay
	assert.NoError(t, json.Unmarshal(relays[0].Event.Data, &relay))
	assert.Equal(t, "user_A", relay.User.ID)
}

func TestDispatcher_MalformedPayloadIsDropped(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)
	go hub.Run()

	client := newMockClient("conn_1", "user_A")
	hub.RegisterCh <- client
	hub.IncomingCh <- chathub.InboundEvent{
		Client: client,
		Event:  models.Event{Name: models.EventRegisterSession, Data: json.RawMessage(`{}`)},
	}
	time.Sleep(100 * time.Millisecond)

	_, ok := client.received()
	assert.False(t, ok, "a register-session without a userId must not be acknowledged")
}

func TestDispatcher_MessageSentWithoutChatIsDropped(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewManagerService(storageMock)
	go hub.Run()

	sender := newMockClient("conn_A", "user_A")
	hub.RegisterCh <- sender
	evt, err := models.NewEvent(models.EventMessageSent, models.Message{ID: "msg_1", Content: "hi"})
	assert.NoError(t, err)
	hub.IncomingCh <- chathub.InboundEvent{Client: sender, Event: evt}
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertNotCalled(t, "CreateNotification", mock.Anything)
	storageMock.AssertNotCalled(t, "PublishEvent", mock.Anything)
}
