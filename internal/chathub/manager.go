package chathub

import (
	"log"

	"chatterbox/backend/internal/models"
	"chatterbox/backend/internal/storage"

	"github.com/go-playground/validator/v10"
)

// NotificationRelay pushes a stored notification to an out-of-band channel
// (e.g. Telegram) for recipients who linked one.
type NotificationRelay interface {
	Notify(recipientID string, n *models.Notification)
}

// ManagerService is the hub: it owns the connection registry and the
// room bindings, and routes every event through a single run loop. Rooms are
// keyed by raw user ids and chat ids; bindings live only as long as the
// connection.
type ManagerService struct {
	RegisterCh   chan Client
	UnregisterCh chan Client
	IncomingCh   chan InboundEvent
	PubSubCh     chan models.RoomEvent

	Storage storage.Storage

	relay    NotificationRelay
	validate *validator.Validate

	clients     map[Client]struct{}
	rooms       map[string]map[Client]struct{}
	memberships map[Client]map[string]struct{}
}

// NewManagerService builds a hub bound to the given storage.
func NewManagerService(s storage.Storage) *ManagerService {
	return &ManagerService{
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		IncomingCh:   make(chan InboundEvent),
		PubSubCh:     make(chan models.RoomEvent),
		Storage:      s,
		validate:     validator.New(),
		clients:      make(map[Client]struct{}),
		rooms:        make(map[string]map[Client]struct{}),
		memberships:  make(map[Client]map[string]struct{}),
	}
}

// SetNotificationRelay installs the optional out-of-band push relay.
func (m *ManagerService) SetNotificationRelay(relay NotificationRelay) {
	m.relay = relay
}

// Run drains the hub channels. Each event is handled to completion before
// the next one, so the domain logic stays single-threaded; concurrency lives
// in the per-connection pumps and the redis listener.
func (m *ManagerService) Run() {
	m.StartPubSubListener()

	for {
		select {
		case client := <-m.RegisterCh:
			m.clients[client] = struct{}{}
			log.Printf("INFO: Client %s connected (user %s)", client.GetConnID(), client.GetUserID())

		case client := <-m.UnregisterCh:
			m.dropClient(client)

		case in := <-m.IncomingCh:
			m.handleEvent(in.Client, in.Event)

		case evt := <-m.PubSubCh:
			m.broadcast(evt)
		}
	}
}

// joinRoom binds the connection to a room. Re-joining is a no-op, and a
// binding on one connection never evicts the same user's other connections.
func (m *ManagerService) joinRoom(client Client, room string) {
	if room == "" {
		return
	}
	if m.rooms[room] == nil {
		m.rooms[room] = make(map[Client]struct{})
	}
	m.rooms[room][client] = struct{}{}

	if m.memberships[client] == nil {
		m.memberships[client] = make(map[string]struct{})
	}
	m.memberships[client][room] = struct{}{}
}

// dropClient tears down every room binding for the connection. No other
// member is notified; presence is not persisted.
func (m *ManagerService) dropClient(client Client) {
	if _, ok := m.clients[client]; !ok {
		return
	}
	for room := range m.memberships[client] {
		delete(m.rooms[room], client)
		if len(m.rooms[room]) == 0 {
			delete(m.rooms, room)
		}
	}
	delete(m.memberships, client)
	delete(m.clients, client)
	client.Close()
	log.Printf("INFO: Client %s disconnected", client.GetConnID())
}

// broadcast delivers a relayed room event to every local member of the room
// except the originating connection. A member whose send buffer is full is
// dropped rather than allowed to stall the loop.
func (m *ManagerService) broadcast(evt models.RoomEvent) {
	for client := range m.rooms[evt.Room] {
		if evt.Origin != "" && client.GetConnID() == evt.Origin {
			continue
		}
		select {
		case client.GetSendChannel() <- evt.Event:
		default:
			m.dropClient(client)
		}
	}
}

// emit publishes an event into a room via the redis relay. Failure means the
// emission is simply omitted; the caller's operation carries on.
func (m *ManagerService) emit(room, origin, name string, payload any) {
	evt, err := models.NewEvent(name, payload)
	if err != nil {
		log.Printf("ERROR: Failed to encode %s event: %v", name, err)
		return
	}
	if err := m.Storage.PublishEvent(models.RoomEvent{Room: room, Origin: origin, Event: evt}); err != nil {
		log.Printf("ERROR: Failed to publish %s event to room %s: %v", name, room, err)
	}
}

// sendDirect writes an event to one connection, bypassing the relay. Used
// for acknowledgements that only the originating connection should see.
func (m *ManagerService) sendDirect(client Client, name string, payload any) {
	evt, err := models.NewEvent(name, payload)
	if err != nil {
		log.Printf("ERROR: Failed to encode %s event: %v", name, err)
		return
	}
	select {
	case client.GetSendChannel() <- evt:
	default:
		m.dropClient(client)
	}
}
