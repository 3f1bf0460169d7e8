package chathub

import (
	"encoding/json"
	"log"

	"chatterbox/backend/internal/models"
)

// StartPubSubListener subscribes to the shared redis event channel and feeds
// decoded room events into the hub's run loop. Every emission arrives through
// here, even ones originating on this instance, so single- and multi-instance
// deployments deliver identically.
func (m *ManagerService) StartPubSubListener() {
	pubsub := m.Storage.SubscribeEvents()
	if pubsub == nil {
		// Storage without a redis connection has no relay to listen to.
		return
	}

	go func() {
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var evt models.RoomEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				log.Printf("ERROR: Failed to unmarshal relayed event: %v", err)
				continue
			}
			m.PubSubCh <- evt
		}
	}()
}
