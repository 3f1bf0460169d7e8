package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Chat is a conversation between two or more users. A one-on-one chat is
// uniquely identified by its unordered pair of members; group chats carry a
// name and an admin. UserIDs keeps insertion order, which defines display
// order for clients.
type Chat struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	Name        string         `json:"name"`
	IsGroupChat bool           `json:"isGroupChat"`
	UserIDs     pq.StringArray `gorm:"type:text[];not null" json:"-"`
	AdminID     string         `json:"groupAdmin,omitempty"`

	// LatestMessageID is a weak back-reference updated on every send.
	LatestMessageID string `json:"latestMessage,omitempty"`

	// Users holds the populated member profiles. Filled by the storage
	// layer, not persisted on the chat row.
	Users []Profile `gorm:"-" json:"users"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Chat) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// IsPairChat reports whether this chat is the one-on-one chat between the
// two users. Member order does not matter, and a group chat never matches
// even when it holds exactly those two users.
func (c *Chat) IsPairChat(userA, userB string) bool {
	return !c.IsGroupChat &&
		len(c.UserIDs) == 2 &&
		c.HasMember(userA) &&
		c.HasMember(userB)
}

// HasMember reports whether the user belongs to the chat.
func (c *Chat) HasMember(userID string) bool {
	return lo.Contains(c.UserIDs, userID)
}

// Recipients returns the populated member profiles excluding the sender.
// Evaluated against the member set as it stands at call time.
func (c *Chat) Recipients(senderID string) []Profile {
	return lo.Filter(c.Users, func(p Profile, _ int) bool {
		return p.ID != senderID
	})
}
