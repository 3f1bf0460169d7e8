package models_test

import (
	"testing"

	"chatterbox/backend/internal/models"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestChat_IsPairChat(t *testing.T) {
	pair := models.Chat{UserIDs: pq.StringArray{"user_A", "user_B"}}
	assert.True(t, pair.IsPairChat("user_A", "user_B"))
	assert.True(t, pair.IsPairChat("user_B", "user_A"), "the pair is unordered")

	// A second access with either ordering resolves to the same chat, so the
	// storage layer never creates a duplicate for the pair.
	assert.False(t, pair.IsPairChat("user_A", "user_C"))

	group := models.Chat{IsGroupChat: true, UserIDs: pq.StringArray{"user_A", "user_B"}}
	assert.False(t, group.IsPairChat("user_A", "user_B"), "a two-member group is not a 1:1 chat")

	wider := models.Chat{UserIDs: pq.StringArray{"user_A", "user_B", "user_C"}}
	assert.False(t, wider.IsPairChat("user_A", "user_B"), "extra members disqualify the chat")

	empty := models.Chat{}
	assert.False(t, empty.IsPairChat("user_A", "user_B"))
}
