package policy_test

import (
	"testing"
	"time"

	"chatterbox/backend/internal/config"
	"chatterbox/backend/internal/models"
	"chatterbox/backend/internal/policy"

	"github.com/stretchr/testify/assert"
)

func messageFrom(senderID string, createdAt time.Time) *models.Message {
	return &models.Message{ID: "msg_1", SenderID: senderID, Content: "hello", CreatedAt: createdAt}
}

func TestCanEdit_Window(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		age     time.Duration
		wantErr error
	}{
		{"fresh message", time.Minute, nil},
		{"ten minutes in", 10 * time.Minute, nil},
		{"exactly at the boundary", config.EditWindow, nil},
		{"just past the boundary", config.EditWindow + time.Second, policy.ErrEditWindowClosed},
		{"an hour later", time.Hour, policy.ErrEditWindowClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := messageFrom("user_A", now.Add(-tt.age))
			err := policy.CanEdit(msg, "user_A", now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCanEdit_SenderOnly(t *testing.T) {
	now := time.Now()
	msg := messageFrom("user_A", now)

	// A non-sender is rejected even inside the window.
	assert.ErrorIs(t, policy.CanEdit(msg, "user_B", now), policy.ErrNotSender)

	// The ownership check wins over the window check.
	stale := messageFrom("user_A", now.Add(-time.Hour))
	assert.ErrorIs(t, policy.CanEdit(stale, "user_B", now), policy.ErrNotSender)
}

func TestCanDelete_NoWindow(t *testing.T) {
	now := time.Now()

	old := messageFrom("user_A", now.Add(-24*time.Hour))
	assert.NoError(t, policy.CanDelete(old, "user_A"), "delete has no time restriction")
	assert.ErrorIs(t, policy.CanDelete(old, "user_B"), policy.ErrNotSender)

	// Restore goes through the same check.
	old.IsDeleted = true
	assert.NoError(t, policy.CanDelete(old, "user_A"))
}

func TestEditable(t *testing.T) {
	now := time.Now()

	assert.True(t, policy.Editable(messageFrom("user_A", now.Add(-time.Minute)), "user_A", now))
	assert.False(t, policy.Editable(messageFrom("user_A", now.Add(-time.Minute)), "user_B", now))
	assert.False(t, policy.Editable(messageFrom("user_A", now.Add(-16*time.Minute)), "user_A", now))
}
