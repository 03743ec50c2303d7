package models_test

import (
	"testing"

	"listeningroom/backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUserBeforeCreate_GeneratesUUID(t *testing.T) {
	user := &models.User{Email: "a@example.com", UserType: models.UserTypeSeeker}
	assert.Empty(t, user.ID)

	err := user.BeforeCreate(nil)

	assert.NoError(t, err)
	_, parseErr := uuid.Parse(user.ID)
	assert.NoError(t, parseErr, "generated ID must be a valid UUID")
}

func TestUserBeforeCreate_PreservesExistingID(t *testing.T) {
	existing := uuid.New().String()
	user := &models.User{ID: existing, Email: "b@example.com"}

	err := user.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.Equal(t, existing, user.ID)
}

func TestSessionBeforeCreate_GeneratesUUID(t *testing.T) {
	s := &models.ChatSession{SeekerID: uuid.New().String(), Status: models.SessionWaiting}
	assert.NoError(t, s.BeforeCreate(nil))
	_, err := uuid.Parse(s.ID)
	assert.NoError(t, err)
}

func TestSignalMessageEnvelope(t *testing.T) {
	to := "peer-id"
	m := &models.SignalMessage{
		ID:         7,
		SessionID:  "sess-1",
		FromUserID: "user-1",
		ToUserID:   &to,
		Type:       "offer",
		Payload:    `{"sdp":"..."}`,
	}

	env := m.Envelope()

	assert.Equal(t, uint(7), env.ID)
	assert.Equal(t, "peer-id", env.To)
	assert.Equal(t, "offer", env.Type)
	assert.Equal(t, `{"sdp":"..."}`, env.Data)

	m.ToUserID = nil
	assert.Empty(t, m.Envelope().To, "broadcast rows map to empty To")
}
