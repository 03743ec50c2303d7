package storage_test

import (
	"fmt"
	"testing"

	"listeningroom/backend/internal/models"
	"listeningroom/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB backs the Service with an in-memory sqlite database so the
// query-level invariants run against real SQL.
func openTestDB(t *testing.T, tables ...interface{}) *storage.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(tables...))
	return storage.NewStorageService(db, nil)
}

func seedSignal(t *testing.T, s *storage.Service, sessionID, from, to, msgType string) *models.SignalMessage {
	t.Helper()
	msg := &models.SignalMessage{
		SessionID:  sessionID,
		FromUserID: from,
		Type:       msgType,
		Payload:    "payload",
	}
	if to != "" {
		msg.ToUserID = &to
	}
	require.NoError(t, s.SaveSignal(msg))
	return msg
}

func TestFetchSignals_NeverReturnsSelfAuthoredOrMisaddressed(t *testing.T) {
	s := openTestDB(t, &models.SignalMessage{})

	seedSignal(t, s, "sess-1", "me", "", "offer")            // self-authored
	broadcast := seedSignal(t, s, "sess-1", "peer", "", "answer")
	direct := seedSignal(t, s, "sess-1", "peer", "me", "ice-candidate")
	seedSignal(t, s, "sess-1", "peer", "third", "ice-candidate") // addressed elsewhere
	seedSignal(t, s, "sess-2", "peer", "me", "offer")            // other session

	got, err := s.FetchSignals("sess-1", "me", 0, 50)
	require.NoError(t, err)
	require.Len(t, got, 2)

	ids := []uint{got[0].ID, got[1].ID}
	assert.ElementsMatch(t, []uint{broadcast.ID, direct.ID}, ids)
}

func TestFetchSignals_MarksDeliveredAcrossPolls(t *testing.T) {
	s := openTestDB(t, &models.SignalMessage{})

	seedSignal(t, s, "sess-1", "peer", "me", "offer")
	seedSignal(t, s, "sess-1", "peer", "", "ice-candidate")

	first, err := s.FetchSignals("sess-1", "me", 0, 50)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	// Same poll again, cursor unchanged: everything is already delivered.
	second, err := s.FetchSignals("sess-1", "me", 0, 50)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestFetchSignals_CursorSkipsOlderRows(t *testing.T) {
	s := openTestDB(t, &models.SignalMessage{})

	old := seedSignal(t, s, "sess-1", "peer", "", "offer")
	newer := seedSignal(t, s, "sess-1", "peer", "", "answer")

	got, err := s.FetchSignals("sess-1", "me", old.ID, 50)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, newer.ID, got[0].ID)
}

func TestFetchSignals_CapsAtFifty(t *testing.T) {
	s := openTestDB(t, &models.SignalMessage{})

	for i := 0; i < 60; i++ {
		seedSignal(t, s, "sess-1", "peer", "", fmt.Sprintf("candidate-%d", i))
	}

	first, err := s.FetchSignals("sess-1", "me", 0, 0) // zero limit falls back to the cap
	require.NoError(t, err)
	assert.Len(t, first, 50)

	rest, err := s.FetchSignals("sess-1", "me", 0, 50)
	require.NoError(t, err)
	assert.Len(t, rest, 10)
}

func TestDecrementActiveSessions_FloorsAtZero(t *testing.T) {
	s := openTestDB(t, &models.VolunteerAvailability{})

	require.NoError(t, s.EnsureAvailability("vol-1"))
	require.NoError(t, s.IncrementActiveSessions("vol-1"))

	require.NoError(t, s.DecrementActiveSessions("vol-1"))
	// The counter is already zero; extra decrements from racing or retried
	// end calls must not push it negative.
	require.NoError(t, s.DecrementActiveSessions("vol-1"))
	require.NoError(t, s.DecrementActiveSessions("vol-1"))

	avail, err := s.GetAvailability("vol-1")
	require.NoError(t, err)
	assert.Equal(t, 0, avail.CurrentActiveSessions)
}

func TestIncrementActiveSessions_Accumulates(t *testing.T) {
	s := openTestDB(t, &models.VolunteerAvailability{})

	require.NoError(t, s.EnsureAvailability("vol-1"))
	require.NoError(t, s.IncrementActiveSessions("vol-1"))
	require.NoError(t, s.IncrementActiveSessions("vol-1"))

	avail, err := s.GetAvailability("vol-1")
	require.NoError(t, err)
	assert.Equal(t, 2, avail.CurrentActiveSessions)
}
