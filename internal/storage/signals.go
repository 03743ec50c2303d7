package storage

import (
	"encoding/json"
	"errors"
	"time"

	"listeningroom/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// signalChannel is the Redis pub/sub channel for one session's relay room.
func signalChannel(sessionID string) string {
	return "signal:" + sessionID
}

func (s *Service) SaveSignal(msg *models.SignalMessage) error {
	return s.DB.Create(msg).Error
}

// FetchSignals returns up to limit undelivered messages for the poll-based
// relay: newer than the caller's cursor, addressed to the caller or
// broadcast, never self-authored. Fetched rows are marked delivered in the
// same transaction so repeated polls with an advancing cursor never see a
// message twice.
func (s *Service) FetchSignals(sessionID, userID string, after uint, limit int) ([]models.SignalMessage, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	var messages []models.SignalMessage
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("session_id = ? AND id > ? AND delivered = ?", sessionID, after, false).
			Where("from_user_id <> ?", userID).
			Where("to_user_id IS NULL OR to_user_id = ?", userID).
			Order("created_at asc").
			Limit(limit).
			Find(&messages).Error
		if err != nil {
			return err
		}
		if len(messages) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(messages))
		for _, m := range messages {
			ids = append(ids, m.ID)
		}
		return tx.Model(&models.SignalMessage{}).
			Where("id IN ?", ids).
			Update("delivered", true).Error
	})
	return messages, err
}

// PublishSignal fans a relay message out through Redis so rooms split
// across instances still see each other's traffic.
func (s *Service) PublishSignal(sessionID string, env models.SignalEnvelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, signalChannel(sessionID), payload).Err()
}

func (s *Service) SubscribeSignals() *redis.PubSub {
	return s.Redis.PSubscribe(s.Ctx, "signal:*")
}

const presenceKeyPrefix = "presence:volunteer:"

func (s *Service) SetPresence(volunteerID string, ttl time.Duration) error {
	return s.Redis.Set(s.Ctx, presenceKeyPrefix+volunteerID, "online", ttl).Err()
}

func (s *Service) ClearPresence(volunteerID string) error {
	return s.Redis.Del(s.Ctx, presenceKeyPrefix+volunteerID).Err()
}

func (s *Service) OnlineVolunteerIDs() ([]string, error) {
	var ids []string
	iter := s.Redis.Scan(s.Ctx, 0, presenceKeyPrefix+"*", 100).Iterator()
	for iter.Next(s.Ctx) {
		ids = append(ids, iter.Val()[len(presenceKeyPrefix):])
	}
	return ids, iter.Err()
}

func (s *Service) BanUser(userID string, duration time.Duration) error {
	return s.Redis.Set(s.Ctx, "ban:"+userID, "active", duration).Err()
}

func (s *Service) UnbanUser(userID string) error {
	return s.Redis.Del(s.Ctx, "ban:"+userID).Err()
}

func (s *Service) IsUserBanned(userID string) (bool, error) {
	status, err := s.Redis.Get(s.Ctx, "ban:"+userID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status != "", nil
}
