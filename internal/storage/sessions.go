package storage

import (
	"errors"
	"time"

	"listeningroom/backend/internal/models"
)

func (s *Service) CreateSession(session *models.ChatSession) error {
	return s.DB.Create(session).Error
}

func (s *Service) GetSessionByID(id string) (*models.ChatSession, error) {
	var session models.ChatSession
	if err := s.DB.First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Service) ListWaitingSessions() ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	err := s.DB.Where("status = ?", models.SessionWaiting).
		Order("created_at asc").
		Find(&sessions).Error
	return sessions, err
}

// GetOpenSessionForUser returns the waiting or active session a user holds
// in the given role, or (nil, nil) when there is none.
func (s *Service) GetOpenSessionForUser(userID, role string) (*models.ChatSession, error) {
	var session models.ChatSession
	q := s.DB.Where("status IN ?", []string{models.SessionWaiting, models.SessionActive})
	if role == models.RoleVolunteer {
		q = q.Where("volunteer_id = ?", userID)
	} else {
		q = q.Where("seeker_id = ?", userID)
	}
	err := q.First(&session).Error
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ClaimWaitingSession atomically takes the volunteer slot. The WHERE clause
// carries the whole precondition, so two racing volunteers cannot both win:
// the loser sees zero rows affected.
func (s *Service) ClaimWaitingSession(sessionID, volunteerID string, startedAt time.Time) (bool, error) {
	res := s.DB.Model(&models.ChatSession{}).
		Where("id = ? AND status = ? AND volunteer_id IS NULL", sessionID, models.SessionWaiting).
		Updates(map[string]interface{}{
			"volunteer_id": volunteerID,
			"status":       models.SessionActive,
			"started_at":   startedAt,
		})
	return res.RowsAffected > 0, res.Error
}

func (s *Service) MarkSessionContinued(sessionID, seekerID string) (bool, error) {
	res := s.DB.Model(&models.ChatSession{}).
		Where("id = ? AND seeker_id = ? AND status = ?", sessionID, seekerID, models.SessionActive).
		Update("continued_after_limit", true)
	return res.RowsAffected > 0, res.Error
}

// CloseSession moves a waiting or active session to ended. A second call
// finds no matching row and reports false, which the service layer maps to
// a 404 on re-end.
func (s *Service) CloseSession(sessionID string, endedAt time.Time) (bool, error) {
	res := s.DB.Model(&models.ChatSession{}).
		Where("id = ? AND status IN ?", sessionID, []string{models.SessionWaiting, models.SessionActive}).
		Updates(map[string]interface{}{
			"status":   models.SessionEnded,
			"ended_at": endedAt,
		})
	return res.RowsAffected > 0, res.Error
}

func (s *Service) UpdateSessionReward(sessionID string, durationMinutes int, points int64, amount float64) error {
	return s.DB.Model(&models.ChatSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"session_duration": durationMinutes,
			"reward_points":    points,
			"reward_amount":    amount,
		}).Error
}

func (s *Service) AddParticipant(p *models.SessionParticipant) error {
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now()
	}
	p.IsActive = true
	return s.DB.Create(p).Error
}

func (s *Service) GetParticipants(sessionID string) ([]models.SessionParticipant, error) {
	var participants []models.SessionParticipant
	err := s.DB.Where("session_id = ?", sessionID).
		Order("joined_at asc").
		Find(&participants).Error
	return participants, err
}

func (s *Service) CountActiveParticipants(sessionID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.SessionParticipant{}).
		Where("session_id = ? AND is_active = ?", sessionID, true).
		Count(&count).Error
	return count, err
}

func (s *Service) IsActiveParticipant(sessionID, userID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.SessionParticipant{}).
		Where("session_id = ? AND user_id = ? AND is_active = ?", sessionID, userID, true).
		Count(&count).Error
	return count > 0, err
}

func (s *Service) GetParticipant(sessionID, userID string) (*models.SessionParticipant, error) {
	var p models.SessionParticipant
	err := s.DB.Where("session_id = ? AND user_id = ?", sessionID, userID).First(&p).Error
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) CloseParticipants(sessionID string, leftAt time.Time) error {
	return s.DB.Model(&models.SessionParticipant{}).
		Where("session_id = ? AND is_active = ?", sessionID, true).
		Updates(map[string]interface{}{
			"is_active": false,
			"left_at":   leftAt,
		}).Error
}
