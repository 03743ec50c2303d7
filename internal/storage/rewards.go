package storage

import (
	"errors"

	"listeningroom/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Service) EnsureAvailability(volunteerID string) error {
	avail := models.VolunteerAvailability{
		VolunteerID:           volunteerID,
		MaxConcurrentSessions: 1,
	}
	return s.DB.Where("volunteer_id = ?", volunteerID).
		FirstOrCreate(&avail).Error
}

func (s *Service) GetAvailability(volunteerID string) (*models.VolunteerAvailability, error) {
	var avail models.VolunteerAvailability
	if err := s.DB.First(&avail, "volunteer_id = ?", volunteerID).Error; err != nil {
		return nil, err
	}
	return &avail, nil
}

func (s *Service) SetAvailability(volunteerID string, online bool, maxConcurrent int) error {
	return s.DB.Model(&models.VolunteerAvailability{}).
		Where("volunteer_id = ?", volunteerID).
		Updates(map[string]interface{}{
			"is_online":               online,
			"max_concurrent_sessions": maxConcurrent,
		}).Error
}

func (s *Service) IncrementActiveSessions(volunteerID string) error {
	return s.DB.Model(&models.VolunteerAvailability{}).
		Where("volunteer_id = ?", volunteerID).
		Update("current_active_sessions", gorm.Expr("current_active_sessions + 1")).Error
}

// DecrementActiveSessions lowers the counter but never below zero, however
// many end calls race or retry. A counter already at zero matches no row.
func (s *Service) DecrementActiveSessions(volunteerID string) error {
	return s.DB.Model(&models.VolunteerAvailability{}).
		Where("volunteer_id = ? AND current_active_sessions > 0", volunteerID).
		Update("current_active_sessions", gorm.Expr("current_active_sessions - 1")).Error
}

// ActiveRewardSettings returns the single active rate row, or (nil, nil)
// when none is configured and the caller should fall back to defaults.
func (s *Service) ActiveRewardSettings() (*models.RewardSettings, error) {
	var settings models.RewardSettings
	err := s.DB.Where("is_active = ?", true).
		Order("created_at desc").
		First(&settings).Error
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// ReplaceRewardSettings deactivates any current rate row and inserts the
// new one as active, keeping rate history.
func (s *Service) ReplaceRewardSettings(settings *models.RewardSettings) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RewardSettings{}).
			Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		settings.IsActive = true
		return tx.Create(settings).Error
	})
}

// UpsertEarning writes the reward row for a session. Keyed by session_id:
// a retried end recomputes and overwrites, it never duplicates.
func (s *Service) UpsertEarning(e *models.VolunteerEarning) error {
	return s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"time_spent_minutes", "points_earned", "amount_earned", "updated_at",
		}),
	}).Create(e).Error
}

func (s *Service) ListEarnings(volunteerID string) ([]models.VolunteerEarning, error) {
	var earnings []models.VolunteerEarning
	err := s.DB.Where("volunteer_id = ?", volunteerID).
		Order("created_at desc").
		Find(&earnings).Error
	return earnings, err
}
