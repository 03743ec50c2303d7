package storage

import (
	"errors"

	"listeningroom/backend/internal/models"

	"gorm.io/gorm"
)

func (s *Service) CreateUser(user *models.User) error {
	return s.DB.Create(user).Error
}

func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) SetUserType(userID, userType string) error {
	return s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("user_type", userType).Error
}

func (s *Service) SetTrainingCompleted(userID string) error {
	return s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("training_completed", true).Error
}

func (s *Service) CreateApplication(app *models.VolunteerApplication) error {
	if app.Status == "" {
		app.Status = models.ApplicationPending
	}
	return s.DB.Create(app).Error
}

func (s *Service) GetApplicationByID(id uint) (*models.VolunteerApplication, error) {
	var app models.VolunteerApplication
	if err := s.DB.First(&app, id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (s *Service) HasPendingApplication(userID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.VolunteerApplication{}).
		Where("user_id = ? AND status = ?", userID, models.ApplicationPending).
		Count(&count).Error
	return count > 0, err
}

func (s *Service) ListApplications(status string) ([]models.VolunteerApplication, error) {
	var apps []models.VolunteerApplication
	q := s.DB.Order("created_at asc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&apps).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apps, nil
		}
		return nil, err
	}
	return apps, nil
}

func (s *Service) UpdateApplication(app *models.VolunteerApplication) error {
	return s.DB.Save(app).Error
}
