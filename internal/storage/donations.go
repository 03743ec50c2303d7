package storage

import (
	"listeningroom/backend/internal/models"

	"gorm.io/gorm/clause"
)

func (s *Service) CreateDonation(d *models.Donation) error {
	if d.Status == "" {
		d.Status = models.DonationPending
	}
	return s.DB.Create(d).Error
}

func (s *Service) GetDonationByTxRef(txRef string) (*models.Donation, error) {
	var d models.Donation
	if err := s.DB.First(&d, "tx_ref = ?", txRef).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// SettleDonation moves a pending donation to its final status. Only the
// pending -> final transition is allowed, so webhook replays are no-ops.
func (s *Service) SettleDonation(txRef, status string) (bool, error) {
	res := s.DB.Model(&models.Donation{}).
		Where("tx_ref = ? AND status = ?", txRef, models.DonationPending).
		Update("status", status)
	return res.RowsAffected > 0, res.Error
}

func (s *Service) ListDonations(page, pageSize int) ([]models.Donation, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	if err := s.DB.Model(&models.Donation{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var donations []models.Donation
	err := s.DB.Order("created_at desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&donations).Error
	return donations, total, err
}

func (s *Service) UpsertFeedback(f *models.SessionFeedback) error {
	return s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "from_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"rating", "comment", "flagged", "updated_at",
		}),
	}).Create(f).Error
}

func (s *Service) GetFeedbackByID(id uint) (*models.SessionFeedback, error) {
	var f models.SessionFeedback
	if err := s.DB.First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Service) ListFeedback(flaggedOnly bool) ([]models.SessionFeedback, error) {
	var feedback []models.SessionFeedback
	q := s.DB.Order("created_at desc")
	if flaggedOnly {
		q = q.Where("flagged = ? AND reviewed = ?", true, false)
	}
	err := q.Find(&feedback).Error
	return feedback, err
}

func (s *Service) UpdateFeedback(f *models.SessionFeedback) error {
	return s.DB.Save(f).Error
}
