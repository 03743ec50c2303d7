// Package storage is the persistence layer: PostgreSQL via gorm for
// durable state and Redis for presence, bans, and signaling pub/sub.
package storage

import (
	"context"
	"time"

	"listeningroom/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrNotFound is returned instead of gorm.ErrRecordNotFound so callers do
// not depend on gorm.
var ErrNotFound = gorm.ErrRecordNotFound

type Storage interface {
	// Users
	CreateUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	SetUserType(userID, userType string) error
	SetTrainingCompleted(userID string) error

	// Volunteer applications
	CreateApplication(app *models.VolunteerApplication) error
	GetApplicationByID(id uint) (*models.VolunteerApplication, error)
	HasPendingApplication(userID string) (bool, error)
	ListApplications(status string) ([]models.VolunteerApplication, error)
	UpdateApplication(app *models.VolunteerApplication) error

	// Sessions
	CreateSession(session *models.ChatSession) error
	GetSessionByID(id string) (*models.ChatSession, error)
	ListWaitingSessions() ([]models.ChatSession, error)
	GetOpenSessionForUser(userID, role string) (*models.ChatSession, error)
	ClaimWaitingSession(sessionID, volunteerID string, startedAt time.Time) (bool, error)
	MarkSessionContinued(sessionID, seekerID string) (bool, error)
	CloseSession(sessionID string, endedAt time.Time) (bool, error)
	UpdateSessionReward(sessionID string, durationMinutes int, points int64, amount float64) error

	// Participants
	AddParticipant(p *models.SessionParticipant) error
	GetParticipants(sessionID string) ([]models.SessionParticipant, error)
	CountActiveParticipants(sessionID string) (int64, error)
	IsActiveParticipant(sessionID, userID string) (bool, error)
	GetParticipant(sessionID, userID string) (*models.SessionParticipant, error)
	CloseParticipants(sessionID string, leftAt time.Time) error

	// Volunteer availability and earnings
	EnsureAvailability(volunteerID string) error
	GetAvailability(volunteerID string) (*models.VolunteerAvailability, error)
	SetAvailability(volunteerID string, online bool, maxConcurrent int) error
	IncrementActiveSessions(volunteerID string) error
	DecrementActiveSessions(volunteerID string) error
	ActiveRewardSettings() (*models.RewardSettings, error)
	ReplaceRewardSettings(settings *models.RewardSettings) error
	UpsertEarning(e *models.VolunteerEarning) error
	ListEarnings(volunteerID string) ([]models.VolunteerEarning, error)

	// Feedback
	UpsertFeedback(f *models.SessionFeedback) error
	GetFeedbackByID(id uint) (*models.SessionFeedback, error)
	ListFeedback(flaggedOnly bool) ([]models.SessionFeedback, error)
	UpdateFeedback(f *models.SessionFeedback) error

	// Donations
	CreateDonation(d *models.Donation) error
	GetDonationByTxRef(txRef string) (*models.Donation, error)
	SettleDonation(txRef, status string) (bool, error)
	ListDonations(page, pageSize int) ([]models.Donation, int64, error)

	// Signaling (poll variant + pub/sub bridge)
	SaveSignal(msg *models.SignalMessage) error
	FetchSignals(sessionID, userID string, after uint, limit int) ([]models.SignalMessage, error)
	PublishSignal(sessionID string, env models.SignalEnvelope) error
	SubscribeSignals() *redis.PubSub

	// Presence and bans (Redis)
	SetPresence(volunteerID string, ttl time.Duration) error
	ClearPresence(volunteerID string) error
	OnlineVolunteerIDs() ([]string, error)
	BanUser(userID string, duration time.Duration) error
	UnbanUser(userID string) error
	IsUserBanned(userID string) (bool, error)
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// Migrate creates or updates all tables.
func (s *Service) Migrate() error {
	return s.DB.AutoMigrate(
		&models.User{},
		&models.VolunteerApplication{},
		&models.ChatSession{},
		&models.SessionParticipant{},
		&models.VolunteerAvailability{},
		&models.VolunteerEarning{},
		&models.RewardSettings{},
		&models.SessionFeedback{},
		&models.Donation{},
		&models.SignalMessage{},
	)
}
