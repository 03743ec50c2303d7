package handler_test

import (
	"time"

	"listeningroom/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

// MockStorage implements storage.Storage with testify/mock so tests can set
// per-method expectations.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateUser(user *models.User) error {
	return m.Called(user).Error(0)
}

func (m *MockStorage) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) SetUserType(userID, userType string) error {
	return m.Called(userID, userType).Error(0)
}

func (m *MockStorage) SetTrainingCompleted(userID string) error {
	return m.Called(userID).Error(0)
}

func (m *MockStorage) CreateApplication(app *models.VolunteerApplication) error {
	return m.Called(app).Error(0)
}

func (m *MockStorage) GetApplicationByID(id uint) (*models.VolunteerApplication, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VolunteerApplication), args.Error(1)
}

func (m *MockStorage) HasPendingApplication(userID string) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ListApplications(status string) ([]models.VolunteerApplication, error) {
	args := m.Called(status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VolunteerApplication), args.Error(1)
}

func (m *MockStorage) UpdateApplication(app *models.VolunteerApplication) error {
	return m.Called(app).Error(0)
}

func (m *MockStorage) CreateSession(session *models.ChatSession) error {
	return m.Called(session).Error(0)
}

func (m *MockStorage) GetSessionByID(id string) (*models.ChatSession, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatSession), args.Error(1)
}

func (m *MockStorage) ListWaitingSessions() ([]models.ChatSession, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatSession), args.Error(1)
}

func (m *MockStorage) GetOpenSessionForUser(userID, role string) (*models.ChatSession, error) {
	args := m.Called(userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatSession), args.Error(1)
}

func (m *MockStorage) ClaimWaitingSession(sessionID, volunteerID string, startedAt time.Time) (bool, error) {
	args := m.Called(sessionID, volunteerID, startedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) MarkSessionContinued(sessionID, seekerID string) (bool, error) {
	args := m.Called(sessionID, seekerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) CloseSession(sessionID string, endedAt time.Time) (bool, error) {
	args := m.Called(sessionID, endedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) UpdateSessionReward(sessionID string, durationMinutes int, points int64, amount float64) error {
	return m.Called(sessionID, durationMinutes, points, amount).Error(0)
}

func (m *MockStorage) AddParticipant(p *models.SessionParticipant) error {
	return m.Called(p).Error(0)
}

func (m *MockStorage) GetParticipants(sessionID string) ([]models.SessionParticipant, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SessionParticipant), args.Error(1)
}

func (m *MockStorage) CountActiveParticipants(sessionID string) (int64, error) {
	args := m.Called(sessionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) IsActiveParticipant(sessionID, userID string) (bool, error) {
	args := m.Called(sessionID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) GetParticipant(sessionID, userID string) (*models.SessionParticipant, error) {
	args := m.Called(sessionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionParticipant), args.Error(1)
}

func (m *MockStorage) CloseParticipants(sessionID string, leftAt time.Time) error {
	return m.Called(sessionID, leftAt).Error(0)
}

func (m *MockStorage) EnsureAvailability(volunteerID string) error {
	return m.Called(volunteerID).Error(0)
}

func (m *MockStorage) GetAvailability(volunteerID string) (*models.VolunteerAvailability, error) {
	args := m.Called(volunteerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VolunteerAvailability), args.Error(1)
}

func (m *MockStorage) SetAvailability(volunteerID string, online bool, maxConcurrent int) error {
	return m.Called(volunteerID, online, maxConcurrent).Error(0)
}

func (m *MockStorage) IncrementActiveSessions(volunteerID string) error {
	return m.Called(volunteerID).Error(0)
}

func (m *MockStorage) DecrementActiveSessions(volunteerID string) error {
	return m.Called(volunteerID).Error(0)
}

func (m *MockStorage) ActiveRewardSettings() (*models.RewardSettings, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RewardSettings), args.Error(1)
}

func (m *MockStorage) ReplaceRewardSettings(settings *models.RewardSettings) error {
	return m.Called(settings).Error(0)
}

func (m *MockStorage) UpsertEarning(e *models.VolunteerEarning) error {
	return m.Called(e).Error(0)
}

func (m *MockStorage) ListEarnings(volunteerID string) ([]models.VolunteerEarning, error) {
	args := m.Called(volunteerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VolunteerEarning), args.Error(1)
}

func (m *MockStorage) UpsertFeedback(f *models.SessionFeedback) error {
	return m.Called(f).Error(0)
}

func (m *MockStorage) GetFeedbackByID(id uint) (*models.SessionFeedback, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionFeedback), args.Error(1)
}

func (m *MockStorage) ListFeedback(flaggedOnly bool) ([]models.SessionFeedback, error) {
	args := m.Called(flaggedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SessionFeedback), args.Error(1)
}

func (m *MockStorage) UpdateFeedback(f *models.SessionFeedback) error {
	return m.Called(f).Error(0)
}

func (m *MockStorage) CreateDonation(d *models.Donation) error {
	return m.Called(d).Error(0)
}

func (m *MockStorage) GetDonationByTxRef(txRef string) (*models.Donation, error) {
	args := m.Called(txRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Donation), args.Error(1)
}

func (m *MockStorage) SettleDonation(txRef, status string) (bool, error) {
	args := m.Called(txRef, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ListDonations(page, pageSize int) ([]models.Donation, int64, error) {
	args := m.Called(page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Donation), args.Get(1).(int64), args.Error(2)
}

func (m *MockStorage) SaveSignal(msg *models.SignalMessage) error {
	return m.Called(msg).Error(0)
}

func (m *MockStorage) FetchSignals(sessionID, userID string, after uint, limit int) ([]models.SignalMessage, error) {
	args := m.Called(sessionID, userID, after, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SignalMessage), args.Error(1)
}

func (m *MockStorage) PublishSignal(sessionID string, env models.SignalEnvelope) error {
	return m.Called(sessionID, env).Error(0)
}

func (m *MockStorage) SubscribeSignals() *redis.PubSub {
	args := m.Called()
	return args.Get(0).(*redis.PubSub)
}

func (m *MockStorage) SetPresence(volunteerID string, ttl time.Duration) error {
	return m.Called(volunteerID, ttl).Error(0)
}

func (m *MockStorage) ClearPresence(volunteerID string) error {
	return m.Called(volunteerID).Error(0)
}

func (m *MockStorage) OnlineVolunteerIDs() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) BanUser(userID string, duration time.Duration) error {
	return m.Called(userID, duration).Error(0)
}

func (m *MockStorage) UnbanUser(userID string) error {
	return m.Called(userID).Error(0)
}

func (m *MockStorage) IsUserBanned(userID string) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}
