package signalhub_test

import (
	"listeningroom/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

// MockStore mocks the hub's storage slice.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) IsActiveParticipant(sessionID, userID string) (bool, error) {
	args := m.Called(sessionID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) PublishSignal(sessionID string, env models.SignalEnvelope) error {
	return m.Called(sessionID, env).Error(0)
}

func (m *MockStore) SubscribeSignals() *redis.PubSub {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*redis.PubSub)
}

// MockClient is an in-memory relay connection.
type MockClient struct {
	userID    string
	sessionID string
	Recv      chan models.SignalEnvelope
	Closed    bool
}

func newMockClient(sessionID, userID string) *MockClient {
	return &MockClient{
		userID:    userID,
		sessionID: sessionID,
		Recv:      make(chan models.SignalEnvelope, 10),
	}
}

func (c *MockClient) GetUserID() string    { return c.userID }
func (c *MockClient) GetSessionID() string { return c.sessionID }
func (c *MockClient) GetSendChannel() chan<- models.SignalEnvelope {
	return c.Recv
}
func (c *MockClient) Run()   {}
func (c *MockClient) Close() { c.Closed = true }
