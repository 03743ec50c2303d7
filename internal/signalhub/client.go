package signalhub

import "listeningroom/backend/internal/models"

// Client is one authenticated relay connection. The hub manages clients
// through this interface so tests and future transports do not depend on
// gorilla/websocket.
type Client interface {
	// GetUserID returns the authenticated user behind the connection.
	GetUserID() string
	// GetSessionID returns the session room the connection belongs to.
	GetSessionID() string

	// GetSendChannel returns the channel the hub writes outbound signals to.
	GetSendChannel() chan<- models.SignalEnvelope

	// Run starts the connection's read and write pumps.
	Run()
	// Close shuts down the connection and its send channel.
	Close()
}
