// Package signalhub is the in-process side of the WebRTC signaling relay.
// Each session maps to a room of authenticated websocket clients; all
// traffic is fanned out through Redis pub/sub so rooms split across
// instances stay connected.
package signalhub

import (
	"encoding/json"
	"time"

	"listeningroom/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Store is the slice of storage the hub needs.
type Store interface {
	IsActiveParticipant(sessionID, userID string) (bool, error)
	PublishSignal(sessionID string, env models.SignalEnvelope) error
	SubscribeSignals() *redis.PubSub
}

// Manager owns the room registry. All map access happens inside Run's
// select loop, so no locking is needed.
type Manager struct {
	// Rooms maps session id -> user id -> client. Local sockets only;
	// peers on other instances are reached via pub/sub.
	Rooms map[string]map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client
	ForwardCh    chan models.SignalEnvelope

	Store    Store
	PubSubCh chan models.SignalEnvelope
}

func NewManager(store Store) *Manager {
	return &Manager{
		Rooms:        make(map[string]map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		ForwardCh:    make(chan models.SignalEnvelope),
		Store:        store,
		PubSubCh:     make(chan models.SignalEnvelope, 64),
	}
}

// Authorize checks that a user may open a relay connection for a session.
func (m *Manager) Authorize(sessionID, userID string) (bool, error) {
	return m.Store.IsActiveParticipant(sessionID, userID)
}

// Run is the hub's dispatcher goroutine.
func (m *Manager) Run() {
	m.startPubSubListener()

	for {
		select {
		case client := <-m.RegisterCh:
			m.addClient(client)

		case client := <-m.UnregisterCh:
			m.removeClient(client)

		case env := <-m.ForwardCh:
			// Everything goes through Redis, including traffic between two
			// local peers; fan-out happens on receipt below.
			if err := m.Store.PublishSignal(env.SessionID, env); err != nil {
				log.Error().Err(err).Str("session_id", env.SessionID).Msg("publishing signal")
			}

		case env := <-m.PubSubCh:
			m.fanOut(env)
		}
	}
}

func (m *Manager) addClient(client Client) {
	room, ok := m.Rooms[client.GetSessionID()]
	if !ok {
		room = make(map[string]Client)
		m.Rooms[client.GetSessionID()] = room
	}
	if existing, ok := room[client.GetUserID()]; ok {
		existing.Close()
	}
	room[client.GetUserID()] = client
	log.Info().
		Str("session_id", client.GetSessionID()).
		Str("user_id", client.GetUserID()).
		Msg("relay client joined")
}

func (m *Manager) removeClient(client Client) {
	room, ok := m.Rooms[client.GetSessionID()]
	if !ok {
		return
	}
	if room[client.GetUserID()] != client {
		// A reconnect already replaced this socket.
		return
	}
	delete(room, client.GetUserID())
	client.Close()
	if len(room) == 0 {
		delete(m.Rooms, client.GetSessionID())
	}

	left := models.SignalEnvelope{
		SessionID: client.GetSessionID(),
		From:      client.GetUserID(),
		Type:      models.SignalParticipantLeft,
		Timestamp: time.Now(),
	}
	if err := m.Store.PublishSignal(left.SessionID, left); err != nil {
		log.Error().Err(err).Str("session_id", left.SessionID).Msg("publishing participant-left")
	}
	log.Info().
		Str("session_id", client.GetSessionID()).
		Str("user_id", client.GetUserID()).
		Msg("relay client left")
}

// fanOut delivers a signal to every local room member except its author,
// honoring targeted envelopes.
func (m *Manager) fanOut(env models.SignalEnvelope) {
	room, ok := m.Rooms[env.SessionID]
	if !ok {
		return
	}
	for userID, client := range room {
		if userID == env.From {
			continue
		}
		if env.To != "" && env.To != userID {
			continue
		}
		select {
		case client.GetSendChannel() <- env:
		default:
			// Slow consumer; drop the socket rather than block the hub.
			go func(c Client) { m.UnregisterCh <- c }(client)
		}
	}
}

// startPubSubListener bridges Redis pub/sub into the dispatcher loop.
func (m *Manager) startPubSubListener() {
	go func() {
		pubsub := m.Store.SubscribeSignals()
		if pubsub == nil {
			return
		}
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var env models.SignalEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Error().Err(err).Msg("unmarshalling pub/sub signal")
				continue
			}
			m.PubSubCh <- env
		}
	}()
}
