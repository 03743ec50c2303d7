package signalhub

import (
	"encoding/json"
	"time"

	"listeningroom/backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	authWait       = 10 * time.Second
	maxMessageSize = 8192 // SDP offers are chunky
)

// Authenticator validates the token carried by the first frame.
type Authenticator interface {
	VerifyToken(token string) (userID string, err error)
}

// WebSocketClient implements Client over a gorilla/websocket connection.
// The connection is unauthenticated until the peer's first frame, which
// must be an auth message; only then does the client register with the hub.
type WebSocketClient struct {
	UserID    string
	SessionID string
	Conn      *websocket.Conn
	Hub       *Manager
	Auth      Authenticator
	Send      chan models.SignalEnvelope
}

func (c *WebSocketClient) GetUserID() string    { return c.UserID }
func (c *WebSocketClient) GetSessionID() string { return c.SessionID }
func (c *WebSocketClient) GetSendChannel() chan<- models.SignalEnvelope {
	return c.Send
}

// Run starts the pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the send channel, which stops writePump.
func (c *WebSocketClient) Close() {
	close(c.Send)
}

// authenticate consumes the first frame and verifies it. Returns false when
// the connection must be dropped.
func (c *WebSocketClient) authenticate() bool {
	c.Conn.SetReadDeadline(time.Now().Add(authWait))

	_, raw, err := c.Conn.ReadMessage()
	if err != nil {
		return false
	}

	var env models.SignalEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Type != models.SignalAuth || env.Token == "" {
		c.closeWithPolicyViolation("auth message required")
		return false
	}

	userID, err := c.Auth.VerifyToken(env.Token)
	if err != nil {
		c.closeWithPolicyViolation("invalid token")
		return false
	}

	allowed, err := c.Hub.Authorize(c.SessionID, userID)
	if err != nil {
		log.Error().Err(err).Str("session_id", c.SessionID).Msg("relay auth check")
		c.closeWithPolicyViolation("authorization failed")
		return false
	}
	if !allowed {
		c.closeWithPolicyViolation("not a session participant")
		return false
	}

	c.UserID = userID
	return true
}

func (c *WebSocketClient) closeWithPolicyViolation(reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	c.Conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	c.Conn.Close()
}

func (c *WebSocketClient) readPump() {
	defer c.Conn.Close()

	c.Conn.SetReadLimit(maxMessageSize)

	if !c.authenticate() {
		// Never registered; just stop the write pump.
		c.Close()
		return
	}
	c.Hub.RegisterCh <- c
	defer func() { c.Hub.UnregisterCh <- c }()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("user_id", c.UserID).Msg("relay read error")
			}
			break
		}

		var env models.SignalEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Warn().Err(err).Str("user_id", c.UserID).Msg("dropping malformed signal frame")
			continue
		}

		// The relay, not the peer, decides sender identity.
		env.From = c.UserID
		env.SessionID = c.SessionID
		env.Token = ""
		env.Timestamp = time.Now()

		c.Hub.ForwardCh <- env
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(env)
			if err != nil {
				log.Error().Err(err).Str("user_id", c.UserID).Msg("encoding signal frame")
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
