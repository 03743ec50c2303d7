package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"listeningroom/backend/internal/auth"
	"listeningroom/backend/internal/models"
	"listeningroom/backend/internal/signalhub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Clients connect from the web app's origin; auth happens on the first
	// frame, so the origin check stays permissive.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection for the realtime relay variant.
// The socket stays unauthenticated until its first frame carries a valid
// token for an active participant of the session.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &signalhub.WebSocketClient{
		SessionID: sessionID,
		Conn:      conn,
		Hub:       h.Hub,
		Auth:      h.Auth,
		Send:      make(chan models.SignalEnvelope, 256),
	}
	client.Run()
}

type postSignalRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Type      string `json:"type" binding:"required,max=40"`
	ToUserID  string `json:"to_user_id"`
	Data      string `json:"data"`
}

// PostSignal stores a relay message for the poll-based variant and also
// publishes it so websocket peers in the same session receive it live.
func (h *Handler) PostSignal(c *gin.Context) {
	var req postSignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	callerID := auth.CallerID(c)
	if ok := h.requireActiveParticipant(c, req.SessionID, callerID); !ok {
		return
	}

	msg := &models.SignalMessage{
		SessionID:  req.SessionID,
		FromUserID: callerID,
		Type:       req.Type,
		Payload:    req.Data,
	}
	if req.ToUserID != "" {
		msg.ToUserID = &req.ToUserID
	}
	if err := h.Store.SaveSignal(msg); err != nil {
		log.Error().Err(err).Msg("storing signal")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	env := msg.Envelope()
	env.Timestamp = time.Now()
	if err := h.Store.PublishSignal(req.SessionID, env); err != nil {
		log.Error().Err(err).Str("session_id", req.SessionID).Msg("publishing signal")
	}

	c.JSON(http.StatusCreated, gin.H{"signal": env})
}

// FetchSignals returns undelivered messages newer than the caller's cursor
// and marks them delivered.
func (h *Handler) FetchSignals(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}
	after, _ := strconv.ParseUint(c.DefaultQuery("after", "0"), 10, 32)

	callerID := auth.CallerID(c)
	if ok := h.requireActiveParticipant(c, sessionID, callerID); !ok {
		return
	}

	messages, err := h.Store.FetchSignals(sessionID, callerID, uint(after), 50)
	if err != nil {
		log.Error().Err(err).Msg("fetching signals")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	envelopes := make([]models.SignalEnvelope, 0, len(messages))
	for i := range messages {
		envelopes = append(envelopes, messages[i].Envelope())
	}
	c.JSON(http.StatusOK, gin.H{"signals": envelopes})
}

// requireActiveParticipant gates both signaling variants' HTTP endpoints.
func (h *Handler) requireActiveParticipant(c *gin.Context, sessionID, userID string) bool {
	active, err := h.Store.IsActiveParticipant(sessionID, userID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("checking relay membership")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return false
	}
	if !active {
		c.JSON(http.StatusForbidden, gin.H{"error": "not an active participant of this session"})
		return false
	}
	return true
}
