package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"listeningroom/backend/internal/auth"
	"listeningroom/backend/internal/models"
)

type createSessionRequest struct {
	SessionType string `json:"session_type"`
	Topic       string `json:"topic" binding:"max=200"`
}

// CreateSession opens a waiting session for the caller.
func (h *Handler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.Sessions.Create(auth.CallerID(c), req.SessionType, req.Topic)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": sess})
}

// ListWaitingSessions returns sessions a volunteer can join.
func (h *Handler) ListWaitingSessions(c *gin.Context) {
	sessions, err := h.Store.ListWaitingSessions()
	if err != nil {
		log.Error().Err(err).Msg("listing waiting sessions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// GetSession returns a session with participants. Admins may read any
// session; everyone else must be a participant.
func (h *Handler) GetSession(c *gin.Context) {
	isAdmin := c.GetString(auth.ContextUserType) == models.UserTypeAdmin
	detail, err := h.Sessions.Get(c.Param("id"), auth.CallerID(c), isAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// JoinSession claims a waiting session for a volunteer.
func (h *Handler) JoinSession(c *gin.Context) {
	detail, err := h.Sessions.Join(c.Param("id"), auth.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// ContinueSession marks an active session as continued past the free limit.
func (h *Handler) ContinueSession(c *gin.Context) {
	if err := h.Sessions.Continue(c.Param("id"), auth.CallerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session continued"})
}

// EndSession closes a session; reward settlement is reported but its
// failure never turns into an error response.
func (h *Handler) EndSession(c *gin.Context) {
	result, err := h.Sessions.End(c.Param("id"), auth.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":           result.Session,
		"message":           "session ended",
		"reward_calculated": result.RewardCalculated,
	})
}

type feedbackRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

// LeaveFeedback records a rating for an ended session. Low ratings raise
// an admin alert.
func (h *Handler) LeaveFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	feedback, err := h.Sessions.LeaveFeedback(c.Param("id"), auth.CallerID(c), req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	if feedback.Flagged {
		h.notifyAdmin("Flagged feedback",
			"A session received a rating of "+strconv.Itoa(feedback.Rating)+" and needs review. Session: "+feedback.SessionID)
	}
	c.JSON(http.StatusCreated, gin.H{"feedback": feedback})
}

// ListEarnings returns the caller's per-session earnings plus totals.
func (h *Handler) ListEarnings(c *gin.Context) {
	earnings, err := h.Store.ListEarnings(auth.CallerID(c))
	if err != nil {
		log.Error().Err(err).Msg("listing earnings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	var totalPoints int64
	var totalAmount float64
	var totalMinutes int
	for _, e := range earnings {
		totalPoints += e.PointsEarned
		totalAmount += e.AmountEarned
		totalMinutes += e.TimeSpentMinutes
	}
	c.JSON(http.StatusOK, gin.H{
		"earnings": earnings,
		"totals": gin.H{
			"points":  totalPoints,
			"amount":  totalAmount,
			"minutes": totalMinutes,
		},
	})
}
