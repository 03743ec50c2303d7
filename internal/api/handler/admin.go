package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"listeningroom/backend/internal/auth"
	"listeningroom/backend/internal/models"
	"listeningroom/backend/internal/rewards"
	"listeningroom/backend/internal/storage"
)

// ListApplications returns volunteer applications, optionally filtered by
// status.
func (h *Handler) ListApplications(c *gin.Context) {
	apps, err := h.Store.ListApplications(c.Query("status"))
	if err != nil {
		log.Error().Err(err).Msg("listing applications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

type reviewApplicationRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
	Notes  string `json:"notes" binding:"max=2000"`
}

// ReviewApplication approves or rejects a pending application. Approval
// promotes the user to volunteer and provisions their availability row.
func (h *Handler) ReviewApplication(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return
	}

	var req reviewApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.Store.GetApplicationByID(uint(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
			return
		}
		log.Error().Err(err).Msg("loading application")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if app.Status != models.ApplicationPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "application already reviewed"})
		return
	}

	reviewerID := auth.CallerID(c)
	now := time.Now()
	if req.Action == "approve" {
		app.Status = models.ApplicationApproved
	} else {
		app.Status = models.ApplicationRejected
	}
	app.ReviewNotes = req.Notes
	app.ReviewedBy = &reviewerID
	app.ReviewedAt = &now

	if err := h.Store.UpdateApplication(app); err != nil {
		log.Error().Err(err).Msg("updating application")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if app.Status == models.ApplicationApproved {
		if err := h.Store.SetUserType(app.UserID, models.UserTypeVolunteer); err != nil {
			log.Error().Err(err).Str("user_id", app.UserID).Msg("promoting user to volunteer")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if err := h.Store.EnsureAvailability(app.UserID); err != nil {
			log.Error().Err(err).Str("user_id", app.UserID).Msg("provisioning availability row")
		}
	}

	c.JSON(http.StatusOK, gin.H{"application": app})
}

// ListFeedback returns session feedback; ?flagged=true narrows to rows
// awaiting moderation.
func (h *Handler) ListFeedback(c *gin.Context) {
	flaggedOnly := c.Query("flagged") == "true"
	feedback, err := h.Store.ListFeedback(flaggedOnly)
	if err != nil {
		log.Error().Err(err).Msg("listing feedback")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": feedback})
}

// ReviewFeedback marks a feedback row as reviewed.
func (h *Handler) ReviewFeedback(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid feedback id"})
		return
	}

	feedback, err := h.Store.GetFeedbackByID(uint(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "feedback not found"})
			return
		}
		log.Error().Err(err).Msg("loading feedback")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	reviewerID := auth.CallerID(c)
	now := time.Now()
	feedback.Reviewed = true
	feedback.ReviewedBy = &reviewerID
	feedback.ReviewedAt = &now
	if err := h.Store.UpdateFeedback(feedback); err != nil {
		log.Error().Err(err).Msg("updating feedback")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": feedback})
}

// ListDonations returns donations newest first with a total count.
func (h *Handler) ListDonations(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	donations, total, err := h.Store.ListDonations(page, pageSize)
	if err != nil {
		log.Error().Err(err).Msg("listing donations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"donations": donations,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetRewardSettings returns the active rate table, falling back to the
// built-in defaults when none has been configured.
func (h *Handler) GetRewardSettings(c *gin.Context) {
	row, err := h.Store.ActiveRewardSettings()
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Error().Err(err).Msg("loading reward settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	settings := rewards.Settings(row)
	c.JSON(http.StatusOK, gin.H{
		"points_per_minute":       settings.PointsPerMinute,
		"points_to_dollar_rate":   settings.PointsToDollarRate,
		"continuation_multiplier": settings.ContinuationMultiplier,
		"configured":              row != nil,
	})
}

type rewardSettingsRequest struct {
	PointsPerMinute        float64 `json:"points_per_minute" binding:"required,gt=0"`
	PointsToDollarRate     float64 `json:"points_to_dollar_rate" binding:"required,gt=0"`
	ContinuationMultiplier float64 `json:"continuation_multiplier" binding:"required,gte=1"`
}

// UpdateRewardSettings replaces the active rate table, keeping the old row
// for history.
func (h *Handler) UpdateRewardSettings(c *gin.Context) {
	var req rewardSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings := &models.RewardSettings{
		PointsPerMinute:        req.PointsPerMinute,
		PointsToDollarRate:     req.PointsToDollarRate,
		ContinuationMultiplier: req.ContinuationMultiplier,
		IsActive:               true,
	}
	if err := h.Store.ReplaceRewardSettings(settings); err != nil {
		log.Error().Err(err).Msg("replacing reward settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

type banRequest struct {
	Hours int `json:"hours" binding:"gte=0"`
}

// BanUser sets the redis ban flag; zero hours means no expiry.
func (h *Handler) BanUser(c *gin.Context) {
	var req banRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.Param("id")
	if _, err := h.Store.GetUserByID(userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Error().Err(err).Msg("loading user for ban")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if err := h.Store.BanUser(userID, time.Duration(req.Hours)*time.Hour); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("banning user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user banned"})
}

// UnbanUser clears the redis ban flag.
func (h *Handler) UnbanUser(c *gin.Context) {
	userID := c.Param("id")
	if err := h.Store.UnbanUser(userID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("unbanning user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user unbanned"})
}
