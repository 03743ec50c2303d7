package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"listeningroom/backend/internal/auth"
	"listeningroom/backend/internal/models"
)

// presenceTTL bounds how long a volunteer stays listed as online without a
// status refresh.
const presenceTTL = 5 * time.Minute

type applyRequest struct {
	Motivation  string   `json:"motivation" binding:"required,min=20"`
	Experience  string   `json:"experience"`
	Specialties []string `json:"specialties"`
}

// ApplyVolunteer files a volunteer application for the calling seeker.
func (h *Handler) ApplyVolunteer(c *gin.Context) {
	if c.GetString(auth.ContextUserType) != models.UserTypeSeeker {
		c.JSON(http.StatusForbidden, gin.H{"error": "only seekers can apply"})
		return
	}

	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	callerID := auth.CallerID(c)
	if pending, err := h.Store.HasPendingApplication(callerID); err != nil {
		log.Error().Err(err).Msg("checking pending application")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	} else if pending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "an application is already pending"})
		return
	}

	app := &models.VolunteerApplication{
		UserID:      callerID,
		Motivation:  req.Motivation,
		Experience:  req.Experience,
		Specialties: req.Specialties,
		Status:      models.ApplicationPending,
	}
	if err := h.Store.CreateApplication(app); err != nil {
		log.Error().Err(err).Msg("creating application")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	h.notifyAdmin("New volunteer application", "Application from user "+callerID+" awaits review.")
	c.JSON(http.StatusCreated, gin.H{"application": app})
}

// CompleteTraining marks the calling volunteer as trained, unlocking joins.
func (h *Handler) CompleteTraining(c *gin.Context) {
	if err := h.Store.SetTrainingCompleted(auth.CallerID(c)); err != nil {
		log.Error().Err(err).Msg("marking training complete")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "training completed"})
}

type statusRequest struct {
	Online                bool `json:"online"`
	MaxConcurrentSessions int  `json:"max_concurrent_sessions"`
}

// SetVolunteerStatus updates availability; the redis presence key expires
// on its own when refreshes stop.
func (h *Handler) SetVolunteerStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MaxConcurrentSessions < 1 {
		req.MaxConcurrentSessions = 1
	}

	callerID := auth.CallerID(c)
	if err := h.Store.SetAvailability(callerID, req.Online, req.MaxConcurrentSessions); err != nil {
		log.Error().Err(err).Msg("updating availability")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if req.Online {
		if err := h.Store.SetPresence(callerID, presenceTTL); err != nil {
			log.Error().Err(err).Str("volunteer_id", callerID).Msg("setting presence")
		}
	} else if err := h.Store.ClearPresence(callerID); err != nil {
		log.Error().Err(err).Str("volunteer_id", callerID).Msg("clearing presence")
	}

	c.JSON(http.StatusOK, gin.H{"online": req.Online, "max_concurrent_sessions": req.MaxConcurrentSessions})
}

type onlineVolunteer struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Specialties []string `json:"specialties"`
	Languages   []string `json:"languages"`
}

// OnlineVolunteers lists volunteers with a live presence key.
func (h *Handler) OnlineVolunteers(c *gin.Context) {
	ids, err := h.Store.OnlineVolunteerIDs()
	if err != nil {
		log.Error().Err(err).Msg("listing online volunteers")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	volunteers := make([]onlineVolunteer, 0, len(ids))
	for _, id := range ids {
		user, err := h.Store.GetUserByID(id)
		if err != nil {
			// Presence key outlived the account; skip it.
			continue
		}
		volunteers = append(volunteers, onlineVolunteer{
			ID:          user.ID,
			DisplayName: user.DisplayName,
			Specialties: user.Specialties,
			Languages:   user.Languages,
		})
	}
	c.JSON(http.StatusOK, gin.H{"volunteers": volunteers})
}
