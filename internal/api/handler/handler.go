// Package handler is the HTTP surface: route registration, request
// binding, and the mapping from service errors to status codes.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"listeningroom/backend/internal/auth"
	"listeningroom/backend/internal/location"
	"listeningroom/backend/internal/models"
	"listeningroom/backend/internal/notify"
	"listeningroom/backend/internal/payments"
	"listeningroom/backend/internal/session"
	"listeningroom/backend/internal/signalhub"
	"listeningroom/backend/internal/storage"
)

type Handler struct {
	Store       storage.Storage
	Sessions    *session.Service
	Auth        *auth.Service
	Hub         *signalhub.Manager
	Stripe      *payments.StripeProvider
	Flutterwave *payments.FlutterwaveProvider
	Detector    *location.Detector
	Notify      *notify.Queue

	// DonationRedirectURL is where providers send the donor after checkout.
	DonationRedirectURL string
}

func NewHandler(
	store storage.Storage,
	sessions *session.Service,
	authSvc *auth.Service,
	hub *signalhub.Manager,
	stripeProvider *payments.StripeProvider,
	flwProvider *payments.FlutterwaveProvider,
	detector *location.Detector,
	queue *notify.Queue,
	donationRedirectURL string,
) *Handler {
	return &Handler{
		Store:               store,
		Sessions:            sessions,
		Auth:                authSvc,
		Hub:                 hub,
		Stripe:              stripeProvider,
		Flutterwave:         flwProvider,
		Detector:            detector,
		Notify:              queue,
		DonationRedirectURL: donationRedirectURL,
	}
}

// RegisterRoutes wires every endpoint onto the router.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)

	r.POST("/api/donations", h.CreateDonation)
	r.POST("/api/donations/webhook/:provider", h.DonationWebhook)

	r.GET("/api/location/detect", h.DetectLocation)
	r.POST("/api/location/detect", h.DetectLocation)
	r.GET("/api/location/rates", h.ExchangeRates)

	r.GET("/ws", h.ServeWebSocket)

	authed := r.Group("/api", h.Auth.RequireAuth())
	{
		authed.GET("/auth/me", h.Me)

		authed.POST("/sessions", h.CreateSession)
		authed.GET("/sessions/waiting", auth.RequireRole(models.UserTypeVolunteer), h.ListWaitingSessions)
		authed.GET("/sessions/:id", h.GetSession)
		authed.POST("/sessions/:id/join", h.JoinSession)
		authed.POST("/sessions/:id/continue", h.ContinueSession)
		authed.POST("/sessions/:id/end", h.EndSession)
		authed.POST("/sessions/:id/feedback", h.LeaveFeedback)

		authed.POST("/volunteers/apply", h.ApplyVolunteer)
		authed.POST("/volunteers/training/complete", auth.RequireRole(models.UserTypeVolunteer), h.CompleteTraining)
		authed.POST("/volunteers/status", auth.RequireRole(models.UserTypeVolunteer), h.SetVolunteerStatus)
		authed.GET("/volunteers/online", h.OnlineVolunteers)
		authed.GET("/volunteers/earnings", auth.RequireRole(models.UserTypeVolunteer), h.ListEarnings)

		authed.POST("/signaling", h.PostSignal)
		authed.GET("/signaling", h.FetchSignals)

		admin := authed.Group("/admin", auth.RequireRole(models.UserTypeAdmin))
		{
			admin.GET("/applications", h.ListApplications)
			admin.POST("/applications/:id/review", h.ReviewApplication)
			admin.GET("/feedback", h.ListFeedback)
			admin.POST("/feedback/:id/review", h.ReviewFeedback)
			admin.GET("/donations", h.ListDonations)
			admin.GET("/reward-settings", h.GetRewardSettings)
			admin.PUT("/reward-settings", h.UpdateRewardSettings)
			admin.POST("/users/:id/ban", h.BanUser)
			admin.POST("/users/:id/unban", h.UnbanUser)
		}
	}
}

// notifyAdmin enqueues a best-effort alert to the admin channel.
func (h *Handler) notifyAdmin(subject, body string) {
	if h.Notify == nil {
		return
	}
	h.Notify.Enqueue(notify.Notification{
		Kind:    notify.KindAdminAlert,
		Subject: subject,
		Body:    body,
	})
}

// respondError translates session sentinels into status codes; everything
// else is a 500 with a generic message so internals never leak.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrNotParticipant),
		errors.Is(err, session.ErrNotVolunteer),
		errors.Is(err, session.ErrTrainingRequired),
		errors.Is(err, session.ErrBanned):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrSessionNotWaiting),
		errors.Is(err, session.ErrSessionNotActive),
		errors.Is(err, session.ErrSessionNotEnded),
		errors.Is(err, session.ErrSessionFull),
		errors.Is(err, session.ErrAlreadyJoined),
		errors.Is(err, session.ErrVolunteerBusy),
		errors.Is(err, session.ErrSeekerBusy):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
