package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"listeningroom/backend/internal/models"
	"listeningroom/backend/internal/notify"
	"listeningroom/backend/internal/payments"
)

type donationRequest struct {
	AmountMinor int64  `json:"amount_minor" binding:"required,gt=0"`
	Currency    string `json:"currency" binding:"required,len=3"`
	Email       string `json:"email" binding:"required,email"`
	Name        string `json:"name" binding:"max=120"`
	Message     string `json:"message" binding:"max=2000"`
}

// CreateDonation stores a pending donation and returns the provider's
// hosted checkout URL.
func (h *Handler) CreateDonation(c *gin.Context) {
	var req donationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	currency := strings.ToUpper(req.Currency)

	providerName := payments.RouteCurrency(currency, h.Flutterwave != nil && h.Flutterwave.Configured())
	var provider payments.Provider = h.Stripe
	if providerName == models.ProviderFlutterwave {
		provider = h.Flutterwave
	}

	donation := &models.Donation{
		DonorEmail:  strings.ToLower(req.Email),
		DonorName:   req.Name,
		AmountMinor: req.AmountMinor,
		Currency:    currency,
		Provider:    providerName,
		TxRef:       "lr-" + uuid.New().String(),
		Status:      models.DonationPending,
		Message:     req.Message,
	}
	if err := h.Store.CreateDonation(donation); err != nil {
		log.Error().Err(err).Msg("storing donation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	paymentURL, err := provider.CreateCheckout(c.Request.Context(), payments.CheckoutRequest{
		TxRef:       donation.TxRef,
		Email:       donation.DonorEmail,
		Name:        donation.DonorName,
		Currency:    donation.Currency,
		AmountMinor: donation.AmountMinor,
		RedirectURL: h.DonationRedirectURL,
		Message:     donation.Message,
	})
	if err != nil {
		log.Error().Err(err).Str("provider", providerName).Str("tx_ref", donation.TxRef).Msg("creating checkout")
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"donation": donation, "payment_url": paymentURL})
}

// DonationWebhook handles provider callbacks. The status transition is
// pending to final only, so replayed events settle nothing twice.
func (h *Handler) DonationWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}

	var result *payments.WebhookResult
	switch c.Param("provider") {
	case models.ProviderStripe:
		result, err = h.Stripe.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	case models.ProviderFlutterwave:
		result, err = h.Flutterwave.VerifyWebhook(payload, c.GetHeader("verif-hash"))
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
		return
	}
	if err != nil {
		if errors.Is(err, payments.ErrUnverifiedWebhook) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "verification failed"})
			return
		}
		log.Error().Err(err).Msg("parsing webhook")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if result == nil {
		// Verified but not a settlement event.
		c.JSON(http.StatusOK, gin.H{"message": "ignored"})
		return
	}

	status := models.DonationFailed
	if result.Succeeded {
		status = models.DonationSucceeded
	}
	settled, err := h.Store.SettleDonation(result.TxRef, status)
	if err != nil {
		log.Error().Err(err).Str("tx_ref", result.TxRef).Msg("settling donation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if settled && result.Succeeded {
		h.thankDonor(result.TxRef)
	}
	c.JSON(http.StatusOK, gin.H{"message": "processed"})
}

// thankDonor enqueues the post-settlement notifications. Lookup failures
// only cost the thank-you, never the webhook response.
func (h *Handler) thankDonor(txRef string) {
	if h.Notify == nil {
		return
	}
	donation, err := h.Store.GetDonationByTxRef(txRef)
	if err != nil {
		log.Error().Err(err).Str("tx_ref", txRef).Msg("loading donation for thank-you")
		return
	}
	h.Notify.Enqueue(notify.Notification{
		Kind:      notify.KindDonorThankYou,
		Subject:   "Thank you for your donation",
		Body:      "Your donation of " + donation.Currency + " was received. Thank you for keeping the listening room open.",
		Recipient: donation.DonorEmail,
	})
	h.notifyAdmin("Donation received",
		donation.Currency+" donation settled, tx_ref "+donation.TxRef+".")
}
