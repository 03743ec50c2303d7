package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type detectRequest struct {
	IP string `json:"ip"`
}

// DetectLocation geolocates the caller so the donate page can preselect a
// currency. A posted ip overrides the connection's address.
func (h *Handler) DetectLocation(c *gin.Context) {
	ip := c.Query("ip")
	if c.Request.Method == http.MethodPost {
		var req detectRequest
		if err := c.ShouldBindJSON(&req); err == nil && req.IP != "" {
			ip = req.IP
		}
	}
	if ip == "" {
		ip = c.ClientIP()
	}

	detection := h.Detector.Detect(c.Request.Context(), ip)
	c.JSON(http.StatusOK, detection)
}

// ExchangeRates returns rates against the requested base currency, marking
// whether they are live or the static fallback.
func (h *Handler) ExchangeRates(c *gin.Context) {
	base := c.DefaultQuery("base", "USD")
	rates, live := h.Detector.Rates(c.Request.Context(), base)
	c.JSON(http.StatusOK, gin.H{"base": base, "rates": rates, "live": live})
}
