// Package payments integrates the donation checkout providers: Stripe for
// card-first currencies and Flutterwave for the African mobile-money
// corridors.
package payments

import (
	"context"
	"errors"
)

var ErrUnverifiedWebhook = errors.New("webhook verification failed")

// CheckoutRequest describes one donation to collect. AmountMinor is in
// minor currency units.
type CheckoutRequest struct {
	TxRef       string
	Email       string
	Name        string
	Currency    string
	AmountMinor int64
	RedirectURL string
	Message     string
}

// Provider creates a hosted checkout and returns the URL to send the donor
// to.
type Provider interface {
	Name() string
	CreateCheckout(ctx context.Context, req CheckoutRequest) (paymentURL string, err error)
}

// WebhookResult is the outcome extracted from a verified provider callback.
type WebhookResult struct {
	TxRef     string
	Succeeded bool
}

// stripeCurrencies are the currencies routed to Stripe; everything else
// goes to Flutterwave when it is configured.
var stripeCurrencies = map[string]bool{
	"USD": true,
	"EUR": true,
	"GBP": true,
	"CAD": true,
	"AUD": true,
}

// RouteCurrency picks the provider name for a currency.
func RouteCurrency(currency string, flutterwaveConfigured bool) string {
	if !flutterwaveConfigured || stripeCurrencies[currency] {
		return "stripe"
	}
	return "flutterwave"
}
