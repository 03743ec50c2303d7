package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeProvider creates hosted Checkout sessions. The donation's TxRef
// rides along as the session's client reference id and comes back on the
// completion event.
type StripeProvider struct {
	webhookSecret string
}

func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{webhookSecret: webhookSecret}
}

func (p *StripeProvider) Name() string { return "stripe" }

func (p *StripeProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(req.Currency)),
					UnitAmount: stripe.Int64(req.AmountMinor),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Listening Room donation"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(req.TxRef),
		CustomerEmail:     stripe.String(req.Email),
		SuccessURL:        stripe.String(req.RedirectURL),
		CancelURL:         stripe.String(req.RedirectURL),
	}
	params.Context = ctx

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("creating stripe checkout session: %w", err)
	}
	return sess.URL, nil
}

// VerifyWebhook checks the event signature and extracts the settlement
// outcome. Events that are not checkout completions return (nil, nil).
func (p *StripeProvider) VerifyWebhook(payload []byte, signature string) (*WebhookResult, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, ErrUnverifiedWebhook
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("decoding checkout session event: %w", err)
		}
		return &WebhookResult{TxRef: sess.ClientReferenceID, Succeeded: true}, nil

	case "checkout.session.async_payment_failed", "checkout.session.expired":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("decoding checkout session event: %w", err)
		}
		return &WebhookResult{TxRef: sess.ClientReferenceID, Succeeded: false}, nil
	}
	return nil, nil
}
