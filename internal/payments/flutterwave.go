package payments

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const flutterwaveBaseURL = "https://api.flutterwave.com/v3"

// FlutterwaveProvider drives the Flutterwave v3 payments REST API. There is
// no official Go SDK; the surface we need is one JSON POST.
type FlutterwaveProvider struct {
	secretKey string
	verifHash string
	baseURL   string
	client    *http.Client
}

func NewFlutterwaveProvider(secretKey, verifHash string) *FlutterwaveProvider {
	return &FlutterwaveProvider{
		secretKey: secretKey,
		verifHash: verifHash,
		baseURL:   flutterwaveBaseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *FlutterwaveProvider) Name() string { return "flutterwave" }

func (p *FlutterwaveProvider) Configured() bool { return p.secretKey != "" }

type flwPaymentRequest struct {
	TxRef       string `json:"tx_ref"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	RedirectURL string `json:"redirect_url"`
	Customer    struct {
		Email string `json:"email"`
		Name  string `json:"name,omitempty"`
	} `json:"customer"`
	Customizations struct {
		Title       string `json:"title"`
		Description string `json:"description,omitempty"`
	} `json:"customizations"`
}

type flwPaymentResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

func (p *FlutterwaveProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error) {
	body := flwPaymentRequest{
		TxRef:       req.TxRef,
		Amount:      fmt.Sprintf("%.2f", float64(req.AmountMinor)/100),
		Currency:    req.Currency,
		RedirectURL: req.RedirectURL,
	}
	body.Customer.Email = req.Email
	body.Customer.Name = req.Name
	body.Customizations.Title = "Listening Room donation"
	body.Customizations.Description = req.Message

	raw, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/payments", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.secretKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling flutterwave: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("flutterwave returned status %d", resp.StatusCode)
	}

	var parsed flwPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding flutterwave response: %w", err)
	}
	if parsed.Status != "success" || parsed.Data.Link == "" {
		return "", fmt.Errorf("flutterwave rejected payment: %s", parsed.Message)
	}
	return parsed.Data.Link, nil
}

type flwWebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		TxRef  string `json:"tx_ref"`
		Status string `json:"status"`
	} `json:"data"`
}

// VerifyWebhook checks the verif-hash header Flutterwave sends with every
// callback and extracts the settlement outcome. Non-charge events return
// (nil, nil).
func (p *FlutterwaveProvider) VerifyWebhook(payload []byte, receivedHash string) (*WebhookResult, error) {
	if p.verifHash == "" ||
		subtle.ConstantTimeCompare([]byte(p.verifHash), []byte(receivedHash)) != 1 {
		return nil, ErrUnverifiedWebhook
	}

	var event flwWebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decoding flutterwave webhook: %w", err)
	}
	if event.Event != "charge.completed" || event.Data.TxRef == "" {
		return nil, nil
	}
	return &WebhookResult{
		TxRef:     event.Data.TxRef,
		Succeeded: event.Data.Status == "successful",
	}, nil
}
