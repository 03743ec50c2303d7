package payments_test

import (
	"testing"

	"listeningroom/backend/internal/payments"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteCurrency(t *testing.T) {
	assert.Equal(t, "stripe", payments.RouteCurrency("USD", true))
	assert.Equal(t, "stripe", payments.RouteCurrency("EUR", true))
	assert.Equal(t, "flutterwave", payments.RouteCurrency("NGN", true))
	assert.Equal(t, "flutterwave", payments.RouteCurrency("KES", true))
	assert.Equal(t, "stripe", payments.RouteCurrency("NGN", false), "falls back to stripe when flutterwave is unconfigured")
}

func TestFlutterwaveVerifyWebhook(t *testing.T) {
	p := payments.NewFlutterwaveProvider("sk_test", "hash-value")

	payload := []byte(`{"event":"charge.completed","data":{"tx_ref":"lr-don-1","status":"successful"}}`)

	t.Run("wrong hash rejected", func(t *testing.T) {
		_, err := p.VerifyWebhook(payload, "wrong")
		assert.ErrorIs(t, err, payments.ErrUnverifiedWebhook)
	})

	t.Run("successful charge", func(t *testing.T) {
		result, err := p.VerifyWebhook(payload, "hash-value")
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, "lr-don-1", result.TxRef)
		assert.True(t, result.Succeeded)
	})

	t.Run("failed charge", func(t *testing.T) {
		failed := []byte(`{"event":"charge.completed","data":{"tx_ref":"lr-don-2","status":"failed"}}`)
		result, err := p.VerifyWebhook(failed, "hash-value")
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.False(t, result.Succeeded)
	})

	t.Run("unrelated event ignored", func(t *testing.T) {
		other := []byte(`{"event":"transfer.completed","data":{"tx_ref":"","status":"successful"}}`)
		result, err := p.VerifyWebhook(other, "hash-value")
		require.NoError(t, err)
		assert.Nil(t, result)
	})
}

func TestFlutterwaveConfigured(t *testing.T) {
	assert.True(t, payments.NewFlutterwaveProvider("sk", "h").Configured())
	assert.False(t, payments.NewFlutterwaveProvider("", "").Configured())
}
