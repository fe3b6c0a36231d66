package payment

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"
)

const testSecret = "whsec_test_secret"

func sign(t *testing.T, payload []byte, secret string) string {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Header
}

func TestStripeVerifyWebhook(t *testing.T) {
	s := NewStripe("sk_test_unused", testSecret, zap.NewNop())
	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_123", "object": "payment_intent"}}
	}`)

	ev, err := s.VerifyWebhook(payload, sign(t, payload, testSecret))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, EventPaymentSucceeded, ev.Type)
	assert.Equal(t, "pi_123", ev.PaymentIntentID)
}

func TestStripeVerifyWebhook_BadSignature(t *testing.T) {
	s := NewStripe("sk_test_unused", testSecret, zap.NewNop())
	payload := []byte(`{"id":"evt_2","object":"event","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_9","object":"payment_intent"}}}`)

	_, err := s.VerifyWebhook(payload, sign(t, payload, "whsec_other"))
	assert.True(t, errors.Is(err, ErrInvalidSignature))

	_, err = s.VerifyWebhook(payload, "")
	assert.True(t, errors.Is(err, ErrInvalidSignature))
}

func TestStripeVerifyWebhook_NonIntentObject(t *testing.T) {
	s := NewStripe("sk_test_unused", testSecret, zap.NewNop())
	payload := []byte(`{"id":"evt_3","object":"event","type":"customer.created","data":{"object":{"id":"cus_1","object":"customer"}}}`)

	ev, err := s.VerifyWebhook(payload, sign(t, payload, testSecret))
	require.NoError(t, err)
	assert.Equal(t, "customer.created", ev.Type)
	assert.Empty(t, ev.PaymentIntentID)
}
