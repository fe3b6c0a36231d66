// Package payment talks to the external payment processor.
package payment

import (
	"context"
	"errors"
)

// Event kinds the reconciler acts on.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// ErrInvalidSignature is returned when a webhook body fails verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// Event is a verified webhook event reduced to what reconciliation needs.
type Event struct {
	ID              string
	Type            string
	PaymentIntentID string
}

// Processor is the payment processor as seen by checkout and cancellation.
type Processor interface {
	CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*PaymentIntent, error)
	// Refund returns the money of a captured intent, or voids an intent that
	// was never paid.
	Refund(ctx context.Context, paymentIntentID string) error
	CancelPaymentIntent(ctx context.Context, paymentIntentID string) error
}

// WebhookVerifier authenticates a raw webhook body before it is parsed.
type WebhookVerifier interface {
	VerifyWebhook(payload []byte, signatureHeader string) (*Event, error)
}
