package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"
)

// Stripe implements Processor and WebhookVerifier. It owns its own API
// client instead of the package-level stripe.Key.
type Stripe struct {
	api           *client.API
	webhookSecret string
	log           *zap.Logger
}

func NewStripe(secretKey, webhookSecret string, log *zap.Logger) *Stripe {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Stripe{api: api, webhookSecret: webhookSecret, log: log}
}

func (s *Stripe) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (s *Stripe) Refund(ctx context.Context, paymentIntentID string) error {
	getParams := &stripe.PaymentIntentParams{}
	getParams.Context = ctx
	pi, err := s.api.PaymentIntents.Get(paymentIntentID, getParams)
	if err != nil {
		return fmt.Errorf("load payment intent %s: %w", paymentIntentID, err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		params := &stripe.RefundParams{PaymentIntent: stripe.String(paymentIntentID)}
		params.Context = ctx
		if _, err := s.api.Refunds.New(params); err != nil {
			return fmt.Errorf("refund payment intent %s: %w", paymentIntentID, err)
		}
		return nil
	case stripe.PaymentIntentStatusCanceled:
		return nil
	default:
		// nothing was captured yet, so voiding the intent is the refund
		return s.CancelPaymentIntent(ctx, paymentIntentID)
	}
}

func (s *Stripe) CancelPaymentIntent(ctx context.Context, paymentIntentID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	if _, err := s.api.PaymentIntents.Cancel(paymentIntentID, params); err != nil {
		return fmt.Errorf("cancel payment intent %s: %w", paymentIntentID, err)
	}
	return nil
}

// VerifyWebhook checks the Stripe-Signature header against the raw body.
func (s *Stripe) VerifyWebhook(payload []byte, signatureHeader string) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signatureHeader, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data != nil && len(ev.Data.Raw) > 0 {
		var obj struct {
			ID     string `json:"id"`
			Object string `json:"object"`
		}
		if err := json.Unmarshal(ev.Data.Raw, &obj); err != nil {
			return nil, fmt.Errorf("decode event object: %w", err)
		}
		if obj.Object == "payment_intent" {
			out.PaymentIntentID = obj.ID
		}
	}
	s.log.Debug("stripe webhook verified", zap.String("event_id", out.ID), zap.String("type", out.Type))
	return out, nil
}
