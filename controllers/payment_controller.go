package controllers

import (
	"net/http"

	"github.com/Injajul/Foodify2/pkg/payment"
	"github.com/Injajul/Foodify2/pkg/resp"
	"github.com/Injajul/Foodify2/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// max webhook body we are willing to buffer
const maxWebhookBody = 1 << 16

type PaymentController struct {
	Verifier   payment.WebhookVerifier
	Reconciler *services.PaymentReconciler
	Log        *zap.Logger
}

func NewPaymentController(v payment.WebhookVerifier, r *services.PaymentReconciler, log *zap.Logger) *PaymentController {
	return &PaymentController{Verifier: v, Reconciler: r, Log: log}
}

// POST /webhooks/stripe
// The body must be read raw; the signature covers the exact bytes.
func (ctl *PaymentController) StripeWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := c.GetRawData()
	if err != nil {
		resp.BadRequest(c, "cannot read body")
		return
	}

	ev, err := ctl.Verifier.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		ctl.Log.Warn("stripe webhook rejected", zap.Error(err))
		resp.BadRequest(c, "webhook signature verification failed")
		return
	}

	if err := ctl.Reconciler.Handle(c.Request.Context(), ev); err != nil {
		resp.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
