package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/RishiBuilds/soledrip-xr-platform/internal/logging"
	"github.com/RishiBuilds/soledrip-xr-platform/internal/usecase"
)

const webhookBodyLimit = 256 * 1024

// WebhookHandler drives the settlement pipeline from provider events.
// Redeliveries are expected; the verifier's idempotency makes them no-ops.
type WebhookHandler struct {
	verify        Verifier
	signingSecret string
}

func NewWebhookHandler(verify Verifier, signingSecret string) *WebhookHandler {
	return &WebhookHandler{verify: verify, signingSecret: signingSecret}
}

// HandleStripe: POST /v1/webhooks/stripe. Signature is verified over the
// exact request bytes before anything is parsed.
func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, webhookBodyLimit))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.signingSecret)
	if err != nil {
		logging.From(c).Error("webhook signature rejected", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	if event.Type != "checkout.session.completed" {
		// Acknowledge everything else so the provider stops redelivering.
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		logging.From(c).Error("webhook payload decode failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad payload"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
	defer cancel()

	out, err := h.verify.Execute(ctx, usecase.VerifyOrderInput{SessionID: session.ID})
	if err != nil {
		// Non-2xx makes the provider retry, which is what we want for
		// transient store/provider failures.
		status, code := verifyErrStatus(err)
		c.JSON(status, gin.H{"error": err.Error(), "code": code})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true, "orderId": out.OrderID, "alreadyProcessed": out.AlreadyProcessed})
}
