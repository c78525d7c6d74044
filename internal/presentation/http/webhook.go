package httppresentation

import (
	"fmt"
	"io"
	"net/http"

	appWebhook "github.com/Zhima-Mochi/minishop-payments/internal/application/webhook"
	"github.com/Zhima-Mochi/minishop-payments/internal/observability"
	"github.com/Zhima-Mochi/minishop-payments/internal/observability/logctx"
)

const (
	headerStripeSignature = "Stripe-Signature"
	maxWebhookBody        = 64 << 10
)

// handleWebhook always answers 200 so the processor stops retrying; the outcome is in the body.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := logctx.FromOr(r.Context(), h.log)

	if !h.webhookConfigured || h.verifier == nil {
		logger.Error("webhook_secret_missing")
		writeJSON(w, http.StatusOK, map[string]any{"error": "Webhook secret not configured"})
		return
	}

	signature := r.Header.Get(headerStripeSignature)
	if signature == "" {
		logger.Warn("webhook_signature_missing")
		writeJSON(w, http.StatusOK, map[string]any{"error": "No signature provided"})
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		logger.Warn("webhook_body_unreadable", observability.F("error", err))
		writeJSON(w, http.StatusOK, map[string]any{"error": fmt.Sprintf("Webhook Error: %s", err)})
		return
	}
	if len(payload) == 0 {
		logger.Warn("webhook_body_missing")
		writeJSON(w, http.StatusOK, map[string]any{"error": "No webhook payload provided"})
		return
	}

	evt, err := h.verifier.ConstructEvent(payload, signature)
	if err != nil {
		logger.Warn("webhook_signature_invalid", observability.F("error", err))
		writeJSON(w, http.StatusOK, map[string]any{"error": fmt.Sprintf("Webhook Error: %s", err)})
		return
	}

	res, err := h.reconciler.Execute(r.Context(), evt)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"received":  true,
			"processed": false,
			"error":     err.Error(),
			"eventId":   evt.ID,
		})
		return
	}

	switch res.Disposition {
	case appWebhook.DispositionProcessed:
		writeJSON(w, http.StatusOK, map[string]any{"received": true, "processed": true, "result": res})
	case appWebhook.DispositionAcknowledged:
		writeJSON(w, http.StatusOK, map[string]any{
			"received":  true,
			"processed": false,
			"message":   fmt.Sprintf("Event %s acknowledged", evt.Type),
		})
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"received":  true,
			"processed": false,
			"message":   fmt.Sprintf("Event %s not handled", evt.Type),
		})
	}
}
