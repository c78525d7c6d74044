package httppresentation

import (
	"net/http"
	"time"

	appPayment "github.com/Zhima-Mochi/minishop-payments/internal/application/payment"
)

type createPaymentIntentRequest struct {
	OrderID int64 `json:"orderId"`
}

type createPaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

func (h *Handler) handleCreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req createPaymentIntentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cmd, err := appPayment.NewCreatePaymentIntentCommand(req.OrderID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	res, err := h.payments.CreatePaymentIntent(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createPaymentIntentResponse{
		ClientSecret:    res.ClientSecret,
		PaymentIntentID: res.PaymentIntentID,
	})
}

type createCheckoutSessionRequest struct {
	OrderID    int64  `json:"orderId"`
	SuccessURL string `json:"successUrl,omitempty"`
	CancelURL  string `json:"cancelUrl,omitempty"`
}

type createCheckoutSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt"`
}

func (h *Handler) handleCreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req createCheckoutSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cmd, err := appPayment.NewCreateCheckoutSessionCommand(req.OrderID, req.SuccessURL, req.CancelURL)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	res, err := h.payments.CreateCheckoutSession(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createCheckoutSessionResponse{
		SessionID: res.SessionID,
		URL:       res.URL,
		ExpiresAt: res.ExpiresAt.UTC().Format(time.RFC3339),
	})
}
