package stripepay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Zhima-Mochi/minishop-payments/internal/application/payment/paymenttest"
	dompay "github.com/Zhima-Mochi/minishop-payments/internal/domain/payment"
	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestConstructEventPaymentIntent(t *testing.T) {
	c := New("sk_test_x", testSecret)
	payload := paymenttest.EventPayload("evt_1", dompay.EventIntentSucceeded, map[string]any{
		"id":            "pi_1",
		"object":        "payment_intent",
		"metadata":      map[string]string{"orderId": "12", "productName": "Mug"},
		"latest_charge": "ch_9",
	})

	evt, err := c.ConstructEvent(payload, sign(t, payload, testSecret))
	require.NoError(t, err)

	assert.Equal(t, "evt_1", evt.ID)
	assert.Equal(t, dompay.EventIntentSucceeded, evt.Type)
	assert.Equal(t, "pi_1", evt.Object.ID)
	assert.Equal(t, "ch_9", evt.Object.LatestCharge)
	id, err := evt.Object.OrderID()
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
}

func TestConstructEventCheckoutSession(t *testing.T) {
	c := New("sk_test_x", testSecret)
	payload := paymenttest.EventPayload("evt_2", dompay.EventSessionCompleted, map[string]any{
		"id":             "cs_test_1",
		"object":         "checkout.session",
		"metadata":       map[string]string{"orderId": "3", "userId": "1"},
		"payment_intent": "pi_42",
	})

	evt, err := c.ConstructEvent(payload, sign(t, payload, testSecret))
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", evt.Object.ID)
	assert.Equal(t, "pi_42", evt.Object.PaymentIntent)
	assert.Equal(t, "3", evt.Object.Metadata["orderId"])
}

func TestConstructEventRejectsBadSignature(t *testing.T) {
	c := New("sk_test_x", testSecret)
	payload := paymenttest.EventPayload("evt_3", dompay.EventIntentSucceeded, map[string]any{"id": "pi_1"})

	_, err := c.ConstructEvent(payload, sign(t, payload, "whsec_other"))
	assert.ErrorIs(t, err, dompay.ErrSignatureInvalid)

	_, err = c.ConstructEvent(payload, "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, dompay.ErrSignatureInvalid)

	tampered := append([]byte(nil), payload...)
	tampered[len(tampered)-2] = ' '
	_, err = c.ConstructEvent(tampered, sign(t, payload, testSecret))
	assert.ErrorIs(t, err, dompay.ErrSignatureInvalid)
}

func TestConstructEventWithoutSecret(t *testing.T) {
	c := New("sk_test_x", "")
	assert.False(t, c.HasWebhookSecret())
	_, err := c.ConstructEvent([]byte(`{}`), "t=1,v1=00")
	assert.ErrorIs(t, err, ErrWebhookSecretMissing)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return New("sk_test_x", testSecret, WithBackends(&stripe.Backends{API: backend, Connect: backend, Uploads: backend}))
}

func TestCreatePaymentIntentRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "2000", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, "cus_1", r.PostForm.Get("customer"))
		assert.Equal(t, "true", r.PostForm.Get("automatic_payment_methods[enabled]"))
		assert.Equal(t, "7", r.PostForm.Get("metadata[orderId]"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "pi_123", "object": "payment_intent", "client_secret": "pi_123_secret_abc",
		})
	})

	intent, err := c.CreatePaymentIntent(context.Background(), dompay.IntentParams{
		AmountMinor: 2000, Currency: "usd", CustomerID: "cus_1",
		Metadata: map[string]string{"orderId": "7"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
}

func TestCreateCheckoutSessionRequest(t *testing.T) {
	expires := time.Date(2030, 1, 1, 0, 30, 0, 0, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "card", r.PostForm.Get("payment_method_types[0]"))
		assert.Equal(t, "Mug", r.PostForm.Get("line_items[0][price_data][product_data][name]"))
		assert.Equal(t, "1999", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "3", r.PostForm.Get("line_items[0][quantity]"))
		assert.Empty(t, r.PostForm.Get("line_items[0][price_data][product_data][description]"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "cs_test_9", "object": "checkout.session", "url": "https://checkout.stripe.com/c/pay/cs_test_9",
			"expires_at": expires.Unix(),
		})
	})

	s, err := c.CreateCheckoutSession(context.Background(), dompay.SessionParams{
		LineItem:   dompay.LineItem{Name: "Mug", UnitAmountMinor: 1999, Currency: "usd", Quantity: 3},
		SuccessURL: "https://shop.example.com/ok",
		CancelURL:  "https://shop.example.com/no",
		ExpiresAt:  expires,
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_9", s.ID)
	assert.Equal(t, expires, s.ExpiresAt)
}

func TestAPIErrorsAreUpstreamFailures(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	})

	_, err := c.CreateCustomer(context.Background(), dompay.CustomerParams{Email: "a@b.c", Name: "A", UserID: 1})
	require.ErrorIs(t, err, dompay.ErrUpstream)
	assert.Contains(t, err.Error(), "Your card was declined.")
}
