package httppresentation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Zhima-Mochi/minishop-payments/internal/application"
	domorder "github.com/Zhima-Mochi/minishop-payments/internal/domain/order"
	dompay "github.com/Zhima-Mochi/minishop-payments/internal/domain/payment"
	domproduct "github.com/Zhima-Mochi/minishop-payments/internal/domain/product"
	domuser "github.com/Zhima-Mochi/minishop-payments/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-payments/internal/observability"
	"github.com/Zhima-Mochi/minishop-payments/internal/observability/logctx"
)

const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %w", application.ErrValidation, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, application.ErrValidation),
		errors.Is(err, domorder.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, err)
	// invalid state: inactive product, settled order, order reference missing from metadata
	case errors.Is(err, domproduct.ErrInactive),
		errors.Is(err, domorder.ErrNotPending),
		errors.Is(err, dompay.ErrMissingOrderReference):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domorder.ErrNotFound),
		errors.Is(err, domproduct.ErrNotFound),
		errors.Is(err, domuser.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, dompay.ErrUpstream):
		writeError(w, http.StatusBadGateway, dompay.ErrUpstream)
	default:
		logctx.FromOr(r.Context(), observability.NopLogger()).Error("http_internal_error",
			observability.F("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, errors.New("internal server error"))
	}
}

type productResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Currency    string    `json:"currency"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toProductResponse(p *domproduct.Product) *productResponse {
	if p == nil {
		return nil
	}
	return &productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Currency:    p.Currency,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type userResponse struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	StripeCustomerID *string `json:"stripeCustomerId"`
}

type orderResponse struct {
	ID                    int64            `json:"id"`
	UserID                int64            `json:"userId"`
	ProductID             int64            `json:"productId"`
	Quantity              int              `json:"quantity"`
	TotalAmount           string           `json:"totalAmount"`
	Currency              string           `json:"currency"`
	Status                domorder.Status  `json:"status"`
	StripePaymentIntentID *string          `json:"stripePaymentIntentId"`
	PaidAt                *time.Time       `json:"paidAt"`
	CreatedAt             time.Time        `json:"createdAt"`
	UpdatedAt             time.Time        `json:"updatedAt"`
	Product               *productResponse `json:"product,omitempty"`
	User                  *userResponse    `json:"user,omitempty"`
}

func toOrderResponse(o *domorder.Order) orderResponse {
	resp := orderResponse{
		ID:                    o.ID,
		UserID:                o.UserID,
		ProductID:             o.ProductID,
		Quantity:              o.Quantity,
		TotalAmount:           o.TotalAmount.StringFixed(2),
		Currency:              o.Currency,
		Status:                o.Status,
		StripePaymentIntentID: o.StripePaymentIntentID,
		PaidAt:                o.PaidAt,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
		Product:               toProductResponse(o.Product),
	}
	if u := o.User; u != nil {
		resp.User = &userResponse{ID: u.ID, Name: u.Name, Email: u.Email, StripeCustomerID: u.StripeCustomerID}
	}
	return resp
}
