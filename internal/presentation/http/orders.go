package httppresentation

import (
	"net/http"

	appOrder "github.com/Zhima-Mochi/minishop-payments/internal/application/order"
)

type createOrderRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
	UserID    int64 `json:"userId"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cmd, err := appOrder.NewCreateOrderCommand(req.ProductID, req.Quantity, req.UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	order, err := h.createOrder.Execute(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.listProducts.Execute(r.Context(), struct{}{})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]*productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}
