package webhook

import (
	"errors"

	domorder "github.com/Zhima-Mochi/minishop-payments/internal/domain/order"
	dompay "github.com/Zhima-Mochi/minishop-payments/internal/domain/payment"
)

func failureStatus(err error) string {
	switch {
	case errors.Is(err, dompay.ErrMissingOrderReference):
		return "ORDER_REFERENCE_INVALID"
	case errors.Is(err, domorder.ErrNotFound):
		return "ORDER_NOT_FOUND"
	default:
		return "TRANSITION_FAILED"
	}
}
