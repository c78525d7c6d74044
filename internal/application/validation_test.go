package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleCommand struct {
	OrderID  int64 `validate:"gt=0"`
	Quantity int   `validate:"gte=1"`
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(sampleCommand{OrderID: 1, Quantity: 1}))

	err := Validate(sampleCommand{OrderID: 0, Quantity: 0})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "orderId must be greater than 0")
	assert.Contains(t, err.Error(), "quantity must be at least 1")
}
