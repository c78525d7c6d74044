package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{in: "20.00", want: 2000},
		{in: "59.97", want: 5997},
		{in: "0.005", want: 1},
		{in: "10.004", want: 1000},
		{in: "1234.5", want: 123450},
	}
	for _, tt := range tests {
		if got := MinorUnits(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Fatalf("MinorUnits(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestObjectOrderID(t *testing.T) {
	id, err := Object{Metadata: map[string]string{"orderId": "42"}}.OrderID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, md := range []map[string]string{
		nil,
		{},
		{"orderId": ""},
		{"orderId": "abc"},
		{"orderId": "-3"},
		{"orderId": "0"},
	} {
		_, err := Object{Metadata: md}.OrderID()
		assert.ErrorIs(t, err, ErrMissingOrderReference, "%v", md)
	}
}
