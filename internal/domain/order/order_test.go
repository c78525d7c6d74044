package order

import (
	"testing"

	"github.com/Zhima-Mochi/minishop-payments/internal/domain/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewComputesExactTotal(t *testing.T) {
	p := &product.Product{ID: 7, Price: decimal.RequireFromString("19.99"), Currency: "usd", IsActive: true}

	o, err := New(1, p, 3)
	require.NoError(t, err)

	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("59.97")), "got %s", o.TotalAmount)
	assert.Equal(t, "59.97", o.TotalAmount.StringFixed(2))
	assert.Equal(t, "usd", o.Currency)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, int64(7), o.ProductID)
}

func TestNewRejectsBadInput(t *testing.T) {
	active := &product.Product{ID: 1, Price: decimal.NewFromInt(10), Currency: "usd", IsActive: true}
	inactive := &product.Product{ID: 2, Price: decimal.NewFromInt(10), Currency: "usd"}

	_, err := New(1, active, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = New(1, inactive, 1)
	assert.ErrorIs(t, err, product.ErrInactive)
}

func TestEnsurePending(t *testing.T) {
	tests := []struct {
		status Status
		want   error
	}{
		{status: StatusPending, want: nil},
		{status: StatusPaid, want: ErrNotPending},
		{status: StatusCanceled, want: ErrNotPending},
	}
	for _, tt := range tests {
		o := &Order{Status: tt.status}
		if tt.want == nil {
			assert.NoError(t, o.EnsurePending(), tt.status)
			continue
		}
		assert.ErrorIs(t, o.EnsurePending(), tt.want, tt.status)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		prev, next Status
		want       Transition
		changed    bool
	}{
		{prev: StatusPending, next: StatusPaid, want: TransitionApplied, changed: true},
		{prev: StatusPending, next: StatusCanceled, want: TransitionApplied, changed: true},
		{prev: StatusPaid, next: StatusPaid, want: TransitionReplayed, changed: false},
		{prev: StatusCanceled, next: StatusCanceled, want: TransitionReplayed, changed: false},
		{prev: StatusCanceled, next: StatusPaid, want: TransitionIgnored, changed: false},
		{prev: StatusPaid, next: StatusCanceled, want: TransitionIgnored, changed: false},
	}
	for _, tt := range tests {
		got, err := Classify(tt.prev, tt.next)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s -> %s", tt.prev, tt.next)
		assert.Equal(t, tt.changed, got.Changed())
		assert.Equal(t, got != TransitionIgnored, Settles(tt.prev, tt.next))
	}

	_, err := Classify(StatusPaid, StatusPending)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCloneIsDeep(t *testing.T) {
	ref := "pi_1"
	o := &Order{ID: 1, StripePaymentIntentID: &ref, Product: &product.Product{Name: "Mug"}}

	c := o.Clone()
	*c.StripePaymentIntentID = "pi_2"
	c.Product.Name = "Cup"

	assert.Equal(t, "pi_1", o.ProcessorRef())
	assert.Equal(t, "Mug", o.Product.Name)
}
