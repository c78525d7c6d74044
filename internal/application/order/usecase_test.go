package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Zhima-Mochi/minishop-payments/internal/application"
	domorder "github.com/Zhima-Mochi/minishop-payments/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-payments/internal/domain/outbox"
	domproduct "github.com/Zhima-Mochi/minishop-payments/internal/domain/product"
	domuser "github.com/Zhima-Mochi/minishop-payments/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-payments/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domoutbox.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func seededStore() *memory.Store {
	s := memory.NewStore()
	s.PutProduct(&domproduct.Product{ID: 1, Name: "Notebook", Price: decimal.RequireFromString("10.00"), Currency: "usd", IsActive: true})
	s.PutProduct(&domproduct.Product{ID: 2, Name: "Pen", Price: decimal.RequireFromString("19.99"), Currency: "eur", IsActive: true})
	s.PutProduct(&domproduct.Product{ID: 3, Name: "Retired", Price: decimal.RequireFromString("5.00"), Currency: "usd", IsActive: false})
	s.PutUser(&domuser.User{ID: 1, Name: "Ada", Email: "ada@example.com"})
	return s
}

func TestCreateOrder(t *testing.T) {
	store := seededStore()
	pub := &recordingPublisher{}
	uc := NewCreateOrderUseCase(store.Orders(), store.Products(), store.Users(), pub, nil)

	cmd, err := NewCreateOrderCommand(1, 2, 1)
	require.NoError(t, err)

	o, err := uc.Execute(context.Background(), cmd)
	require.NoError(t, err)

	assert.NotZero(t, o.ID)
	assert.Equal(t, domorder.StatusPending, o.Status)
	assert.Equal(t, "20.00", o.TotalAmount.StringFixed(2))
	assert.Equal(t, "usd", o.Currency)
	require.NotNil(t, o.Product)
	require.NotNil(t, o.User)
	assert.Equal(t, "Notebook", o.Product.Name)
	assert.Equal(t, "Ada", o.User.Name)
	assert.Nil(t, o.PaidAt)
	assert.Nil(t, o.StripePaymentIntentID)

	require.Len(t, pub.events, 1)
	created, ok := pub.events[0].(domorder.OrderCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, o.ID, created.OrderID)
}

func TestCreateOrderDecimalExactness(t *testing.T) {
	store := seededStore()
	uc := NewCreateOrderUseCase(store.Orders(), store.Products(), store.Users(), nil, nil)

	cmd, _ := NewCreateOrderCommand(2, 3, 1)
	o, err := uc.Execute(context.Background(), cmd)
	require.NoError(t, err)

	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("59.97")), "got %s", o.TotalAmount)
	assert.Equal(t, "eur", o.Currency)
}

func TestCreateOrderFailures(t *testing.T) {
	tests := []struct {
		name string
		cmd  CreateOrderCommand
		want error
	}{
		{name: "unknown product", cmd: CreateOrderCommand{ProductID: 99, Quantity: 1, UserID: 1}, want: domproduct.ErrNotFound},
		{name: "inactive product", cmd: CreateOrderCommand{ProductID: 3, Quantity: 1, UserID: 1}, want: domproduct.ErrInactive},
		{name: "unknown user", cmd: CreateOrderCommand{ProductID: 1, Quantity: 1, UserID: 7}, want: domuser.ErrNotFound},
		{name: "zero quantity", cmd: CreateOrderCommand{ProductID: 1, Quantity: 0, UserID: 1}, want: application.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededStore()
			uc := NewCreateOrderUseCase(store.Orders(), store.Products(), store.Users(), nil, nil)

			_, err := uc.Execute(context.Background(), tt.cmd)
			assert.ErrorIs(t, err, tt.want)

			_, err = store.Orders().Get(context.Background(), 1)
			assert.ErrorIs(t, err, domorder.ErrNotFound)
		})
	}
}

func TestCreateOrderSurvivesPublishFailure(t *testing.T) {
	store := seededStore()
	pub := &recordingPublisher{err: errors.New("broker down")}
	uc := NewCreateOrderUseCase(store.Orders(), store.Products(), store.Users(), pub, nil)

	cmd, _ := NewCreateOrderCommand(1, 1, 1)
	o, err := uc.Execute(context.Background(), cmd)
	require.NoError(t, err)
	assert.NotZero(t, o.ID)
}

func TestNewCreateOrderCommand(t *testing.T) {
	_, err := NewCreateOrderCommand(0, 0, -1)
	require.ErrorIs(t, err, application.ErrValidation)
	assert.Contains(t, err.Error(), "productId must be greater than 0")
	assert.Contains(t, err.Error(), "quantity must be at least 1")
	assert.Contains(t, err.Error(), "userId must be greater than 0")
}

func TestListProducts(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.PutProduct(&domproduct.Product{ID: 1, Name: "first", IsActive: true, CreatedAt: base})
	store.PutProduct(&domproduct.Product{ID: 2, Name: "second", IsActive: true, CreatedAt: base.Add(time.Minute)})
	store.PutProduct(&domproduct.Product{ID: 3, Name: "gone", IsActive: false, CreatedAt: base.Add(time.Hour)})

	items, err := NewListProductsUseCase(store.Products(), nil).Execute(context.Background(), struct{}{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].Name)
	assert.Equal(t, "first", items[1].Name)
}
