package memory

import (
	"sync"

	domorder "github.com/Zhima-Mochi/minishop-payments/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/minishop-payments/internal/domain/payment"
	domproduct "github.com/Zhima-Mochi/minishop-payments/internal/domain/product"
	domuser "github.com/Zhima-Mochi/minishop-payments/internal/domain/user"
)

// Store keeps every table behind one lock so relations read consistently. It backs local runs and tests.
type Store struct {
	mu       sync.RWMutex
	products map[int64]*domproduct.Product
	users    map[int64]*domuser.User
	orders   map[int64]*domorder.Order
	payments map[int64]*dompayment.Payment

	nextOrderID   int64
	nextPaymentID int64
}

func NewStore() *Store {
	return &Store{
		products: make(map[int64]*domproduct.Product),
		users:    make(map[int64]*domuser.User),
		orders:   make(map[int64]*domorder.Order),
		payments: make(map[int64]*dompayment.Payment),
	}
}

// PutProduct inserts or replaces a catalogue entry.
func (s *Store) PutProduct(p *domproduct.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p.Clone()
}

// PutUser inserts or replaces a user.
func (s *Store) PutUser(u *domuser.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u.Clone()
}

func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }
func (s *Store) Users() *UserRepository       { return &UserRepository{s: s} }
func (s *Store) Orders() *OrderRepository     { return &OrderRepository{s: s} }
func (s *Store) Payments() *PaymentRepository { return &PaymentRepository{s: s} }
