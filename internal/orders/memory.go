package orders

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nayeemx/gymstore/internal/models"
)

// MemoryStore is a mutex-guarded Store used by tests. It mirrors the GORM
// store's semantics, in particular the compare-and-set in ResolvePayment.
type MemoryStore struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*models.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[uuid.UUID]*models.Order)}
}

func (s *MemoryStore) Create(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	order.UpdatedAt = order.CreatedAt

	copied := *order
	s.orders[order.ID] = &copied
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.orders, id)
	return nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *MemoryStore) FindByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, order := range s.orders {
		if order.PaymentID == paymentID {
			copied := *order
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListByUser(ctx context.Context, domain, userID string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.Order
	for _, order := range s.orders {
		if order.Domain == domain && order.UserID == userID {
			result = append(result, *order)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) ResolvePayment(ctx context.Context, paymentID string, payment models.PaymentStatus, orderStatus *models.OrderStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, order := range s.orders {
		if order.PaymentID != paymentID {
			continue
		}
		if order.PaymentStatus != models.PaymentPending {
			return false, nil
		}
		order.PaymentStatus = payment
		if orderStatus != nil {
			order.OrderStatus = *orderStatus
		}
		order.UpdatedAt = time.Now().UTC()
		return true, nil
	}
	return false, nil
}

func (s *MemoryStore) Confirm(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	order.OrderStatus = models.OrderConfirmed
	order.UpdatedAt = time.Now().UTC()

	copied := *order
	return &copied, nil
}

func (s *MemoryStore) ExpirePending(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired int64
	for _, order := range s.orders {
		if order.PaymentStatus == models.PaymentPending &&
			order.OrderStatus == models.OrderPending &&
			order.CreatedAt.Before(olderThan) {
			order.PaymentStatus = models.PaymentFailed
			order.UpdatedAt = time.Now().UTC()
			expired++
		}
	}
	return expired, nil
}
