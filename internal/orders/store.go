package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nayeemx/gymstore/internal/models"
)

// Store is the persistence boundary of the order workflow. ResolvePayment is
// the only mutation the asynchronous callbacks perform and must be a single
// conditional update: the transition happens only while the payment is still
// Pending, so concurrent duplicate deliveries race for one winner.
type Store interface {
	Create(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*models.Order, error)
	ListByUser(ctx context.Context, domain, userID string) ([]models.Order, error)
	ResolvePayment(ctx context.Context, paymentID string, payment models.PaymentStatus, order *models.OrderStatus) (bool, error)
	Confirm(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ExpirePending(ctx context.Context, olderThan time.Time) (int64, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, order *models.Order) error {
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("%w: create order: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("%w: delete order: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *GormStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: find order: %v", ErrUnavailable, err)
	}
	return &order, nil
}

func (s *GormStore) FindByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "payment_id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: find order by payment id: %v", ErrUnavailable, err)
	}
	return &order, nil
}

func (s *GormStore) ListByUser(ctx context.Context, domain, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Where("domain = ? AND user_id = ?", domain, userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", ErrUnavailable, err)
	}
	return orders, nil
}

func (s *GormStore) ResolvePayment(ctx context.Context, paymentID string, payment models.PaymentStatus, order *models.OrderStatus) (bool, error) {
	updates := map[string]interface{}{"payment_status": payment}
	if order != nil {
		updates["order_status"] = *order
	}

	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("payment_id = ? AND payment_status = ?", paymentID, models.PaymentPending).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("%w: resolve payment: %v", ErrUnavailable, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) Confirm(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	order.OrderStatus = models.OrderConfirmed
	if err := s.db.WithContext(ctx).Model(order).Update("order_status", models.OrderConfirmed).Error; err != nil {
		return nil, fmt.Errorf("%w: confirm order: %v", ErrUnavailable, err)
	}
	return order, nil
}

func (s *GormStore) ExpirePending(ctx context.Context, olderThan time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("payment_status = ? AND order_status = ? AND created_at < ?",
			models.PaymentPending, models.OrderPending, olderThan).
		Update("payment_status", models.PaymentFailed)
	if res.Error != nil {
		return 0, fmt.Errorf("%w: expire pending orders: %v", ErrUnavailable, res.Error)
	}
	return res.RowsAffected, nil
}
