package orders

import (
	"context"

	"github.com/google/uuid"

	"github.com/nayeemx/gymstore/internal/models"
)

// Queries is the read side used by the frontend for order history and detail.
type Queries struct {
	store Store
}

func NewQueries(store Store) *Queries {
	return &Queries{store: store}
}

// ListByUser returns a user's orders within one domain, newest first. An
// empty result is ErrNotFound, matching the API's 404-on-no-orders contract.
func (q *Queries) ListByUser(ctx context.Context, domain, userID string) ([]models.Order, error) {
	orders, err := q.store.ListByUser(ctx, domain, userID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrNotFound
	}
	return orders, nil
}

func (q *Queries) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return q.store.FindByID(ctx, id)
}
