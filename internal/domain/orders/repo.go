package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("orders: not found")

	// ErrNotPending is returned when paying or voiding an order that has
	// already left PENDING.
	ErrNotPending = errors.New("orders: order is not pending")
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetByCode(ctx context.Context, code string) (*Order, error)
	// LastCodeForPrefix returns the highest existing code with the given
	// day prefix, locking it against concurrent creators. Empty string when
	// the day has no orders yet.
	LastCodeForPrefix(ctx context.Context, prefix string) (string, error)
	SetPaid(ctx context.Context, id uuid.UUID, paymentMethod string) error
	SetVoided(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Order, int, error)
}

type DetailRepository interface {
	Create(ctx context.Context, d *OrderDetail) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*OrderDetail, error)
}
