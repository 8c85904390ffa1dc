package pricing

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("pricing: not found")

type PriceListRepository interface {
	Create(ctx context.Context, pl *PriceList) error
	GetByID(ctx context.Context, id uuid.UUID) (*PriceList, error)
	Update(ctx context.Context, pl *PriceList) error
	List(ctx context.Context, limit, offset int) ([]*PriceList, int, error)
}

type ItemRepository interface {
	// Get looks up the override price for (list, exam).
	Get(ctx context.Context, priceListID, examID uuid.UUID) (*PriceListItem, error)
	// Upsert inserts or replaces the (list, exam) entry.
	Upsert(ctx context.Context, item *PriceListItem) error
	Delete(ctx context.Context, priceListID, examID uuid.UUID) error
	ListByPriceList(ctx context.Context, priceListID uuid.UUID) ([]*PriceListItem, error)
}

type CouponRepository interface {
	Create(ctx context.Context, c *Coupon) error
	GetByID(ctx context.Context, id uuid.UUID) (*Coupon, error)
	// GetActiveByCode matches the code case-insensitively among active coupons.
	GetActiveByCode(ctx context.Context, code string) (*Coupon, error)
	Update(ctx context.Context, c *Coupon) error
	List(ctx context.Context, limit, offset int) ([]*Coupon, int, error)
}
