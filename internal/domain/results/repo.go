package results

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("results: not found")

type Repository interface {
	Create(ctx context.Context, r *Result) error
	GetByID(ctx context.Context, id uuid.UUID) (*Result, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*Result, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	List(ctx context.Context, filters ListFilters, limit, offset int) ([]*Summary, int, error)
}

type DetailRepository interface {
	Create(ctx context.Context, d *ResultDetail) error
	GetByID(ctx context.Context, id uuid.UUID) (*ResultDetail, error)
	ListByResult(ctx context.Context, resultID uuid.UUID) ([]*ResultDetail, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}
