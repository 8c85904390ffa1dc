package billing

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("billing: not found")

	// ErrCompanyExists is returned when creating a second company row.
	ErrCompanyExists = errors.New("billing: company already configured")
)

type Repository interface {
	Create(ctx context.Context, c *Company) error
	// Get returns the single company row.
	Get(ctx context.Context) (*Company, error)
	Update(ctx context.Context, c *Company) error
}
