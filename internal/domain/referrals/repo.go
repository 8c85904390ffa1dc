package referrals

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("referrals: not found")

type Repository interface {
	Create(ctx context.Context, r *Referral) error
	GetByID(ctx context.Context, id uuid.UUID) (*Referral, error)
	Update(ctx context.Context, r *Referral) error
	List(ctx context.Context, limit, offset int) ([]*Referral, int, error)
}
