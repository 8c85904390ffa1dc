package referrals

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// rucLength is the fixed length of a Peruvian tax id.
const rucLength = 11

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validate(r *Referral) error {
	if strings.TrimSpace(r.BusinessName) == "" {
		return fmt.Errorf("business name is required")
	}
	if len(r.DocumentNumber) != rucLength {
		return fmt.Errorf("document number must be exactly %d characters", rucLength)
	}
	return nil
}

func (s *Service) CreateReferral(ctx context.Context, r *Referral) error {
	if err := validate(r); err != nil {
		return err
	}
	return s.repo.Create(ctx, r)
}

func (s *Service) GetReferral(ctx context.Context, id uuid.UUID) (*Referral, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateReferral(ctx context.Context, r *Referral) error {
	if err := validate(r); err != nil {
		return err
	}
	return s.repo.Update(ctx, r)
}

func (s *Service) ListReferrals(ctx context.Context, limit, offset int) ([]*Referral, int, error) {
	return s.repo.List(ctx, limit, offset)
}
