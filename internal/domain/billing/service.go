package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const rucLength = 11

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validate(c *Company) error {
	if strings.TrimSpace(c.BusinessName) == "" {
		return fmt.Errorf("business name is required")
	}
	if len(c.DocumentNumber) != rucLength {
		return fmt.Errorf("document number must be exactly %d characters", rucLength)
	}
	return nil
}

// CreateCompany sets up the lab's identity. Exactly one row is allowed.
func (s *Service) CreateCompany(ctx context.Context, c *Company) error {
	if err := validate(c); err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx); err == nil {
		return ErrCompanyExists
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) GetCompany(ctx context.Context) (*Company, error) {
	return s.repo.Get(ctx)
}

func (s *Service) UpdateCompany(ctx context.Context, c *Company) error {
	if err := validate(c); err != nil {
		return err
	}
	current, err := s.repo.Get(ctx)
	if err != nil {
		return err
	}
	c.ID = current.ID
	return s.repo.Update(ctx, c)
}
