package patients

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a patient or lead source does not exist.
var ErrNotFound = errors.New("patients: not found")

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByDocument(ctx context.Context, documentNumber string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	Search(ctx context.Context, query string, limit int) ([]*Patient, error)
}

type LeadSourceRepository interface {
	Create(ctx context.Context, ls *LeadSource) error
	GetByID(ctx context.Context, id uuid.UUID) (*LeadSource, error)
	List(ctx context.Context) ([]*LeadSource, error)
	Update(ctx context.Context, ls *LeadSource) error
}
