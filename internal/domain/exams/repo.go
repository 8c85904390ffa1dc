package exams

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("exams: not found")

type Repository interface {
	Create(ctx context.Context, e *Exam) error
	GetByID(ctx context.Context, id uuid.UUID) (*Exam, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Exam, error)
	GetByCode(ctx context.Context, code string) (*Exam, error)
	Update(ctx context.Context, e *Exam) error
	List(ctx context.Context, nameFilter string, limit, offset int) ([]*Exam, int, error)
	Search(ctx context.Context, query string, limit int) ([]*Exam, error)
	// MaxCodeNumber returns the highest numeric suffix among EXNNNNN codes.
	MaxCodeNumber(ctx context.Context) (int, error)
	// ListNonPanels returns exams eligible to be panel components.
	ListNonPanels(ctx context.Context) ([]*Exam, error)
}

type ComponentRepository interface {
	// ComponentsOf returns the component exams of a panel ordered by
	// display_order, id as tiebreak.
	ComponentsOf(ctx context.Context, parentID uuid.UUID) ([]*Exam, error)
	// ComponentIDsOf returns just the component exam ids, same order.
	ComponentIDsOf(ctx context.Context, parentID uuid.UUID) ([]uuid.UUID, error)
	// Replace swaps the full component set of a panel in one transaction.
	Replace(ctx context.Context, parentID uuid.UUID, componentIDs []uuid.UUID) error
	// IsComponent reports whether the exam appears as a component of any panel.
	IsComponent(ctx context.Context, examID uuid.UUID) (bool, error)
	// HasComponents reports whether the panel has any saved component rows.
	HasComponents(ctx context.Context, parentID uuid.UUID) (bool, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, c *ExamCategory) error
	GetByID(ctx context.Context, id uuid.UUID) (*ExamCategory, error)
	List(ctx context.Context) ([]*ExamCategory, error)
	Update(ctx context.Context, c *ExamCategory) error
}
