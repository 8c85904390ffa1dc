package exams

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const searchLimit = 10

// TxRunner executes fn inside a storage transaction bound to the context.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo       Repository
	components ComponentRepository
	categories CategoryRepository
	tx         TxRunner
}

func NewService(repo Repository, components ComponentRepository, categories CategoryRepository, tx TxRunner) *Service {
	if tx == nil {
		tx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Service{repo: repo, components: components, categories: categories, tx: tx}
}

func (s *Service) CreateExam(ctx context.Context, e *Exam) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if e.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if e.Code == "" {
		n, err := s.repo.MaxCodeNumber(ctx)
		if err != nil {
			return err
		}
		e.Code = fmt.Sprintf("EX%05d", n+1)
	}
	return s.repo.Create(ctx, e)
}

func (s *Service) GetExam(ctx context.Context, id uuid.UUID) (*Exam, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*Exam, error) {
	return s.repo.GetByCode(ctx, code)
}

// UpdateExam saves the exam. Flipping HasComponents is refused while the exam
// has saved components or appears as a component of another panel.
func (s *Service) UpdateExam(ctx context.Context, e *Exam) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if e.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	current, err := s.repo.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	if current.HasComponents != e.HasComponents {
		locked, err := s.composeLocked(ctx, e.ID)
		if err != nil {
			return err
		}
		if locked {
			return ErrExamLocked
		}
	}
	return s.repo.Update(ctx, e)
}

func (s *Service) composeLocked(ctx context.Context, examID uuid.UUID) (bool, error) {
	saved, err := s.components.HasComponents(ctx, examID)
	if err != nil {
		return false, err
	}
	if saved {
		return true, nil
	}
	return s.components.IsComponent(ctx, examID)
}

func (s *Service) ListExams(ctx context.Context, nameFilter string, limit, offset int) ([]*Exam, int, error) {
	return s.repo.List(ctx, nameFilter, limit, offset)
}

func (s *Service) SearchExams(ctx context.Context, query string) ([]*Exam, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	return s.repo.Search(ctx, query, searchLimit)
}

// ComponentsOf returns the ordered component exams of a panel. Non-panels
// always yield an empty list.
func (s *Service) ComponentsOf(ctx context.Context, examID uuid.UUID) ([]*Exam, error) {
	e, err := s.repo.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if !e.IsPanel() {
		return nil, nil
	}
	return s.components.ComponentsOf(ctx, examID)
}

// ComponentCandidates lists exams eligible to be components: atomic exams only.
func (s *Service) ComponentCandidates(ctx context.Context) ([]*Exam, error) {
	return s.repo.ListNonPanels(ctx)
}

// ValidateNoCycle rejects a composition where the parent appears among the
// candidates or inside any candidate's own direct component list. Cycles
// longer than one hop are not detected.
func (s *Service) ValidateNoCycle(ctx context.Context, parentID uuid.UUID, componentIDs []uuid.UUID) error {
	for _, id := range componentIDs {
		if id == parentID {
			return &CycleError{ParentID: parentID, ComponentID: id, Direct: true}
		}
	}
	for _, id := range componentIDs {
		nested, err := s.components.ComponentIDsOf(ctx, id)
		if err != nil {
			return err
		}
		for _, n := range nested {
			if n == parentID {
				return &CycleError{ParentID: parentID, ComponentID: id}
			}
		}
	}
	return nil
}

// SetComponents replaces the component set of a panel. The given order is the
// display order. Candidates must exist, must be atomic exams, and must not
// close a one-hop cycle with the parent.
func (s *Service) SetComponents(ctx context.Context, parentID uuid.UUID, componentIDs []uuid.UUID) error {
	parent, err := s.repo.GetByID(ctx, parentID)
	if err != nil {
		return err
	}
	if !parent.IsPanel() {
		return fmt.Errorf("exam %s is not a panel", parent.Code)
	}

	seen := make(map[uuid.UUID]bool, len(componentIDs))
	for _, id := range componentIDs {
		if seen[id] {
			return fmt.Errorf("duplicate component %s", id)
		}
		seen[id] = true
	}

	if err := s.ValidateNoCycle(ctx, parentID, componentIDs); err != nil {
		return err
	}

	candidates, err := s.repo.GetByIDs(ctx, componentIDs)
	if err != nil {
		return err
	}
	if len(candidates) != len(componentIDs) {
		return ErrNotFound
	}
	for _, c := range candidates {
		if c.IsPanel() {
			return fmt.Errorf("exam %s is a panel and cannot be a component", c.Code)
		}
	}

	return s.tx(ctx, func(ctx context.Context) error {
		return s.components.Replace(ctx, parentID, componentIDs)
	})
}

func (s *Service) CreateCategory(ctx context.Context, c *ExamCategory) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return s.categories.Create(ctx, c)
}

func (s *Service) ListCategories(ctx context.Context) ([]*ExamCategory, error) {
	return s.categories.List(ctx)
}

func (s *Service) UpdateCategory(ctx context.Context, c *ExamCategory) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return s.categories.Update(ctx, c)
}
