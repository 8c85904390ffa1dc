package results

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/librelims/lims/internal/domain/exams"
)

// OrderLine is the slice of an order detail the orchestrator needs.
type OrderLine struct {
	ID     uuid.UUID
	ExamID uuid.UUID
}

// OrderSource lists an order's lines.
type OrderSource interface {
	LinesOf(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error)
}

// ExamExpander resolves exams and panel compositions.
type ExamExpander interface {
	GetExam(ctx context.Context, id uuid.UUID) (*exams.Exam, error)
	ComponentsOf(ctx context.Context, examID uuid.UUID) ([]*exams.Exam, error)
}

// TxRunner executes fn inside a storage transaction bound to the context.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	results  Repository
	details  DetailRepository
	orderSrc OrderSource
	examSrc  ExamExpander
	tx       TxRunner
}

func NewService(results Repository, details DetailRepository, orderSrc OrderSource,
	examSrc ExamExpander, tx TxRunner) *Service {
	if tx == nil {
		tx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Service{results: results, details: details, orderSrc: orderSrc, examSrc: examSrc, tx: tx}
}

// CreateForOrder builds the Result and its detail rows for a freshly paid
// order. Panels expand to one detail per component in display order; atomic
// exams get a single detail. The caller owns the transaction: this runs on
// whatever connection the context carries and is not idempotent (the
// (order_detail, exam) constraint rejects a second invocation).
func (s *Service) CreateForOrder(ctx context.Context, orderID uuid.UUID) (*Result, error) {
	lines, err := s.orderSrc.LinesOf(ctx, orderID)
	if err != nil {
		return nil, err
	}

	result := &Result{OrderID: orderID, Status: StatusPending}
	if err := s.results.Create(ctx, result); err != nil {
		return nil, err
	}

	for _, line := range lines {
		exam, err := s.examSrc.GetExam(ctx, line.ExamID)
		if err != nil {
			return nil, err
		}
		if exam.IsPanel() {
			components, err := s.examSrc.ComponentsOf(ctx, exam.ID)
			if err != nil {
				return nil, err
			}
			for _, comp := range components {
				d := &ResultDetail{
					ResultID:      result.ID,
					OrderDetailID: line.ID,
					ExamID:        comp.ID,
					Status:        DetailPendingSample,
				}
				if err := s.details.Create(ctx, d); err != nil {
					return nil, err
				}
			}
			continue
		}
		d := &ResultDetail{
			ResultID:      result.ID,
			OrderDetailID: line.ID,
			ExamID:        exam.ID,
			Status:        DetailPendingSample,
		}
		if err := s.details.Create(ctx, d); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UpdateDetailStatuses applies a batch of status changes in one transaction.
// Each row is checked independently against the transition table; rows with
// an unreachable target are skipped, not rejected. The roll-up is recomputed
// afterwards from the full sibling set.
func (s *Service) UpdateDetailStatuses(ctx context.Context, resultID uuid.UUID, updates map[uuid.UUID]string) error {
	return s.tx(ctx, func(ctx context.Context) error {
		result, err := s.results.GetByID(ctx, resultID)
		if err != nil {
			return err
		}

		details, err := s.details.ListByResult(ctx, resultID)
		if err != nil {
			return err
		}

		byID := make(map[uuid.UUID]*ResultDetail, len(details))
		for _, d := range details {
			byID[d.ID] = d
		}

		for id, target := range updates {
			d, ok := byID[id]
			if !ok {
				continue
			}
			if target == d.Status || !CanTransition(d.Status, target) {
				continue
			}
			if err := s.details.UpdateStatus(ctx, id, target); err != nil {
				return err
			}
			d.Status = target
		}

		statuses := make([]string, len(details))
		for i, d := range details {
			statuses[i] = d.Status
		}
		if next, ok := ComputeRollup(statuses); ok && next != result.Status {
			return s.results.UpdateStatus(ctx, resultID, next)
		}
		return nil
	})
}

// RecomputeStatus refreshes a result's roll-up from its current details.
func (s *Service) RecomputeStatus(ctx context.Context, resultID uuid.UUID) error {
	return s.tx(ctx, func(ctx context.Context) error {
		result, err := s.results.GetByID(ctx, resultID)
		if err != nil {
			return err
		}
		details, err := s.details.ListByResult(ctx, resultID)
		if err != nil {
			return err
		}
		statuses := make([]string, len(details))
		for i, d := range details {
			statuses[i] = d.Status
		}
		if next, ok := ComputeRollup(statuses); ok && next != result.Status {
			return s.results.UpdateStatus(ctx, resultID, next)
		}
		return nil
	})
}

func (s *Service) GetResult(ctx context.Context, id uuid.UUID) (*Result, error) {
	return s.results.GetByID(ctx, id)
}

func (s *Service) GetByOrder(ctx context.Context, orderID uuid.UUID) (*Result, error) {
	return s.results.GetByOrderID(ctx, orderID)
}

func (s *Service) ListDetails(ctx context.Context, resultID uuid.UUID) ([]*ResultDetail, error) {
	if _, err := s.results.GetByID(ctx, resultID); err != nil {
		return nil, err
	}
	return s.details.ListByResult(ctx, resultID)
}

// DetailTransitions returns the reachable targets for one detail.
func (s *Service) DetailTransitions(ctx context.Context, detailID uuid.UUID) ([]Transition, error) {
	d, err := s.details.GetByID(ctx, detailID)
	if err != nil {
		return nil, err
	}
	return AllowedTransitions(d.Status), nil
}

// ListResults returns joined summaries, validating the status group name.
func (s *Service) ListResults(ctx context.Context, filters ListFilters, limit, offset int) ([]*Summary, int, error) {
	if filters.StatusGroup != "" {
		if _, ok := StatusGroups[filters.StatusGroup]; !ok {
			return nil, 0, errors.New("unknown status group")
		}
	}
	return s.results.List(ctx, filters, limit, offset)
}
