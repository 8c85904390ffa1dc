package orders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/librelims/lims/internal/domain/exams"
	"github.com/librelims/lims/internal/domain/patients"
	"github.com/librelims/lims/internal/domain/pricing"
	"github.com/librelims/lims/internal/platform/clock"
)

// PatientSource checks patient existence.
type PatientSource interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*patients.Patient, error)
}

// ExamSource checks exam existence.
type ExamSource interface {
	GetExam(ctx context.Context, id uuid.UUID) (*exams.Exam, error)
}

// PriceResolver resolves a line's price when the client omits it.
type PriceResolver interface {
	ResolvePrice(ctx context.Context, examID uuid.UUID, referralID *uuid.UUID, couponCode string) (*pricing.Resolution, error)
	ValidateCoupon(ctx context.Context, code string) (*pricing.CouponValidation, error)
}

// ResultCreator builds the result rows for a freshly paid order. Wired to the
// results service in main; runs inside the payment transaction.
type ResultCreator interface {
	CreateForOrder(ctx context.Context, orderID uuid.UUID) error
}

// TxRunner executes fn inside a storage transaction bound to the context.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	orders     Repository
	details    DetailRepository
	patientSrc PatientSource
	examSrc    ExamSource
	resolver   PriceResolver
	resultSrc  ResultCreator
	clk        clock.Clock
	tx         TxRunner
}

func NewService(orders Repository, details DetailRepository, patientSrc PatientSource,
	examSrc ExamSource, resolver PriceResolver, resultSrc ResultCreator,
	clk clock.Clock, tx TxRunner) *Service {
	if tx == nil {
		tx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Service{orders: orders, details: details, patientSrc: patientSrc,
		examSrc: examSrc, resolver: resolver, resultSrc: resultSrc, clk: clk, tx: tx}
}

// LineInput is one requested exam. A nil price means "resolve server-side".
type LineInput struct {
	ExamID uuid.UUID `json:"exam_id"`
	Price  *float64  `json:"price,omitempty"`
}

// CreateInput is the order creation request.
type CreateInput struct {
	PatientID    uuid.UUID   `json:"patient_id"`
	ReferralID   *uuid.UUID  `json:"referral_id,omitempty"`
	CouponCode   string      `json:"coupon_code,omitempty"`
	Observations string      `json:"observations"`
	Lines        []LineInput `json:"lines"`
}

// validPrice requires a non-negative amount with at most two decimal places.
func validPrice(p float64) bool {
	if p < 0 {
		return false
	}
	cents := p * 100
	return math.Abs(cents-math.Round(cents)) < 1e-6
}

var validPaymentMethods = map[string]bool{
	PaymentCash: true, PaymentCard: true, PaymentTransfer: true,
	PaymentYape: true, PaymentPlin: true,
}

// CreateOrder validates the request, snapshots line prices (resolving omitted
// ones through the pricing resolver), and generates the next daily code. The
// whole sequence runs in one transaction; the unique code constraint backstops
// concurrent creators that read the same last sequence.
func (s *Service) CreateOrder(ctx context.Context, in CreateInput) (*Order, []*OrderDetail, error) {
	if len(in.Lines) == 0 {
		return nil, nil, fmt.Errorf("order needs at least one exam")
	}
	if _, err := s.patientSrc.GetPatient(ctx, in.PatientID); err != nil {
		if errors.Is(err, patients.ErrNotFound) {
			return nil, nil, fmt.Errorf("patient: %w", ErrNotFound)
		}
		return nil, nil, err
	}

	order := &Order{
		PatientID:    in.PatientID,
		ReferralID:   in.ReferralID,
		Status:       StatusPending,
		Observations: in.Observations,
	}

	if code := strings.TrimSpace(in.CouponCode); code != "" {
		v, err := s.resolver.ValidateCoupon(ctx, code)
		if err != nil {
			return nil, nil, err
		}
		if v.Valid {
			order.CouponID = &v.Coupon.ID
		}
	}

	prices := make([]float64, len(in.Lines))
	for i, line := range in.Lines {
		if _, err := s.examSrc.GetExam(ctx, line.ExamID); err != nil {
			if errors.Is(err, exams.ErrNotFound) {
				return nil, nil, fmt.Errorf("exam: %w", ErrNotFound)
			}
			return nil, nil, err
		}
		if line.Price != nil {
			if !validPrice(*line.Price) {
				return nil, nil, fmt.Errorf("invalid price %v: must be non-negative with at most two decimals", *line.Price)
			}
			prices[i] = *line.Price
			continue
		}
		res, err := s.resolver.ResolvePrice(ctx, line.ExamID, in.ReferralID, in.CouponCode)
		if err != nil {
			return nil, nil, err
		}
		prices[i] = res.Price
	}

	var created []*OrderDetail
	err := s.tx(ctx, func(ctx context.Context) error {
		code, err := s.nextCode(ctx)
		if err != nil {
			return err
		}
		order.Code = code
		if err := s.orders.Create(ctx, order); err != nil {
			return err
		}
		for i, line := range in.Lines {
			d := &OrderDetail{OrderID: order.ID, ExamID: line.ExamID, Price: prices[i]}
			if err := s.details.Create(ctx, d); err != nil {
				return err
			}
			created = append(created, d)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return order, created, nil
}

func (s *Service) nextCode(ctx context.Context) (string, error) {
	prefix := s.clk.Today().Format("20060102")
	last, err := s.orders.LastCodeForPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	seq := 1
	if last != "" {
		parts := strings.SplitN(last, "-", 2)
		if len(parts) == 2 {
			if n, err := strconv.Atoi(parts[1]); err == nil {
				seq = n + 1
			}
		}
	}
	return fmt.Sprintf("%s-%06d", prefix, seq), nil
}

// PayOrder moves a pending order to PAID and creates its result rows, all in
// one transaction.
func (s *Service) PayOrder(ctx context.Context, id uuid.UUID, paymentMethod string) (*Order, error) {
	if !validPaymentMethods[paymentMethod] {
		return nil, fmt.Errorf("invalid payment method: %s", paymentMethod)
	}

	var order *Order
	err := s.tx(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if o.Status != StatusPending {
			return ErrNotPending
		}
		if err := s.orders.SetPaid(ctx, id, paymentMethod); err != nil {
			return err
		}
		if err := s.resultSrc.CreateForOrder(ctx, id); err != nil {
			return err
		}
		o.Status = StatusPaid
		o.PaymentMethod = &paymentMethod
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// VoidOrder cancels a pending order.
func (s *Service) VoidOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order *Order
	err := s.tx(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if o.Status != StatusPending {
			return ErrNotPending
		}
		if err := s.orders.SetVoided(ctx, id); err != nil {
			return err
		}
		o.Status = StatusVoided
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*Order, error) {
	return s.orders.GetByCode(ctx, code)
}

func (s *Service) ListOrders(ctx context.Context, limit, offset int) ([]*Order, int, error) {
	return s.orders.List(ctx, limit, offset)
}

func (s *Service) ListDetails(ctx context.Context, orderID uuid.UUID) ([]*OrderDetail, error) {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.details.ListByOrder(ctx, orderID)
}
