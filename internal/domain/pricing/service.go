package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/librelims/lims/internal/domain/exams"
	"github.com/librelims/lims/internal/domain/referrals"
	"github.com/librelims/lims/internal/platform/clock"
)

// ExamSource provides exam lookups without depending on the exam service
// concretely.
type ExamSource interface {
	GetExam(ctx context.Context, id uuid.UUID) (*exams.Exam, error)
}

// ReferralSource provides referral lookups.
type ReferralSource interface {
	GetReferral(ctx context.Context, id uuid.UUID) (*referrals.Referral, error)
}

type Service struct {
	lists   PriceListRepository
	items   ItemRepository
	coupons CouponRepository
	examSrc ExamSource
	refSrc  ReferralSource
	clk     clock.Clock
}

func NewService(lists PriceListRepository, items ItemRepository, coupons CouponRepository,
	examSrc ExamSource, refSrc ReferralSource, clk clock.Clock) *Service {
	return &Service{lists: lists, items: items, coupons: coupons,
		examSrc: examSrc, refSrc: refSrc, clk: clk}
}

// ResolvePrice computes the effective price for an exam. Precedence: coupon,
// then referral price list, then the exam's base price. Coupon and referral
// failures fall through silently to the next tier; a missing exam is the only
// hard error.
func (s *Service) ResolvePrice(ctx context.Context, examID uuid.UUID, referralID *uuid.UUID, couponCode string) (*Resolution, error) {
	exam, err := s.examSrc.GetExam(ctx, examID)
	if err != nil {
		if errors.Is(err, exams.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if couponCode != "" {
		if res := s.resolveCoupon(ctx, exam, couponCode); res != nil {
			return res, nil
		}
	}

	if referralID != nil {
		if res := s.resolveReferral(ctx, exam, *referralID); res != nil {
			return res, nil
		}
	}

	return &Resolution{Price: exam.Price, Source: SourceBase}, nil
}

func (s *Service) resolveCoupon(ctx context.Context, exam *exams.Exam, code string) *Resolution {
	coupon, err := s.coupons.GetActiveByCode(ctx, code)
	if err != nil {
		return nil
	}
	if coupon.Expired(s.clk.Today()) {
		return nil
	}
	item, err := s.items.Get(ctx, coupon.PriceListID, exam.ID)
	if err != nil {
		return nil
	}
	res := &Resolution{
		Price:       item.Price,
		Source:      SourceCoupon,
		PriceListID: &coupon.PriceListID,
		CouponCode:  coupon.Code,
	}
	if pl, err := s.lists.GetByID(ctx, coupon.PriceListID); err == nil {
		res.PriceListName = pl.Name
	}
	return res
}

func (s *Service) resolveReferral(ctx context.Context, exam *exams.Exam, referralID uuid.UUID) *Resolution {
	ref, err := s.refSrc.GetReferral(ctx, referralID)
	if err != nil || !ref.IsActive || ref.PriceListID == nil {
		return nil
	}
	item, err := s.items.Get(ctx, *ref.PriceListID, exam.ID)
	if err != nil {
		return nil
	}
	res := &Resolution{
		Price:       item.Price,
		Source:      SourcePriceList,
		PriceListID: ref.PriceListID,
	}
	if pl, err := s.lists.GetByID(ctx, *ref.PriceListID); err == nil {
		res.PriceListName = pl.Name
	}
	return res
}

// ValidateCoupon checks a code against active coupons, distinguishing an
// expired coupon from one that does not exist or is inactive.
func (s *Service) ValidateCoupon(ctx context.Context, code string) (*CouponValidation, error) {
	coupon, err := s.coupons.GetActiveByCode(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return &CouponValidation{
			Valid:   false,
			Reason:  CouponInvalidNotFound,
			Message: "coupon is not valid or inactive",
		}, nil
	}
	if err != nil {
		return nil, err
	}
	if coupon.Expired(s.clk.Today()) {
		return &CouponValidation{
			Valid:   false,
			Coupon:  coupon,
			Reason:  CouponInvalidExpired,
			Message: "coupon has expired",
		}, nil
	}
	return &CouponValidation{Valid: true, Coupon: coupon}, nil
}

func (s *Service) CreatePriceList(ctx context.Context, pl *PriceList) error {
	if strings.TrimSpace(pl.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return s.lists.Create(ctx, pl)
}

func (s *Service) GetPriceList(ctx context.Context, id uuid.UUID) (*PriceList, error) {
	return s.lists.GetByID(ctx, id)
}

func (s *Service) UpdatePriceList(ctx context.Context, pl *PriceList) error {
	if strings.TrimSpace(pl.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return s.lists.Update(ctx, pl)
}

func (s *Service) ListPriceLists(ctx context.Context, limit, offset int) ([]*PriceList, int, error) {
	return s.lists.List(ctx, limit, offset)
}

func (s *Service) ListItems(ctx context.Context, priceListID uuid.UUID) ([]*PriceListItem, error) {
	return s.items.ListByPriceList(ctx, priceListID)
}

func (s *Service) SetItem(ctx context.Context, item *PriceListItem) error {
	if item.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if _, err := s.examSrc.GetExam(ctx, item.ExamID); err != nil {
		if errors.Is(err, exams.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if _, err := s.lists.GetByID(ctx, item.PriceListID); err != nil {
		return err
	}
	return s.items.Upsert(ctx, item)
}

func (s *Service) DeleteItem(ctx context.Context, priceListID, examID uuid.UUID) error {
	return s.items.Delete(ctx, priceListID, examID)
}

// CreateCoupon stores the code uppercased so lookups stay case-insensitive.
func (s *Service) CreateCoupon(ctx context.Context, c *Coupon) error {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	if c.Code == "" {
		return fmt.Errorf("code is required")
	}
	if _, err := s.lists.GetByID(ctx, c.PriceListID); err != nil {
		return err
	}
	return s.coupons.Create(ctx, c)
}

func (s *Service) UpdateCoupon(ctx context.Context, c *Coupon) error {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	if c.Code == "" {
		return fmt.Errorf("code is required")
	}
	return s.coupons.Update(ctx, c)
}

func (s *Service) ListCoupons(ctx context.Context, limit, offset int) ([]*Coupon, int, error) {
	return s.coupons.List(ctx, limit, offset)
}
