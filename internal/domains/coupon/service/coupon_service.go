package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"shop-backend/internal/domains/coupon/model"
	"shop-backend/internal/domains/coupon/repository"
	"shop-backend/pkg/logger"
)

type CouponService struct {
	repo repository.CouponRepository
}

func NewService(repo repository.CouponRepository) ServiceInterface {
	return &CouponService{
		repo: repo,
	}
}

// NormalizeCode maps user input to the stored form: trimmed, upper-cased.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *CouponService) Preview(ctx context.Context, userID uuid.UUID, req model.PreviewRequest) (*model.PreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	coupon, discount, err := s.Validate(ctx, req.Code, userID, req.Subtotal)
	if err != nil {
		return nil, err
	}

	return &model.PreviewResponse{
		Code:     coupon.Code,
		Type:     coupon.Type,
		Subtotal: req.Subtotal,
		Discount: discount,
		Total:    req.Subtotal.Sub(discount),
	}, nil
}

func (s *CouponService) Validate(ctx context.Context, code string, userID uuid.UUID, subtotal decimal.Decimal) (*model.Coupon, decimal.Decimal, error) {
	coupon, err := s.repo.GetActiveByCode(ctx, NormalizeCode(code))
	if err != nil {
		return nil, decimal.Zero, err
	}

	usedByUser := 0
	if coupon.MaxUsesPerUser != nil {
		usedByUser, err = s.repo.CountUsageByUser(ctx, coupon.ID, userID)
		if err != nil {
			return nil, decimal.Zero, err
		}
	}

	if err := checkRedeemable(coupon, usedByUser, subtotal, time.Now()); err != nil {
		return nil, decimal.Zero, err
	}

	return coupon, coupon.Discount(subtotal), nil
}

// Redeem runs the authoritative evaluation: the coupon row is locked, the
// rules are re-checked against locked state, then the usage row and the
// conditional used_count increment land in the same transaction as the
// caller's order.
func (s *CouponService) Redeem(ctx context.Context, tx pgx.Tx, code string, userID, orderID uuid.UUID, subtotal decimal.Decimal) (*model.Coupon, decimal.Decimal, error) {
	coupon, err := s.repo.GetActiveByCodeForUpdate(ctx, tx, NormalizeCode(code))
	if err != nil {
		return nil, decimal.Zero, err
	}

	usedByUser := 0
	if coupon.MaxUsesPerUser != nil {
		usedByUser, err = s.repo.CountUsageByUserWithTx(ctx, tx, coupon.ID, userID)
		if err != nil {
			return nil, decimal.Zero, err
		}
	}

	if err := checkRedeemable(coupon, usedByUser, subtotal, time.Now()); err != nil {
		return nil, decimal.Zero, err
	}

	discount := coupon.Discount(subtotal)

	usage := &model.CouponUsage{
		ID:             uuid.New(),
		CouponID:       coupon.ID,
		UserID:         userID,
		OrderID:        orderID,
		DiscountAmount: discount,
	}
	if err := s.repo.InsertUsageWithTx(ctx, tx, usage); err != nil {
		return nil, decimal.Zero, err
	}

	if err := s.repo.IncrementUsedCountWithTx(ctx, tx, coupon.ID); err != nil {
		return nil, decimal.Zero, err
	}

	return coupon, discount, nil
}

func (s *CouponService) ExpireLapsed(ctx context.Context) (int64, error) {
	expired, err := s.repo.DeactivateExpired(ctx)
	if err != nil {
		return 0, err
	}

	if expired > 0 {
		logger.Info("deactivated expired coupons", map[string]interface{}{"count": expired})
	}

	return expired, nil
}

// checkRedeemable applies the rule set in a fixed order: window first,
// then the global cap, the minimum purchase, and the per-user cap.
func checkRedeemable(coupon *model.Coupon, usedByUser int, subtotal decimal.Decimal, now time.Time) error {
	if now.Before(coupon.ValidFrom) {
		return model.NewCouponError(model.ErrCodeCouponNotYetValid, "coupon "+coupon.Code+" is not yet valid", model.ErrCouponNotYetValid)
	}
	if now.After(coupon.ValidUntil) {
		return model.NewCouponError(model.ErrCodeCouponExpired, "coupon "+coupon.Code+" has expired", model.ErrCouponExpired)
	}
	if coupon.MaxUses != nil && coupon.UsedCount >= *coupon.MaxUses {
		return model.NewCouponError(model.ErrCodeUsageLimitReached, "coupon "+coupon.Code+" has no redemptions left", model.ErrUsageLimitReached)
	}
	if subtotal.LessThan(coupon.MinPurchase) {
		return model.NewMinPurchaseError(coupon.MinPurchase, subtotal)
	}
	if coupon.MaxUsesPerUser != nil && usedByUser >= *coupon.MaxUsesPerUser {
		return model.NewCouponError(model.ErrCodeUserLimitReached, "coupon "+coupon.Code+" already used the maximum number of times", model.ErrUserLimitReached)
	}
	return nil
}
