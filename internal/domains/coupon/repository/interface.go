package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shop-backend/internal/domains/coupon/model"
)

// CouponRepository separates pool reads (validation, preview) from the
// transaction-scoped methods used during redemption.
type CouponRepository interface {
	GetActiveByCode(ctx context.Context, code string) (*model.Coupon, error)
	CountUsageByUser(ctx context.Context, couponID, userID uuid.UUID) (int, error)

	// GetActiveByCodeForUpdate locks the coupon row so concurrent
	// redemptions of the same code serialize.
	GetActiveByCodeForUpdate(ctx context.Context, tx pgx.Tx, code string) (*model.Coupon, error)
	CountUsageByUserWithTx(ctx context.Context, tx pgx.Tx, couponID, userID uuid.UUID) (int, error)
	InsertUsageWithTx(ctx context.Context, tx pgx.Tx, usage *model.CouponUsage) error

	// IncrementUsedCountWithTx bumps used_count only while it stays under
	// max_uses; zero affected rows means the cap was hit.
	IncrementUsedCountWithTx(ctx context.Context, tx pgx.Tx, couponID uuid.UUID) error

	// DeactivateExpired flips is_active off for coupons whose window has
	// closed; returns the number of rows touched.
	DeactivateExpired(ctx context.Context) (int64, error)
}
