package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/domains/coupon/model"
)

type postgresCouponRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCouponRepository(pool *pgxpool.Pool) CouponRepository {
	return &postgresCouponRepository{
		pool: pool,
	}
}

const couponColumns = `
	id, code, type, value, min_purchase, max_discount, max_uses, max_uses_per_user,
	used_count, valid_from, valid_until, is_active, created_at, updated_at
`

func scanCoupon(row pgx.Row, c *model.Coupon) error {
	return row.Scan(
		&c.ID,
		&c.Code,
		&c.Type,
		&c.Value,
		&c.MinPurchase,
		&c.MaxDiscount,
		&c.MaxUses,
		&c.MaxUsesPerUser,
		&c.UsedCount,
		&c.ValidFrom,
		&c.ValidUntil,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

func (r *postgresCouponRepository) GetActiveByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1 AND is_active = true`

	var coupon model.Coupon
	err := scanCoupon(r.pool.QueryRow(ctx, query, code), &coupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to get coupon by code: %w", err)
	}

	return &coupon, nil
}

func (r *postgresCouponRepository) CountUsageByUser(ctx context.Context, couponID, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = $1 AND user_id = $2`

	var count int
	if err := r.pool.QueryRow(ctx, query, couponID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count coupon usage: %w", err)
	}

	return count, nil
}

// GetActiveByCodeForUpdate is the redemption-time read: the row lock makes
// concurrent redemptions of the same coupon queue up behind each other.
func (r *postgresCouponRepository) GetActiveByCodeForUpdate(ctx context.Context, tx pgx.Tx, code string) (*model.Coupon, error) {
	query := `
		SELECT ` + couponColumns + `
		FROM coupons
		WHERE code = $1 AND is_active = true
		FOR UPDATE
	`

	var coupon model.Coupon
	err := scanCoupon(tx.QueryRow(ctx, query, code), &coupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to lock coupon: %w", err)
	}

	return &coupon, nil
}

func (r *postgresCouponRepository) CountUsageByUserWithTx(ctx context.Context, tx pgx.Tx, couponID, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = $1 AND user_id = $2`

	var count int
	if err := tx.QueryRow(ctx, query, couponID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count coupon usage in tx: %w", err)
	}

	return count, nil
}

func (r *postgresCouponRepository) InsertUsageWithTx(ctx context.Context, tx pgx.Tx, usage *model.CouponUsage) error {
	query := `
		INSERT INTO coupon_usages (id, coupon_id, user_id, order_id, discount_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	err := tx.QueryRow(ctx, query,
		usage.ID,
		usage.CouponID,
		usage.UserID,
		usage.OrderID,
		usage.DiscountAmount,
	).Scan(&usage.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert coupon usage: %w", err)
	}

	return nil
}

func (r *postgresCouponRepository) IncrementUsedCountWithTx(ctx context.Context, tx pgx.Tx, couponID uuid.UUID) error {
	query := `
		UPDATE coupons
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE id = $1 AND (max_uses IS NULL OR used_count < max_uses)
	`

	result, err := tx.Exec(ctx, query, couponID)
	if err != nil {
		return fmt.Errorf("failed to increment coupon used_count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrUsageLimitReached
	}

	return nil
}

func (r *postgresCouponRepository) DeactivateExpired(ctx context.Context) (int64, error) {
	query := `
		UPDATE coupons
		SET is_active = false, updated_at = NOW()
		WHERE is_active = true AND valid_until < NOW()
	`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired coupons: %w", err)
	}

	return result.RowsAffected(), nil
}
