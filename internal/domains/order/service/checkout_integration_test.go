//go:build integration

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	catalogModel "shop-backend/internal/domains/catalog/model"
	catalogRepository "shop-backend/internal/domains/catalog/repository"
	catalog "shop-backend/internal/domains/catalog/service"
	couponModel "shop-backend/internal/domains/coupon/model"
	couponRepository "shop-backend/internal/domains/coupon/repository"
	coupon "shop-backend/internal/domains/coupon/service"
	"shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/order/repository"
)

// These tests run CreateOrder against a real Postgres so the FOR UPDATE
// reads and the conditional UPDATE guards are exercised by actual
// concurrent transactions, not re-implemented by fakes.

var checkoutSchema = []string{
	`CREATE TABLE products (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL,
		description TEXT,
		price NUMERIC(12,2) NOT NULL,
		stock INT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE product_variants (
		id UUID PRIMARY KEY,
		product_id UUID NOT NULL REFERENCES products(id),
		name TEXT NOT NULL,
		price_adjustment NUMERIC(12,2) NOT NULL DEFAULT 0,
		stock INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE coupons (
		id UUID PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL,
		value NUMERIC(12,2) NOT NULL,
		min_purchase NUMERIC(12,2) NOT NULL DEFAULT 0,
		max_discount NUMERIC(12,2),
		max_uses INT,
		max_uses_per_user INT,
		used_count INT NOT NULL DEFAULT 0,
		valid_from TIMESTAMPTZ NOT NULL,
		valid_until TIMESTAMPTZ NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE orders (
		id UUID PRIMARY KEY,
		order_number TEXT NOT NULL UNIQUE,
		user_id UUID NOT NULL,
		coupon_id UUID REFERENCES coupons(id),
		subtotal NUMERIC(12,2) NOT NULL,
		discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		total NUMERIC(12,2) NOT NULL,
		payment_method TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		status TEXT NOT NULL,
		shipping_address TEXT NOT NULL,
		phone TEXT NOT NULL,
		customer_note TEXT,
		version INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		cancelled_at TIMESTAMPTZ
	)`,
	`CREATE TABLE order_items (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES orders(id),
		product_id UUID NOT NULL REFERENCES products(id),
		variant_id UUID REFERENCES product_variants(id),
		product_name TEXT NOT NULL,
		variant_name TEXT,
		quantity INT NOT NULL,
		unit_price NUMERIC(12,2) NOT NULL,
		subtotal NUMERIC(12,2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE coupon_usages (
		id UUID PRIMARY KEY,
		coupon_id UUID NOT NULL REFERENCES coupons(id),
		user_id UUID NOT NULL,
		order_id UUID NOT NULL REFERENCES orders(id),
		discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

func setupCheckoutDB(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("shop"),
		postgres.WithUsername("shop"),
		postgres.WithPassword("shop"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	for _, stmt := range checkoutSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			t.Fatalf("failed to apply schema: %v", err)
		}
	}

	return pool
}

type nopCache struct{}

func (nopCache) Get(_ context.Context, _ string, _ interface{}) (bool, error) { return false, nil }
func (nopCache) Set(_ context.Context, _ string, _ interface{}, _ time.Duration) error {
	return nil
}
func (nopCache) Delete(_ context.Context, _ ...string) error     { return nil }
func (nopCache) DeletePattern(_ context.Context, _ string) error { return nil }
func (nopCache) Ping(_ context.Context) error                    { return nil }

func newCheckoutService(pool *pgxpool.Pool) OrderService {
	catalogSvc := catalog.NewService(catalogRepository.NewPostgresCatalogRepository(pool), nopCache{})
	couponSvc := coupon.NewService(couponRepository.NewPostgresCouponRepository(pool))
	return NewOrderService(repository.NewPostgresOrderRepository(pool), catalogSvc, couponSvc, nil, 10*time.Second)
}

func seedProduct(ctx context.Context, t *testing.T, pool *pgxpool.Pool, price string, stock int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(ctx,
		`INSERT INTO products (id, name, slug, price, stock, is_active) VALUES ($1, $2, $3, $4, $5, TRUE)`,
		id, "emberwood lamp", "emberwood-lamp", decimal.RequireFromString(price), stock,
	)
	require.NoError(t, err)
	return id
}

func seedCoupon(ctx context.Context, t *testing.T, pool *pgxpool.Pool, c *couponModel.Coupon) {
	t.Helper()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := pool.Exec(ctx,
		`INSERT INTO coupons (id, code, type, value, min_purchase, max_discount, max_uses, max_uses_per_user,
			used_count, valid_from, valid_until, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.Code, c.Type, c.Value, c.MinPurchase, c.MaxDiscount, c.MaxUses, c.MaxUsesPerUser,
		c.UsedCount, c.ValidFrom, c.ValidUntil, c.IsActive,
	)
	require.NoError(t, err)
}

func countRows(ctx context.Context, t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var n int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func TestCheckout_NoOversellUnderConcurrency(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool := setupCheckoutDB(ctx, t)
	svc := newCheckoutService(pool)

	const stock = 3
	const buyers = 8

	productID := seedProduct(ctx, t, pool, "10.00", stock)

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		succeeded  int
		outOfStock int
	)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := svc.CreateOrder(ctx, uuid.New(), "", model.CreateOrderRequest{
				Items:           []catalogModel.ResolveRequest{{ProductID: productID, Quantity: 1}},
				PaymentMethod:   model.PaymentMethodCOD,
				ShippingAddress: "12 Alder Lane, Springfield",
				Phone:           "0123456789",
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, catalogModel.ErrOutOfStock):
				outOfStock++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, stock, succeeded, "exactly the available stock may sell")
	assert.Equal(t, buyers-stock, outOfStock)

	var remaining int
	require.NoError(t, pool.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&remaining))
	assert.Equal(t, 0, remaining, "stock must land on zero, never below")

	// Failed attempts must leave no trace.
	assert.Equal(t, stock, countRows(ctx, t, pool, "orders"))
	assert.Equal(t, stock, countRows(ctx, t, pool, "order_items"))
}

func TestCheckout_CouponCapUnderConcurrency(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool := setupCheckoutDB(ctx, t)
	svc := newCheckoutService(pool)

	const maxUses = 2
	const buyers = 5

	productID := seedProduct(ctx, t, pool, "100.00", buyers)

	uses := maxUses
	seedCoupon(ctx, t, pool, &couponModel.Coupon{
		Code:       "LAUNCH20",
		Type:       couponModel.TypeFixed,
		Value:      decimal.RequireFromString("20.00"),
		MaxUses:    &uses,
		ValidFrom:  time.Now().Add(-time.Hour),
		ValidUntil: time.Now().Add(time.Hour),
		IsActive:   true,
	})

	code := "LAUNCH20"

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		redeemed int
		capped   int
	)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := svc.CreateOrder(ctx, uuid.New(), "", model.CreateOrderRequest{
				Items:           []catalogModel.ResolveRequest{{ProductID: productID, Quantity: 1}},
				CouponCode:      &code,
				PaymentMethod:   model.PaymentMethodCOD,
				ShippingAddress: "12 Alder Lane, Springfield",
				Phone:           "0123456789",
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				redeemed++
			case assert.ErrorIs(t, err, couponModel.ErrUsageLimitReached):
				capped++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, maxUses, redeemed)
	assert.Equal(t, buyers-maxUses, capped)

	// A coupon failure aborts the whole checkout, so only successful
	// redemptions leave orders, usage rows or stock movement behind.
	var usedCount, remaining int
	require.NoError(t, pool.QueryRow(ctx, `SELECT used_count FROM coupons WHERE code = $1`, code).Scan(&usedCount))
	require.NoError(t, pool.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&remaining))

	assert.Equal(t, maxUses, usedCount)
	assert.Equal(t, maxUses, countRows(ctx, t, pool, "coupon_usages"))
	assert.Equal(t, maxUses, countRows(ctx, t, pool, "orders"))
	assert.Equal(t, buyers-maxUses, remaining)
}
