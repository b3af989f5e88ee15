package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	catalogModel "shop-backend/internal/domains/catalog/model"
	catalog "shop-backend/internal/domains/catalog/service"
	coupon "shop-backend/internal/domains/coupon/service"
	"shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/order/repository"
	"shop-backend/internal/shared"
	"shop-backend/internal/shared/utils"
	"shop-backend/pkg/logger"
)

// =====================================================
// ORDER SERVICE IMPLEMENTATION
// =====================================================
type orderService struct {
	orderRepo      repository.OrderRepository
	catalogService catalog.ServiceInterface
	couponService  coupon.ServiceInterface
	asynq          *asynq.Client
	txTimeout      time.Duration
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	catalogService catalog.ServiceInterface,
	couponService coupon.ServiceInterface,
	asynqClient *asynq.Client,
	txTimeout time.Duration,
) OrderService {
	if txTimeout <= 0 {
		txTimeout = 10 * time.Second
	}
	return &orderService{
		orderRepo:      orderRepo,
		catalogService: catalogService,
		couponService:  couponService,
		asynq:          asynqClient,
		txTimeout:      txTimeout,
	}
}

// =====================================================
// CREATE ORDER - MAIN BUSINESS LOGIC
// =====================================================

func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, userEmail string, req model.CreateOrderRequest) (*model.CreateOrderResponse, error) {
	// Step 1: Request shape.
	if len(req.Items) == 0 {
		return nil, model.NewOrderError(model.ErrCodeEmptyCart, "order must contain at least one item", model.ErrEmptyCart)
	}
	if err := req.Validate(); err != nil {
		return nil, model.NewOrderError(model.ErrCodeInvalidRequest, "invalid order request", err)
	}

	// Step 2: Advisory resolution against live catalog state. Rejects
	// unknown products, foreign variants and obviously short stock before
	// any lock is taken.
	pricedItems, err := s.catalogService.Resolve(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	subtotal := sumSubtotal(pricedItems)

	// Step 3: Coupon pre-check, fail fast before opening a transaction.
	// The authoritative evaluation happens again under lock in step 7.
	if req.CouponCode != nil && *req.CouponCode != "" {
		if _, _, err := s.couponService.Validate(ctx, *req.CouponCode, userID, subtotal); err != nil {
			return nil, err
		}
	}

	// Step 4: Transaction. The deadline bounds how long row locks are held.
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.orderRepo.BeginTx(txCtx)
	if err != nil {
		return nil, model.NewOrderError(model.ErrCodeTransactionFailed, "failed to begin transaction", err)
	}
	defer s.orderRepo.RollbackTx(txCtx, tx)

	// Step 5: Re-resolve under row locks. Prices and stock may have moved
	// since step 2; this snapshot is the one the order records.
	pricedItems, err = s.catalogService.ResolveForUpdate(txCtx, tx, req.Items)
	if err != nil {
		return nil, err
	}
	subtotal = sumSubtotal(pricedItems)

	// Step 6: Conditional stock decrements against the locked rows.
	if err := s.catalogService.DecrementStock(txCtx, tx, pricedItems); err != nil {
		return nil, err
	}

	orderID := uuid.New()

	// Step 7: Coupon redemption. Any failure here aborts the order; a
	// coupon problem must never produce an undiscounted order.
	var couponID *uuid.UUID
	discount := decimal.Zero
	if req.CouponCode != nil && *req.CouponCode != "" {
		redeemed, redeemedDiscount, err := s.couponService.Redeem(txCtx, tx, *req.CouponCode, userID, orderID, subtotal)
		if err != nil {
			return nil, err
		}
		couponID = &redeemed.ID
		discount = redeemedDiscount
	}

	// Step 8: Build and persist the order.
	order := &model.Order{
		ID:              orderID,
		OrderNumber:     model.NewOrderNumber(time.Now()),
		UserID:          userID,
		CouponID:        couponID,
		Subtotal:        subtotal,
		DiscountAmount:  discount,
		Total:           subtotal.Sub(discount),
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   model.PaymentStatusPending,
		ShippingAddress: req.ShippingAddress,
		Phone:           req.Phone,
		CustomerNote:    req.CustomerNote,
		Version:         0,
	}
	if req.PaymentMethod == model.PaymentMethodCOD {
		order.Status = model.OrderStatusConfirmed
	} else {
		order.Status = model.OrderStatusPending
	}

	if err := s.orderRepo.CreateOrderWithTx(txCtx, tx, order); err != nil {
		return nil, model.NewOrderError(model.ErrCodeTransactionFailed, "failed to create order", err)
	}

	orderItems := buildOrderItems(orderID, pricedItems)
	if err := s.orderRepo.CreateOrderItemsWithTx(txCtx, tx, orderItems); err != nil {
		return nil, model.NewOrderError(model.ErrCodeTransactionFailed, "failed to create order items", err)
	}

	// Step 9: Commit.
	if err := s.orderRepo.CommitTx(txCtx, tx); err != nil {
		return nil, model.NewOrderError(model.ErrCodeTransactionFailed, "failed to commit transaction", err)
	}

	// Step 10: Post-commit work. Best effort only, the order already
	// exists. Cache eviction waits until here so a concurrent read cannot
	// repopulate it with pre-commit stock.
	s.catalogService.InvalidateProducts(ctx, pricedItems)
	s.enqueueConfirmation(order, userEmail)

	logger.Info("order created", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      userID,
		"total":        order.Total,
	})

	return &model.CreateOrderResponse{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		Subtotal:       order.Subtotal,
		DiscountAmount: order.DiscountAmount,
		Total:          order.Total,
		Status:         order.Status,
		PaymentStatus:  order.PaymentStatus,
	}, nil
}

func sumSubtotal(items []catalogModel.PricedItem) decimal.Decimal {
	subtotal := decimal.Zero
	for i := range items {
		subtotal = subtotal.Add(items[i].Subtotal())
	}
	return subtotal
}

func buildOrderItems(orderID uuid.UUID, priced []catalogModel.PricedItem) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(priced))
	for _, p := range priced {
		items = append(items, model.OrderItem{
			ID:          uuid.New(),
			OrderID:     orderID,
			ProductID:   p.ProductID,
			VariantID:   p.VariantID,
			ProductName: p.ProductName,
			VariantName: p.VariantName,
			Quantity:    p.Quantity,
			UnitPrice:   p.UnitPrice,
			Subtotal:    p.Subtotal(),
		})
	}
	return items
}

func (s *orderService) enqueueConfirmation(order *model.Order, userEmail string) {
	if s.asynq == nil || userEmail == "" {
		return
	}

	payload := model.OrderConfirmationPayload{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Email:       userEmail,
		Total:       order.Total.String(),
		PlacedAt:    order.CreatedAt,
	}

	task, err := utils.MarshalTask(shared.TypeSendOrderConfirmation, payload)
	if err != nil {
		logger.Error("failed to marshal order confirmation task", err)
		return
	}
	if _, err := s.asynq.Enqueue(task, asynq.Queue(shared.QueueOrders)); err != nil {
		logger.Error("failed to enqueue order confirmation", err)
	}
}

// =====================================================
// READS
// =====================================================

func (s *orderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.OrderDetailResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		// Ownership failures look like absence to the caller.
		return nil, model.ErrOrderNotFound
	}

	items, err := s.orderRepo.GetItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &model.OrderDetailResponse{
		Order: *order,
		Items: items,
	}, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID, req model.ListOrdersRequest) ([]model.Order, int, error) {
	req.Normalize()
	return s.orderRepo.ListByUser(ctx, userID, req.Status, req.Page, req.Limit)
}

// =====================================================
// LIFECYCLE
// =====================================================

// CancelOrder locks the order, returns every item's quantity to stock and
// flips the status, atomically. Coupon usage is intentionally not undone.
func (s *orderService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) error {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.orderRepo.BeginTx(txCtx)
	if err != nil {
		return model.NewOrderError(model.ErrCodeTransactionFailed, "failed to begin transaction", err)
	}
	defer s.orderRepo.RollbackTx(txCtx, tx)

	order, err := s.orderRepo.GetByIDForUpdate(txCtx, tx, orderID)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return model.ErrOrderNotFound
	}
	if !model.CanCancel(order.Status) {
		return model.NewOrderError(model.ErrCodeNotCancellable,
			fmt.Sprintf("order in status %q can no longer be cancelled", order.Status), model.ErrNotCancellable)
	}

	items, err := s.orderRepo.GetItemsByOrderIDWithTx(txCtx, tx, orderID)
	if err != nil {
		return err
	}

	if err := s.catalogService.RestoreStock(txCtx, tx, toPricedItems(items)); err != nil {
		return err
	}

	if err := s.orderRepo.MarkCancelledWithTx(txCtx, tx, orderID, order.Version); err != nil {
		return err
	}

	if err := s.orderRepo.CommitTx(txCtx, tx); err != nil {
		return model.NewOrderError(model.ErrCodeTransactionFailed, "failed to commit cancellation", err)
	}

	s.catalogService.InvalidateProducts(ctx, toPricedItems(items))

	logger.Info("order cancelled", map[string]interface{}{
		"order_id": orderID,
		"user_id":  userID,
	})

	return nil
}

func toPricedItems(items []model.OrderItem) []catalogModel.PricedItem {
	priced := make([]catalogModel.PricedItem, 0, len(items))
	for _, item := range items {
		priced = append(priced, catalogModel.PricedItem{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			ProductName: item.ProductName,
			VariantName: item.VariantName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return priced
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, req model.UpdateStatusRequest) error {
	if err := req.Validate(); err != nil {
		return model.NewOrderError(model.ErrCodeInvalidRequest, "invalid status update", err)
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !model.CanTransition(order.Status, req.Status) {
		return model.NewOrderError(model.ErrCodeInvalidTransition,
			fmt.Sprintf("cannot move order from %q to %q", order.Status, req.Status), model.ErrInvalidTransition)
	}

	return s.orderRepo.UpdateStatus(ctx, orderID, req.Status, req.Version)
}

// =====================================================
// PAYMENT CALLBACKS
// =====================================================

func (s *orderService) MarkPaid(ctx context.Context, orderNumber string) error {
	order, err := s.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return err
	}

	if err := s.orderRepo.UpdatePaymentStatus(ctx, order.ID, model.PaymentStatusPaid); err != nil {
		return err
	}

	// A paid pending order moves to confirmed; losing the version race
	// here is harmless, the payment status already landed.
	if order.Status == model.OrderStatusPending {
		if err := s.orderRepo.UpdateStatus(ctx, order.ID, model.OrderStatusConfirmed, order.Version); err != nil {
			logger.Warn("could not confirm order after payment", map[string]interface{}{
				"order_number": orderNumber,
				"error":        err.Error(),
			})
		}
	}

	return nil
}

func (s *orderService) MarkPaymentFailed(ctx context.Context, orderNumber string) error {
	order, err := s.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return err
	}
	return s.orderRepo.UpdatePaymentStatus(ctx, order.ID, model.PaymentStatusFailed)
}
