package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	orderModel "shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/order/repository"
	order "shop-backend/internal/domains/order/service"
	"shop-backend/internal/domains/payment/gateway"
	"shop-backend/pkg/logger"
)

var (
	ErrPaymentNotApplicable = errors.New("order is not awaiting online payment")
)

// ServiceInterface covers the narrow payment surface: building the
// redirect URL for an order and digesting the gateway callback.
type ServiceInterface interface {
	InitiatePayment(ctx context.Context, userID uuid.UUID, orderNumber, clientIP string) (string, error)
	HandleCallback(ctx context.Context, rawQuery string) (*gateway.CallbackResult, error)
}

type paymentService struct {
	orderRepo    repository.OrderRepository
	orderService order.OrderService
	vnpay        gateway.VNPayGateway
}

func NewPaymentService(orderRepo repository.OrderRepository, orderService order.OrderService, vnpay gateway.VNPayGateway) ServiceInterface {
	return &paymentService{
		orderRepo:    orderRepo,
		orderService: orderService,
		vnpay:        vnpay,
	}
}

func (s *paymentService) InitiatePayment(ctx context.Context, userID uuid.UUID, orderNumber, clientIP string) (string, error) {
	order, err := s.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return "", err
	}
	if order.UserID != userID {
		return "", orderModel.ErrOrderNotFound
	}
	if order.PaymentMethod != orderModel.PaymentMethodVNPay || order.PaymentStatus != orderModel.PaymentStatusPending {
		return "", ErrPaymentNotApplicable
	}

	return s.vnpay.CreatePaymentURL(ctx, gateway.PaymentRequest{
		TransactionRef: order.OrderNumber,
		Amount:         order.Total,
		OrderInfo:      fmt.Sprintf("Payment for order %s", order.OrderNumber),
		ClientIP:       clientIP,
	})
}

// HandleCallback verifies the gateway signature, then records the outcome
// on the order. Verification failures surface; order update failures are
// logged so the gateway still receives an acknowledgement.
func (s *paymentService) HandleCallback(ctx context.Context, rawQuery string) (*gateway.CallbackResult, error) {
	result, err := s.vnpay.VerifyCallback(rawQuery)
	if err != nil {
		return nil, err
	}

	if result.Success {
		err = s.orderService.MarkPaid(ctx, result.TransactionRef)
	} else {
		err = s.orderService.MarkPaymentFailed(ctx, result.TransactionRef)
	}
	if err != nil {
		logger.Error("failed to record payment callback", err)
		return nil, err
	}

	logger.Info("payment callback processed", map[string]interface{}{
		"order_number":  result.TransactionRef,
		"response_code": result.ResponseCode,
		"success":       result.Success,
	})

	return result, nil
}
