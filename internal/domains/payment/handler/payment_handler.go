package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	orderModel "shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/payment/gateway/vnpay"
	"shop-backend/internal/domains/payment/service"
	"shop-backend/internal/shared/response"
)

type PaymentHandler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *PaymentHandler {
	return &PaymentHandler{service: service}
}

type initiateRequest struct {
	OrderNumber string `json:"order_number" binding:"required"`
}

// InitiatePayment handles POST /api/v1/payments/vnpay
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	v, exists := c.Get("userID")
	if !exists {
		response.Unauthorized(c, "authentication required")
		return
	}
	userID := v.(uuid.UUID)

	var req initiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "order_number is required")
		return
	}

	paymentURL, err := h.service.InitiatePayment(c.Request.Context(), userID, req.OrderNumber, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, orderModel.ErrOrderNotFound):
			response.NotFound(c, orderModel.ErrOrderNotFound.Error())
		case errors.Is(err, service.ErrPaymentNotApplicable):
			response.ErrorResponse(c, http.StatusUnprocessableEntity, "PAY001", err.Error())
		default:
			response.InternalServerError(c, "failed to initiate payment")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"payment_url": paymentURL})
}

// Callback handles GET /api/v1/payments/vnpay/callback
func (h *PaymentHandler) Callback(c *gin.Context) {
	result, err := h.service.HandleCallback(c.Request.Context(), c.Request.URL.RawQuery)
	if err != nil {
		switch {
		case errors.Is(err, vnpay.ErrInvalidSignature):
			response.ErrorResponse(c, http.StatusBadRequest, "PAY002", "invalid callback signature")
		case errors.Is(err, orderModel.ErrOrderNotFound):
			response.NotFound(c, "unknown transaction reference")
		default:
			response.InternalServerError(c, "failed to process callback")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"order_number":  result.TransactionRef,
		"response_code": result.ResponseCode,
		"paid":          result.Success,
	})
}
