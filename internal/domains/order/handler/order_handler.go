package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogModel "shop-backend/internal/domains/catalog/model"
	couponHandler "shop-backend/internal/domains/coupon/handler"
	couponModel "shop-backend/internal/domains/coupon/model"
	"shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/order/service"
	"shop-backend/internal/shared/response"
)

type OrderHandler struct {
	service service.OrderService
}

func NewHandler(service service.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("userID")
	if !exists {
		response.Unauthorized(c, "authentication required")
		return uuid.Nil, false
	}
	return v.(uuid.UUID), true
}

// CreateOrder handles POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	userEmail := ""
	if v, exists := c.Get("email"); exists {
		userEmail, _ = v.(string)
	}

	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.service.CreateOrder(c.Request.Context(), userID, userEmail, req)
	if err != nil {
		h.handleOrderError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// GetOrder handles GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	detail, err := h.service.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		h.handleOrderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, detail)
}

// ListOrders handles GET /api/v1/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req model.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}
	req.Normalize()

	orders, total, err := h.service.ListOrders(c.Request.Context(), userID, req)
	if err != nil {
		h.handleOrderError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, orders, &response.Meta{
		Page:  req.Page,
		Limit: req.Limit,
		Total: total,
	})
}

// CancelOrder handles POST /api/v1/orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	if err := h.service.CancelOrder(c.Request.Context(), userID, orderID); err != nil {
		h.handleOrderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cancelled": true})
}

// UpdateStatus handles PATCH /api/v1/admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), orderID, req); err != nil {
		h.handleOrderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

// handleOrderError funnels checkout failures from all three domains onto
// the response envelope.
func (h *OrderHandler) handleOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrEmptyCart):
		response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeEmptyCart, model.ErrEmptyCart.Error())
	case errors.Is(err, model.ErrOrderNotFound):
		response.ErrorResponse(c, http.StatusNotFound, model.ErrCodeOrderNotFound, model.ErrOrderNotFound.Error())
	case errors.Is(err, model.ErrInvalidTransition):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, model.ErrCodeInvalidTransition, err.Error())
	case errors.Is(err, model.ErrVersionMismatch):
		response.ErrorResponse(c, http.StatusConflict, model.ErrCodeVersionMismatch, model.ErrVersionMismatch.Error())
	case errors.Is(err, model.ErrNotCancellable):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, model.ErrCodeNotCancellable, err.Error())

	case errors.Is(err, catalogModel.ErrProductNotFound):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, catalogModel.ErrCodeProductNotFound, catalogModel.ErrProductNotFound.Error())
	case errors.Is(err, catalogModel.ErrVariantNotFound):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, catalogModel.ErrCodeVariantNotFound, catalogModel.ErrVariantNotFound.Error())
	case errors.Is(err, catalogModel.ErrOutOfStock):
		response.ErrorResponse(c, http.StatusConflict, catalogModel.ErrCodeOutOfStock, err.Error())
	case errors.Is(err, catalogModel.ErrInvalidQuantity):
		response.ErrorResponse(c, http.StatusBadRequest, catalogModel.ErrCodeInvalidQuantity, err.Error())

	case errors.Is(err, couponModel.ErrCouponNotFound),
		errors.Is(err, couponModel.ErrCouponExpired),
		errors.Is(err, couponModel.ErrCouponNotYetValid),
		errors.Is(err, couponModel.ErrUsageLimitReached),
		errors.Is(err, couponModel.ErrUserLimitReached),
		errors.Is(err, couponModel.ErrMinPurchaseNotMet):
		couponHandler.HandleCouponError(c, err)

	default:
		var orderErr *model.OrderError
		if errors.As(err, &orderErr) && orderErr.Code == model.ErrCodeInvalidRequest {
			response.ErrorWithDetails(c, http.StatusBadRequest, orderErr.Code, orderErr.Message, nil)
			return
		}
		response.ErrorResponse(c, http.StatusInternalServerError, model.ErrCodeTransactionFailed, "failed to process order")
	}
}
