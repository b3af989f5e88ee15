package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shop-backend/internal/domains/coupon/model"
	"shop-backend/internal/domains/coupon/service"
	"shop-backend/internal/shared/response"
)

type CouponHandler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *CouponHandler {
	return &CouponHandler{service: service}
}

// Preview handles POST /api/v1/coupons/preview
func (h *CouponHandler) Preview(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request", err)
		return
	}

	preview, err := h.service.Preview(c.Request.Context(), userID.(uuid.UUID), req)
	if err != nil {
		HandleCouponError(c, err)
		return
	}

	response.Success(c, http.StatusOK, preview)
}

// HandleCouponError maps coupon evaluation failures onto the response
// envelope; the order handler reuses it for checkout rejections.
func HandleCouponError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrCouponNotFound):
		response.ErrorResponse(c, http.StatusNotFound, model.ErrCodeCouponNotFound, model.ErrCouponNotFound.Error())
	case errors.Is(err, model.ErrCouponExpired):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, model.ErrCodeCouponExpired, err.Error())
	case errors.Is(err, model.ErrCouponNotYetValid):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, model.ErrCodeCouponNotYetValid, err.Error())
	case errors.Is(err, model.ErrUsageLimitReached):
		response.ErrorResponse(c, http.StatusConflict, model.ErrCodeUsageLimitReached, err.Error())
	case errors.Is(err, model.ErrUserLimitReached):
		response.ErrorResponse(c, http.StatusConflict, model.ErrCodeUserLimitReached, err.Error())
	case errors.Is(err, model.ErrMinPurchaseNotMet):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, model.ErrCodeMinPurchaseNotMet, err.Error())
	default:
		response.InternalServerError(c, "failed to evaluate coupon")
	}
}
