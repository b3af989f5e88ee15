package job

import (
	"context"

	"github.com/hibiken/asynq"

	"shop-backend/internal/domains/coupon/service"
	"shop-backend/pkg/logger"
)

// ExpireCouponsHandler runs the scheduled sweep that deactivates coupons
// whose validity window has closed. The task carries no payload.
type ExpireCouponsHandler struct {
	service service.ServiceInterface
}

func NewExpireCouponsHandler(service service.ServiceInterface) *ExpireCouponsHandler {
	return &ExpireCouponsHandler{service: service}
}

func (h *ExpireCouponsHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	expired, err := h.service.ExpireLapsed(ctx)
	if err != nil {
		logger.Error("coupon expiry sweep failed", err)
		return err
	}

	logger.Debug("coupon expiry sweep finished")
	if expired > 0 {
		logger.Info("coupon expiry sweep deactivated coupons", map[string]interface{}{"count": expired})
	}

	return nil
}
