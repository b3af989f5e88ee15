package job

import (
	"context"

	"github.com/hibiken/asynq"

	"shop-backend/internal/domains/order/model"
	"shop-backend/internal/infrastructure/email"
	"shop-backend/internal/shared/utils"
	"shop-backend/pkg/logger"
)

// SendOrderConfirmationHandler delivers the confirmation email for a
// freshly committed order. The order exists regardless of the outcome
// here, so a delivery failure only surfaces as a retried task.
type SendOrderConfirmationHandler struct {
	emailService email.EmailService
}

func NewSendOrderConfirmationHandler(emailService email.EmailService) *SendOrderConfirmationHandler {
	return &SendOrderConfirmationHandler{emailService: emailService}
}

func (h *SendOrderConfirmationHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.OrderConfirmationPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		logger.Error("invalid order confirmation payload", err)
		// Malformed payloads never succeed on retry.
		return asynq.SkipRetry
	}

	err := h.emailService.SendOrderConfirmation(ctx, email.OrderConfirmationData{
		Email:       payload.Email,
		OrderNumber: payload.OrderNumber,
		Total:       payload.Total,
	})
	if err != nil {
		return err
	}

	logger.Info("order confirmation sent", map[string]interface{}{
		"order_number": payload.OrderNumber,
		"to":           payload.Email,
	})

	return nil
}
