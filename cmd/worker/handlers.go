package main

import (
	"github.com/hibiken/asynq"

	"shop-backend/internal/config"
	couponJob "shop-backend/internal/domains/coupon/job"
	couponRepo "shop-backend/internal/domains/coupon/repository"
	couponService "shop-backend/internal/domains/coupon/service"
	orderJob "shop-backend/internal/domains/order/job"
	"shop-backend/internal/infrastructure/email"
	"shop-backend/internal/shared"
)

// HandlerRegistry holds all job handlers.
type HandlerRegistry struct {
	sendOrderConfirmation *orderJob.SendOrderConfirmationHandler
	expireCoupons         *couponJob.ExpireCouponsHandler
}

func initializeHandlers(cfg *config.Config, deps *workerDeps) *HandlerRegistry {
	emailSvc := email.NewSMTPEmailService(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.From)
	couponSvc := couponService.NewService(couponRepo.NewPostgresCouponRepository(deps.db.Pool))

	return &HandlerRegistry{
		sendOrderConfirmation: orderJob.NewSendOrderConfirmationHandler(emailSvc),
		expireCoupons:         couponJob.NewExpireCouponsHandler(couponSvc),
	}
}

func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeSendOrderConfirmation, h.sendOrderConfirmation.ProcessTask)
	mux.HandleFunc(shared.TypeExpireLapsedCoupons, h.expireCoupons.ProcessTask)
}
