package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"shop-backend/internal/config"
	catalogHandler "shop-backend/internal/domains/catalog/handler"
	catalogRepo "shop-backend/internal/domains/catalog/repository"
	catalogService "shop-backend/internal/domains/catalog/service"
	couponHandler "shop-backend/internal/domains/coupon/handler"
	couponRepo "shop-backend/internal/domains/coupon/repository"
	couponService "shop-backend/internal/domains/coupon/service"
	orderHandler "shop-backend/internal/domains/order/handler"
	orderRepo "shop-backend/internal/domains/order/repository"
	orderService "shop-backend/internal/domains/order/service"
	"shop-backend/internal/domains/payment/gateway/vnpay"
	paymentHandler "shop-backend/internal/domains/payment/handler"
	paymentService "shop-backend/internal/domains/payment/service"
	infraCache "shop-backend/internal/infrastructure/cache"
	"shop-backend/internal/infrastructure/database"
	"shop-backend/pkg/cache"
	"shop-backend/pkg/logger"
)

// application holds everything the router and the shutdown path need.
type application struct {
	config *config.Config

	db          *database.PostgresDB
	redis       *infraCache.RedisClient
	asynqClient *asynq.Client

	catalogHandler *catalogHandler.CatalogHandler
	couponHandler  *couponHandler.CouponHandler
	orderHandler   *orderHandler.OrderHandler
	paymentHandler *paymentHandler.PaymentHandler
}

func buildApplication() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger.Init(cfg.App.Environment)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.NewPostgresDB(&cfg.Database)
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("database connect: %w", err)
	}

	redisClient := infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Connect(ctx); err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	appCache := cache.NewRedisCache(redisClient.Client)

	// Repositories
	catalogRepository := catalogRepo.NewPostgresCatalogRepository(db.Pool)
	couponRepository := couponRepo.NewPostgresCouponRepository(db.Pool)
	orderRepository := orderRepo.NewPostgresOrderRepository(db.Pool)

	// Services
	catalogSvc := catalogService.NewService(catalogRepository, appCache)
	couponSvc := couponService.NewService(couponRepository)
	orderSvc := orderService.NewOrderService(orderRepository, catalogSvc, couponSvc, asynqClient, cfg.Order.TxTimeout)

	var paymentSvc paymentService.ServiceInterface
	if cfg.VNPay.TmnCode != "" {
		vnpayClient, err := vnpay.NewClient(vnpay.NewConfig(
			cfg.VNPay.TmnCode,
			cfg.VNPay.HashSecret,
			cfg.VNPay.APIURL,
			cfg.VNPay.ReturnURL,
		))
		if err != nil {
			return nil, fmt.Errorf("vnpay init: %w", err)
		}
		paymentSvc = paymentService.NewPaymentService(orderRepository, orderSvc, vnpayClient)
	}

	app := &application{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		asynqClient:    asynqClient,
		catalogHandler: catalogHandler.NewHandler(catalogSvc),
		couponHandler:  couponHandler.NewHandler(couponSvc),
		orderHandler:   orderHandler.NewHandler(orderSvc),
	}
	if paymentSvc != nil {
		app.paymentHandler = paymentHandler.NewHandler(paymentSvc)
	}

	return app, nil
}

func (app *application) cleanup() {
	if app.asynqClient != nil {
		if err := app.asynqClient.Close(); err != nil {
			logger.Error("failed to close asynq client", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			logger.Error("failed to close redis", err)
		}
	}
	if app.db != nil {
		app.db.Close()
	}
}

func Serve() {
	app, err := buildApplication()
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	defer app.cleanup()

	router := SetupRouter(app)

	port := app.config.App.Port
	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", port),
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info("server starting", map[string]interface{}{
			"port":        port,
			"environment": app.config.App.Environment,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", err)
	}

	logger.Info("server exited", nil)
}
