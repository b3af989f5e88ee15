package queue

import (
	"time"

	"github.com/hibiken/asynq"

	"shop-backend/internal/shared"
	"shop-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddr, redisPassword string, redisDB int) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: redisPassword,
			DB:       redisDB,
		},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler}
}

// RegisterJobs wires every periodic task into the scheduler.
func (s *Scheduler) RegisterJobs() error {
	return s.registerExpireLapsedCouponsJob()
}

// ================================================
// JOB: Expire Lapsed Coupons (hourly)
// ================================================
// Coupons are also rejected at evaluation time when their window has
// closed; the sweep just keeps is_active honest for listings and admin
// views.
func (s *Scheduler) registerExpireLapsedCouponsJob() error {
	task := asynq.NewTask(shared.TypeExpireLapsedCoupons, nil)

	_, err := s.scheduler.Register(
		"0 * * * *", // hourly at minute 0
		task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("failed to register ExpireLapsedCoupons job", err)
		return err
	}

	logger.Info("registered ExpireLapsedCoupons: hourly", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
