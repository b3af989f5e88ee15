package main

import (
	"log"

	"shop-backend/internal/config"
	"shop-backend/internal/infrastructure/queue"
	"shop-backend/pkg/logger"
)

type asynqScheduler struct {
	*queue.Scheduler
}

func setupScheduler(cfg *config.Config) *asynqScheduler {
	scheduler := queue.NewScheduler(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)

	if err := scheduler.RegisterJobs(); err != nil {
		log.Fatalf("scheduler registration failed: %v", err)
	}

	go func() {
		logger.Info("scheduler starting", nil)
		if err := scheduler.Start(); err != nil {
			log.Fatalf("scheduler failed: %v", err)
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

func (s *asynqScheduler) Shutdown() {
	s.Scheduler.Shutdown()
}
