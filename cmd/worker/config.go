package main

import (
	"context"
	"fmt"
	"time"

	"shop-backend/internal/config"
	"shop-backend/internal/infrastructure/database"
	"shop-backend/pkg/logger"
)

// workerDeps holds the shared infrastructure the job handlers use.
type workerDeps struct {
	db *database.PostgresDB
}

func (d *workerDeps) cleanup() {
	if d.db != nil {
		d.db.Close()
	}
}

func loadWorkerConfig() (*config.Config, *workerDeps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger.Init(cfg.App.Environment)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.NewPostgresDB(&cfg.Database)
	if err := db.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("database connect: %w", err)
	}

	logger.Info("worker configuration loaded", map[string]interface{}{
		"redis": cfg.Redis.Host,
		"smtp":  cfg.Email.SMTPHost + ":" + cfg.Email.SMTPPort,
	})

	return cfg, &workerDeps{db: db}, nil
}
