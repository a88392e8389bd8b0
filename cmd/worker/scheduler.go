package main

import (
	"log"

	"pressline-backend/internal/infrastructure/queue"
	"pressline-backend/pkg/container"
)

// asynqScheduler wraps queue.Scheduler with additional functionality
type asynqScheduler struct {
	*queue.Scheduler
}

// setupScheduler creates and configures the scheduler
func setupScheduler(cfg *Config, c *container.Container) *asynqScheduler {
	scheduler := queue.NewScheduler(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, c.Config.Pipeline)

	// Register cron jobs
	if err := scheduler.RegisterMaintenanceJobs(); err != nil {
		log.Fatalf("[Scheduler] Failed to register: %v", err)
	}

	// Start scheduler in goroutine
	go func() {
		log.Println("[Scheduler] Starting...")
		if err := scheduler.Start(); err != nil {
			log.Fatalf("[Scheduler] Failed: %v", err)
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

// Shutdown gracefully shuts down the scheduler
func (s *asynqScheduler) Shutdown() {
	log.Println("[Scheduler] Shutting down...")
	s.Scheduler.Shutdown()
	log.Println("[Scheduler] ✓ Stopped")
}
