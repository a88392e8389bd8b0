package queue

import (
	"time"

	"github.com/hibiken/asynq"

	"pressline-backend/internal/config"
	"pressline-backend/internal/shared"
	"pressline-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	pipeline  config.PipelineConfig
}

func NewScheduler(redisAddress, redisPassword string, redisDB int, pipeline config.PipelineConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress, Password: redisPassword, DB: redisDB},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		pipeline:  pipeline,
	}
}

func (s *Scheduler) RegisterMaintenanceJobs() error {
	if err := s.registerJobQueuePoll(); err != nil {
		return err
	}
	if err := s.registerSweepStalled(); err != nil {
		return err
	}
	if err := s.registerStaleJobReport(); err != nil {
		return err
	}
	return nil
}

// ================================================
// JOB 1: Poll Durable Job Queue (every 30 seconds)
// ================================================
// Each tick drains every queued job, so the interval only bounds how long a
// freshly enqueued job waits, not throughput.
func (s *Scheduler) registerJobQueuePoll() error {
	task := asynq.NewTask(shared.TypePollJobQueue, nil)

	_, err := s.scheduler.Register(
		"@every 30s",
		task,
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(0), // next tick is the retry
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register JobQueuePoll job", err)
		return err
	}

	logger.Info("✓ Registered JobQueuePoll: every 30 seconds", map[string]interface{}{})
	return nil
}

// ================================================
// JOB 2: Sweep Stalled Campaigns (every 5 minutes)
// ================================================
// Re-dispatches active campaigns with no progress past the configured
// threshold. The sweep only re-enqueues; the resume pass itself decides what
// still needs doing.
func (s *Scheduler) registerSweepStalled() error {
	task := asynq.NewTask(shared.TypeSweepStalled, nil)

	_, err := s.scheduler.Register(
		"*/5 * * * *",
		task,
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(1),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register SweepStalled job", err)
		return err
	}

	logger.Info("✓ Registered SweepStalled: every 5 minutes", map[string]interface{}{})
	return nil
}

// ================================================
// JOB 3: Stale Processing Jobs Report (every 10 minutes)
// ================================================
// Report only. Jobs stuck in processing are surfaced in logs and left for an
// operator reclaim, so a poison job cannot loop forever.
func (s *Scheduler) registerStaleJobReport() error {
	task := asynq.NewTask(shared.TypeStaleJobReport, nil)

	_, err := s.scheduler.Register(
		"*/10 * * * *",
		task,
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(1),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register StaleJobReport job", err)
		return err
	}

	logger.Info("✓ Registered StaleJobReport: every 10 minutes", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
