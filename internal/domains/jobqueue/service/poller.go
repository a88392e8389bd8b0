package service

import (
	"context"
	"fmt"
	"sort"

	"pressline-backend/internal/domains/jobqueue/model"
	"pressline-backend/pkg/logger"
)

// Executor runs one claimed job. Implementations never update job status
// themselves; the poller reports the outcome.
type Executor interface {
	JobType() string
	Execute(ctx context.Context, job *model.Job) Outcome
}

// Poller drains the durable queue one job at a time. Each polling cycle
// claims and executes until the queue is empty for the registered types.
type Poller struct {
	queue     QueueInterface
	executors map[string]Executor
}

func NewPoller(queue QueueInterface, executors ...Executor) *Poller {
	byType := make(map[string]Executor, len(executors))
	for _, e := range executors {
		byType[e.JobType()] = e
	}
	return &Poller{queue: queue, executors: byType}
}

func (p *Poller) types() []string {
	types := make([]string, 0, len(p.executors))
	for t := range p.executors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// RunCycle processes queued jobs until the queue is empty or the context is
// done. Returns how many jobs were executed.
func (p *Poller) RunCycle(ctx context.Context) (int, error) {
	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		job, err := p.queue.ClaimNext(ctx, p.types())
		if err != nil {
			return processed, fmt.Errorf("claim next job: %w", err)
		}
		if job == nil {
			return processed, nil
		}

		executor, ok := p.executors[job.Type]
		if !ok {
			// Claimed under our type list, so this is a registry bug.
			p.complete(ctx, job, Outcome{Success: false, Detail: "no executor registered for " + job.Type})
			processed++
			continue
		}

		outcome := executor.Execute(ctx, job)
		p.complete(ctx, job, outcome)
		processed++
	}
}

func (p *Poller) complete(ctx context.Context, job *model.Job, outcome Outcome) {
	if err := p.queue.Complete(ctx, job.ID, outcome); err != nil {
		// The job stays processing; the stale report will surface it.
		logger.Error("failed to record job outcome", err)
		return
	}
	if !outcome.Success {
		logger.Warn("job failed", map[string]interface{}{
			"job_id": job.ID.String(),
			"type":   job.Type,
			"detail": outcome.Detail,
		})
	}
}
