package main

import (
	"github.com/hibiken/asynq"

	campaignJob "pressline-backend/internal/domains/campaign/job"
	jobqueueJob "pressline-backend/internal/domains/jobqueue/job"
	"pressline-backend/internal/shared"
	"pressline-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Campaign pipeline
	runCampaign  *campaignJob.RunCampaignHandler
	sweepStalled *campaignJob.SweepStalledHandler

	// Durable job queue maintenance
	pollJobQueue *jobqueueJob.PollHandler
	staleReport  *jobqueueJob.StaleReportHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		runCampaign:  campaignJob.NewRunCampaignHandler(c.CampaignService),
		sweepStalled: campaignJob.NewSweepStalledHandler(c.CampaignService),

		pollJobQueue: jobqueueJob.NewPollHandler(c.JobPoller),
		staleReport:  jobqueueJob.NewStaleReportHandler(c.JobQueue, c.Config.Pipeline.JobStaleAfter),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Campaign tasks
	mux.HandleFunc(shared.TypeRunCampaign, h.runCampaign.ProcessTask)
	mux.HandleFunc(shared.TypeSweepStalled, h.sweepStalled.ProcessTask)

	// Job queue maintenance tasks
	mux.HandleFunc(shared.TypePollJobQueue, h.pollJobQueue.ProcessTask)
	mux.HandleFunc(shared.TypeStaleJobReport, h.staleReport.ProcessTask)
}
