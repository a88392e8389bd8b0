package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"pressline-backend/internal/config"
	"pressline-backend/internal/domains/campaign/model"
	"pressline-backend/internal/domains/campaign/repository"
	domainModel "pressline-backend/internal/domains/domain/model"
	domainService "pressline-backend/internal/domains/domain/service"
	genModel "pressline-backend/internal/domains/generation/model"
	genService "pressline-backend/internal/domains/generation/service"
	jobService "pressline-backend/internal/domains/jobqueue/service"
	pubModel "pressline-backend/internal/domains/publication/model"
	pubService "pressline-backend/internal/domains/publication/service"
	"pressline-backend/internal/shared"
	"pressline-backend/pkg/logger"
)

type CampaignService struct {
	repo         repository.CampaignRepositoryInterface
	domains      domainService.ServiceInterface
	orchestrator genService.Orchestrator
	writer       pubService.Writer
	publications pubRepoReader
	jobs         jobService.QueueInterface
	dispatcher   Dispatcher
	pipeline     config.PipelineConfig
}

// pubRepoReader is the slice of the publication repository the resume pass
// needs: find what a campaign already produced, and finalize drafts.
type pubRepoReader interface {
	FindByCampaign(ctx context.Context, campaignID uuid.UUID) (*pubModel.Publication, error)
	MarkPublished(ctx context.Context, id uuid.UUID) (*pubModel.Publication, error)
}

func NewCampaignService(
	repo repository.CampaignRepositoryInterface,
	domains domainService.ServiceInterface,
	orchestrator genService.Orchestrator,
	writer pubService.Writer,
	publications pubRepoReader,
	jobs jobService.QueueInterface,
	dispatcher Dispatcher,
	pipeline config.PipelineConfig,
) ServiceInterface {
	return &CampaignService{
		repo:         repo,
		domains:      domains,
		orchestrator: orchestrator,
		writer:       writer,
		publications: publications,
		jobs:         jobs,
		dispatcher:   dispatcher,
		pipeline:     pipeline,
	}
}

func (s *CampaignService) Create(ctx context.Context, accountID uuid.UUID, req *model.CreateCampaignRequest) (*model.Campaign, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.DomainID, validation.Required, is.UUIDv4),
		validation.Field(&req.Keyword, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.AnchorText, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.TargetURL, validation.Required, is.URL),
	); err != nil {
		return nil, err
	}

	domainID, err := uuid.Parse(req.DomainID)
	if err != nil {
		return nil, fmt.Errorf("invalid domain id: %w", err)
	}

	// Fail fast on unknown or disabled domains instead of at publish time.
	if _, err := s.domains.GetDomain(ctx, domainID); err != nil {
		return nil, err
	}

	campaign, err := s.repo.Create(ctx, &model.Campaign{
		AccountID:  accountID,
		DomainID:   domainID,
		Keyword:    req.Keyword,
		AnchorText: req.AnchorText,
		TargetURL:  req.TargetURL,
	})
	if err != nil {
		return nil, model.NewPipelineError(err)
	}

	if err := s.dispatcher.EnqueueRunCampaign(ctx, campaign.ID); err != nil {
		// The campaign row exists either way; the recovery sweep or an
		// operator resume will pick it up.
		logger.Error("failed to dispatch campaign run", err)
	}

	return campaign, nil
}

func (s *CampaignService) Get(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	campaign, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, model.NewPipelineError(err)
	}
	if campaign == nil {
		return nil, model.ErrCampaignNotFound
	}
	return campaign, nil
}

func (s *CampaignService) List(ctx context.Context, status string, page, pageSize int) ([]model.Campaign, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	campaigns, total, err := s.repo.List(ctx, status, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, model.NewPipelineError(err)
	}
	return campaigns, total, nil
}

func (s *CampaignService) Pause(ctx context.Context, id uuid.UUID) error {
	return s.repo.Pause(ctx, id)
}

func (s *CampaignService) RequestResume(ctx context.Context, id uuid.UUID) error {
	campaign, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if campaign.Status.IsTerminal() {
		return model.ErrCampaignTerminal
	}
	// Un-pausing is an operator decision, so it happens here and never
	// inside the worker pass itself.
	if campaign.Status == model.StatusPaused {
		if err := s.repo.MarkActive(ctx, id); err != nil {
			return err
		}
	}
	if err := s.dispatcher.EnqueueRunCampaign(ctx, id); err != nil {
		return model.NewPipelineError(err)
	}
	return nil
}

// Resume is the single pipeline pass. Every step is checkpointed in the
// store, so a crash anywhere leaves a state the next pass picks up from:
//
//	no publication  -> generate, write draft
//	draft exists    -> finalize (publish + enqueue comment job)
//	published       -> mark the campaign completed
//
// Transient store errors return without touching campaign status, so the
// campaign stays resumable. Only provider exhaustion past the configured
// budget moves a campaign to failed. Paused campaigns drop the task
// untouched - the detour back to active is operator-driven.
func (s *CampaignService) Resume(ctx context.Context, id uuid.UUID) error {
	campaign, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return model.NewPipelineError(err)
	}
	if campaign == nil {
		return model.ErrCampaignNotFound
	}
	if campaign.Status.IsTerminal() {
		// Re-delivered task for a finished campaign; nothing to do.
		return nil
	}
	if campaign.Status == model.StatusPaused {
		// The operator paused after this task was enqueued (or asynq is
		// retrying an older delivery). The pause wins - only RequestResume
		// re-activates a paused campaign.
		logger.Info("dropping run task for paused campaign", map[string]interface{}{
			"campaign_id": campaign.ID.String(),
		})
		return nil
	}

	if campaign.Status == model.StatusPending {
		if err := s.repo.MarkActive(ctx, id); err != nil {
			return err
		}
		campaign.Status = model.StatusActive
	}

	domain, err := s.domains.GetDomain(ctx, campaign.DomainID)
	if err != nil {
		return err
	}

	pub, err := s.publications.FindByCampaign(ctx, campaign.ID)
	if err != nil {
		return model.NewPipelineError(err)
	}

	if pub == nil {
		pub, err = s.generateAndWrite(ctx, campaign, domain)
		if err != nil {
			return err
		}
	}

	if pub.Status == pubModel.StatusDraft {
		pub, err = s.finalize(ctx, campaign, pub)
		if err != nil {
			return err
		}
	}

	if err := s.repo.MarkCompleted(ctx, id); err != nil {
		return err
	}
	logger.Info("campaign completed", map[string]interface{}{
		"campaign_id":    campaign.ID.String(),
		"publication_id": pub.ID.String(),
		"public_url":     pub.PublicURL,
	})
	return nil
}

// generateAndWrite runs the generation step and persists the result as a
// draft. Exhaustion is where the campaign failure budget is enforced.
func (s *CampaignService) generateAndWrite(ctx context.Context, campaign *model.Campaign, domain *domainModel.Domain) (*pubModel.Publication, error) {
	brief := &genModel.Brief{
		Keyword:    campaign.Keyword,
		AnchorText: campaign.AnchorText,
		TargetURL:  campaign.TargetURL,
		WordTarget: s.pipeline.WordTarget,
	}

	result, err := s.orchestrator.Generate(ctx, brief)
	if err != nil {
		var exhausted *genModel.ExhaustedError
		if errors.As(err, &exhausted) {
			return nil, s.recordExhaustion(ctx, campaign, exhausted)
		}
		return nil, model.NewPipelineError(err)
	}

	title, body := result.Title()
	if title == "" {
		title = campaign.Keyword
	}

	pub, err := s.writer.Publish(ctx, &pubService.PublishRequest{
		Domain:        domain,
		CampaignID:    &campaign.ID,
		SlugCandidate: campaign.Keyword,
		Title:         title,
		Body:          body,
		Status:        pubModel.StatusDraft,
		Spend:         result.Cost,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("campaign draft written", map[string]interface{}{
		"campaign_id": campaign.ID.String(),
		"slug":        pub.Slug,
		"provider":    result.ProviderUsed,
	})
	return pub, nil
}

// recordExhaustion counts the failed pass against the campaign budget.
// Below the budget the campaign stays active for the next resume; at the
// budget it is the one place the pipeline ever sets failed.
func (s *CampaignService) recordExhaustion(ctx context.Context, campaign *model.Campaign, exhausted *genModel.ExhaustedError) error {
	attempts := campaign.ExhaustedAttempts + 1
	summary := exhausted.Summary()

	if attempts >= s.pipeline.MaxExhaustedResumes {
		if err := s.repo.MarkFailed(ctx, campaign.ID, attempts, summary); err != nil {
			return err
		}
		logger.Error("campaign failed after repeated provider exhaustion", exhausted)
		return model.ErrCampaignExhausted
	}

	if err := s.repo.RecordExhaustion(ctx, campaign.ID, attempts, summary); err != nil {
		return err
	}
	logger.Warn("campaign pass exhausted all providers", map[string]interface{}{
		"campaign_id": campaign.ID.String(),
		"attempts":    attempts,
		"summary":     summary,
	})
	return model.ErrCampaignExhausted
}

// finalize emits the follow-up comment job, then flips the draft to
// published. The job goes first: a crash in between leaves a draft, so the
// next pass re-runs this step, and the dedupe key turns the re-enqueue into
// a no-op instead of a second comment.
func (s *CampaignService) finalize(ctx context.Context, campaign *model.Campaign, pub *pubModel.Publication) (*pubModel.Publication, error) {
	jobID, err := s.jobs.EnqueueOnce(ctx, shared.JobTypePostComment, commentDedupeKey(pub.ID), shared.PostCommentPayload{
		PublicationID: pub.ID,
		PublicURL:     pub.PublicURL,
		AnchorText:    campaign.AnchorText,
		TargetURL:     campaign.TargetURL,
	})
	if err != nil {
		// Transient store error; the draft survives and the next pass
		// retries the whole finalize step.
		return nil, model.NewPipelineError(err)
	}
	logger.Info("comment job enqueued", map[string]interface{}{
		"job_id":         jobID.String(),
		"publication_id": pub.ID.String(),
	})

	published, err := s.publications.MarkPublished(ctx, pub.ID)
	if err != nil {
		return nil, model.NewPipelineError(err)
	}
	return published, nil
}

func commentDedupeKey(publicationID uuid.UUID) string {
	return shared.JobTypePostComment + ":" + publicationID.String()
}

func (s *CampaignService) SweepStalled(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.pipeline.SweepStalledAfter)
	ids, err := s.repo.ListStalled(ctx, cutoff, 100)
	if err != nil {
		return 0, model.NewPipelineError(err)
	}

	requeued := 0
	for _, id := range ids {
		if err := s.dispatcher.EnqueueRunCampaign(ctx, id); err != nil {
			logger.Error("failed to re-dispatch stalled campaign", err)
			continue
		}
		requeued++
	}
	if requeued > 0 {
		logger.Warn("recovery sweep re-dispatched stalled campaigns", map[string]interface{}{
			"count": requeued,
		})
	}
	return requeued, nil
}
