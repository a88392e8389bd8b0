package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pressline-backend/internal/config"
	"pressline-backend/internal/domains/campaign/model"
	domainModel "pressline-backend/internal/domains/domain/model"
	genModel "pressline-backend/internal/domains/generation/model"
	jobModel "pressline-backend/internal/domains/jobqueue/model"
	jobService "pressline-backend/internal/domains/jobqueue/service"
	pubModel "pressline-backend/internal/domains/publication/model"
	pubService "pressline-backend/internal/domains/publication/service"
	"pressline-backend/internal/shared"
)

// ------------------------------------------------
// fakes
// ------------------------------------------------

type fakeCampaignRepo struct {
	campaigns map[uuid.UUID]*model.Campaign

	markFailedCalls int
	exhaustionCalls int
	transitionErr   error
}

func newFakeCampaignRepo(campaigns ...*model.Campaign) *fakeCampaignRepo {
	r := &fakeCampaignRepo{campaigns: make(map[uuid.UUID]*model.Campaign)}
	for _, c := range campaigns {
		r.campaigns[c.ID] = c
	}
	return r
}

func (r *fakeCampaignRepo) Create(ctx context.Context, c *model.Campaign) (*model.Campaign, error) {
	c.ID = uuid.New()
	c.Status = model.StatusPending
	c.CreatedAt = time.Now()
	r.campaigns[c.ID] = c
	return c, nil
}

func (r *fakeCampaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	return r.campaigns[id], nil
}

func (r *fakeCampaignRepo) List(ctx context.Context, status string, limit, offset int) ([]model.Campaign, int64, error) {
	out := make([]model.Campaign, 0)
	for _, c := range r.campaigns {
		if status == "" || string(c.Status) == status {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeCampaignRepo) MarkActive(ctx context.Context, id uuid.UUID) error {
	if r.transitionErr != nil {
		return r.transitionErr
	}
	c := r.campaigns[id]
	c.Status = model.StatusActive
	if c.StartedAt == nil {
		now := time.Now()
		c.StartedAt = &now
	}
	return nil
}

func (r *fakeCampaignRepo) Pause(ctx context.Context, id uuid.UUID) error {
	c, ok := r.campaigns[id]
	if !ok {
		return model.ErrCampaignNotFound
	}
	if c.Status != model.StatusPending && c.Status != model.StatusActive {
		return model.ErrInvalidTransition
	}
	c.Status = model.StatusPaused
	return nil
}

func (r *fakeCampaignRepo) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	if r.transitionErr != nil {
		return r.transitionErr
	}
	c := r.campaigns[id]
	c.Status = model.StatusCompleted
	now := time.Now()
	c.CompletedAt = &now
	return nil
}

func (r *fakeCampaignRepo) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, summary string) error {
	r.markFailedCalls++
	c := r.campaigns[id]
	c.Status = model.StatusFailed
	c.ExhaustedAttempts = attempts
	c.FailureSummary = summary
	return nil
}

func (r *fakeCampaignRepo) RecordExhaustion(ctx context.Context, id uuid.UUID, attempts int, summary string) error {
	r.exhaustionCalls++
	c := r.campaigns[id]
	c.ExhaustedAttempts = attempts
	c.FailureSummary = summary
	return nil
}

func (r *fakeCampaignRepo) ListStalled(ctx context.Context, updatedBefore time.Time, limit int) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	for _, c := range r.campaigns {
		if c.Status == model.StatusActive && c.UpdatedAt.Before(updatedBefore) {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

type fakeDomains struct {
	domain *domainModel.Domain
}

func (f *fakeDomains) Register(ctx context.Context, accountID uuid.UUID, req *domainModel.RegisterDomainRequest) (*domainModel.Domain, error) {
	return f.domain, nil
}

func (f *fakeDomains) GetDomain(ctx context.Context, id uuid.UUID) (*domainModel.Domain, error) {
	if f.domain == nil {
		return nil, domainModel.ErrDomainNotFound
	}
	return f.domain, nil
}

func (f *fakeDomains) List(ctx context.Context, page, pageSize int) ([]*domainModel.Domain, error) {
	return nil, nil
}
func (f *fakeDomains) SetTheme(ctx context.Context, id uuid.UUID, themeKey string) error { return nil }
func (f *fakeDomains) Disable(ctx context.Context, id uuid.UUID) error                   { return nil }

type fakeOrchestrator struct {
	result *genModel.Result
	err    error
	calls  int
}

func (f *fakeOrchestrator) Generate(ctx context.Context, brief *genModel.Brief) (*genModel.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeWriter persists into the shared fakePublications store so a written
// draft is visible to the finalize step, like the real repository.
type fakeWriter struct {
	store    *fakePublications
	requests []*pubService.PublishRequest
	err      error
}

func (f *fakeWriter) Publish(ctx context.Context, req *pubService.PublishRequest) (*pubModel.Publication, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	pub := &pubModel.Publication{
		ID:         uuid.New(),
		DomainID:   req.Domain.ID,
		CampaignID: req.CampaignID,
		Slug:       "minimal/x",
		Title:      req.Title,
		Body:       req.Body,
		PublicURL:  req.Domain.PublicURL("minimal/x"),
		Status:     req.Status,
	}
	f.store.add(pub)
	return pub, nil
}

type fakePublications struct {
	all              []*pubModel.Publication
	findErr          error
	markPublishedErr error

	markPublishedCalls int
}

func (f *fakePublications) add(pub *pubModel.Publication) {
	f.all = append(f.all, pub)
}

func (f *fakePublications) FindByCampaign(ctx context.Context, campaignID uuid.UUID) (*pubModel.Publication, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, p := range f.all {
		if p.CampaignID != nil && *p.CampaignID == campaignID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePublications) MarkPublished(ctx context.Context, id uuid.UUID) (*pubModel.Publication, error) {
	f.markPublishedCalls++
	if f.markPublishedErr != nil {
		return nil, f.markPublishedErr
	}
	for _, p := range f.all {
		if p.ID == id {
			p.Status = pubModel.StatusPublished
			now := time.Now()
			p.PublishedAt = &now
			return p, nil
		}
	}
	return nil, pubModel.ErrPublicationNotFound
}

type fakeQueue struct {
	enqueued []string             // job types in order
	byKey    map[string]uuid.UUID // dedupe key -> job id
	err      error
}

func (f *fakeQueue) Enqueue(ctx context.Context, jobType string, payload interface{}) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.enqueued = append(f.enqueued, jobType)
	return uuid.New(), nil
}

func (f *fakeQueue) EnqueueOnce(ctx context.Context, jobType, dedupeKey string, payload interface{}) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	if f.byKey == nil {
		f.byKey = make(map[string]uuid.UUID)
	}
	if id, ok := f.byKey[dedupeKey]; ok {
		return id, nil
	}
	id := uuid.New()
	f.byKey[dedupeKey] = id
	f.enqueued = append(f.enqueued, jobType)
	return id, nil
}

func (f *fakeQueue) ClaimNext(ctx context.Context, types []string) (*jobModel.Job, error) {
	return nil, nil
}
func (f *fakeQueue) Complete(ctx context.Context, jobID uuid.UUID, outcome jobService.Outcome) error {
	return nil
}
func (f *fakeQueue) Get(ctx context.Context, jobID uuid.UUID) (*jobModel.Job, error) {
	return nil, nil
}
func (f *fakeQueue) List(ctx context.Context, status jobModel.JobStatus, page, pageSize int) ([]*jobModel.Job, error) {
	return nil, nil
}
func (f *fakeQueue) ReclaimStale(ctx context.Context, olderThan time.Duration) (int, error) {
	return 0, nil
}

type fakeDispatcher struct {
	dispatched []uuid.UUID
}

func (f *fakeDispatcher) EnqueueRunCampaign(ctx context.Context, campaignID uuid.UUID) error {
	f.dispatched = append(f.dispatched, campaignID)
	return nil
}

// ------------------------------------------------
// fixture
// ------------------------------------------------

type fixture struct {
	repo         *fakeCampaignRepo
	domains      *fakeDomains
	orchestrator *fakeOrchestrator
	writer       *fakeWriter
	pubs         *fakePublications
	queue        *fakeQueue
	dispatcher   *fakeDispatcher
	svc          ServiceInterface
}

func pipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		WordTarget:          800,
		MinLengthRatio:      0.5,
		MaxExhaustedResumes: 3,
		SweepStalledAfter:   15 * time.Minute,
	}
}

func goodResult() *genModel.Result {
	return &genModel.Result{
		Content:      "The X Guide\nplenty of generated body text",
		ProviderUsed: "openai",
		Cost:         decimal.NewFromFloat(0.002),
	}
}

func newFixture(campaigns ...*model.Campaign) *fixture {
	f := &fixture{
		repo: newFakeCampaignRepo(campaigns...),
		domains: &fakeDomains{domain: &domainModel.Domain{
			ID:       uuid.New(),
			Hostname: "example.test",
			ThemeKey: "minimal",
			IsActive: true,
		}},
		orchestrator: &fakeOrchestrator{result: goodResult()},
		pubs:         &fakePublications{},
		queue:        &fakeQueue{},
		dispatcher:   &fakeDispatcher{},
	}
	f.writer = &fakeWriter{store: f.pubs}
	f.svc = NewCampaignService(f.repo, f.domains, f.orchestrator, f.writer, f.pubs, f.queue, f.dispatcher, pipelineConfig())
	return f
}

func pendingCampaign() *model.Campaign {
	return &model.Campaign{
		ID:         uuid.New(),
		AccountID:  uuid.New(),
		DomainID:   uuid.New(),
		Keyword:    "x",
		AnchorText: "click here",
		TargetURL:  "https://target.example",
		Status:     model.StatusPending,
	}
}

// ------------------------------------------------
// tests
// ------------------------------------------------

func TestResume_HappyPathRunsFullPipeline(t *testing.T) {
	campaign := pendingCampaign()
	f := newFixture(campaign)

	require.NoError(t, f.svc.Resume(context.Background(), campaign.ID))

	assert.Equal(t, 1, f.orchestrator.calls)
	require.Len(t, f.writer.requests, 1)
	req := f.writer.requests[0]
	assert.Equal(t, "x", req.SlugCandidate, "campaign keyword is the slug candidate")
	assert.Equal(t, pubModel.StatusDraft, req.Status, "pipeline writes a draft before finalizing")
	assert.Equal(t, &campaign.ID, req.CampaignID)
	assert.Equal(t, "The X Guide", req.Title)

	assert.Equal(t, []string{shared.JobTypePostComment}, f.queue.enqueued)
	assert.Equal(t, model.StatusCompleted, campaign.Status)
	assert.NotNil(t, campaign.StartedAt)
}

func TestResume_ExistingDraftSkipsGeneration(t *testing.T) {
	campaign := pendingCampaign()
	f := newFixture(campaign)

	f.pubs.add(&pubModel.Publication{
		ID:         uuid.New(),
		CampaignID: &campaign.ID,
		Slug:       "minimal/x",
		PublicURL:  "https://example.test/minimal/x",
		Status:     pubModel.StatusDraft,
	})

	require.NoError(t, f.svc.Resume(context.Background(), campaign.ID))

	assert.Equal(t, 0, f.orchestrator.calls, "resume must not regenerate an existing draft")
	assert.Empty(t, f.writer.requests)
	assert.Equal(t, 1, f.pubs.markPublishedCalls)
	assert.Equal(t, []string{shared.JobTypePostComment}, f.queue.enqueued)
	assert.Equal(t, model.StatusCompleted, campaign.Status)
}

func TestResume_AlreadyPublishedOnlyCompletes(t *testing.T) {
	campaign := pendingCampaign()
	f := newFixture(campaign)

	now := time.Now()
	f.pubs.add(&pubModel.Publication{
		ID:          uuid.New(),
		CampaignID:  &campaign.ID,
		Status:      pubModel.StatusPublished,
		PublishedAt: &now,
	})

	require.NoError(t, f.svc.Resume(context.Background(), campaign.ID))

	assert.Equal(t, 0, f.orchestrator.calls)
	assert.Equal(t, 0, f.pubs.markPublishedCalls)
	assert.Empty(t, f.queue.enqueued, "no second comment job for an already-published article")
	assert.Equal(t, model.StatusCompleted, campaign.Status)
}

func TestResume_PausedCampaignStaysPaused(t *testing.T) {
	campaign := pendingCampaign()
	campaign.Status = model.StatusPaused
	f := newFixture(campaign)

	// A stale or retried run task landing after an operator pause must not
	// un-pause the campaign and drive it to completion.
	require.NoError(t, f.svc.Resume(context.Background(), campaign.ID))

	assert.Equal(t, model.StatusPaused, campaign.Status, "paused campaign must stay paused")
	assert.Equal(t, 0, f.orchestrator.calls)
	assert.Empty(t, f.writer.requests)
	assert.Empty(t, f.queue.enqueued)
}

func TestResume_TerminalCampaignIsNoop(t *testing.T) {
	campaign := pendingCampaign()
	campaign.Status = model.StatusCompleted
	f := newFixture(campaign)

	require.NoError(t, f.svc.Resume(context.Background(), campaign.ID))
	assert.Equal(t, 0, f.orchestrator.calls)
}

func TestResume_UnknownCampaign(t *testing.T) {
	f := newFixture()
	err := f.svc.Resume(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrCampaignNotFound)
}

func TestResume_ExhaustionBelowBudgetKeepsCampaignActive(t *testing.T) {
	campaign := pendingCampaign()
	f := newFixture(campaign)
	f.orchestrator.err = &genModel.ExhaustedError{Attempts: []genModel.Attempt{
		{ProviderID: "openai", Outcome: genModel.OutcomeTimeout},
		{ProviderID: "gemini", Outcome: genModel.OutcomeRateLimited},
	}}

	err := f.svc.Resume(context.Background(), campaign.ID)
	require.Error(t, err)

	assert.Equal(t, model.StatusActive, campaign.Status, "below budget the campaign stays resumable")
	assert.Equal(t, 1, campaign.ExhaustedAttempts)
	assert.Contains(t, campaign.FailureSummary, "openai: timeout")
	assert.Equal(t, 1, f.repo.exhaustionCalls)
	assert.Equal(t, 0, f.repo.markFailedCalls)
}

func TestResume_ExhaustionAtBudgetFailsCampaign(t *testing.T) {
	campaign := pendingCampaign()
	campaign.ExhaustedAttempts = 2 // budget is 3
	f := newFixture(campaign)
	f.orchestrator.err = &genModel.ExhaustedError{Attempts: []genModel.Attempt{
		{ProviderID: "openai", Outcome: genModel.OutcomeError, Detail: "500"},
	}}

	err := f.svc.Resume(context.Background(), campaign.ID)
	require.Error(t, err)

	assert.Equal(t, model.StatusFailed, campaign.Status)
	assert.Equal(t, 3, campaign.ExhaustedAttempts)
	assert.NotEmpty(t, campaign.FailureSummary, "operators must see which providers were tried")
	assert.Equal(t, 1, f.repo.markFailedCalls)
}

func TestResume_TransientStoreErrorLeavesStatus(t *testing.T) {
	campaign := pendingCampaign()
	f := newFixture(campaign)
	f.pubs.findErr = errors.New("connection refused")

	err := f.svc.Resume(context.Background(), campaign.ID)
	require.Error(t, err)

	assert.NotEqual(t, model.StatusFailed, campaign.Status, "store errors never fail a campaign")
	assert.Equal(t, 0, f.repo.markFailedCalls)
	assert.Equal(t, 0, f.repo.exhaustionCalls)
}

func TestResume_WriterErrorLeavesCampaignActive(t *testing.T) {
	campaign := pendingCampaign()
	f := newFixture(campaign)
	f.writer.err = pubModel.ErrSlugConflict

	err := f.svc.Resume(context.Background(), campaign.ID)
	require.Error(t, err)

	assert.Equal(t, model.StatusActive, campaign.Status)
	assert.Empty(t, f.queue.enqueued)
}

func TestResume_RetriedFinalizeDoesNotDuplicateCommentJob(t *testing.T) {
	campaign := pendingCampaign()
	f := newFixture(campaign)

	f.pubs.add(&pubModel.Publication{
		ID:         uuid.New(),
		CampaignID: &campaign.ID,
		Slug:       "minimal/x",
		PublicURL:  "https://example.test/minimal/x",
		Status:     pubModel.StatusDraft,
	})

	// First pass dies between the comment enqueue and the publish flip.
	f.pubs.markPublishedErr = errors.New("connection reset")
	require.Error(t, f.svc.Resume(context.Background(), campaign.ID))
	assert.Equal(t, []string{shared.JobTypePostComment}, f.queue.enqueued)

	// Next pass still sees a draft and re-runs finalize; the dedupe key
	// makes the second enqueue a no-op.
	f.pubs.markPublishedErr = nil
	require.NoError(t, f.svc.Resume(context.Background(), campaign.ID))

	assert.Equal(t, []string{shared.JobTypePostComment}, f.queue.enqueued, "exactly one comment job across both passes")
	assert.Equal(t, model.StatusCompleted, campaign.Status)
}

func TestResume_EnqueueFailureLeavesDraftUnpublished(t *testing.T) {
	campaign := pendingCampaign()
	f := newFixture(campaign)

	f.pubs.add(&pubModel.Publication{
		ID:         uuid.New(),
		CampaignID: &campaign.ID,
		Status:     pubModel.StatusDraft,
	})
	f.queue.err = errors.New("connection refused")

	err := f.svc.Resume(context.Background(), campaign.ID)
	require.Error(t, err)

	assert.Equal(t, 0, f.pubs.markPublishedCalls, "the draft is not published until its comment job is durable")
	assert.NotEqual(t, model.StatusCompleted, campaign.Status)
}

func TestRequestResume_ReactivatesPausedAndDispatches(t *testing.T) {
	campaign := pendingCampaign()
	campaign.Status = model.StatusPaused
	f := newFixture(campaign)

	require.NoError(t, f.svc.RequestResume(context.Background(), campaign.ID))

	assert.Equal(t, model.StatusActive, campaign.Status, "operator resume is the only way out of paused")
	assert.Equal(t, []uuid.UUID{campaign.ID}, f.dispatcher.dispatched)
}

func TestRequestResume_TerminalCampaignRejected(t *testing.T) {
	campaign := pendingCampaign()
	campaign.Status = model.StatusFailed
	f := newFixture(campaign)

	err := f.svc.RequestResume(context.Background(), campaign.ID)
	assert.ErrorIs(t, err, model.ErrCampaignTerminal)
	assert.Empty(t, f.dispatcher.dispatched)
}

func TestSweepStalled_RedispatchesOldActiveCampaigns(t *testing.T) {
	stalled := pendingCampaign()
	stalled.Status = model.StatusActive
	stalled.UpdatedAt = time.Now().Add(-time.Hour)

	fresh := pendingCampaign()
	fresh.Status = model.StatusActive
	fresh.UpdatedAt = time.Now()

	f := newFixture(stalled, fresh)

	count, err := f.svc.SweepStalled(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []uuid.UUID{stalled.ID}, f.dispatcher.dispatched)
}

func TestCreate_ValidatesAndDispatches(t *testing.T) {
	f := newFixture()

	campaign, err := f.svc.Create(context.Background(), uuid.New(), &model.CreateCampaignRequest{
		DomainID:   uuid.New().String(),
		Keyword:    "x",
		AnchorText: "click here",
		TargetURL:  "https://target.example",
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, campaign.Status)
	assert.Equal(t, []uuid.UUID{campaign.ID}, f.dispatcher.dispatched)
}

func TestCreate_RejectsBadInput(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), uuid.New(), &model.CreateCampaignRequest{
		DomainID:  "not-a-uuid",
		Keyword:   "x",
		TargetURL: "https://target.example",
	})
	require.Error(t, err)
	assert.Empty(t, f.dispatcher.dispatched)
}
