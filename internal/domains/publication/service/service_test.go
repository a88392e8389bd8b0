package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pressline-backend/internal/domains/publication/model"
)

// fakeRepo is an in-memory stand-in for the publication store. It mimics the
// conditional-upsert semantics of the Postgres repository: a slug owned by a
// different campaign conflicts instead of being overwritten.
type fakeRepo struct {
	pubs   map[string]*model.Publication // slug -> row ("publications" table)
	legacy map[string]*model.SlugRow     // slug -> row ("legacy_articles" table)

	metrics    map[uuid.UUID]*model.DomainMetrics
	existsErr  error
	upsertErr  error
	slugWrites []string // slugs passed to UpdateSlug, in order

	// hiddenFromExists simulates a write race: these slugs look free to the
	// uniqueness check but conflict on upsert.
	hiddenFromExists map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		pubs:    make(map[string]*model.Publication),
		legacy:  make(map[string]*model.SlugRow),
		metrics: make(map[uuid.UUID]*model.DomainMetrics),
	}
}

func (f *fakeRepo) seed(pub *model.Publication) *model.Publication {
	if pub.ID == uuid.Nil {
		pub.ID = uuid.New()
	}
	f.pubs[pub.Slug] = pub
	return pub
}

func (f *fakeRepo) seedLegacy(domainID uuid.UUID, slug string) {
	f.legacy[slug] = &model.SlugRow{Table: "legacy_articles", ID: uuid.New(), DomainID: domainID, Slug: slug}
}

func (f *fakeRepo) ExistsByKey(ctx context.Context, domainID uuid.UUID, slug string, excludeID uuid.UUID) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	if f.hiddenFromExists[slug] {
		return false, nil
	}
	if p, ok := f.pubs[slug]; ok && p.DomainID == domainID && p.ID != excludeID {
		return true, nil
	}
	if r, ok := f.legacy[slug]; ok && r.DomainID == domainID && r.ID != excludeID {
		return true, nil
	}
	return false, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Publication, error) {
	for _, p := range f.pubs {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetByKey(ctx context.Context, domainID uuid.UUID, slug string) (*model.Publication, error) {
	if p, ok := f.pubs[slug]; ok && p.DomainID == domainID {
		return p, nil
	}
	return nil, nil
}

func (f *fakeRepo) FindByCampaign(ctx context.Context, campaignID uuid.UUID) (*model.Publication, error) {
	for _, p := range f.pubs {
		if p.CampaignID != nil && *p.CampaignID == campaignID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) Upsert(ctx context.Context, pub *model.Publication, spend decimal.Decimal) (*model.Publication, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}

	existing, ok := f.pubs[pub.Slug]
	if ok && existing.DomainID == pub.DomainID {
		if !sameCampaign(existing.CampaignID, pub.CampaignID) {
			return nil, model.ErrSlugConflict
		}
		pub.ID = existing.ID
		f.pubs[pub.Slug] = pub
		f.bumpMetrics(pub.DomainID, false, spend)
		return pub, nil
	}
	if _, taken := f.legacy[pub.Slug]; taken {
		return nil, model.ErrSlugConflict
	}

	pub.ID = uuid.New()
	pub.CreatedAt = time.Now()
	f.pubs[pub.Slug] = pub
	f.bumpMetrics(pub.DomainID, true, spend)
	return pub, nil
}

func sameCampaign(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (f *fakeRepo) bumpMetrics(domainID uuid.UUID, inserted bool, spend decimal.Decimal) {
	m, ok := f.metrics[domainID]
	if !ok {
		m = &model.DomainMetrics{DomainID: domainID, GenerationSpend: decimal.Zero}
		f.metrics[domainID] = m
	}
	if inserted {
		m.PublicationCount++
	}
	m.GenerationSpend = m.GenerationSpend.Add(spend)
	now := time.Now()
	m.LastPublishedAt = &now
}

func (f *fakeRepo) MarkPublished(ctx context.Context, id uuid.UUID) (*model.Publication, error) {
	for _, p := range f.pubs {
		if p.ID == id {
			p.Status = model.StatusPublished
			now := time.Now()
			p.PublishedAt = &now
			return p, nil
		}
	}
	return nil, model.ErrPublicationNotFound
}

func (f *fakeRepo) GetMetrics(ctx context.Context, domainID uuid.UUID) (*model.DomainMetrics, error) {
	if m, ok := f.metrics[domainID]; ok {
		return m, nil
	}
	return &model.DomainMetrics{DomainID: domainID, GenerationSpend: decimal.Zero}, nil
}

func (f *fakeRepo) ListUnprefixed(ctx context.Context, domainID uuid.UUID, prefix string) ([]model.SlugRow, error) {
	rows := make([]model.SlugRow, 0)
	for _, p := range f.pubs {
		if p.DomainID == domainID && !hasPrefix(p.Slug, prefix) {
			rows = append(rows, model.SlugRow{Table: "publications", ID: p.ID, DomainID: domainID, Slug: p.Slug})
		}
	}
	for _, r := range f.legacy {
		if r.DomainID == domainID && !hasPrefix(r.Slug, prefix) {
			rows = append(rows, *r)
		}
	}
	return rows, nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func (f *fakeRepo) UpdateSlug(ctx context.Context, table string, id uuid.UUID, newSlug string) error {
	f.slugWrites = append(f.slugWrites, newSlug)
	switch table {
	case "publications":
		for old, p := range f.pubs {
			if p.ID == id {
				delete(f.pubs, old)
				p.Slug = newSlug
				f.pubs[newSlug] = p
				return nil
			}
		}
	case "legacy_articles":
		for old, r := range f.legacy {
			if r.ID == id {
				delete(f.legacy, old)
				r.Slug = newSlug
				f.legacy[newSlug] = r
				return nil
			}
		}
	}
	return model.ErrPublicationNotFound
}
