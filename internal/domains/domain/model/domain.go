package model

import (
	"time"

	"github.com/google/uuid"
)

// VerificationState is the DNS verification lifecycle of a hostname.
// The pipeline only reads this - verification flows live elsewhere.
type VerificationState string

const (
	VerificationUnverified VerificationState = "unverified"
	VerificationDNSPending VerificationState = "dns_pending"
	VerificationActive     VerificationState = "active"
)

// Domain is a hostname the system is authorized to publish under.
type Domain struct {
	ID           uuid.UUID         `json:"id" db:"id"`
	Hostname     string            `json:"hostname" db:"hostname"`
	AccountID    uuid.UUID         `json:"account_id" db:"account_id"`
	Verification VerificationState `json:"verification" db:"verification"`
	ThemeKey     string            `json:"theme_key" db:"theme_key"` // empty = no theme assigned
	IsActive     bool              `json:"is_active" db:"is_active"` // soft-disable, never hard delete
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" db:"updated_at"`
}

// PublicURL builds the canonical URL for a slug on this domain. The slug is
// already theme-prefixed by the allocator when a theme is assigned.
func (d *Domain) PublicURL(slug string) string {
	return "https://" + d.Hostname + "/" + slug
}

type RegisterDomainRequest struct {
	Hostname string `json:"hostname"`
	ThemeKey string `json:"theme_key,omitempty"`
}

type SetThemeRequest struct {
	ThemeKey string `json:"theme_key"`
}

type DomainResponse struct {
	ID           uuid.UUID         `json:"id"`
	Hostname     string            `json:"hostname"`
	Verification VerificationState `json:"verification"`
	ThemeKey     string            `json:"theme_key,omitempty"`
	IsActive     bool              `json:"is_active"`
	CreatedAt    time.Time         `json:"created_at"`
}

func (d *Domain) ToResponse() *DomainResponse {
	return &DomainResponse{
		ID:           d.ID,
		Hostname:     d.Hostname,
		Verification: d.Verification,
		ThemeKey:     d.ThemeKey,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
	}
}
