package model

import (
	"errors"
	"fmt"
	"net/http"
)

type CampaignError struct {
	Code    string
	Message string
	Err     error
}

func (e *CampaignError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CampaignError) Unwrap() error {
	return e.Err
}

var (
	ErrCampaignNotFound = &CampaignError{
		Code:    "CAMPAIGN_001",
		Message: "campaign not found",
	}

	ErrInvalidTransition = &CampaignError{
		Code:    "CAMPAIGN_002",
		Message: "campaign status does not allow this action",
	}

	ErrCampaignTerminal = &CampaignError{
		Code:    "CAMPAIGN_003",
		Message: "campaign already completed or failed",
	}

	ErrCampaignExhausted = &CampaignError{
		Code:    "CAMPAIGN_004",
		Message: "all content providers exhausted for this resume pass",
	}
)

func NewPipelineError(err error) *CampaignError {
	return &CampaignError{
		Code:    "CAMPAIGN_500",
		Message: "campaign pipeline error",
		Err:     err,
	}
}

// GetErrorResponse maps a campaign error to HTTP status, message and code.
func GetErrorResponse(err error) (int, string, string) {
	var campaignErr *CampaignError
	if errors.As(err, &campaignErr) {
		switch campaignErr.Code {
		case ErrCampaignNotFound.Code:
			return http.StatusNotFound, campaignErr.Message, campaignErr.Code
		case ErrInvalidTransition.Code, ErrCampaignTerminal.Code:
			return http.StatusConflict, campaignErr.Message, campaignErr.Code
		case ErrCampaignExhausted.Code:
			return http.StatusBadGateway, campaignErr.Message, campaignErr.Code
		default:
			return http.StatusInternalServerError, campaignErr.Message, campaignErr.Code
		}
	}
	return http.StatusInternalServerError, "internal server error", "CAMPAIGN_500"
}
