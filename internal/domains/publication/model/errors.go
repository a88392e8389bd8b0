package model

import (
	"errors"
	"fmt"
	"net/http"
)

// PublicationError định nghĩa base error cho publication domain
type PublicationError struct {
	Code    string
	Message string
	Err     error
}

func (e *PublicationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *PublicationError) Unwrap() error {
	return e.Err
}

// ErrSlugConflict - store-level uniqueness conflict on (domain, slug).
// The writer retries exactly once; a second conflict surfaces this error.
var ErrSlugConflict = &PublicationError{
	Code:    "SLUG_CONFLICT",
	Message: "Slug already taken for this domain",
}

var ErrPublicationNotFound = &PublicationError{
	Code:    "PUBLICATION_NOT_FOUND",
	Message: "Publication not found",
}

var ErrDomainNoTheme = &PublicationError{
	Code:    "DOMAIN_NO_THEME",
	Message: "Domain has no theme key assigned",
}

func NewWriteError(err error) *PublicationError {
	return &PublicationError{Code: "PUBLICATION_WRITE_FAILED", Message: "Failed to write publication", Err: err}
}

func GetErrorResponse(err error) (int, string, string) {
	var pe *PublicationError
	if errors.As(err, &pe) {
		switch pe.Code {
		case ErrSlugConflict.Code:
			return http.StatusConflict, pe.Message, pe.Code
		case ErrPublicationNotFound.Code:
			return http.StatusNotFound, pe.Message, pe.Code
		case ErrDomainNoTheme.Code:
			return http.StatusUnprocessableEntity, pe.Message, pe.Code
		}
	}
	return http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR"
}
