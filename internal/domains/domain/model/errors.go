package model

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError định nghĩa base error cho domain directory
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

var ErrDomainNotFound = &DomainError{
	Code:    "DOMAIN_NOT_FOUND",
	Message: "Domain not found",
}

var ErrDomainDisabled = &DomainError{
	Code:    "DOMAIN_DISABLED",
	Message: "Domain is disabled for publishing",
}

var ErrHostnameTaken = &DomainError{
	Code:    "HOSTNAME_TAKEN",
	Message: "Hostname is already registered",
}

var ErrInvalidHostname = &DomainError{
	Code:    "INVALID_HOSTNAME",
	Message: "Hostname is invalid",
}

func NewRegisterDomainError(err error) *DomainError {
	return &DomainError{Code: "DOMAIN_REGISTER_FAILED", Message: "Failed to register domain", Err: err}
}

// GetErrorResponse maps domain errors to (statusCode, message, code) for the
// HTTP layer
func GetErrorResponse(err error) (int, string, string) {
	var de *DomainError
	if errors.As(err, &de) {
		switch de.Code {
		case ErrDomainNotFound.Code:
			return http.StatusNotFound, de.Message, de.Code
		case ErrHostnameTaken.Code:
			return http.StatusConflict, de.Message, de.Code
		case ErrInvalidHostname.Code:
			return http.StatusBadRequest, de.Message, de.Code
		case ErrDomainDisabled.Code:
			return http.StatusUnprocessableEntity, de.Message, de.Code
		}
	}
	return http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR"
}
