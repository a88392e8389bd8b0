package model

import (
	"errors"
	"fmt"
	"net/http"
)

type JobError struct {
	Code    string
	Message string
	Err     error
}

func (e *JobError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

var ErrJobNotFound = &JobError{
	Code:    "JOB_NOT_FOUND",
	Message: "Job not found",
}

// ErrJobNotProcessing - Complete/reclaim chỉ hợp lệ khi job đang processing
var ErrJobNotProcessing = &JobError{
	Code:    "JOB_NOT_PROCESSING",
	Message: "Job is not in processing state",
}

func NewEnqueueError(err error) *JobError {
	return &JobError{Code: "JOB_ENQUEUE_FAILED", Message: "Failed to enqueue job", Err: err}
}

func GetErrorResponse(err error) (int, string, string) {
	var je *JobError
	if errors.As(err, &je) {
		switch je.Code {
		case ErrJobNotFound.Code:
			return http.StatusNotFound, je.Message, je.Code
		case ErrJobNotProcessing.Code:
			return http.StatusConflict, je.Message, je.Code
		}
	}
	return http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR"
}
