package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeEmptyRun          = "EMPTY_RUN"
	ErrCodeDuplicateStrategy = "DUPLICATE_STRATEGY"
	ErrCodeRaceTimeout       = "RACE_TIMEOUT"
	ErrCodeBrowserCrash      = "BROWSER_CRASH"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeInternal          = "INTERNAL_ERROR"

	// LLM-related error codes for the AI strategy's digest step.
	ErrCodeLLMFailure     = "LLM_FAILURE"
	ErrCodeLLMAuthFailure = "LLM_AUTH_FAILURE"
	ErrCodeLLMRateLimited = "LLM_RATE_LIMITED"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RaceError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type RaceError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *RaceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RaceError) Unwrap() error {
	return e.Err
}

// NewRaceError creates a new RaceError.
func NewRaceError(code, message string, err error) *RaceError {
	return &RaceError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *RaceError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}
