package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure codes surfaced by the data-access layer.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeValidation      = "VALIDATION_FAILED"
	CodeNotFound        = "NOT_FOUND"
	CodeTransient       = "TRANSIENT"
	CodeMergeSkipped    = "MERGE_LINE_SKIPPED"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

func Unauthenticated(details string) *APIError {
	return New(CodeUnauthenticated, "authentication required", details, http.StatusUnauthorized)
}

func Transient(details string) *APIError {
	return New(CodeTransient, "temporary failure", details, http.StatusServiceUnavailable)
}

// FromStatus classifies a remote API status into the failure taxonomy.
// 401 means the credential was not accepted; the rest of the 4xx range is a
// payload the server refused and must never be retried; 408/429/5xx are
// transient.
func FromStatus(status int, detail string) *APIError {
	if detail == "" {
		detail = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized:
		return New(CodeUnauthenticated, "authentication required", detail, status)
	case status == http.StatusNotFound:
		return New(CodeNotFound, "resource not found", detail, status)
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500:
		return New(CodeTransient, "temporary failure", detail, status)
	case status >= 400:
		return New(CodeValidation, "request rejected", detail, status)
	default:
		return New(CodeTransient, "unexpected response", detail, status)
	}
}

func codeOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}

	return ""
}

func IsUnauthenticated(err error) bool { return codeOf(err) == CodeUnauthenticated }

func IsValidation(err error) bool { return codeOf(err) == CodeValidation }

func IsNotFound(err error) bool { return codeOf(err) == CodeNotFound }

func IsTransient(err error) bool { return codeOf(err) == CodeTransient }
