package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest       = errors.New("invalid media buy request")
	ErrUnknownBackend       = errors.New("unknown ad server backend")
	ErrMissingAdvertiserID  = errors.New("principal has no advertiser id for this backend")
	ErrPackageNotFound      = errors.New("media package not found")
	ErrNoPackagesFound      = errors.New("no packages found for media buy")
	ErrWorkflowStepNotFound = errors.New("workflow step not found")
	ErrStepTerminal         = errors.New("workflow step is already terminal")
	ErrTargetingRejected    = errors.New("targeting not representable on this backend")
)

// Error codes of the adapter contract. Every failure an adapter surfaces to
// its caller is one of these; raw backend error text never escapes.
const (
	CodeUnsupportedAction   = "unsupported_action"
	CodeMissingPackageID    = "missing_package_id"
	CodeMissingBudget       = "missing_budget"
	CodeMissingImpressions  = "missing_impressions"
	CodePackageNotFound     = "package_not_found"
	CodeNoPackagesFound     = "no_packages_found"
	CodeNoZonesConfigured   = "no_zones_configured"
	CodePartialFailure      = "partial_failure"
	CodeAPIUpdateFailed     = "api_update_failed"
	CodeBackendUnavailable  = "backend_unavailable"
	CodeInvalidProductSetup = "invalid_product_config"
)

// AdapterError is the uniform structured error shape of the adapter
// contract: a stable code, a human-readable message, and optional details
// scoping the failure (e.g. which identifiers failed, for narrow retries).
type AdapterError struct {
	Code    string
	Message string
	Details map[string]any
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAdapterError(code string, message string) *AdapterError {
	return &AdapterError{Code: code, Message: message}
}

func NewAdapterErrorf(code string, format string, args ...any) *AdapterError {
	return &AdapterError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithDetails attaches structured detail fields and returns the error for
// chaining.
func (e *AdapterError) WithDetails(details map[string]any) *AdapterError {
	e.Details = details
	return e
}

// AsAdapterError unwraps err into an *AdapterError when possible.
func AsAdapterError(err error) (*AdapterError, bool) {
	var adapterErr *AdapterError
	if errors.As(err, &adapterErr) {
		return adapterErr, true
	}
	return nil, false
}
