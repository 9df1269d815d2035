package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	unihttp "github.com/unipkg/unipkg/http"
	"github.com/unipkg/unipkg/resilience"
)

// Code classifies an engine error. Every error crossing the adapter
// boundary carries exactly one code from this taxonomy.
type Code string

const (
	CodeProviderUnavailable  Code = "ProviderUnavailable"
	CodePackageNotFound      Code = "PackageNotFound"
	CodeNetworkError         Code = "NetworkError"
	CodePermissionDenied     Code = "PermissionDenied"
	CodeInvalidPackageSpec   Code = "InvalidPackageSpec"
	CodeCircularDependency   Code = "CircularDependency"
	CodeUnresolvableConflict Code = "UnresolvableConflict"
	CodeTimeout              Code = "Timeout"
	CodeUnparsableVersion    Code = "UnparsableVersion"
)

// Error is the typed error crossing the provider adapter boundary.
type Error struct {
	Code     Code
	Provider string
	Package  string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	prefix := string(e.Code)
	if e.Provider != "" && e.Package != "" {
		prefix = fmt.Sprintf("%s (%s:%s)", e.Code, e.Provider, e.Package)
	} else if e.Package != "" {
		prefix = fmt.Sprintf("%s (%s)", e.Code, e.Package)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	}
	return prefix
}

func (e *Error) Unwrap() error { return e.Err }

// MarshalJSON renders the error as its code plus the full message chain.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	}{Code: e.Code, Message: e.Error()})
}

// Recoverable reports whether the failure is transient and worth retrying.
func (e *Error) Recoverable() bool {
	switch e.Code {
	case CodeNetworkError, CodeTimeout, CodeProviderUnavailable:
		return true
	default:
		return false
	}
}

// NewError builds a taxonomy error.
func NewError(code Code, providerID, pkg, message string) *Error {
	return &Error{Code: code, Provider: providerID, Package: pkg, Message: message}
}

// WrapError builds a taxonomy error wrapping a cause.
func WrapError(code Code, providerID, pkg string, err error) *Error {
	return &Error{Code: code, Provider: providerID, Package: pkg, Err: err}
}

// AsError extracts a taxonomy error from an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Translate maps an arbitrary adapter failure into the taxonomy. Errors
// already carrying a code pass through unchanged.
func Translate(providerID, pkg string, err error) *Error {
	if err == nil {
		return nil
	}

	if e, ok := AsError(err); ok {
		return e
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return WrapError(CodeTimeout, providerID, pkg, err)
	case errors.Is(err, context.Canceled):
		return WrapError(CodeTimeout, providerID, pkg, err)
	case errors.Is(err, resilience.ErrCircuitOpen):
		return WrapError(CodeProviderUnavailable, providerID, pkg, err)
	}

	var statusErr *unihttp.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.NotFound() {
			return WrapError(CodePackageNotFound, providerID, pkg, err)
		}
		if statusErr.StatusCode == 401 || statusErr.StatusCode == 403 {
			return WrapError(CodePermissionDenied, providerID, pkg, err)
		}
		if statusErr.StatusCode >= 500 {
			return WrapError(CodeProviderUnavailable, providerID, pkg, err)
		}
		return WrapError(CodeNetworkError, providerID, pkg, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return WrapError(CodeTimeout, providerID, pkg, err)
		}
		return WrapError(CodeNetworkError, providerID, pkg, err)
	}

	return WrapError(CodeNetworkError, providerID, pkg, err)
}
