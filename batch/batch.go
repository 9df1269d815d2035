// Package batch executes bulk package operations with per-item isolation:
// one item's failure never aborts the rest, and every input lands in
// exactly one of the successful, failed, or skipped buckets.
package batch

import (
	"github.com/unipkg/unipkg/provider"
)

// Action is the operation applied to each batch item.
type Action string

const (
	ActionInstall   Action = "install"
	ActionUninstall Action = "uninstall"
	ActionUpdate    Action = "update"
)

// Options control install batch behavior.
type Options struct {
	// DryRun validates items and resolves target versions without touching
	// provider state; passing items report as successful.
	DryRun bool

	// Force bypasses normally-blocking preconditions such as the
	// already-installed check. Destructive confirmation stays with the
	// caller.
	Force bool
}

// ResultItem is one completed operation.
type ResultItem struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Action  Action `json:"action"`
}

// FailedItem is one operation that raised an error.
type FailedItem struct {
	Name string          `json:"name"`
	Err  *provider.Error `json:"error"`

	// Recoverable mirrors the error class: transient failures are worth
	// retrying, permanent ones are not.
	Recoverable bool `json:"recoverable"`

	// Suggestion is optional remediation text.
	Suggestion string `json:"suggestion,omitempty"`
}

// SkippedItem is one operation that was not attempted.
type SkippedItem struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Result aggregates a whole batch. Every input package id appears in
// exactly one bucket.
type Result struct {
	Successful []ResultItem  `json:"successful"`
	Failed     []FailedItem  `json:"failed"`
	Skipped    []SkippedItem `json:"skipped"`

	// TotalTimeMs is the wall-clock duration of the whole batch,
	// regardless of parallelism.
	TotalTimeMs int64 `json:"total_time_ms"`
}

// Counts returns the bucket sizes for logging.
func (r *Result) Counts() (successful, failed, skipped int) {
	return len(r.Successful), len(r.Failed), len(r.Skipped)
}

// suggestionFor maps an error code to remediation text.
func suggestionFor(code provider.Code) string {
	switch code {
	case provider.CodeNetworkError:
		return "check network connectivity and retry"
	case provider.CodeTimeout:
		return "the provider did not respond in time; retry"
	case provider.CodeProviderUnavailable:
		return "the provider or its registry is unavailable; retry later"
	case provider.CodePermissionDenied:
		return "retry with elevated permissions"
	case provider.CodePackageNotFound:
		return "verify the package name and provider"
	case provider.CodeInvalidPackageSpec:
		return "use name, provider:name, or name@version"
	default:
		return ""
	}
}
