package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes a package-manager CLI command and returns its
// stdout. Adapters go through this interface so tests can stub the
// underlying tools.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExitError is returned by runners when the command ran but exited
// non-zero.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if len(msg) > 300 {
		msg = msg[:300]
	}
	if msg == "" {
		return fmt.Sprintf("%s: exit %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s: exit %d: %s", e.Command, e.ExitCode, msg)
}

// execRunner runs commands through os/exec.
type execRunner struct{}

// NewExecRunner returns the production CommandRunner.
func NewExecRunner() CommandRunner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	if ctx.Err() != nil {
		return stdout.Bytes(), ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), &ExitError{
			Command:  name,
			ExitCode: exitErr.ExitCode(),
			Stderr:   stderr.String(),
		}
	}

	return nil, err
}

// translateRunError maps a CLI failure into the taxonomy. The stderr text
// is inspected for the few failure classes the tools report only as prose.
func translateRunError(providerID, pkg string, err error) *Error {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		lower := strings.ToLower(exitErr.Stderr)
		switch {
		case strings.Contains(lower, "permission denied") || strings.Contains(lower, "eacces"):
			return WrapError(CodePermissionDenied, providerID, pkg, err)
		case strings.Contains(lower, "not found") || strings.Contains(lower, "404") ||
			strings.Contains(lower, "could not find"):
			return WrapError(CodePackageNotFound, providerID, pkg, err)
		case strings.Contains(lower, "network") || strings.Contains(lower, "econnrefused") ||
			strings.Contains(lower, "etimedout"):
			return WrapError(CodeNetworkError, providerID, pkg, err)
		}
		return WrapError(CodeProviderUnavailable, providerID, pkg, err)
	}

	if errors.Is(err, exec.ErrNotFound) {
		return WrapError(CodeProviderUnavailable, providerID, pkg, err)
	}

	return Translate(providerID, pkg, err)
}
