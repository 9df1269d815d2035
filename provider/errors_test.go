package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	unihttp "github.com/unipkg/unipkg/http"
	"github.com/unipkg/unipkg/resilience"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"deadline", context.DeadlineExceeded, CodeTimeout},
		{"canceled", context.Canceled, CodeTimeout},
		{"circuit open", resilience.ErrCircuitOpen, CodeProviderUnavailable},
		{"http 404", &unihttp.StatusError{URL: "u", StatusCode: 404}, CodePackageNotFound},
		{"http 403", &unihttp.StatusError{URL: "u", StatusCode: 403}, CodePermissionDenied},
		{"http 500", &unihttp.StatusError{URL: "u", StatusCode: 500}, CodeProviderUnavailable},
		{"http 418", &unihttp.StatusError{URL: "u", StatusCode: 418}, CodeNetworkError},
		{"generic", errors.New("boom"), CodeNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Translate("npm", "lodash", tt.err)
			require.NotNil(t, e)
			assert.Equal(t, tt.want, e.Code)
			assert.Equal(t, "npm", e.Provider)
			assert.ErrorIs(t, e, tt.err)
		})
	}
}

func TestTranslate_PassesThroughTypedErrors(t *testing.T) {
	orig := NewError(CodePackageNotFound, "pip", "requests", "gone")
	assert.Same(t, orig, Translate("npm", "other", orig))
}

func TestError_Recoverable(t *testing.T) {
	assert.True(t, NewError(CodeNetworkError, "npm", "x", "").Recoverable())
	assert.True(t, NewError(CodeTimeout, "npm", "x", "").Recoverable())
	assert.True(t, NewError(CodeProviderUnavailable, "npm", "x", "").Recoverable())
	assert.False(t, NewError(CodePackageNotFound, "npm", "x", "").Recoverable())
	assert.False(t, NewError(CodeUnresolvableConflict, "npm", "x", "").Recoverable())
	assert.False(t, NewError(CodeInvalidPackageSpec, "", "x", "").Recoverable())
}

func TestTranslateRunError_StderrClasses(t *testing.T) {
	tests := []struct {
		stderr string
		want   Code
	}{
		{"EACCES: permission denied, mkdir '/usr/lib'", CodePermissionDenied},
		{"npm ERR! 404 Not Found - GET https://registry.npmjs.org/nope", CodePackageNotFound},
		{"getaddrinfo ENOTFOUND registry: network error", CodeNetworkError},
		{"connect ECONNREFUSED 127.0.0.1:443", CodeNetworkError},
		{"something unexpected", CodeProviderUnavailable},
	}

	for _, tt := range tests {
		err := &ExitError{Command: "npm", ExitCode: 1, Stderr: tt.stderr}
		e := translateRunError("npm", "lodash", err)
		assert.Equal(t, tt.want, e.Code, "stderr: %s", tt.stderr)
	}
}

func TestError_Message(t *testing.T) {
	e := NewError(CodePackageNotFound, "npm", "lodash", "not published")
	assert.Equal(t, "PackageNotFound (npm:lodash): not published", e.Error())
}
