package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGemProvider_ListVersions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/versions/rails.json", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"number": "7.1.2"},
			{"number": "7.1.1"},
			{"number": "7.0.0"}
		]`))
	}))
	defer server.Close()

	p := NewGemProvider(GemConfig{RegistryURL: server.URL, HTTPClient: testHTTPClient(t)})

	versions, err := p.ListVersions(context.Background(), "rails")
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, "7.0.0", versions[0].Version)
	assert.Equal(t, "7.1.2", versions[2].Version)
}

func TestGemProvider_GetDependencies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/rubygems/rails/versions/7.1.2.json", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"dependencies": {
				"development": [{"name": "rake", "requirements": ">= 11.1"}],
				"runtime": [
					{"name": "actionpack", "requirements": "= 7.1.2"},
					{"name": "activesupport", "requirements": "= 7.1.2"}
				]
			}
		}`))
	}))
	defer server.Close()

	p := NewGemProvider(GemConfig{RegistryURL: server.URL, HTTPClient: testHTTPClient(t)})

	deps, err := p.GetDependencies(context.Background(), "rails", "7.1.2")
	require.NoError(t, err)

	// Development dependencies do not participate in resolution.
	require.Len(t, deps, 2)
	assert.Equal(t, Dependency{Name: "actionpack", Constraint: "= 7.1.2"}, deps[0])
}

func TestParseGemList(t *testing.T) {
	out := `
*** LOCAL GEMS ***

nokogiri (1.16.0, 1.15.5)
rails (7.1.2)
rake (default: 13.0.6)
`
	installed := parseGemList([]byte(out))
	assert.Equal(t, map[string]string{
		"nokogiri": "1.16.0",
		"rails":    "7.1.2",
		"rake":     "13.0.6",
	}, installed)
}

func TestGemProvider_InstalledVersion(t *testing.T) {
	runner := newStubRunner()
	runner.set("gem list --local --exact rails", "rails (7.1.2)\n", nil)
	runner.set("gem list --local --exact missing", "\n", nil)

	p := NewGemProvider(GemConfig{Runner: runner})

	v, ok, err := p.InstalledVersion(context.Background(), "rails")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "7.1.2", v)

	_, ok, err = p.InstalledVersion(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGemProvider_InstallUninstall(t *testing.T) {
	runner := newStubRunner()
	p := NewGemProvider(GemConfig{Runner: runner})

	require.NoError(t, p.Install(context.Background(), "rails", "7.1.2"))
	require.NoError(t, p.Install(context.Background(), "rake", ""))
	require.NoError(t, p.Uninstall(context.Background(), "rails"))

	assert.Equal(t, []string{
		"gem install rails --version 7.1.2",
		"gem install rake",
		"gem uninstall --executables rails",
	}, runner.calls)
}

func TestGemProvider_UninstallMissing(t *testing.T) {
	runner := newStubRunner()
	runner.set("gem uninstall --executables missing", "",
		&ExitError{Command: "gem", ExitCode: 1, Stderr: "Gem 'missing' is not installed"})

	p := NewGemProvider(GemConfig{Runner: runner})

	err := p.Uninstall(context.Background(), "missing")
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodePackageNotFound, e.Code)
}
