package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequirement(t *testing.T) {
	tests := []struct {
		req  string
		want Dependency
		keep bool
	}{
		{"requests", Dependency{Name: "requests"}, true},
		{"requests>=2.0", Dependency{Name: "requests", Constraint: ">=2.0"}, true},
		{"idna (>=2.5,<3)", Dependency{Name: "idna", Constraint: ">=2.5,<3"}, true},
		{"charset-normalizer (~=2.0.0)", Dependency{Name: "charset-normalizer", Constraint: "~=2.0.0"}, true},
		{"requests[socks]>=2.0", Dependency{Name: "requests", Constraint: ">=2.0"}, true},
		{"pytest ; extra == 'dev'", Dependency{}, false},
		{"colorama; sys_platform == 'win32'", Dependency{}, false},
		{"typing-extensions; python_version < '3.8'", Dependency{}, false},
		{"", Dependency{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.req, func(t *testing.T) {
			got, ok := parseRequirement(tt.req)
			assert.Equal(t, tt.keep, ok)
			if tt.keep {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPipProvider_ListVersions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pypi/requests/json", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"releases": {
				"2.31.0": [{"size": 62574}],
				"2.30.0": [{"size": 62400}],
				"2.29.0": [{"size": 62300, "yanked": true}],
				"0.0.1": []
			}
		}`))
	}))
	defer server.Close()

	p := NewPipProvider(PipConfig{RegistryURL: server.URL, HTTPClient: testHTTPClient(t)})

	versions, err := p.ListVersions(context.Background(), "requests")
	require.NoError(t, err)

	// Yanked releases and releases with no files are not installable.
	require.Len(t, versions, 2)
	assert.Equal(t, "2.30.0", versions[0].Version)
	assert.Equal(t, "2.31.0", versions[1].Version)
	assert.Equal(t, int64(62574), versions[1].Size)
}

func TestPipProvider_GetDependencies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pypi/requests/2.31.0/json", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"info": {
				"requires_dist": [
					"charset-normalizer (>=2,<4)",
					"idna (>=2.5,<4)",
					"urllib3 (>=1.21.1,<3)",
					"PySocks (>=1.5.6,!=1.5.7) ; extra == 'socks'"
				]
			}
		}`))
	}))
	defer server.Close()

	p := NewPipProvider(PipConfig{RegistryURL: server.URL, HTTPClient: testHTTPClient(t)})

	deps, err := p.GetDependencies(context.Background(), "requests", "2.31.0")
	require.NoError(t, err)
	require.Len(t, deps, 3)
	assert.Equal(t, "charset-normalizer", deps[0].Name)
	assert.Equal(t, ">=2,<4", deps[0].Constraint)
	assert.Equal(t, "urllib3", deps[2].Name)
}

func TestPipProvider_InstalledVersion(t *testing.T) {
	runner := newStubRunner()
	runner.set("pip show requests", "Name: requests\nVersion: 2.31.0\nSummary: HTTP for Humans.\n", nil)
	runner.set("pip show missing", "", &ExitError{Command: "pip", ExitCode: 1, Stderr: "WARNING: Package(s) not found: missing"})

	p := NewPipProvider(PipConfig{Runner: runner})

	v, ok, err := p.InstalledVersion(context.Background(), "requests")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2.31.0", v)

	_, ok, err = p.InstalledVersion(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPipProvider_ListInstalled(t *testing.T) {
	runner := newStubRunner()
	runner.set("pip list --format=json",
		`[{"name": "requests", "version": "2.31.0"}, {"name": "idna", "version": "3.4"}]`, nil)

	p := NewPipProvider(PipConfig{Runner: runner})

	installed, err := p.ListInstalled(context.Background())
	require.NoError(t, err)
	require.Len(t, installed, 2)
	assert.Equal(t, InstalledPackage{Name: "idna", Version: "3.4"}, installed[0])
	assert.Equal(t, InstalledPackage{Name: "requests", Version: "2.31.0"}, installed[1])
}

func TestPipProvider_InstallUninstall(t *testing.T) {
	runner := newStubRunner()
	p := NewPipProvider(PipConfig{Runner: runner})

	require.NoError(t, p.Install(context.Background(), "requests", "2.31.0"))
	require.NoError(t, p.Uninstall(context.Background(), "requests"))

	assert.Equal(t, []string{
		"pip install requests==2.31.0",
		"pip uninstall --yes requests",
	}, runner.calls)
}
