package provider

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	unihttp "github.com/unipkg/unipkg/http"
	"github.com/unipkg/unipkg/version"
)

const npmDefaultRegistry = "https://registry.npmjs.org"

// NpmProvider adapts the npm ecosystem: metadata from the npm registry
// API, install state and mutations through the npm CLI in global mode.
type NpmProvider struct {
	registryURL string
	fetch       *fetcher
	runner      CommandRunner
}

// NpmConfig configures the npm adapter.
type NpmConfig struct {
	// RegistryURL overrides the npm registry base URL. Empty uses the
	// public registry.
	RegistryURL string

	// HTTPClient is the shared registry HTTP client. Nil constructs one
	// with defaults.
	HTTPClient *unihttp.Client

	// Runner executes the npm CLI. Nil uses os/exec.
	Runner CommandRunner
}

// NewNpmProvider creates an npm adapter.
func NewNpmProvider(cfg NpmConfig) *NpmProvider {
	registryURL := cfg.RegistryURL
	if registryURL == "" {
		registryURL = npmDefaultRegistry
	}
	client := cfg.HTTPClient
	if client == nil {
		client = unihttp.NewClient(nil)
	}
	runner := cfg.Runner
	if runner == nil {
		runner = NewExecRunner()
	}
	return &NpmProvider{
		registryURL: strings.TrimRight(registryURL, "/"),
		fetch:       newFetcher(client, "npm", "npm-metadata"),
		runner:      runner,
	}
}

func (p *NpmProvider) ID() string { return "npm" }

// npmPackument is the registry document for a package. The versions map
// carries the dependency declarations inline, so one fetch serves both
// ListVersions and GetDependencies.
type npmPackument struct {
	Versions map[string]struct {
		Dependencies map[string]string `json:"dependencies"`
		Dist         struct {
			UnpackedSize int64 `json:"unpackedSize"`
		} `json:"dist"`
	} `json:"versions"`
}

func (p *NpmProvider) packumentURL(name string) string {
	// Scoped names keep the leading @ but escape the slash.
	return p.registryURL + "/" + strings.ReplaceAll(url.PathEscape(name), "%40", "@")
}

func (p *NpmProvider) packument(ctx context.Context, name string) (*npmPackument, error) {
	var doc npmPackument
	if err := p.fetch.getJSON(ctx, "metadata", name, p.packumentURL(name), &doc); err != nil {
		return nil, Translate("npm", name, err)
	}
	return &doc, nil
}

func (p *NpmProvider) ListVersions(ctx context.Context, name string) ([]VersionInfo, error) {
	doc, err := p.packument(ctx, name)
	if err != nil {
		return nil, err
	}

	out := make([]VersionInfo, 0, len(doc.Versions))
	for v, meta := range doc.Versions {
		out = append(out, VersionInfo{Version: v, Size: meta.Dist.UnpackedSize})
	}
	sort.Slice(out, func(i, j int) bool {
		return version.Compare("npm", out[i].Version, out[j].Version) < 0
	})
	return out, nil
}

func (p *NpmProvider) GetDependencies(ctx context.Context, name, ver string) ([]Dependency, error) {
	doc, err := p.packument(ctx, name)
	if err != nil {
		return nil, err
	}

	meta, ok := doc.Versions[ver]
	if !ok {
		return nil, NewError(CodePackageNotFound, "npm", name,
			"version "+ver+" not published")
	}

	out := make([]Dependency, 0, len(meta.Dependencies))
	for dep, constraint := range meta.Dependencies {
		out = append(out, Dependency{Name: dep, Constraint: constraint})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// npmLsOutput is the JSON shape of "npm ls --json".
type npmLsOutput struct {
	Dependencies map[string]struct {
		Version string `json:"version"`
	} `json:"dependencies"`
}

// installed runs npm ls and parses the dependency map. npm exits non-zero
// when a requested package is absent but still prints valid JSON, so an
// exit error with parseable stdout is not a failure.
func (p *NpmProvider) installed(ctx context.Context, extraArgs ...string) (map[string]string, error) {
	args := append([]string{"ls", "--global", "--depth=0", "--json"}, extraArgs...)
	stdout, runErr := p.runner.Run(ctx, "npm", args...)

	var out npmLsOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		if runErr != nil {
			return nil, translateRunError("npm", "", runErr)
		}
		return nil, WrapError(CodeProviderUnavailable, "npm", "", err)
	}

	result := make(map[string]string, len(out.Dependencies))
	for name, dep := range out.Dependencies {
		if dep.Version != "" {
			result[name] = dep.Version
		}
	}
	return result, nil
}

func (p *NpmProvider) InstalledVersion(ctx context.Context, name string) (string, bool, error) {
	installed, err := p.installed(ctx, name)
	if err != nil {
		return "", false, err
	}
	v, ok := installed[name]
	return v, ok, nil
}

func (p *NpmProvider) ListInstalled(ctx context.Context) ([]InstalledPackage, error) {
	installed, err := p.installed(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]InstalledPackage, 0, len(installed))
	for name, v := range installed {
		out = append(out, InstalledPackage{Name: name, Version: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (p *NpmProvider) Install(ctx context.Context, name, ver string) error {
	target := name
	if ver != "" {
		target = name + "@" + ver
	}
	if _, err := p.runner.Run(ctx, "npm", "install", "--global", target); err != nil {
		return translateRunError("npm", name, err)
	}
	return nil
}

func (p *NpmProvider) Uninstall(ctx context.Context, name string) error {
	if _, err := p.runner.Run(ctx, "npm", "uninstall", "--global", name); err != nil {
		return translateRunError("npm", name, err)
	}
	return nil
}
