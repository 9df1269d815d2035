package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	unihttp "github.com/unipkg/unipkg/http"
	"github.com/unipkg/unipkg/version"
)

const pypiDefaultRegistry = "https://pypi.org"

// PipProvider adapts the Python ecosystem: metadata from the PyPI JSON
// API, install state and mutations through the pip CLI.
type PipProvider struct {
	registryURL string
	fetch       *fetcher
	runner      CommandRunner
}

// PipConfig configures the pip adapter.
type PipConfig struct {
	RegistryURL string
	HTTPClient  *unihttp.Client
	Runner      CommandRunner
}

// NewPipProvider creates a pip adapter.
func NewPipProvider(cfg PipConfig) *PipProvider {
	registryURL := cfg.RegistryURL
	if registryURL == "" {
		registryURL = pypiDefaultRegistry
	}
	client := cfg.HTTPClient
	if client == nil {
		client = unihttp.NewClient(nil)
	}
	runner := cfg.Runner
	if runner == nil {
		runner = NewExecRunner()
	}
	return &PipProvider{
		registryURL: strings.TrimRight(registryURL, "/"),
		fetch:       newFetcher(client, "pip", "pypi-metadata"),
		runner:      runner,
	}
}

func (p *PipProvider) ID() string { return "pip" }

type pypiFile struct {
	Size   int64 `json:"size"`
	Yanked bool  `json:"yanked"`
}

type pypiProject struct {
	Releases map[string][]pypiFile `json:"releases"`
}

type pypiRelease struct {
	Info struct {
		RequiresDist []string `json:"requires_dist"`
	} `json:"info"`
}

func (p *PipProvider) ListVersions(ctx context.Context, name string) ([]VersionInfo, error) {
	var doc pypiProject
	url := fmt.Sprintf("%s/pypi/%s/json", p.registryURL, name)
	if err := p.fetch.getJSON(ctx, "list_versions", name, url, &doc); err != nil {
		return nil, Translate("pip", name, err)
	}

	out := make([]VersionInfo, 0, len(doc.Releases))
	for v, files := range doc.Releases {
		if len(files) == 0 || allYanked(files) {
			continue
		}
		out = append(out, VersionInfo{Version: v, Size: files[0].Size})
	}
	sort.Slice(out, func(i, j int) bool {
		return version.Compare("pip", out[i].Version, out[j].Version) < 0
	})
	return out, nil
}

func allYanked(files []pypiFile) bool {
	for _, f := range files {
		if !f.Yanked {
			return false
		}
	}
	return true
}

func (p *PipProvider) GetDependencies(ctx context.Context, name, ver string) ([]Dependency, error) {
	var doc pypiRelease
	url := fmt.Sprintf("%s/pypi/%s/%s/json", p.registryURL, name, ver)
	if err := p.fetch.getJSON(ctx, "get_dependencies", name, url, &doc); err != nil {
		return nil, Translate("pip", name, err)
	}

	out := make([]Dependency, 0, len(doc.Info.RequiresDist))
	for _, req := range doc.Info.RequiresDist {
		dep, ok := parseRequirement(req)
		if !ok {
			continue
		}
		out = append(out, dep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// parseRequirement extracts the name and version constraint from a PEP 508
// requirement line. Requirements guarded by an environment marker (extras,
// python_version, sys_platform) are conditional and skipped; only
// unconditional runtime dependencies participate in resolution.
func parseRequirement(req string) (Dependency, bool) {
	s := strings.TrimSpace(req)
	if s == "" {
		return Dependency{}, false
	}

	if i := strings.Index(s, ";"); i >= 0 {
		return Dependency{}, false
	}

	// Drop the extras bracket: "requests[socks]>=2.0" requires requests.
	if i := strings.Index(s, "["); i >= 0 {
		j := strings.Index(s, "]")
		if j < i {
			return Dependency{}, false
		}
		s = s[:i] + s[j+1:]
	}

	// Older metadata wraps the constraint in parens: "idna (>=2.5,<3)".
	s = strings.ReplaceAll(s, "(", " ")
	s = strings.ReplaceAll(s, ")", " ")

	i := strings.IndexAny(s, " <>=!~")
	if i < 0 {
		return Dependency{Name: strings.TrimSpace(s)}, true
	}

	name := strings.TrimSpace(s[:i])
	constraint := strings.TrimSpace(s[i:])
	if name == "" {
		return Dependency{}, false
	}
	return Dependency{Name: name, Constraint: constraint}, true
}

func (p *PipProvider) InstalledVersion(ctx context.Context, name string) (string, bool, error) {
	stdout, err := p.runner.Run(ctx, "pip", "show", name)
	if err != nil {
		var exitErr *ExitError
		// pip show exits 1 for packages that are simply not installed.
		if errors.As(err, &exitErr) && exitErr.ExitCode == 1 {
			return "", false, nil
		}
		return "", false, translateRunError("pip", name, err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(stdout))
	for scanner.Scan() {
		line := scanner.Text()
		if v, ok := strings.CutPrefix(line, "Version:"); ok {
			return strings.TrimSpace(v), true, nil
		}
	}
	return "", false, nil
}

type pipListEntry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (p *PipProvider) ListInstalled(ctx context.Context) ([]InstalledPackage, error) {
	stdout, err := p.runner.Run(ctx, "pip", "list", "--format=json")
	if err != nil {
		return nil, translateRunError("pip", "", err)
	}

	var entries []pipListEntry
	if err := json.Unmarshal(stdout, &entries); err != nil {
		return nil, WrapError(CodeProviderUnavailable, "pip", "", err)
	}

	out := make([]InstalledPackage, 0, len(entries))
	for _, e := range entries {
		out = append(out, InstalledPackage{Name: e.Name, Version: e.Version})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (p *PipProvider) Install(ctx context.Context, name, ver string) error {
	target := name
	if ver != "" {
		target = name + "==" + ver
	}
	if _, err := p.runner.Run(ctx, "pip", "install", target); err != nil {
		return translateRunError("pip", name, err)
	}
	return nil
}

func (p *PipProvider) Uninstall(ctx context.Context, name string) error {
	if _, err := p.runner.Run(ctx, "pip", "uninstall", "--yes", name); err != nil {
		return translateRunError("pip", name, err)
	}
	return nil
}
