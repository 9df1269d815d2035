package provider

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	unihttp "github.com/unipkg/unipkg/http"
	"github.com/unipkg/unipkg/version"
)

const gemDefaultRegistry = "https://rubygems.org"

// GemProvider adapts the Ruby ecosystem: metadata from the RubyGems API,
// install state and mutations through the gem CLI.
type GemProvider struct {
	registryURL string
	fetch       *fetcher
	runner      CommandRunner
}

// GemConfig configures the gem adapter.
type GemConfig struct {
	RegistryURL string
	HTTPClient  *unihttp.Client
	Runner      CommandRunner
}

// NewGemProvider creates a gem adapter.
func NewGemProvider(cfg GemConfig) *GemProvider {
	registryURL := cfg.RegistryURL
	if registryURL == "" {
		registryURL = gemDefaultRegistry
	}
	client := cfg.HTTPClient
	if client == nil {
		client = unihttp.NewClient(nil)
	}
	runner := cfg.Runner
	if runner == nil {
		runner = NewExecRunner()
	}
	return &GemProvider{
		registryURL: strings.TrimRight(registryURL, "/"),
		fetch:       newFetcher(client, "gem", "rubygems-metadata"),
		runner:      runner,
	}
}

func (p *GemProvider) ID() string { return "gem" }

type gemVersion struct {
	Number string `json:"number"`
}

type gemRelease struct {
	Dependencies struct {
		Runtime []struct {
			Name         string `json:"name"`
			Requirements string `json:"requirements"`
		} `json:"runtime"`
	} `json:"dependencies"`
}

func (p *GemProvider) ListVersions(ctx context.Context, name string) ([]VersionInfo, error) {
	var doc []gemVersion
	url := fmt.Sprintf("%s/api/v1/versions/%s.json", p.registryURL, name)
	if err := p.fetch.getJSON(ctx, "list_versions", name, url, &doc); err != nil {
		return nil, Translate("gem", name, err)
	}

	out := make([]VersionInfo, 0, len(doc))
	for _, v := range doc {
		out = append(out, VersionInfo{Version: v.Number})
	}
	sort.Slice(out, func(i, j int) bool {
		return version.Compare("gem", out[i].Version, out[j].Version) < 0
	})
	return out, nil
}

func (p *GemProvider) GetDependencies(ctx context.Context, name, ver string) ([]Dependency, error) {
	var doc gemRelease
	url := fmt.Sprintf("%s/api/v2/rubygems/%s/versions/%s.json", p.registryURL, name, ver)
	if err := p.fetch.getJSON(ctx, "get_dependencies", name, url, &doc); err != nil {
		return nil, Translate("gem", name, err)
	}

	out := make([]Dependency, 0, len(doc.Dependencies.Runtime))
	for _, d := range doc.Dependencies.Runtime {
		out = append(out, Dependency{Name: d.Name, Constraint: d.Requirements})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// parseGemList parses "gem list" output lines of the form
// "name (1.2.0, 1.0.0)". The first listed version is the newest installed.
func parseGemList(stdout []byte) map[string]string {
	installed := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(stdout))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		i := strings.Index(line, " (")
		if i < 0 || !strings.HasSuffix(line, ")") {
			continue
		}
		name := line[:i]
		versions := strings.TrimSuffix(line[i+2:], ")")
		first := versions
		if j := strings.Index(versions, ","); j >= 0 {
			first = versions[:j]
		}
		// "gem list" marks default gems as "1.2.0 default"; strip the tag.
		first = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(first), "default:"))
		if k := strings.Index(first, " "); k >= 0 {
			first = first[:k]
		}
		if name != "" && first != "" {
			installed[name] = first
		}
	}
	return installed
}

func (p *GemProvider) InstalledVersion(ctx context.Context, name string) (string, bool, error) {
	stdout, err := p.runner.Run(ctx, "gem", "list", "--local", "--exact", name)
	if err != nil {
		return "", false, translateRunError("gem", name, err)
	}
	v, ok := parseGemList(stdout)[name]
	return v, ok, nil
}

func (p *GemProvider) ListInstalled(ctx context.Context) ([]InstalledPackage, error) {
	stdout, err := p.runner.Run(ctx, "gem", "list", "--local")
	if err != nil {
		return nil, translateRunError("gem", "", err)
	}

	installed := parseGemList(stdout)
	out := make([]InstalledPackage, 0, len(installed))
	for name, v := range installed {
		out = append(out, InstalledPackage{Name: name, Version: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (p *GemProvider) Install(ctx context.Context, name, ver string) error {
	args := []string{"install", name}
	if ver != "" {
		args = append(args, "--version", ver)
	}
	if _, err := p.runner.Run(ctx, "gem", args...); err != nil {
		return translateRunError("gem", name, err)
	}
	return nil
}

func (p *GemProvider) Uninstall(ctx context.Context, name string) error {
	stdout, err := p.runner.Run(ctx, "gem", "uninstall", "--executables", name)
	if err != nil {
		var exitErr *ExitError
		// gem uninstall reports a missing gem on stdout with exit 1.
		if errors.As(err, &exitErr) &&
			strings.Contains(strings.ToLower(string(stdout)+exitErr.Stderr), "is not installed") {
			return NewError(CodePackageNotFound, "gem", name, "not installed")
		}
		return translateRunError("gem", name, err)
	}
	return nil
}
