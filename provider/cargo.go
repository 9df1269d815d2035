package provider

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	unihttp "github.com/unipkg/unipkg/http"
	"github.com/unipkg/unipkg/version"
)

const cargoDefaultRegistry = "https://crates.io"

// CargoProvider adapts the Rust ecosystem: metadata from the crates.io
// API, install state and mutations through the cargo CLI.
type CargoProvider struct {
	registryURL string
	fetch       *fetcher
	runner      CommandRunner
}

// CargoConfig configures the cargo adapter.
type CargoConfig struct {
	RegistryURL string
	HTTPClient  *unihttp.Client
	Runner      CommandRunner
}

// NewCargoProvider creates a cargo adapter.
func NewCargoProvider(cfg CargoConfig) *CargoProvider {
	registryURL := cfg.RegistryURL
	if registryURL == "" {
		registryURL = cargoDefaultRegistry
	}
	client := cfg.HTTPClient
	if client == nil {
		client = unihttp.NewClient(nil)
	}
	runner := cfg.Runner
	if runner == nil {
		runner = NewExecRunner()
	}
	return &CargoProvider{
		registryURL: strings.TrimRight(registryURL, "/"),
		fetch:       newFetcher(client, "cargo", "crates-metadata"),
		runner:      runner,
	}
}

func (p *CargoProvider) ID() string { return "cargo" }

type cratesVersions struct {
	Versions []struct {
		Num       string `json:"num"`
		Yanked    bool   `json:"yanked"`
		CrateSize int64  `json:"crate_size"`
	} `json:"versions"`
}

type cratesDependencies struct {
	Dependencies []struct {
		CrateID  string `json:"crate_id"`
		Req      string `json:"req"`
		Kind     string `json:"kind"`
		Optional bool   `json:"optional"`
	} `json:"dependencies"`
}

func (p *CargoProvider) ListVersions(ctx context.Context, name string) ([]VersionInfo, error) {
	var doc cratesVersions
	url := fmt.Sprintf("%s/api/v1/crates/%s", p.registryURL, name)
	if err := p.fetch.getJSON(ctx, "list_versions", name, url, &doc); err != nil {
		return nil, Translate("cargo", name, err)
	}

	out := make([]VersionInfo, 0, len(doc.Versions))
	for _, v := range doc.Versions {
		if v.Yanked {
			continue
		}
		out = append(out, VersionInfo{Version: v.Num, Size: v.CrateSize})
	}
	sort.Slice(out, func(i, j int) bool {
		return version.Compare("cargo", out[i].Version, out[j].Version) < 0
	})
	return out, nil
}

func (p *CargoProvider) GetDependencies(ctx context.Context, name, ver string) ([]Dependency, error) {
	var doc cratesDependencies
	url := fmt.Sprintf("%s/api/v1/crates/%s/%s/dependencies", p.registryURL, name, ver)
	if err := p.fetch.getJSON(ctx, "get_dependencies", name, url, &doc); err != nil {
		return nil, Translate("cargo", name, err)
	}

	out := make([]Dependency, 0, len(doc.Dependencies))
	for _, d := range doc.Dependencies {
		// Dev and build dependencies never ship with the crate; optional
		// dependencies only activate behind features.
		if d.Kind != "normal" || d.Optional {
			continue
		}
		out = append(out, Dependency{Name: d.CrateID, Constraint: d.Req})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// parseInstallList parses "cargo install --list" output. Installed crates
// appear as "name v1.2.3:" header lines with their binaries indented
// below.
func parseInstallList(stdout []byte) map[string]string {
	installed := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(stdout))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, " ") {
			continue
		}
		line = strings.TrimSuffix(strings.TrimSpace(line), ":")
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		ver := strings.TrimPrefix(fields[1], "v")
		installed[fields[0]] = ver
	}
	return installed
}

func (p *CargoProvider) installList(ctx context.Context) (map[string]string, error) {
	stdout, err := p.runner.Run(ctx, "cargo", "install", "--list")
	if err != nil {
		return nil, translateRunError("cargo", "", err)
	}
	return parseInstallList(stdout), nil
}

func (p *CargoProvider) InstalledVersion(ctx context.Context, name string) (string, bool, error) {
	installed, err := p.installList(ctx)
	if err != nil {
		return "", false, err
	}
	v, ok := installed[name]
	return v, ok, nil
}

func (p *CargoProvider) ListInstalled(ctx context.Context) ([]InstalledPackage, error) {
	installed, err := p.installList(ctx)
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

func (p *CargoProvider) Install(ctx context.Context, name, ver string) error {
	args := []string{"install", name}
	if ver != "" {
		args = append(args, "--version", ver)
	}
	if _, err := p.runner.Run(ctx, "cargo", args...); err != nil {
		return translateRunError("cargo", name, err)
	}
	return nil
}

func (p *CargoProvider) Uninstall(ctx context.Context, name string) error {
	if _, err := p.runner.Run(ctx, "cargo", "uninstall", name); err != nil {
		return translateRunError("cargo", name, err)
	}
	return nil
}
