package provider

import (
	"context"
	"sort"
	"sync"

	"github.com/unipkg/unipkg/version"
)

// MemoryProvider is an in-memory Provider implementation for tests. It
// holds a published-package index and a mutable installed set, records
// every mutation, and can be told to fail specific operations.
type MemoryProvider struct {
	id string

	mu        sync.Mutex
	published map[string][]memVersion
	installed map[string]string
	pinned    map[string]bool
	failures  map[string]error
	installs  []string
	removals  []string
}

type memVersion struct {
	version string
	size    int64
	deps    []Dependency
}

// NewMemoryProvider creates an empty in-memory provider with the given id.
func NewMemoryProvider(id string) *MemoryProvider {
	return &MemoryProvider{
		id:        id,
		published: make(map[string][]memVersion),
		installed: make(map[string]string),
		pinned:    make(map[string]bool),
		failures:  make(map[string]error),
	}
}

func (m *MemoryProvider) ID() string { return m.id }

// AddPackage publishes a version with its dependency declarations.
func (m *MemoryProvider) AddPackage(name, ver string, deps ...Dependency) *MemoryProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published[name] = append(m.published[name], memVersion{version: ver, deps: deps})
	sort.Slice(m.published[name], func(i, j int) bool {
		return version.Compare(m.id, m.published[name][i].version, m.published[name][j].version) < 0
	})
	return m
}

// SetSize records a package size for an already published version.
func (m *MemoryProvider) SetSize(name, ver string, size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.published[name] {
		if m.published[name][i].version == ver {
			m.published[name][i].size = size
		}
	}
}

// SetInstalled marks a package as installed at the given version.
func (m *MemoryProvider) SetInstalled(name, ver string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.installed[name] = ver
}

// Pin holds a package at its installed version.
func (m *MemoryProvider) Pin(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pinned[name] = true
}

// FailWith makes every operation touching name return err.
func (m *MemoryProvider) FailWith(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[name] = err
}

// Installs returns the install calls made, in order, as "name@version".
func (m *MemoryProvider) Installs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.installs))
	copy(out, m.installs)
	return out
}

// Removals returns the uninstall calls made, in order.
func (m *MemoryProvider) Removals() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.removals))
	copy(out, m.removals)
	return out
}

func (m *MemoryProvider) failureFor(name string) error {
	if err := m.failures[name]; err != nil {
		return err
	}
	return nil
}

func (m *MemoryProvider) ListVersions(ctx context.Context, name string) ([]VersionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failureFor(name); err != nil {
		return nil, Translate(m.id, name, err)
	}

	versions, ok := m.published[name]
	if !ok {
		return nil, NewError(CodePackageNotFound, m.id, name, "not published")
	}

	out := make([]VersionInfo, 0, len(versions))
	for _, v := range versions {
		out = append(out, VersionInfo{Version: v.version, Size: v.size})
	}
	return out, nil
}

func (m *MemoryProvider) GetDependencies(ctx context.Context, name, ver string) ([]Dependency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failureFor(name); err != nil {
		return nil, Translate(m.id, name, err)
	}

	for _, v := range m.published[name] {
		if v.version == ver {
			out := make([]Dependency, len(v.deps))
			copy(out, v.deps)
			return out, nil
		}
	}
	return nil, NewError(CodePackageNotFound, m.id, name, "version "+ver+" not published")
}

func (m *MemoryProvider) InstalledVersion(ctx context.Context, name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failureFor(name); err != nil {
		return "", false, Translate(m.id, name, err)
	}

	v, ok := m.installed[name]
	return v, ok, nil
}

func (m *MemoryProvider) ListInstalled(ctx context.Context) ([]InstalledPackage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.installed))
	for name := range m.installed {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]InstalledPackage, 0, len(names))
	for _, name := range names {
		out = append(out, InstalledPackage{
			Name:    name,
			Version: m.installed[name],
			Pinned:  m.pinned[name],
		})
	}
	return out, nil
}

func (m *MemoryProvider) Install(ctx context.Context, name, ver string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failureFor(name); err != nil {
		return Translate(m.id, name, err)
	}
	if err := ctx.Err(); err != nil {
		return Translate(m.id, name, err)
	}

	if ver == "" {
		versions := m.published[name]
		if len(versions) == 0 {
			return NewError(CodePackageNotFound, m.id, name, "not published")
		}
		ver = versions[len(versions)-1].version
	}

	m.installed[name] = ver
	m.installs = append(m.installs, name+"@"+ver)
	return nil
}

func (m *MemoryProvider) Uninstall(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failureFor(name); err != nil {
		return Translate(m.id, name, err)
	}

	if _, ok := m.installed[name]; !ok {
		return NewError(CodePackageNotFound, m.id, name, "not installed")
	}

	delete(m.installed, name)
	delete(m.pinned, name)
	m.removals = append(m.removals, name)
	return nil
}
