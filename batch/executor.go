package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/unipkg/unipkg/observability"
	"github.com/unipkg/unipkg/provider"
	"github.com/unipkg/unipkg/version"
)

const (
	// DefaultMaxWorkers bounds concurrent items; kept small so batches do
	// not trip provider rate limits.
	DefaultMaxWorkers = 4

	// DefaultItemTimeout bounds each item's provider calls. Exceeding it
	// fails the item as recoverable.
	DefaultItemTimeout = 30 * time.Second
)

// Executor runs batch operations over the provider registry.
type Executor struct {
	registry    *provider.Registry
	logger      observability.Logger
	maxWorkers  int
	itemTimeout time.Duration
	keys        *keyedMutex
}

// Config configures an Executor.
type Config struct {
	Registry    *provider.Registry
	Logger      observability.Logger // nil uses NullLogger
	MaxWorkers  int                  // <= 0 uses DefaultMaxWorkers
	ItemTimeout time.Duration        // <= 0 uses DefaultItemTimeout
}

// NewExecutor creates a batch executor.
func NewExecutor(cfg Config) *Executor {
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NewNullLogger()
	}
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = DefaultMaxWorkers
	}
	timeout := cfg.ItemTimeout
	if timeout <= 0 {
		timeout = DefaultItemTimeout
	}
	return &Executor{
		registry:    cfg.Registry,
		logger:      logger,
		maxWorkers:  workers,
		itemTimeout: timeout,
		keys:        newKeyedMutex(),
	}
}

// Install installs the given packages.
func (e *Executor) Install(ctx context.Context, pkgs []string, opts Options) *Result {
	return e.run(ctx, ActionInstall, pkgs, opts)
}

// Uninstall removes the given packages. Force attempts removal even when
// the package does not appear installed.
func (e *Executor) Uninstall(ctx context.Context, pkgs []string, force bool) *Result {
	return e.run(ctx, ActionUninstall, pkgs, Options{Force: force})
}

// Update upgrades the given packages to their latest published versions.
// An empty list means every installed package across all providers.
func (e *Executor) Update(ctx context.Context, pkgs []string) *Result {
	if len(pkgs) == 0 {
		pkgs = e.allInstalled(ctx)
	}
	return e.run(ctx, ActionUpdate, pkgs, Options{})
}

// outcome is the tagged per-item result; exactly one field is set.
type outcome struct {
	success *ResultItem
	failed  *FailedItem
	skipped *SkippedItem
}

func (e *Executor) run(ctx context.Context, action Action, pkgs []string, opts Options) *Result {
	start := time.Now()
	batchID := uuid.NewString()

	e.logger.InfoContext(ctx, "Batch {BatchId}: {Action} of {Count} packages (dryRun={DryRun}, force={Force})",
		batchID, string(action), len(pkgs), opts.DryRun, opts.Force)

	index := newInstalledIndex()
	outcomes := make([]outcome, len(pkgs))

	// Bounded worker pool. Results land by input index so completion
	// interleaving never changes attribution.
	sem := make(chan struct{}, e.maxWorkers)
	var wg sync.WaitGroup
	for i, raw := range pkgs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i] = e.runItem(ctx, action, raw, opts, index)
		}()
	}
	wg.Wait()

	result := &Result{
		Successful: []ResultItem{},
		Failed:     []FailedItem{},
		Skipped:    []SkippedItem{},
	}
	for _, o := range outcomes {
		switch {
		case o.success != nil:
			result.Successful = append(result.Successful, *o.success)
			observability.BatchItemsTotal.WithLabelValues(string(action), "successful").Inc()
		case o.failed != nil:
			result.Failed = append(result.Failed, *o.failed)
			observability.BatchItemsTotal.WithLabelValues(string(action), "failed").Inc()
		case o.skipped != nil:
			result.Skipped = append(result.Skipped, *o.skipped)
			observability.BatchItemsTotal.WithLabelValues(string(action), "skipped").Inc()
		}
	}
	result.TotalTimeMs = time.Since(start).Milliseconds()
	observability.BatchDuration.WithLabelValues(string(action)).Observe(time.Since(start).Seconds())

	e.logger.InfoContext(ctx, "Batch {BatchId} finished: {Successful} successful, {Failed} failed, {Skipped} skipped in {Duration}ms",
		batchID, len(result.Successful), len(result.Failed), len(result.Skipped), result.TotalTimeMs)

	return result
}

func (e *Executor) runItem(ctx context.Context, action Action, raw string, opts Options, index *installedIndex) outcome {
	spec, err := provider.ParseSpec(raw)
	if err != nil {
		return failItem(raw, err)
	}

	p, spec, err := e.registry.Resolve(spec)
	if err != nil {
		return failItem(spec.Name, err)
	}

	itemCtx, cancel := context.WithTimeout(ctx, e.itemTimeout)
	defer cancel()

	// Serialize per (provider, name); items on distinct packages run
	// concurrently.
	e.keys.Lock(spec.Key())
	defer e.keys.Unlock(spec.Key())

	switch action {
	case ActionInstall:
		return e.install(itemCtx, p, spec, opts)
	case ActionUninstall:
		return e.uninstall(itemCtx, p, spec, opts)
	default:
		return e.update(itemCtx, p, spec, index)
	}
}

func (e *Executor) install(ctx context.Context, p provider.Provider, spec provider.Spec, opts Options) outcome {
	installedVersion, isInstalled, err := p.InstalledVersion(ctx, spec.Name)
	if err != nil {
		return failItem(spec.Name, provider.Translate(p.ID(), spec.Name, err))
	}
	if isInstalled && !opts.Force {
		return skipItem(spec.Name, fmt.Sprintf("already installed (version %s)", installedVersion))
	}

	target, err := e.targetVersion(ctx, p, spec)
	if err != nil {
		return failItem(spec.Name, err)
	}

	if opts.DryRun {
		return successItem(spec.Name, target, ActionInstall)
	}

	if err := p.Install(ctx, spec.Name, target); err != nil {
		return failItem(spec.Name, provider.Translate(p.ID(), spec.Name, err))
	}
	return successItem(spec.Name, target, ActionInstall)
}

func (e *Executor) uninstall(ctx context.Context, p provider.Provider, spec provider.Spec, opts Options) outcome {
	installedVersion, isInstalled, err := p.InstalledVersion(ctx, spec.Name)
	if err != nil {
		return failItem(spec.Name, provider.Translate(p.ID(), spec.Name, err))
	}
	if !isInstalled && !opts.Force {
		return skipItem(spec.Name, "not installed")
	}

	if err := p.Uninstall(ctx, spec.Name); err != nil {
		return failItem(spec.Name, provider.Translate(p.ID(), spec.Name, err))
	}
	return successItem(spec.Name, installedVersion, ActionUninstall)
}

func (e *Executor) update(ctx context.Context, p provider.Provider, spec provider.Spec, index *installedIndex) outcome {
	installed, err := index.get(ctx, p)
	if err != nil {
		return failItem(spec.Name, provider.Translate(p.ID(), spec.Name, err))
	}

	current, ok := installed[spec.Name]
	if !ok {
		return skipItem(spec.Name, "not installed")
	}
	if current.Pinned {
		return skipItem(spec.Name, "package is pinned")
	}

	latest, err := e.targetVersion(ctx, p, provider.Spec{Provider: spec.Provider, Name: spec.Name})
	if err != nil {
		return failItem(spec.Name, err)
	}
	if version.Compare(p.ID(), latest, current.Version) <= 0 {
		return skipItem(spec.Name, "already up to date")
	}

	if err := p.Install(ctx, spec.Name, latest); err != nil {
		return failItem(spec.Name, provider.Translate(p.ID(), spec.Name, err))
	}
	return successItem(spec.Name, latest, ActionUpdate)
}

// targetVersion picks the version to act on: the pinned version when the
// spec carries one, otherwise the highest published version.
func (e *Executor) targetVersion(ctx context.Context, p provider.Provider, spec provider.Spec) (string, error) {
	versions, err := p.ListVersions(ctx, spec.Name)
	if err != nil {
		return "", provider.Translate(p.ID(), spec.Name, err)
	}
	if len(versions) == 0 {
		return "", provider.NewError(provider.CodePackageNotFound, p.ID(), spec.Name, "no published versions")
	}

	if spec.Version == "" {
		return versions[len(versions)-1].Version, nil
	}

	available := make([]string, 0, len(versions))
	for _, v := range versions {
		available = append(available, v.Version)
	}
	// The pin selects exactly that version, never an ecosystem range
	// match (cargo would otherwise caret-expand a bare version).
	cons := version.ExactVersion(p.ID(), spec.Version)
	best, ok := version.BestMatch(p.ID(), []*version.Constraint{cons}, available)
	if !ok {
		return "", provider.NewError(provider.CodePackageNotFound, p.ID(), spec.Name,
			fmt.Sprintf("version %s not published", spec.Version))
	}
	return best, nil
}

// allInstalled expands the implicit "update everything" form into
// qualified package ids, one per installed package across all providers.
func (e *Executor) allInstalled(ctx context.Context) []string {
	var pkgs []string
	for _, p := range e.registry.All() {
		installed, err := p.ListInstalled(ctx)
		if err != nil {
			e.logger.WarnContext(ctx, "Listing installed packages for {Provider} failed: {Error}", p.ID(), err)
			continue
		}
		for _, pkg := range installed {
			pkgs = append(pkgs, p.ID()+":"+pkg.Name)
		}
	}
	return pkgs
}

func successItem(name, version string, action Action) outcome {
	return outcome{success: &ResultItem{Name: name, Version: version, Action: action}}
}

func skipItem(name, reason string) outcome {
	return outcome{skipped: &SkippedItem{Name: name, Reason: reason}}
}

func failItem(name string, err error) outcome {
	pe, ok := provider.AsError(err)
	if !ok {
		pe = provider.Translate("", name, err)
	}
	return outcome{failed: &FailedItem{
		Name:        name,
		Err:         pe,
		Recoverable: pe.Recoverable(),
		Suggestion:  suggestionFor(pe.Code),
	}}
}

// installedIndex lazily caches each provider's installed-package list for
// the duration of one batch.
type installedIndex struct {
	mu      sync.Mutex
	entries map[string]map[string]provider.InstalledPackage
	errs    map[string]error
}

func newInstalledIndex() *installedIndex {
	return &installedIndex{
		entries: make(map[string]map[string]provider.InstalledPackage),
		errs:    make(map[string]error),
	}
}

func (x *installedIndex) get(ctx context.Context, p provider.Provider) (map[string]provider.InstalledPackage, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	id := p.ID()
	if m, ok := x.entries[id]; ok {
		return m, x.errs[id]
	}

	installed, err := p.ListInstalled(ctx)
	m := make(map[string]provider.InstalledPackage, len(installed))
	for _, pkg := range installed {
		m[pkg.Name] = pkg
	}
	x.entries[id] = m
	x.errs[id] = err
	return m, err
}
