package resolver

import (
	"context"
	"sort"
	"time"

	"github.com/unipkg/unipkg/observability"
	"github.com/unipkg/unipkg/provider"
)

// Resolver computes installable dependency graphs for packages across the
// registered provider backends.
type Resolver struct {
	registry *provider.Registry
	logger   observability.Logger
}

// New creates a resolver over the given provider registry.
func New(registry *provider.Registry, logger observability.Logger) *Resolver {
	if logger == nil {
		logger = observability.NewNullLogger()
	}
	return &Resolver{registry: registry, logger: logger}
}

// Resolve builds the dependency graph for spec, detects conflicts, and
// plans the install order. The result is always populated; the returned
// error is non-nil only when the root package itself cannot be resolved,
// in which case the result carries Success=false and an empty tree.
func (r *Resolver) Resolve(ctx context.Context, spec provider.Spec) (*ResolutionResult, error) {
	p, spec, err := r.registry.Resolve(spec)
	if err != nil {
		observability.ResolutionsTotal.WithLabelValues(spec.Provider, "error").Inc()
		return &ResolutionResult{Conflicts: []Conflict{}}, err
	}

	start := time.Now()
	r.logger.InfoContext(ctx, "Resolving {Package} with provider {Provider}",
		spec.Name, p.ID())

	w := newWalker(r.logger)
	root := w.walk(ctx, p, spec.Name, spec.Version, "", make(map[string]bool), 0)

	if root.Version == "" {
		rootErr := r.rootError(ctx, w, p, spec, root)
		observability.ResolutionsTotal.WithLabelValues(p.ID(), "error").Inc()
		r.logger.WarnContext(ctx, "Resolution of {Package} failed: {Error}", spec.Name, rootErr)
		return &ResolutionResult{Conflicts: w.conflicts}, rootErr
	}

	versionConflicts, winners := w.analyze()
	conflicts := append(w.conflicts, versionConflicts...)

	order, acyclic := planOrder(w.flat, winners)

	success := acyclic
	for _, c := range conflicts {
		if c.Resolution == "" {
			success = false
		}
	}

	result := &ResolutionResult{
		Success:       success,
		Packages:      packageRefs(winners),
		Tree:          w.flat,
		Conflicts:     conflicts,
		InstallOrder:  order,
		TotalPackages: len(winners),
		TotalSize:     w.totalSize(winners),
	}

	outcome := "success"
	if len(conflicts) > 0 {
		outcome = "conflict"
	}
	observability.ResolutionsTotal.WithLabelValues(p.ID(), outcome).Inc()
	observability.ResolutionDuration.WithLabelValues(p.ID()).Observe(time.Since(start).Seconds())
	observability.ResolutionGraphSize.Observe(float64(len(w.flat)))

	r.logger.InfoContext(ctx, "Resolved {Package}: {Packages} packages, {Conflicts} conflicts in {Duration}ms",
		spec.Name, result.TotalPackages, len(conflicts), time.Since(start).Milliseconds())

	return result, nil
}

// rootError reconstructs the typed error for an unresolvable root. The
// walk caches the underlying failure; constraint mismatches surface as
// PackageNotFound.
func (r *Resolver) rootError(ctx context.Context, w *walker, p provider.Provider, spec provider.Spec, root *DependencyNode) error {
	if _, err := w.cache.Versions(ctx, p, spec.Name); err != nil {
		return provider.Translate(p.ID(), spec.Name, err)
	}
	return provider.NewError(provider.CodePackageNotFound, p.ID(), spec.Name, root.ConflictReason)
}

func packageRefs(winners map[string]winner) []PackageRef {
	out := make([]PackageRef, 0, len(winners))
	for _, win := range winners {
		out = append(out, PackageRef{Name: win.name, Provider: win.provider, Version: win.version})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Provider < out[j].Provider
	})
	return out
}

// totalSize sums the reported sizes of the winning versions.
func (w *walker) totalSize(winners map[string]winner) int64 {
	var total int64
	w.cache.mu.Lock()
	defer w.cache.mu.Unlock()

	for _, win := range winners {
		e, ok := w.cache.versions["v|"+win.provider+":"+win.name]
		if !ok || e.err != nil {
			continue
		}
		for _, v := range e.versions {
			if v.Version == win.version {
				total += v.Size
				break
			}
		}
	}
	return total
}
