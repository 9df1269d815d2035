package resolver

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/unipkg/unipkg/observability"
	"github.com/unipkg/unipkg/provider"
	"github.com/unipkg/unipkg/version"
)

// MaxDepth bounds graph traversal. Real dependency trees stay far below
// it; hitting the bound means pathological or adversarial metadata, and
// the offending subtree degrades to a conflict entry instead of
// unbounded recursion.
const MaxDepth = 50

// prefetchWorkers bounds concurrent metadata prefetches per node.
const prefetchWorkers = 8

// requirement is one constraint placed on a package by one parent.
type requirement struct {
	requiredBy string
	constraint string
}

// walker builds the dependency graph for a single resolve call.
type walker struct {
	logger observability.Logger
	cache  *metaCache

	// reqs and nodes accumulate per (provider, name) key across all paths.
	reqs  map[string][]requirement
	nodes map[string][]*DependencyNode

	flat      []*DependencyNode
	conflicts []Conflict

	// conflictAt maps a walk-conflict dedupe key, which carries the
	// provider-qualified package key and the conflict kind, to its entry
	// index in conflicts.
	conflictAt map[string]int
}

func newWalker(logger observability.Logger) *walker {
	return &walker{
		logger:     logger,
		cache:      newMetaCache(),
		reqs:       make(map[string][]requirement),
		nodes:      make(map[string][]*DependencyNode),
		conflictAt: make(map[string]int),
	}
}

// walk resolves one package and recurses into its dependencies. It always
// returns a node; failures along a branch mark the node as a conflict
// instead of aborting the walk.
func (w *walker) walk(ctx context.Context, p provider.Provider, name, constraint, parent string, visiting map[string]bool, depth int) *DependencyNode {
	node := &DependencyNode{
		Name:       name,
		Constraint: constraint,
		Provider:   p.ID(),
		IsDirect:   depth <= 1,
		Depth:      depth,
	}
	w.flat = append(w.flat, node)

	key := node.key()
	if parent != "" {
		w.reqs[key] = append(w.reqs[key], requirement{requiredBy: parent, constraint: constraint})
	}
	w.nodes[key] = append(w.nodes[key], node)

	if visiting[key] {
		w.markConflict(node, "circular dependency")
		w.recordWalkConflict("cycle|"+key, name, parent, constraint)
		return node
	}

	if depth > MaxDepth {
		w.markConflict(node, "maximum dependency depth exceeded")
		w.recordWalkConflict("depth|"+key, name, parent, constraint)
		return node
	}

	versions, err := w.cache.Versions(ctx, p, name)
	if err != nil {
		w.markConflict(node, fmt.Sprintf("metadata unavailable: %v", err))
		w.recordWalkConflict("fetch|"+key, name, parent, constraint)
		return node
	}

	available := make([]string, 0, len(versions))
	for _, v := range versions {
		available = append(available, v.Version)
	}

	var cons *version.Constraint
	if depth == 0 && constraint != "" {
		// A version pinned in the package id selects exactly that
		// version; range expansion applies only to dependency
		// constraints read from metadata.
		cons = version.ExactVersion(p.ID(), constraint)
	} else {
		cons = version.ParseConstraint(p.ID(), constraint)
	}
	best, ok := version.BestMatch(p.ID(), []*version.Constraint{cons}, available)
	if !ok {
		w.markConflict(node, fmt.Sprintf("no published version satisfies %q", constraint))
		w.recordWalkConflict("nomatch|"+key+"|"+constraint, name, parent, constraint)
		return node
	}
	node.Version = best

	if _, installed, err := w.cache.Installed(ctx, p, name); err == nil {
		node.IsInstalled = installed
	} else {
		w.logger.DebugContext(ctx, "Installed-state query failed for {Package}: {Error}", key, err)
	}

	deps, err := w.cache.Deps(ctx, p, name, best)
	if err != nil {
		w.markConflict(node, fmt.Sprintf("metadata unavailable: %v", err))
		w.recordWalkConflict("fetch|"+key, name, parent, constraint)
		return node
	}

	// Warm the cache for all children before recursing. The recursion
	// itself stays sequential so node order, and therefore install-order
	// tie-breaking input, is deterministic.
	w.prefetch(ctx, p, deps)

	visiting[key] = true
	for _, dep := range deps {
		child := w.walk(ctx, p, dep.Name, dep.Constraint, name, visiting, depth+1)
		node.Dependencies = append(node.Dependencies, child)
	}
	delete(visiting, key)

	return node
}

func (w *walker) prefetch(ctx context.Context, p provider.Provider, deps []provider.Dependency) {
	if len(deps) < 2 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchWorkers)
	for _, dep := range deps {
		g.Go(func() error {
			// Results land in the cache; failures are cached as well and
			// surface when the sequential walk reaches the dependency.
			_, _ = w.cache.Versions(gctx, p, dep.Name)
			_, _, _ = w.cache.Installed(gctx, p, dep.Name)
			return nil
		})
	}
	_ = g.Wait()
}

func (w *walker) markConflict(node *DependencyNode, reason string) {
	node.IsConflict = true
	node.ConflictReason = reason
}

// recordWalkConflict appends a conflict entry discovered during traversal
// (cycles, depth bound, fetch failures, unsatisfiable constraints), once
// per dedupe key. Walk-time conflicts carry no resolution.
func (w *walker) recordWalkConflict(dedupeKey, name, parent, constraint string) {
	if i, ok := w.conflictAt[dedupeKey]; ok {
		// Merge the additional requester into this key's own entry only,
		// never into other entries that happen to share the name.
		w.conflicts[i].Versions = appendUnique(w.conflicts[i].Versions, constraint)
		if parent != "" {
			w.conflicts[i].RequiredBy = appendUnique(w.conflicts[i].RequiredBy, parent)
		}
		return
	}

	c := Conflict{PackageName: name, Versions: []string{constraint}}
	if parent != "" {
		c.RequiredBy = []string{parent}
	}
	w.conflictAt[dedupeKey] = len(w.conflicts)
	w.conflicts = append(w.conflicts, c)
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
