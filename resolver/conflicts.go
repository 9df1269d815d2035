package resolver

import (
	"fmt"
	"sort"

	"github.com/unipkg/unipkg/version"
)

// winner is the agreed version for one (provider, name) after conflict
// analysis.
type winner struct {
	name     string
	provider string
	version  string
}

// analyze inspects every package reached on more than one path, checks
// whether the collected constraints are mutually satisfiable, and picks
// the winning version per package.
//
// A package whose paths requested different constraint strings is only a
// conflict when the paths disagree on the resolved version. When a single
// version satisfies every constraint the conflict carries a resolution
// and does not fail the resolve; when the constraint sets are disjoint
// the conflict is terminal.
func (w *walker) analyze() ([]Conflict, map[string]winner) {
	keys := make([]string, 0, len(w.nodes))
	for key := range w.nodes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var conflicts []Conflict
	winners := make(map[string]winner)

	for _, key := range keys {
		nodes := w.nodes[key]
		name := nodes[0].Name
		providerID := nodes[0].Provider

		constraints := distinctConstraints(nodes)
		resolved := distinctVersions(nodes)

		if len(resolved) == 0 {
			// Every path failed before picking a version; walk-time
			// conflict entries already cover it.
			continue
		}

		if len(constraints) <= 1 || len(resolved) == 1 {
			winners[key] = winner{name: name, provider: providerID, version: resolved[len(resolved)-1]}
			continue
		}

		// Paths disagree. Try the intersection of all constraints against
		// the published versions.
		parsed := make([]*version.Constraint, 0, len(constraints))
		for _, c := range constraints {
			parsed = append(parsed, version.ParseConstraint(providerID, c))
		}
		available := w.cache.available(providerID, name)

		conflict := Conflict{
			PackageName: name,
			RequiredBy:  requesters(w.reqs[key]),
			Versions:    constraints,
		}

		if best, ok := version.BestMatch(providerID, parsed, available); ok {
			conflict.Resolution = fmt.Sprintf("use version %s which satisfies all constraints", best)
			winners[key] = winner{name: name, provider: providerID, version: best}
			for _, n := range nodes {
				if n.Version != "" && n.Version != best {
					w.markConflict(n, fmt.Sprintf("version conflict, resolved to %s", best))
				}
			}
		} else {
			// Terminal: no version satisfies all requesters. Keep the
			// highest path-resolved version so downstream reporting has
			// something concrete to show.
			winners[key] = winner{name: name, provider: providerID, version: resolved[len(resolved)-1]}
			for _, n := range nodes {
				if n.Version != "" {
					w.markConflict(n, "unresolvable version conflict")
				}
			}
		}

		conflicts = append(conflicts, conflict)
	}

	return conflicts, winners
}

// available returns the cached published versions for a package, empty
// when the fetch failed.
func (c *metaCache) available(providerID, name string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.versions["v|"+providerID+":"+name]
	if !ok || e.err != nil {
		return nil
	}
	out := make([]string, 0, len(e.versions))
	for _, v := range e.versions {
		out = append(out, v.Version)
	}
	return out
}

func distinctConstraints(nodes []*DependencyNode) []string {
	var out []string
	for _, n := range nodes {
		out = appendUnique(out, n.Constraint)
	}
	sort.Strings(out)
	return out
}

// distinctVersions returns the distinct resolved versions, sorted
// ascending by the provider's version ordering.
func distinctVersions(nodes []*DependencyNode) []string {
	var out []string
	for _, n := range nodes {
		if n.Version != "" {
			out = appendUnique(out, n.Version)
		}
	}
	if len(out) > 1 {
		providerID := nodes[0].Provider
		sort.Slice(out, func(i, j int) bool {
			return version.Compare(providerID, out[i], out[j]) < 0
		})
	}
	return out
}

func requesters(reqs []requirement) []string {
	var out []string
	for _, r := range reqs {
		out = appendUnique(out, r.requiredBy)
	}
	sort.Strings(out)
	return out
}
