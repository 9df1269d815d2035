// Package resolver builds dependency graphs across provider backends,
// detects version conflicts, and plans a deterministic install order.
package resolver

import "fmt"

// PackageRef identifies a package within one provider's namespace.
// Identity is (Provider, Name); Version is a point-in-time attribute.
type PackageRef struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Version  string `json:"version,omitempty"`
}

func (r PackageRef) Key() string { return r.Provider + ":" + r.Name }

func (r PackageRef) String() string {
	if r.Version == "" {
		return r.Key()
	}
	return fmt.Sprintf("%s:%s@%s", r.Provider, r.Name, r.Version)
}

// DependencyNode is one vertex in the resolution graph. The same package
// reached through several paths appears as a node on each path; metadata
// lookups behind those duplicates are shared within the resolve call.
type DependencyNode struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	Constraint string `json:"constraint,omitempty"`
	Provider   string `json:"provider"`

	Dependencies []*DependencyNode `json:"-"`

	// IsDirect marks the root and its immediate dependencies.
	IsDirect bool `json:"is_direct"`

	// IsInstalled reports whether any version is currently installed.
	IsInstalled bool `json:"is_installed"`

	// IsConflict marks nodes that could not resolve cleanly; ConflictReason
	// says why.
	IsConflict     bool   `json:"is_conflict"`
	ConflictReason string `json:"conflict_reason,omitempty"`

	// Depth is the distance from the root (root = 0).
	Depth int `json:"depth"`
}

func (n *DependencyNode) key() string { return n.Provider + ":" + n.Name }

// Conflict records a package required at incompatible version constraints
// by different paths.
type Conflict struct {
	PackageName string `json:"package_name"`

	// RequiredBy lists the direct requesters (parent package names).
	RequiredBy []string `json:"required_by"`

	// Versions lists the distinct constraint strings in conflict.
	Versions []string `json:"versions"`

	// Resolution is a suggested fix when a single version satisfies every
	// constraint; empty when the conflict is terminal.
	Resolution string `json:"resolution,omitempty"`
}

// ResolutionResult is the complete outcome of one resolve call. It is a
// request-scoped value object: built fresh per call, never mutated after
// return.
type ResolutionResult struct {
	// Success is true when the root resolved and every conflict carries a
	// resolution.
	Success bool `json:"success"`

	// Packages lists the unique resolved packages, one entry per
	// (provider, name).
	Packages []PackageRef `json:"packages"`

	// Tree is the flattened graph in depth-first pre-order. Nodes keep
	// their nested Dependencies, so Tree[0] is the root of the nested
	// form.
	Tree []*DependencyNode `json:"tree"`

	Conflicts []Conflict `json:"conflicts"`

	// InstallOrder is a topological order of package names: no entry
	// depends on an entry later in the list. Ties break alphabetically.
	InstallOrder []string `json:"install_order"`

	TotalPackages int `json:"total_packages"`

	// TotalSize is the sum of resolved package sizes in bytes, 0 when no
	// provider reported sizes.
	TotalSize int64 `json:"total_size,omitempty"`
}
