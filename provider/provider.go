// Package provider defines the uniform adapter interface over
// package-manager backends (npm, pip, cargo, gem) plus the registry that
// dispatches on provider id.
//
// Adapters query version and dependency metadata from each ecosystem's
// public registry API and drive installs through the package manager's own
// CLI. All failures are translated into the taxonomy in errors.go at this
// boundary; nothing above it sees raw transport or exec errors.
package provider

import "context"

// VersionInfo describes one published version of a package.
type VersionInfo struct {
	// Version is the raw version string as the registry reports it.
	Version string

	// Size is the package size in bytes, 0 when the registry does not
	// report one.
	Size int64
}

// Dependency is one declared dependency of a package version.
type Dependency struct {
	// Name of the required package.
	Name string

	// Constraint in the provider's native syntax.
	Constraint string
}

// InstalledPackage describes one locally installed package.
type InstalledPackage struct {
	Name    string
	Version string

	// Pinned packages are held at their current version and skipped by
	// bulk updates.
	Pinned bool
}

// Provider is the uniform interface to a package-manager backend.
//
// Implementations must translate every failure into a *Error; methods
// must honor ctx cancellation on network and subprocess calls.
type Provider interface {
	// ID returns the provider identifier ("npm", "pip", "cargo", "gem").
	ID() string

	// ListVersions returns all published versions, oldest first.
	ListVersions(ctx context.Context, name string) ([]VersionInfo, error)

	// GetDependencies returns the dependency declarations of one version.
	GetDependencies(ctx context.Context, name, version string) ([]Dependency, error)

	// InstalledVersion reports the locally installed version, if any.
	InstalledVersion(ctx context.Context, name string) (string, bool, error)

	// ListInstalled returns all locally installed packages.
	ListInstalled(ctx context.Context) ([]InstalledPackage, error)

	// Install installs a specific version. Empty version means latest.
	Install(ctx context.Context, name, version string) error

	// Uninstall removes an installed package.
	Uninstall(ctx context.Context, name string) error
}
