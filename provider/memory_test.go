package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryProvider(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider("npm")
	p.AddPackage("lodash", "4.17.20")
	p.AddPackage("lodash", "4.17.21")
	p.AddPackage("express", "4.18.0", Dependency{Name: "lodash", Constraint: "^4.17.0"})

	versions, err := p.ListVersions(ctx, "lodash")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "4.17.20", versions[0].Version)

	deps, err := p.GetDependencies(ctx, "express", "4.18.0")
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "lodash", deps[0].Name)

	_, err = p.ListVersions(ctx, "unknown")
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodePackageNotFound, e.Code)

	// Install with empty version picks the newest published.
	require.NoError(t, p.Install(ctx, "lodash", ""))
	v, ok2, err := p.InstalledVersion(ctx, "lodash")
	require.NoError(t, err)
	assert.True(t, ok2)
	assert.Equal(t, "4.17.21", v)
	assert.Equal(t, []string{"lodash@4.17.21"}, p.Installs())

	require.NoError(t, p.Uninstall(ctx, "lodash"))
	assert.Equal(t, []string{"lodash"}, p.Removals())

	err = p.Uninstall(ctx, "lodash")
	e, ok = AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodePackageNotFound, e.Code)
}

func TestMemoryProvider_Pinned(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider("pip")
	p.SetInstalled("requests", "2.30.0")
	p.Pin("requests")

	installed, err := p.ListInstalled(ctx)
	require.NoError(t, err)
	require.Len(t, installed, 1)
	assert.True(t, installed[0].Pinned)
}
