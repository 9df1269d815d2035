package resolver

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/unipkg/unipkg/provider"
)

// metaCache memoizes provider metadata within a single resolve call so a
// package reached through several paths (diamond dependencies) is queried
// once. Concurrent prefetches of the same key coalesce through
// singleflight.
type metaCache struct {
	group singleflight.Group

	mu        sync.Mutex
	versions  map[string]*versionsEntry
	deps      map[string]*depsEntry
	installed map[string]*installedEntry
}

type versionsEntry struct {
	versions []provider.VersionInfo
	err      error
}

type depsEntry struct {
	deps []provider.Dependency
	err  error
}

type installedEntry struct {
	version   string
	installed bool
	err       error
}

func newMetaCache() *metaCache {
	return &metaCache{
		versions:  make(map[string]*versionsEntry),
		deps:      make(map[string]*depsEntry),
		installed: make(map[string]*installedEntry),
	}
}

// Versions returns the published versions of provider:name. Errors are
// cached too; a branch that failed once fails the same way on every path.
func (c *metaCache) Versions(ctx context.Context, p provider.Provider, name string) ([]provider.VersionInfo, error) {
	key := "v|" + p.ID() + ":" + name

	c.mu.Lock()
	if e, ok := c.versions[key]; ok {
		c.mu.Unlock()
		return e.versions, e.err
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		versions, err := p.ListVersions(ctx, name)
		e := &versionsEntry{versions: versions, err: err}
		c.mu.Lock()
		c.versions[key] = e
		c.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	e := v.(*versionsEntry)
	return e.versions, e.err
}

// Deps returns the dependency declarations of provider:name@version.
func (c *metaCache) Deps(ctx context.Context, p provider.Provider, name, version string) ([]provider.Dependency, error) {
	key := "d|" + p.ID() + ":" + name + "@" + version

	c.mu.Lock()
	if e, ok := c.deps[key]; ok {
		c.mu.Unlock()
		return e.deps, e.err
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		deps, err := p.GetDependencies(ctx, name, version)
		e := &depsEntry{deps: deps, err: err}
		c.mu.Lock()
		c.deps[key] = e
		c.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	e := v.(*depsEntry)
	return e.deps, e.err
}

// Installed returns the locally installed version of provider:name, queried
// once per unique package per resolve call.
func (c *metaCache) Installed(ctx context.Context, p provider.Provider, name string) (string, bool, error) {
	key := "i|" + p.ID() + ":" + name

	c.mu.Lock()
	if e, ok := c.installed[key]; ok {
		c.mu.Unlock()
		return e.version, e.installed, e.err
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		ver, ok, err := p.InstalledVersion(ctx, name)
		e := &installedEntry{version: ver, installed: ok, err: err}
		c.mu.Lock()
		c.installed[key] = e
		c.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return "", false, err
	}
	e := v.(*installedEntry)
	return e.version, e.installed, e.err
}
