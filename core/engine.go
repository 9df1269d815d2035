// Package core wires the provider registry, dependency resolver, and
// batch executor into the engine facade the CLI consumes.
package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/unipkg/unipkg/batch"
	unihttp "github.com/unipkg/unipkg/http"
	"github.com/unipkg/unipkg/observability"
	"github.com/unipkg/unipkg/provider"
	"github.com/unipkg/unipkg/resolver"
)

// Engine exposes the four engine operations: dependency resolution and
// the three batch call shapes.
type Engine struct {
	registry *provider.Registry
	resolver *resolver.Resolver
	batch    *batch.Executor
	logger   observability.Logger
}

// Config holds engine configuration.
type Config struct {
	// Registry overrides the provider registry. Nil builds the standard
	// registry with the npm, pip, cargo, and gem adapters sharing one
	// HTTP client.
	Registry *provider.Registry

	// DefaultProvider handles unqualified package names. Empty leaves no
	// default configured, making unqualified names an error.
	DefaultProvider string

	// Logger is used across all components. Nil uses NullLogger.
	Logger observability.Logger

	// MaxWorkers bounds batch parallelism; <= 0 uses the batch default.
	MaxWorkers int

	// ItemTimeout bounds each batch item; <= 0 uses the batch default.
	ItemTimeout time.Duration
}

// NewEngine creates the engine, building the standard provider registry
// when none is supplied.
func NewEngine(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NewNullLogger()
	}

	registry := cfg.Registry
	if registry == nil {
		httpCfg := unihttp.DefaultConfig()
		httpCfg.Logger = logger
		client := unihttp.NewClient(httpCfg)

		registry = provider.NewRegistry()
		registry.Register(provider.NewNpmProvider(provider.NpmConfig{HTTPClient: client}))
		registry.Register(provider.NewPipProvider(provider.PipConfig{HTTPClient: client}))
		registry.Register(provider.NewCargoProvider(provider.CargoConfig{HTTPClient: client}))
		registry.Register(provider.NewGemProvider(provider.GemConfig{HTTPClient: client}))
	}

	if cfg.DefaultProvider != "" {
		if err := registry.SetDefault(cfg.DefaultProvider); err != nil {
			return nil, err
		}
	}

	return &Engine{
		registry: registry,
		resolver: resolver.New(registry, logger),
		batch: batch.NewExecutor(batch.Config{
			Registry:    registry,
			Logger:      logger,
			MaxWorkers:  cfg.MaxWorkers,
			ItemTimeout: cfg.ItemTimeout,
		}),
		logger: logger,
	}, nil
}

// Registry returns the engine's provider registry.
func (e *Engine) Registry() *provider.Registry { return e.registry }

// ResolveDependencies builds the dependency graph for a package id of the
// form "[provider:]name[@version]". The returned error is non-nil only
// for malformed ids or an unresolvable root; branch failures and
// conflicts are reported inside the result.
func (e *Engine) ResolveDependencies(ctx context.Context, packageID string) (*resolver.ResolutionResult, error) {
	spec, err := provider.ParseSpec(packageID)
	if err != nil {
		return &resolver.ResolutionResult{Conflicts: []resolver.Conflict{}}, err
	}

	ctx, span := observability.StartResolveSpan(ctx, spec.Provider, spec.Name)
	result, err := e.resolver.Resolve(ctx, spec)
	observability.EndSpan(span, err)
	return result, err
}

// BatchInstall installs packages with per-item isolation.
func (e *Engine) BatchInstall(ctx context.Context, packages []string, dryRun, force bool) *batch.Result {
	ctx, span := observability.StartBatchSpan(ctx, string(batch.ActionInstall), uuid.NewString(), len(packages), dryRun)
	result := e.batch.Install(ctx, packages, batch.Options{DryRun: dryRun, Force: force})
	observability.EndSpan(span, nil)
	return result
}

// BatchUninstall removes packages with per-item isolation.
func (e *Engine) BatchUninstall(ctx context.Context, packages []string, force bool) *batch.Result {
	ctx, span := observability.StartBatchSpan(ctx, string(batch.ActionUninstall), uuid.NewString(), len(packages), false)
	result := e.batch.Uninstall(ctx, packages, force)
	observability.EndSpan(span, nil)
	return result
}

// BatchUpdate upgrades the given packages, or every installed package
// across all providers when the list is empty.
func (e *Engine) BatchUpdate(ctx context.Context, packages []string) *batch.Result {
	ctx, span := observability.StartBatchSpan(ctx, string(batch.ActionUpdate), uuid.NewString(), len(packages), false)
	result := e.batch.Update(ctx, packages)
	observability.EndSpan(span, nil)
	return result
}
