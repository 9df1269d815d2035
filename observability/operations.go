package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer name for engine operations.
const TracerName = "github.com/unipkg/unipkg"

// Common attribute keys.
const (
	AttrProvider    = attribute.Key("unipkg.provider")
	AttrPackageName = attribute.Key("unipkg.package.name")
	AttrVersion     = attribute.Key("unipkg.package.version")
	AttrOperation   = attribute.Key("unipkg.operation")
	AttrBatchID     = attribute.Key("unipkg.batch.id")
	AttrDryRun      = attribute.Key("unipkg.batch.dry_run")
)

// StartResolveSpan starts a span for a dependency resolution.
func StartResolveSpan(ctx context.Context, provider, name string) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "resolve",
		trace.WithAttributes(
			AttrProvider.String(provider),
			AttrPackageName.String(name),
			AttrOperation.String("resolve"),
		),
	)
}

// StartBatchSpan starts a span for a batch operation.
func StartBatchSpan(ctx context.Context, action, batchID string, itemCount int, dryRun bool) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "batch."+action,
		trace.WithAttributes(
			AttrOperation.String(action),
			AttrBatchID.String(batchID),
			AttrDryRun.Bool(dryRun),
			attribute.Int("unipkg.batch.items", itemCount),
		),
	)
}

// StartProviderCallSpan starts a span for a single provider adapter call.
func StartProviderCallSpan(ctx context.Context, provider, operation, name string) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "provider."+operation,
		trace.WithAttributes(
			AttrProvider.String(provider),
			AttrPackageName.String(name),
			AttrOperation.String(operation),
		),
	)
}

// EndSpan finishes a span, recording err when non-nil.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
