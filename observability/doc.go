// Package observability wires OpenTelemetry tracing and metrics.
//
// Both providers are opt-in and export over OTLP/HTTP. When disabled, the
// global no-op providers stay in place, so StartSpan and NewMetrics are
// always safe to call:
//
//	ctx, span := observability.StartSpan(ctx, "clinic.room.create")
//	defer span.End()
package observability
