// Package observability wires OpenTelemetry tracing and metrics.
//
// With observability.enabled the service exports spans and metrics over
// OTLP/HTTP; otherwise the otel globals stay no-op and every instrument
// below is safe to use.
//
//	ctx, span := observability.StartSpan(ctx, "session.login")
//	defer span.End()
//
//	m, _ := observability.NewSessionMetrics(observability.Meter("session"))
//	m.RecordLogin(ctx, observability.OutcomeSuccess)
package observability
