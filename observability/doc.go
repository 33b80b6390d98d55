// Package observability wires OpenTelemetry metrics and tracing.
//
// Export goes over OTLP HTTP and is off until an endpoint is configured.
// Instruments and spans are always created against the otel globals, so code
// can record unconditionally:
//
//	metrics, err := observability.NewMetrics(observability.Meter("montessa"))
//
//	ctx, op := observability.StartOperation(ctx, "messaging.send", userID, metrics)
//	err := store(ctx, msg)
//	op.End(ctx, err)
//
// Component installs the providers on Start and flushes them on Stop.
package observability
