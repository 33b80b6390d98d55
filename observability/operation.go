package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Operation tracks one traced and measured service operation.
type Operation struct {
	Name      string
	UserID    string
	StartTime time.Time
	metrics   *Metrics
	span      trace.Span
}

type operationContextKey struct{}

// StartOperation opens a span named name and returns a context carrying it.
// If metrics is nil, metric recording is silently skipped.
func StartOperation(ctx context.Context, name, userID string, metrics *Metrics) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, name)
	span.SetAttributes(attribute.String(AttrOperationName, name))
	if userID != "" {
		span.SetAttributes(attribute.String(AttrUserID, userID))
	}

	op := &Operation{
		Name:      name,
		UserID:    userID,
		StartTime: time.Now(),
		metrics:   metrics,
		span:      span,
	}
	return context.WithValue(ctx, operationContextKey{}, op), op
}

// OperationFromContext returns the innermost Operation in ctx, or nil.
func OperationFromContext(ctx context.Context) *Operation {
	if op, ok := ctx.Value(operationContextKey{}).(*Operation); ok {
		return op
	}
	return nil
}

// End closes the span and records the operation outcome.
func (op *Operation) End(ctx context.Context, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		op.span.RecordError(err)
		op.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	duration := op.Duration()
	op.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	op.span.End()

	op.metrics.RecordOperation(ctx, op.Name, status, duration)
}

// Duration returns the elapsed time since the operation started.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.StartTime)
}
