package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "blog/internal/store"

type observer struct {
	system   string
	logger   *slog.Logger
	tracer   trace.Tracer
	slow     time.Duration
	count    metric.Int64Counter
	duration metric.Float64Histogram
	errs     metric.Int64Counter
}

// newObserver wires the global OpenTelemetry providers; they are no-ops
// until the process installs an SDK.
func newObserver(system string) *observer {
	meter := otel.Meter(instrumentationName)
	count, _ := meter.Int64Counter("blog.db.query.count",
		metric.WithDescription("Number of SQL statements executed"),
		metric.WithUnit("{query}"),
	)
	duration, _ := meter.Float64Histogram("blog.db.query.duration",
		metric.WithDescription("SQL statement duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000),
	)
	errs, _ := meter.Int64Counter("blog.db.query.errors",
		metric.WithDescription("Number of failed SQL statements"),
		metric.WithUnit("{error}"),
	)
	return &observer{
		system:   system,
		tracer:   otel.Tracer(instrumentationName),
		slow:     200 * time.Millisecond,
		count:    count,
		duration: duration,
		errs:     errs,
	}
}

func (o *observer) start(ctx context.Context, op, query string) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, "store."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", o.system),
			attribute.String("db.operation", op),
			attribute.String("db.statement", query),
		),
	)
}

func (o *observer) finish(ctx context.Context, span trace.Span, op, query string, d time.Duration, err error) {
	defer span.End()

	// a missing row is an answer, not a failure
	failed := err != nil && !errors.Is(err, sql.ErrNoRows)

	attrs := metric.WithAttributes(
		attribute.String("db.system", o.system),
		attribute.String("db.operation", op),
	)
	if o.count != nil {
		o.count.Add(ctx, 1, attrs)
	}
	if o.duration != nil {
		o.duration.Record(ctx, float64(d.Microseconds())/1000, attrs)
	}
	if failed {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if o.errs != nil {
			o.errs.Add(ctx, 1, attrs)
		}
	}

	if o.logger == nil {
		return
	}
	logAttrs := []slog.Attr{
		slog.String("op", op),
		slog.Duration("duration", d),
	}
	switch {
	case failed:
		o.logger.LogAttrs(ctx, slog.LevelError, "query failed",
			append(logAttrs, slog.String("query", query), slog.String("error", err.Error()))...)
	case d > o.slow:
		o.logger.LogAttrs(ctx, slog.LevelWarn, "slow query", append(logAttrs, slog.String("query", query))...)
	default:
		o.logger.LogAttrs(ctx, slog.LevelDebug, "query", logAttrs...)
	}
}
