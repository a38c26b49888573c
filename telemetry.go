package gosolve

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for solve operations.
var (
	tracer = otel.Tracer("gosolve.solver")
	meter  = otel.Meter("gosolve.solver")
)

// Metrics for solve operations.
var (
	solveLatency     metric.Float64Histogram
	solveTotal       metric.Int64Counter
	strategySelected metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		solveLatency, err = meter.Float64Histogram(
			"gosolve_solve_duration_seconds",
			metric.WithDescription("Duration of top-level solve calls"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		solveTotal, err = meter.Int64Counter(
			"gosolve_solve_total",
			metric.WithDescription("Total number of top-level solve calls by status"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		strategySelected, err = meter.Int64Counter(
			"gosolve_strategy_selected_total",
			metric.WithDescription("Number of times each solving strategy was selected"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startSolveSpan creates a span for a top-level solve.
func startSolveSpan(ctx context.Context, kind, varName string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "AlgebraSolver."+kind,
		trace.WithAttributes(
			attribute.String("gosolve.var", varName),
		),
	)
}

// setSolveSpanResult sets the result attributes on a solve span.
func setSolveSpanResult(span trace.Span, res SolveResult) {
	span.SetAttributes(
		attribute.String("gosolve.status", res.Status.String()),
		attribute.String("gosolve.strategy", res.Strategy),
		attribute.Int("gosolve.solutions", len(res.Solutions)),
	)
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
	}
}

// recordSolveMetrics records metrics for a top-level solve.
func recordSolveMetrics(ctx context.Context, duration time.Duration, status Status) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("status", status.String()),
	)
	solveLatency.Record(ctx, duration.Seconds(), attrs)
	solveTotal.Add(ctx, 1, attrs)
}

// recordStrategy records the strategy picked by the dispatcher.
func recordStrategy(ctx context.Context, name string) {
	if err := initMetrics(); err != nil {
		return
	}
	strategySelected.Add(ctx, 1, metric.WithAttributes(
		attribute.String("strategy", name),
	))
}
