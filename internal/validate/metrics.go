package validate

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("lessongen.validate")
	meter  = otel.Meter("lessongen.validate")
)

var (
	validateLatency metric.Float64Histogram
	validateTotal   metric.Int64Counter
	toolErrors      metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		validateLatency, err = meter.Float64Histogram(
			"validate_duration_seconds",
			metric.WithDescription("Duration of a full validation pass"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		validateTotal, err = meter.Int64Counter(
			"validate_total",
			metric.WithDescription("Total number of validation passes"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		toolErrors, err = meter.Int64Counter(
			"validate_tool_errors_total",
			metric.WithDescription("Errors reported per tool"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startValidateSpan(ctx context.Context, domain string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Validator.Validate",
		trace.WithAttributes(attribute.String("lesson.domain", domain)),
	)
}

func startToolSpan(ctx context.Context, tool string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Validator.runTool",
		trace.WithAttributes(attribute.String("tool.name", tool)),
	)
}

func setValidateSpanResult(span trace.Span, res Result) {
	span.SetAttributes(
		attribute.Bool("validate.valid", res.Valid),
		attribute.Int("validate.error_count", len(res.Errors)),
		attribute.StringSlice("validate.tools_run", res.ToolsRun),
	)
}

func recordValidateMetrics(ctx context.Context, domain string, duration time.Duration, valid bool) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.Bool("valid", valid),
	)
	validateLatency.Record(ctx, duration.Seconds(), attrs)
	validateTotal.Add(ctx, 1, attrs)
}

func recordToolError(ctx context.Context, tool string) {
	if err := initMetrics(); err != nil {
		return
	}
	toolErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("tool", tool)))
}
