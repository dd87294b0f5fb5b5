package wordpress

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "finitefield.org/hanko-blog/internal/wordpress"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)

	// Instruments stay nil when registration fails; recording is skipped then.
	variantAttempts, _ = meter.Int64Counter(
		"wordpress.graphql.variant.attempts",
		metric.WithDescription("GraphQL query variant attempts by outcome"),
	)
	variantLatency, _ = meter.Float64Histogram(
		"wordpress.graphql.variant.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("Latency in milliseconds of GraphQL query variant attempts"),
	)
)

const (
	outcomeOK    = "ok"
	outcomeEmpty = "undefined"
	outcomeError = "error"
)

// Variant pairs one request shape with the extractor that understands its response.
// Extract reports ok=false when the response carries no usable result; an empty result is still usable.
type Variant[T any] struct {
	Name      string
	Query     string
	Variables map[string]any
	Extract   func(data json.RawMessage) (result T, ok bool, err error)
}

// Resolve runs variants in order, one at a time, and returns the first usable result.
// Failures are logged as warnings and never returned; fallback is returned once every variant is exhausted.
func Resolve[T any](ctx context.Context, exec Executor, logger *zap.Logger, variants []Variant[T], fallback T) T {
	if logger == nil {
		logger = zap.NewNop()
	}
	for i, variant := range variants {
		result, ok, err := attempt(ctx, exec, variant)
		if err != nil {
			logger.Warn("graphql variant failed",
				zap.String("variant", variant.Name),
				zap.Int("attempt", i+1),
				zap.Int("variants", len(variants)),
				zap.Error(err),
			)
			continue
		}
		if ok {
			if i > 0 {
				logger.Debug("graphql variant succeeded after fallback", zap.String("variant", variant.Name), zap.Int("attempt", i+1))
			}
			return result
		}
	}
	return fallback
}

func attempt[T any](ctx context.Context, exec Executor, variant Variant[T]) (result T, ok bool, err error) {
	ctx, span := tracer.Start(ctx, "wordpress."+variant.Name)
	span.SetAttributes(attribute.String("graphql.operation.name", variant.Name))
	start := time.Now()
	defer func() {
		outcome := outcomeOK
		switch {
		case err != nil:
			outcome = outcomeError
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case !ok:
			outcome = outcomeEmpty
		}
		recordAttempt(ctx, variant.Name, outcome, time.Since(start))
		span.End()
	}()

	data, err := exec.Exec(ctx, variant.Query, variant.Variables)
	if err != nil {
		return result, false, err
	}
	if variant.Extract == nil {
		return result, false, fmt.Errorf("wordpress: variant %s has no extractor", variant.Name)
	}
	result, ok, err = variant.Extract(data)
	if err != nil {
		return result, false, fmt.Errorf("wordpress: decode %s: %w", variant.Name, err)
	}
	return result, ok, nil
}

func recordAttempt(ctx context.Context, variant, outcome string, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("graphql.operation.name", variant),
		attribute.String("outcome", outcome),
	)
	if variantAttempts != nil {
		variantAttempts.Add(ctx, 1, attrs)
	}
	if variantLatency != nil {
		variantLatency.Record(ctx, float64(d)/float64(time.Millisecond), attrs)
	}
}
