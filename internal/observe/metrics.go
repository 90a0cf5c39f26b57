// Package observe holds the kiosk's OpenTelemetry metric instruments.
//
// Instruments are created from a [metric.MeterProvider] so tests can pass a
// provider backed by a ManualReader. [DefaultMetrics] uses the global provider,
// which [InitProvider] wires to a Prometheus exporter.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "talk2order"

// Capture outcomes recorded on the attempts counter.
const (
	OutcomeMatched        = "matched"
	OutcomeNone           = "none"
	OutcomeNoMatch        = "no_match"
	OutcomeTimeout        = "timeout"
	OutcomeUnintelligible = "unintelligible"
	OutcomeServiceError   = "service_error"
)

type Metrics struct {
	// CaptureAttempts counts listen-and-match attempts by step and outcome.
	CaptureAttempts metric.Int64Counter

	TranscriptionDuration metric.Float64Histogram
	SpeechDuration        metric.Float64Histogram

	// OrdersCompleted counts orders that reached Closing, by payment method.
	OrdersCompleted metric.Int64Counter

	OrderTotal metric.Float64Histogram

	ActiveSessions metric.Int64UpDownCounter
}

var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30,
}

var totalBuckets = []float64{
	0, 5, 10, 15, 20, 30, 50,
}

func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.CaptureAttempts, err = m.Int64Counter("talk2order.capture.attempts",
		metric.WithDescription("Listen-and-match attempts by dialogue step and outcome."),
	); err != nil {
		return nil, err
	}
	if met.TranscriptionDuration, err = m.Float64Histogram("talk2order.transcription.duration",
		metric.WithDescription("Time from listen start to transcript or failure."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SpeechDuration, err = m.Float64Histogram("talk2order.speech.duration",
		metric.WithDescription("Time spent speaking a line to the customer."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.OrdersCompleted, err = m.Int64Counter("talk2order.orders.completed",
		metric.WithDescription("Orders that reached the closing message, by payment method."),
	); err != nil {
		return nil, err
	}
	if met.OrderTotal, err = m.Float64Histogram("talk2order.order.total",
		metric.WithDescription("Total cost of completed orders."),
		metric.WithUnit("USD"),
		metric.WithExplicitBucketBoundaries(totalBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("talk2order.active_sessions",
		metric.WithDescription("Ordering sessions currently in progress."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level instance built on the global
// meter provider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

func (m *Metrics) RecordCaptureAttempt(ctx context.Context, step, outcome string) {
	m.CaptureAttempts.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("step", step),
			attribute.String("outcome", outcome),
		),
	)
}

func (m *Metrics) RecordOrderCompleted(ctx context.Context, payment, dining string, total float64) {
	attrs := metric.WithAttributes(
		attribute.String("payment", payment),
		attribute.String("dining", dining),
	)
	m.OrdersCompleted.Add(ctx, 1, attrs)
	m.OrderTotal.Record(ctx, total, attrs)
}
