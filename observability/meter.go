package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Outcomes recorded on session counters.
const (
	OutcomeSuccess       = "success"
	OutcomeUserNotFound  = "user_not_found"
	OutcomeBadCredential = "bad_credential"
	OutcomeInvalidToken  = "invalid_token"
	OutcomeConflict      = "conflict"
	OutcomeInvalidInput  = "invalid_input"
	OutcomeError         = "error"
)

func newMeterProvider(ctx context.Context, cfg *Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricInterval))
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	), nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// SessionMetrics holds the session service instruments.
type SessionMetrics struct {
	loginTotal     metric.Int64Counter
	refreshTotal   metric.Int64Counter
	registerTotal  metric.Int64Counter
	verifyDuration metric.Float64Histogram
}

// NewSessionMetrics creates the session instruments on meter.
func NewSessionMetrics(meter metric.Meter) (*SessionMetrics, error) {
	loginTotal, err := meter.Int64Counter("session.login.total",
		metric.WithDescription("Login attempts by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating session.login.total counter: %w", err)
	}

	refreshTotal, err := meter.Int64Counter("session.refresh.total",
		metric.WithDescription("Refresh attempts by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating session.refresh.total counter: %w", err)
	}

	registerTotal, err := meter.Int64Counter("session.register.total",
		metric.WithDescription("Registration attempts by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating session.register.total counter: %w", err)
	}

	verifyDuration, err := meter.Float64Histogram("session.password.duration",
		metric.WithDescription("Time spent hashing or verifying passwords, including queueing"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating session.password.duration histogram: %w", err)
	}

	return &SessionMetrics{
		loginTotal:     loginTotal,
		refreshTotal:   refreshTotal,
		registerTotal:  registerTotal,
		verifyDuration: verifyDuration,
	}, nil
}

func outcomeAttr(outcome string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String(AttrOutcome, outcome))
}

// RecordLogin counts a login attempt. Nil receivers are ignored.
func (m *SessionMetrics) RecordLogin(ctx context.Context, outcome string) {
	if m != nil {
		m.loginTotal.Add(ctx, 1, outcomeAttr(outcome))
	}
}

// RecordRefresh counts a refresh attempt.
func (m *SessionMetrics) RecordRefresh(ctx context.Context, outcome string) {
	if m != nil {
		m.refreshTotal.Add(ctx, 1, outcomeAttr(outcome))
	}
}

// RecordRegister counts a registration attempt.
func (m *SessionMetrics) RecordRegister(ctx context.Context, outcome string) {
	if m != nil {
		m.registerTotal.Add(ctx, 1, outcomeAttr(outcome))
	}
}

// RecordPassword records the duration of a pooled hash or verify call.
func (m *SessionMetrics) RecordPassword(ctx context.Context, op string, d time.Duration) {
	if m != nil {
		m.verifyDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("op", op)))
	}
}

// HTTPMetrics holds per-request HTTP instruments.
type HTTPMetrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestActive   metric.Int64UpDownCounter
}

// NewHTTPMetrics creates the HTTP instruments on meter.
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requestTotal, err := meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.server.request.total counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.server.request.duration histogram: %w", err)
	}

	requestActive, err := meter.Int64UpDownCounter("http.server.request.active",
		metric.WithDescription("Number of in-flight HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.server.request.active counter: %w", err)
	}

	return &HTTPMetrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestActive:   requestActive,
	}, nil
}

// RecordRequestStart increments the in-flight count.
func (m *HTTPMetrics) RecordRequestStart(ctx context.Context) {
	m.requestActive.Add(ctx, 1)
}

// RecordRequestEnd decrements the in-flight count and records the request.
func (m *HTTPMetrics) RecordRequestEnd(ctx context.Context, method, route string, status int, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.requestActive.Add(ctx, -1)
	m.requestTotal.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, d.Seconds(), attrs)
}
