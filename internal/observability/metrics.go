package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "stitchql"

// GraphQLMetrics holds instruments for inbound GraphQL requests.
type GraphQLMetrics struct {
	requestDuration metric.Float64Histogram
	requestCounter  metric.Int64Counter
	errorCounter    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
}

// NewGraphQLMetrics creates request instruments on the global meter.
func NewGraphQLMetrics() (*GraphQLMetrics, error) {
	meter := otel.Meter(meterName)

	requestDuration, err := meter.Float64Histogram(
		"graphql.request.duration",
		metric.WithDescription("Duration of GraphQL requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestCounter, err := meter.Int64Counter(
		"graphql.request.count",
		metric.WithDescription("Total number of GraphQL requests"),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"graphql.request.errors",
		metric.WithDescription("Total number of GraphQL requests that returned errors"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"graphql.request.active",
		metric.WithDescription("Number of GraphQL requests currently in flight"),
	)
	if err != nil {
		return nil, err
	}

	return &GraphQLMetrics{
		requestDuration: requestDuration,
		requestCounter:  requestCounter,
		errorCounter:    errorCounter,
		activeRequests:  activeRequests,
	}, nil
}

// RequestStarted increments the in-flight gauge.
func (m *GraphQLMetrics) RequestStarted(ctx context.Context) {
	m.activeRequests.Add(ctx, 1)
}

// RequestFinished decrements the in-flight gauge.
func (m *GraphQLMetrics) RequestFinished(ctx context.Context) {
	m.activeRequests.Add(ctx, -1)
}

// RecordRequest records one completed request.
func (m *GraphQLMetrics) RecordRequest(ctx context.Context, duration time.Duration, operation string, statusCode int, errored bool) {
	attrs := metric.WithAttributes(
		attribute.String("graphql.operation.type", operation),
		attribute.Int("http.response.status_code", statusCode),
	)
	m.requestCounter.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, duration.Seconds(), attrs)
	if errored {
		m.errorCounter.Add(ctx, 1, attrs)
	}
}

// DelegationMetrics holds instruments for cross-subschema dispatches.
type DelegationMetrics struct {
	dispatchDuration metric.Float64Histogram
	dispatchCounter  metric.Int64Counter
	errorCounter     metric.Int64Counter
	activeDispatches metric.Int64UpDownCounter
}

// NewDelegationMetrics creates dispatch instruments on the global meter.
func NewDelegationMetrics() (*DelegationMetrics, error) {
	meter := otel.Meter(meterName)

	dispatchDuration, err := meter.Float64Histogram(
		"delegation.dispatch.duration",
		metric.WithDescription("Duration of delegation dispatches in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	dispatchCounter, err := meter.Int64Counter(
		"delegation.dispatch.count",
		metric.WithDescription("Total number of delegation dispatches"),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"delegation.dispatch.errors",
		metric.WithDescription("Total number of delegation dispatches that returned errors"),
	)
	if err != nil {
		return nil, err
	}

	activeDispatches, err := meter.Int64UpDownCounter(
		"delegation.dispatch.active",
		metric.WithDescription("Number of delegation dispatches currently in flight"),
	)
	if err != nil {
		return nil, err
	}

	return &DelegationMetrics{
		dispatchDuration: dispatchDuration,
		dispatchCounter:  dispatchCounter,
		errorCounter:     errorCounter,
		activeDispatches: activeDispatches,
	}, nil
}

// DispatchStarted increments the in-flight gauge for a subschema.
func (m *DelegationMetrics) DispatchStarted(ctx context.Context, subschema string) {
	m.activeDispatches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("delegation.subschema", subschema),
	))
}

// DispatchFinished decrements the in-flight gauge for a subschema.
func (m *DelegationMetrics) DispatchFinished(ctx context.Context, subschema string) {
	m.activeDispatches.Add(ctx, -1, metric.WithAttributes(
		attribute.String("delegation.subschema", subschema),
	))
}

// RecordDispatch records one completed dispatch.
func (m *DelegationMetrics) RecordDispatch(ctx context.Context, duration time.Duration, subschema string, errored bool) {
	attrs := metric.WithAttributes(
		attribute.String("delegation.subschema", subschema),
		attribute.Bool("delegation.errored", errored),
	)
	m.dispatchCounter.Add(ctx, 1, attrs)
	m.dispatchDuration.Record(ctx, duration.Seconds(), attrs)
	if errored {
		m.errorCounter.Add(ctx, 1, attrs)
	}
}
