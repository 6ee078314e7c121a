package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrTool      = "tool"
	attrOperation = "operation"
	attrStatus    = "status"
)

// Metrics provides methods for recording observability metrics.
//
// A zero-value Metrics is a valid no-op recorder; all Record methods are safe
// to call when instrumentation is disabled.
type Metrics struct {
	// MCP tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// Calendar API metrics
	calendarAPIOperationsTotal   metric.Int64Counter
	calendarAPIOperationDuration metric.Float64Histogram

	// OAuth credential lifecycle metrics
	oauthTokenRefreshTotal metric.Int64Counter
	oauthConsentTotal      metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	m.calendarAPIOperationsTotal, err = meter.Int64Counter(
		"calendar_api_operations_total",
		metric.WithDescription("Total number of Google Calendar API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_api_operations_total counter: %w", err)
	}

	m.calendarAPIOperationDuration, err = meter.Float64Histogram(
		"calendar_api_operation_duration_seconds",
		metric.WithDescription("Google Calendar API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_api_operation_duration_seconds histogram: %w", err)
	}

	m.oauthTokenRefreshTotal, err = meter.Int64Counter(
		"oauth_token_refresh_total",
		metric.WithDescription("Total number of OAuth token refresh attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_refresh_total counter: %w", err)
	}

	m.oauthConsentTotal, err = meter.Int64Counter(
		"oauth_consent_total",
		metric.WithDescription("Total number of interactive OAuth consent flows"),
		metric.WithUnit("{flow}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_consent_total counter: %w", err)
	}

	return m, nil
}

// RecordToolInvocation records an MCP tool invocation with its outcome and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status),
	)

	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCalendarAPIOperation records a Google Calendar API operation with its
// outcome and duration. The operation label is the API method name, e.g.
// "events.list" or "calendarList.list".
func (m *Metrics) RecordCalendarAPIOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m == nil || m.calendarAPIOperationsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)

	m.calendarAPIOperationsTotal.Add(ctx, 1, attrs)
	m.calendarAPIOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordTokenRefresh records an OAuth token refresh attempt.
func (m *Metrics) RecordTokenRefresh(ctx context.Context, status string) {
	if m == nil || m.oauthTokenRefreshTotal == nil {
		return
	}

	m.oauthTokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrStatus, status),
	))
}

// RecordConsent records an interactive OAuth consent flow.
func (m *Metrics) RecordConsent(ctx context.Context, status string) {
	if m == nil || m.oauthConsentTotal == nil {
		return
	}

	m.oauthConsentTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrStatus, status),
	))
}
