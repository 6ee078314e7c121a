// Package instrumentation provides OpenTelemetry-based observability for the
// MCP server: tool invocation metrics, Calendar API operation metrics, OAuth
// credential lifecycle counters, optional tracing, and audit logging of tool
// invocations.
//
// Metrics are exported through Prometheus by default, with OTLP and stdout
// exporters available for collector-based setups and local debugging.
package instrumentation
