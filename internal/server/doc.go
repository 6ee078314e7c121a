// Package server provides the shared server context and the HTTP side
// services of the MCP server: health check endpoints for liveness and
// readiness probes, and a dedicated Prometheus metrics listener.
package server
