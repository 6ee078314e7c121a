// Package common provides shared utilities for MCP tool implementations.
// It contains the instrumentation wrapper applied to every registered tool
// handler to ensure consistent metrics and audit logging.
package common
