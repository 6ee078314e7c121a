package server

import (
	"context"
	"sync"

	"github.com/calmcp/calmcp/internal/calendar"
	"github.com/calmcp/calmcp/internal/google"
	"github.com/calmcp/calmcp/internal/instrumentation"
)

// ServerContext holds the shared state for the MCP server: the credential
// manager, the lazily-created Calendar client, and the instrumentation
// hooks. Tool invocations themselves are stateless; this is the only shared
// mutable state besides the token bundle the manager owns.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	credentials    *google.Manager
	calendarClient calendar.API

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context around the credential
// manager. The Calendar client is not built here; it is created on first
// use so the server can start before the operator has authorized.
func NewServerContext(ctx context.Context, credentials *google.Manager) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:         shutdownCtx,
		cancel:      cancel,
		credentials: credentials,
	}, nil
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Credentials returns the credential manager.
func (sc *ServerContext) Credentials() *google.Manager {
	return sc.credentials
}

// CalendarClient returns the Calendar client, creating and caching it on
// first use. Creation fails with an AuthError when no usable credential
// exists yet.
func (sc *ServerContext) CalendarClient() (calendar.API, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.calendarClient != nil {
		return sc.calendarClient, nil
	}

	client, err := calendar.NewClient(sc.ctx, sc.credentials)
	if err != nil {
		return nil, err
	}

	sc.calendarClient = client
	return client, nil
}

// SetCalendarClient sets the Calendar client. Used by tests to substitute
// a fake API implementation.
func (sc *ServerContext) SetCalendarClient(client calendar.API) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.calendarClient = client
}

// Metrics returns the metrics recorder, or nil if instrumentation is not
// configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder for tool instrumentation.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// AuditLogger returns the audit logger, or nil if not configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger for tool invocations.
func (sc *ServerContext) SetAuditLogger(l *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = l
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
