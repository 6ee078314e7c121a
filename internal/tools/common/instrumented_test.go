package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/calmcp/calmcp/internal/instrumentation"
	"github.com/calmcp/calmcp/internal/server"
)

func newTestContext(t *testing.T) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewServerContext: %v", err)
	}
	return sc
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestInstrumentedToolHandler_PassthroughWithoutInstrumentation(t *testing.T) {
	sc := newTestContext(t)

	called := false
	handler := InstrumentedToolHandler("list_calendars", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("ok"), nil
	})

	result, err := handler(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("wrapped handler was not called")
	}
	if result.IsError {
		t.Error("expected success result")
	}
}

func TestInstrumentedToolHandler_AuditsSuccess(t *testing.T) {
	sc := newTestContext(t)

	var buf bytes.Buffer
	sc.SetAuditLogger(instrumentation.NewAuditLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	handler := InstrumentedToolHandler("list_upcoming_events", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("[]"), nil
	})

	if _, err := handler(context.Background(), callRequest(map[string]interface{}{"calendarId": "primary"})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "tool_executed") {
		t.Errorf("expected tool_executed audit entry, got %q", out)
	}
	if !strings.Contains(out, "tool=list_upcoming_events") {
		t.Errorf("expected tool attribute, got %q", out)
	}
	if !strings.Contains(out, "calendar_id=primary") {
		t.Errorf("expected calendar_id attribute, got %q", out)
	}
}

func TestInstrumentedToolHandler_ErrorResultAuditedAsFailure(t *testing.T) {
	sc := newTestContext(t)

	var buf bytes.Buffer
	sc.SetAuditLogger(instrumentation.NewAuditLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	handler := InstrumentedToolHandler("get_event_details", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("event not found"), nil
	})

	result, err := handler(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result to pass through")
	}

	if !strings.Contains(buf.String(), "tool_failed") {
		t.Errorf("expected tool_failed audit entry, got %q", buf.String())
	}
}

func TestInstrumentedToolHandler_HandlerErrorPropagates(t *testing.T) {
	sc := newTestContext(t)

	var buf bytes.Buffer
	sc.SetAuditLogger(instrumentation.NewAuditLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	wantErr := errors.New("transport broken")
	handler := InstrumentedToolHandler("create_event", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, wantErr
	})

	_, err := handler(context.Background(), callRequest(nil))
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected handler error to propagate, got %v", err)
	}

	if !strings.Contains(buf.String(), "transport broken") {
		t.Errorf("expected error in audit entry, got %q", buf.String())
	}
}

func TestInstrumentedToolHandlerWithService_RecordsMetricsWithoutPanic(t *testing.T) {
	sc := newTestContext(t)
	sc.SetMetrics(&instrumentation.Metrics{})

	handler := InstrumentedToolHandlerWithService("search_events", "calendar", "events.list", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("[]"), nil
	})

	if _, err := handler(context.Background(), callRequest(map[string]interface{}{"query": "standup"})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
