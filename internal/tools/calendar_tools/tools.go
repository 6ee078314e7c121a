package calendar_tools

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/calmcp/calmcp/internal/calendar"
	"github.com/calmcp/calmcp/internal/server"
)

// Defaults applied when the caller omits optional arguments.
const (
	defaultCalendarID      = "primary"
	defaultMaxResults      = 10
	defaultRangeMaxResults = 100
)

// errorPayload is the uniform error result shape. Every failure, whether
// validation, authentication or remote, is reported this way.
type errorPayload struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// errorResult wraps a message in the structured error payload.
func errorResult(format string, args ...interface{}) *mcp.CallToolResult {
	payload, _ := json.Marshal(errorPayload{
		Error:   true,
		Message: fmt.Sprintf(format, args...),
	})
	return mcp.NewToolResultError(string(payload))
}

// jsonResult serializes v as the tool's text result.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("failed to encode response: %v", err), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// getCalendarClient retrieves the cached Calendar client, creating it on
// first use. A missing or irrecoverable credential produces an operator hint
// pointing at the auth command.
func getCalendarClient(sc *server.ServerContext) (calendar.API, *mcp.CallToolResult) {
	client, err := sc.CalendarClient()
	if err != nil {
		return nil, errorResult("authentication failed: %v. Run 'calmcp auth' to authorize access to Google Calendar", err)
	}
	return client, nil
}

// stringArg extracts a required non-empty string argument.
func stringArg(args map[string]interface{}, name string) (string, *mcp.CallToolResult) {
	val, ok := args[name].(string)
	if !ok || val == "" {
		return "", errorResult("%s is required", name)
	}
	return val, nil
}

// optionalStringArg extracts an optional string argument, falling back to def.
func optionalStringArg(args map[string]interface{}, name, def string) string {
	if val, ok := args[name].(string); ok && val != "" {
		return val
	}
	return def
}

// maxResultsArg extracts the maxResults argument, falling back to def.
// JSON numbers arrive as float64.
func maxResultsArg(args map[string]interface{}, def int64) (int64, *mcp.CallToolResult) {
	val, ok := args["maxResults"]
	if !ok {
		return def, nil
	}
	num, ok := val.(float64)
	if !ok || num != float64(int64(num)) {
		return 0, errorResult("invalid maxResults: must be an integer")
	}
	if num <= 0 {
		return 0, errorResult("invalid maxResults: must be positive")
	}
	return int64(num), nil
}

// attendeesArg extracts the optional attendees argument. Both a JSON array of
// email strings and a comma-separated string are accepted; order is preserved
// and blank entries are dropped.
func attendeesArg(args map[string]interface{}) ([]string, *mcp.CallToolResult) {
	val, ok := args["attendees"]
	if !ok || val == nil {
		return nil, nil
	}

	var attendees []string
	switch v := val.(type) {
	case string:
		for _, email := range strings.Split(v, ",") {
			if email = strings.TrimSpace(email); email != "" {
				attendees = append(attendees, email)
			}
		}
	case []interface{}:
		for _, item := range v {
			email, ok := item.(string)
			if !ok {
				return nil, errorResult("invalid attendees: must be email strings")
			}
			if email = strings.TrimSpace(email); email != "" {
				attendees = append(attendees, email)
			}
		}
	default:
		return nil, errorResult("invalid attendees: expected an array of email strings or a comma-separated string")
	}
	return attendees, nil
}

// datetimeArg extracts a required RFC 3339 datetime argument.
func datetimeArg(args map[string]interface{}, name string) (time.Time, *mcp.CallToolResult) {
	val, errRes := stringArg(args, name)
	if errRes != nil {
		return time.Time{}, errRes
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, errorResult("invalid %s: expected RFC 3339 datetime, e.g. '2024-01-15T14:00:00-08:00'", name)
	}
	return t, nil
}

// dateArg extracts a required date argument, accepting either a bare date
// ('2024-01-01') or a full RFC 3339 datetime.
func dateArg(args map[string]interface{}, name string) (time.Time, *mcp.CallToolResult) {
	val, errRes := stringArg(args, name)
	if errRes != nil {
		return time.Time{}, errRes
	}
	if t, err := time.Parse("2006-01-02", val); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	return time.Time{}, errorResult("invalid %s: expected '2006-01-02' date or RFC 3339 datetime", name)
}

// RegisterCalendarTools registers all Calendar tools with the MCP server.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := RegisterEventTools(s, sc); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}

	if err := RegisterCalendarListTools(s, sc); err != nil {
		return fmt.Errorf("failed to register calendar list tools: %w", err)
	}

	return nil
}
