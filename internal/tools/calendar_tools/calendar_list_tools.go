package calendar_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/calmcp/calmcp/internal/calendar"
	"github.com/calmcp/calmcp/internal/server"
	"github.com/calmcp/calmcp/internal/tools/common"
)

// calendarInfo is the response representation of a calendar-list entry.
type calendarInfo struct {
	ID              string `json:"id"`
	Summary         string `json:"summary"`
	Description     string `json:"description,omitempty"`
	Primary         bool   `json:"primary,omitempty"`
	AccessRole      string `json:"access_role"`
	BackgroundColor string `json:"background_color,omitempty"`
	ForegroundColor string `json:"foreground_color,omitempty"`
}

func toCalendarInfos(calendars []calendar.CalendarInfo) []calendarInfo {
	out := make([]calendarInfo, 0, len(calendars))
	for _, c := range calendars {
		out = append(out, calendarInfo{
			ID:              c.ID,
			Summary:         c.Summary,
			Description:     c.Description,
			Primary:         c.Primary,
			AccessRole:      c.AccessRole,
			BackgroundColor: c.BackgroundColor,
			ForegroundColor: c.ForegroundColor,
		})
	}
	return out
}

// RegisterCalendarListTools registers the calendar-list tools with the MCP server.
func RegisterCalendarListTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listCalendarsTool := mcp.NewTool("list_calendars",
		mcp.WithDescription("List all calendars accessible to the authorized account"),
	)

	s.AddTool(listCalendarsTool, common.InstrumentedToolHandlerWithService(
		"list_calendars", "calendar", "calendarList.list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListCalendars(ctx, request, sc)
		}))

	return nil
}

func handleListCalendars(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client, errRes := getCalendarClient(sc)
	if errRes != nil {
		return errRes, nil
	}

	calendars, err := client.ListCalendars(ctx)
	if err != nil {
		return errorResult("failed to list calendars: %v", err), nil
	}

	return jsonResult(toCalendarInfos(calendars))
}
