package calendar_tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/calmcp/calmcp/internal/calendar"
	"github.com/calmcp/calmcp/internal/server"
	"github.com/calmcp/calmcp/internal/tools/common"
)

// eventSummary is the list-view representation of an event.
type eventSummary struct {
	ID          string   `json:"id"`
	Summary     string   `json:"summary"`
	Description string   `json:"description,omitempty"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Location    string   `json:"location,omitempty"`
	Attendees   []string `json:"attendees,omitempty"`
	HTMLLink    string   `json:"html_link,omitempty"`
}

// eventDetails is the detail-view representation of an event.
type eventDetails struct {
	ID               string            `json:"id"`
	Summary          string            `json:"summary"`
	Description      string            `json:"description,omitempty"`
	Location         string            `json:"location,omitempty"`
	Start            string            `json:"start"`
	End              string            `json:"end"`
	AllDay           bool              `json:"all_day,omitempty"`
	Creator          string            `json:"creator,omitempty"`
	Organizer        string            `json:"organizer,omitempty"`
	Status           string            `json:"status,omitempty"`
	Created          string            `json:"created,omitempty"`
	Updated          string            `json:"updated,omitempty"`
	HTMLLink         string            `json:"html_link,omitempty"`
	RecurringEventID string            `json:"recurring_event_id,omitempty"`
	Attendees        []attendeeDetails `json:"attendees,omitempty"`
}

type attendeeDetails struct {
	Email          string `json:"email"`
	DisplayName    string `json:"display_name,omitempty"`
	ResponseStatus string `json:"response_status,omitempty"`
}

func formatEventTime(t time.Time, allDay bool) string {
	if t.IsZero() {
		return ""
	}
	if allDay {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

func toEventSummary(e calendar.Event) eventSummary {
	return eventSummary{
		ID:          e.ID,
		Summary:     e.Summary,
		Description: e.Description,
		Start:       formatEventTime(e.Start, e.AllDay),
		End:         formatEventTime(e.End, e.AllDay),
		Location:    e.Location,
		Attendees:   e.AttendeeEmails(),
		HTMLLink:    e.HTMLLink,
	}
}

func toEventSummaries(events []calendar.Event) []eventSummary {
	out := make([]eventSummary, 0, len(events))
	for _, e := range events {
		out = append(out, toEventSummary(e))
	}
	return out
}

func toEventDetails(e *calendar.Event) eventDetails {
	details := eventDetails{
		ID:               e.ID,
		Summary:          e.Summary,
		Description:      e.Description,
		Location:         e.Location,
		Start:            formatEventTime(e.Start, e.AllDay),
		End:              formatEventTime(e.End, e.AllDay),
		AllDay:           e.AllDay,
		Creator:          e.Creator,
		Organizer:        e.Organizer,
		Status:           e.Status,
		Created:          e.Created,
		Updated:          e.Updated,
		HTMLLink:         e.HTMLLink,
		RecurringEventID: e.RecurringEventID,
	}
	for _, att := range e.Attendees {
		details.Attendees = append(details.Attendees, attendeeDetails{
			Email:          att.Email,
			DisplayName:    att.DisplayName,
			ResponseStatus: att.ResponseStatus,
		})
	}
	return details
}

// RegisterEventTools registers the event-related tools with the MCP server.
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listUpcomingTool := mcp.NewTool("list_upcoming_events",
		mcp.WithDescription("List upcoming calendar events, soonest first"),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of events to return (default: 10)"),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (default: 'primary')"),
		),
	)

	s.AddTool(listUpcomingTool, common.InstrumentedToolHandlerWithService(
		"list_upcoming_events", "calendar", "events.list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListUpcomingEvents(ctx, request, sc)
		}))

	getEventTool := mcp.NewTool("get_event_details",
		mcp.WithDescription("Get full details of a specific calendar event"),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to retrieve"),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (default: 'primary')"),
		),
	)

	s.AddTool(getEventTool, common.InstrumentedToolHandlerWithService(
		"get_event_details", "calendar", "events.get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEventDetails(ctx, request, sc)
		}))

	createEventTool := mcp.NewTool("create_event",
		mcp.WithDescription("Create a new calendar event"),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Event title/summary"),
		),
		mcp.WithString("startDateTime",
			mcp.Required(),
			mcp.Description("Start time (RFC 3339 format, e.g. '2024-01-15T14:00:00-08:00')"),
		),
		mcp.WithString("endDateTime",
			mcp.Required(),
			mcp.Description("End time (RFC 3339 format, e.g. '2024-01-15T15:00:00-08:00')"),
		),
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
		mcp.WithString("attendees",
			mcp.Description("Attendee email addresses, as a JSON array of strings or a comma-separated string"),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (default: 'primary')"),
		),
	)

	s.AddTool(createEventTool, common.InstrumentedToolHandlerWithService(
		"create_event", "calendar", "events.insert", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))

	searchEventsTool := mcp.NewTool("search_events",
		mcp.WithDescription("Search calendar events by free-text query"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Free-text search query matched against event fields"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of events to return (default: 10)"),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (default: 'primary')"),
		),
	)

	s.AddTool(searchEventsTool, common.InstrumentedToolHandlerWithService(
		"search_events", "calendar", "events.list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchEvents(ctx, request, sc)
		}))

	rangeTool := mcp.NewTool("get_events_in_date_range",
		mcp.WithDescription("List events within a date range, start inclusive, end exclusive"),
		mcp.WithString("startDate",
			mcp.Required(),
			mcp.Description("Range start ('2024-01-01' or RFC 3339 datetime), inclusive"),
		),
		mcp.WithString("endDate",
			mcp.Required(),
			mcp.Description("Range end ('2024-01-02' or RFC 3339 datetime), exclusive"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of events to return (default: 100)"),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (default: 'primary')"),
		),
	)

	s.AddTool(rangeTool, common.InstrumentedToolHandlerWithService(
		"get_events_in_date_range", "calendar", "events.list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEventsInDateRange(ctx, request, sc)
		}))

	return nil
}

func handleListUpcomingEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	maxResults, errRes := maxResultsArg(args, defaultMaxResults)
	if errRes != nil {
		return errRes, nil
	}
	calendarID := optionalStringArg(args, "calendarId", defaultCalendarID)

	client, errRes := getCalendarClient(sc)
	if errRes != nil {
		return errRes, nil
	}

	events, err := client.ListUpcoming(ctx, calendarID, maxResults)
	if err != nil {
		return errorResult("failed to list upcoming events: %v", err), nil
	}

	return jsonResult(toEventSummaries(events))
}

func handleGetEventDetails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	eventID, errRes := stringArg(args, "eventId")
	if errRes != nil {
		return errRes, nil
	}
	calendarID := optionalStringArg(args, "calendarId", defaultCalendarID)

	client, errRes := getCalendarClient(sc)
	if errRes != nil {
		return errRes, nil
	}

	event, err := client.GetEvent(ctx, calendarID, eventID)
	if err != nil {
		return errorResult("failed to get event: %v", err), nil
	}

	return jsonResult(toEventDetails(event))
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	summary, errRes := stringArg(args, "summary")
	if errRes != nil {
		return errRes, nil
	}

	start, errRes := datetimeArg(args, "startDateTime")
	if errRes != nil {
		return errRes, nil
	}

	end, errRes := datetimeArg(args, "endDateTime")
	if errRes != nil {
		return errRes, nil
	}

	if !end.After(start) {
		return errorResult("invalid endDateTime: must be after startDateTime"), nil
	}

	calendarID := optionalStringArg(args, "calendarId", defaultCalendarID)

	attendees, errRes := attendeesArg(args)
	if errRes != nil {
		return errRes, nil
	}

	input := calendar.EventInput{
		Summary:     summary,
		Description: optionalStringArg(args, "description", ""),
		Location:    optionalStringArg(args, "location", ""),
		Start:       start,
		End:         end,
		Attendees:   attendees,
	}

	client, errRes := getCalendarClient(sc)
	if errRes != nil {
		return errRes, nil
	}

	event, err := client.CreateEvent(ctx, calendarID, input)
	if err != nil {
		return errorResult("failed to create event: %v", err), nil
	}

	return jsonResult(toEventDetails(event))
}

func handleSearchEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	query, errRes := stringArg(args, "query")
	if errRes != nil {
		return errRes, nil
	}

	maxResults, errRes := maxResultsArg(args, defaultMaxResults)
	if errRes != nil {
		return errRes, nil
	}
	calendarID := optionalStringArg(args, "calendarId", defaultCalendarID)

	client, errRes := getCalendarClient(sc)
	if errRes != nil {
		return errRes, nil
	}

	events, err := client.SearchEvents(ctx, calendarID, query, maxResults)
	if err != nil {
		return errorResult("failed to search events: %v", err), nil
	}

	return jsonResult(toEventSummaries(events))
}

func handleGetEventsInDateRange(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	start, errRes := dateArg(args, "startDate")
	if errRes != nil {
		return errRes, nil
	}

	end, errRes := dateArg(args, "endDate")
	if errRes != nil {
		return errRes, nil
	}

	if !end.After(start) {
		return errorResult("invalid endDate: must be after startDate"), nil
	}

	maxResults, errRes := maxResultsArg(args, defaultRangeMaxResults)
	if errRes != nil {
		return errRes, nil
	}
	calendarID := optionalStringArg(args, "calendarId", defaultCalendarID)

	client, errRes := getCalendarClient(sc)
	if errRes != nil {
		return errRes, nil
	}

	events, err := client.EventsInRange(ctx, calendarID, start, end, maxResults)
	if err != nil {
		return errorResult("failed to list events in range: %v", err), nil
	}

	return jsonResult(toEventSummaries(events))
}
