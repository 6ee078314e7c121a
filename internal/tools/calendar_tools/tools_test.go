package calendar_tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/calmcp/calmcp/internal/calendar"
	"github.com/calmcp/calmcp/internal/server"
)

// fakeAPI implements calendar.API and counts remote calls so tests can
// verify that validation failures never reach the network.
type fakeAPI struct {
	calls int

	events    []calendar.Event
	event     *calendar.Event
	calendars []calendar.CalendarInfo
	err       error

	lastCalendarID string
	lastMaxResults int64
	lastQuery      string
	lastStart      time.Time
	lastEnd        time.Time
	lastInput      calendar.EventInput
}

func (f *fakeAPI) ListUpcoming(ctx context.Context, calendarID string, maxResults int64) ([]calendar.Event, error) {
	f.calls++
	f.lastCalendarID = calendarID
	f.lastMaxResults = maxResults
	return f.events, f.err
}

func (f *fakeAPI) GetEvent(ctx context.Context, calendarID, eventID string) (*calendar.Event, error) {
	f.calls++
	f.lastCalendarID = calendarID
	return f.event, f.err
}

func (f *fakeAPI) CreateEvent(ctx context.Context, calendarID string, input calendar.EventInput) (*calendar.Event, error) {
	f.calls++
	f.lastCalendarID = calendarID
	f.lastInput = input
	return f.event, f.err
}

func (f *fakeAPI) SearchEvents(ctx context.Context, calendarID, query string, maxResults int64) ([]calendar.Event, error) {
	f.calls++
	f.lastCalendarID = calendarID
	f.lastQuery = query
	f.lastMaxResults = maxResults
	return f.events, f.err
}

func (f *fakeAPI) ListCalendars(ctx context.Context) ([]calendar.CalendarInfo, error) {
	f.calls++
	return f.calendars, f.err
}

func (f *fakeAPI) EventsInRange(ctx context.Context, calendarID string, start, end time.Time, maxResults int64) ([]calendar.Event, error) {
	f.calls++
	f.lastCalendarID = calendarID
	f.lastStart = start
	f.lastEnd = end
	f.lastMaxResults = maxResults
	return f.events, f.err
}

func newTestServerContext(t *testing.T, api calendar.API) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewServerContext: %v", err)
	}
	sc.SetCalendarClient(api)
	return sc
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

// assertErrorPayload verifies the uniform {error, message} result shape.
func assertErrorPayload(t *testing.T, result *mcp.CallToolResult, wantSubstr string) {
	t.Helper()
	if !result.IsError {
		t.Fatal("expected error result")
	}

	var payload struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &payload); err != nil {
		t.Fatalf("error result is not the structured payload: %v", err)
	}
	if !payload.Error {
		t.Error("expected error=true in payload")
	}
	if !strings.Contains(payload.Message, wantSubstr) {
		t.Errorf("expected message containing %q, got %q", wantSubstr, payload.Message)
	}
}

func TestMissingRequiredArgument_NoRemoteCall(t *testing.T) {
	tests := []struct {
		name    string
		handler func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error)
		args    map[string]interface{}
		missing string
	}{
		{
			name:    "get_event_details without eventId",
			handler: handleGetEventDetails,
			args:    map[string]interface{}{},
			missing: "eventId",
		},
		{
			name:    "create_event without summary",
			handler: handleCreateEvent,
			args: map[string]interface{}{
				"startDateTime": "2024-01-15T14:00:00-08:00",
				"endDateTime":   "2024-01-15T15:00:00-08:00",
			},
			missing: "summary",
		},
		{
			name:    "create_event without endDateTime",
			handler: handleCreateEvent,
			args: map[string]interface{}{
				"summary":       "Team Meeting",
				"startDateTime": "2024-01-15T14:00:00-08:00",
			},
			missing: "endDateTime",
		},
		{
			name:    "search_events without query",
			handler: handleSearchEvents,
			args:    map[string]interface{}{},
			missing: "query",
		},
		{
			name:    "get_events_in_date_range without startDate",
			handler: handleGetEventsInDateRange,
			args:    map[string]interface{}{"endDate": "2024-01-02"},
			missing: "startDate",
		},
		{
			name:    "get_events_in_date_range without endDate",
			handler: handleGetEventsInDateRange,
			args:    map[string]interface{}{"startDate": "2024-01-01"},
			missing: "endDate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			sc := newTestServerContext(t, api)

			result, err := tt.handler(context.Background(), callRequest(tt.args), sc)
			if err != nil {
				t.Fatalf("handler returned Go error: %v", err)
			}

			assertErrorPayload(t, result, tt.missing)

			if api.calls != 0 {
				t.Errorf("expected no remote calls, got %d", api.calls)
			}
		})
	}
}

func TestMalformedDatetime_NoRemoteCall(t *testing.T) {
	api := &fakeAPI{}
	sc := newTestServerContext(t, api)

	result, err := handleCreateEvent(context.Background(), callRequest(map[string]interface{}{
		"summary":       "Team Meeting",
		"startDateTime": "tomorrow at noon",
		"endDateTime":   "2024-01-15T15:00:00-08:00",
	}), sc)
	if err != nil {
		t.Fatalf("handler returned Go error: %v", err)
	}

	assertErrorPayload(t, result, "invalid startDateTime")

	if api.calls != 0 {
		t.Errorf("expected no remote calls, got %d", api.calls)
	}
}

func TestCreateEvent_ReturnsAssignedID(t *testing.T) {
	start, _ := time.Parse(time.RFC3339, "2024-01-15T14:00:00-08:00")
	end, _ := time.Parse(time.RFC3339, "2024-01-15T15:00:00-08:00")

	api := &fakeAPI{
		event: &calendar.Event{
			ID:      "evt-123",
			Summary: "Team Meeting",
			Start:   start,
			End:     end,
		},
	}
	sc := newTestServerContext(t, api)

	result, err := handleCreateEvent(context.Background(), callRequest(map[string]interface{}{
		"summary":       "Team Meeting",
		"startDateTime": "2024-01-15T14:00:00-08:00",
		"endDateTime":   "2024-01-15T15:00:00-08:00",
		"attendees":     "alice@example.com, bob@example.com",
	}), sc)
	if err != nil {
		t.Fatalf("handler returned Go error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	var created eventDetails
	if err := json.Unmarshal([]byte(resultText(t, result)), &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == "" {
		t.Error("expected non-empty event id")
	}
	if created.Summary != "Team Meeting" {
		t.Errorf("expected summary 'Team Meeting', got %q", created.Summary)
	}

	if got := api.lastInput.Attendees; len(got) != 2 || got[0] != "alice@example.com" || got[1] != "bob@example.com" {
		t.Errorf("unexpected attendees passed to API: %v", got)
	}
	if api.lastCalendarID != "primary" {
		t.Errorf("expected default calendar 'primary', got %q", api.lastCalendarID)
	}
}

func TestCreateEvent_AttendeesArray(t *testing.T) {
	start, _ := time.Parse(time.RFC3339, "2024-01-15T14:00:00-08:00")
	end, _ := time.Parse(time.RFC3339, "2024-01-15T15:00:00-08:00")

	api := &fakeAPI{
		event: &calendar.Event{
			ID:      "evt-456",
			Summary: "Planning",
			Start:   start,
			End:     end,
		},
	}
	sc := newTestServerContext(t, api)

	result, err := handleCreateEvent(context.Background(), callRequest(map[string]interface{}{
		"summary":       "Planning",
		"startDateTime": "2024-01-15T14:00:00-08:00",
		"endDateTime":   "2024-01-15T15:00:00-08:00",
		"attendees":     []interface{}{"alice@example.com", "bob@example.com"},
	}), sc)
	if err != nil {
		t.Fatalf("handler returned Go error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	if got := api.lastInput.Attendees; len(got) != 2 || got[0] != "alice@example.com" || got[1] != "bob@example.com" {
		t.Errorf("unexpected attendees passed to API: %v", got)
	}
}

func TestCreateEvent_AttendeesInvalidElement_NoRemoteCall(t *testing.T) {
	api := &fakeAPI{}
	sc := newTestServerContext(t, api)

	result, err := handleCreateEvent(context.Background(), callRequest(map[string]interface{}{
		"summary":       "Planning",
		"startDateTime": "2024-01-15T14:00:00-08:00",
		"endDateTime":   "2024-01-15T15:00:00-08:00",
		"attendees":     []interface{}{"alice@example.com", 42},
	}), sc)
	if err != nil {
		t.Fatalf("handler returned Go error: %v", err)
	}

	assertErrorPayload(t, result, "invalid attendees")

	if api.calls != 0 {
		t.Errorf("expected no remote calls, got %d", api.calls)
	}
}

func TestCreateEvent_EndBeforeStart(t *testing.T) {
	api := &fakeAPI{}
	sc := newTestServerContext(t, api)

	result, err := handleCreateEvent(context.Background(), callRequest(map[string]interface{}{
		"summary":       "Team Meeting",
		"startDateTime": "2024-01-15T15:00:00-08:00",
		"endDateTime":   "2024-01-15T14:00:00-08:00",
	}), sc)
	if err != nil {
		t.Fatalf("handler returned Go error: %v", err)
	}

	assertErrorPayload(t, result, "must be after")

	if api.calls != 0 {
		t.Errorf("expected no remote calls, got %d", api.calls)
	}
}

func TestListUpcomingEvents_Defaults(t *testing.T) {
	api := &fakeAPI{}
	sc := newTestServerContext(t, api)

	result, err := handleListUpcomingEvents(context.Background(), callRequest(nil), sc)
	if err != nil {
		t.Fatalf("handler returned Go error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	if api.lastMaxResults != defaultMaxResults {
		t.Errorf("expected default maxResults %d, got %d", defaultMaxResults, api.lastMaxResults)
	}
	if api.lastCalendarID != defaultCalendarID {
		t.Errorf("expected default calendar %q, got %q", defaultCalendarID, api.lastCalendarID)
	}
}

func TestListUpcomingEvents_MaxResultsForwarded(t *testing.T) {
	api := &fakeAPI{
		events: []calendar.Event{
			{ID: "a", Summary: "First", Start: time.Now().Add(time.Hour)},
			{ID: "b", Summary: "Second", Start: time.Now().Add(2 * time.Hour)},
		},
	}
	sc := newTestServerContext(t, api)

	result, err := handleListUpcomingEvents(context.Background(), callRequest(map[string]interface{}{
		"maxResults": float64(5),
	}), sc)
	if err != nil {
		t.Fatalf("handler returned Go error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	if api.lastMaxResults != 5 {
		t.Errorf("expected maxResults 5, got %d", api.lastMaxResults)
	}

	var events []eventSummary
	if err := json.Unmarshal([]byte(resultText(t, result)), &events); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ID != "a" || events[1].ID != "b" {
		t.Error("expected events in API order")
	}
}

func TestListUpcomingEvents_IncludesDescription(t *testing.T) {
	api := &fakeAPI{
		events: []calendar.Event{
			{ID: "a", Summary: "Standup", Description: "Daily sync", Start: time.Now().Add(time.Hour)},
		},
	}
	sc := newTestServerContext(t, api)

	result, err := handleListUpcomingEvents(context.Background(), callRequest(nil), sc)
	if err != nil {
		t.Fatalf("handler returned Go error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	var events []eventSummary
	if err := json.Unmarshal([]byte(resultText(t, result)), &events); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Description != "Daily sync" {
		t.Errorf("expected description in list view, got %q", events[0].Description)
	}
}

func TestListUpcomingEvents_InvalidMaxResults(t *testing.T) {
	api := &fakeAPI{}
	sc := newTestServerContext(t, api)

	result, err := handleListUpcomingEvents(context.Background(), callRequest(map[string]interface{}{
		"maxResults": float64(-1),
	}), sc)
	if err != nil {
		t.Fatalf("handler returned Go error: %v", err)
	}

	assertErrorPayload(t, result, "maxResults")

	if api.calls != 0 {
		t.Errorf("expected no remote calls, got %d", api.calls)
	}
}

func TestGetEventsInDateRange_HalfOpenInterval(t *testing.T) {
	api := &fakeAPI{}
	sc := newTestServerContext(t, api)

	result, err := handleGetEventsInDateRange(context.Background(), callRequest(map[string]interface{}{
		"startDate": "2024-01-01",
		"endDate":   "2024-01-02",
	}), sc)
	if err != nil {
		t.Fatalf("handler returned Go error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	wantStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !api.lastStart.Equal(wantStart) {
		t.Errorf("expected range start %v, got %v", wantStart, api.lastStart)
	}
	if !api.lastEnd.Equal(wantEnd) {
		t.Errorf("expected range end %v (exclusive), got %v", wantEnd, api.lastEnd)
	}
	if api.lastMaxResults != defaultRangeMaxResults {
		t.Errorf("expected default maxResults %d, got %d", defaultRangeMaxResults, api.lastMaxResults)
	}
}

func TestSearchEvents_ForwardsQuery(t *testing.T) {
	api := &fakeAPI{}
	sc := newTestServerContext(t, api)

	result, err := handleSearchEvents(context.Background(), callRequest(map[string]interface{}{
		"query": "standup",
	}), sc)
	if err != nil {
		t.Fatalf("handler returned Go error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	if api.lastQuery != "standup" {
		t.Errorf("expected query 'standup', got %q", api.lastQuery)
	}
	if api.calls != 1 {
		t.Errorf("expected exactly one remote call, got %d", api.calls)
	}
}

func TestGetEventDetails_RemoteNotFound(t *testing.T) {
	api := &fakeAPI{err: errors.New("googleapi: Error 404: Not Found")}
	sc := newTestServerContext(t, api)

	result, err := handleGetEventDetails(context.Background(), callRequest(map[string]interface{}{
		"eventId": "missing-event",
	}), sc)
	if err != nil {
		t.Fatalf("remote failure must not surface as a Go error, got %v", err)
	}

	assertErrorPayload(t, result, "404")
}

func TestListCalendars(t *testing.T) {
	api := &fakeAPI{
		calendars: []calendar.CalendarInfo{
			{ID: "primary", Summary: "Personal", Primary: true, AccessRole: "owner"},
			{ID: "team@group.calendar.google.com", Summary: "Team", AccessRole: "reader"},
		},
	}
	sc := newTestServerContext(t, api)

	result, err := handleListCalendars(context.Background(), callRequest(nil), sc)
	if err != nil {
		t.Fatalf("handler returned Go error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}

	var calendars []calendarInfo
	if err := json.Unmarshal([]byte(resultText(t, result)), &calendars); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(calendars) != 2 {
		t.Fatalf("expected 2 calendars, got %d", len(calendars))
	}
	if !calendars[0].Primary || calendars[0].AccessRole != "owner" {
		t.Errorf("unexpected first calendar: %+v", calendars[0])
	}
}
