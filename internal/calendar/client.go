package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/calmcp/calmcp/internal/google"
	"github.com/calmcp/calmcp/internal/logging"
)

// API is the surface of the Calendar service consumed by the tool layer.
// *Client is the production implementation; tests substitute fakes to verify
// dispatch behavior without network access.
type API interface {
	ListUpcoming(ctx context.Context, calendarID string, maxResults int64) ([]Event, error)
	GetEvent(ctx context.Context, calendarID, eventID string) (*Event, error)
	CreateEvent(ctx context.Context, calendarID string, input EventInput) (*Event, error)
	SearchEvents(ctx context.Context, calendarID, query string, maxResults int64) ([]Event, error)
	ListCalendars(ctx context.Context) ([]CalendarInfo, error)
	EventsInRange(ctx context.Context, calendarID string, start, end time.Time, maxResults int64) ([]Event, error)
}

// Client wraps the Google Calendar service.
type Client struct {
	svc *calendar.Service
}

var _ API = (*Client)(nil)

// NewClient creates a Calendar client authenticated through the credential
// manager. Token refresh happens transparently inside the HTTP client.
func NewClient(ctx context.Context, mgr *google.Manager) (*Client, error) {
	httpClient, err := mgr.Client(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{svc: svc}, nil
}

// ListUpcoming lists events starting at or after now, soonest first.
func (c *Client) ListUpcoming(ctx context.Context, calendarID string, maxResults int64) ([]Event, error) {
	slog.Debug("listing upcoming events",
		logging.Operation("events.list"),
		logging.Calendar(calendarID),
		"max_results", maxResults)

	now := time.Now().UTC().Format(time.RFC3339)

	events, err := c.svc.Events.List(calendarID).
		TimeMin(now).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return toEvents(events.Items), nil
}

// GetEvent retrieves a specific event by ID.
func (c *Client) GetEvent(ctx context.Context, calendarID, eventID string) (*Event, error) {
	slog.Debug("fetching event",
		logging.Operation("events.get"),
		logging.Calendar(calendarID),
		logging.Event(eventID))

	event, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	e := toEvent(event)
	return &e, nil
}

// CreateEvent creates a new calendar event and returns the created event
// including its assigned ID.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (*Event, error) {
	slog.Debug("creating event",
		logging.Operation("events.insert"),
		logging.Calendar(calendarID),
		"attendees", len(input.Attendees))

	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
		},
	}

	if len(input.Attendees) > 0 {
		attendees := make([]*calendar.EventAttendee, 0, len(input.Attendees))
		for _, email := range input.Attendees {
			attendees = append(attendees, &calendar.EventAttendee{
				Email: email,
			})
		}
		event.Attendees = attendees
	}

	created, err := c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	e := toEvent(created)
	return &e, nil
}

// SearchEvents lists events matching a free-text query, soonest first.
func (c *Client) SearchEvents(ctx context.Context, calendarID, query string, maxResults int64) ([]Event, error) {
	slog.Debug("searching events",
		logging.Operation("events.list"),
		logging.Calendar(calendarID),
		"query", query)

	events, err := c.svc.Events.List(calendarID).
		Q(query).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}

	return toEvents(events.Items), nil
}

// ListCalendars lists all calendars accessible to the user.
func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	slog.Debug("listing calendars", logging.Operation("calendarList.list"))

	list, err := c.svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	var calendars []CalendarInfo
	for _, entry := range list.Items {
		calendars = append(calendars, toCalendarInfo(entry))
	}
	return calendars, nil
}

// EventsInRange lists events within the half-open interval [start, end):
// timeMin is inclusive, timeMax exclusive, so an event starting exactly at
// end is not returned.
func (c *Client) EventsInRange(ctx context.Context, calendarID string, start, end time.Time, maxResults int64) ([]Event, error) {
	slog.Debug("listing events in range",
		logging.Operation("events.list"),
		logging.Calendar(calendarID),
		"time_min", start.Format(time.RFC3339),
		"time_max", end.Format(time.RFC3339))

	events, err := c.svc.Events.List(calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events in range: %w", err)
	}

	return toEvents(events.Items), nil
}

func toEvents(items []*calendar.Event) []Event {
	var events []Event
	for _, item := range items {
		events = append(events, toEvent(item))
	}
	return events
}
