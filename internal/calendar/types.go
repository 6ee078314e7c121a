package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// EventInput represents the input for creating a calendar event.
type EventInput struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Attendees   []string // attendee email addresses, order preserved
}

// Event represents a calendar event as the remote service describes it.
// Nothing here is stored locally; every instance is read from or written to
// the Calendar API per call.
type Event struct {
	ID               string
	Summary          string
	Description      string
	Location         string
	Start            time.Time
	End              time.Time
	AllDay           bool
	Creator          string
	Organizer        string
	Status           string
	Created          string
	Updated          string
	HTMLLink         string
	RecurringEventID string
	Attendees        []Attendee
}

// Attendee represents information about an event attendee.
type Attendee struct {
	Email          string
	DisplayName    string
	ResponseStatus string // "needsAction", "declined", "tentative", "accepted"
}

// AttendeeEmails returns the attendee email addresses in invitation order.
func (e *Event) AttendeeEmails() []string {
	if len(e.Attendees) == 0 {
		return nil
	}
	emails := make([]string, 0, len(e.Attendees))
	for _, a := range e.Attendees {
		emails = append(emails, a.Email)
	}
	return emails
}

// CalendarInfo represents a calendar-list entry. Read-only from this
// system's perspective.
type CalendarInfo struct {
	ID              string
	Summary         string
	Description     string
	Primary         bool
	AccessRole      string // "owner", "writer", "reader", "freeBusyReader"
	BackgroundColor string
	ForegroundColor string
}

// toEvent converts a Google Calendar event to the domain representation.
func toEvent(event *calendar.Event) Event {
	if event == nil {
		return Event{}
	}

	e := Event{
		ID:               event.Id,
		Summary:          event.Summary,
		Description:      event.Description,
		Location:         event.Location,
		Status:           event.Status,
		Created:          event.Created,
		Updated:          event.Updated,
		HTMLLink:         event.HtmlLink,
		RecurringEventID: event.RecurringEventId,
	}

	if event.Start != nil {
		e.Start, e.AllDay = parseEventTime(event.Start)
	}
	if event.End != nil {
		e.End, _ = parseEventTime(event.End)
	}

	if event.Creator != nil {
		e.Creator = event.Creator.Email
	}
	if event.Organizer != nil {
		e.Organizer = event.Organizer.Email
	}

	for _, att := range event.Attendees {
		e.Attendees = append(e.Attendees, Attendee{
			Email:          att.Email,
			DisplayName:    att.DisplayName,
			ResponseStatus: att.ResponseStatus,
		})
	}

	return e
}

// parseEventTime handles both timed (DateTime) and all-day (Date) events.
func parseEventTime(edt *calendar.EventDateTime) (time.Time, bool) {
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t, false
		}
		return time.Time{}, false
	}
	if edt.Date != "" {
		if t, err := time.Parse("2006-01-02", edt.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, edt.Date != ""
}

// toCalendarInfo converts a Google Calendar list entry to CalendarInfo.
func toCalendarInfo(entry *calendar.CalendarListEntry) CalendarInfo {
	if entry == nil {
		return CalendarInfo{}
	}
	return CalendarInfo{
		ID:              entry.Id,
		Summary:         entry.Summary,
		Description:     entry.Description,
		Primary:         entry.Primary,
		AccessRole:      entry.AccessRole,
		BackgroundColor: entry.BackgroundColor,
		ForegroundColor: entry.ForegroundColor,
	}
}
