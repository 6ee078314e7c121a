package google

import (
	calendar "google.golang.org/api/calendar/v3"
)

// DefaultScopes are the Google OAuth scopes requested during authorization.
//
// Both the read-only and full-access Calendar scopes are requested up front.
// The consent is all-or-nothing: read tools and the event creation tool share
// one token bundle instead of escalating scopes per operation.
var DefaultScopes = []string{
	calendar.CalendarReadonlyScope,
	calendar.CalendarScope,
}
