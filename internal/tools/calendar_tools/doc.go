// Package calendar_tools implements the Google Calendar MCP tools: listing
// upcoming events, fetching event details, creating events, free-text search,
// listing calendars, and date-range queries.
//
// Every handler validates its arguments before touching the network and maps
// all failures, validation, authentication and remote alike, to a structured
// error result. No Go error crosses the tool boundary.
package calendar_tools
