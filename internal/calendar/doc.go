// Package calendar provides a client for the Google Calendar API.
//
// The client covers the operations the MCP tools expose: listing upcoming
// events, fetching a single event, creating events, free-text search,
// listing calendars, and date-range queries. It holds no state of its own;
// all calendar data is owned by the remote service and fetched or pushed
// per request.
//
// Example usage:
//
//	ctx := context.Background()
//	mgr, err := google.NewManagerFromFiles()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := calendar.NewClient(ctx, mgr)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	events, err := client.ListUpcoming(ctx, "primary", 10)
package calendar
