package server

import (
	"context"
	"testing"
	"time"

	"github.com/calmcp/calmcp/internal/calendar"
)

type stubAPI struct{}

func (stubAPI) ListUpcoming(ctx context.Context, calendarID string, maxResults int64) ([]calendar.Event, error) {
	return nil, nil
}
func (stubAPI) GetEvent(ctx context.Context, calendarID, eventID string) (*calendar.Event, error) {
	return nil, nil
}
func (stubAPI) CreateEvent(ctx context.Context, calendarID string, input calendar.EventInput) (*calendar.Event, error) {
	return nil, nil
}
func (stubAPI) SearchEvents(ctx context.Context, calendarID, query string, maxResults int64) ([]calendar.Event, error) {
	return nil, nil
}
func (stubAPI) ListCalendars(ctx context.Context) ([]calendar.CalendarInfo, error) {
	return nil, nil
}
func (stubAPI) EventsInRange(ctx context.Context, calendarID string, start, end time.Time, maxResults int64) ([]calendar.Event, error) {
	return nil, nil
}

func TestServerContext_SetCalendarClient(t *testing.T) {
	sc, err := NewServerContext(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}

	stub := stubAPI{}
	sc.SetCalendarClient(stub)

	got, err := sc.CalendarClient()
	if err != nil {
		t.Fatalf("CalendarClient() error = %v", err)
	}
	if got != stub {
		t.Error("CalendarClient() did not return the injected client")
	}
}

func TestServerContext_Shutdown(t *testing.T) {
	sc, err := NewServerContext(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewServerContext() error = %v", err)
	}

	if sc.IsShutdown() {
		t.Error("new context should not be shut down")
	}

	if err := sc.Shutdown(); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if !sc.IsShutdown() {
		t.Error("context should report shut down")
	}

	select {
	case <-sc.Context().Done():
	default:
		t.Error("context should be cancelled after shutdown")
	}

	// Shutdown is idempotent.
	if err := sc.Shutdown(); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}
