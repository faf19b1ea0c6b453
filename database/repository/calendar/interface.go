package calendarRepo

import (
	"context"
	"time"

	"wandr/models"
)

// CalendarRepository exposes a user's scheduled events. The conflict
// detector only reads; Create and Delete exist for the caller committing a
// slot after a feasible (or overridden) decision.
type CalendarRepository interface {
	EventsOverlapping(ctx context.Context, userID string, start, end time.Time) ([]models.ScheduledEvent, error)
	PrecedingEvent(ctx context.Context, userID string, before time.Time) (*models.ScheduledEvent, error)
	Create(ctx context.Context, event models.ScheduledEvent) error
	Delete(ctx context.Context, userID, eventID string) error
}
