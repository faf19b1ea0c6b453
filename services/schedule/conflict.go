// Package schedule decides whether a proposed visit fits a user's calendar.
// It is read-only over the calendar: the caller owns resolution, whether
// that is picking another slot or overriding the warning.
package schedule

import (
	"context"
	"fmt"
	"time"

	calendarRepo "wandr/database/repository/calendar"
	"wandr/models"
	"wandr/services/geo"
	"wandr/utils"

	"go.uber.org/zap"
)

// ConflictKind classifies the outcome of a conflict check.
type ConflictKind string

const (
	// Feasible means the slot is clear and reachable.
	Feasible ConflictKind = "feasible"
	// DoubleBooking means an existing event overlaps the proposed slot.
	// It takes precedence over travel feasibility.
	DoubleBooking ConflictKind = "doubleBooking"
	// TravelInfeasible means the slot is clear but the user cannot reach
	// the venue from the preceding event in time.
	TravelInfeasible ConflictKind = "travelInfeasible"
)

// ConflictResult is the structured decision for a proposed slot. A conflict
// is a result, not an error: errors are reserved for infrastructure
// failures.
type ConflictResult struct {
	Kind ConflictKind `json:"kind"`

	// ConflictingEvents holds the overlapping events on a DoubleBooking.
	ConflictingEvents []models.ScheduledEvent `json:"conflictingEvents,omitempty"`

	// Travel arithmetic, populated on TravelInfeasible.
	PrecedingEvent  *models.ScheduledEvent `json:"precedingEvent,omitempty"`
	TravelMinutes   int                    `json:"travelMinutes,omitempty"`
	ComputedArrival *time.Time             `json:"computedArrival,omitempty"`
	MinutesLate     int                    `json:"minutesLate,omitempty"`
}

// ConflictDetector checks proposed visits against the user's calendar.
type ConflictDetector struct {
	Calendar calendarRepo.CalendarRepository
}

// NewConflictDetector wires the detector to a calendar repository.
func NewConflictDetector(calendar calendarRepo.CalendarRepository) *ConflictDetector {
	return &ConflictDetector{Calendar: calendar}
}

// Check evaluates the proposed slot [start, end) at the given venue
// location. Overlap wins over travel infeasibility when both apply.
func (d *ConflictDetector) Check(ctx context.Context, userID string, start, end time.Time, venue models.Coordinate) (*ConflictResult, error) {
	logger := utils.GetLogger()
	if !end.After(start) {
		return nil, fmt.Errorf("invalid slot: end %s is not after start %s", end, start)
	}

	overlapping, err := d.Calendar.EventsOverlapping(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load overlapping events for user %s: %w", userID, err)
	}
	if len(overlapping) > 0 {
		return &ConflictResult{
			Kind:              DoubleBooking,
			ConflictingEvents: overlapping,
		}, nil
	}

	prev, err := d.Calendar.PrecedingEvent(ctx, userID, start)
	if err != nil {
		return nil, fmt.Errorf("failed to load preceding event for user %s: %w", userID, err)
	}
	if prev == nil || prev.Coordinate.IsZero() {
		return &ConflictResult{Kind: Feasible}, nil
	}

	travelMinutes := geo.TravelTimeWithBuffer(prev.Coordinate, venue)
	arrival := prev.EndTime.Add(time.Duration(travelMinutes) * time.Minute)
	if arrival.After(start) {
		minutesLate := int(arrival.Sub(start).Minutes())
		logger.Debug("slot unreachable from preceding event",
			zap.String("userID", userID),
			zap.String("precedingEvent", prev.ID),
			zap.Int("travelMinutes", travelMinutes),
			zap.Int("minutesLate", minutesLate))
		return &ConflictResult{
			Kind:            TravelInfeasible,
			PrecedingEvent:  prev,
			TravelMinutes:   travelMinutes,
			ComputedArrival: &arrival,
			MinutesLate:     minutesLate,
		}, nil
	}

	return &ConflictResult{Kind: Feasible}, nil
}

// AddEvent commits a slot to the calendar after the caller has accepted the
// conflict decision.
func (d *ConflictDetector) AddEvent(ctx context.Context, event models.ScheduledEvent) error {
	if event.UserID == "" || event.ID == "" {
		return fmt.Errorf("event requires an ID and a user ID")
	}
	if !event.EndTime.After(event.StartTime) {
		return fmt.Errorf("invalid event: end %s is not after start %s", event.EndTime, event.StartTime)
	}
	return d.Calendar.Create(ctx, event)
}

// RemoveEvent deletes a calendar entry.
func (d *ConflictDetector) RemoveEvent(ctx context.Context, userID, eventID string) error {
	return d.Calendar.Delete(ctx, userID, eventID)
}
