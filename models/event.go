package models

import "time"

// ScheduledEvent is a calendar entry. The engine only reads these for
// conflict checking; insertion and deletion remain the caller's job.
type ScheduledEvent struct {
	ID         string     `bson:"id" json:"id"`
	UserID     string     `bson:"user_id" json:"userId"`
	Coordinate Coordinate `bson:"coordinate" json:"coordinate"`
	StartTime  time.Time  `bson:"start_time" json:"startTime"`
	EndTime    time.Time  `bson:"end_time" json:"endTime"`
	Title      string     `bson:"title" json:"title"`
}

// Overlaps reports whether the event intersects the half-open interval
// [start, end).
func (e ScheduledEvent) Overlaps(start, end time.Time) bool {
	return e.StartTime.Before(end) && start.Before(e.EndTime)
}
