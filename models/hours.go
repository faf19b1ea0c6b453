package models

import "time"

// HoursSource records where a resolved weekly schedule came from.
type HoursSource string

const (
	HoursSourceProvider  HoursSource = "provider"
	HoursSourceEstimated HoursSource = "estimated"
)

// DayHours is one weekday's opening period. Open and Close are minutes from
// midnight; Close < Open means the venue closes past midnight the next day.
type DayHours struct {
	Weekday time.Weekday `bson:"weekday" json:"weekday"`
	Open    int          `bson:"open" json:"open"`
	Close   int          `bson:"close" json:"close"`
}

// BusinessHours is a resolved weekly schedule for a venue.
type BusinessHours struct {
	Periods []DayHours  `bson:"periods" json:"periods"`
	Source  HoursSource `bson:"source" json:"source"`
}

// IsEstimated reports whether the schedule was derived from category
// defaults rather than provider data.
func (h BusinessHours) IsEstimated() bool {
	return h.Source == HoursSourceEstimated
}
