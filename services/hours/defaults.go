package hours

import (
	"strings"
	"time"

	"wandr/models"
)

// daily builds one period per weekday with the given open/close minutes.
func daily(open, close int) []models.DayHours {
	periods := make([]models.DayHours, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		periods = append(periods, models.DayHours{Weekday: d, Open: open, Close: close})
	}
	return periods
}

// onDays builds periods for the listed weekdays only.
func onDays(open, close int, days ...time.Weekday) []models.DayHours {
	periods := make([]models.DayHours, 0, len(days))
	for _, d := range days {
		periods = append(periods, models.DayHours{Weekday: d, Open: open, Close: close})
	}
	return periods
}

// defaultSchedules maps a provider venue type to an estimated weekly
// schedule used when the provider supplied no parseable hours.
var defaultSchedules = map[string][]models.DayHours{
	"restaurant": daily(11*60, 22*60),
	"cafe":       daily(7*60, 19*60),
	"bar":        daily(16*60, 2*60), // closes past midnight
	"store": append(
		onDays(9*60, 21*60, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday),
		onDays(10*60, 18*60, time.Sunday)...,
	),
	"mall":    daily(10*60, 21*60),
	"cinema":  daily(10*60, 23*60),
	"museum":  onDays(10*60, 17*60, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday),
	"gym":     daily(5*60, 23*60),
	"park":    daily(6*60, 22*60),
	"library": onDays(9*60, 20*60, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday),
}

// genericSchedule is the fallback for venue types with no dedicated default.
var genericSchedule = daily(9*60, 17*60)

// estimatedSchedule returns the default weekly schedule for the given venue
// type, falling back to the generic nine-to-five schedule.
func estimatedSchedule(venueType string) []models.DayHours {
	if s, ok := defaultSchedules[strings.ToLower(strings.TrimSpace(venueType))]; ok {
		return s
	}
	return genericSchedule
}
