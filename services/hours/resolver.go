// Package hours resolves venue opening hours, answering open-now,
// next-opening-time and suggested-visit-time queries. Provider-supplied
// periods are used verbatim when they parse; otherwise a category-keyed
// estimated weekly schedule takes over.
package hours

import (
	"time"

	"wandr/models"
)

// Visit windows are biased toward these minutes from midnight.
const (
	morningTargetMinutes   = 10 * 60
	afternoonTargetMinutes = 14 * 60
	eveningTargetMinutes   = 19 * 60
)

// Resolve builds the weekly schedule for a venue. At least one valid
// provider period wins; otherwise the venue type selects an estimated
// default.
func Resolve(raw []models.DayHours, venueType string) models.BusinessHours {
	var valid []models.DayHours
	for _, p := range raw {
		if validPeriod(p) {
			valid = append(valid, p)
		}
	}
	if len(valid) > 0 {
		return models.BusinessHours{Periods: valid, Source: models.HoursSourceProvider}
	}
	return models.BusinessHours{Periods: estimatedSchedule(venueType), Source: models.HoursSourceEstimated}
}

func validPeriod(p models.DayHours) bool {
	if p.Weekday < time.Sunday || p.Weekday > time.Saturday {
		return false
	}
	if p.Open < 0 || p.Open >= 24*60 || p.Close < 0 || p.Close >= 24*60 {
		return false
	}
	return p.Open != p.Close
}

// IsOpenAt reports whether the venue is open at the given instant. A close
// time earlier than the open time means the venue is open today and closes
// tomorrow, so the test becomes t >= open OR t <= close.
func IsOpenAt(h models.BusinessHours, t time.Time) bool {
	minutes := t.Hour()*60 + t.Minute()
	for _, p := range h.Periods {
		if p.Weekday != t.Weekday() {
			continue
		}
		if p.Close < p.Open {
			if minutes >= p.Open || minutes <= p.Close {
				return true
			}
			continue
		}
		if minutes >= p.Open && minutes < p.Close {
			return true
		}
	}
	return false
}

// NextOpeningTime scans up to seven days forward for the first period whose
// open time is strictly after from. Returns nil when the venue is already
// open or no opening exists within a week.
func NextOpeningTime(h models.BusinessHours, from time.Time) *time.Time {
	if IsOpenAt(h, from) {
		return nil
	}
	for dayOffset := 0; dayOffset <= 7; dayOffset++ {
		day := from.AddDate(0, 0, dayOffset)
		dayMidnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		for _, p := range h.Periods {
			if p.Weekday != day.Weekday() {
				continue
			}
			opening := dayMidnight.Add(time.Duration(p.Open) * time.Minute)
			if opening.After(from) {
				return &opening
			}
		}
	}
	return nil
}

// SuggestVisitTime picks an instant inside today's open window biased by the
// caller's part-of-day preference. It falls back to the next opening time
// when today's window cannot host the visit, and as a last resort returns
// from unchanged. It never fails.
func SuggestVisitTime(h models.BusinessHours, preferred models.PartOfDay, from time.Time) time.Time {
	target := targetMinutes(preferred)
	dayMidnight := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())

	for _, p := range h.Periods {
		if p.Weekday != from.Weekday() {
			continue
		}
		closeEffective := p.Close
		if p.Close < p.Open {
			closeEffective += 24 * 60
		}
		// Clamp the target into the window, leaving an hour before close.
		clamped := target
		if clamped < p.Open {
			clamped = p.Open
		}
		if latest := closeEffective - 60; clamped > latest {
			clamped = latest
		}
		if clamped < p.Open {
			continue // window shorter than an hour
		}
		suggestion := dayMidnight.Add(time.Duration(clamped) * time.Minute)
		if suggestion.After(from) {
			return suggestion
		}
	}

	if next := NextOpeningTime(h, from); next != nil {
		return *next
	}
	return from
}

func targetMinutes(preferred models.PartOfDay) int {
	switch preferred {
	case models.PartOfDayMorning:
		return morningTargetMinutes
	case models.PartOfDayEvening:
		return eveningTargetMinutes
	default:
		return afternoonTargetMinutes
	}
}
