package sla

import (
	"math"
	"time"
)

// extensionTargetHour is the local hour a default extension aims for on
// the next business day.
const extensionTargetHour = 16

// DefaultExtensionHours suggests an extension length, in whole hours, that
// lands the due date at 4:00 PM local time on the next Mon-Fri day after
// now. Holidays are deliberately not considered here. The distance is
// measured from currentDueAt when present, otherwise from now, rounded up
// with a floor of one hour.
func DefaultExtensionHours(currentDueAt *time.Time, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	day := now.In(loc).AddDate(0, 0, 1)
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	target := time.Date(day.Year(), day.Month(), day.Day(), extensionTargetHour, 0, 0, 0, loc)

	base := now
	if currentDueAt != nil {
		base = *currentDueAt
	}
	hours := int(math.Ceil(target.Sub(base).Hours()))
	if hours < 1 {
		hours = 1
	}
	return hours
}

// ExtendedDueDate applies a manual extension: currentDueAt (or now when
// the ticket has no due date yet) plus the given whole hours.
func ExtendedDueDate(currentDueAt *time.Time, now time.Time, extensionHours int) time.Time {
	base := now
	if currentDueAt != nil {
		base = *currentDueAt
	}
	return base.Add(time.Duration(extensionHours) * time.Hour)
}
