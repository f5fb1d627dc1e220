package sla

import (
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// maxBusinessDaySteps bounds the business-hours stepping loop. Valid
// configurations never get near it; it guards against malformed schedules
// that would otherwise loop forever.
const maxBusinessDaySteps = 365

const (
	defaultOpeningMinute = 8 * 60
	defaultClosingMinute = 18 * 60
)

// DueDate computes the instant a ticket's SLA target expires.
//
// With business hours disabled the result is plain wall-clock arithmetic:
// createdAt + targetMinutes. With business hours enabled, the budget is
// consumed only inside the configured weekly window in the organization's
// timezone, skipping holidays and non-workdays; a creation instant before
// opening time snaps to that day's opening before consuming any budget.
//
// The returned bool reports whether a naive fallback was taken despite
// business hours being requested (absent or invalid configuration, or the
// stepping bound exhausted). Callers should log it; it is never an error.
func DueDate(createdAt time.Time, targetMinutes int, businessHoursEnabled bool, cfg *domain.BusinessHoursConfig, loc *time.Location) (time.Time, bool) {
	naive := createdAt.Add(time.Duration(targetMinutes) * time.Minute)
	if !businessHoursEnabled {
		return naive, false
	}

	sched, ok := newSchedule(cfg)
	if !ok {
		return naive, true
	}
	if loc == nil {
		loc = time.UTC
	}

	current := createdAt.In(loc)
	remaining := targetMinutes

	for i := 0; i < maxBusinessDaySteps; i++ {
		if !sched.isWorkday(current) {
			current = sched.nextOpening(current)
			continue
		}
		minuteOfDay := current.Hour()*60 + current.Minute()
		if minuteOfDay < sched.start {
			current = sched.openingOn(current)
			minuteOfDay = sched.start
		}
		if minuteOfDay >= sched.end {
			current = sched.nextOpening(current)
			continue
		}
		remainingInDay := sched.end - minuteOfDay
		if remaining <= remainingInDay {
			return current.Add(time.Duration(remaining) * time.Minute).UTC(), false
		}
		remaining -= remainingInDay
		current = sched.nextOpening(current)
	}

	return naive, true
}

// schedule is a validated, minute-granularity view of a business-hours
// configuration.
type schedule struct {
	workdays map[time.Weekday]struct{}
	start    int
	end      int
	holidays map[string]struct{}
}

func newSchedule(cfg *domain.BusinessHoursConfig) (schedule, bool) {
	if cfg == nil || len(cfg.Workdays) == 0 {
		return schedule{}, false
	}

	s := schedule{
		workdays: make(map[time.Weekday]struct{}, len(cfg.Workdays)),
		start:    parseMinuteOfDay(cfg.StartTime, defaultOpeningMinute),
		end:      parseMinuteOfDay(cfg.EndTime, defaultClosingMinute),
		holidays: make(map[string]struct{}, len(cfg.Holidays)),
	}
	if s.start >= s.end {
		return schedule{}, false
	}
	for _, day := range cfg.Workdays {
		if day < 0 || day > 6 {
			return schedule{}, false
		}
		s.workdays[time.Weekday(day)] = struct{}{}
	}
	for _, h := range cfg.Holidays {
		s.holidays[strings.TrimSpace(h)] = struct{}{}
	}
	return s, true
}

func (s schedule) isWorkday(t time.Time) bool {
	if _, ok := s.workdays[t.Weekday()]; !ok {
		return false
	}
	_, holiday := s.holidays[t.Format("2006-01-02")]
	return !holiday
}

// openingOn returns the opening instant on t's date.
func (s schedule) openingOn(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), s.start/60, s.start%60, 0, 0, t.Location())
}

// nextOpening returns the opening instant on the day after t.
func (s schedule) nextOpening(t time.Time) time.Time {
	return s.openingOn(t.AddDate(0, 0, 1))
}

// parseMinuteOfDay parses an "HH:MM" string, returning fallback when it
// does not parse.
func parseMinuteOfDay(raw string, fallback int) int {
	parsed, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return parsed.Hour()*60 + parsed.Minute()
}

// LoadLocation resolves an IANA timezone identifier, falling back to UTC
// when the identifier is empty or unknown.
func LoadLocation(name string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}
