// Package schedule parses the schedule-specification grammar and computes
// due times. The grammar is a closed set of literal forms:
//
//	daily | weekly | hourly | every_<N>_minutes | every_<N>_hours | HH:MM
//
// Anything else is rejected with a descriptive error at parse time.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type kind int

const (
	kindInterval kind = iota
	kindAtTime
)

// Schedule is the parsed, evaluable form of a schedule specification.
// The zero value is not valid; obtain one through Parse.
type Schedule struct {
	spec   string
	kind   kind
	period time.Duration // kindInterval
	hour   int           // kindAtTime
	minute int
}

// Parse validates and converts a schedule specification. The grammar is
// case-sensitive and whitespace-sensitive.
func Parse(spec string) (Schedule, error) {
	switch spec {
	case "daily":
		return Schedule{spec: spec, kind: kindInterval, period: 24 * time.Hour}, nil
	case "weekly":
		return Schedule{spec: spec, kind: kindInterval, period: 7 * 24 * time.Hour}, nil
	case "hourly":
		return Schedule{spec: spec, kind: kindInterval, period: time.Hour}, nil
	}

	if strings.HasPrefix(spec, "every_") {
		return parseEvery(spec)
	}
	if len(spec) == 5 && spec[2] == ':' {
		return parseAtTime(spec)
	}
	return Schedule{}, fmt.Errorf("invalid schedule specification %q: expected daily, weekly, hourly, every_<N>_minutes, every_<N>_hours or HH:MM", spec)
}

func parseEvery(spec string) (Schedule, error) {
	var quantity string
	var unit time.Duration

	switch {
	case strings.HasSuffix(spec, "_minutes"):
		quantity = strings.TrimSuffix(strings.TrimPrefix(spec, "every_"), "_minutes")
		unit = time.Minute
	case strings.HasSuffix(spec, "_hours"):
		quantity = strings.TrimSuffix(strings.TrimPrefix(spec, "every_"), "_hours")
		unit = time.Hour
	default:
		return Schedule{}, fmt.Errorf("invalid schedule specification %q: interval unit must be minutes or hours", spec)
	}

	n, err := parsePositiveInt(quantity)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid schedule specification %q: %w", spec, err)
	}
	return Schedule{spec: spec, kind: kindInterval, period: time.Duration(n) * unit}, nil
}

func parseAtTime(spec string) (Schedule, error) {
	hour, err := parseTwoDigits(spec[0:2])
	if err != nil || hour > 23 {
		return Schedule{}, fmt.Errorf("invalid schedule specification %q: hour must be 00-23", spec)
	}
	minute, err := parseTwoDigits(spec[3:5])
	if err != nil || minute > 59 {
		return Schedule{}, fmt.Errorf("invalid schedule specification %q: minute must be 00-59", spec)
	}
	return Schedule{spec: spec, kind: kindAtTime, hour: hour, minute: minute}, nil
}

func parsePositiveInt(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("interval count is empty")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("interval count %q is not a positive integer", s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("interval count %q is not a positive integer", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("interval count must be greater than zero")
	}
	return n, nil
}

func parseTwoDigits(s string) (int, error) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not a zero-padded number: %q", s)
		}
	}
	return strconv.Atoi(s)
}

// Next returns the due time strictly after the given instant. Interval
// forms are anchored on the instant itself (scheduling time or the
// moment the job last fired); wall-clock forms resolve to the next
// occurrence of HH:MM in the instant's location.
func (s Schedule) Next(after time.Time) time.Time {
	switch s.kind {
	case kindAtTime:
		next := time.Date(after.Year(), after.Month(), after.Day(), s.hour, s.minute, 0, 0, after.Location())
		if !next.After(after) {
			next = next.AddDate(0, 0, 1)
		}
		return next
	default:
		return after.Add(s.period)
	}
}

// Spec returns the original specification text.
func (s Schedule) Spec() string {
	return s.spec
}

func (s Schedule) String() string {
	return s.spec
}
