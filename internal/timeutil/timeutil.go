package timeutil

import (
	"sync"
	"time"
	_ "time/tzdata"
)

var (
	mu       sync.RWMutex
	location = time.UTC
)

// SetLocation sets the business time zone used for display and day boundaries.
func SetLocation(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	mu.Lock()
	location = loc
	mu.Unlock()
	return nil
}

// Location returns the business time zone.
func Location() *time.Location {
	mu.RLock()
	defer mu.RUnlock()
	return location
}

// Now returns the current time in the business zone
func Now() time.Time {
	return time.Now().In(Location())
}

// ToLocal converts any time to the business zone
func ToLocal(t time.Time) time.Time {
	return t.In(Location())
}

// ParseLocal parses a time string in the business zone
func ParseLocal(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, Location())
}

// Format formats a time in the business zone using the given layout
func Format(t time.Time, layout string) string {
	return t.In(Location()).Format(layout)
}

// StartOfDay returns 00:00:00 of t's day in the business zone
func StartOfDay(t time.Time) time.Time {
	loc := Location()
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the last instant of t's day in the business zone
func EndOfDay(t time.Time) time.Time {
	loc := Location()
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 23, 59, 59, 999999999, loc)
}

// Common layouts
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 03:04 PM"
	DisplayDate    = "02 Jan 2006"
)
