package report

import (
	"log"
	"time"
	_ "time/tzdata" // the zone must load on hosts without a tz database
)

// Zone: every day key and displayed date is computed here, whatever the
// viewer's or the server's local zone is.
const Zone = "America/Guatemala"

const keyLayout = "2006-01-02"

var location = loadLocation()

func loadLocation() *time.Location {
	loc, err := time.LoadLocation(Zone)
	if err != nil {
		log.Printf("[WARN] %s not available (%v), using UTC-6", Zone, err)
		return time.FixedZone("CST", -6*60*60)
	}
	return loc
}

func Location() *time.Location {
	return location
}

// isDateOnly: a value exactly at UTC midnight carries a calendar date, not an
// instant, and is never shifted into the zone.
func isDateOnly(t time.Time) bool {
	u := t.UTC()
	return u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0
}

// DateKey returns YYYY-MM-DD; keys sort lexicographically in date order.
func DateKey(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if isDateOnly(t) {
		return t.UTC().Format(keyLayout)
	}
	return t.In(location).Format(keyLayout)
}

// TodayKey is the key of the current instant.
func TodayKey(now time.Time) string {
	return now.In(location).Format(keyLayout)
}

// FormatDate: dd/mm/yyyy for date-only values, dd/mm/yyyy hh:mm otherwise.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if isDateOnly(t) {
		return t.UTC().Format("02/01/2006")
	}
	return t.In(location).Format("02/01/2006 15:04")
}

// ValidKey reports whether s is a YYYY-MM-DD calendar date.
func ValidKey(s string) bool {
	_, err := time.Parse(keyLayout, s)
	return err == nil
}
