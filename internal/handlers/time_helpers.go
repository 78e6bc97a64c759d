package handlers

import (
	"time"

	"github.com/cutclub/cutclub-backend/internal/timezone"
)

func parseDateIn(tz, dateStr string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", dateStr, timezone.Location(tz))
}

// validHM accepts "HH:MM" wall-clock strings, the format working hours are
// stored in.
func validHM(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}
