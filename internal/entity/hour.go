package entity

import (
	"time"

	"github.com/jgivc/radarfetch/internal/common"
)

// NewHour builds an hour-resolution UTC timestamp from calendar components.
// time.Date silently normalizes out-of-range components (February 30 becomes
// March 2), so the components are checked against the built value instead.
func NewHour(year, month, day, hour int) (time.Time, error) {
	t := time.Date(year, time.Month(month), day, hour, 0, 0, 0, time.UTC)

	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day || t.Hour() != hour {
		return time.Time{}, common.ErrInvalidDate
	}

	return t, nil
}
