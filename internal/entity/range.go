package entity

import "time"

// Range is an inclusive span of hour-resolution timestamps in UTC.
type Range struct {
	Start time.Time
	End   time.Time
}

// NewRange truncates both ends to the hour in UTC.
func NewRange(start, end time.Time) Range {
	return Range{
		Start: start.UTC().Truncate(time.Hour),
		End:   end.UTC().Truncate(time.Hour),
	}
}

// Empty reports whether the range contains no hours at all.
func (r Range) Empty() bool {
	return r.End.Before(r.Start)
}

// Count returns the number of hours in the range, both ends inclusive.
func (r Range) Count() int {
	if r.Empty() {
		return 0
	}

	return int(r.End.Sub(r.Start)/time.Hour) + 1
}

// Hours returns every hour from Start to End inclusive, in chronological
// order. An inverted range yields an empty slice.
func (r Range) Hours() []time.Time {
	if r.Empty() {
		return nil
	}

	hours := make([]time.Time, 0, r.Count())
	for t := r.Start; !t.After(r.End); t = t.Add(time.Hour) {
		hours = append(hours, t)
	}

	return hours
}
