package daterange

import (
	"fmt"
	"time"

	"orzu/shared/constant"
	"orzu/shared/failure"
)

// Range is a half-open calendar interval [Start, End) over whole days.
// End is the check-out date: a guest leaving on End and another arriving
// on the same day do not collide (check-out 12:00, check-in 14:00).
type Range struct {
	Start time.Time
	End   time.Time
}

// New builds a Range from calendar dates, truncating any time-of-day
// component. The range must span at least one night.
func New(start, end time.Time) (Range, error) {
	r := Range{Start: Day(start), End: Day(end)}

	if !r.End.After(r.Start) {
		return Range{}, failure.BadRequestFromString(
			fmt.Sprintf("end date %s must be after start date %s",
				r.End.Format(constant.DayFormat), r.Start.Format(constant.DayFormat)))
	}

	return r, nil
}

// Parse builds a Range from two YYYY-MM-DD strings.
func Parse(start, end string) (Range, error) {
	startDate, err := time.Parse(constant.DayFormat, start)
	if err != nil {
		return Range{}, failure.BadRequestFromString(fmt.Sprintf("invalid start date %q, expected YYYY-MM-DD", start))
	}

	endDate, err := time.Parse(constant.DayFormat, end)
	if err != nil {
		return Range{}, failure.BadRequestFromString(fmt.Sprintf("invalid end date %q, expected YYYY-MM-DD", end))
	}

	return New(startDate, endDate)
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether two half-open ranges share at least one night.
// Ranges touching only at a boundary date are a valid same-day turnover,
// not an overlap.
func (r Range) Overlaps(other Range) bool {
	return r.Start.Before(other.End) && r.End.After(other.Start)
}

// ContainsDay reports whether the room is occupied on day d, i.e.
// Start <= d < End. The check-out day itself counts as free.
func (r Range) ContainsDay(d time.Time) bool {
	d = Day(d)

	return !d.Before(r.Start) && d.Before(r.End)
}

// Nights returns the number of nights the range spans.
func (r Range) Nights() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// Clamp trims the range to the given bounds. The second return value is
// false when the range lies entirely outside the bounds.
func (r Range) Clamp(bounds Range) (Range, bool) {
	clamped := r

	if clamped.Start.Before(bounds.Start) {
		clamped.Start = bounds.Start
	}

	if clamped.End.After(bounds.End) {
		clamped.End = bounds.End
	}

	if !clamped.End.After(clamped.Start) {
		return Range{}, false
	}

	return clamped, true
}

// Following returns the default follow-on range used when extending a
// booking: it starts the day after the current end date and spans one night.
func (r Range) Following() Range {
	start := r.End.AddDate(0, 0, 1)

	return Range{Start: start, End: start.AddDate(0, 0, 1)}
}

func (r Range) String() string {
	return fmt.Sprintf("%s..%s", r.Start.Format(constant.DayFormat), r.End.Format(constant.DayFormat))
}
