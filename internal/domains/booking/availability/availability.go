package availability

import (
	"fmt"

	"orzu/internal/domains/booking/model"
	"orzu/shared/daterange"
	"orzu/shared/failure"
)

// FirstConflict scans the existing bookings for one whose stay overlaps
// the candidate range. A booking with the excluded ID is skipped so that
// an update never conflicts with itself. The scan is pure: it touches no
// store and no clock.
func FirstConflict(candidate daterange.Range, excludeID string, existing []model.Booking) (model.Booking, bool) {
	for _, booking := range existing {
		if excludeID != "" && booking.ID == excludeID {
			continue
		}

		if candidate.Overlaps(booking.Range()) {
			return booking, true
		}
	}

	return model.Booking{}, false
}

// Check returns a conflict failure naming the clashing stay when the
// candidate range overlaps any existing booking, nil otherwise.
func Check(candidate daterange.Range, excludeID string, existing []model.Booking) error {
	clash, found := FirstConflict(candidate, excludeID, existing)
	if !found {
		return nil
	}

	return failure.Conflict(fmt.Sprintf("room is already booked for %s", clash.Range())) // nolint:wrapcheck
}
