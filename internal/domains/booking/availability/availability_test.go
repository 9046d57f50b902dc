package availability_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"orzu/internal/domains/booking/availability"
	"orzu/internal/domains/booking/model"
	"orzu/shared/daterange"
	"orzu/shared/failure"
)

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}

	return t
}

func booking(id, start, end string) model.Booking {
	return model.Booking{
		ID:        id,
		RoomID:    "room-1",
		StartDate: day(start),
		EndDate:   day(end),
	}
}

func TestFirstConflict(t *testing.T) {
	existing := []model.Booking{
		booking("a", "2025-09-10", "2025-09-15"),
		booking("b", "2025-09-20", "2025-09-25"),
	}

	tests := []struct {
		name      string
		start     string
		end       string
		excludeID string
		wantID    string
		wantClash bool
	}{
		{
			name:      "containment clashes",
			start:     "2025-09-11",
			end:       "2025-09-14",
			wantID:    "a",
			wantClash: true,
		},
		{
			name:      "same-day turnover is allowed",
			start:     "2025-09-15",
			end:       "2025-09-18",
			wantClash: false,
		},
		{
			name:      "ending on check-in day is allowed",
			start:     "2025-09-08",
			end:       "2025-09-10",
			wantClash: false,
		},
		{
			name:      "gap between stays is free",
			start:     "2025-09-16",
			end:       "2025-09-19",
			wantClash: false,
		},
		{
			name:      "straddling the gap clashes with the later stay",
			start:     "2025-09-18",
			end:       "2025-09-22",
			wantID:    "b",
			wantClash: true,
		},
		{
			name:      "excluded booking never clashes with itself",
			start:     "2025-09-10",
			end:       "2025-09-15",
			excludeID: "a",
			wantClash: false,
		},
		{
			name:      "exclusion skips only the named booking",
			start:     "2025-09-12",
			end:       "2025-09-22",
			excludeID: "a",
			wantID:    "b",
			wantClash: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate, err := daterange.Parse(tt.start, tt.end)
			assert.NoError(t, err)

			clash, found := availability.FirstConflict(candidate, tt.excludeID, existing)

			assert.Equal(t, tt.wantClash, found)

			if tt.wantClash {
				assert.Equal(t, tt.wantID, clash.ID)
			}
		})
	}
}

func TestFirstConflict_NoBookings(t *testing.T) {
	candidate, _ := daterange.Parse("2025-09-10", "2025-09-15")

	_, found := availability.FirstConflict(candidate, "", nil)

	assert.False(t, found)
}

func TestCheck(t *testing.T) {
	existing := []model.Booking{booking("a", "2025-09-10", "2025-09-15")}

	candidate, _ := daterange.Parse("2025-09-12", "2025-09-20")

	err := availability.Check(candidate, "", existing)

	assert.Error(t, err)
	assert.True(t, failure.IsConflict(err))
	assert.Contains(t, err.Error(), "2025-09-10..2025-09-15")

	free, _ := daterange.Parse("2025-09-15", "2025-09-20")

	assert.NoError(t, availability.Check(free, "", existing))
}
