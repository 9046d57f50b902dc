package daterange_test

import (
	"testing"
	"time"

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

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{name: "one night", start: "2025-09-10", end: "2025-09-11", wantErr: false},
		{name: "multi night", start: "2025-09-10", end: "2025-09-15", wantErr: false},
		{name: "zero length", start: "2025-09-10", end: "2025-09-10", wantErr: true},
		{name: "inverted", start: "2025-09-15", end: "2025-09-10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := daterange.New(day(tt.start), day(tt.end))

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}

				if failure.GetCode(err) != 400 {
					t.Errorf("expected bad request code, got %d", failure.GetCode(err))
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestParse(t *testing.T) {
	r, err := daterange.Parse("2025-09-10", "2025-09-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Nights() != 5 {
		t.Errorf("expected 5 nights, got %d", r.Nights())
	}

	if _, err := daterange.Parse("10.09.2025", "2025-09-15"); err == nil {
		t.Error("expected error for malformed start date")
	}

	if _, err := daterange.Parse("2025-09-10", "tomorrow"); err == nil {
		t.Error("expected error for malformed end date")
	}
}

func TestRange_Overlaps(t *testing.T) {
	existing, _ := daterange.Parse("2025-09-10", "2025-09-15")

	tests := []struct {
		name     string
		start    string
		end      string
		overlaps bool
	}{
		{name: "starts on checkout day", start: "2025-09-15", end: "2025-09-18", overlaps: false},
		{name: "ends on checkin day", start: "2025-09-08", end: "2025-09-10", overlaps: false},
		{name: "contained within", start: "2025-09-12", end: "2025-09-14", overlaps: true},
		{name: "fully containing", start: "2025-09-08", end: "2025-09-20", overlaps: true},
		{name: "overlaps head", start: "2025-09-08", end: "2025-09-11", overlaps: true},
		{name: "overlaps tail", start: "2025-09-14", end: "2025-09-18", overlaps: true},
		{name: "disjoint before", start: "2025-09-01", end: "2025-09-05", overlaps: false},
		{name: "disjoint after", start: "2025-09-20", end: "2025-09-25", overlaps: false},
		{name: "identical", start: "2025-09-10", end: "2025-09-15", overlaps: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate, err := daterange.Parse(tt.start, tt.end)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := candidate.Overlaps(existing); got != tt.overlaps {
				t.Errorf("expected Overlaps to be %v, got %v", tt.overlaps, got)
			}

			// The relation is symmetric.
			if got := existing.Overlaps(candidate); got != tt.overlaps {
				t.Errorf("expected symmetric Overlaps to be %v, got %v", tt.overlaps, got)
			}
		})
	}
}

func TestRange_ContainsDay(t *testing.T) {
	r, _ := daterange.Parse("2025-09-10", "2025-09-15")

	if !r.ContainsDay(day("2025-09-10")) {
		t.Error("expected check-in day to be occupied")
	}

	if !r.ContainsDay(day("2025-09-14")) {
		t.Error("expected last night to be occupied")
	}

	if r.ContainsDay(day("2025-09-15")) {
		t.Error("expected check-out day to be free")
	}

	if r.ContainsDay(day("2025-09-09")) {
		t.Error("expected day before check-in to be free")
	}
}

func TestRange_Clamp(t *testing.T) {
	bounds, _ := daterange.Parse("2025-09-01", "2025-09-30")

	r, _ := daterange.Parse("2025-08-20", "2025-09-05")

	clamped, ok := r.Clamp(bounds)
	if !ok {
		t.Fatal("expected range to intersect bounds")
	}

	if clamped.String() != "2025-09-01..2025-09-05" {
		t.Errorf("unexpected clamped range: %s", clamped)
	}

	outside, _ := daterange.Parse("2025-10-10", "2025-10-12")
	if _, ok := outside.Clamp(bounds); ok {
		t.Error("expected range outside bounds to be rejected")
	}
}

func TestRange_Following(t *testing.T) {
	r, _ := daterange.Parse("2025-09-10", "2025-09-15")

	next := r.Following()
	if next.String() != "2025-09-16..2025-09-17" {
		t.Errorf("unexpected follow-on range: %s", next)
	}

	if next.Nights() != 1 {
		t.Errorf("expected one-night default, got %d", next.Nights())
	}
}
