package model

import (
	"time"

	"orzu/shared/daterange"
	"orzu/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID        = "id"
	FieldRoomID    = "room_id"
	FieldGuestName = "guest_name"
	FieldNotes     = "notes"
	FieldStartDate = "start_date"
	FieldEndDate   = "end_date"
)

type Booking struct {
	ID        string    `db:"id"`
	RoomID    string    `db:"room_id"`
	GuestName string    `db:"guest_name"`
	Notes     string    `db:"notes"`
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
	model.Metadata
}

// Range returns the booking's stay as a half-open date range.
func (b Booking) Range() daterange.Range {
	return daterange.Range{Start: daterange.Day(b.StartDate), End: daterange.Day(b.EndDate)}
}
