package dto

import (
	"time"

	bookingModel "orzu/internal/domains/booking/model"
	"orzu/internal/domains/room/model"
	"orzu/shared"
	"orzu/shared/constant"
	gDto "orzu/shared/dto"
	gModel "orzu/shared/model"
	"orzu/shared/timezone"

	"github.com/google/uuid"
)

type CreateRoomRequest struct {
	RoomNumber    string  `json:"room_number"     validate:"required,max=20"`
	RoomType      string  `json:"room_type"       validate:"required,oneof=standard_2 standard_4 lux_2 vip_small_4 vip_big_4 apartment_4 cottage_6 president_8"`
	Capacity      int     `json:"capacity"        validate:"omitempty,min=1,max=20"`
	PricePerNight float64 `json:"price_per_night" validate:"omitempty,min=0"`
	Description   string  `json:"description"     validate:"omitempty,max=500"`
	Active        *bool   `json:"active"          validate:"omitempty"`
}

func (c *CreateRoomRequest) ToModel(user string) model.Room {
	active := true
	if c.Active != nil {
		active = *c.Active
	}

	capacity := c.Capacity
	if capacity == 0 {
		capacity = model.TypeCapacities[c.RoomType]
	}

	return model.Room{
		ID:            uuid.NewString(),
		RoomNumber:    c.RoomNumber,
		RoomType:      c.RoomType,
		Capacity:      capacity,
		PricePerNight: c.PricePerNight,
		Description:   c.Description,
		Active:        active,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateRoomRequest struct {
	RoomNumber    string   `db:"room_number"     json:"room_number"     validate:"omitempty,max=20"`
	RoomType      string   `db:"room_type"       json:"room_type"       validate:"omitempty,oneof=standard_2 standard_4 lux_2 vip_small_4 vip_big_4 apartment_4 cottage_6 president_8"`
	Capacity      *int     `db:"capacity"        json:"capacity"        validate:"omitempty,min=1,max=20"`
	PricePerNight *float64 `db:"price_per_night" json:"price_per_night" validate:"omitempty,min=0"`
	Description   *string  `db:"description"     json:"description"     validate:"omitempty,max=500"`
	Active        *bool    `db:"active"          json:"active"          validate:"omitempty"`
}

// RoomBookingStatus is the short booking reference attached to a room's
// occupancy status.
type RoomBookingStatus struct {
	ID        string `json:"id"`
	GuestName string `json:"guest_name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type RoomResponse struct {
	ID             string             `json:"id"`
	RoomNumber     string             `json:"room_number"`
	RoomType       string             `json:"room_type"`
	Capacity       int                `json:"capacity"`
	PricePerNight  float64            `json:"price_per_night"`
	Description    string             `json:"description"`
	Active         bool               `json:"active"`
	IsAvailable    bool               `json:"is_available"`
	CurrentBooking *RoomBookingStatus `json:"current_booking,omitempty"`
	NextBooking    *RoomBookingStatus `json:"next_booking,omitempty"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(mod model.Room) {
	r.ID = mod.ID
	r.RoomNumber = mod.RoomNumber
	r.RoomType = mod.RoomType
	r.Capacity = mod.Capacity
	r.PricePerNight = mod.PricePerNight
	r.Description = mod.Description
	r.Active = mod.Active
	r.Metadata.FromModel(mod.Metadata)
}

// SetBookingStatus derives the room's occupancy from its bookings. A room is
// occupied when a booking covers today, start_date <= today < end_date, so the
// check-out day itself counts as free.
func (r *RoomResponse) SetBookingStatus(today time.Time, bookings []bookingModel.Booking) {
	r.IsAvailable = true
	r.CurrentBooking = nil
	r.NextBooking = nil

	var nextStart time.Time

	for _, booking := range bookings {
		if booking.Range().ContainsDay(today) {
			r.IsAvailable = false
			r.CurrentBooking = newRoomBookingStatus(booking)

			continue
		}

		if booking.StartDate.After(today) && (r.NextBooking == nil || booking.StartDate.Before(nextStart)) {
			nextStart = booking.StartDate
			r.NextBooking = newRoomBookingStatus(booking)
		}
	}
}

func newRoomBookingStatus(booking bookingModel.Booking) *RoomBookingStatus {
	return &RoomBookingStatus{
		ID:        booking.ID,
		GuestName: booking.GuestName,
		StartDate: booking.StartDate.Format(constant.DayFormat),
		EndDate:   booking.EndDate.Format(constant.DayFormat),
	}
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}
