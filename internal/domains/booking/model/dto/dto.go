package dto

import (
	"orzu/internal/domains/booking/model"
	"orzu/shared"
	"orzu/shared/constant"
	"orzu/shared/daterange"
	gDto "orzu/shared/dto"
	gModel "orzu/shared/model"
	"orzu/shared/timezone"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	RoomID    string `json:"room_id"    validate:"required,uuid"`
	GuestName string `json:"guest_name" validate:"required,max=100"`
	Notes     string `json:"notes"      validate:"omitempty,max=500"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date"   validate:"required,datetime=2006-01-02"`
}

func (c *CreateBookingRequest) ToModel(user string, stay daterange.Range) model.Booking {
	return model.Booking{
		ID:        uuid.NewString(),
		RoomID:    c.RoomID,
		GuestName: c.GuestName,
		Notes:     c.Notes,
		StartDate: stay.Start,
		EndDate:   stay.End,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateBookingRequest struct {
	RoomID    string  `db:"room_id"    json:"room_id"    validate:"omitempty,uuid"`
	GuestName string  `db:"guest_name" json:"guest_name" validate:"omitempty,max=100"`
	Notes     *string `db:"notes"      json:"notes"      validate:"omitempty,max=500"`
	StartDate string  `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string  `json:"end_date"   validate:"omitempty,datetime=2006-01-02"`
}

type ExtendBookingRequest struct {
	Nights int `json:"nights" validate:"omitempty,min=1,max=365"`
}

type CheckAvailabilityRequest struct {
	RoomID    string `json:"room_id"            validate:"required,uuid"`
	StartDate string `json:"start_date"         validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date"           validate:"required,datetime=2006-01-02"`
	ExcludeID string `json:"exclude_booking_id" validate:"omitempty,uuid"`
}

type BookingResponse struct {
	ID        string `json:"id"`
	RoomID    string `json:"room_id"`
	GuestName string `json:"guest_name"`
	Notes     string `json:"notes"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Nights    int    `json:"nights"`
	gDto.Metadata
}

func (b *BookingResponse) FromModel(mod model.Booking) {
	b.ID = mod.ID
	b.RoomID = mod.RoomID
	b.GuestName = mod.GuestName
	b.Notes = mod.Notes
	b.StartDate = mod.StartDate.Format(constant.DayFormat)
	b.EndDate = mod.EndDate.Format(constant.DayFormat)
	b.Nights = mod.Range().Nights()
	b.Metadata.FromModel(mod.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (g *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	g.TotalData = totalData
	g.TotalPage = shared.CalculateTotalPage(totalData, limit)

	g.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		g.Bookings[i].FromModel(mod)
	}
}

type CheckAvailabilityResponse struct {
	Available bool             `json:"available"`
	Conflict  *BookingResponse `json:"conflict,omitempty"`
}
