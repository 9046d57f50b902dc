package model

import "orzu/shared/model"

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID            = "id"
	FieldRoomNumber    = "room_number"
	FieldRoomType      = "room_type"
	FieldCapacity      = "capacity"
	FieldPricePerNight = "price_per_night"
	FieldDescription   = "description"
	FieldActive        = "active"
)

const (
	StatusAvailable = "available"
	StatusOccupied  = "occupied"
)

const (
	TypeStandard2 = "standard_2"
	TypeStandard4 = "standard_4"
	TypeLux2      = "lux_2"
	TypeVipSmall4 = "vip_small_4"
	TypeVipBig4   = "vip_big_4"
	TypeApartment = "apartment_4"
	TypeCottage   = "cottage_6"
	TypePresident = "president_8"
)

// TypeCapacities maps each room type to its default guest capacity.
var TypeCapacities = map[string]int{
	TypeStandard2: 2,
	TypeStandard4: 4,
	TypeLux2:      2,
	TypeVipSmall4: 4,
	TypeVipBig4:   4,
	TypeApartment: 4,
	TypeCottage:   6,
	TypePresident: 8,
}

// ValidType reports whether the given room type is known.
func ValidType(roomType string) bool {
	_, ok := TypeCapacities[roomType]

	return ok
}

type Room struct {
	ID            string  `db:"id"`
	RoomNumber    string  `db:"room_number"`
	RoomType      string  `db:"room_type"`
	Capacity      int     `db:"capacity"`
	PricePerNight float64 `db:"price_per_night"`
	Description   string  `db:"description"`
	Active        bool    `db:"active"`
	model.Metadata
}
