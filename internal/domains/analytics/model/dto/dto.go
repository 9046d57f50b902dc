package dto

type OccupancyRequest struct {
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date"   validate:"omitempty,datetime=2006-01-02"`
}

type DayOccupancy struct {
	Date          string  `json:"date"`
	OccupiedRooms int     `json:"occupied_rooms"`
	TotalRooms    int     `json:"total_rooms"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

type OccupancyResponse struct {
	StartDate   string         `json:"start_date"`
	EndDate     string         `json:"end_date"`
	Days        []DayOccupancy `json:"days"`
	AverageRate float64        `json:"average_rate"`
}

type RoomTypeStat struct {
	RoomType string  `json:"room_type"`
	Rooms    int     `json:"rooms"`
	Bookings int     `json:"bookings"`
	Nights   int     `json:"nights"`
	Revenue  float64 `json:"revenue"`
}

type RoomTypeStatsResponse struct {
	Stats []RoomTypeStat `json:"stats"`
}

type TrendPoint struct {
	Month    string `json:"month"`
	Bookings int    `json:"bookings"`
	Nights   int    `json:"nights"`
}

type BookingTrendsResponse struct {
	Months int          `json:"months"`
	Points []TrendPoint `json:"points"`
}

type UserActivityEntry struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Actions  int    `json:"actions"`
}

type UserActivityResponse struct {
	Days    int                 `json:"days"`
	Entries []UserActivityEntry `json:"entries"`
}

type RevenueForecastResponse struct {
	StartDate  string             `json:"start_date"`
	EndDate    string             `json:"end_date"`
	Total      float64            `json:"total"`
	ByRoomType map[string]float64 `json:"by_room_type"`
}
