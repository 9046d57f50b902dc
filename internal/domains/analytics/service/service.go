package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"orzu/infras/otel"
	"orzu/internal/domains/analytics/model/dto"
	bookingModel "orzu/internal/domains/booking/model"
	bookingRepo "orzu/internal/domains/booking/repository"
	historyModel "orzu/internal/domains/history/model"
	historyRepo "orzu/internal/domains/history/repository"
	roomModel "orzu/internal/domains/room/model"
	roomRepo "orzu/internal/domains/room/repository"
	"orzu/permissions"
	"orzu/shared/constant"
	"orzu/shared/daterange"
	gDto "orzu/shared/dto"
	"orzu/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	defaultOccupancyDays = 30
	defaultTrendMonths   = 6
	defaultActivityDays  = 30
	defaultForecastDays  = 30
)

type Analytics interface {
	Occupancy(ctx context.Context, req dto.OccupancyRequest) (dto.OccupancyResponse, error)
	RoomTypeStats(ctx context.Context) (dto.RoomTypeStatsResponse, error)
	BookingTrends(ctx context.Context, months int) (dto.BookingTrendsResponse, error)
	UserActivity(ctx context.Context, days int) (dto.UserActivityResponse, error)
	RevenueForecast(ctx context.Context, days int) (dto.RevenueForecastResponse, error)
	ExportRoomsCSV(ctx context.Context) ([]byte, error)
	ExportBookingsCSV(ctx context.Context) ([]byte, error)
}

type serviceImpl struct {
	bookings bookingRepo.Booking
	rooms    roomRepo.Room
	history  historyRepo.History
	otel     otel.Otel
}

func New(bookings bookingRepo.Booking, rooms roomRepo.Room, history historyRepo.History, otel otel.Otel) Analytics {
	return &serviceImpl{
		bookings: bookings,
		rooms:    rooms,
		history:  history,
		otel:     otel,
	}
}

// Occupancy reports per-day room occupancy over the requested window. A day
// counts as occupied for a booking when start_date <= day < end_date, so the
// check-out day itself stays free for the next guest.
func (s *serviceImpl) Occupancy(ctx context.Context, req dto.OccupancyRequest) (res dto.OccupancyResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Occupancy")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = permissions.Require(ctx, permissions.CapabilityAnalytics); err != nil {
		return res, err
	}

	window, err := s.resolveWindow(req.StartDate, req.EndDate, defaultOccupancyDays)
	if err != nil {
		return res, err
	}

	rooms, err := s.activeRooms(ctx)
	if err != nil {
		return res, err
	}

	bookings, err := s.bookingsOverlapping(ctx, window)
	if err != nil {
		return res, err
	}

	// Deactivated rooms are excluded from the denominator, so their lingering
	// bookings must not count toward the numerator either.
	activeIDs := make(map[string]struct{}, len(rooms))
	for _, room := range rooms {
		activeIDs[room.ID] = struct{}{}
	}

	counted := bookings[:0]

	for _, booking := range bookings {
		if _, ok := activeIDs[booking.RoomID]; ok {
			counted = append(counted, booking)
		}
	}

	res.StartDate = window.Start.Format(constant.DayFormat)
	res.EndDate = window.End.Format(constant.DayFormat)

	var rateSum float64

	for day := window.Start; day.Before(window.End); day = day.AddDate(0, 0, 1) {
		occupied := 0

		for _, booking := range counted {
			if booking.Range().ContainsDay(day) {
				occupied++
			}
		}

		rate := 0.0
		if len(rooms) > 0 {
			rate = float64(occupied) / float64(len(rooms))
		}

		rateSum += rate

		res.Days = append(res.Days, dto.DayOccupancy{
			Date:          day.Format(constant.DayFormat),
			OccupiedRooms: occupied,
			TotalRooms:    len(rooms),
			OccupancyRate: rate,
		})
	}

	if len(res.Days) > 0 {
		res.AverageRate = rateSum / float64(len(res.Days))
	}

	return res, nil
}

func (s *serviceImpl) RoomTypeStats(ctx context.Context) (res dto.RoomTypeStatsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RoomTypeStats")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = permissions.Require(ctx, permissions.CapabilityAnalytics); err != nil {
		return res, err
	}

	rooms, err := s.allRooms(ctx)
	if err != nil {
		return res, err
	}

	bookings, err := s.bookings.GetAll(ctx, gDto.QueryParams{}, gDto.FilterGroup{})
	if err != nil {
		log.Error().Err(err).Msg("failed to load bookings for room type stats")

		return res, fmt.Errorf("failed to load bookings for room type stats: %w", err)
	}

	roomsByID := make(map[string]roomModel.Room, len(rooms))
	statsByType := make(map[string]*dto.RoomTypeStat)

	for _, room := range rooms {
		roomsByID[room.ID] = room

		stat, ok := statsByType[room.RoomType]
		if !ok {
			stat = &dto.RoomTypeStat{RoomType: room.RoomType}
			statsByType[room.RoomType] = stat
		}

		stat.Rooms++
	}

	for _, booking := range bookings {
		room, ok := roomsByID[booking.RoomID]
		if !ok {
			continue
		}

		stat := statsByType[room.RoomType]
		nights := booking.Range().Nights()

		stat.Bookings++
		stat.Nights += nights
		stat.Revenue += float64(nights) * room.PricePerNight
	}

	for _, stat := range statsByType {
		res.Stats = append(res.Stats, *stat)
	}

	sort.Slice(res.Stats, func(i, j int) bool {
		return res.Stats[i].RoomType < res.Stats[j].RoomType
	})

	return res, nil
}

// BookingTrends aggregates bookings per calendar month of their start date
// over the trailing window.
func (s *serviceImpl) BookingTrends(ctx context.Context, months int) (res dto.BookingTrendsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".BookingTrends")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = permissions.Require(ctx, permissions.CapabilityAnalytics); err != nil {
		return res, err
	}

	if months <= 0 {
		months = defaultTrendMonths
	}

	now := daterange.Day(timezone.Now())
	windowStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    bookingModel.FieldStartDate,
				Operator: gDto.FilterOperatorGreaterEq,
				Value:    windowStart,
				Table:    bookingModel.TableName,
			},
		},
	}

	bookings, err := s.bookings.GetAll(ctx, gDto.QueryParams{}, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to load bookings for trends")

		return res, fmt.Errorf("failed to load bookings for trends: %w", err)
	}

	pointsByMonth := make(map[string]*dto.TrendPoint, months)

	res.Months = months

	for i := range months {
		month := windowStart.AddDate(0, i, 0).Format(constant.MonthFormat)
		point := &dto.TrendPoint{Month: month}
		pointsByMonth[month] = point
		res.Points = append(res.Points, dto.TrendPoint{Month: month})
	}

	for _, booking := range bookings {
		point, ok := pointsByMonth[daterange.Day(booking.StartDate).Format(constant.MonthFormat)]
		if !ok {
			continue
		}

		point.Bookings++
		point.Nights += booking.Range().Nights()
	}

	for i := range res.Points {
		res.Points[i] = *pointsByMonth[res.Points[i].Month]
	}

	return res, nil
}

// UserActivity ranks staff by the number of recorded actions inside the
// trailing window.
func (s *serviceImpl) UserActivity(ctx context.Context, days int) (res dto.UserActivityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UserActivity")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = permissions.Require(ctx, permissions.CapabilityAnalytics); err != nil {
		return res, err
	}

	if days <= 0 {
		days = defaultActivityDays
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    constant.FieldCreatedAt,
				Operator: gDto.FilterOperatorGreaterEq,
				Value:    timezone.Now().AddDate(0, 0, -days),
				Table:    historyModel.TableName,
			},
		},
	}

	logs, err := s.history.GetAll(ctx, gDto.QueryParams{}, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to load history for user activity")

		return res, fmt.Errorf("failed to load history for user activity: %w", err)
	}

	entriesByUser := make(map[string]*dto.UserActivityEntry)

	for _, entry := range logs {
		userEntry, ok := entriesByUser[entry.UserID]
		if !ok {
			userEntry = &dto.UserActivityEntry{UserID: entry.UserID, Username: entry.Username}
			entriesByUser[entry.UserID] = userEntry
		}

		userEntry.Actions++
	}

	res.Days = days

	for _, entry := range entriesByUser {
		res.Entries = append(res.Entries, *entry)
	}

	sort.Slice(res.Entries, func(i, j int) bool {
		if res.Entries[i].Actions != res.Entries[j].Actions {
			return res.Entries[i].Actions > res.Entries[j].Actions
		}

		return res.Entries[i].Username < res.Entries[j].Username
	})

	return res, nil
}

// RevenueForecast projects revenue from bookings falling inside the upcoming
// window, counting only the nights each booking spends within it.
func (s *serviceImpl) RevenueForecast(ctx context.Context, days int) (res dto.RevenueForecastResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RevenueForecast")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = permissions.Require(ctx, permissions.CapabilityAnalytics); err != nil {
		return res, err
	}

	if days <= 0 {
		days = defaultForecastDays
	}

	start := daterange.Day(timezone.Now())
	window := daterange.Range{Start: start, End: start.AddDate(0, 0, days)}

	rooms, err := s.allRooms(ctx)
	if err != nil {
		return res, err
	}

	bookings, err := s.bookingsOverlapping(ctx, window)
	if err != nil {
		return res, err
	}

	roomsByID := make(map[string]roomModel.Room, len(rooms))
	for _, room := range rooms {
		roomsByID[room.ID] = room
	}

	res.StartDate = window.Start.Format(constant.DayFormat)
	res.EndDate = window.End.Format(constant.DayFormat)
	res.ByRoomType = map[string]float64{}

	for _, booking := range bookings {
		room, ok := roomsByID[booking.RoomID]
		if !ok {
			continue
		}

		stay, ok := booking.Range().Clamp(window)
		if !ok {
			continue
		}

		revenue := float64(stay.Nights()) * room.PricePerNight

		res.Total += revenue
		res.ByRoomType[room.RoomType] += revenue
	}

	return res, nil
}

func (s *serviceImpl) ExportRoomsCSV(ctx context.Context) (data []byte, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ExportRoomsCSV")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = permissions.Require(ctx, permissions.CapabilityExport); err != nil {
		return nil, err
	}

	rooms, err := s.allRooms(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	writer := csv.NewWriter(&buf)
	_ = writer.Write([]string{"id", "room_number", "room_type", "capacity", "price_per_night", "active", "description"})

	for _, room := range rooms {
		_ = writer.Write([]string{
			room.ID,
			room.RoomNumber,
			room.RoomType,
			strconv.Itoa(room.Capacity),
			strconv.FormatFloat(room.PricePerNight, 'f', 2, 64),
			strconv.FormatBool(room.Active),
			room.Description,
		})
	}

	writer.Flush()

	if err = writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to write rooms csv: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *serviceImpl) ExportBookingsCSV(ctx context.Context) (data []byte, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ExportBookingsCSV")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = permissions.Require(ctx, permissions.CapabilityExport); err != nil {
		return nil, err
	}

	rooms, err := s.allRooms(ctx)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.GetAll(ctx, gDto.QueryParams{
		SortBy:  bookingModel.TableName + "." + bookingModel.FieldStartDate,
		SortDir: gDto.SortDirAsc,
	}, gDto.FilterGroup{})
	if err != nil {
		log.Error().Err(err).Msg("failed to load bookings for export")

		return nil, fmt.Errorf("failed to load bookings for export: %w", err)
	}

	roomNumbers := make(map[string]string, len(rooms))
	for _, room := range rooms {
		roomNumbers[room.ID] = room.RoomNumber
	}

	var buf bytes.Buffer

	writer := csv.NewWriter(&buf)
	_ = writer.Write([]string{"id", "room_number", "guest_name", "start_date", "end_date", "nights", "notes", "created_by"})

	for _, booking := range bookings {
		stay := booking.Range()

		_ = writer.Write([]string{
			booking.ID,
			roomNumbers[booking.RoomID],
			booking.GuestName,
			stay.Start.Format(constant.DayFormat),
			stay.End.Format(constant.DayFormat),
			strconv.Itoa(stay.Nights()),
			booking.Notes,
			booking.CreatedBy,
		})
	}

	writer.Flush()

	if err = writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to write bookings csv: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *serviceImpl) resolveWindow(start, end string, defaultDays int) (daterange.Range, error) {
	if start == "" && end == "" {
		today := daterange.Day(timezone.Now())

		return daterange.Range{Start: today, End: today.AddDate(0, 0, defaultDays)}, nil
	}

	return daterange.Parse(start, end) //nolint:wrapcheck
}

func (s *serviceImpl) allRooms(ctx context.Context) ([]roomModel.Room, error) {
	rooms, err := s.rooms.GetAll(ctx, gDto.QueryParams{}, gDto.FilterGroup{})
	if err != nil {
		log.Error().Err(err).Msg("failed to load rooms")

		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}

	return rooms, nil
}

func (s *serviceImpl) activeRooms(ctx context.Context) ([]roomModel.Room, error) {
	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    roomModel.FieldActive,
				Operator: gDto.FilterOperatorEq,
				Value:    true,
				Table:    roomModel.TableName,
			},
		},
	}

	rooms, err := s.rooms.GetAll(ctx, gDto.QueryParams{}, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to load active rooms")

		return nil, fmt.Errorf("failed to load active rooms: %w", err)
	}

	return rooms, nil
}

// bookingsOverlapping fetches a superset of bookings touching the window with
// inclusive bounds and narrows it to the exact half-open overlap in memory.
func (s *serviceImpl) bookingsOverlapping(ctx context.Context, window daterange.Range) ([]bookingModel.Booking, error) {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    bookingModel.FieldStartDate,
				Operator: gDto.FilterOperatorLessEq,
				Value:    window.End,
				Table:    bookingModel.TableName,
			},
			gDto.Filter{
				Field:    bookingModel.FieldEndDate,
				Operator: gDto.FilterOperatorGreaterEq,
				Value:    window.Start,
				Table:    bookingModel.TableName,
			},
		},
	}

	bookings, err := s.bookings.GetAll(ctx, gDto.QueryParams{}, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to load bookings for window")

		return nil, fmt.Errorf("failed to load bookings for window: %w", err)
	}

	overlapping := bookings[:0]

	for _, booking := range bookings {
		if booking.Range().Overlaps(window) {
			overlapping = append(overlapping, booking)
		}
	}

	return overlapping, nil
}
