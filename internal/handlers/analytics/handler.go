package analytics

import (
	"net/http"
	"orzu/infras/otel"
	"orzu/internal/domains/analytics/model/dto"
	"orzu/internal/domains/analytics/service"
	"orzu/shared"
	"orzu/shared/constant"
	"orzu/shared/failure"
	"orzu/shared/validator"
	"orzu/transport/http/middleware"
	"orzu/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

const (
	requestParamMonths = "months"
	requestParamDays   = "days"
)

type Handler struct {
	service    service.Analytics
	middleware middleware.AuthRole
	otel       otel.Otel
}

func New(service service.Analytics, middleware middleware.AuthRole, otel otel.Otel) Handler {
	return Handler{
		service:    service,
		middleware: middleware,
		otel:       otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/analytics", func(routerGroup chi.Router) {
		routerGroup.Get("/occupancy", handler.GetOccupancy)
		routerGroup.Get("/room-types", handler.GetRoomTypeStats)
		routerGroup.Get("/trends", handler.GetBookingTrends)
		routerGroup.Get("/user-activity", handler.GetUserActivity)
		routerGroup.Get("/revenue-forecast", handler.GetRevenueForecast)
	})

	router.Route("/export", func(routerGroup chi.Router) {
		routerGroup.Get("/rooms.csv", handler.ExportRooms)
		routerGroup.Get("/bookings.csv", handler.ExportBookings)
	})
}

// GetOccupancy reports per-day occupancy over a date window.
// @Summary Get occupancy stats
// @Description Report occupied rooms per day. A room counts as occupied when start_date <= day < end_date.
// @Tags Analytics
// @Accept json
// @Produce json
// @Param start_date query string false "Window start (YYYY-MM-DD)"
// @Param end_date query string false "Window end (YYYY-MM-DD)"
// @Success 200 {object} dto.OccupancyResponse
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/analytics/occupancy [get]
// @Security BearerAuth
func (handler *Handler) GetOccupancy(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetOccupancy")
	defer scope.End()

	query := r.URL.Query()

	req := dto.OccupancyRequest{
		StartDate: query.Get(constant.RequestParamStartDate),
		EndDate:   query.Get(constant.RequestParamEndDate),
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate query parameters")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Occupancy(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get occupancy stats")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Occupancy stats retrieved successfully")

	response.WithJSON(w, http.StatusOK, res)
}

// GetRoomTypeStats aggregates bookings and revenue per room type.
// @Summary Get room type stats
// @Tags Analytics
// @Accept json
// @Produce json
// @Success 200 {object} dto.RoomTypeStatsResponse
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/analytics/room-types [get]
// @Security BearerAuth
func (handler *Handler) GetRoomTypeStats(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoomTypeStats")
	defer scope.End()

	res, err := handler.service.RoomTypeStats(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get room type stats")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Room type stats retrieved successfully")

	response.WithJSON(w, http.StatusOK, res)
}

// GetBookingTrends aggregates bookings per month of their start date.
// @Summary Get booking trends
// @Tags Analytics
// @Accept json
// @Produce json
// @Param months query integer false "Trailing window in months (default 6)"
// @Success 200 {object} dto.BookingTrendsResponse
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/analytics/trends [get]
// @Security BearerAuth
func (handler *Handler) GetBookingTrends(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingTrends")
	defer scope.End()

	months, err := handler.windowParam(r, requestParamMonths)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	res, err := handler.service.BookingTrends(ctx, months)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booking trends")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking trends retrieved successfully")

	response.WithJSON(w, http.StatusOK, res)
}

// GetUserActivity ranks staff by recorded actions.
// @Summary Get user activity
// @Tags Analytics
// @Accept json
// @Produce json
// @Param days query integer false "Trailing window in days (default 30)"
// @Success 200 {object} dto.UserActivityResponse
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/analytics/user-activity [get]
// @Security BearerAuth
func (handler *Handler) GetUserActivity(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetUserActivity")
	defer scope.End()

	days, err := handler.windowParam(r, requestParamDays)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	res, err := handler.service.UserActivity(ctx, days)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get user activity")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("User activity retrieved successfully")

	response.WithJSON(w, http.StatusOK, res)
}

// GetRevenueForecast projects revenue from upcoming stays.
// @Summary Get revenue forecast
// @Description Project revenue from nights booked inside the upcoming window, priced per room.
// @Tags Analytics
// @Accept json
// @Produce json
// @Param days query integer false "Forecast window in days (default 30)"
// @Success 200 {object} dto.RevenueForecastResponse
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/analytics/revenue-forecast [get]
// @Security BearerAuth
func (handler *Handler) GetRevenueForecast(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRevenueForecast")
	defer scope.End()

	days, err := handler.windowParam(r, requestParamDays)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	res, err := handler.service.RevenueForecast(ctx, days)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get revenue forecast")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Revenue forecast retrieved successfully")

	response.WithJSON(w, http.StatusOK, res)
}

// ExportRooms streams the room inventory as CSV.
// @Summary Export rooms as CSV
// @Tags Export
// @Produce text/csv
// @Success 200 {string} string "CSV payload"
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/export/rooms.csv [get]
// @Security BearerAuth
func (handler *Handler) ExportRooms(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ExportRooms")
	defer scope.End()

	data, err := handler.service.ExportRoomsCSV(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to export rooms")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Rooms exported successfully")

	handler.writeCSV(w, "rooms.csv", data)
}

// ExportBookings streams all bookings as CSV.
// @Summary Export bookings as CSV
// @Tags Export
// @Produce text/csv
// @Success 200 {string} string "CSV payload"
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/export/bookings.csv [get]
// @Security BearerAuth
func (handler *Handler) ExportBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ExportBookings")
	defer scope.End()

	data, err := handler.service.ExportBookingsCSV(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to export bookings")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Bookings exported successfully")

	handler.writeCSV(w, "bookings.csv", data)
}

func (handler *Handler) windowParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}

	value, err := shared.ConvertStringToInt(raw)
	if err != nil {
		log.Error().Err(err).Str("param", name).Msg("invalid window parameter")

		return 0, failure.BadRequestFromString("parameter " + name + " must be an integer") //nolint:wrapcheck
	}

	return value, nil
}

func (handler *Handler) writeCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeCSV)
	w.Header().Set(constant.RequestHeaderContentDisposition, `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		log.Error().Err(err).Msg("failed to write csv response")
	}
}
