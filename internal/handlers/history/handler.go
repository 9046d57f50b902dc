package history

import (
	"net/http"
	"orzu/infras/otel"
	"orzu/internal/domains/history/service"
	"orzu/shared"
	"orzu/shared/constant"
	gDto "orzu/shared/dto"
	"orzu/shared/failure"
	"orzu/transport/http/middleware"
	"orzu/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

const requestParamHours = "hours"

type Handler struct {
	service    service.History
	middleware middleware.AuthRole
	otel       otel.Otel
}

func New(service service.History, middleware middleware.AuthRole, otel otel.Otel) Handler {
	return Handler{
		service:    service,
		middleware: middleware,
		otel:       otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/history", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetRecentHistory)
		routerGroup.Get("/user/{id}", handler.GetUserHistory)
		routerGroup.Get("/{entityType}/{entityId}", handler.GetEntityHistory)
	})
}

// GetRecentHistory retrieves history logs from the trailing window.
// @Summary Get recent history
// @Description Retrieve mutation logs recorded within the last N hours (default 24).
// @Tags History
// @Accept json
// @Produce json
// @Param hours query integer false "Window size in hours"
// @Success 200 {object} dto.GetHistoryResponse
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/history [get]
// @Security BearerAuth
func (handler *Handler) GetRecentHistory(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRecentHistory")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	hours := 0
	if raw := r.URL.Query().Get(requestParamHours); raw != "" {
		parsed, err := shared.ConvertStringToInt(raw)
		if err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Msg("invalid hours parameter")

			response.WithError(w, failure.BadRequestFromString("parameter hours must be an integer"))

			return
		}

		hours = parsed
	}

	logs, err := handler.service.GetRecent(ctx, queryParams, hours)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get recent history")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Recent history retrieved successfully")

	response.WithJSON(w, http.StatusOK, logs)
}

// GetEntityHistory retrieves the history of a single entity.
// @Summary Get entity history
// @Description Retrieve every recorded mutation of one room, booking or user.
// @Tags History
// @Accept json
// @Produce json
// @Param entityType path string true "Entity type (room|booking|user)"
// @Param entityId path string true "Entity ID"
// @Success 200 {object} dto.GetHistoryResponse
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/history/{entityType}/{entityId} [get]
// @Security BearerAuth
func (handler *Handler) GetEntityHistory(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetEntityHistory")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	entityType := chi.URLParam(r, constant.RequestParamEntityType)
	entityID := chi.URLParam(r, constant.RequestParamEntityID)

	logs, err := handler.service.GetEntity(ctx, entityType, entityID, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get entity history")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Entity history retrieved successfully")

	response.WithJSON(w, http.StatusOK, logs)
}

// GetUserHistory retrieves all actions performed by one user.
// @Summary Get user history
// @Description Retrieve every mutation recorded for the given user.
// @Tags History
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.GetHistoryResponse
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/history/user/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetUserHistory(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetUserHistory")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	userID := chi.URLParam(r, constant.RequestParamID)

	logs, err := handler.service.GetUser(ctx, userID, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get user history")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("User history retrieved successfully")

	response.WithJSON(w, http.StatusOK, logs)
}
