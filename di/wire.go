//go:build wireinject
// +build wireinject

package di

import (
	"orzu/config"
	"orzu/infras/jwt"
	"orzu/infras/kafka"
	"orzu/infras/otel"
	"orzu/infras/postgres"
	"orzu/infras/redis"
	"orzu/internal/events"
	"orzu/permissions"
	"orzu/shared/cache"
	"orzu/transport/http"
	"orzu/transport/http/middleware"
	"orzu/transport/http/router"

	"github.com/google/wire"

	analyticsService "orzu/internal/domains/analytics/service"
	authService "orzu/internal/domains/auth/service"
	bookingRepository "orzu/internal/domains/booking/repository"
	bookingService "orzu/internal/domains/booking/service"
	historyRepository "orzu/internal/domains/history/repository"
	historyService "orzu/internal/domains/history/service"
	roomRepository "orzu/internal/domains/room/repository"
	roomService "orzu/internal/domains/room/service"
	userRepository "orzu/internal/domains/user/repository"
	userService "orzu/internal/domains/user/service"

	analyticsHandler "orzu/internal/handlers/analytics"
	authHandler "orzu/internal/handlers/auth"
	bookingHandler "orzu/internal/handlers/booking"
	historyHandler "orzu/internal/handlers/history"
	roomHandler "orzu/internal/handlers/room"
	userHandler "orzu/internal/handlers/user"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	events.NewPublisher,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var historyDomain = wire.NewSet(
	historyRepository.New,
	historyService.New,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
)

var authDomain = wire.NewSet(
	authService.New,
)

var analyticsDomain = wire.NewSet(
	analyticsService.New,
)

var domains = wire.NewSet(
	historyDomain,
	roomDomain,
	bookingDomain,
	userDomain,
	authDomain,
	analyticsDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	roomHandler.New,
	bookingHandler.New,
	userHandler.New,
	historyHandler.New,
	analyticsHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
