package router

import (
	"orzu/internal/handlers/analytics"
	"orzu/internal/handlers/auth"
	"orzu/internal/handlers/booking"
	"orzu/internal/handlers/history"
	"orzu/internal/handlers/room"
	"orzu/internal/handlers/user"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Auth      auth.Handler
	Room      room.Handler
	Booking   booking.Handler
	User      user.Handler
	History   history.Handler
	Analytics analytics.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.Room.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.User.Router(routerGroup)
		r.DomainHandlers.History.Router(routerGroup)
		r.DomainHandlers.Analytics.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
