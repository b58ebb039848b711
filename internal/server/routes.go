package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/coperto/internal/api/v1"
	"github.com/gosuda/coperto/internal/api/ws"
	"github.com/gosuda/coperto/internal/auth"
	"github.com/gosuda/coperto/internal/booking"
	"github.com/gosuda/coperto/internal/store/postgres"
)

func registerPublicRoutes(api huma.API, store *postgres.Store, bookingSvc *booking.Service, evaluator *booking.Evaluator) {
	v1.RegisterPublicRoutes(api, store, bookingSvc, evaluator)
}

func registerAuthRoutes(api huma.API, store *postgres.Store, authSvc *auth.Service) {
	v1.RegisterAuthRoutes(api, store, authSvc)
}

func registerStaffRoutes(api huma.API, store *postgres.Store, authSvc *auth.Service, bookingSvc *booking.Service) {
	v1.RegisterUserRoutes(api, authSvc)
	v1.RegisterSettingsRoutes(api, store)
	v1.RegisterShiftRoutes(api, store)
	v1.RegisterTableRoutes(api, store)
	v1.RegisterReservationRoutes(api, store, bookingSvc)
	v1.RegisterActivityRoutes(api, store)
}

func registerAdminRoutes(api huma.API, store *postgres.Store, authSvc *auth.Service) {
	v1.RegisterTenantRoutes(api, store, authSvc)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/reservations", hub.ServeReservations)
}
