package admin

import (
	"log"

	"github.com/go-chi/chi/v5"

	bookingapp "github.com/biomebistro/biome-bistro-services/api/internal/booking/application"
)

// Handler wires admin HTTP endpoints to application services. Every
// route mounted here sits behind the JWT middleware.
type Handler struct {
	logger             *log.Logger
	reservations       *bookingapp.ReservationService
	reservationQueries bookingapp.ReservationQueryService
}

// Config provides dependencies for Handler.
type Config struct {
	Logger             *log.Logger
	Reservations       *bookingapp.ReservationService
	ReservationQueries bookingapp.ReservationQueryService
}

// NewHandler constructs an admin HTTP handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:             cfg.Logger,
		reservations:       cfg.Reservations,
		reservationQueries: cfg.ReservationQueries,
	}
}

// Register mounts admin routes onto router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/restaurants/{id}/reservations", h.reservationListHandler())
	r.Get("/restaurants/{id}/reservations/upcoming", h.reservationUpcomingHandler())
	r.Get("/restaurants/{id}/reservations/count", h.reservationCountHandler())
	r.Post("/reservations/{id}/check-in", h.reservationCheckInHandler())
	r.Post("/reservations/{id}/check-out", h.reservationCheckOutHandler())
}
