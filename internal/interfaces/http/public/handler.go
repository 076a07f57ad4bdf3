package public

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	bookingapp "github.com/biomebistro/biome-bistro-services/api/internal/booking/application"
	catalogapp "github.com/biomebistro/biome-bistro-services/api/internal/catalog/application"
)

// Handler wires public HTTP endpoints to application services.
type Handler struct {
	logger             *log.Logger
	restaurantQueries  catalogapp.RestaurantQueryService
	reviewQueries      catalogapp.ReviewQueryService
	biomeQueries       catalogapp.BiomeQueryService
	reviewCommands     *catalogapp.ReviewCommandService
	availability       *bookingapp.AvailabilityService
	reservations       *bookingapp.ReservationService
	reservationQueries bookingapp.ReservationQueryService
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger             *log.Logger
	RestaurantQueries  catalogapp.RestaurantQueryService
	ReviewQueries      catalogapp.ReviewQueryService
	BiomeQueries       catalogapp.BiomeQueryService
	ReviewCommands     *catalogapp.ReviewCommandService
	Availability       *bookingapp.AvailabilityService
	Reservations       *bookingapp.ReservationService
	ReservationQueries bookingapp.ReservationQueryService
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:             cfg.Logger,
		restaurantQueries:  cfg.RestaurantQueries,
		reviewQueries:      cfg.ReviewQueries,
		biomeQueries:       cfg.BiomeQueries,
		reviewCommands:     cfg.ReviewCommands,
		availability:       cfg.Availability,
		reservations:       cfg.Reservations,
		reservationQueries: cfg.ReservationQueries,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/biomes", h.biomeListHandler())
	r.Get("/biomes/{id}", h.biomeDetailHandler())
	r.Get("/biomes/{id}/restaurants", h.biomeRestaurantsHandler())

	r.Get("/restaurants", h.restaurantListHandler())
	r.Get("/restaurants/nearby", h.restaurantNearbyHandler())
	r.Get("/restaurants/top-rated", h.restaurantTopRatedHandler())
	r.Get("/restaurants/{id}", h.restaurantDetailHandler())
	r.Get("/restaurants/{id}/similar", h.restaurantSimilarHandler())
	r.Get("/restaurants/{id}/availability", h.availabilityCheckHandler())
	r.Get("/restaurants/{id}/slots", h.openSlotsHandler())
	r.Get("/restaurants/{id}/reviews", h.restaurantReviewsHandler())
	r.Get("/restaurants/{id}/reviews/top", h.restaurantTopReviewsHandler())

	r.Get("/reviews", h.reviewByEmailHandler())
	r.Get("/reviews/recent", h.reviewRecentHandler())
	r.Get("/reviews/{id}", h.reviewDetailHandler())
	r.Post("/reviews", h.reviewCreateHandler())
	r.Put("/reviews/{id}", h.reviewUpdateHandler())
	r.Delete("/reviews/{id}", h.reviewDeleteHandler())
	r.Post("/reviews/{id}/helpful", h.reviewHelpfulHandler())
	r.With(authMiddleware).Post("/reviews/{id}/response", h.reviewResponseHandler())

	r.Post("/reservations", h.reservationCreateHandler())
	r.Get("/reservations", h.reservationByEmailHandler())
	r.Get("/reservations/code/{code}", h.reservationByCodeHandler())
	r.Get("/reservations/{id}", h.reservationDetailHandler())
	r.Put("/reservations/{id}", h.reservationUpdateHandler())
	r.Post("/reservations/{id}/cancel", h.reservationCancelHandler())
}
