package public

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	catalogapp "github.com/biomebistro/biome-bistro-services/api/internal/catalog/application"
	"github.com/biomebistro/biome-bistro-services/api/internal/interfaces/http/common"
)

func (h *Handler) restaurantListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		query := r.URL.Query()
		limit, _ := common.ParsePositiveInt(query.Get("limit"), common.DefaultPageSize)
		if limit > common.MaxPageSize {
			limit = common.MaxPageSize
		}
		minRating, _ := common.ParseFloat(query.Get("min_rating"), 0)

		filter := catalogapp.RestaurantFilter{
			BiomeID:      strings.TrimSpace(query.Get("biome_id")),
			PriceRange:   strings.TrimSpace(query.Get("price_range")),
			CuisineStyle: strings.TrimSpace(query.Get("cuisine_style")),
			Status:       strings.TrimSpace(query.Get("status")),
			Keyword:      strings.TrimSpace(query.Get("keyword")),
			MinRating:    minRating,
			SortBy:       strings.TrimSpace(query.Get("sort")),
			Limit:        limit,
		}

		restaurants, err := h.restaurantQueries.List(ctx, filter)
		if err != nil {
			h.writeCatalogError(w, err)
			return
		}

		items := make([]restaurantSummaryResponse, 0, len(restaurants))
		for _, rest := range restaurants {
			items = append(items, buildRestaurantSummaryResponse(rest))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, restaurantListResponse{Items: items, Total: len(items)})
	}
}

func (h *Handler) restaurantDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			common.WriteError(h.logger, w, http.StatusBadRequest, "restaurant id is required")
			return
		}

		restaurant, err := h.restaurantQueries.Detail(ctx, id)
		if err != nil {
			h.writeCatalogError(w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, buildRestaurantDetailResponse(*restaurant))
	}
}

// restaurantNearbyHandler は緯度・経度・半径をもとに距離注釈付きの
// 近隣店舗リストを返す。
func (h *Handler) restaurantNearbyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		query := r.URL.Query()
		lat, okLat := common.ParseFloat(query.Get("latitude"), 0)
		lon, okLon := common.ParseFloat(query.Get("longitude"), 0)
		if !okLat || !okLon {
			common.WriteError(h.logger, w, http.StatusBadRequest, "latitude and longitude are required")
			return
		}
		radiusKm, _ := common.ParseFloat(query.Get("radius_km"), catalogapp.DefaultNearbyRadiusKm)

		results, err := h.restaurantQueries.Nearby(ctx, lat, lon, radiusKm)
		if err != nil {
			h.writeCatalogError(w, err)
			return
		}

		items := make([]restaurantSummaryResponse, 0, len(results))
		for _, result := range results {
			items = append(items, buildRestaurantWithDistanceResponse(result))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, restaurantListResponse{Items: items, Total: len(items)})
	}
}

func (h *Handler) restaurantTopRatedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		limit, _ := common.ParsePositiveInt(r.URL.Query().Get("limit"), common.DefaultPageSize)
		restaurants, err := h.restaurantQueries.TopRated(ctx, limit)
		if err != nil {
			h.writeCatalogError(w, err)
			return
		}

		items := make([]restaurantSummaryResponse, 0, len(restaurants))
		for _, rest := range restaurants {
			items = append(items, buildRestaurantSummaryResponse(rest))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, restaurantListResponse{Items: items, Total: len(items)})
	}
}

func (h *Handler) restaurantSimilarHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		limit, _ := common.ParsePositiveInt(r.URL.Query().Get("limit"), 5)

		restaurants, err := h.restaurantQueries.Similar(ctx, id, limit)
		if err != nil {
			h.writeCatalogError(w, err)
			return
		}

		items := make([]restaurantSummaryResponse, 0, len(restaurants))
		for _, rest := range restaurants {
			items = append(items, buildRestaurantSummaryResponse(rest))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, restaurantListResponse{Items: items, Total: len(items)})
	}
}

// availabilityCheckHandler は指定スロットが予約受付閾値を下回っているかを
// 返す。party_size を含めた合計で判定する。
func (h *Handler) availabilityCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		query := r.URL.Query()
		dateRaw := strings.TrimSpace(query.Get("date"))
		slotRaw := strings.TrimSpace(query.Get("time"))
		partySize, okParty := common.ParsePositiveInt(query.Get("party_size"), 0)
		if dateRaw == "" || slotRaw == "" || !okParty {
			common.WriteError(h.logger, w, http.StatusBadRequest, "date, time and party_size are required")
			return
		}

		date, err := time.ParseInLocation("2006-01-02", dateRaw, time.UTC)
		if err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
			return
		}

		available, err := h.availability.CanAccommodate(ctx, id, date, slotRaw, partySize, "")
		if err != nil {
			h.writeBookingError(w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, availabilityResponse{
			RestaurantID: id,
			Date:         dateRaw,
			Time:         slotRaw,
			PartySize:    partySize,
			Available:    available,
		})
	}
}

// openSlotsHandler returns the still-bookable slots of a day.
func (h *Handler) openSlotsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		dateRaw := strings.TrimSpace(r.URL.Query().Get("date"))
		if dateRaw == "" {
			common.WriteError(h.logger, w, http.StatusBadRequest, "date is required")
			return
		}
		date, err := time.ParseInLocation("2006-01-02", dateRaw, time.UTC)
		if err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
			return
		}

		slots, err := h.availability.ListOpenSlots(ctx, id, date)
		if err != nil {
			h.writeBookingError(w, err)
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, openSlotsResponse{
			RestaurantID: id,
			Date:         dateRaw,
			Slots:        slots,
		})
	}
}
