package public

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/biomebistro/biome-bistro-services/api/internal/interfaces/http/common"
)

func (h *Handler) biomeListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		biomes, err := h.biomeQueries.All(ctx)
		if err != nil {
			h.writeCatalogError(w, err)
			return
		}

		items := make([]biomeResponse, 0, len(biomes))
		for _, b := range biomes {
			items = append(items, buildBiomeResponse(b))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
	}
}

func (h *Handler) biomeDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		biome, err := h.biomeQueries.Detail(ctx, id)
		if err != nil {
			h.writeCatalogError(w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, buildBiomeResponse(*biome))
	}
}

// biomeRestaurantsHandler lists the restaurants themed on one biome.
func (h *Handler) biomeRestaurantsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if _, err := h.biomeQueries.Detail(ctx, id); err != nil {
			h.writeCatalogError(w, err)
			return
		}

		restaurants, err := h.restaurantQueries.ByBiome(ctx, id)
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
