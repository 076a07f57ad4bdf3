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

func (h *Handler) restaurantReviewsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		query := r.URL.Query()
		limit, _ := common.ParsePositiveInt(query.Get("limit"), common.DefaultPageSize)
		minRating, _ := common.ParseFloat(query.Get("min_rating"), 0)
		maxRating, _ := common.ParseFloat(query.Get("max_rating"), 0)

		filter := catalogapp.ReviewFilter{
			MinRating: minRating,
			MaxRating: maxRating,
			Limit:     limit,
		}
		if raw := strings.TrimSpace(query.Get("verified")); raw != "" {
			verified := strings.EqualFold(raw, "true")
			filter.VerifiedVisit = &verified
		}

		reviews, err := h.reviewQueries.ByRestaurant(ctx, id, filter)
		if err != nil {
			h.writeCatalogError(w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, buildReviewListResponse(reviews))
	}
}

func (h *Handler) restaurantTopReviewsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		limit, _ := common.ParsePositiveInt(r.URL.Query().Get("limit"), 5)

		reviews, err := h.reviewQueries.Top(ctx, id, limit)
		if err != nil {
			h.writeCatalogError(w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, buildReviewListResponse(reviews))
	}
}

func (h *Handler) reviewRecentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		limit, _ := common.ParsePositiveInt(r.URL.Query().Get("limit"), common.DefaultPageSize)
		reviews, err := h.reviewQueries.Recent(ctx, limit)
		if err != nil {
			h.writeCatalogError(w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, buildReviewListResponse(reviews))
	}
}

// reviewByEmailHandler lists every review written under one email.
func (h *Handler) reviewByEmailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		email := strings.TrimSpace(r.URL.Query().Get("reviewer_email"))
		if email == "" {
			common.WriteError(h.logger, w, http.StatusBadRequest, "reviewer_email is required")
			return
		}

		reviews, err := h.reviewQueries.ByEmail(ctx, email)
		if err != nil {
			h.writeCatalogError(w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, buildReviewListResponse(reviews))
	}
}

func (h *Handler) reviewDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		review, err := h.reviewQueries.Detail(ctx, id)
		if err != nil {
			h.writeCatalogError(w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, buildReviewResponse(*review))
	}
}

// reviewCreateHandler はレビューを登録し、店舗集計の更新まで済ませて返す。
func (h *Handler) reviewCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		var req reviewCreateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}

		review, err := h.reviewCommands.Submit(ctx, catalogapp.SubmitReviewCommand{
			RestaurantID:  req.RestaurantID,
			ReviewerName:  req.ReviewerName,
			ReviewerEmail: req.ReviewerEmail,
			Rating:        req.Rating,
			Title:         req.Title,
			Comment:       req.Comment,
			Breakdown:     domainBreakdown(req.RatingsBreakdown),
			VerifiedVisit: req.VerifiedVisit,
		})
		if err != nil {
			h.writeCatalogError(w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusCreated, buildReviewResponse(*review))
	}
}

func (h *Handler) reviewUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		var req reviewUpdateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}

		review, err := h.reviewCommands.Update(ctx, id, catalogapp.UpdateReviewCommand{
			ReviewerEmail: req.ReviewerEmail,
			Rating:        req.Rating,
			Title:         req.Title,
			Comment:       req.Comment,
			Breakdown:     domainBreakdown(req.RatingsBreakdown),
		})
		if err != nil {
			h.writeCatalogError(w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, buildReviewResponse(*review))
	}
}

func (h *Handler) reviewDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		email := strings.TrimSpace(r.URL.Query().Get("reviewer_email"))
		if email == "" {
			common.WriteError(h.logger, w, http.StatusBadRequest, "reviewer_email is required")
			return
		}

		if err := h.reviewCommands.Delete(ctx, id, email); err != nil {
			h.writeCatalogError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) reviewHelpfulHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		votes, err := h.reviewCommands.VoteHelpful(ctx, id)
		if err != nil {
			h.writeCatalogError(w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"id": id, "helpful_votes": votes})
	}
}

// reviewResponseHandler records the restaurant reply. Auth-guarded.
func (h *Handler) reviewResponseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		var req reviewResponseRequest
		if err := decodeJSON(w, r, &req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}

		if err := h.reviewCommands.Respond(ctx, id, req.Reply); err != nil {
			h.writeCatalogError(w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]string{"status": "responded"})
	}
}
