package public

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	bookingapp "github.com/biomebistro/biome-bistro-services/api/internal/booking/application"
	"github.com/biomebistro/biome-bistro-services/api/internal/interfaces/http/common"
)

// reservationCreateHandler は予約リクエストを受け付ける。空き判定と
// 書き込みはアプリケーション層のスロットロック内で行われる。
func (h *Handler) reservationCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		var req reservationCreateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}

		reservation, err := h.reservations.Create(ctx, bookingapp.CreateReservationCommand{
			RestaurantID:    req.RestaurantID,
			CustomerName:    req.CustomerName,
			CustomerEmail:   req.CustomerEmail,
			CustomerPhone:   req.CustomerPhone,
			Date:            req.Date,
			Time:            req.Time,
			PartySize:       req.PartySize,
			Status:          req.Status,
			SpecialRequests: req.SpecialRequests,
		})
		if err != nil {
			h.writeBookingError(w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusCreated, buildReservationResponse(*reservation))
	}
}

func (h *Handler) reservationDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		reservation, err := h.reservationQueries.Detail(ctx, id)
		if err != nil {
			h.writeBookingError(w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, buildReservationResponse(*reservation))
	}
}

// reservationByCodeHandler looks a reservation up by its public
// confirmation code.
func (h *Handler) reservationByCodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		code := strings.TrimSpace(chi.URLParam(r, "code"))
		reservation, err := h.reservationQueries.ByConfirmationCode(ctx, code)
		if err != nil {
			h.writeBookingError(w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, buildReservationResponse(*reservation))
	}
}

func (h *Handler) reservationByEmailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		email := strings.TrimSpace(r.URL.Query().Get("email"))
		if email == "" {
			common.WriteError(h.logger, w, http.StatusBadRequest, "email is required")
			return
		}

		reservations, err := h.reservationQueries.ByCustomerEmail(ctx, email)
		if err != nil {
			h.writeBookingError(w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, buildReservationListResponse(reservations))
	}
}

func (h *Handler) reservationUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		var req reservationUpdateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}

		reservation, err := h.reservations.Update(ctx, id, bookingapp.UpdateReservationCommand{
			CustomerName:    req.CustomerName,
			CustomerPhone:   req.CustomerPhone,
			Date:            req.Date,
			Time:            req.Time,
			PartySize:       req.PartySize,
			Status:          req.Status,
			SpecialRequests: req.SpecialRequests,
		})
		if err != nil {
			h.writeBookingError(w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, buildReservationResponse(*reservation))
	}
}

// reservationCancelHandler cancels a reservation. Repeating the call on
// an already-cancelled reservation returns the same result.
func (h *Handler) reservationCancelHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		var req reservationCancelRequest
		if r.ContentLength > 0 {
			if err := decodeJSON(w, r, &req); err != nil {
				common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
				return
			}
		}

		reservation, err := h.reservations.Cancel(ctx, id, req.Reason)
		if err != nil {
			h.writeBookingError(w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, buildReservationResponse(*reservation))
	}
}
