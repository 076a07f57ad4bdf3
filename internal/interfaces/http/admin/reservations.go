package admin

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	bookingapp "github.com/biomebistro/biome-bistro-services/api/internal/booking/application"
	"github.com/biomebistro/biome-bistro-services/api/internal/booking/domain"
	"github.com/biomebistro/biome-bistro-services/api/internal/interfaces/http/common"
)

type reservationPayload struct {
	ID                 string     `json:"id"`
	RestaurantID       string     `json:"restaurant_id"`
	ConfirmationCode   string     `json:"confirmation_code"`
	CustomerName       string     `json:"customer_name"`
	CustomerEmail      string     `json:"customer_email"`
	CustomerPhone      string     `json:"customer_phone"`
	Date               string     `json:"date"`
	Time               string     `json:"time"`
	PartySize          int        `json:"party_size"`
	Status             string     `json:"status"`
	SpecialRequests    string     `json:"special_requests,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CheckInTime        *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime       *time.Time `json:"check_out_time,omitempty"`
}

func buildReservationPayload(res domain.Reservation) reservationPayload {
	return reservationPayload{
		ID:                 res.ID,
		RestaurantID:       res.RestaurantID,
		ConfirmationCode:   res.ConfirmationCode,
		CustomerName:       res.Customer.Name,
		CustomerEmail:      res.Customer.Email,
		CustomerPhone:      res.Customer.Phone,
		Date:               res.Date.Format("2006-01-02"),
		Time:               res.Time,
		PartySize:          res.PartySize,
		Status:             string(res.Status),
		SpecialRequests:    res.SpecialRequests,
		CancelledAt:        res.CancelledAt,
		CancellationReason: res.CancellationReason,
		CheckInTime:        res.CheckInTime,
		CheckOutTime:       res.CheckOutTime,
	}
}

// reservationListHandler は日付・ステータスで絞り込んだ予約一覧を返す。
func (h *Handler) reservationListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		query := r.URL.Query()

		filter := bookingapp.ReservationFilter{}
		if raw := strings.TrimSpace(query.Get("date")); raw != "" {
			date, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
			if err != nil {
				common.WriteError(h.logger, w, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
				return
			}
			filter.Date = &date
		}
		if raw := strings.TrimSpace(query.Get("status")); raw != "" {
			status, err := domain.ParseStatus(raw)
			if err != nil {
				common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
				return
			}
			filter.Status = status
		}

		reservations, err := h.reservationQueries.ByRestaurant(ctx, id, filter)
		if err != nil {
			h.writeError(w, err)
			return
		}

		items := make([]reservationPayload, 0, len(reservations))
		for _, res := range reservations {
			items = append(items, buildReservationPayload(res))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
	}
}

func (h *Handler) reservationUpcomingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		limit, _ := common.ParsePositiveInt(r.URL.Query().Get("limit"), 20)

		reservations, err := h.reservationQueries.Upcoming(ctx, id, limit)
		if err != nil {
			h.writeError(w, err)
			return
		}

		items := make([]reservationPayload, 0, len(reservations))
		for _, res := range reservations {
			items = append(items, buildReservationPayload(res))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
	}
}

func (h *Handler) reservationCountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		var status domain.Status
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := domain.ParseStatus(raw)
			if err != nil {
				common.WriteError(h.logger, w, http.StatusBadRequest, err.Error())
				return
			}
			status = parsed
		}

		count, err := h.reservationQueries.CountByRestaurant(ctx, id, status)
		if err != nil {
			h.writeError(w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{"restaurant_id": id, "count": count})
	}
}

// reservationCheckInHandler は来店処理。予約を completed に遷移させる。
func (h *Handler) reservationCheckInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		reservation, err := h.reservations.CheckIn(ctx, id)
		if err != nil {
			h.writeError(w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, buildReservationPayload(*reservation))
	}
}

func (h *Handler) reservationCheckOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		reservation, err := h.reservations.CheckOut(ctx, id)
		if err != nil {
			h.writeError(w, err)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, buildReservationPayload(*reservation))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bookingapp.ErrReservationNotFound):
		common.WriteError(h.logger, w, http.StatusNotFound, "reservation not found")
	case errors.Is(err, bookingapp.ErrRestaurantNotFound):
		common.WriteError(h.logger, w, http.StatusNotFound, "restaurant not found")
	case errors.Is(err, bookingapp.ErrInvalidTransition):
		common.WriteError(h.logger, w, http.StatusConflict, "invalid status transition")
	default:
		h.logger.Printf("admin reservation request failed: %v", err)
		common.WriteError(h.logger, w, http.StatusInternalServerError, "internal error")
	}
}
