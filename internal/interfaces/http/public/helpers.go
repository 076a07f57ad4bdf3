package public

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	bookingapp "github.com/biomebistro/biome-bistro-services/api/internal/booking/application"
	catalogapp "github.com/biomebistro/biome-bistro-services/api/internal/catalog/application"
	"github.com/biomebistro/biome-bistro-services/api/internal/interfaces/http/common"
)

// decodeJSON reads a size-capped JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, common.MaxRequestBody)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// writeCatalogError maps catalog application errors onto HTTP statuses.
func (h *Handler) writeCatalogError(w http.ResponseWriter, err error) {
	var verr *catalogapp.ValidationError
	switch {
	case errors.As(err, &verr):
		common.WriteValidationError(h.logger, w, fieldPayloads(verr.Fields))
	case errors.Is(err, catalogapp.ErrRestaurantNotFound):
		common.WriteError(h.logger, w, http.StatusNotFound, "restaurant not found")
	case errors.Is(err, catalogapp.ErrReviewNotFound):
		common.WriteError(h.logger, w, http.StatusNotFound, "review not found")
	case errors.Is(err, catalogapp.ErrBiomeNotFound):
		common.WriteError(h.logger, w, http.StatusNotFound, "biome not found")
	case errors.Is(err, catalogapp.ErrNotReviewOwner):
		common.WriteError(h.logger, w, http.StatusForbidden, "review belongs to another reviewer")
	default:
		h.logger.Printf("catalog request failed: %v", err)
		common.WriteError(h.logger, w, http.StatusInternalServerError, "internal error")
	}
}

// writeBookingError maps booking application errors onto HTTP statuses.
func (h *Handler) writeBookingError(w http.ResponseWriter, err error) {
	var verr *bookingapp.ValidationError
	switch {
	case errors.As(err, &verr):
		common.WriteValidationError(h.logger, w, bookingFieldPayloads(verr.Fields))
	case errors.Is(err, bookingapp.ErrRestaurantNotFound):
		common.WriteError(h.logger, w, http.StatusNotFound, "restaurant not found")
	case errors.Is(err, bookingapp.ErrReservationNotFound):
		common.WriteError(h.logger, w, http.StatusNotFound, "reservation not found")
	case errors.Is(err, bookingapp.ErrSlotUnavailable):
		common.WriteError(h.logger, w, http.StatusConflict, "requested slot cannot accommodate the party")
	case errors.Is(err, bookingapp.ErrReservationCancelled):
		common.WriteError(h.logger, w, http.StatusConflict, "reservation is cancelled")
	case errors.Is(err, bookingapp.ErrInvalidTransition):
		common.WriteError(h.logger, w, http.StatusConflict, "invalid status transition")
	default:
		h.logger.Printf("booking request failed: %v", err)
		common.WriteError(h.logger, w, http.StatusInternalServerError, "internal error")
	}
}

func fieldPayloads(fields []catalogapp.FieldError) []common.FieldErrorPayload {
	payloads := make([]common.FieldErrorPayload, 0, len(fields))
	for _, f := range fields {
		payloads = append(payloads, common.FieldErrorPayload{Field: f.Field, Message: f.Message})
	}
	return payloads
}

func bookingFieldPayloads(fields []bookingapp.FieldError) []common.FieldErrorPayload {
	payloads := make([]common.FieldErrorPayload, 0, len(fields))
	for _, f := range fields {
		payloads = append(payloads, common.FieldErrorPayload{Field: f.Field, Message: f.Message})
	}
	return payloads
}
