package api

import (
	"errors"
	"net/http"

	"shareloop/internal/database"
	"shareloop/internal/service"
)

// writeServiceError maps a service failure to an HTTP status.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownUser),
		errors.Is(err, service.ErrUnknownItem),
		errors.Is(err, service.ErrUnknownRequest),
		errors.Is(err, service.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAccessDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrSelfBooking),
		errors.Is(err, service.ErrAlreadyDecided),
		errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidTimeRange),
		errors.Is(err, service.ErrItemUnavailable),
		errors.Is(err, service.ErrUnsupportedState),
		errors.Is(err, service.ErrCommentForbidden):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
