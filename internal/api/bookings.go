package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"shareloop/internal/models"
	"shareloop/internal/service"
)

type createBookingRequest struct {
	ItemID int64     `json:"item_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var body createBookingRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.ItemID == 0 {
		writeError(w, http.StatusBadRequest, "item_id is required")
		return
	}
	if body.Start.IsZero() || body.End.IsZero() {
		writeError(w, http.StatusBadRequest, "start and end are required")
		return
	}

	booking := &models.Booking{
		ItemID: body.ItemID,
		Start:  body.Start,
		End:    body.End,
	}
	created, err := s.bookings.Create(r.Context(), booking, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	booking, err := s.bookings.Get(r.Context(), bookingID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleDecideBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	approved, err := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get("approved")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "approved query parameter is required")
		return
	}

	var booking *models.Booking
	if approved {
		booking, err = s.bookings.Approve(r.Context(), bookingID, userID)
	} else {
		booking, err = s.bookings.Reject(r.Context(), bookingID, userID)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.bookings.Cancel(r.Context(), bookingID, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleListBookerBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	state, page, ok := listingParams(w, r)
	if !ok {
		return
	}

	bookings, err := s.bookings.ListForBooker(r.Context(), userID, state, page)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *HTTPServer) handleListOwnerBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	state, page, ok := listingParams(w, r)
	if !ok {
		return
	}

	bookings, err := s.bookings.ListForOwner(r.Context(), userID, state, page)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// pathID parses the {id} path segment, writing a 400 on garbage.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// listingParams reads state (default ALL) and the optional from/size pair.
func listingParams(w http.ResponseWriter, r *http.Request) (string, *models.Page, bool) {
	state := strings.TrimSpace(r.URL.Query().Get("state"))
	if state == "" {
		state = string(service.StateAll)
	}
	page, ok := pageParams(w, r)
	if !ok {
		return "", nil, false
	}
	return state, page, true
}

// pageParams parses from/size. Both absent means no pagination; a lone or
// invalid value is a 400.
func pageParams(w http.ResponseWriter, r *http.Request) (*models.Page, bool) {
	fromRaw := strings.TrimSpace(r.URL.Query().Get("from"))
	sizeRaw := strings.TrimSpace(r.URL.Query().Get("size"))
	if fromRaw == "" && sizeRaw == "" {
		return nil, true
	}
	if fromRaw == "" || sizeRaw == "" {
		writeError(w, http.StatusBadRequest, "from and size must be supplied together")
		return nil, false
	}

	from, err := strconv.Atoi(fromRaw)
	if err != nil || from < 0 {
		writeError(w, http.StatusBadRequest, "from must be a non-negative integer")
		return nil, false
	}
	size, err := strconv.Atoi(sizeRaw)
	if err != nil || size <= 0 {
		writeError(w, http.StatusBadRequest, "size must be a positive integer")
		return nil, false
	}
	return &models.Page{From: from, Size: size}, true
}
