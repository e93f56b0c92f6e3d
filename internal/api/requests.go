package api

import (
	"net/http"
	"strings"

	"shareloop/internal/models"
)

type createRequestRequest struct {
	Description string `json:"description"`
}

func (s *HTTPServer) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var body createRequestRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	body.Description = strings.TrimSpace(body.Description)
	if body.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	request, err := s.requests.Create(r.Context(), &models.ItemRequest{Description: body.Description}, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

func (s *HTTPServer) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	requestID, ok := pathID(w, r)
	if !ok {
		return
	}

	request, err := s.requests.Get(r.Context(), requestID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (s *HTTPServer) handleListOwnRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	requests, err := s.requests.ListOwn(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *HTTPServer) handleListOtherRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	page, ok := pageParams(w, r)
	if !ok {
		return
	}

	requests, err := s.requests.ListOthers(r.Context(), userID, page)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}
