package api

import (
	"net/http"
	"strings"

	"shareloop/internal/models"
)

type createItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
	RequestID   int64  `json:"request_id"`
}

func (s *HTTPServer) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var body createItemRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if body.Available == nil {
		writeError(w, http.StatusBadRequest, "available is required")
		return
	}

	item := &models.Item{
		Name:        body.Name,
		Description: body.Description,
		Available:   *body.Available,
		RequestID:   body.RequestID,
	}
	created, err := s.items.Create(r.Context(), item, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *HTTPServer) handleGetItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r)
	if !ok {
		return
	}

	details, err := s.items.Get(r.Context(), itemID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *HTTPServer) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r)
	if !ok {
		return
	}

	var patch models.ItemPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item, err := s.items.Update(r.Context(), itemID, patch, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.items.Delete(r.Context(), itemID, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleListOwnerItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	items, err := s.items.ListForOwner(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.items.Search(r.Context(), r.URL.Query().Get("text"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type createCommentRequest struct {
	Text string `json:"text"`
}

func (s *HTTPServer) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r)
	if !ok {
		return
	}

	var body createCommentRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	body.Text = strings.TrimSpace(body.Text)
	if body.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	comment, err := s.items.CreateComment(r.Context(), itemID, userID, body.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}
