package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"shareloop/internal/config"
	"shareloop/internal/domain"
)

// HTTPServer exposes the booking platform over HTTP. Caller identity
// comes from the X-Sharer-User-Id header set by the gateway.
type HTTPServer struct {
	cfg      config.ServerConfig
	bookings domain.BookingService
	items    domain.ItemService
	users    domain.UserService
	requests domain.RequestService
	server   *http.Server
	logger   *zerolog.Logger
}

func NewHTTPServer(
	cfg config.ServerConfig,
	bookings domain.BookingService,
	items domain.ItemService,
	users domain.UserService,
	requests domain.RequestService,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		bookings: bookings,
		items:    items,
		users:    users,
		requests: requests,
		logger:   logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /bookings", srv.handleCreateBooking)
	mux.HandleFunc("GET /bookings", srv.handleListBookerBookings)
	mux.HandleFunc("GET /bookings/owner", srv.handleListOwnerBookings)
	mux.HandleFunc("GET /bookings/{id}", srv.handleGetBooking)
	mux.HandleFunc("PATCH /bookings/{id}", srv.handleDecideBooking)
	mux.HandleFunc("DELETE /bookings/{id}", srv.handleCancelBooking)

	mux.HandleFunc("POST /users", srv.handleCreateUser)
	mux.HandleFunc("GET /users", srv.handleListUsers)
	mux.HandleFunc("GET /users/{id}", srv.handleGetUser)
	mux.HandleFunc("PATCH /users/{id}", srv.handleUpdateUser)
	mux.HandleFunc("DELETE /users/{id}", srv.handleDeleteUser)

	mux.HandleFunc("POST /items", srv.handleCreateItem)
	mux.HandleFunc("GET /items", srv.handleListOwnerItems)
	mux.HandleFunc("GET /items/search", srv.handleSearchItems)
	mux.HandleFunc("GET /items/{id}", srv.handleGetItem)
	mux.HandleFunc("PATCH /items/{id}", srv.handleUpdateItem)
	mux.HandleFunc("DELETE /items/{id}", srv.handleDeleteItem)
	mux.HandleFunc("POST /items/{id}/comment", srv.handleCreateComment)

	mux.HandleFunc("POST /requests", srv.handleCreateRequest)
	mux.HandleFunc("GET /requests", srv.handleListOwnRequests)
	mux.HandleFunc("GET /requests/all", srv.handleListOtherRequests)
	mux.HandleFunc("GET /requests/{id}", srv.handleGetRequest)

	mux.HandleFunc("GET /healthz", srv.handleHealth)

	handler := requestIDMiddleware(
		loggingMiddleware(logger,
			rateLimitMiddleware(cfg.RateLimit, mux)))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler returns the root handler, chiefly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// decodeJSON parses a request body rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
