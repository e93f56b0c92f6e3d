package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"shareloop/internal/config"
	"shareloop/internal/metrics"
)

// HeaderSharerUserID carries the caller identity set by the gateway.
const HeaderSharerUserID = "X-Sharer-User-Id"

const headerRequestID = "X-Request-Id"

// callerID extracts the trusted identity header. Returns (0, false) when
// the header is missing or malformed.
func callerID(r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.Header.Get(HeaderSharerUserID))
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// requireCaller writes a 400 and returns false when the identity header
// is absent.
func requireCaller(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "X-Sharer-User-Id header is required")
	}
	return id, ok
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := strings.TrimSpace(r.Header.Get(headerRequestID))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(headerRequestID, reqID)
		r.Header.Set(headerRequestID, reqID)
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(logger *zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(r.Method + " " + r.URL.Path)
		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", r.Header.Get(headerRequestID)).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// rateLimitMiddleware throttles per caller: the identity header when
// present, the remote host otherwise.
func rateLimitMiddleware(cfg config.RateLimitConfig, next http.Handler) http.Handler {
	if cfg.RPS <= 0 {
		return next
	}

	var limiters sync.Map // map[string]*rate.Limiter
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	getLimiter := func(key string) *rate.Limiter {
		if v, ok := limiters.Load(key); ok {
			return v.(*rate.Limiter)
		}
		lim := rate.NewLimiter(rate.Limit(cfg.RPS), burst)
		actual, loaded := limiters.LoadOrStore(key, lim)
		if loaded {
			return actual.(*rate.Limiter)
		}
		return lim
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get(HeaderSharerUserID))
		if key == "" {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err == nil && host != "" {
				key = host
			} else {
				key = "unknown"
			}
		}

		if !getLimiter(key).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
