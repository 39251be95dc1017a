package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github-repo-mirror/internal/infra/logging"
)

const healthTimeout = 2 * time.Second

// Pinger is a dependency whose liveness gates /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health answers 200 "OK" when every named dependency pings, 503 otherwise.
func Health(checks map[string]Pinger, logger *zerolog.Logger) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for n := range checks {
		names = append(names, n)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, n := range names {
			if err := checks[n].Ping(ctx); err != nil {
				logging.With(r.Context(), logger).Warn().Err(err).Str("dependency", n).Msg("health check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(n + " unavailable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// NewHTTPServer applies the configured timeouts to h.
func NewHTTPServer(addr string, h http.Handler, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       2 * time.Minute,
	}
}
