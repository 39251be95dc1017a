// Package apiv1 is the JSON HTTP surface over the sync, statistics and
// catalog use cases.
package apiv1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github-repo-mirror/internal/domain"
	"github-repo-mirror/internal/domain/model"
	"github-repo-mirror/internal/infra/api"
	"github-repo-mirror/internal/infra/logging"
	"github-repo-mirror/internal/usecase"
)

const (
	msgGitHubUserNotFound = "GitHub user not found"
	msgUserNotFound       = "User not found"
	msgSyncInProgress     = "Sync already in progress for user"
	msgInvalidTopN        = "topN must be an integer between 1 and 20"
	msgQueryRequired      = "q is required"
	msgUnavailable        = "Service Unavailable"
	msgBadRequest         = "Bad Request"
)

type Server struct {
	sync    usecase.SyncUseCase
	stats   usecase.StatsUseCase
	catalog usecase.CatalogUseCase
	log     *zerolog.Logger

	syncGuards []api.Middleware
}

type Option func(*Server)

// WithSyncGuard wraps only the sync route, e.g. with a rate limiter.
func WithSyncGuard(mw ...api.Middleware) Option {
	return func(s *Server) { s.syncGuards = append(s.syncGuards, mw...) }
}

func NewServer(sync usecase.SyncUseCase, stats usecase.StatsUseCase, catalog usecase.CatalogUseCase, logger *zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		sync:    sync,
		stats:   stats,
		catalog: catalog,
		log:     logging.Component(logger, "APIv1"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Server) SyncUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	ctx := logging.WithUsername(r.Context(), username)

	res, err := s.sync.SyncUserRepositories(ctx, username)
	if err != nil {
		s.fail(w, r.WithContext(ctx), err, msgGitHubUserNotFound)
		return
	}
	api.WriteJSON(w, http.StatusOK, toSyncResult(res))
}

func (s *Server) ListUserRepositories(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	repos, err := s.catalog.GetUserRepositories(r.Context(), username)
	if err != nil {
		s.fail(w, r, err, msgUserNotFound)
		return
	}
	api.WriteJSON(w, http.StatusOK, toRepositories(repos))
}

func (s *Server) SearchRepositories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		api.WriteError(w, http.StatusBadRequest, msgQueryRequired)
		return
	}

	repos, err := s.catalog.SearchRepositories(r.Context(), q)
	if err != nil {
		s.fail(w, r, err, msgUserNotFound)
		return
	}
	api.WriteJSON(w, http.StatusOK, toRepositories(repos))
}

func (s *Server) GetStatistics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	topN, ok := parseTopN(q.Get("topN"))
	if !ok {
		api.WriteError(w, http.StatusBadRequest, msgInvalidTopN)
		return
	}

	snap, err := s.stats.GetStatistics(r.Context(), strings.TrimSpace(q.Get("user")), topN)
	if err != nil {
		s.fail(w, r, err, msgUserNotFound)
		return
	}
	api.WriteJSON(w, http.StatusOK, toStatistics(snap))
}

// parseTopN defaults a missing value and clamps anything above the maximum.
func parseTopN(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.DefaultTopN, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	if n > model.MaxTopN {
		n = model.MaxTopN
	}
	return n, true
}

// fail maps the error kind onto status and message. notFoundMsg is the
// route's fixed NotFound text.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	l := logging.With(r.Context(), s.log)
	kind := domain.KindOf(err)
	switch kind {
	case domain.KindNotFound:
		api.WriteError(w, http.StatusNotFound, notFoundMsg)
	case domain.KindUnavailable:
		api.WriteError(w, http.StatusServiceUnavailable, publicOr(err, msgUnavailable))
	case domain.KindInvalidArgument:
		api.WriteError(w, http.StatusBadRequest, publicOr(err, msgBadRequest))
	case domain.KindConflict:
		api.WriteError(w, http.StatusConflict, msgSyncInProgress)
	case domain.KindOK, domain.KindError:
		l.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		api.WriteError(w, http.StatusInternalServerError, api.MsgInternal)
	default:
		l.Error().Err(err).Str("kind", kind.String()).Msg("unmapped error kind")
		api.WriteError(w, http.StatusInternalServerError, api.MsgInternal)
	}
}

func publicOr(err error, fallback string) string {
	if msg, ok := domain.PublicMessage(err); ok {
		return msg
	}
	return fallback
}
