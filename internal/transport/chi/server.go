package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gamerec/internal/domain"
	domrec "github.com/kailas-cloud/gamerec/internal/domain/recommend"
	"github.com/kailas-cloud/gamerec/internal/logger"
	healthuc "github.com/kailas-cloud/gamerec/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/gamerec/internal/usecase/recommend"
	reloaduc "github.com/kailas-cloud/gamerec/internal/usecase/reload"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Defaults fill request parameters the client omitted.
type Defaults struct {
	Alpha        float64
	TopN         int
	SemanticTopK int
	MaxTopN      int
}

// Server implements ServerInterface.
type Server struct {
	recommend     *recommenduc.Service
	reload        *reloaduc.Service
	health        *healthuc.Service
	defaults      Defaults
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server. reload may be nil to disable the admin endpoint.
func NewServer(
	recommend *recommenduc.Service,
	reload *reloaduc.Service,
	health *healthuc.Service,
	defaults Defaults,
	logger *zap.Logger,
) *Server {
	s := &Server{
		recommend: recommend,
		reload:    reload,
		health:    health,
		defaults:  defaults,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrOutOfRange, http.StatusNotFound, ErrorResponseCodeNotFound),
		sentinelHandler(domain.ErrReloadFailed, http.StatusInternalServerError, ErrorResponseCodeReloadFailed),
		sentinelHandler(domain.ErrNotBuilt, http.StatusServiceUnavailable, ErrorResponseCodeNotReady),
		sentinelHandler(domain.ErrEmbeddingUnavailable,
			http.StatusBadGateway, ErrorResponseCodeEmbeddingUnavailable),
	}
	return s
}

// Recommend handles POST /v1/recommend.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	var body RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req, err := s.requestFromBody(&body)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
		return
	}

	results, err := s.recommend.Recommend(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	games := make([]ScoredGame, len(results))
	for i := range results {
		games[i] = scoredGameFromResult(&results[i])
	}
	writeJSON(w, http.StatusOK, RecommendResponse{Games: games, TotalResults: len(games)})
}

func (s *Server) requestFromBody(body *RecommendRequest) (domrec.Request, error) {
	spec, err := specFromFilters(body.Filters)
	if err != nil {
		return domrec.Request{}, err
	}

	alpha := s.defaults.Alpha
	if body.Alpha != nil {
		alpha = *body.Alpha
	}

	topN := s.defaults.TopN
	if body.TopN != nil {
		topN = *body.TopN
		if topN <= 0 {
			return domrec.Request{}, errors.New("top_n must be positive")
		}
	}
	if s.defaults.MaxTopN > 0 && topN > s.defaults.MaxTopN {
		return domrec.Request{}, errors.New("top_n exceeds the configured maximum")
	}

	window := 0
	if body.SemanticTopK != nil {
		window = *body.SemanticTopK
		if window <= 0 {
			return domrec.Request{}, errors.New("semantic_top_k must be positive")
		}
	} else if s.defaults.SemanticTopK > 0 {
		window = max(s.defaults.SemanticTopK, topN)
	}

	req, err := domrec.New(body.Query, spec, alpha, topN, window)
	if err != nil {
		return domrec.Request{}, err //nolint:wrapcheck // validation message goes to the client as is
	}
	return req, nil
}

// ListGenres handles GET /v1/genres.
func (s *Server) ListGenres(w http.ResponseWriter, r *http.Request, params GenresParams) {
	prefix := ""
	if params.Prefix != nil {
		prefix = *params.Prefix
	}

	genres, err := s.recommend.GenreVocabulary(r.Context(), prefix)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, GenresResponse{Genres: genres, Total: len(genres)})
}

// GetItem handles GET /v1/items/{position}.
func (s *Server) GetItem(w http.ResponseWriter, r *http.Request, position int) {
	it, err := s.recommend.Item(r.Context(), position)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, gameFromItem(position, &it))
}

// GetSnapshot handles GET /v1/snapshot.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	m, err := s.recommend.Manifest(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshotToResponse(m))
}

// ReloadSnapshot handles POST /v1/admin/reload.
func (s *Server) ReloadSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.reload == nil {
		writeError(w, http.StatusNotFound, ErrorResponseCodeNotFound, "reload endpoint is disabled")
		return
	}

	m, err := s.reload.Reload(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshotToResponse(m))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrOutOfRange,
		domain.ErrReloadFailed,
		domain.ErrNotBuilt,
		domain.ErrEmbeddingUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// validationHandler reports the full message for request validation errors, which carry no internals.
func validationHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrInvalidRequest) {
		return false
	}
	writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
