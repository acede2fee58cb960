package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes returned by the API.
const (
	ErrorResponseCodeBadRequest           ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed     ErrorResponseCode = "validation_failed"
	ErrorResponseCodeNotFound             ErrorResponseCode = "not_found"
	ErrorResponseCodeNotReady             ErrorResponseCode = "not_ready"
	ErrorResponseCodeEmbeddingUnavailable ErrorResponseCode = "embedding_unavailable"
	ErrorResponseCodeReloadFailed         ErrorResponseCode = "reload_failed"
	ErrorResponseCodeInternalError        ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// RecommendFilters are optional hard constraints.
type RecommendFilters struct {
	MinPrice  *float64 `json:"min_price,omitempty"`
	MaxPrice  *float64 `json:"max_price,omitempty"`
	Genres    []string `json:"genres,omitempty"`
	Windows   *bool    `json:"windows,omitempty"`
	Mac       *bool    `json:"mac,omitempty"`
	Linux     *bool    `json:"linux,omitempty"`
	MinRating *float64 `json:"min_rating,omitempty"`
}

// RecommendRequest is the body of POST /v1/recommend.
type RecommendRequest struct {
	Query        string            `json:"query"`
	Filters      *RecommendFilters `json:"filters,omitempty"`
	Alpha        *float64          `json:"alpha,omitempty"`
	TopN         *int              `json:"top_n,omitempty"`
	SemanticTopK *int              `json:"semantic_top_k,omitempty"`
}

// Platforms lists the platform support flags of a game.
type Platforms struct {
	Windows bool `json:"windows"`
	Mac     bool `json:"mac"`
	Linux   bool `json:"linux"`
}

// Game is a catalog item as returned by the API.
type Game struct {
	Position         int       `json:"position"`
	AppID            string    `json:"appid"`
	Name             string    `json:"name"`
	PrimaryGenre     string    `json:"primary_genre"`
	Genres           []string  `json:"genres"`
	Price            float64   `json:"price"`
	WeightedRating   float64   `json:"weighted_rating"`
	Positive         int64     `json:"positive"`
	Negative         int64     `json:"negative"`
	ReleaseDate      string    `json:"release_date,omitempty"`
	HeaderImage      string    `json:"header_image,omitempty"`
	Description      string    `json:"description,omitempty"`
	ShortDescription string    `json:"short_description,omitempty"`
	Platforms        Platforms `json:"platforms"`
}

// ScoredGame is a recommendation with its fused score breakdown.
// SemanticScore and QualityScore are min–max normalized within the candidate set.
type ScoredGame struct {
	Game
	FinalScore    float64 `json:"final_score"`
	SemanticScore float64 `json:"semantic_score"`
	QualityScore  float64 `json:"quality_score"`
	Similarity    float64 `json:"similarity"`
}

// RecommendResponse is the body of a successful POST /v1/recommend.
type RecommendResponse struct {
	Games        []ScoredGame `json:"games"`
	TotalResults int          `json:"total_results"`
}

// GenresResponse is the body of GET /v1/genres.
type GenresResponse struct {
	Genres []string `json:"genres"`
	Total  int      `json:"total"`
}

// GenresParams are the query parameters of GET /v1/genres.
type GenresParams struct {
	Prefix *string `form:"prefix,omitempty" json:"prefix,omitempty"`
}

// SnapshotResponse describes the published snapshot.
type SnapshotResponse struct {
	Version   string `json:"version"`
	Model     string `json:"model"`
	Dimension int    `json:"dimension"`
	Count     int    `json:"count"`
	CreatedAt string `json:"created_at,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ServerInterface lists the API operations.
type ServerInterface interface {
	// Recommend handles POST /v1/recommend.
	Recommend(w http.ResponseWriter, r *http.Request)
	// ListGenres handles GET /v1/genres.
	ListGenres(w http.ResponseWriter, r *http.Request, params GenresParams)
	// GetItem handles GET /v1/items/{position}.
	GetItem(w http.ResponseWriter, r *http.Request, position int)
	// GetSnapshot handles GET /v1/snapshot.
	GetSnapshot(w http.ResponseWriter, r *http.Request)
	// ReloadSnapshot handles POST /v1/admin/reload.
	ReloadSnapshot(w http.ResponseWriter, r *http.Request)
	// HealthCheck handles GET /health.
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// Metrics handles GET /metrics.
	Metrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError reports a parameter that could not be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseRouter       chi.Router
	Middlewares      []func(http.Handler) http.Handler
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// serverInterfaceWrapper binds request parameters before calling the handler.
type serverInterfaceWrapper struct {
	handler          ServerInterface
	middlewares      []func(http.Handler) http.Handler
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *serverInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, h http.HandlerFunc) {
	var handler http.Handler = h
	for _, m := range siw.middlewares {
		handler = m(handler)
	}
	handler.ServeHTTP(w, r)
}

func (siw *serverInterfaceWrapper) Recommend(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.handler.Recommend)
}

func (siw *serverInterfaceWrapper) ListGenres(w http.ResponseWriter, r *http.Request) {
	var params GenresParams

	err := runtime.BindQueryParameter("form", true, false, "prefix", r.URL.Query(), &params.Prefix)
	if err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "prefix", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.handler.ListGenres(w, r, params)
	})
}

func (siw *serverInterfaceWrapper) GetItem(w http.ResponseWriter, r *http.Request) {
	var position int

	err := runtime.BindStyledParameterWithOptions("simple", "position", chi.URLParam(r, "position"), &position,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "position", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.handler.GetItem(w, r, position)
	})
}

func (siw *serverInterfaceWrapper) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.handler.GetSnapshot)
}

func (siw *serverInterfaceWrapper) ReloadSnapshot(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.handler.ReloadSnapshot)
}

func (siw *serverInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.handler.HealthCheck)
}

func (siw *serverInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.handler.Metrics)
}

// HandlerWithOptions mounts si on a chi router.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := serverInterfaceWrapper{
		handler:          si,
		middlewares:      options.Middlewares,
		errorHandlerFunc: options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Post("/v1/recommend", wrapper.Recommend)
	})
	r.Group(func(r chi.Router) {
		r.Get("/v1/genres", wrapper.ListGenres)
	})
	r.Group(func(r chi.Router) {
		r.Get("/v1/items/{position}", wrapper.GetItem)
	})
	r.Group(func(r chi.Router) {
		r.Get("/v1/snapshot", wrapper.GetSnapshot)
	})
	r.Group(func(r chi.Router) {
		r.Post("/v1/admin/reload", wrapper.ReloadSnapshot)
	})
	r.Group(func(r chi.Router) {
		r.Get("/health", wrapper.HealthCheck)
	})
	r.Group(func(r chi.Router) {
		r.Get("/metrics", wrapper.Metrics)
	})

	return r
}
