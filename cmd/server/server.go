package main

import (
	"errors"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Simplici0/paint.works/internal/assistant"
	"github.com/Simplici0/paint.works/internal/estimate"
	"github.com/Simplici0/paint.works/internal/floorplan"
	"github.com/Simplici0/paint.works/internal/logging"
	"github.com/Simplici0/paint.works/internal/metrics"
	"github.com/Simplici0/paint.works/internal/store"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type server struct {
	auth   *authService
	store  *store.Store
	logger *zap.Logger

	// assistant is nil when no reasoning engine is configured.
	assistant *assistant.Hub
}

func (s *server) routes(corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(s.logger, "http"))
	r.Use(middleware.Recoverer)
	// Credentials are only shared with origins named explicitly.
	credentials := !slices.Contains(corsOrigins, "*")
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: credentials,
		MaxAge:           300,
	}))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Route("/api", func(r chi.Router) {
		r.Get("/paints", s.handlePaintsList)
		r.With(s.auth.requireAdmin).Put("/paints/{id}", s.handlePaintsUpsert)

		r.Post("/estimates", s.handleEstimate)

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", s.handlePlansList)
			r.Post("/", s.handlePlansCreate)
			r.Get("/{id}", s.handlePlansGet)
			r.Put("/{id}", s.handlePlansUpdate)
			r.Get("/{id}/estimates", s.handlePlanEstimatesList)
			r.Post("/{id}/estimates", s.handlePlanEstimatesCreate)
			r.Post("/{id}/assistant", s.handlePlanAssistant)
		})

		r.Route("/assistant", func(r chi.Router) {
			r.Use(s.requireAssistant)
			r.Post("/sessions", s.handleAssistantSession)
			r.Get("/sessions/{id}/messages", s.handleAssistantMessages)
			r.Post("/query", s.handleAssistantQuery)
		})
	})

	return r
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DB().PingContext(r.Context()); err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		writeError(w, r, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	render.JSON(w, r, map[string]string{"status": "ok"})
}

type errResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

// errBadRequest marks client input that could not be decoded or validated.
type errBadRequest struct {
	error
}

func badRequest(err error) error {
	return &errBadRequest{err}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errResponse{Error: msg})
}

// fail maps err to a status code and writes it. Unexpected errors are logged
// and reported without detail.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalidLayout *floorplan.ErrInvalidLayout
		badReq        *errBadRequest
		notFound      *floorplan.ErrNotFound
		malformed     *estimate.ErrMalformedCatalogEntry
		outOfRange    *estimate.ErrQuantityOutOfRange
		upstream      *assistant.ErrUpstream
		owner         *assistant.ErrSessionOwner
	)

	switch {
	case errors.As(err, &invalidLayout):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errResponse{Error: "invalid layout", Problems: invalidLayout.Problems})
	case errors.As(err, &badReq), errors.Is(err, assistant.ErrNoSession):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.As(err, &owner):
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrRecordNotFound), errors.As(err, &notFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.As(err, &malformed), errors.As(err, &outOfRange):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &upstream):
		s.logger.Warn("assistant call failed", zap.Error(err))
		writeError(w, r, http.StatusBadGateway, err.Error())
	default:
		s.logger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

// decode reads a JSON body into v and runs its validate tags.
func decode(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return badRequest(errors.New("invalid JSON body: " + err.Error()))
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return badRequest(verrs)
		}
		var invalid *validator.InvalidValidationError
		if !errors.As(err, &invalid) {
			return badRequest(err)
		}
	}
	return nil
}
