package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Simplici0/paint.works/internal/catalog"
	"github.com/Simplici0/paint.works/internal/estimate"
	"github.com/Simplici0/paint.works/internal/floorplan"
	"github.com/Simplici0/paint.works/internal/metrics"
	"github.com/Simplici0/paint.works/internal/store"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	valid, err := s.auth.validateCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !valid {
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.auth.setSessionCookie(w, req.Email)
	render.JSON(w, r, map[string]string{"email": req.Email})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	render.NoContent(w, r)
}

func (s *server) handlePaintsList(w http.ResponseWriter, r *http.Request) {
	paints, err := s.store.Paints().List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, paints)
}

func (s *server) handlePaintsUpsert(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := render.DecodeJSON(r.Body, &p); err != nil {
		s.fail(w, r, badRequest(fmt.Errorf("invalid JSON body: %w", err)))
		return
	}
	p.ID = chi.URLParam(r, "id")
	if err := p.Validate(); err != nil {
		s.fail(w, r, badRequest(err))
		return
	}

	created, err := s.store.Paints().Upsert(r.Context(), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	email, _ := s.auth.sessionEmail(r)
	s.logger.Info("paint saved", zap.String("paint_id", p.ID), zap.Bool("created", created), zap.String("admin", email))

	if created {
		render.Status(r, http.StatusCreated)
	}
	render.JSON(w, r, p)
}

// summarize estimates layout against the catalog as stored right now.
func (s *server) summarize(r *http.Request, layout floorplan.Layout) (estimate.Summary, error) {
	cat, err := s.store.Paints().Catalog(r.Context())
	if err != nil {
		return estimate.Summary{}, err
	}

	summary, err := estimate.Summarize(layout, cat, estimate.WithLogger(s.logger))
	if err != nil {
		outcome := metrics.OutcomeMalformed
		var outOfRange *estimate.ErrQuantityOutOfRange
		if errors.As(err, &outOfRange) {
			outcome = metrics.OutcomeInvalid
		}
		metrics.IncreaseEstimatesTotalMetric(outcome)
		return estimate.Summary{}, err
	}

	metrics.IncreaseEstimatesTotalMetric(metrics.OutcomeOK)
	for _, e := range summary.Estimates {
		metrics.AddEstimatedLiters(e.LitersRequired)
	}
	return summary, nil
}

func (s *server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var layout floorplan.Layout
	if err := render.DecodeJSON(r.Body, &layout); err != nil {
		metrics.IncreaseEstimatesTotalMetric(metrics.OutcomeInvalid)
		s.fail(w, r, badRequest(fmt.Errorf("invalid JSON body: %w", err)))
		return
	}

	summary, err := s.summarize(r, layout)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

type planRequest struct {
	Name   string           `json:"name" validate:"required,max=200"`
	Layout floorplan.Layout `json:"layout" validate:"-"`
}

func decodePlan(r *http.Request) (planRequest, error) {
	var req planRequest
	if err := decode(r, &req); err != nil {
		return planRequest{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return planRequest{}, badRequest(fmt.Errorf("name is required"))
	}
	if err := floorplan.Validate(req.Layout); err != nil {
		return planRequest{}, err
	}
	return req, nil
}

func planID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, badRequest(fmt.Errorf("invalid plan id %q", chi.URLParam(r, "id")))
	}
	return id, nil
}

func (s *server) handlePlansList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	plans, err := s.store.Plans().List(r.Context(), query)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, plans)
}

func (s *server) handlePlansCreate(w http.ResponseWriter, r *http.Request) {
	req, err := decodePlan(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	plan, err := s.store.Plans().Create(r.Context(), req.Name, req.Layout)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, plan)
}

func (s *server) handlePlansGet(w http.ResponseWriter, r *http.Request) {
	id, err := planID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	plan, err := s.store.Plans().Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, plan)
}

func (s *server) handlePlansUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := planID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	req, err := decodePlan(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	plan, err := s.store.Plans().Update(r.Context(), id, req.Name, req.Layout)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, plan)
}

func (s *server) handlePlanEstimatesCreate(w http.ResponseWriter, r *http.Request) {
	id, err := planID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	plan, summary, err := s.estimatesFor(r, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	snap, err := s.store.Estimates().Save(r.Context(), plan.ID, summary)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, snap)
}

func (s *server) handlePlanEstimatesList(w http.ResponseWriter, r *http.Request) {
	id, err := planID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.store.Plans().Get(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}

	snaps, err := s.store.Estimates().ListForPlan(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, snaps)
}

// estimatesFor loads a saved plan and estimates it against the current catalog.
func (s *server) estimatesFor(r *http.Request, id uuid.UUID) (store.Plan, estimate.Summary, error) {
	plan, err := s.store.Plans().Get(r.Context(), id)
	if err != nil {
		return store.Plan{}, estimate.Summary{}, err
	}
	summary, err := s.summarize(r, plan.Layout)
	if err != nil {
		return store.Plan{}, estimate.Summary{}, err
	}
	return plan, summary, nil
}
