package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/Simplici0/paint.works/internal/assistant"
	"github.com/Simplici0/paint.works/internal/estimate"
)

func (s *server) requireAssistant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.assistant == nil {
			writeError(w, r, http.StatusServiceUnavailable, "assistant is not configured")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type sessionRequest struct {
	UserID string `json:"userId"`
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Text      string `json:"text"`
}

func (s *server) handleAssistantSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	conv, reply, err := s.assistant.Start(r.Context(), req.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, sessionResponse{
		SessionID: conv.SessionID(),
		UserID:    conv.UserID(),
		Text:      reply.Text,
	})
}

func (s *server) handleAssistantMessages(w http.ResponseWriter, r *http.Request) {
	conv, ok := s.assistant.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown assistant session")
		return
	}
	render.JSON(w, r, conv.History())
}

type queryRequest struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Message   string `json:"message"`
}

func (s *server) handleAssistantQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.SessionID == "" || req.Message == "" {
		s.fail(w, r, badRequest(errors.New("missing session id or message")))
		return
	}

	conv, err := s.assistant.Conversation(req.SessionID, req.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	reply, err := conv.Send(r.Context(), req.Message)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, reply)
}

type planAssistantRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	UserID    string `json:"userId"`
}

type planAssistantResponse struct {
	Reply   assistant.Reply         `json:"reply"`
	Payload estimate.PlannerPayload `json:"payload"`
}

// handlePlanAssistant hands a saved plan's paint needs to the assistant.
func (s *server) handlePlanAssistant(w http.ResponseWriter, r *http.Request) {
	if s.assistant == nil {
		writeError(w, r, http.StatusServiceUnavailable, "assistant is not configured")
		return
	}
	id, err := planID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req planAssistantRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	_, summary, err := s.estimatesFor(r, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	payload := estimate.NewPlannerPayload(summary)

	conv, err := s.assistant.Conversation(req.SessionID, req.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	reply, err := conv.SendPlan(r.Context(), payload)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, planAssistantResponse{Reply: reply, Payload: payload})
}
