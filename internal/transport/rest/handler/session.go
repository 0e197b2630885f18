package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lrperlmu/emotional-clarity-sub000/internal/model"
	"github.com/lrperlmu/emotional-clarity-sub000/internal/service"
	"github.com/lrperlmu/emotional-clarity-sub000/internal/transport/rest/middleware"
)

// SessionHandler handles participant session endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// Start handles POST /v1/sessions
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req service.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Variant == "" {
		writeError(w, http.StatusBadRequest, "variant is required")
		return
	}

	resp, err := h.sessionSvc.StartSession(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Current handles GET /v1/sessions/current
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	view, err := h.sessionSvc.Current(sessionID)
	if err != nil {
		writeNavError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Advance handles POST /v1/sessions/advance
func (h *SessionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	var req service.AdvanceRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	view, err := h.sessionSvc.Advance(sessionID, &req)
	if err != nil {
		writeNavError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Retreat handles POST /v1/sessions/retreat
func (h *SessionHandler) Retreat(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	view, err := h.sessionSvc.Retreat(sessionID)
	if err != nil {
		writeNavError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Variants handles GET /v1/variants
func (h *SessionHandler) Variants(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"variants": model.VariantSlugs()})
}

func writeNavError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoNextScreen), errors.Is(err, service.ErrNoPrevScreen):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrRecordNotFound):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
