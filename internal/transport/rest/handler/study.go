package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lrperlmu/emotional-clarity-sub000/internal/service"
)

// StudyHandler handles researcher-facing study endpoints
type StudyHandler struct {
	sessionSvc *service.SessionService
}

// NewStudyHandler creates a new study handler
func NewStudyHandler(sessionSvc *service.SessionService) *StudyHandler {
	return &StudyHandler{sessionSvc: sessionSvc}
}

// ListSessions handles GET /v1/studies/sessions
func (h *StudyHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	rows, err := h.sessionSvc.ListProgress(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": rows})
}

// GetSession handles GET /v1/studies/sessions/{sessionId}
func (h *StudyHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	session, err := h.sessionSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	progress, err := h.sessionSvc.Progress(r.Context(), sessionID)
	if err != nil && !errors.Is(err, service.ErrSessionNotFound) {
		writeError(w, http.StatusInternalServerError, "failed to load progress")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session":  session,
		"progress": progress,
	})
}
