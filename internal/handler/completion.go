package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/apperr"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
)

type raiseRequest struct {
	ProjectID string `json:"projectId"`
	Type      string `json:"type"`
	Notes     string `json:"notes"`
}

func (h *Handler) handleRaiseRequest(w http.ResponseWriter, r *http.Request) {
	var req raiseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		h.writeError(w, r, apperr.Validation("invalid projectId"))
		return
	}
	kind, valid := models.ParseRequestType(req.Type)
	if !valid {
		h.writeError(w, r, apperr.Validation("type must be complete or cancel"))
		return
	}
	cr, err := h.orch.RaiseRequest(r.Context(), identity(r), projectID, kind, req.Notes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Completion request raised", cr)
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuidParam(r, "projectId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	cr, err := h.orch.GetCompletionRequest(r.Context(), identity(r), projectID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Completion request fetched", cr)
}

type respondRequest struct {
	Response string `json:"response"`
	Notes    string `json:"notes"`
}

func (h *Handler) handleRespondRequest(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuidParam(r, "projectId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req respondRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	decision, valid := models.ParseDecision(req.Response)
	if !valid {
		h.writeError(w, r, apperr.Validation("response must be approve or reject"))
		return
	}
	cr, err := h.orch.RespondRequest(r.Context(), identity(r), projectID, decision, req.Notes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Completion request "+string(cr.Status), cr)
}
