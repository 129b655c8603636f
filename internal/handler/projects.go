package handler

import (
	"net/http"
	"strings"

	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/elastic"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/services"
)

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req services.NewProject
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.orch.CreateProject(r.Context(), identity(r), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Project created", p)
}

func (h *Handler) handleMyProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.orch.ListMyProjects(r.Context(), identity(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Projects fetched", projects)
}

func (h *Handler) handleSearchProjects(w http.ResponseWriter, r *http.Request) {
	if h.search == nil {
		writeJSON(w, http.StatusServiceUnavailable, envelope{Success: false, Message: "project search is not configured"})
		return
	}
	limit, err := intQuery(r, "limit")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	q := elastic.SearchQuery{
		Text:  strings.TrimSpace(r.URL.Query().Get("q")),
		Limit: limit,
	}
	for _, tag := range strings.Split(r.URL.Query().Get("stack"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			q.TechStack = append(q.TechStack, strings.ToLower(tag))
		}
	}
	hits, err := h.search.SearchOpenProjects(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Projects found", hits)
}

func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuidParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.orch.GetProject(r.Context(), identity(r), projectID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Project fetched", p)
}

func (h *Handler) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuidParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.orch.DeleteProject(r.Context(), identity(r), projectID); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Project deleted", nil)
}

func (h *Handler) handleProjectRoom(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuidParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	room, err := h.orch.RoomForProject(r.Context(), identity(r), projectID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Room fetched", room)
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuidParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req services.Proposal
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	app, err := h.orch.Apply(r.Context(), identity(r), projectID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Application submitted", app)
}

func (h *Handler) handleAcceptApplication(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuidParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	appID, err := uuidParam(r, "appId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.orch.AcceptApplication(r.Context(), identity(r), projectID, appID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Application accepted", p)
}

type reviewRequest struct {
	Breakdown models.ReviewBreakdown `json:"breakdown"`
	Comment   string                 `json:"comment"`
}

func (h *Handler) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuidParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req reviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.orch.SubmitReview(r.Context(), identity(r), projectID, req.Breakdown, req.Comment)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Review submitted", p)
}
