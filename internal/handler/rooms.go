package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/apperr"
	"go.uber.org/zap"
)

func (h *Handler) handleListRooms(w http.ResponseWriter, r *http.Request) {
	includeClosed := false
	if raw := r.URL.Query().Get("includeClosed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.writeError(w, r, apperr.Validation("includeClosed must be a boolean"))
			return
		}
		includeClosed = v
	}
	rooms, err := h.orch.ListRooms(r.Context(), identity(r), includeClosed)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Rooms fetched", rooms)
}

func (h *Handler) handleUnread(w http.ResponseWriter, r *http.Request) {
	n, err := h.orch.UnreadCount(r.Context(), identity(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Unread count fetched", map[string]int64{"unreadCount": n})
}

func (h *Handler) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuidParam(r, "roomId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	room, err := h.orch.GetRoom(r.Context(), identity(r), roomID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Room fetched", room)
}

type wallpaperRequest struct {
	Wallpaper string `json:"wallpaper"`
}

func (h *Handler) handleSetWallpaper(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuidParam(r, "roomId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req wallpaperRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	room, err := h.orch.SetWallpaper(r.Context(), identity(r), roomID, req.Wallpaper)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Wallpaper updated", room)
}

type messageRequest struct {
	Message string `json:"message"`
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuidParam(r, "roomId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req messageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	msg, err := h.orch.SendMessage(r.Context(), identity(r), roomID, req.Message)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Message sent", msg)
}

// handleSendImage accepts a multipart form with an "image" file and an
// optional "caption" field.
func (h *Handler) handleSendImage(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		writeJSON(w, http.StatusServiceUnavailable, envelope{Success: false, Message: "image uploads are not configured"})
		return
	}
	roomID, err := uuidParam(r, "roomId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.orch.CanSend(r.Context(), identity(r), roomID); err != nil {
		h.writeError(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+maxBodyBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, apperr.Validation("image is too large"))
			return
		}
		h.writeError(w, r, apperr.Validation("invalid multipart form"))
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		h.writeError(w, r, apperr.Validation("image file is required"))
		return
	}
	defer file.Close()

	url, err := h.images.SaveImage(r.Context(), file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	caption := strings.TrimSpace(r.FormValue("caption"))
	msg, err := h.orch.SendImageMessage(r.Context(), identity(r), roomID, url, caption)
	if err != nil {
		if rmErr := h.images.Remove(url); rmErr != nil {
			h.logger.Warn("remove orphaned image", zap.String("url", url), zap.Error(rmErr))
		}
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Image sent", msg)
}

func (h *Handler) handleFetchMessages(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuidParam(r, "roomId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := intQuery(r, "page")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit, err := intQuery(r, "limit")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.orch.FetchMessages(r.Context(), identity(r), roomID, page, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Messages fetched", result)
}

func (h *Handler) handleNewMessages(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuidParam(r, "roomId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	since, err := time.Parse(time.RFC3339Nano, r.URL.Query().Get("since"))
	if err != nil {
		h.writeError(w, r, apperr.Validation("since must be an RFC 3339 timestamp"))
		return
	}
	msgs, err := h.orch.CheckNewMessages(r.Context(), identity(r), roomID, since.UTC())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "New messages fetched", msgs)
}

func (h *Handler) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuidParam(r, "roomId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	messageID, err := uuidParam(r, "messageId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.orch.DeleteMessage(r.Context(), identity(r), roomID, messageID); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Message deleted", nil)
}
