// Package handler exposes the workflow engine over HTTP.
package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/elastic"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/ratelimit"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/services"
	"go.uber.org/zap"
)

// Searcher finds open projects. A nil Searcher disables search.
type Searcher interface {
	SearchOpenProjects(ctx context.Context, q elastic.SearchQuery) ([]elastic.SearchHit, error)
}

// ImageStore persists uploaded chat images.
type ImageStore interface {
	SaveImage(ctx context.Context, r io.Reader) (string, error)
	Remove(url string) error
	Handler() http.Handler
	BaseURL() string
}

type Deps struct {
	Orchestrator   *services.Orchestrator
	Search         Searcher
	Images         ImageStore
	Limiter        ratelimit.Limiter
	Logger         *zap.Logger
	AllowedOrigins []string
	MaxUploadBytes int64
	Debug          bool
}

type Handler struct {
	orch           *services.Orchestrator
	search         Searcher
	images         ImageStore
	limiter        ratelimit.Limiter
	logger         *zap.Logger
	allowedOrigins []string
	maxUploadBytes int64
	debug          bool
}

func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 5 << 20
	}
	return &Handler{
		orch:           d.Orchestrator,
		search:         d.Search,
		images:         d.Images,
		limiter:        d.Limiter,
		logger:         logger.Named("http"),
		allowedOrigins: d.AllowedOrigins,
		maxUploadBytes: d.MaxUploadBytes,
		debug:          d.Debug,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(h.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   h.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", headerUserID, headerUserRole, "X-Request-Id"},
		AllowCredentials: true,
	}).Handler)

	r.Get("/health", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	if h.images != nil && strings.HasPrefix(h.images.BaseURL(), "/") {
		r.Handle(h.images.BaseURL()+"/*", h.images.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(h.requireIdentity)

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", h.handleCreateProject)
			r.Get("/mine", h.handleMyProjects)
			r.Get("/search", h.handleSearchProjects)
			r.Get("/{id}", h.handleGetProject)
			r.Delete("/{id}", h.handleDeleteProject)
			r.Get("/{id}/room", h.handleProjectRoom)
			r.With(h.rateLimit(applyKey)).Post("/{id}/apply", h.handleApply)
			r.Post("/{id}/applications/{appId}/accept", h.handleAcceptApplication)
			r.Post("/{id}/review", h.handleSubmitReview)
		})

		r.Route("/completion-requests", func(r chi.Router) {
			r.Post("/", h.handleRaiseRequest)
			r.Get("/{projectId}", h.handleGetRequest)
			r.Post("/{projectId}/respond", h.handleRespondRequest)
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/active", h.handleListRooms)
			r.Get("/unread", h.handleUnread)
			r.Get("/{roomId}", h.handleGetRoom)
			r.Put("/{roomId}/wallpaper", h.handleSetWallpaper)
			r.Get("/{roomId}/messages", h.handleFetchMessages)
			r.Get("/{roomId}/messages/new", h.handleNewMessages)
			r.Delete("/{roomId}/messages/{messageId}", h.handleDeleteMessage)
			r.Group(func(r chi.Router) {
				r.Use(h.rateLimit(messageKey))
				r.Post("/{roomId}/messages", h.handleSendMessage)
				r.Post("/{roomId}/messages/image", h.handleSendImage)
			})
		})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "ok"})
}
