package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/apperr"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/metrics"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/models"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/services"
	"go.uber.org/zap"
)

const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
)

type contextKey string

const identityContextKey contextKey = "identity"

// requireIdentity trusts the identity headers set by the gateway in front of
// this service.
func (h *Handler) requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.Header.Get(headerUserID))
		if err != nil {
			h.writeError(w, r, apperr.Unauthorized("missing or invalid "+headerUserID+" header"))
			return
		}
		role, ok := models.ParseRole(r.Header.Get(headerUserRole))
		if !ok {
			h.writeError(w, r, apperr.Unauthorized("missing or invalid "+headerUserRole+" header"))
			return
		}
		ctx := context.WithValue(r.Context(), identityContextKey, services.Identity{UserID: userID, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func IdentityFromContext(ctx context.Context) (services.Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(services.Identity)
	return id, ok
}

func messageKey(r *http.Request, id services.Identity) string {
	return "msg:" + chi.URLParam(r, "roomId") + ":" + id.UserID.String()
}

func applyKey(r *http.Request, id services.Identity) string {
	return "apply:" + id.UserID.String()
}

func (h *Handler) rateLimit(keyFn func(*http.Request, services.Identity) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if h.limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			id, _ := IdentityFromContext(r.Context())
			if !h.limiter.Allow(keyFn(r, id)) {
				h.writeError(w, r, apperr.RateLimited("too many requests, slow down"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

		h.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
			zap.String("request_id", chimw.GetReqID(r.Context())))
	})
}
