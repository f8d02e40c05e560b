package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-platform-backend/errs"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type healthHandler struct {
	responder   Responder
	logger      zerolog.Logger
	db          pinger
	cache       pinger
	startupTime time.Time
}

// newHealthHandler builds the handler; cache is nil when no cache is configured.
func newHealthHandler(db, cache pinger, startupTime time.Time) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()

	return healthHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		db:          db,
		cache:       cache,
		startupTime: startupTime,
	}
}

// health reports whether the database and, when configured, the cache answer
// @Summary Health check
// @Tags Operations
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} ErrorResponse
// @Router /health [get]
func (h healthHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			h.responder.WriteError(w, errs.NewApiErr(http.StatusServiceUnavailable, errs.ErrInternal, "database unavailable").WithCause(err))
			return
		}
		if h.cache != nil {
			if err := h.cache.Ping(ctx); err != nil {
				h.responder.WriteError(w, errs.NewApiErr(http.StatusServiceUnavailable, errs.ErrInternal, "cache unavailable").WithCause(err))
				return
			}
		}

		h.responder.WriteJSON(w, http.StatusOK, map[string]string{
			"status": statusSuccess,
			"uptime": time.Since(h.startupTime).Round(time.Second).String(),
		})
	}
}
