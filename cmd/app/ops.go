package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// newOpsRouter serves /health itself and hands every other path to web
func newOpsRouter(web http.Handler, gateway, states pinger, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", handleHealth(gateway, states, logger))
	r.Mount("/", web)

	return r
}

type healthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Gateway   string `json:"gateway"`
	ViewState string `json:"view_state"`
	Timestamp string `json:"timestamp"`
}

func handleHealth(gateway, states pinger, logger *zap.Logger) http.HandlerFunc {
	check := func(ctx context.Context, name string, p pinger) string {
		if err := p.Ping(ctx); err != nil {
			logger.Warn("health check failed", zap.String("component", name), zap.Error(err))
			return "unhealthy"
		}
		return "healthy"
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{
			Service:   "optionstracker",
			Gateway:   check(ctx, "gateway", gateway),
			ViewState: check(ctx, "view_state", states),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		// the dashboard still serves cached snapshots while the backend is down
		status := http.StatusOK
		switch {
		case resp.ViewState != "healthy":
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		case resp.Gateway != "healthy":
			resp.Status = "degraded"
		default:
			resp.Status = "healthy"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
