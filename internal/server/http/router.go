package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"gitlab.lucky-team.pro/luckyads/go.cert-issuer/internal/environment"
)

func (s *Server) router(ctx context.Context) http.Handler {
	mux := chi.NewRouter()

	mux.Use(
		middleware.Recoverer,
		middleware.Heartbeat("/check"),
	)

	mux.Get("/deploy/info", deployInfoHandlerFunc(ctx))
	mux.Get("/certificates", s.certificatesHandlerFunc())

	return mux
}

func deployInfoHandlerFunc(ctx context.Context) http.HandlerFunc {
	info := map[string]string{
		"service":     environment.ServiceName,
		"environment": environment.EnvFromCtx(ctx).String(),
		"version":     environment.VersionFromCtx(ctx),
		"build_time":  environment.BuildTimeFromCtx(ctx),
	}

	return func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(info) //nolint:errcheck,gosec
	}
}

func (s *Server) certificatesHandlerFunc() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		statuses, err := s.statuses.Statuses(req.Context())
		if err != nil {
			s.logger.Error("failed to collect certificate statuses", zap.Error(err))
			http.Error(w, "failed to collect certificate statuses", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(statuses) //nolint:errcheck,gosec
	}
}
