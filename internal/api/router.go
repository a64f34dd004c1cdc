package api

import (
	"log/slog"
	"net/http"
	"time"

	"eco_city/internal/api/handler"
	"eco_city/internal/api/middleware"
	"eco_city/internal/app/service"
	"eco_city/internal/common/security"
	"eco_city/internal/platform/config"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

type Dependencies struct {
	Config       *config.Config
	Logger       *slog.Logger
	Tokens       *security.TokenIssuer
	Revocations  middleware.RevocationChecker
	AuthService  *service.AuthService
	IdeaService  *service.IdeaService
	StatsService *service.StatsService
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Looks for "Authorization: Bearer T" first, then the jwt cookie.
	r.Use(jwtauth.Verifier(deps.Tokens.Auth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	requireAuth := middleware.Authenticator(deps.Revocations, deps.Logger)

	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(deps.AuthService, requireAuth, deps.Config.CookieSecure, deps.Logger)
		v1.Route("/auth", authHandler.RegisterRoutes)

		ideaHandler := handler.NewIdeaHandler(deps.IdeaService, requireAuth, deps.Logger)
		v1.Route("/ideas", ideaHandler.RegisterRoutes)

		statsHandler := handler.NewStatsHandler(deps.StatsService, deps.Logger)
		v1.Route("/statistics", statsHandler.RegisterRoutes)

		mapHandler := handler.NewMapHandler(deps.Config)
		v1.Route("/map", mapHandler.RegisterRoutes)

		adminHandler := handler.NewAdminHandler(deps.StatsService, requireAuth, deps.Logger)
		v1.Route("/admin", adminHandler.RegisterRoutes)
	})

	return r
}
