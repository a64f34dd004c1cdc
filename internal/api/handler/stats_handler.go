package handler

import (
	"log/slog"
	"net/http"

	"eco_city/internal/api/middleware"
	"eco_city/internal/app/service"
	"eco_city/internal/common"
	"eco_city/internal/domain/model"
	"eco_city/internal/platform/config"

	"github.com/go-chi/chi/v5"
)

type StatsHandler struct {
	statsService *service.StatsService
	logger       *slog.Logger
}

func NewStatsHandler(statsService *service.StatsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{statsService: statsService, logger: logger}
}

func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.summary)
}

func (h *StatsHandler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.statsService.Summary(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, summary)
}

type AdminHandler struct {
	statsService *service.StatsService
	requireAuth  func(http.Handler) http.Handler
	logger       *slog.Logger
}

func NewAdminHandler(statsService *service.StatsService, requireAuth func(http.Handler) http.Handler, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{statsService: statsService, requireAuth: requireAuth, logger: logger}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Use(h.requireAuth)
	r.Use(middleware.AdminOnly)
	r.Get("/dashboard", h.dashboard)
}

func (h *AdminHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.statsService.Dashboard(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, dashboard)
}

// MapConfig is what the map page needs to render and filter ideas.
type MapConfig struct {
	CenterLat  float64            `json:"center_lat"`
	CenterLng  float64            `json:"center_lng"`
	Zoom       int                `json:"zoom"`
	TileURL    string             `json:"tile_url"`
	Categories []model.Category   `json:"categories"`
	Statuses   []model.IdeaStatus `json:"statuses"`
}

type MapHandler struct {
	config MapConfig
}

func NewMapHandler(cfg *config.Config) *MapHandler {
	return &MapHandler{config: MapConfig{
		CenterLat:  cfg.MapCenterLat,
		CenterLng:  cfg.MapCenterLng,
		Zoom:       cfg.MapZoom,
		TileURL:    cfg.MapTiles,
		Categories: model.Categories,
		Statuses:   model.Statuses,
	}}
}

func (h *MapHandler) RegisterRoutes(r chi.Router) {
	r.Get("/config", func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithJSON(w, http.StatusOK, h.config)
	})
}
