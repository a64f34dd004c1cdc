package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"eco_city/internal/api/middleware"
	"eco_city/internal/app/service"
	"eco_city/internal/common"

	"github.com/go-chi/chi/v5"
)

type IdeaHandler struct {
	ideaService *service.IdeaService
	requireAuth func(http.Handler) http.Handler
	logger      *slog.Logger
}

func NewIdeaHandler(ideaService *service.IdeaService, requireAuth func(http.Handler) http.Handler, logger *slog.Logger) *IdeaHandler {
	return &IdeaHandler{ideaService: ideaService, requireAuth: requireAuth, logger: logger}
}

func (h *IdeaHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listIdeas)         // GET /api/v1/ideas?category=&status=
	r.Get("/recent", h.recentIdeas) // GET /api/v1/ideas/recent?limit=
	r.Get("/{ideaID}", h.getIdea)   // GET /api/v1/ideas/42

	r.Group(func(authed chi.Router) {
		authed.Use(h.requireAuth)
		authed.Post("/", h.createIdea)
		authed.Post("/{ideaID}/vote", h.voteIdea)
	})
}

type voteRequest struct {
	VoteType string `json:"vote_type"`
}

type voteResponse struct {
	Success    bool `json:"success"`
	VotesCount int  `json:"votes_count"`
}

func (h *IdeaHandler) listIdeas(w http.ResponseWriter, r *http.Request) {
	ideas, err := h.ideaService.List(r.Context(), service.ListIdeasQuery{
		Category: r.URL.Query().Get("category"),
		Status:   r.URL.Query().Get("status"),
	})
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, ideas)
}

func (h *IdeaHandler) recentIdeas(w http.ResponseWriter, r *http.Request) {
	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	ideas, err := h.ideaService.Recent(r.Context(), limit)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, ideas)
}

func (h *IdeaHandler) getIdea(w http.ResponseWriter, r *http.Request) {
	id, ok := ideaIDParam(w, r)
	if !ok {
		return
	}
	idea, err := h.ideaService.Get(r.Context(), id)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, idea)
}

func (h *IdeaHandler) createIdea(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing caller context")
		return
	}

	var req service.CreateIdeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	idea, err := h.ideaService.Create(r.Context(), caller, req)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, idea)
}

func (h *IdeaHandler) voteIdea(w http.ResponseWriter, r *http.Request) {
	id, ok := ideaIDParam(w, r)
	if !ok {
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	idea, err := h.ideaService.Vote(r.Context(), id, req.VoteType)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, voteResponse{Success: true, VotesCount: idea.VotesCount})
}

// Non-numeric ids can never exist, so they are reported as missing.
func ideaIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "ideaID"), 10, 64)
	if err != nil {
		common.RespondWithError(w, http.StatusNotFound, common.ErrNotFound.Error())
		return 0, false
	}
	return id, true
}
