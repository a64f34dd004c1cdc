package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"eco_city/internal/api/middleware"
	"eco_city/internal/app/service"
	"eco_city/internal/common"

	"github.com/go-chi/chi/v5"
)

// SessionCookieName is the cookie jwtauth.TokenFromCookie reads.
const SessionCookieName = "jwt"

type AuthHandler struct {
	authService  *service.AuthService
	requireAuth  func(http.Handler) http.Handler
	cookieSecure bool
	logger       *slog.Logger
}

func NewAuthHandler(
	authService *service.AuthService,
	requireAuth func(http.Handler) http.Handler,
	cookieSecure bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		requireAuth:  requireAuth,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)

	r.Group(func(authed chi.Router) {
		authed.Use(h.requireAuth)
		authed.Post("/logout", h.logout)
		authed.Get("/me", h.me)
	})
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	h.setSessionCookie(w, resp.Token, resp.ExpiresAt)
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	h.setSessionCookie(w, resp.Token, resp.ExpiresAt)
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing caller context")
		return
	}
	if err := h.authService.Logout(r.Context(), caller); err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	h.setSessionCookie(w, "", time.Unix(0, 0))
	common.RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing caller context")
		return
	}
	account, err := h.authService.Lookup(r.Context(), caller.AccountID)
	if err != nil {
		common.RespondWithServiceError(w, r, h.logger, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, account)
}

// An empty token clears the cookie.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		cookie.MaxAge = -1
	}
	http.SetCookie(w, cookie)
}
