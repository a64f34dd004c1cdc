package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"eco_city/internal/common"
	"eco_city/internal/common/security"
	"eco_city/internal/domain/model"
	"eco_city/internal/domain/repository"
)

const (
	minPasswordLength = 6
	maxUsernameLength = 80
	maxEmailLength    = 120
	maxCityLength     = 100
)

// TokenRevoker invalidates a session token before its natural expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

type AuthService struct {
	accountRepo repository.AccountRepository
	tokens      *security.TokenIssuer
	revoker     TokenRevoker
	defaultCity string
	logger      *slog.Logger
}

func NewAuthService(
	accountRepo repository.AccountRepository,
	tokens *security.TokenIssuer,
	revoker TokenRevoker,
	defaultCity string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		tokens:      tokens,
		revoker:     revoker,
		defaultCity: defaultCity,
		logger:      logger,
	}
}

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	City            string `json:"city"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Account   *model.Account `json:"account"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// Register creates a regular account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	city := strings.TrimSpace(req.City)

	switch {
	case username == "" || email == "" || req.Password == "":
		return nil, common.Errorf("username, email and password are required: %w", common.ErrValidation)
	case utf8.RuneCountInString(username) > maxUsernameLength:
		return nil, common.Errorf("username must be at most %d characters: %w", maxUsernameLength, common.ErrValidation)
	case utf8.RuneCountInString(email) > maxEmailLength:
		return nil, common.Errorf("email must be at most %d characters: %w", maxEmailLength, common.ErrValidation)
	case utf8.RuneCountInString(city) > maxCityLength:
		return nil, common.Errorf("city must be at most %d characters: %w", maxCityLength, common.ErrValidation)
	case utf8.RuneCountInString(req.Password) < minPasswordLength:
		return nil, common.Errorf("password must be at least %d characters: %w", minPasswordLength, common.ErrValidation)
	case req.Password != req.ConfirmPassword:
		return nil, common.Errorf("passwords do not match: %w", common.ErrValidation)
	}
	if city == "" {
		city = s.defaultCity
	}

	// Both lookups give a precise message; the unique constraints still decide races.
	if err := s.ensureFree(ctx, "username", username, s.accountRepo.FindByUsername); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, "email", email, s.accountRepo.FindByEmail); err != nil {
		return nil, err
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &model.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		City:         city,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	s.logger.InfoContext(ctx, "account registered", "account_id", account.ID, "username", account.Username)

	return s.openSession(account)
}

func (s *AuthService) ensureFree(ctx context.Context, field, value string, find func(context.Context, string) (*model.Account, error)) error {
	_, err := find(ctx, value)
	switch {
	case err == nil:
		return common.Errorf("%s is already taken: %w", field, common.ErrConflict)
	case errors.Is(err, common.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("failed to check %s: %w", field, err)
	}
}

// Login never says whether the username or the password was wrong.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, common.Errorf("username and password are required: %w", common.ErrValidation)
	}

	account, err := s.accountRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			security.BurnPasswordCheck(req.Password)
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, account.PasswordHash) {
		return nil, common.ErrUnauthorized
	}
	return s.openSession(account)
}

func (s *AuthService) openSession(account *model.Account) (*AuthResponse, error) {
	token, err := s.tokens.GenerateToken(account)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	account.PasswordHash = ""
	return &AuthResponse{Account: account, Token: token.Token, ExpiresAt: token.ExpiresAt}, nil
}

func (s *AuthService) Lookup(ctx context.Context, id int64) (*model.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	account.PasswordHash = ""
	return account, nil
}

// Logout revokes the caller's current token.
func (s *AuthService) Logout(ctx context.Context, caller model.Caller) error {
	if caller.TokenID == "" {
		return common.Errorf("session token has no id: %w", common.ErrUnauthorized)
	}
	if err := s.revoker.Revoke(ctx, caller.TokenID, caller.ExpiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.logger.InfoContext(ctx, "session closed", "account_id", caller.AccountID)
	return nil
}
