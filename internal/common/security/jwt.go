package security

import (
	"errors"
	"strconv"
	"time"

	"eco_city/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenIssuer signs session tokens. Auth is shared with the jwtauth verifier middleware.
type TokenIssuer struct {
	Auth *jwtauth.JWTAuth
	ttl  time.Duration
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		Auth: jwtauth.New("HS256", secret, nil),
		ttl:  ttl,
	}
}

type IssuedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

func (i *TokenIssuer) GenerateToken(account *model.Account) (*IssuedToken, error) {
	now := time.Now()
	expiresAt := now.Add(i.ttl)
	tokenID := uuid.NewString()

	claims := jwt.MapClaims{
		"account_id": strconv.FormatInt(account.ID, 10),
		"username":   account.Username,
		"role":       account.Role(),
		"jti":        tokenID,
		"exp":        expiresAt.Unix(),
		"iat":        now.Unix(),
	}
	_, tokenString, err := i.Auth.Encode(claims)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{Token: tokenString, ID: tokenID, ExpiresAt: expiresAt}, nil
}

// CallerFromClaims rebuilds the caller identity from verified claims.
// TokenID and ExpiresAt are filled in by the middleware from the token itself.
func CallerFromClaims(claims jwt.MapClaims) (model.Caller, error) {
	rawID, ok := claims["account_id"].(string)
	if !ok {
		return model.Caller{}, errors.New("account_id claim is missing or not a string")
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return model.Caller{}, errors.New("account_id claim is not a positive integer")
	}
	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return model.Caller{}, errors.New("username claim is missing or not a string")
	}
	role, ok := claims["role"].(string)
	if !ok {
		return model.Caller{}, errors.New("role claim is missing or not a string")
	}
	return model.Caller{AccountID: id, Username: username, Role: role}, nil
}
