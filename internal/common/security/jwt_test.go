package security

import (
	"testing"
	"time"

	"eco_city/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	account := &model.Account{ID: 42, Username: "alice", IsAdmin: true}

	issued, err := issuer.GenerateToken(account)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	require.NotEmpty(t, issued.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, 5*time.Second)

	token, err := jwtauth.VerifyToken(issuer.Auth, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, token.JwtID())

	caller, err := CallerFromClaims(jwt.MapClaims(token.PrivateClaims()))
	require.NoError(t, err)
	assert.Equal(t, int64(42), caller.AccountID)
	assert.Equal(t, "alice", caller.Username)
	assert.Equal(t, model.RoleAdmin, caller.Role)
}

func TestGenerateToken_UniqueIDs(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	account := &model.Account{ID: 1, Username: "bob"}

	a, err := issuer.GenerateToken(account)
	require.NoError(t, err)
	b, err := issuer.GenerateToken(account)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	issued, err := NewTokenIssuer([]byte("right"), time.Hour).GenerateToken(&model.Account{ID: 1, Username: "bob"})
	require.NoError(t, err)

	_, err = jwtauth.VerifyToken(NewTokenIssuer([]byte("wrong"), time.Hour).Auth, issued.Token)
	assert.Error(t, err)
}

func TestVerifyToken_Expired(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), -time.Minute)
	issued, err := issuer.GenerateToken(&model.Account{ID: 1, Username: "bob"})
	require.NoError(t, err)

	_, err = jwtauth.VerifyToken(issuer.Auth, issued.Token)
	assert.Error(t, err)
}

func TestCallerFromClaims_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{"missing id", jwt.MapClaims{"username": "a", "role": "user"}},
		{"numeric id", jwt.MapClaims{"account_id": 5.0, "username": "a", "role": "user"}},
		{"non-integer id", jwt.MapClaims{"account_id": "x", "username": "a", "role": "user"}},
		{"zero id", jwt.MapClaims{"account_id": "0", "username": "a", "role": "user"}},
		{"missing username", jwt.MapClaims{"account_id": "1", "role": "user"}},
		{"missing role", jwt.MapClaims{"account_id": "1", "username": "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CallerFromClaims(tt.claims)
			assert.Error(t, err)
		})
	}
}
