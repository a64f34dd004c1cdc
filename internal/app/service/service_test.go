package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"eco_city/internal/common/security"
	"eco_city/internal/domain/model"
	"eco_city/internal/domain/repository/repotest"
	"eco_city/internal/platform/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   *repotest.MemoryStore
	redis   *miniredis.Miniredis
	tokens  *security.TokenIssuer
	revoker *security.Revoker
	auth    *AuthService
	ideas   *IdeaService
	stats   *StatsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repotest.NewMemoryStore()
	tokens := security.NewTokenIssuer([]byte("test-secret"), time.Hour)
	revoker := security.NewRevoker(rdb)
	statsCache := cache.NewStatsCache(rdb, time.Minute)

	return &fixture{
		store:   store,
		redis:   mr,
		tokens:  tokens,
		revoker: revoker,
		auth:    NewAuthService(store.Accounts(), tokens, revoker, "Рубцовск", logger),
		ideas:   NewIdeaService(store.Ideas(), statsCache, logger),
		stats:   NewStatsService(store.Accounts(), store.Ideas(), statsCache, logger),
	}
}

func (f *fixture) register(t *testing.T, username string) *AuthResponse {
	t.Helper()
	resp, err := f.auth.Register(context.Background(), RegisterRequest{
		Username:        username,
		Email:           username + "@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	return resp
}

func callerOf(resp *AuthResponse) model.Caller {
	return model.Caller{AccountID: resp.Account.ID, Username: resp.Account.Username, Role: resp.Account.Role()}
}

func coord(v float64) *float64 { return &v }

func (f *fixture) createIdea(t *testing.T, caller model.Caller, category string) *model.Idea {
	t.Helper()
	idea, err := f.ideas.Create(context.Background(), caller, CreateIdeaRequest{
		Title:       "Idea in " + category,
		Description: "Make the city better",
		Category:    category,
		Latitude:    coord(51.5),
		Longitude:   coord(81.2),
	})
	require.NoError(t, err)
	return idea
}
