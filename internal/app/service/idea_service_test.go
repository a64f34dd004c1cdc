package service

import (
	"context"
	"math"
	"sync"
	"testing"

	"eco_city/internal/common"
	"eco_city/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIdea_Defaults(t *testing.T) {
	f := newFixture(t)
	caller := callerOf(f.register(t, "alice"))

	idea, err := f.ideas.Create(context.Background(), caller, CreateIdeaRequest{
		Title:       " New park ",
		Description: "Trees along the river",
		Category:    "Greening",
		Latitude:    coord(51.52),
		Longitude:   coord(81.21),
	})
	require.NoError(t, err)
	assert.Equal(t, "New park", idea.Title)
	assert.Equal(t, model.CategoryGreening, idea.Category)
	assert.Equal(t, model.StatusPending, idea.Status)
	assert.Zero(t, idea.VotesCount)
	assert.Equal(t, caller.AccountID, idea.AuthorID)
	assert.Equal(t, "alice", idea.Author)
	assert.False(t, idea.CreatedAt.IsZero())
}

func TestCreateIdea_Validation(t *testing.T) {
	f := newFixture(t)
	caller := callerOf(f.register(t, "alice"))
	valid := func() CreateIdeaRequest {
		return CreateIdeaRequest{Title: "t", Description: "d", Category: "sport", Latitude: coord(1), Longitude: coord(2)}
	}

	tests := []struct {
		name   string
		mutate func(*CreateIdeaRequest)
	}{
		{"empty title", func(r *CreateIdeaRequest) { r.Title = "  " }},
		{"empty description", func(r *CreateIdeaRequest) { r.Description = "" }},
		{"unknown category", func(r *CreateIdeaRequest) { r.Category = "space" }},
		{"missing latitude", func(r *CreateIdeaRequest) { r.Latitude = nil }},
		{"missing longitude", func(r *CreateIdeaRequest) { r.Longitude = nil }},
		{"latitude out of range", func(r *CreateIdeaRequest) { r.Latitude = coord(91) }},
		{"longitude out of range", func(r *CreateIdeaRequest) { r.Longitude = coord(-180.5) }},
		{"nan latitude", func(r *CreateIdeaRequest) { r.Latitude = coord(math.NaN()) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			_, err := f.ideas.Create(context.Background(), caller, req)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}

	n, err := f.store.Ideas().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListIdeas_Filters(t *testing.T) {
	f := newFixture(t)
	caller := callerOf(f.register(t, "alice"))
	f.createIdea(t, caller, "sport")
	f.createIdea(t, caller, "ecology")
	f.createIdea(t, caller, "sport")
	ctx := context.Background()

	all, err := f.ideas.List(ctx, ListIdeasQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	sport, err := f.ideas.List(ctx, ListIdeasQuery{Category: "sport"})
	require.NoError(t, err)
	require.Len(t, sport, 2)
	for _, idea := range sport {
		assert.Equal(t, model.CategorySport, idea.Category)
	}

	both, err := f.ideas.List(ctx, ListIdeasQuery{Category: "sport", Status: "approved"})
	require.NoError(t, err)
	assert.Empty(t, both)

	_, err = f.ideas.List(ctx, ListIdeasQuery{Status: "archived"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestRecentIdeas_LimitDefaults(t *testing.T) {
	f := newFixture(t)
	caller := callerOf(f.register(t, "alice"))
	for range 5 {
		f.createIdea(t, caller, "other")
	}
	ctx := context.Background()

	recent, err := f.ideas.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, DefaultRecentLimit)
	assert.Equal(t, int64(5), recent[0].ID)

	recent, err = f.ideas.Recent(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, recent, 5)
}

func TestGetIdea(t *testing.T) {
	f := newFixture(t)
	caller := callerOf(f.register(t, "alice"))
	created := f.createIdea(t, caller, "culture")

	got, err := f.ideas.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)

	_, err = f.ideas.Get(context.Background(), 999)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = f.ideas.Get(context.Background(), -1)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestVote_UpDownFloor(t *testing.T) {
	f := newFixture(t)
	caller := callerOf(f.register(t, "alice"))
	idea := f.createIdea(t, caller, "safety")
	ctx := context.Background()

	got, err := f.ideas.Vote(ctx, idea.ID, "down")
	require.NoError(t, err)
	assert.Equal(t, 0, got.VotesCount)

	got, err = f.ideas.Vote(ctx, idea.ID, "up")
	require.NoError(t, err)
	assert.Equal(t, 1, got.VotesCount)

	got, err = f.ideas.Vote(ctx, idea.ID, " UP ")
	require.NoError(t, err)
	assert.Equal(t, 2, got.VotesCount)

	got, err = f.ideas.Vote(ctx, idea.ID, "down")
	require.NoError(t, err)
	assert.Equal(t, 1, got.VotesCount)

	_, err = f.ideas.Vote(ctx, idea.ID, "sideways")
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = f.ideas.Vote(ctx, 12345, "up")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestVote_ConcurrentUpVotesAllCount(t *testing.T) {
	f := newFixture(t)
	caller := callerOf(f.register(t, "alice"))
	idea := f.createIdea(t, caller, "transport")

	const voters = 64
	var wg sync.WaitGroup
	for range voters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ideas.Vote(context.Background(), idea.ID, "up")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := f.ideas.Get(context.Background(), idea.ID)
	require.NoError(t, err)
	assert.Equal(t, voters, got.VotesCount)
}

func TestVote_CacheDownStillSucceeds(t *testing.T) {
	f := newFixture(t)
	caller := callerOf(f.register(t, "alice"))
	idea := f.createIdea(t, caller, "sport")
	f.redis.Close()

	got, err := f.ideas.Vote(context.Background(), idea.ID, "up")
	require.NoError(t, err)
	assert.Equal(t, 1, got.VotesCount)
}
