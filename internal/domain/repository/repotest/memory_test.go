package repotest

import (
	"context"
	"sync"
	"testing"
	"time"

	"eco_city/internal/common"
	"eco_city/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAuthor(t *testing.T, store *MemoryStore) *model.Account {
	t.Helper()
	account := &model.Account{Username: "alice", Email: "a@x.com", PasswordHash: "h", City: "Рубцовск"}
	require.NoError(t, store.Accounts().Create(context.Background(), account))
	return account
}

func TestMemoryAccounts_Uniqueness(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	seedAuthor(t, store)

	err := store.Accounts().Create(ctx, &model.Account{Username: "alice", Email: "other@x.com"})
	assert.ErrorIs(t, err, common.ErrConflict)
	err = store.Accounts().Create(ctx, &model.Account{Username: "bob", Email: "a@x.com"})
	assert.ErrorIs(t, err, common.ErrConflict)

	n, err := store.Accounts().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = store.Accounts().FindByID(ctx, 42)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryIdeas_CreateRequiresAuthor(t *testing.T) {
	store := NewMemoryStore()
	err := store.Ideas().Create(context.Background(), &model.Idea{
		Title: "x", Category: model.CategoryOther, Status: model.StatusPending, AuthorID: 9,
	})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryIdeas_CreateEnforcesSchemaDomains(t *testing.T) {
	store := NewMemoryStore()
	author := seedAuthor(t, store)
	ctx := context.Background()

	tests := []struct {
		name string
		idea model.Idea
	}{
		{"unknown category", model.Idea{Category: "space", Status: model.StatusPending}},
		{"empty category", model.Idea{Status: model.StatusPending}},
		{"unknown status", model.Idea{Category: model.CategorySport, Status: "archived"}},
		{"negative votes", model.Idea{Category: model.CategorySport, Status: model.StatusPending, VotesCount: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idea := tt.idea
			idea.Title = "x"
			idea.AuthorID = author.ID
			assert.ErrorIs(t, store.Ideas().Create(ctx, &idea), common.ErrValidation)
		})
	}

	n, err := store.Ideas().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryIdeas_ListAndRecent(t *testing.T) {
	store := NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	author := seedAuthor(t, store)
	ctx := context.Background()

	for _, c := range []model.Category{model.CategorySport, model.CategoryEcology, model.CategorySport, model.CategoryOther} {
		idea := &model.Idea{Title: "t", Description: "d", Category: c, Status: model.StatusPending, AuthorID: author.ID}
		require.NoError(t, store.Ideas().Create(ctx, idea))
		assert.Equal(t, "alice", idea.Author)
	}

	sport, err := store.Ideas().List(ctx, model.IdeaFilter{Category: model.CategorySport})
	require.NoError(t, err)
	require.Len(t, sport, 2)
	assert.Equal(t, int64(1), sport[0].ID)
	assert.Equal(t, int64(3), sport[1].ID)

	none, err := store.Ideas().List(ctx, model.IdeaFilter{Status: model.StatusApproved})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	recent, err := store.Ideas().ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, []int64{4, 3, 2}, []int64{recent[0].ID, recent[1].ID, recent[2].ID})
}

func TestMemoryIdeas_VoteFloorAndConcurrency(t *testing.T) {
	store := NewMemoryStore()
	author := seedAuthor(t, store)
	ctx := context.Background()
	idea := &model.Idea{Title: "t", Category: model.CategoryOther, Status: model.StatusPending, AuthorID: author.ID}
	require.NoError(t, store.Ideas().Create(ctx, idea))

	got, err := store.Ideas().Vote(ctx, idea.ID, model.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, 0, got.VotesCount)

	const voters = 50
	var wg sync.WaitGroup
	for range voters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Ideas().Vote(ctx, idea.ID, model.VoteUp)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err = store.Ideas().FindByID(ctx, idea.ID)
	require.NoError(t, err)
	assert.Equal(t, voters, got.VotesCount)

	_, err = store.Ideas().Vote(ctx, 999, model.VoteUp)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
