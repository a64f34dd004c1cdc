// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"eco_city/internal/common"
	"eco_city/internal/domain/model"
	"eco_city/internal/domain/repository"
)

// MemoryStore is an in-process implementation of both repositories with the
// same uniqueness, domain and atomicity guarantees as the postgres schema.
type MemoryStore struct {
	mu       sync.Mutex
	accounts []model.Account
	ideas    []model.Idea
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Accounts() repository.AccountRepository { return memoryAccounts{s} }
func (s *MemoryStore) Ideas() repository.IdeaRepository       { return memoryIdeas{s} }

type memoryAccounts struct{ s *MemoryStore }

func (m memoryAccounts) Create(_ context.Context, account *model.Account) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, a := range m.s.accounts {
		if a.Username == account.Username || a.Email == account.Email {
			return fmt.Errorf("account with given username or email already exists: %w", common.ErrConflict)
		}
	}
	account.ID = int64(len(m.s.accounts) + 1)
	account.CreatedAt = m.s.now().UTC()
	m.s.accounts = append(m.s.accounts, *account)
	return nil
}

func (m memoryAccounts) find(match func(model.Account) bool) (*model.Account, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, a := range m.s.accounts {
		if match(a) {
			found := a
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m memoryAccounts) FindByEmail(_ context.Context, email string) (*model.Account, error) {
	return m.find(func(a model.Account) bool { return a.Email == email })
}

func (m memoryAccounts) FindByUsername(_ context.Context, username string) (*model.Account, error) {
	return m.find(func(a model.Account) bool { return a.Username == username })
}

func (m memoryAccounts) FindByID(_ context.Context, id int64) (*model.Account, error) {
	return m.find(func(a model.Account) bool { return a.ID == id })
}

func (m memoryAccounts) Count(context.Context) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return len(m.s.accounts), nil
}

type memoryIdeas struct{ s *MemoryStore }

func (m memoryIdeas) usernameLocked(id int64) (string, bool) {
	for _, a := range m.s.accounts {
		if a.ID == id {
			return a.Username, true
		}
	}
	return "", false
}

func (m memoryIdeas) Create(_ context.Context, idea *model.Idea) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if !slices.Contains(model.Categories, idea.Category) || !slices.Contains(model.Statuses, idea.Status) {
		return fmt.Errorf("category %q or status %q violates schema: %w", idea.Category, idea.Status, common.ErrValidation)
	}
	if idea.VotesCount < 0 {
		return fmt.Errorf("votes_count must not be negative: %w", common.ErrValidation)
	}
	author, ok := m.usernameLocked(idea.AuthorID)
	if !ok {
		return fmt.Errorf("author %d does not exist: %w", idea.AuthorID, common.ErrNotFound)
	}
	idea.ID = int64(len(m.s.ideas) + 1)
	idea.Author = author
	idea.CreatedAt = m.s.now().UTC()
	m.s.ideas = append(m.s.ideas, *idea)
	return nil
}

func (m memoryIdeas) FindByID(_ context.Context, id int64) (*model.Idea, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	i, ok := m.indexLocked(id)
	if !ok {
		return nil, common.ErrNotFound
	}
	idea := m.s.ideas[i]
	return &idea, nil
}

func (m memoryIdeas) indexLocked(id int64) (int, bool) {
	if id < 1 || id > int64(len(m.s.ideas)) {
		return 0, false
	}
	return int(id - 1), true
}

func (m memoryIdeas) List(_ context.Context, filter model.IdeaFilter) ([]model.Idea, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	ideas := []model.Idea{}
	for _, idea := range m.s.ideas {
		if filter.Category != "" && idea.Category != filter.Category {
			continue
		}
		if filter.Status != "" && idea.Status != filter.Status {
			continue
		}
		ideas = append(ideas, idea)
	}
	return ideas, nil
}

func (m memoryIdeas) ListRecent(_ context.Context, limit int) ([]model.Idea, error) {
	m.s.mu.Lock()
	ideas := append([]model.Idea(nil), m.s.ideas...)
	m.s.mu.Unlock()

	sort.SliceStable(ideas, func(a, b int) bool {
		if ideas[a].CreatedAt.Equal(ideas[b].CreatedAt) {
			return ideas[a].ID > ideas[b].ID
		}
		return ideas[a].CreatedAt.After(ideas[b].CreatedAt)
	})
	if len(ideas) > limit {
		ideas = ideas[:limit]
	}
	if ideas == nil {
		ideas = []model.Idea{}
	}
	return ideas, nil
}

func (m memoryIdeas) Vote(_ context.Context, id int64, direction model.VoteDirection) (*model.Idea, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	i, ok := m.indexLocked(id)
	if !ok {
		return nil, common.ErrNotFound
	}
	switch direction {
	case model.VoteUp:
		m.s.ideas[i].VotesCount++
	case model.VoteDown:
		if m.s.ideas[i].VotesCount > 0 {
			m.s.ideas[i].VotesCount--
		}
	default:
		return nil, fmt.Errorf("unknown vote direction %q: %w", direction, common.ErrValidation)
	}
	idea := m.s.ideas[i]
	return &idea, nil
}

func (m memoryIdeas) Count(context.Context) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return len(m.s.ideas), nil
}

func (m memoryIdeas) SumVotes(context.Context) (int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	total := 0
	for _, idea := range m.s.ideas {
		total += idea.VotesCount
	}
	return total, nil
}

func (m memoryIdeas) CountByCategory(context.Context) (map[model.Category]int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	counts := map[model.Category]int{}
	for _, idea := range m.s.ideas {
		counts[idea.Category]++
	}
	return counts, nil
}

func (m memoryIdeas) CountByStatus(context.Context) (map[model.IdeaStatus]int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	counts := map[model.IdeaStatus]int{}
	for _, idea := range m.s.ideas {
		counts[idea.Status]++
	}
	return counts, nil
}
