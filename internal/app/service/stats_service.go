package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"eco_city/internal/domain/model"
	"eco_city/internal/domain/repository"
	"eco_city/internal/platform/cache"
)

const (
	statsSummaryKey   = "summary"
	statsDashboardKey = "dashboard"
)

type StatsService struct {
	accountRepo repository.AccountRepository
	ideaRepo    repository.IdeaRepository
	cache       StatsCache
	logger      *slog.Logger
}

func NewStatsService(
	accountRepo repository.AccountRepository,
	ideaRepo repository.IdeaRepository,
	cache StatsCache,
	logger *slog.Logger,
) *StatsService {
	return &StatsService{accountRepo: accountRepo, ideaRepo: ideaRepo, cache: cache, logger: logger}
}

func (s *StatsService) Summary(ctx context.Context) (*model.Summary, error) {
	var summary model.Summary
	if s.fromCache(ctx, statsSummaryKey, &summary) {
		return &summary, nil
	}

	ideas, err := s.ideaRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count ideas: %w", err)
	}
	users, err := s.accountRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}
	summary = model.Summary{TotalIdeas: ideas, TotalUsers: users}
	s.toCache(ctx, statsSummaryKey, summary)
	return &summary, nil
}

// Dashboard reports every known category and status, including empty ones.
// TotalIdeas is derived from the category counts so the two always agree.
func (s *StatsService) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	var dashboard model.Dashboard
	if s.fromCache(ctx, statsDashboardKey, &dashboard) {
		return &dashboard, nil
	}

	byCategory, err := s.ideaRepo.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to group ideas by category: %w", err)
	}
	byStatus, err := s.ideaRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to group ideas by status: %w", err)
	}
	votes, err := s.ideaRepo.SumVotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum votes: %w", err)
	}
	users, err := s.accountRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}

	dashboard = model.Dashboard{
		TotalUsers: users,
		TotalVotes: votes,
		ByCategory: make(map[model.Category]int, len(model.Categories)),
		ByStatus:   make(map[model.IdeaStatus]int, len(model.Statuses)),
	}
	for _, c := range model.Categories {
		dashboard.ByCategory[c] = 0
	}
	for c, n := range byCategory {
		dashboard.ByCategory[c] = n
		dashboard.TotalIdeas += n
	}
	for _, st := range model.Statuses {
		dashboard.ByStatus[st] = 0
	}
	for st, n := range byStatus {
		dashboard.ByStatus[st] = n
	}

	s.toCache(ctx, statsDashboardKey, dashboard)
	return &dashboard, nil
}

func (s *StatsService) fromCache(ctx context.Context, name string, dest any) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, name, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.WarnContext(ctx, "statistics cache read failed", "key", name, "err", err)
	}
	return false
}

func (s *StatsService) toCache(ctx context.Context, name string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, name, value); err != nil {
		s.logger.WarnContext(ctx, "statistics cache write failed", "key", name, "err", err)
	}
}
