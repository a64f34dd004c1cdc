package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"eco_city/internal/common"
	"eco_city/internal/domain/model"
	"eco_city/internal/domain/repository"
)

const (
	maxTitleLength = 200

	DefaultRecentLimit = 3
	MaxRecentLimit     = 20
)

// StatsCache is the read-through store used for aggregate snapshots.
type StatsCache interface {
	Get(ctx context.Context, name string, dest any) error
	Set(ctx context.Context, name string, value any) error
	Invalidate(ctx context.Context, names ...string) error
}

type IdeaService struct {
	ideaRepo repository.IdeaRepository
	cache    StatsCache
	logger   *slog.Logger
}

func NewIdeaService(ideaRepo repository.IdeaRepository, cache StatsCache, logger *slog.Logger) *IdeaService {
	return &IdeaService{ideaRepo: ideaRepo, cache: cache, logger: logger}
}

type CreateIdeaRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// ListIdeasQuery carries raw filter values; empty values are ignored.
type ListIdeasQuery struct {
	Category string
	Status   string
}

func (s *IdeaService) Create(ctx context.Context, caller model.Caller, req CreateIdeaRequest) (*model.Idea, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		return nil, common.Errorf("title and description are required: %w", common.ErrValidation)
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, common.Errorf("title must be at most %d characters: %w", maxTitleLength, common.ErrValidation)
	}
	category, err := model.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}
	if err := validateCoordinate("latitude", req.Latitude, 90); err != nil {
		return nil, err
	}
	if err := validateCoordinate("longitude", req.Longitude, 180); err != nil {
		return nil, err
	}

	idea := &model.Idea{
		Title:       title,
		Description: description,
		Category:    category,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Status:      model.StatusPending,
		VotesCount:  0,
		AuthorID:    caller.AccountID,
	}
	if err := s.ideaRepo.Create(ctx, idea); err != nil {
		return nil, fmt.Errorf("failed to create idea: %w", err)
	}
	s.logger.InfoContext(ctx, "idea created", "idea_id", idea.ID, "author_id", idea.AuthorID, "category", idea.Category)
	s.invalidateStats(ctx)
	return idea, nil
}

func validateCoordinate(name string, value *float64, limit float64) error {
	if value == nil {
		return common.Errorf("%s is required: %w", name, common.ErrValidation)
	}
	v := *value
	if math.IsNaN(v) || math.IsInf(v, 0) || v < -limit || v > limit {
		return common.Errorf("%s must be within [-%g, %g]: %w", name, limit, limit, common.ErrValidation)
	}
	return nil
}

func (s *IdeaService) List(ctx context.Context, q ListIdeasQuery) ([]model.Idea, error) {
	var filter model.IdeaFilter
	if strings.TrimSpace(q.Category) != "" {
		category, err := model.ParseCategory(q.Category)
		if err != nil {
			return nil, err
		}
		filter.Category = category
	}
	if strings.TrimSpace(q.Status) != "" {
		status, err := model.ParseStatus(q.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}
	return s.ideaRepo.List(ctx, filter)
}

// Recent returns the newest ideas first. limit <= 0 selects the home page default.
func (s *IdeaService) Recent(ctx context.Context, limit int) ([]model.Idea, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	return s.ideaRepo.ListRecent(ctx, limit)
}

func (s *IdeaService) Get(ctx context.Context, id int64) (*model.Idea, error) {
	if id <= 0 {
		return nil, common.ErrNotFound
	}
	return s.ideaRepo.FindByID(ctx, id)
}

// Vote is not tied to the voter: repeated calls keep moving the count.
func (s *IdeaService) Vote(ctx context.Context, id int64, rawDirection string) (*model.Idea, error) {
	direction, err := model.ParseVoteDirection(rawDirection)
	if err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, common.ErrNotFound
	}
	idea, err := s.ideaRepo.Vote(ctx, id, direction)
	if err != nil {
		return nil, err
	}
	s.invalidateStats(ctx)
	return idea, nil
}

// The row is already committed, so a cache failure only delays fresh stats until the TTL.
func (s *IdeaService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, statsSummaryKey, statsDashboardKey); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate statistics cache", "err", err)
	}
}
