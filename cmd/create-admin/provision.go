package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"eco_city/internal/common"
	"eco_city/internal/common/security"
	"eco_city/internal/domain/model"
	"eco_city/internal/domain/repository"
)

type options struct {
	Username string
	Email    string
	Password string
	City     string
	Seed     bool
}

type result struct {
	Admin        *model.Account
	CreatedAdmin bool
	SeededIdeas  int
}

// demoIdeas are inserted with their final status and vote counts.
var demoIdeas = []model.Idea{
	{
		Title:       "Создание нового парка на Ленина",
		Description: "Предлагаю создать зелёную зону отдыха с детской площадкой и скамейками",
		Category:    model.CategoryGreening,
		Latitude:    51.527623,
		Longitude:   81.217673,
		Status:      model.StatusApproved,
		VotesCount:  15,
	},
	{
		Title:       "Ремонт тротуара на Советской",
		Description: "Тротуар требует срочного ремонта, многие плиты разрушены",
		Category:    model.CategorySafety,
		Latitude:    51.525000,
		Longitude:   81.220000,
		Status:      model.StatusPending,
		VotesCount:  8,
	},
	{
		Title:       "Установка велопарковок в центре",
		Description: "Для развития велодвижения нужны парковки у магазинов и учреждений",
		Category:    model.CategoryTransport,
		Latitude:    51.530000,
		Longitude:   81.215000,
		Status:      model.StatusApproved,
		VotesCount:  12,
	},
}

// provision is idempotent on the username. An existing account with that name
// is reused only if it already is an administrator.
func provision(ctx context.Context, accounts repository.AccountRepository, ideas repository.IdeaRepository, opts options) (*result, error) {
	username := strings.TrimSpace(opts.Username)
	email := strings.TrimSpace(opts.Email)
	if username == "" || email == "" {
		return nil, fmt.Errorf("username and email are required: %w", common.ErrValidation)
	}

	res := &result{}
	admin, err := accounts.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if !admin.IsAdmin {
			return nil, fmt.Errorf("account %q exists and is not an administrator: %w", username, common.ErrConflict)
		}
	case errors.Is(err, common.ErrNotFound):
		if utf8.RuneCountInString(opts.Password) < 6 {
			return nil, fmt.Errorf("password must be at least 6 characters: %w", common.ErrValidation)
		}
		hash, err := security.HashPassword(opts.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		admin = &model.Account{
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			City:         opts.City,
			IsAdmin:      true,
		}
		if err := accounts.Create(ctx, admin); err != nil {
			return nil, fmt.Errorf("failed to create administrator: %w", err)
		}
		res.CreatedAdmin = true
	default:
		return nil, fmt.Errorf("failed to look up %q: %w", username, err)
	}
	res.Admin = admin

	if !opts.Seed {
		return res, nil
	}
	existing, err := ideas.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count ideas: %w", err)
	}
	if existing > 0 {
		return res, nil
	}
	for _, demo := range demoIdeas {
		idea := demo
		idea.AuthorID = admin.ID
		if err := ideas.Create(ctx, &idea); err != nil {
			return nil, fmt.Errorf("failed to seed %q: %w", idea.Title, err)
		}
		res.SeededIdeas++
	}
	return res, nil
}
