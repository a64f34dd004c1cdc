package model

import (
	"fmt"
	"time"

	"eco_city/internal/common"

	"github.com/gosimple/slug"
)

type Category string
type IdeaStatus string
type VoteDirection string

const (
	CategorySport     Category = "sport"
	CategoryCulture   Category = "culture"
	CategoryEcology   Category = "ecology"
	CategoryGreening  Category = "greening"
	CategorySafety    Category = "safety"
	CategoryTransport Category = "transport"
	CategoryOther     Category = "other"

	StatusPending   IdeaStatus = "pending"
	StatusApproved  IdeaStatus = "approved"
	StatusRejected  IdeaStatus = "rejected"
	StatusCompleted IdeaStatus = "completed"

	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// Categories lists the accepted categories in display order.
var Categories = []Category{
	CategorySport,
	CategoryCulture,
	CategoryEcology,
	CategoryGreening,
	CategorySafety,
	CategoryTransport,
	CategoryOther,
}

var Statuses = []IdeaStatus{
	StatusPending,
	StatusApproved,
	StatusRejected,
	StatusCompleted,
}

// Idea is a geotagged proposal. Author carries the author's username for display.
type Idea struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    Category   `json:"category"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Status      IdeaStatus `json:"status"`
	VotesCount  int        `json:"votes_count"`
	AuthorID    int64      `json:"author_id"`
	Author      string     `json:"author"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IdeaFilter narrows a listing. Empty fields impose no constraint.
type IdeaFilter struct {
	Category Category
	Status   IdeaStatus
}

// categoryLabels maps the Russian labels used by earlier clients and seed
// data onto the category set. Keys are slugged like any other input.
var categoryLabels = func() map[string]Category {
	labels := map[string]Category{
		"спорт":        CategorySport,
		"культура":     CategoryCulture,
		"экология":     CategoryEcology,
		"озеленение":   CategoryGreening,
		"безопасность": CategorySafety,
		"транспорт":    CategoryTransport,
		"другое":       CategoryOther,
	}
	bySlug := make(map[string]Category, len(labels))
	for label, c := range labels {
		bySlug[slug.Make(label)] = c
	}
	return bySlug
}()

// ParseCategory normalises raw input ("Greening ", "ECOLOGY", "Озеленение")
// into a known category.
func ParseCategory(raw string) (Category, error) {
	normalized := slug.Make(raw)
	c := Category(normalized)
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	if c, ok := categoryLabels[normalized]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q: %w", raw, common.ErrValidation)
}

func ParseStatus(raw string) (IdeaStatus, error) {
	s := IdeaStatus(slug.Make(raw))
	for _, known := range Statuses {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown status %q: %w", raw, common.ErrValidation)
}

func ParseVoteDirection(raw string) (VoteDirection, error) {
	switch d := VoteDirection(slug.Make(raw)); d {
	case VoteUp, VoteDown:
		return d, nil
	}
	return "", fmt.Errorf("vote_type must be %q or %q: %w", VoteUp, VoteDown, common.ErrValidation)
}
