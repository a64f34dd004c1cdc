package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eco_city/internal/common"
	"eco_city/internal/domain/model"
)

type IdeaRepository interface {
	Create(ctx context.Context, idea *model.Idea) error
	FindByID(ctx context.Context, id int64) (*model.Idea, error)
	List(ctx context.Context, filter model.IdeaFilter) ([]model.Idea, error)
	ListRecent(ctx context.Context, limit int) ([]model.Idea, error)
	// Vote applies the direction in a single conditional UPDATE and returns the updated row.
	Vote(ctx context.Context, id int64, direction model.VoteDirection) (*model.Idea, error)

	Count(ctx context.Context) (int, error)
	SumVotes(ctx context.Context) (int, error)
	CountByCategory(ctx context.Context) (map[model.Category]int, error)
	CountByStatus(ctx context.Context) (map[model.IdeaStatus]int, error)
}

type pgIdeaRepository struct {
	db DBTX
}

func NewPgIdeaRepository(db DBTX) IdeaRepository {
	return &pgIdeaRepository{db: db}
}

const ideaSelect = `
        SELECT i.id, i.title, i.description, i.category, i.latitude, i.longitude,
               i.status, i.votes_count, i.author_id, a.username, i.created_at
        FROM ideas i
        JOIN accounts a ON a.id = i.author_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdea(row rowScanner) (*model.Idea, error) {
	idea := &model.Idea{}
	err := row.Scan(
		&idea.ID, &idea.Title, &idea.Description, &idea.Category, &idea.Latitude, &idea.Longitude,
		&idea.Status, &idea.VotesCount, &idea.AuthorID, &idea.Author, &idea.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return idea, nil
}

// Create inserts the idea with the status and vote count it carries and fills
// in the generated id, created_at and the author's username.
func (r *pgIdeaRepository) Create(ctx context.Context, idea *model.Idea) error {
	query := `
        WITH inserted AS (
            INSERT INTO ideas (title, description, category, latitude, longitude, status, votes_count, author_id)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
            RETURNING id, author_id, created_at
        )
        SELECT inserted.id, inserted.created_at, a.username
        FROM inserted
        JOIN accounts a ON a.id = inserted.author_id`

	err := r.db.QueryRowContext(ctx, query,
		idea.Title, idea.Description, idea.Category, idea.Latitude, idea.Longitude,
		idea.Status, idea.VotesCount, idea.AuthorID,
	).Scan(&idea.ID, &idea.CreatedAt, &idea.Author)
	if err != nil {
		if common.IsForeignKeyViolation(err) {
			return fmt.Errorf("author %d does not exist: %w", idea.AuthorID, common.ErrNotFound)
		}
		return fmt.Errorf("pgIdeaRepository.Create: %w", err)
	}
	return nil
}

func (r *pgIdeaRepository) FindByID(ctx context.Context, id int64) (*model.Idea, error) {
	idea, err := scanIdea(r.db.QueryRowContext(ctx, ideaSelect+` WHERE i.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgIdeaRepository.FindByID: %w", err)
	}
	return idea, nil
}

func (r *pgIdeaRepository) List(ctx context.Context, filter model.IdeaFilter) ([]model.Idea, error) {
	var query strings.Builder
	query.WriteString(ideaSelect)

	var conditions []string
	var args []interface{}
	argID := 1

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("i.category = $%d", argID))
		args = append(args, filter.Category)
		argID++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("i.status = $%d", argID))
		args = append(args, filter.Status)
		argID++
	}
	if len(conditions) > 0 {
		query.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	query.WriteString(" ORDER BY i.id ASC")

	ideas, err := r.queryIdeas(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("pgIdeaRepository.List: %w", err)
	}
	return ideas, nil
}

func (r *pgIdeaRepository) ListRecent(ctx context.Context, limit int) ([]model.Idea, error) {
	ideas, err := r.queryIdeas(ctx, ideaSelect+` ORDER BY i.created_at DESC, i.id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("pgIdeaRepository.ListRecent: %w", err)
	}
	return ideas, nil
}

func (r *pgIdeaRepository) queryIdeas(ctx context.Context, query string, args ...any) ([]model.Idea, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ideas := []model.Idea{}
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, *idea)
	}
	return ideas, rows.Err()
}

func (r *pgIdeaRepository) Vote(ctx context.Context, id int64, direction model.VoteDirection) (*model.Idea, error) {
	var assignment string
	switch direction {
	case model.VoteUp:
		assignment = "i.votes_count + 1"
	case model.VoteDown:
		assignment = "GREATEST(i.votes_count - 1, 0)"
	default:
		return nil, fmt.Errorf("unknown vote direction %q: %w", direction, common.ErrValidation)
	}

	query := `
        UPDATE ideas AS i
        SET votes_count = ` + assignment + `
        FROM accounts AS a
        WHERE i.id = $1 AND a.id = i.author_id
        RETURNING i.id, i.title, i.description, i.category, i.latitude, i.longitude,
                  i.status, i.votes_count, i.author_id, a.username, i.created_at`

	idea, err := scanIdea(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgIdeaRepository.Vote: %w", err)
	}
	return idea, nil
}

func (r *pgIdeaRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ideas`).Scan(&n); err != nil {
		return 0, fmt.Errorf("pgIdeaRepository.Count: %w", err)
	}
	return n, nil
}

func (r *pgIdeaRepository) SumVotes(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(votes_count), 0) FROM ideas`).Scan(&n); err != nil {
		return 0, fmt.Errorf("pgIdeaRepository.SumVotes: %w", err)
	}
	return n, nil
}

func (r *pgIdeaRepository) CountByCategory(ctx context.Context) (map[model.Category]int, error) {
	counts := map[model.Category]int{}
	err := r.groupCount(ctx, `SELECT category, COUNT(id) FROM ideas GROUP BY category`, func(key string, n int) {
		counts[model.Category(key)] = n
	})
	if err != nil {
		return nil, fmt.Errorf("pgIdeaRepository.CountByCategory: %w", err)
	}
	return counts, nil
}

func (r *pgIdeaRepository) CountByStatus(ctx context.Context) (map[model.IdeaStatus]int, error) {
	counts := map[model.IdeaStatus]int{}
	err := r.groupCount(ctx, `SELECT status, COUNT(id) FROM ideas GROUP BY status`, func(key string, n int) {
		counts[model.IdeaStatus(key)] = n
	})
	if err != nil {
		return nil, fmt.Errorf("pgIdeaRepository.CountByStatus: %w", err)
	}
	return counts, nil
}

func (r *pgIdeaRepository) groupCount(ctx context.Context, query string, put func(key string, n int)) error {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		put(key, n)
	}
	return rows.Err()
}
