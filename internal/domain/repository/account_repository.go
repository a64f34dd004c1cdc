package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eco_city/internal/common"
	"eco_city/internal/domain/model"
)

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
	FindByID(ctx context.Context, id int64) (*model.Account, error)
	Count(ctx context.Context) (int, error)
}

type pgAccountRepository struct {
	db DBTX
}

func NewPgAccountRepository(db DBTX) AccountRepository {
	return &pgAccountRepository{db: db}
}

const accountColumns = `id, username, email, password_hash, city, is_admin, created_at`

func (r *pgAccountRepository) Create(ctx context.Context, account *model.Account) error {
	query := `INSERT INTO accounts (username, email, password_hash, city, is_admin)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		account.Username, account.Email, account.PasswordHash, account.City, account.IsAdmin,
	).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("account with given username or email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgAccountRepository.Create: %w", err)
	}
	return nil
}

func (r *pgAccountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.findOne(ctx, "FindByEmail", `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
}

func (r *pgAccountRepository) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	return r.findOne(ctx, "FindByUsername", `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
}

func (r *pgAccountRepository) FindByID(ctx context.Context, id int64) (*model.Account, error) {
	return r.findOne(ctx, "FindByID", `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (r *pgAccountRepository) findOne(ctx context.Context, op, query string, arg any) (*model.Account, error) {
	account := &model.Account{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&account.ID, &account.Username, &account.Email, &account.PasswordHash,
		&account.City, &account.IsAdmin, &account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgAccountRepository.%s: %w", op, err)
	}
	return account, nil
}

func (r *pgAccountRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("pgAccountRepository.Count: %w", err)
	}
	return n, nil
}
