package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github-repo-mirror/internal/domain"
	"github-repo-mirror/internal/domain/model"
	"github-repo-mirror/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (id, login, avatar_url)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE
  SET login      = EXCLUDED.login,
      avatar_url = EXCLUDED.avatar_url;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := ex.Exec(ctx, q, u.ID, u.Login, u.AvatarURL); err != nil {
		return mapWriteErr("save user", err)
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.User, error) {
	const q = `SELECT id, login, avatar_url FROM users WHERE id = $1;`
	return r.findOne(ctx, tx, "find user by id", q, id)
}

func (r *UserRepo) FindByLogin(ctx context.Context, tx repository.Tx, login string) (*model.User, error) {
	const q = `SELECT id, login, avatar_url FROM users WHERE LOWER(login) = LOWER($1);`
	return r.findOne(ctx, tx, "find user by login", q, login)
}

func (r *UserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, `SELECT COUNT(*) FROM users;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *UserRepo) findOne(ctx context.Context, tx repository.Tx, op, q string, arg any) (*model.User, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := ex.QueryRow(ctx, q, arg).Scan(&u.ID, &u.Login, &u.AvatarURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}
