package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github-repo-mirror/internal/domain/model"
	"github-repo-mirror/internal/domain/ports/repository"
)

var _ repository.RepoRepository = (*RepoRepo)(nil)

type RepoRepo struct {
	pool *pgxpool.Pool
}

func NewRepoRepo(pool *pgxpool.Pool) *RepoRepo {
	return &RepoRepo{pool: pool}
}

func (r *RepoRepo) DeleteByUserID(ctx context.Context, tx repository.Tx, userID int64) (int64, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	tag, err := ex.Exec(ctx, `DELETE FROM repositories WHERE user_id = $1;`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete repositories: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SaveBatch upserts on id so a repository that moved between owners is
// re-parented instead of colliding with the previous owner's row.
func (r *RepoRepo) SaveBatch(ctx context.Context, tx repository.Tx, repos []*model.Repository) error {
	if len(repos) == 0 {
		return nil
	}
	const q = `
INSERT INTO repositories (id, name, description, url, language, created_at, user_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
  SET name        = EXCLUDED.name,
      description = EXCLUDED.description,
      url         = EXCLUDED.url,
      language    = EXCLUDED.language,
      created_at  = EXCLUDED.created_at,
      user_id     = EXCLUDED.user_id;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}

	b := &pgx.Batch{}
	for _, rp := range repos {
		b.Queue(q, rp.ID, rp.Name, rp.Description, rp.URL, rp.Language, rp.CreatedAt.UTC(), rp.UserID)
	}
	br := ex.SendBatch(ctx, b)
	for i := range repos {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return mapWriteErr(fmt.Sprintf("save repository %d", repos[i].ID), err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("save repositories: %w", err)
	}
	return nil
}

func (r *RepoRepo) ListByUserID(ctx context.Context, tx repository.Tx, userID int64) ([]*model.Repository, error) {
	const q = `
SELECT id, name, description, url, language, created_at, user_id
  FROM repositories
 WHERE user_id = $1
 ORDER BY created_at DESC, id DESC;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	defer rows.Close()

	out := make([]*model.Repository, 0)
	for rows.Next() {
		var rp model.Repository
		if err := rows.Scan(&rp.ID, &rp.Name, &rp.Description, &rp.URL, &rp.Language, &rp.CreatedAt, &rp.UserID); err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		rp.CreatedAt = rp.CreatedAt.UTC()
		out = append(out, &rp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func (r *RepoRepo) Search(ctx context.Context, tx repository.Tx, keywords string) ([]*model.Repository, error) {
	const q = `
SELECT r.id, r.name, r.description, r.url, r.language, r.created_at, r.user_id,
       u.id, u.login, u.avatar_url
  FROM repositories r
  JOIN users u ON u.id = r.user_id
 WHERE r.name ILIKE $1 ESCAPE '\'
    OR r.language ILIKE $1 ESCAPE '\'
    OR u.login ILIKE $1 ESCAPE '\'
 ORDER BY r.created_at DESC, r.id DESC;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, containsPattern(keywords))
	if err != nil {
		return nil, fmt.Errorf("search repositories: %w", err)
	}
	defer rows.Close()

	out := make([]*model.Repository, 0)
	for rows.Next() {
		var (
			rp    model.Repository
			owner model.User
		)
		if err := rows.Scan(&rp.ID, &rp.Name, &rp.Description, &rp.URL, &rp.Language, &rp.CreatedAt, &rp.UserID,
			&owner.ID, &owner.Login, &owner.AvatarURL); err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		rp.CreatedAt = rp.CreatedAt.UTC()
		rp.Owner = &owner
		out = append(out, &rp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search repositories: %w", err)
	}
	return out, nil
}
