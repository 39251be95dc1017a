package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github-repo-mirror/internal/domain/model"
	"github-repo-mirror/internal/domain/ports/repository"
)

var _ repository.StatisticsRepository = (*StatisticsRepo)(nil)

type StatisticsRepo struct {
	pool *pgxpool.Pool
}

func NewStatisticsRepo(pool *pgxpool.Pool) *StatisticsRepo {
	return &StatisticsRepo{pool: pool}
}

// scopeFilter is the predicate shared by the scoped aggregates. $1 is the
// user id; zero selects every row.
const scopeFilter = `($1::BIGINT = 0 OR user_id = $1::BIGINT)`

func (r *StatisticsRepo) CountRepos(ctx context.Context, tx repository.Tx, scope model.StatsScope) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, `SELECT COUNT(*) FROM repositories WHERE `+scopeFilter+`;`, scope.UserID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count repositories: %w", err)
	}
	return n, nil
}

func (r *StatisticsRepo) LanguageCounts(ctx context.Context, tx repository.Tx, scope model.StatsScope, limit int) ([]model.LanguageCount, error) {
	q := `
SELECT language, COUNT(*) AS cnt
  FROM repositories
 WHERE language IS NOT NULL AND ` + scopeFilter + `
 GROUP BY language
 ORDER BY cnt DESC, language ASC
 LIMIT $2;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, scope.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("language counts: %w", err)
	}
	return collect(rows, "language counts", func(row pgx.Rows) (model.LanguageCount, error) {
		var lc model.LanguageCount
		err := row.Scan(&lc.Language, &lc.Count)
		return lc, err
	})
}

func (r *StatisticsRepo) TopUsersByRepos(ctx context.Context, tx repository.Tx, limit int) ([]model.UserRepoCount, error) {
	const q = `
SELECT u.login, COUNT(r.id) AS repo_count
  FROM repositories r
  JOIN users u ON u.id = r.user_id
 GROUP BY u.login
 ORDER BY repo_count DESC, u.login ASC
 LIMIT $1;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("top users: %w", err)
	}
	return collect(rows, "top users", func(row pgx.Rows) (model.UserRepoCount, error) {
		var uc model.UserRepoCount
		err := row.Scan(&uc.Login, &uc.RepoCount)
		return uc, err
	})
}

func (r *StatisticsRepo) MonthlyTimeline(ctx context.Context, tx repository.Tx, scope model.StatsScope) ([]model.MonthCount, error) {
	q := `
SELECT TO_CHAR(created_at AT TIME ZONE 'UTC', 'YYYY-MM') AS month, COUNT(*) AS cnt
  FROM repositories
 WHERE ` + scopeFilter + `
 GROUP BY month
 ORDER BY month ASC;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, scope.UserID)
	if err != nil {
		return nil, fmt.Errorf("monthly timeline: %w", err)
	}
	return collect(rows, "monthly timeline", func(row pgx.Rows) (model.MonthCount, error) {
		var mc model.MonthCount
		err := row.Scan(&mc.Month, &mc.Count)
		return mc, err
	})
}

// collect drains rows through scan and closes them. The result is never nil.
func collect[T any](rows pgx.Rows, op string, scan func(pgx.Rows) (T, error)) ([]T, error) {
	defer rows.Close()
	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
