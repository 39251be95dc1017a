package repository

import (
	"context"

	"github-repo-mirror/internal/domain/model"
)

// StatisticsRepository exposes the aggregate reads behind a StatisticsSnapshot.
// Grouped results are ordered by count descending, then by key ascending.
type StatisticsRepository interface {
	CountRepos(ctx context.Context, tx Tx, scope model.StatsScope) (int, error)
	LanguageCounts(ctx context.Context, tx Tx, scope model.StatsScope, limit int) ([]model.LanguageCount, error)
	TopUsersByRepos(ctx context.Context, tx Tx, limit int) ([]model.UserRepoCount, error)
	// MonthlyTimeline is ordered by month ascending and not truncated.
	MonthlyTimeline(ctx context.Context, tx Tx, scope model.StatsScope) ([]model.MonthCount, error)
}
