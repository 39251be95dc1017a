package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github-repo-mirror/internal/domain"
	"github-repo-mirror/internal/domain/model"
	"github-repo-mirror/internal/domain/ports/repository"
	"github-repo-mirror/internal/infra/logging"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

const (
	msgUserNotFound = "User not found"
	msgInvalidTopN  = "topN must be an integer between 1 and 20"
)

type StatsUseCase interface {
	// GetStatistics aggregates over one user's repositories when username is
	// non-blank, otherwise over everything stored.
	GetStatistics(ctx context.Context, username string, topN int) (*model.StatisticsSnapshot, error)
}

type statsUC struct {
	users repository.UserRepository
	stats repository.StatisticsRepository
	tm    repository.TransactionManager

	log *zerolog.Logger
}

func NewStatsUseCase(users repository.UserRepository, stats repository.StatisticsRepository, tm repository.TransactionManager, logger *zerolog.Logger) *statsUC {
	return &statsUC{users: users, stats: stats, tm: tm, log: logging.Component(logger, "StatsUC")}
}

func (s *statsUC) GetStatistics(ctx context.Context, username string, topN int) (*model.StatisticsSnapshot, error) {
	defer logging.TraceDuration(s.log, "StatsUC.GetStatistics")()

	if topN < 1 {
		return nil, domain.E(domain.ErrInvalidArgument, msgInvalidTopN, nil)
	}
	if topN > model.MaxTopN {
		topN = model.MaxTopN
	}
	username = strings.TrimSpace(username)

	var snap *model.StatisticsSnapshot
	// one snapshot, one consistent view
	txOpts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err := s.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		scope := model.GlobalScope()
		if username != "" {
			u, err := s.users.FindByLogin(ctx, tx, username)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return domain.E(domain.ErrNotFound, msgUserNotFound, err)
				}
				return err
			}
			scope = model.UserScope(u.ID)
		}

		out := model.NewStatisticsSnapshot(scope)
		var err error
		if out.TotalRepos, err = s.stats.CountRepos(ctx, tx, scope); err != nil {
			return err
		}
		if out.Languages, err = s.stats.LanguageCounts(ctx, tx, scope, topN); err != nil {
			return err
		}
		if out.TimelineCreatedMonthly, err = s.stats.MonthlyTimeline(ctx, tx, scope); err != nil {
			return err
		}
		if scope.IsGlobal() {
			if out.TotalUsers, err = s.users.CountUsers(ctx, tx); err != nil {
				return err
			}
			if out.TopUsersByRepos, err = s.stats.TopUsersByRepos(ctx, tx, topN); err != nil {
				return err
			}
		}
		snap = out
		return nil
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindError {
			logging.With(ctx, s.log).Error().Err(err).Str("user", username).Msg("statistics query failed")
		}
		return nil, err
	}
	normalizeSnapshot(snap)
	return snap, nil
}

// normalizeSnapshot keeps list fields non-nil for repositories that return nil on empty.
func normalizeSnapshot(s *model.StatisticsSnapshot) {
	if s.Languages == nil {
		s.Languages = []model.LanguageCount{}
	}
	if s.TimelineCreatedMonthly == nil {
		s.TimelineCreatedMonthly = []model.MonthCount{}
	}
	if s.Scope.IsGlobal() && s.TopUsersByRepos == nil {
		s.TopUsersByRepos = []model.UserRepoCount{}
	}
}
