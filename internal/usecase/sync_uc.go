package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github-repo-mirror/internal/domain"
	"github-repo-mirror/internal/domain/model"
	"github-repo-mirror/internal/domain/ports/adapter"
	"github-repo-mirror/internal/domain/ports/repository"
	"github-repo-mirror/internal/infra/logging"
	"github-repo-mirror/internal/infra/metrics"
)

// Compile-time check
var _ SyncUseCase = (*syncUC)(nil)

const (
	msgInvalidUsername = "Invalid GitHub username"
	msgSyncInProgress  = "Sync already in progress for user"
	msgBadUpstreamData = "Failed to fetch repositories from GitHub API"

	defaultLockTTL      = 2 * time.Minute
	defaultWriteTimeout = 30 * time.Second
	unlockTimeout       = 5 * time.Second
)

// SyncUseCase replaces the local mirror of one user with the platform's
// current state.
type SyncUseCase interface {
	SyncUserRepositories(ctx context.Context, username string) (*model.SyncResult, error)
}

type SyncOptions struct {
	LockTTL      time.Duration
	WriteTimeout time.Duration
}

type syncUC struct {
	dir    adapter.DirectoryClient
	users  repository.UserRepository
	repos  repository.RepoRepository
	tm     repository.TransactionManager
	locker adapter.Locker
	opts   SyncOptions
	log    *zerolog.Logger
}

func NewSyncUseCase(
	dir adapter.DirectoryClient,
	users repository.UserRepository,
	repos repository.RepoRepository,
	tm repository.TransactionManager,
	locker adapter.Locker,
	opts SyncOptions,
	logger *zerolog.Logger,
) *syncUC {
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	return &syncUC{
		dir:    dir,
		users:  users,
		repos:  repos,
		tm:     tm,
		locker: locker,
		opts:   opts,
		log:    logging.Component(logger, "SyncUC"),
	}
}

func (s *syncUC) SyncUserRepositories(ctx context.Context, username string) (*model.SyncResult, error) {
	defer logging.TraceDuration(s.log, "SyncUC.SyncUserRepositories")()

	start := time.Now()
	ctx = logging.WithRunID(logging.WithUsername(ctx, username), ulid.Make().String())

	res, err := s.run(ctx, username)

	count := 0
	if res != nil {
		count = res.Count
	}
	kind := domain.KindOf(err)
	metrics.ObserveSync(kind.String(), time.Since(start), count)

	log := logging.With(ctx, s.log)
	switch kind {
	case domain.KindOK:
		log.Info().Int("count", count).Dur("took", time.Since(start)).Msg("sync finished")
	case domain.KindError:
		log.Error().Err(err).Msg("sync failed")
	default:
		log.Warn().Err(err).Str("kind", kind.String()).Msg("sync rejected")
	}
	return res, err
}

func (s *syncUC) run(ctx context.Context, username string) (*model.SyncResult, error) {
	if !model.ValidLogin(username) {
		return nil, domain.E(domain.ErrInvalidArgument, msgInvalidUsername, nil)
	}

	// Both fetches complete before anything is locked or written.
	ext, err := s.dir.FetchUser(ctx, username)
	if err != nil {
		return nil, err
	}
	extRepos, err := s.dir.FetchAllRepositories(ctx, username)
	if err != nil {
		return nil, err
	}

	user, err := model.UserFromExternal(ext)
	if err != nil {
		return nil, domain.E(domain.ErrUnavailable, msgBadUpstreamData, fmt.Errorf("user payload: %w", err))
	}
	rows, err := model.RepositoriesFromExternal(extRepos, user.ID)
	if err != nil {
		return nil, domain.E(domain.ErrUnavailable, msgBadUpstreamData, fmt.Errorf("repository payload: %w", err))
	}

	key := fmt.Sprintf("sync:user:%d", user.ID)
	token, err := s.locker.TryLock(ctx, key, s.opts.LockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLockNotAcquired) {
			metrics.IncSyncLock("busy")
			return nil, domain.E(domain.ErrSyncInProgress, msgSyncInProgress, err)
		}
		metrics.IncSyncLock("error")
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}
	metrics.IncSyncLock("acquired")
	defer s.unlock(ctx, key, token)

	// A client disconnect must not abort a commit that is already under way.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.WriteTimeout)
	defer cancel()

	if err := s.replace(wctx, user, ext, rows); err != nil {
		return nil, fmt.Errorf("persist sync of %s: %w", username, err)
	}
	return model.NewSyncResult(username, len(rows)), nil
}

// replace upserts the user and swaps its repository set in one transaction.
func (s *syncUC) replace(ctx context.Context, fresh *model.User, ext *model.ExternalUser, rows []*model.Repository) error {
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	return s.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		created := false
		existing, err := s.users.FindByID(ctx, tx, fresh.ID)
		switch {
		case err == nil:
			existing.Refresh(ext)
			if err := s.users.Save(ctx, tx, existing); err != nil {
				return err
			}
		case errors.Is(err, domain.ErrNotFound):
			if err := s.users.Save(ctx, tx, fresh); err != nil {
				return err
			}
			created = true
		default:
			return err
		}

		deleted, err := s.repos.DeleteByUserID(ctx, tx, fresh.ID)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := s.repos.SaveBatch(ctx, tx, rows); err != nil {
				return err
			}
		}

		logging.With(ctx, s.log).Debug().
			Int64("user_id", fresh.ID).
			Bool("created", created).
			Int64("deleted", deleted).
			Int("inserted", len(rows)).
			Msg("repository set replaced")
		return nil
	})
}

func (s *syncUC) unlock(ctx context.Context, key, token string) {
	uctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), unlockTimeout)
	defer cancel()
	if err := s.locker.Unlock(uctx, key, token); err != nil {
		logging.With(ctx, s.log).Warn().Err(err).Str("key", key).Msg("sync lock release failed")
	}
}
