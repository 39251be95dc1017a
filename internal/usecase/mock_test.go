//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github-repo-mirror/internal/domain"
	"github-repo-mirror/internal/domain/model"
	"github-repo-mirror/internal/domain/ports/adapter"
	"github-repo-mirror/internal/domain/ports/repository"
)

// =============================
// Adapters
// =============================

// ---- Mock DirectoryClient ----

type MockDirectory struct {
	mu    sync.Mutex
	Users map[string]*model.ExternalUser
	Repos map[string][]*model.ExternalRepository
	Calls []string

	FetchUserFunc            func(ctx context.Context, username string) (*model.ExternalUser, error)
	FetchAllRepositoriesFunc func(ctx context.Context, username string) ([]*model.ExternalRepository, error)
}

var _ adapter.DirectoryClient = (*MockDirectory)(nil)

func NewMockDirectory() *MockDirectory {
	return &MockDirectory{Users: map[string]*model.ExternalUser{}, Repos: map[string][]*model.ExternalRepository{}}
}

func (m *MockDirectory) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

func (m *MockDirectory) FetchUser(ctx context.Context, username string) (*model.ExternalUser, error) {
	m.record("FetchUser:" + username)
	if m.FetchUserFunc != nil {
		return m.FetchUserFunc(ctx, username)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[username]
	if !ok {
		return nil, domain.E(domain.ErrNotFound, "GitHub user not found", nil)
	}
	cp := *u
	return &cp, nil
}

func (m *MockDirectory) FetchAllRepositories(ctx context.Context, username string) ([]*model.ExternalRepository, error) {
	m.record("FetchAllRepositories:" + username)
	if m.FetchAllRepositoriesFunc != nil {
		return m.FetchAllRepositoriesFunc(ctx, username)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Repos[username], nil
}

// ---- In-memory Locker ----

type MockLocker struct {
	mu       sync.Mutex
	held     map[string]string
	ErrOn    map[string]error
	Acquired []string
	Released []string
}

var _ adapter.Locker = (*MockLocker)(nil)

func NewMockLocker() *MockLocker {
	return &MockLocker{held: map[string]string{}, ErrOn: map[string]error{}}
}

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err, bad := l.ErrOn[key]; bad {
		return "", err
	}
	if tok, ok := l.held[key]; ok && tok != "" {
		return "", domain.ErrLockNotAcquired
	}
	tok := uuid.NewString()
	l.held[key] = tok
	l.Acquired = append(l.Acquired, key)
	return tok, nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		l.Released = append(l.Released, key)
		return nil
	}
	return errors.New("unlock token mismatch")
}

// Hold marks key as taken by someone else.
func (l *MockLocker) Hold(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held[key] = "foreign"
}

// =============================
// Repositories
// =============================

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu   sync.Mutex
	byID map[int64]*model.User
	Ops  []string

	SaveFunc        func(ctx context.Context, tx repository.Tx, u *model.User) error
	FindByIDFunc    func(ctx context.Context, tx repository.Tx, id int64) (*model.User, error)
	FindByLoginFunc func(ctx context.Context, tx repository.Tx, login string) (*model.User, error)
	CountUsersFunc  func(ctx context.Context, tx repository.Tx) (int, error)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{byID: map[int64]*model.User{}}
}

func (r *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	r.mu.Lock()
	r.Ops = append(r.Ops, "Save")
	r.mu.Unlock()
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, u)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, other := range r.byID {
		if id != u.ID && strings.EqualFold(other.Login, u.Login) {
			return domain.ErrAlreadyExists
		}
	}
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.User, error) {
	r.mu.Lock()
	r.Ops = append(r.Ops, "FindByID")
	r.mu.Unlock()
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MockUserRepo) FindByLogin(ctx context.Context, tx repository.Tx, login string) (*model.User, error) {
	if r.FindByLoginFunc != nil {
		return r.FindByLoginFunc(ctx, tx, login)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if strings.EqualFold(u.Login, login) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	if r.CountUsersFunc != nil {
		return r.CountUsersFunc(ctx, tx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID), nil
}

// ---- Mock RepoRepository ----

type MockRepoRepo struct {
	mu   sync.Mutex
	rows map[int64]*model.Repository
	Ops  []string

	DeleteByUserIDFunc func(ctx context.Context, tx repository.Tx, userID int64) (int64, error)
	SaveBatchFunc      func(ctx context.Context, tx repository.Tx, repos []*model.Repository) error
	ListByUserIDFunc   func(ctx context.Context, tx repository.Tx, userID int64) ([]*model.Repository, error)
	SearchFunc         func(ctx context.Context, tx repository.Tx, keywords string) ([]*model.Repository, error)
}

var _ repository.RepoRepository = (*MockRepoRepo)(nil)

func NewMockRepoRepo() *MockRepoRepo {
	return &MockRepoRepo{rows: map[int64]*model.Repository{}}
}

func (r *MockRepoRepo) op(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Ops = append(r.Ops, name)
}

func (r *MockRepoRepo) DeleteByUserID(ctx context.Context, tx repository.Tx, userID int64) (int64, error) {
	r.op("DeleteByUserID")
	if r.DeleteByUserIDFunc != nil {
		return r.DeleteByUserIDFunc(ctx, tx, userID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, rp := range r.rows {
		if rp.UserID == userID {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

func (r *MockRepoRepo) SaveBatch(ctx context.Context, tx repository.Tx, repos []*model.Repository) error {
	r.op("SaveBatch")
	if r.SaveBatchFunc != nil {
		return r.SaveBatchFunc(ctx, tx, repos)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rp := range repos {
		cp := *rp
		r.rows[rp.ID] = &cp
	}
	return nil
}

func (r *MockRepoRepo) ListByUserID(ctx context.Context, tx repository.Tx, userID int64) ([]*model.Repository, error) {
	if r.ListByUserIDFunc != nil {
		return r.ListByUserIDFunc(ctx, tx, userID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Repository
	for _, rp := range r.rows {
		if rp.UserID == userID {
			cp := *rp
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MockRepoRepo) Search(ctx context.Context, tx repository.Tx, keywords string) ([]*model.Repository, error) {
	if r.SearchFunc != nil {
		return r.SearchFunc(ctx, tx, keywords)
	}
	return nil, nil
}

// ---- Mock StatisticsRepository ----

type MockStatsRepo struct {
	CountReposFunc      func(ctx context.Context, tx repository.Tx, scope model.StatsScope) (int, error)
	LanguageCountsFunc  func(ctx context.Context, tx repository.Tx, scope model.StatsScope, limit int) ([]model.LanguageCount, error)
	TopUsersByReposFunc func(ctx context.Context, tx repository.Tx, limit int) ([]model.UserRepoCount, error)
	MonthlyTimelineFunc func(ctx context.Context, tx repository.Tx, scope model.StatsScope) ([]model.MonthCount, error)
}

var _ repository.StatisticsRepository = (*MockStatsRepo)(nil)

func (m *MockStatsRepo) CountRepos(ctx context.Context, tx repository.Tx, scope model.StatsScope) (int, error) {
	if m.CountReposFunc != nil {
		return m.CountReposFunc(ctx, tx, scope)
	}
	return 0, nil
}

func (m *MockStatsRepo) LanguageCounts(ctx context.Context, tx repository.Tx, scope model.StatsScope, limit int) ([]model.LanguageCount, error) {
	if m.LanguageCountsFunc != nil {
		return m.LanguageCountsFunc(ctx, tx, scope, limit)
	}
	return nil, nil
}

func (m *MockStatsRepo) TopUsersByRepos(ctx context.Context, tx repository.Tx, limit int) ([]model.UserRepoCount, error) {
	if m.TopUsersByReposFunc != nil {
		return m.TopUsersByReposFunc(ctx, tx, limit)
	}
	return nil, nil
}

func (m *MockStatsRepo) MonthlyTimeline(ctx context.Context, tx repository.Tx, scope model.StatsScope) ([]model.MonthCount, error) {
	if m.MonthlyTimelineFunc != nil {
		return m.MonthlyTimelineFunc(ctx, tx, scope)
	}
	return nil, nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	mu    sync.Mutex
	Calls int
	Opts  []pgx.TxOptions

	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately with NoTX unless WithTxFunc is set.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	m.Calls++
	m.Opts = append(m.Opts, txOpt)
	m.mu.Unlock()
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func strPtr(s string) *string { return &s }
