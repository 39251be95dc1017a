//go:build !integration

package apiv1_test

import (
	"context"
	"time"

	"github-repo-mirror/internal/domain/model"
)

//
// ---------------- use case mocks ----------------
//

type mockSync struct {
	fn    func(ctx context.Context, username string) (*model.SyncResult, error)
	calls int
}

func (m *mockSync) SyncUserRepositories(ctx context.Context, username string) (*model.SyncResult, error) {
	m.calls++
	if m.fn != nil {
		return m.fn(ctx, username)
	}
	return model.NewSyncResult(username, 0), nil
}

type mockStats struct {
	fn func(ctx context.Context, username string, topN int) (*model.StatisticsSnapshot, error)
}

func (m *mockStats) GetStatistics(ctx context.Context, username string, topN int) (*model.StatisticsSnapshot, error) {
	if m.fn != nil {
		return m.fn(ctx, username, topN)
	}
	return model.NewStatisticsSnapshot(model.GlobalScope()), nil
}

type mockCatalog struct {
	listFn   func(ctx context.Context, username string) ([]*model.Repository, error)
	searchFn func(ctx context.Context, keywords string) ([]*model.Repository, error)
}

func (m *mockCatalog) GetUserRepositories(ctx context.Context, username string) ([]*model.Repository, error) {
	if m.listFn != nil {
		return m.listFn(ctx, username)
	}
	return []*model.Repository{}, nil
}

func (m *mockCatalog) SearchRepositories(ctx context.Context, keywords string) ([]*model.Repository, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, keywords)
	}
	return []*model.Repository{}, nil
}

type okPinger struct{ err error }

func (p okPinger) Ping(context.Context) error { return p.err }

type denyAll struct{}

func (denyAll) Allow(context.Context, string, int, time.Duration) (bool, error) { return false, nil }
