package repository

import (
	"context"

	"github-repo-mirror/internal/domain/model"
)

// -----------------------------
// Repositories (mirrored source repositories)
// -----------------------------

type RepoRepository interface {
	// DeleteByUserID removes every repository owned by userID and reports how many went.
	DeleteByUserID(ctx context.Context, tx Tx, userID int64) (int64, error)
	// SaveBatch writes all rows in one round trip. An empty slice is a no-op.
	SaveBatch(ctx context.Context, tx Tx, repos []*model.Repository) error
	ListByUserID(ctx context.Context, tx Tx, userID int64) ([]*model.Repository, error)
	// Search matches keywords against name, language and owner login. Results carry Owner.
	Search(ctx context.Context, tx Tx, keywords string) ([]*model.Repository, error)
}
