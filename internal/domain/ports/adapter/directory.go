package adapter

import (
	"context"

	"github-repo-mirror/internal/domain/model"
)

// DirectoryClient is the hex port for the source-hosting platform.
//
// Errors wrap domain.ErrNotFound when the platform reports the user missing
// and domain.ErrUnavailable for every other failure. Unavailable errors carry
// a fixed public message; the upstream detail is only kept as the cause.
type DirectoryClient interface {
	FetchUser(ctx context.Context, username string) (*model.ExternalUser, error)
	// FetchAllRepositories walks every page until a short page. It is
	// all-or-nothing: a failing page discards what was collected.
	FetchAllRepositories(ctx context.Context, username string) ([]*model.ExternalRepository, error)
}
