package repository

import (
	"context"

	"github-repo-mirror/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	// Save inserts the user or updates login/avatar of the row with the same ID.
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id int64) (*model.User, error)
	// FindByLogin matches case-insensitively.
	FindByLogin(ctx context.Context, tx Tx, login string) (*model.User, error)
	CountUsers(ctx context.Context, tx Tx) (int, error)
}
