package model

import (
	"strings"
	"time"

	"github-repo-mirror/internal/domain"
)

// Repository is a mirrored repository row. The whole set for a user is
// replaced on every sync of that user.
type Repository struct {
	ID          int64
	Name        string
	Description *string
	URL         string
	Language    *string
	CreatedAt   time.Time
	UserID      int64

	// Owner is populated only by queries that join users (search).
	Owner *User
}

// RepositoryFromExternal maps a fetched repository onto its row, owned by userID.
func RepositoryFromExternal(ext *ExternalRepository, userID int64) (*Repository, error) {
	if ext == nil || ext.ID <= 0 || userID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if strings.TrimSpace(ext.Name) == "" || ext.CreatedAt.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	return &Repository{
		ID:          ext.ID,
		Name:        ext.Name,
		Description: ext.Description,
		URL:         ext.HTMLURL,
		Language:    ext.Language,
		CreatedAt:   ext.CreatedAt.UTC(),
		UserID:      userID,
	}, nil
}

// RepositoriesFromExternal maps a whole listing, failing on the first invalid item.
func RepositoriesFromExternal(exts []*ExternalRepository, userID int64) ([]*Repository, error) {
	out := make([]*Repository, 0, len(exts))
	for _, ext := range exts {
		r, err := RepositoryFromExternal(ext, userID)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
