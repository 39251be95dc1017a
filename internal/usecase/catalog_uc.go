package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github-repo-mirror/internal/domain"
	"github-repo-mirror/internal/domain/model"
	"github-repo-mirror/internal/domain/ports/repository"
	"github-repo-mirror/internal/infra/logging"
)

// Compile-time check
var _ CatalogUseCase = (*catalogUC)(nil)

const msgQueryRequired = "q is required"

// CatalogUseCase serves read-only lookups over the stored mirror.
type CatalogUseCase interface {
	GetUserRepositories(ctx context.Context, username string) ([]*model.Repository, error)
	SearchRepositories(ctx context.Context, keywords string) ([]*model.Repository, error)
}

type catalogUC struct {
	users repository.UserRepository
	repos repository.RepoRepository
	log   *zerolog.Logger
}

func NewCatalogUseCase(users repository.UserRepository, repos repository.RepoRepository, logger *zerolog.Logger) *catalogUC {
	return &catalogUC{users: users, repos: repos, log: logging.Component(logger, "CatalogUC")}
}

func (c *catalogUC) GetUserRepositories(ctx context.Context, username string) ([]*model.Repository, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.GetUserRepositories")()

	u, err := c.users.FindByLogin(ctx, repository.NoTX, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.ErrNotFound, msgUserNotFound, err)
		}
		return nil, err
	}
	out, err := c.repos.ListByUserID(ctx, repository.NoTX, u.ID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*model.Repository{}
	}
	return out, nil
}

func (c *catalogUC) SearchRepositories(ctx context.Context, keywords string) ([]*model.Repository, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.SearchRepositories")()

	keywords = strings.TrimSpace(keywords)
	if keywords == "" {
		return nil, domain.E(domain.ErrInvalidArgument, msgQueryRequired, nil)
	}
	out, err := c.repos.Search(ctx, repository.NoTX, keywords)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*model.Repository{}
	}
	return out, nil
}
