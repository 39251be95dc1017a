package github

import (
	"time"

	"github-repo-mirror/internal/domain/model"
)

// Wire shapes of the REST v3 payloads. Only the fields the mirror stores are decoded.

type userDTO struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

type repoDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	HTMLURL     string    `json:"html_url"`
	Language    *string   `json:"language"`
	CreatedAt   time.Time `json:"created_at"`
	Owner       userDTO   `json:"owner"`
}

func (u userDTO) toModel() model.ExternalUser {
	return model.ExternalUser{ID: u.ID, Login: u.Login, AvatarURL: u.AvatarURL}
}

func (r repoDTO) toModel() *model.ExternalRepository {
	return &model.ExternalRepository{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		HTMLURL:     r.HTMLURL,
		Language:    r.Language,
		CreatedAt:   r.CreatedAt,
		Owner:       r.Owner.toModel(),
	}
}
