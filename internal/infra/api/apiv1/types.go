package apiv1

import (
	"time"

	"github-repo-mirror/internal/domain/model"
)

// Wire shapes. Field names are part of the public API.

type SyncResult struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type Owner struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	AvatarURL string `json:"avatarUrl"`
}

type Repository struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	Language    *string `json:"language"`
	CreatedAt   string  `json:"createdAt"`
	UserID      int64   `json:"userId"`
	User        *Owner  `json:"user,omitempty"`
}

type Summary struct {
	TotalRepos int  `json:"total_repos"`
	TotalUsers *int `json:"total_users,omitempty"`
}

type LanguageCount struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

type UserRepoCount struct {
	Login     string `json:"login"`
	RepoCount int    `json:"repo_count"`
}

type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// Statistics omits the user ranking and user total in user scope; in global
// scope an empty ranking renders as [].
type Statistics struct {
	Summary                Summary          `json:"summary"`
	Languages              []LanguageCount  `json:"languages"`
	TopUsersByRepos        *[]UserRepoCount `json:"top_users_by_repos,omitempty"`
	TimelineCreatedMonthly []MonthCount     `json:"timeline_created_monthly"`
}

func toSyncResult(r *model.SyncResult) SyncResult {
	return SyncResult{Message: r.Message, Count: r.Count}
}

func toRepository(r *model.Repository) Repository {
	out := Repository{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		URL:         r.URL,
		Language:    r.Language,
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339),
		UserID:      r.UserID,
	}
	if r.Owner != nil {
		out.User = &Owner{ID: r.Owner.ID, Login: r.Owner.Login, AvatarURL: r.Owner.AvatarURL}
	}
	return out
}

func toRepositories(rs []*model.Repository) []Repository {
	out := make([]Repository, 0, len(rs))
	for _, r := range rs {
		out = append(out, toRepository(r))
	}
	return out
}

func toStatistics(s *model.StatisticsSnapshot) Statistics {
	out := Statistics{
		Summary:                Summary{TotalRepos: s.TotalRepos},
		Languages:              make([]LanguageCount, 0, len(s.Languages)),
		TimelineCreatedMonthly: make([]MonthCount, 0, len(s.TimelineCreatedMonthly)),
	}
	for _, l := range s.Languages {
		out.Languages = append(out.Languages, LanguageCount{Language: l.Language, Count: l.Count})
	}
	for _, m := range s.TimelineCreatedMonthly {
		out.TimelineCreatedMonthly = append(out.TimelineCreatedMonthly, MonthCount{Month: m.Month, Count: m.Count})
	}
	if s.Scope.IsGlobal() {
		total := s.TotalUsers
		out.Summary.TotalUsers = &total
		top := make([]UserRepoCount, 0, len(s.TopUsersByRepos))
		for _, u := range s.TopUsersByRepos {
			top = append(top, UserRepoCount{Login: u.Login, RepoCount: u.RepoCount})
		}
		out.TopUsersByRepos = &top
	}
	return out
}
