package model

import "time"

// ExternalUser is the account as reported by the source-hosting platform.
// It is transient and only lives for the duration of one sync.
type ExternalUser struct {
	ID        int64
	Login     string
	AvatarURL string
}

// ExternalRepository is one entry of a user's repository listing.
type ExternalRepository struct {
	ID          int64
	Name        string
	Description *string
	HTMLURL     string
	Language    *string
	CreatedAt   time.Time
	Owner       ExternalUser
}
