package model

import (
	"regexp"
	"strings"

	"github-repo-mirror/internal/domain"
)

// User is a mirrored platform account. ID is the platform's identifier and is
// never generated locally.
type User struct {
	ID        int64
	Login     string
	AvatarURL string
}

// loginPattern admits the platform's handle alphabet. Hyphen placement is not
// checked: legacy accounts carry leading, trailing or doubled hyphens, and the
// upstream lookup decides whether such a handle exists.
var loginPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,39}$`)

// ValidLogin reports whether s is safe to send upstream as a handle.
func ValidLogin(s string) bool {
	return len(s) <= 39 && loginPattern.MatchString(s)
}

func NewUser(id int64, login, avatarURL string) (*User, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if strings.TrimSpace(login) == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &User{ID: id, Login: login, AvatarURL: avatarURL}, nil
}

// UserFromExternal converts a fetched account into its persisted form.
func UserFromExternal(ext *ExternalUser) (*User, error) {
	if ext == nil {
		return nil, domain.ErrInvalidArgument
	}
	return NewUser(ext.ID, ext.Login, ext.AvatarURL)
}

// Refresh overwrites the mutable fields with freshly fetched values.
func (u *User) Refresh(ext *ExternalUser) {
	u.Login = ext.Login
	u.AvatarURL = ext.AvatarURL
}

func (u *User) IsZero() bool { return u == nil || u.ID == 0 }
