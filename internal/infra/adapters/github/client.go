// Package github implements the directory client port against the GitHub REST v3 API.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github-repo-mirror/internal/domain"
	"github-repo-mirror/internal/domain/model"
	"github-repo-mirror/internal/domain/ports/adapter"
	"github-repo-mirror/internal/infra/logging"
	"github-repo-mirror/internal/infra/metrics"

	"github.com/rs/zerolog"
)

const (
	// PageSize is the fixed per_page value; a shorter page ends pagination.
	PageSize = 100

	// DefaultTimeout bounds every single request.
	DefaultTimeout = 10 * time.Second

	// maxResponseSize caps one decoded body (a full page is well under 1MB).
	maxResponseSize = 16 << 20

	acceptHeader     = "application/vnd.github.v3+json"
	defaultUserAgent = "github-repo-mirror/1.0"

	msgUserUnavailable  = "Failed to fetch user from GitHub API"
	msgReposUnavailable = "Failed to fetch repositories from GitHub API"
	msgUserNotFound     = "GitHub user not found"
)

// Config is fixed at construction.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

var _ adapter.DirectoryClient = (*Client)(nil)

type Client struct {
	base      *url.URL
	http      *http.Client
	timeout   time.Duration
	userAgent string
	log       *zerolog.Logger
}

// NewClient validates cfg and returns a client. The underlying http.Client has
// no global timeout; each request gets its own deadline of cfg.Timeout.
func NewClient(cfg Config, logger *zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("github: invalid base url %q: %w", cfg.BaseURL, domain.ErrInvalidArgument)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Client{
		base:      base,
		http:      &http.Client{},
		timeout:   timeout,
		userAgent: ua,
		log:       logging.Component(logger, "GitHubClient"),
	}, nil
}

func (c *Client) FetchUser(ctx context.Context, username string) (*model.ExternalUser, error) {
	defer logging.TraceDuration(c.log, "GitHubClient.FetchUser")()

	var dto userDTO
	if err := c.getJSON(ctx, "user", c.endpoint(nil, "users", username), &dto); err != nil {
		return nil, c.classify(ctx, err, msgUserUnavailable)
	}
	u := dto.toModel()
	return &u, nil
}

func (c *Client) FetchAllRepositories(ctx context.Context, username string) ([]*model.ExternalRepository, error) {
	defer logging.TraceDuration(c.log, "GitHubClient.FetchAllRepositories")()

	all := make([]*model.ExternalRepository, 0, PageSize)
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("per_page", strconv.Itoa(PageSize))
		q.Set("page", strconv.Itoa(page))
		q.Set("type", "public")

		var items []repoDTO
		if err := c.getJSON(ctx, "repos", c.endpoint(q, "users", username, "repos"), &items); err != nil {
			// discard whatever pages were already collected
			return nil, c.classify(ctx, err, msgReposUnavailable)
		}
		for _, it := range items {
			all = append(all, it.toModel())
		}
		logging.With(ctx, c.log).Debug().Int("page", page).Int("items", len(items)).Msg("repository page fetched")

		if len(items) < PageSize {
			return all, nil
		}
	}
}

// endpoint joins escaped path segments onto the base URL.
func (c *Client) endpoint(q url.Values, segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u := c.base.JoinPath(escaped...)
	if q != nil {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// statusError is a non-2xx upstream answer.
type statusError struct {
	Code int
	URL  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("github: unexpected status %d for %s", e.Code, e.URL)
}

func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveGitHubRequest(endpoint, 0, time.Since(start))
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.ObserveGitHubRequest(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &statusError{Code: resp.StatusCode, URL: rawURL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxResponseSize {
		return fmt.Errorf("response exceeds %d bytes", maxResponseSize)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// classify folds any failure into NotFound or Unavailable. Only a 404 is
// NotFound; the upstream detail stays as the cause and is logged here.
func (c *Client) classify(ctx context.Context, err error, unavailableMsg string) error {
	var se *statusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return domain.E(domain.ErrNotFound, msgUserNotFound, err)
	}
	logging.With(ctx, c.log).Warn().Err(err).Msg(unavailableMsg)
	return domain.E(domain.ErrUnavailable, unavailableMsg, err)
}
