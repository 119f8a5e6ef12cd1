// Package enrichment fetches public data about developers from external hosts.
package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gojektech/heimdall/v6/httpclient"

	"github.com/msomdec/devconnector/internal/domain"
)

const (
	userAgent    = "devconnector"
	reposPerPage = "5"
	reposSort    = "created:asc"
	maxBodyBytes = 1 << 20
)

// GitHubClient lists public repositories through the GitHub REST API.
type GitHubClient struct {
	client  *httpclient.Client
	baseURL string
	token   string
	logger  *slog.Logger
}

// NewGitHubClient creates a client for the API rooted at baseURL. An empty
// token sends unauthenticated requests. Requests are not retried.
func NewGitHubClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *GitHubClient {
	return &GitHubClient{
		client: httpclient.NewClient(
			httpclient.WithHTTPTimeout(timeout),
			httpclient.WithRetryCount(0),
		),
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		logger:  logger,
	}
}

// FetchPublicRepos returns up to five of username's public repositories,
// oldest first.
func (c *GitHubClient) FetchPublicRepos(ctx context.Context, username string) ([]domain.Repo, error) {
	q := url.Values{}
	q.Set("per_page", reposPerPage)
	q.Set("sort", reposSort)
	endpoint := fmt.Sprintf("%s/users/%s/repos?%s", c.baseURL, url.PathEscape(username), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build github request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: github request: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("github non-success", "username", username, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: github returned %d", domain.ErrUpstream, resp.StatusCode)
	}

	var repos []domain.Repo
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&repos); err != nil {
		return nil, fmt.Errorf("%w: decode github response: %w", domain.ErrUpstream, err)
	}
	return repos, nil
}
