package domain

import "context"

// Repo is the public metadata of one source repository.
type Repo struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int    `json:"stargazers_count"`
	Watchers    int    `json:"watchers_count"`
	Forks       int    `json:"forks_count"`
}

// RepoFetcher looks up a user's public repositories on an external host.
// Non-success responses are reported as ErrUpstream.
type RepoFetcher interface {
	FetchPublicRepos(ctx context.Context, username string) ([]Repo, error)
}
