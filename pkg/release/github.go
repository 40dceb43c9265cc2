package release

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/flanksource/bunup/pkg/types"
	"github.com/flanksource/commons/logger"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// GitHubReleases lists published Bun releases through the GitHub REST API
type GitHubReleases struct {
	client      *github.Client
	tokenSource string
}

type GitHubOption func(*githubConfig)

type githubConfig struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// WithToken authenticates API calls, raising the rate limit
func WithToken(token string) GitHubOption {
	return func(c *githubConfig) {
		c.token = token
	}
}

// WithAPIURL points the client at a GitHub Enterprise or test server
func WithAPIURL(baseURL string) GitHubOption {
	return func(c *githubConfig) {
		c.baseURL = baseURL
	}
}

// WithGitHubHTTPClient sets the base client, a token wraps it with oauth2
func WithGitHubHTTPClient(client *http.Client) GitHubOption {
	return func(c *githubConfig) {
		c.httpClient = client
	}
}

// NewGitHubReleases creates a client, resolving a token from GITHUB_TOKEN,
// GH_TOKEN or GITHUB_ACCESS_TOKEN when none is given.
func NewGitHubReleases(opts ...GitHubOption) (*GitHubReleases, error) {
	cfg := &githubConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	tokenSource := "CLI-provided"
	if cfg.token == "" {
		cfg.token, tokenSource = tokenFromEnv("GITHUB_TOKEN", "GH_TOKEN", "GITHUB_ACCESS_TOKEN")
	}

	httpClient := cfg.httpClient
	if cfg.token != "" {
		ctx := context.Background()
		if httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.token})
		httpClient = oauth2.NewClient(ctx, ts)
	} else {
		tokenSource = ""
	}

	client := github.NewClient(httpClient)
	if cfg.baseURL != "" {
		base := cfg.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API url %s: %w", cfg.baseURL, err)
		}
		client.BaseURL = u
	}

	return &GitHubReleases{client: client, tokenSource: tokenSource}, nil
}

func tokenFromEnv(names ...string) (string, string) {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v, name
		}
	}
	return "", ""
}

// TokenSource returns the name of the variable the token came from, or "" when anonymous
func (g *GitHubReleases) TokenSource() string {
	return g.tokenSource
}

// List returns up to limit installable releases, newest first as reported by GitHub.
// Releases whose tag does not carry the bun-v prefix (e.g. "canary") are skipped.
func (g *GitHubReleases) List(ctx context.Context, limit int) ([]types.Release, *types.RateLimit, error) {
	owner, repo := splitRepo(Repo)

	perPage := limit
	if perPage <= 0 || perPage > 100 {
		perPage = 100
	}

	var (
		out       []types.Release
		rateLimit *types.RateLimit
		opts      = &github.ListOptions{PerPage: perPage}
	)
	for {
		releases, resp, err := g.client.Repositories.ListReleases(ctx, owner, repo, opts)
		if resp != nil {
			rateLimit = extractRateLimit(resp)
		}
		if err != nil {
			return nil, rateLimit, fmt.Errorf("failed to list releases for %s: %w", Repo, err)
		}

		for _, r := range releases {
			if rel, ok := toRelease(r); ok {
				out = append(out, rel)
			}
			if limit > 0 && len(out) >= limit {
				return out, rateLimit, nil
			}
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	logger.V(3).Infof("Listed %d releases of %s", len(out), Repo)
	return out, rateLimit, nil
}

// Latest returns the release GitHub marks as latest
func (g *GitHubReleases) Latest(ctx context.Context) (types.Release, error) {
	owner, repo := splitRepo(Repo)
	r, _, err := g.client.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		return types.Release{}, fmt.Errorf("failed to get latest release for %s: %w", Repo, err)
	}
	rel, ok := toRelease(r)
	if !ok {
		return types.Release{}, fmt.Errorf("latest release of %s has unexpected tag %q", Repo, r.GetTagName())
	}
	return rel, nil
}

func toRelease(r *github.RepositoryRelease) (types.Release, bool) {
	tag := r.GetTagName()
	if !strings.HasPrefix(tag, TagPrefix) {
		return types.Release{}, false
	}
	rel := types.Release{
		Tag:        tag,
		Version:    strings.TrimPrefix(tag, TagPrefix),
		Prerelease: r.GetPrerelease(),
		URL:        r.GetHTMLURL(),
	}
	if r.PublishedAt != nil {
		rel.Published = r.PublishedAt.Time
	}
	return rel, true
}

func extractRateLimit(response *github.Response) *types.RateLimit {
	if response == nil || response.Rate.Limit == 0 {
		return nil
	}

	resetTime := response.Rate.Reset.Time
	return &types.RateLimit{
		Remaining: response.Rate.Remaining,
		Total:     response.Rate.Limit,
		ResetTime: &resetTime,
	}
}

func splitRepo(repo string) (string, string) {
	owner, name, _ := strings.Cut(repo, "/")
	return owner, name
}

// WhoAmI reports the token in use and the remaining API rate limit
func (g *GitHubReleases) WhoAmI(ctx context.Context) *types.AuthStatus {
	status := &types.AuthStatus{TokenSource: g.tokenSource}

	if g.tokenSource == "" {
		// anonymous: any call reports the rate limit
		_, rateLimit, err := g.List(ctx, 1)
		status.RateLimit = rateLimit
		if err != nil {
			status.Error = err.Error()
		}
		return status
	}

	user, response, err := g.client.Users.Get(ctx, "")
	if response != nil {
		status.RateLimit = extractRateLimit(response)
	}
	if err != nil {
		status.Error = fmt.Sprintf("failed to get user info: %v", err)
		return status
	}

	status.Authenticated = true
	status.Username = user.GetLogin()
	status.Name = user.GetName()
	return status
}
