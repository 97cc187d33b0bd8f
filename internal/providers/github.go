package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v83/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"trustgate/internal/resilience"
	"trustgate/internal/trusterr"
	"trustgate/internal/types"
)

const (
	ghMaxPulls      = 100
	ghMaxReviewScan = 50
)

var ciConfigFiles = map[string]bool{
	".travis.yml":          true,
	".circleci/config.yml": true,
	".gitlab-ci.yml":       true,
	"azure-pipelines.yml":  true,
	"Jenkinsfile":          true,
}

// GitHubClient fetches code repository snapshots. Safe for concurrent use.
type GitHubClient struct {
	client   *github.Client
	limiter  *rate.Limiter
	breaker  *resilience.CircuitBreaker
	retry    resilience.RetryConfig
	observer Observer
}

// GitHubOption configures a GitHubClient.
type GitHubOption func(*GitHubClient)

// WithGitHubObserver reports every API call to the observer.
func WithGitHubObserver(o Observer) GitHubOption {
	return func(g *GitHubClient) {
		g.observer = o
	}
}

// NewGitHubClient creates a client. With an empty token requests go out
// unauthenticated at the much lower anonymous rate limit.
func NewGitHubClient(token string, opts ...GitHubOption) *GitHubClient {
	var httpClient *http.Client
	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), src)
	}
	g := &GitHubClient{
		client:  github.NewClient(httpClient),
		limiter: rate.NewLimiter(rate.Limit(2), 5),
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{}),
		retry:   resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewGitHubClientWithBaseURL is used by tests to point the client at a stub.
func NewGitHubClientWithBaseURL(baseURL string, opts ...GitHubOption) (*GitHubClient, error) {
	c := NewGitHubClient("", opts...)
	client, err := c.client.WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, err
	}
	c.client = client
	return c, nil
}

// Fetch resolves a code repository snapshot: license, readme, contributors,
// recency, file tree, CI presence and merged pull request review coverage.
func (g *GitHubClient) Fetch(ctx context.Context, codeURL, revision string) (*types.CodeInfo, error) {
	owner, repo, err := types.ParseRepoURL(codeURL)
	if err != nil {
		return nil, trusterr.NewNotFound(types.SourceCode, err.Error(), err)
	}

	var repoMeta *github.Repository
	if err := g.call(ctx, "repos.get", func() error {
		var callErr error
		repoMeta, _, callErr = g.client.Repositories.Get(ctx, owner, repo)
		return g.mapError(callErr)
	}); err != nil {
		return nil, err
	}

	info := &types.CodeInfo{FullName: repoMeta.GetFullName()}
	if lic := repoMeta.GetLicense(); lic != nil {
		info.License = lic.GetSPDXID()
	}
	if revision == "" {
		revision = repoMeta.GetDefaultBranch()
	}

	// Secondary endpoints degrade to empty sections rather than failing
	// the fetch. The repository exists; partial metadata is usable.
	info.Readme = g.fetchReadme(ctx, owner, repo)
	info.Contributors = g.fetchContributors(ctx, owner, repo)
	info.LastCommit = g.fetchLastCommit(ctx, owner, repo)
	info.Files, info.HasCI = g.fetchTree(ctx, owner, repo, revision)
	info.Pulls = g.fetchPullStats(ctx, owner, repo)

	return info, nil
}

func (g *GitHubClient) fetchReadme(ctx context.Context, owner, repo string) string {
	var text string
	_ = g.call(ctx, "repos.readme", func() error {
		readme, _, err := g.client.Repositories.GetReadme(ctx, owner, repo, nil)
		if err != nil {
			return g.mapError(err)
		}
		content, err := readme.GetContent()
		if err != nil {
			return err
		}
		text = content
		return nil
	})
	return text
}

func (g *GitHubClient) fetchContributors(ctx context.Context, owner, repo string) []types.Contributor {
	var out []types.Contributor
	_ = g.call(ctx, "repos.contributors", func() error {
		out = out[:0]
		opts := &github.ListContributorsOptions{
			ListOptions: github.ListOptions{PerPage: 100},
		}
		for {
			page, resp, err := g.client.Repositories.ListContributors(ctx, owner, repo, opts)
			if err != nil {
				return g.mapError(err)
			}
			for _, c := range page {
				out = append(out, types.Contributor{
					Login:   c.GetLogin(),
					Commits: c.GetContributions(),
				})
			}
			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
		return nil
	})
	return out
}

func (g *GitHubClient) fetchLastCommit(ctx context.Context, owner, repo string) time.Time {
	var last time.Time
	_ = g.call(ctx, "repos.commits", func() error {
		commits, _, err := g.client.Repositories.ListCommits(ctx, owner, repo, &github.CommitsListOptions{
			ListOptions: github.ListOptions{PerPage: 1},
		})
		if err != nil {
			return g.mapError(err)
		}
		if len(commits) > 0 {
			last = commits[0].GetCommit().GetCommitter().GetDate().Time
		}
		return nil
	})
	return last
}

func (g *GitHubClient) fetchTree(ctx context.Context, owner, repo, ref string) ([]types.FileEntry, bool) {
	var (
		files []types.FileEntry
		hasCI bool
	)
	_ = g.call(ctx, "git.tree", func() error {
		files = files[:0]
		hasCI = false
		tree, _, err := g.client.Git.GetTree(ctx, owner, repo, ref, true)
		if err != nil {
			return g.mapError(err)
		}
		for _, entry := range tree.Entries {
			if entry.GetType() != "blob" {
				continue
			}
			path := entry.GetPath()
			files = append(files, types.FileEntry{Path: path, Size: int64(entry.GetSize())})
			if strings.HasPrefix(path, ".github/workflows/") || ciConfigFiles[path] {
				hasCI = true
			}
		}
		return nil
	})
	return files, hasCI
}

// fetchPullStats walks recently closed pull requests, counting how many of
// the merged ones carry at least one review.
func (g *GitHubClient) fetchPullStats(ctx context.Context, owner, repo string) types.PullStats {
	var stats types.PullStats
	_ = g.call(ctx, "pulls.list", func() error {
		stats = types.PullStats{}
		opts := &github.PullRequestListOptions{
			State:       "closed",
			Sort:        "updated",
			Direction:   "desc",
			ListOptions: github.ListOptions{PerPage: 100},
		}
		pulls, _, err := g.client.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return g.mapError(err)
		}
		scanned := 0
		for _, pr := range pulls {
			if pr.MergedAt == nil {
				continue
			}
			stats.MergedTotal++
			if scanned < ghMaxReviewScan {
				scanned++
				reviews, _, err := g.client.PullRequests.ListReviews(ctx, owner, repo, pr.GetNumber(), &github.ListOptions{PerPage: 1})
				if err == nil && len(reviews) > 0 {
					stats.MergedReviewed++
				}
			}
			if stats.MergedTotal >= ghMaxPulls {
				break
			}
		}
		return nil
	})
	return stats
}

// call wraps an API interaction with the shared rate limiter, circuit
// breaker and retry schedule, reporting the outcome to the observer.
func (g *GitHubClient) call(ctx context.Context, endpoint string, fn func() error) error {
	start := time.Now()
	err := resilience.RetryWithConfig(ctx, g.retry, func() error {
		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}
		return g.breaker.Call(fn)
	})
	observe(g.observer, "github", endpoint, start, err)
	return err
}

func (g *GitHubClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return trusterr.NewRateLimited(types.SourceCode, "GitHub rate limit exceeded", err)
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return trusterr.NewRateLimited(types.SourceCode, "GitHub secondary rate limit hit", err)
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusNotFound:
			return trusterr.NewNotFound(types.SourceCode, "repository not found", err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return trusterr.NewUnauthorized(types.SourceCode, "GitHub rejected credentials", err)
		case http.StatusServiceUnavailable, http.StatusBadGateway:
			return trusterr.NewTimeout(types.SourceCode, fmt.Sprintf("GitHub unavailable (%d)", respErr.Response.StatusCode), err)
		}
	}
	return err
}
