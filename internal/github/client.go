// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"

	"github.com/midl-xyz/triage/internal/config"
	"github.com/midl-xyz/triage/internal/logging"
	"github.com/midl-xyz/triage/pkg/models"
)

// Client encapsulates the GitHub API client for a single repository.
type Client struct {
	client *github.Client
	owner  string
	repo   string
}

// NewClient creates a new GitHub API client using configuration from
// environment variables. It initializes the client with the appropriate base
// URL, authenticates with the GitHub API, and tests the connection. It
// returns the configured client or an error if initialization fails.
func NewClient() (*Client, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewClientWithConfig(cfg)
}

// NewClientWithConfig creates a client from an already-loaded configuration.
func NewClientWithConfig(cfg *config.Config) (*Client, error) {
	token := cfg.GitHub.Token
	if token == "" {
		return nil, fmt.Errorf("github token not found in configuration")
	}

	repository := cfg.GitHub.Repository
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid repository format: %q, expected format: owner/repo", repository)
	}
	owner, repo := parts[0], parts[1]

	// Get domain from config, default to github.com
	domain := cfg.GitHub.Domain
	if domain == "" {
		domain = "github.com"
	}

	var apiURL string
	if domain == "github.com" {
		apiURL = "https://api.github.com/"
	} else {
		apiURL = fmt.Sprintf("https://%s/api/v3/", domain)
	}

	logging.Info("github configuration",
		"domain", domain,
		"api_url", apiURL,
		"repository", repository,
		"token", logging.MaskSensitive(token))

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	client := github.NewClient(tc)

	// If not using default GitHub.com, set custom API endpoint
	if domain != "github.com" {
		parsedURL, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url: %w", err)
		}

		client.BaseURL = parsedURL
		client.UploadURL = parsedURL
	}

	// Test the token
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		logging.Error("failed to test github token", "error", err)
		return nil, fmt.Errorf("error testing github token: %w", err)
	}

	logging.Info("github authentication successful",
		"username", user.GetLogin())

	return &Client{client: client, owner: owner, repo: repo}, nil
}

// SearchIssues runs a text query against the repository's issues and returns
// matching issues in the tracker's relevance order. It checks the remaining
// search quota first; an exhausted quota is a hard error.
func (c *Client) SearchIssues(ctx context.Context, query string, limit int, includeClosed bool) ([]models.Issue, error) {
	if err := c.checkRateLimit(ctx); err != nil {
		return nil, err
	}

	stateFilter := " is:open"
	if includeClosed {
		stateFilter = ""
	}
	q := fmt.Sprintf("%s repo:%s/%s is:issue%s", query, c.owner, c.repo, stateFilter)

	perPage := limit
	if perPage <= 0 {
		perPage = 5
	}

	result, _, err := c.client.Search.Issues(ctx, q, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	})
	if err != nil {
		logging.Error("failed to search github issues", "query", query, "error", err)
		return nil, fmt.Errorf("failed to search GitHub issues: %w", err)
	}

	issues := make([]models.Issue, 0, len(result.Issues))
	for _, item := range result.Issues {
		// The search API also returns pull requests
		if item.PullRequestLinks != nil {
			continue
		}
		issues = append(issues, convertIssue(item))
	}

	return issues, nil
}

// GetIssueComments retrieves the comment thread of an issue. The IsAuthor
// flag on the returned comments is always false; callers set it by comparing
// authors against the parent issue.
func (c *Client) GetIssueComments(ctx context.Context, issueNumber int) ([]models.Comment, error) {
	comments, _, err := c.client.Issues.ListComments(ctx, c.owner, c.repo, issueNumber, &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 50},
	})
	if err != nil {
		logging.Error("failed to fetch issue comments", "issue_number", issueNumber, "error", err)
		return nil, fmt.Errorf("failed to fetch comments for issue #%d: %w", issueNumber, err)
	}

	result := make([]models.Comment, 0, len(comments))
	for _, comment := range comments {
		result = append(result, convertComment(comment))
	}

	return result, nil
}

// CreateIssue opens a new issue in the repository.
func (c *Client) CreateIssue(ctx context.Context, title, body string, labels []string) (models.CreatedIssue, error) {
	req := &github.IssueRequest{
		Title: github.String(title),
		Body:  github.String(body),
	}
	if len(labels) > 0 {
		req.Labels = &labels
	}

	issue, _, err := c.client.Issues.Create(ctx, c.owner, c.repo, req)
	if err != nil {
		logging.Error("failed to create issue", "title", title, "error", err)
		return models.CreatedIssue{}, fmt.Errorf("failed to create issue: %w", err)
	}

	logging.Info("created issue", "issue_number", issue.GetNumber(), "url", issue.GetHTMLURL())

	return models.CreatedIssue{
		Number: issue.GetNumber(),
		URL:    issue.GetHTMLURL(),
	}, nil
}

// Repository returns the owner/repo pair the client is bound to.
func (c *Client) Repository() (owner, repo string) {
	return c.owner, c.repo
}

// checkRateLimit raises an error when the search quota is exhausted and logs
// a warning when it is running low.
func (c *Client) checkRateLimit(ctx context.Context) error {
	limits, _, err := c.client.RateLimits(ctx)
	if err != nil {
		return fmt.Errorf("failed to query rate limits: %w", err)
	}

	search := limits.GetSearch()
	if search == nil {
		return nil
	}

	if search.Remaining == 0 {
		return fmt.Errorf("github search rate limit exhausted, resets at %s", search.Reset.Time.Format(time.RFC3339))
	}

	if search.Remaining < 5 {
		logging.Warn("github search rate limit low",
			"remaining", search.Remaining,
			"limit", search.Limit,
			"resets_at", search.Reset.Time.Format(time.RFC3339))
	}

	return nil
}

func convertIssue(issue *github.Issue) models.Issue {
	labelNames := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labelNames = append(labelNames, label.GetName())
	}

	return models.Issue{
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		URL:       issue.GetHTMLURL(),
		Status:    issue.GetState(),
		Labels:    labelNames,
		Comments:  issue.GetComments(),
		CreatedAt: issue.GetCreatedAt(),
		UpdatedAt: issue.GetUpdatedAt(),
		Body:      issue.GetBody(),
		Author:    issue.GetUser().GetLogin(),
	}
}

func convertComment(comment *github.IssueComment) models.Comment {
	var reactions models.Reactions
	if r := comment.GetReactions(); r != nil {
		reactions = models.Reactions{
			TotalCount: r.GetTotalCount(),
			PlusOne:    r.GetPlusOne(),
			Heart:      r.GetHeart(),
		}
	}

	return models.Comment{
		ID:        comment.GetID(),
		Author:    comment.GetUser().GetLogin(),
		Body:      comment.GetBody(),
		CreatedAt: comment.GetCreatedAt(),
		Reactions: reactions,
	}
}
