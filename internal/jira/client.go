// Package jira provides an alternate tracker backend backed by the JIRA API.
package jira

import (
	"context"
	"fmt"
	"strings"
	"time"

	jira "github.com/andygrunwald/go-jira"

	"github.com/midl-xyz/triage/internal/config"
	"github.com/midl-xyz/triage/internal/logging"
	"github.com/midl-xyz/triage/pkg/models"
)

// Client handles interactions with the JIRA API. It exposes the same tracker
// surface as the GitHub client so the search pipeline can run against either.
type Client struct {
	client  *jira.Client
	project string
	baseURL string
}

// NewClient creates a new JIRA client from configuration. All JIRA settings
// are required; missing ones fail here, before any request is processed.
func NewClient(cfg *config.Config) (*Client, error) {
	if err := config.ValidateJiraConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Jira.Project == "" {
		return nil, fmt.Errorf("missing required environment variables: [JIRA_PROJECT]")
	}

	tp := jira.BasicAuthTransport{
		Username: cfg.Jira.Username,
		Password: cfg.Jira.Token,
	}

	client, err := jira.NewClient(tp.Client(), cfg.Jira.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create JIRA client: %w", err)
	}

	logging.Info("jira configuration",
		"url", cfg.Jira.URL,
		"project", cfg.Jira.Project,
		"token", logging.MaskSensitive(cfg.Jira.Token))

	return &Client{
		client:  client,
		project: cfg.Jira.Project,
		baseURL: strings.TrimRight(cfg.Jira.URL, "/"),
	}, nil
}

// SearchIssues runs a text query against the project's issues via JQL.
func (c *Client) SearchIssues(ctx context.Context, query string, limit int, includeClosed bool) ([]models.Issue, error) {
	stateFilter := " AND statusCategory != Done"
	if includeClosed {
		stateFilter = ""
	}

	// JQL text search; single quotes in the query would break the clause
	sanitized := strings.ReplaceAll(query, "'", " ")
	jql := fmt.Sprintf("project = '%s' AND text ~ '%s'%s ORDER BY updated DESC",
		c.project, sanitized, stateFilter)

	if limit <= 0 {
		limit = 5
	}

	issues, _, err := c.client.Issue.SearchWithContext(ctx, jql, &jira.SearchOptions{MaxResults: limit})
	if err != nil {
		logging.Error("failed to search jira issues", "jql", jql, "error", err)
		return nil, fmt.Errorf("failed to search JIRA issues: %w", err)
	}

	result := make([]models.Issue, 0, len(issues))
	for _, issue := range issues {
		result = append(result, c.convertIssue(&issue))
	}

	return result, nil
}

// GetIssueComments retrieves the comment thread of an issue by its numeric
// id within the project (e.g. 123 for "PROJ-123").
func (c *Client) GetIssueComments(ctx context.Context, issueNumber int) ([]models.Comment, error) {
	key := fmt.Sprintf("%s-%d", c.project, issueNumber)

	issue, _, err := c.client.Issue.GetWithContext(ctx, key, nil)
	if err != nil {
		logging.Error("failed to fetch jira issue", "key", key, "error", err)
		return nil, fmt.Errorf("failed to fetch comments for %s: %w", key, err)
	}

	if issue.Fields == nil || issue.Fields.Comments == nil {
		return nil, nil
	}

	result := make([]models.Comment, 0, len(issue.Fields.Comments.Comments))
	for i, comment := range issue.Fields.Comments.Comments {
		result = append(result, models.Comment{
			ID:     int64(i + 1),
			Author: comment.Author.Name,
			Body:   comment.Body,
		})
	}

	return result, nil
}

// CreateIssue opens a new Bug in the project. JIRA has no free-form labels on
// creation in all setups, so labels are appended to the description instead.
func (c *Client) CreateIssue(ctx context.Context, title, body string, labels []string) (models.CreatedIssue, error) {
	description := body
	if len(labels) > 0 {
		description = fmt.Sprintf("%s\n\n----\nLabels: %s", body, strings.Join(labels, ", "))
	}

	issueFields := &jira.IssueFields{
		Project: jira.Project{
			Key: c.project,
		},
		Summary:     title,
		Description: description,
		Type: jira.IssueType{
			Name: "Bug",
		},
	}

	newIssue, _, err := c.client.Issue.CreateWithContext(ctx, &jira.Issue{Fields: issueFields})
	if err != nil {
		logging.Error("failed to create jira issue", "title", title, "error", err)
		return models.CreatedIssue{}, fmt.Errorf("failed to create JIRA issue: %w", err)
	}

	number := 0
	if parts := strings.SplitN(newIssue.Key, "-", 2); len(parts) == 2 {
		fmt.Sscanf(parts[1], "%d", &number)
	}

	return models.CreatedIssue{
		Number: number,
		URL:    fmt.Sprintf("%s/browse/%s", c.baseURL, newIssue.Key),
	}, nil
}

func (c *Client) convertIssue(issue *jira.Issue) models.Issue {
	m := models.Issue{
		Title: issue.Fields.Summary,
		URL:   fmt.Sprintf("%s/browse/%s", c.baseURL, issue.Key),
		Body:  issue.Fields.Description,
	}

	if parts := strings.SplitN(issue.Key, "-", 2); len(parts) == 2 {
		fmt.Sscanf(parts[1], "%d", &m.Number)
	}

	if issue.Fields.Status != nil && issue.Fields.Status.StatusCategory.Key == "done" {
		m.Status = "closed"
	} else {
		m.Status = "open"
	}

	if issue.Fields.Reporter != nil {
		m.Author = issue.Fields.Reporter.Name
	}

	if issue.Fields.Comments != nil {
		m.Comments = len(issue.Fields.Comments.Comments)
	}

	m.CreatedAt = time.Time(issue.Fields.Created)
	m.UpdatedAt = time.Time(issue.Fields.Updated)

	for _, label := range issue.Fields.Labels {
		m.Labels = append(m.Labels, label)
	}

	return m
}
