package jira

import (
	"testing"

	jira "github.com/andygrunwald/go-jira"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midl-xyz/triage/internal/config"
)

func TestNewClientValidation(t *testing.T) {
	testCases := []struct {
		name          string
		jira          config.JiraConfig
		errorContains string
	}{
		{
			name:          "missing url",
			jira:          config.JiraConfig{Username: "user@example.com", Token: "token", Project: "SDK"},
			errorContains: "JIRA_URL",
		},
		{
			name:          "missing token",
			jira:          config.JiraConfig{URL: "https://example.atlassian.net", Username: "user@example.com", Project: "SDK"},
			errorContains: "JIRA_TOKEN",
		},
		{
			name:          "missing project",
			jira:          config.JiraConfig{URL: "https://example.atlassian.net", Username: "user@example.com", Token: "token"},
			errorContains: "JIRA_PROJECT",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewClient(&config.Config{Jira: tc.jira})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errorContains)
		})
	}
}

func TestNewClientSucceedsWithCompleteConfig(t *testing.T) {
	client, err := NewClient(&config.Config{Jira: config.JiraConfig{
		URL:      "https://example.atlassian.net/",
		Username: "user@example.com",
		Token:    "token",
		Project:  "SDK",
	}})
	require.NoError(t, err)
	assert.Equal(t, "SDK", client.project)
	assert.Equal(t, "https://example.atlassian.net", client.baseURL, "trailing slash stripped")
}

func TestConvertIssue(t *testing.T) {
	client := &Client{project: "SDK", baseURL: "https://example.atlassian.net"}

	issue := &jira.Issue{
		Key: "SDK-123",
		Fields: &jira.IssueFields{
			Summary:     "broadcast timeout",
			Description: "it hangs on testnet",
			Reporter:    &jira.User{Name: "reporter"},
			Labels:      []string{"bug"},
			Status: &jira.Status{
				StatusCategory: jira.StatusCategory{Key: "done"},
			},
			Comments: &jira.Comments{
				Comments: []*jira.Comment{{Body: "first"}, {Body: "second"}},
			},
		},
	}

	converted := client.convertIssue(issue)

	assert.Equal(t, 123, converted.Number)
	assert.Equal(t, "broadcast timeout", converted.Title)
	assert.Equal(t, "https://example.atlassian.net/browse/SDK-123", converted.URL)
	assert.Equal(t, "closed", converted.Status)
	assert.Equal(t, "reporter", converted.Author)
	assert.Equal(t, []string{"bug"}, converted.Labels)
	assert.Equal(t, 2, converted.Comments)
	assert.Equal(t, "it hangs on testnet", converted.Body)
}

func TestConvertIssueOpenWithoutStatus(t *testing.T) {
	client := &Client{project: "SDK", baseURL: "https://example.atlassian.net"}

	converted := client.convertIssue(&jira.Issue{
		Key:    "SDK-7",
		Fields: &jira.IssueFields{Summary: "minimal"},
	})

	assert.Equal(t, 7, converted.Number)
	assert.Equal(t, "open", converted.Status)
	assert.Zero(t, converted.Comments)
	assert.Empty(t, converted.Author)
}
