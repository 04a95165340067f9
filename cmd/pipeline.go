package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/midl-xyz/triage/internal/config"
	"github.com/midl-xyz/triage/internal/github"
	"github.com/midl-xyz/triage/internal/jira"
	"github.com/midl-xyz/triage/internal/search"
)

// pipeline bundles the wired components a command needs.
type pipeline struct {
	cfg          *config.Config
	tracker      search.Tracker
	orchestrator *search.Orchestrator
	detector     *search.DuplicateDetector
}

// buildPipeline constructs the tracker client and the search pipeline from
// configuration and command flags. Missing tracker credentials fail here,
// before any request is processed.
func buildPipeline(cmd *cobra.Command) (*pipeline, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if repository, _ := cmd.Flags().GetString("repository"); repository != "" {
		cfg.GitHub.Repository = repository
	}

	tracker, owner, repo, err := buildTracker(cmd, cfg)
	if err != nil {
		return nil, err
	}

	cache := search.NewCache(cfg.Search.CacheTTL, cfg.Search.CacheCapacity)
	searcher := search.NewSearcher(tracker, cache, cfg.Search.MaxResults, cfg.Search.SearchTimeout)
	fetcher := search.NewAttachmentFetcher(nil, cfg.Search.CacheTTL, cfg.Search.FetchTimeout)
	detector := search.NewDuplicateDetector(searcher, fetcher, cfg.Search.DuplicateThreshold)
	scorer := search.NewApplicabilityScorer(cfg.Search.ApplicabilityWeights)
	creator := search.NewIssueCreator(tracker, owner, repo, []string{"bug", "auto-triaged"})

	orchestrator := search.NewOrchestrator(tracker, detector, scorer, creator, search.SearchOptions{
		Limit:         cfg.Search.MaxResults,
		IncludeClosed: true,
		Timeout:       cfg.Search.SearchTimeout,
	})

	return &pipeline{
		cfg:          cfg,
		tracker:      tracker,
		orchestrator: orchestrator,
		detector:     detector,
	}, nil
}

// buildTracker selects the tracker backend from the --tracker flag.
func buildTracker(cmd *cobra.Command, cfg *config.Config) (search.Tracker, string, string, error) {
	backend, _ := cmd.Flags().GetString("tracker")

	switch backend {
	case "", "github":
		client, err := github.NewClientWithConfig(cfg)
		if err != nil {
			return nil, "", "", err
		}
		owner, repo := client.Repository()
		return client, owner, repo, nil

	case "jira":
		client, err := jira.NewClient(cfg)
		if err != nil {
			return nil, "", "", err
		}
		parts := strings.SplitN(cfg.GitHub.Repository, "/", 2)
		owner, repo := "", ""
		if len(parts) == 2 {
			owner, repo = parts[0], parts[1]
		}
		return client, owner, repo, nil

	default:
		return nil, "", "", fmt.Errorf("unknown tracker backend: %q (expected 'github' or 'jira')", backend)
	}
}
