// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default tuning values for the search pipeline.
const (
	DefaultDuplicateThreshold = 0.75
	DefaultMaxResults         = 5
	DefaultSearchTimeout      = 5 * time.Second
	DefaultFetchTimeout       = 3 * time.Second
	DefaultCacheTTL           = 5 * time.Minute
	DefaultCacheCapacity      = 100
)

// Config holds all configuration parameters for the application.
type Config struct {
	GitHub GitHubConfig
	Jira   JiraConfig
	Search SearchConfig
}

// GitHubConfig holds GitHub specific configuration.
type GitHubConfig struct {
	Token      string
	Domain     string
	Repository string
}

// JiraConfig holds JIRA specific configuration. Only required when the JIRA
// tracker backend is selected.
type JiraConfig struct {
	URL      string
	Username string
	Token    string
	Project  string
}

// SearchConfig holds tuning knobs for the duplicate-search pipeline.
type SearchConfig struct {
	// DuplicateThreshold is the similarity score at or above which a
	// result is classified as a duplicate.
	DuplicateThreshold float64

	// MaxResults caps how many issues a tracker search returns.
	MaxResults int

	// SearchTimeout bounds a single tracker search call.
	SearchTimeout time.Duration

	// FetchTimeout bounds a single attachment fetch.
	FetchTimeout time.Duration

	// CacheTTL is how long cached search results and attachment content
	// stay fresh.
	CacheTTL time.Duration

	// CacheCapacity caps the number of cached search entries.
	CacheCapacity int

	// ApplicabilityWeights overrides individual scoring weights. Keys:
	// error_message, sdk_version, network, method_name, confirmed_fix.
	// Unset keys keep their defaults.
	ApplicabilityWeights map[string]float64
}

// LoadConfig initializes and loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Map specific environment variables
	v.BindEnv("github.token", "GITHUB_TOKEN")
	v.BindEnv("github.domain", "GITHUB_DOMAIN")
	v.BindEnv("github.repository", "GITHUB_REPOSITORY")
	v.BindEnv("jira.url", "JIRA_URL")
	v.BindEnv("jira.username", "JIRA_USERNAME")
	v.BindEnv("jira.token", "JIRA_TOKEN")
	v.BindEnv("jira.project", "JIRA_PROJECT")
	v.BindEnv("triage.threshold", "TRIAGE_DUPLICATE_THRESHOLD")
	v.BindEnv("triage.max_results", "TRIAGE_MAX_RESULTS")
	v.BindEnv("triage.search_timeout_ms", "TRIAGE_SEARCH_TIMEOUT_MS")
	v.BindEnv("triage.fetch_timeout_ms", "TRIAGE_FETCH_TIMEOUT_MS")
	v.BindEnv("triage.cache_ttl_ms", "TRIAGE_CACHE_TTL_MS")
	v.BindEnv("triage.cache_capacity", "TRIAGE_CACHE_CAPACITY")

	// Applicability weight overrides; only keys whose variable is set end
	// up in the map, so unset criteria keep the scorer's defaults.
	weightVars := map[string]string{
		"error_message": "TRIAGE_WEIGHT_ERROR_MESSAGE",
		"sdk_version":   "TRIAGE_WEIGHT_SDK_VERSION",
		"network":       "TRIAGE_WEIGHT_NETWORK",
		"method_name":   "TRIAGE_WEIGHT_METHOD_NAME",
		"confirmed_fix": "TRIAGE_WEIGHT_CONFIRMED_FIX",
	}
	for key, envVar := range weightVars {
		v.BindEnv("triage.weight."+key, envVar)
	}

	v.SetDefault("triage.threshold", DefaultDuplicateThreshold)
	v.SetDefault("triage.max_results", DefaultMaxResults)
	v.SetDefault("triage.search_timeout_ms", int(DefaultSearchTimeout.Milliseconds()))
	v.SetDefault("triage.fetch_timeout_ms", int(DefaultFetchTimeout.Milliseconds()))
	v.SetDefault("triage.cache_ttl_ms", int(DefaultCacheTTL.Milliseconds()))
	v.SetDefault("triage.cache_capacity", DefaultCacheCapacity)

	config := &Config{
		GitHub: GitHubConfig{
			Token:      v.GetString("github.token"),
			Domain:     v.GetString("github.domain"),
			Repository: v.GetString("github.repository"),
		},
		Jira: JiraConfig{
			URL:      v.GetString("jira.url"),
			Username: v.GetString("jira.username"),
			Token:    v.GetString("jira.token"),
			Project:  v.GetString("jira.project"),
		},
		Search: SearchConfig{
			DuplicateThreshold: v.GetFloat64("triage.threshold"),
			MaxResults:         v.GetInt("triage.max_results"),
			SearchTimeout:      time.Duration(v.GetInt("triage.search_timeout_ms")) * time.Millisecond,
			FetchTimeout:       time.Duration(v.GetInt("triage.fetch_timeout_ms")) * time.Millisecond,
			CacheTTL:           time.Duration(v.GetInt("triage.cache_ttl_ms")) * time.Millisecond,
			CacheCapacity:      v.GetInt("triage.cache_capacity"),
		},
	}

	for key := range weightVars {
		if v.IsSet("triage.weight." + key) {
			if config.Search.ApplicabilityWeights == nil {
				config.Search.ApplicabilityWeights = make(map[string]float64)
			}
			config.Search.ApplicabilityWeights[key] = v.GetFloat64("triage.weight." + key)
		}
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig ensures that all required configuration values are provided.
// Missing tracker credentials fail here, before any request is processed.
func validateConfig(config *Config) error {
	var missingVars []string

	if config.GitHub.Token == "" {
		missingVars = append(missingVars, "GITHUB_TOKEN")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}

// ValidateJiraConfig validates JIRA-specific configuration. Only called when
// the JIRA tracker backend is selected.
func ValidateJiraConfig(config *Config) error {
	var missingVars []string

	if config.Jira.URL == "" {
		missingVars = append(missingVars, "JIRA_URL")
	}
	if config.Jira.Username == "" {
		missingVars = append(missingVars, "JIRA_USERNAME")
	}
	if config.Jira.Token == "" {
		missingVars = append(missingVars, "JIRA_TOKEN")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}
