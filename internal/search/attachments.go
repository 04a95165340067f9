package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/midl-xyz/triage/internal/logging"
)

var (
	// Tracker-hosted "user attachment" links.
	userAttachmentRe = regexp.MustCompile(`https://github\.com/user-attachments/assets/[^\s)]+`)

	// Repository "files" links: https://github.com/<owner>/<repo>/files/<id>/<name>.
	repoFilesRe = regexp.MustCompile(`https://github\.com/[^/\s]+/[^/\s]+/files/[^\s)]+`)
)

// FetchFunc retrieves the body of a URL. A non-2xx response must be returned
// as an error. Injectable for testing.
type FetchFunc func(ctx context.Context, url string) (string, error)

// AttachmentFetcher retrieves and caches the content of file links embedded
// in issue bodies. Every fetch is bounded by a hard per-URL timeout; failures
// are logged and skipped, never fatal.
type AttachmentFetcher struct {
	fetch   FetchFunc
	ttl     time.Duration
	timeout time.Duration

	mu    sync.Mutex
	cache map[int]attachmentEntry
	now   func() time.Time
}

type attachmentEntry struct {
	content   string
	timestamp time.Time
}

// NewAttachmentFetcher creates a fetcher. A nil fetch function uses a plain
// HTTP GET; non-positive durations take the defaults (300s TTL, 3s timeout).
func NewAttachmentFetcher(fetch FetchFunc, ttl, timeout time.Duration) *AttachmentFetcher {
	if fetch == nil {
		fetch = httpFetch
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &AttachmentFetcher{
		fetch:   fetch,
		ttl:     ttl,
		timeout: timeout,
		cache:   make(map[int]attachmentEntry),
		now:     time.Now,
	}
}

// ExtractAttachmentURLs returns attachment links found in an issue body, in
// order of appearance per URL shape, duplicates included.
func (f *AttachmentFetcher) ExtractAttachmentURLs(body string) []string {
	if body == "" {
		return nil
	}

	var urls []string
	urls = append(urls, userAttachmentRe.FindAllString(body, -1)...)
	urls = append(urls, repoFilesRe.FindAllString(body, -1)...)
	return urls
}

// FetchAttachmentContent returns the concatenated content of every
// attachment linked from an issue body, joined by blank lines. The result is
// cached per issue. An empty string means "no additional signal", never an
// error: bodies without links, timed-out fetches and non-2xx responses all
// degrade to it.
func (f *AttachmentFetcher) FetchAttachmentContent(ctx context.Context, issueNumber int, body string) string {
	if body == "" {
		return ""
	}

	urls := f.ExtractAttachmentURLs(body)
	if len(urls) == 0 {
		return ""
	}

	f.mu.Lock()
	if entry, ok := f.cache[issueNumber]; ok && f.now().Sub(entry.timestamp) < f.ttl {
		f.mu.Unlock()
		return entry.content
	}
	f.mu.Unlock()

	var contents []string
	for _, url := range urls {
		fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
		text, err := f.fetch(fetchCtx, url)
		cancel()
		if err != nil {
			logging.Warn("attachment fetch failed", "issue_number", issueNumber, "url", url, "error", err)
			continue
		}
		contents = append(contents, text)
	}

	content := strings.Join(contents, "\n\n")

	f.mu.Lock()
	f.cache[issueNumber] = attachmentEntry{content: content, timestamp: f.now()}
	f.mu.Unlock()

	return content
}

// httpFetch is the default FetchFunc: a single GET with the caller's context
// deadline, body returned as text.
func httpFetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
