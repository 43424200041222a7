package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"cardseer/internal/cards"
)

// FileSource reads dataset fragments from a local data directory.
type FileSource struct {
	Dir string
}

// FetchPack reads and parses one pack file.
func (s *FileSource) FetchPack(ctx context.Context, key string) (*PackFile, error) {
	file, ok := PackFiles[key]
	if !ok {
		return nil, fmt.Errorf("unknown pack key %q", key)
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, file))
	if err != nil {
		return nil, fmt.Errorf("failed to read pack file: %w", err)
	}
	return parsePack(data, key)
}

// FetchTags reads and parses the tag table.
func (s *FileSource) FetchTags(ctx context.Context) (cards.TagTable, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, TagsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read tag file: %w", err)
	}
	return parseTags(data)
}

const (
	rateLimitDelay = 100 * time.Millisecond
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
)

// HTTPSource fetches dataset fragments from a remote base URL with rate
// limiting and bounded retry.
type HTTPSource struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewHTTPSource creates an HTTP source for the given base URL.
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
	}
}

// FetchPack fetches and parses one pack file.
func (s *HTTPSource) FetchPack(ctx context.Context, key string) (*PackFile, error) {
	file, ok := PackFiles[key]
	if !ok {
		return nil, fmt.Errorf("unknown pack key %q", key)
	}
	data, err := s.get(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pack %s: %w", key, err)
	}
	return parsePack(data, key)
}

// FetchTags fetches and parses the tag table.
func (s *HTTPSource) FetchTags(ctx context.Context) (cards.TagTable, error) {
	data, err := s.get(ctx, TagsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tag file: %w", err)
	}
	return parseTags(data)
}

// get performs a rate-limited GET with retry and exponential backoff.
func (s *HTTPSource) get(ctx context.Context, file string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", s.baseURL, file)

	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			if attempt < maxRetries {
				time.Sleep(backoff)
				backoff = min(backoff*2, maxBackoff)
				continue
			}
			return nil, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				return nil, fmt.Errorf("failed to read response body: %w", readErr)
			}
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
			if attempt < maxRetries {
				time.Sleep(backoff)
				backoff = min(backoff*2, maxBackoff)
				continue
			}
			return nil, lastErr
		default:
			return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
		}
	}

	return nil, lastErr
}
