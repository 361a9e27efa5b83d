// Package metadata extracts best-effort page metadata for url resources.
// Fetch never fails: any problem degrades to an empty result.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/logger"
	"github.com/MrSnakeDoc/curator/internal/metrics"
	"github.com/MrSnakeDoc/curator/internal/utils"
	"golang.org/x/net/html"
)

const (
	// ExcerptLimit caps the body excerpt in characters.
	ExcerptLimit = 2000

	// maxBodyBytes bounds how much of a page is parsed.
	maxBodyBytes = 2 << 20

	defaultTimeout      = 5 * time.Second
	defaultMaxRedirects = 5
	defaultUserAgent    = "Mozilla/5.0 (compatible; CuratorBot/1.0)"
)

// Options configures a Fetcher. Zero values pick the defaults.
type Options struct {
	Timeout      time.Duration
	MaxRedirects int
	UserAgent    string

	// Client overrides the HTTP client; its redirect policy is replaced.
	Client *http.Client
}

// Fetcher pulls title, description, preview image and a body excerpt from a page.
type Fetcher struct {
	client    *http.Client
	userAgent string
	log       logger.Logger
	metrics   *metrics.Collector
}

// NewFetcher creates a Fetcher. metrics may be nil.
func NewFetcher(opts Options, log logger.Logger, m *metrics.Collector) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = defaultMaxRedirects
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	client := &http.Client{}
	if opts.Client != nil {
		c := *opts.Client
		client = &c
	}
	client.Timeout = opts.Timeout
	maxRedirects := opts.MaxRedirects
	client.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
		if len(via) > maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}

	return &Fetcher{
		client:    client,
		userAgent: opts.UserAgent,
		log:       log,
		metrics:   m,
	}
}

// Fetch returns whatever metadata could be extracted from rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) domain.FetchedMetadata {
	meta, err := f.fetch(ctx, rawURL)
	switch {
	case err != nil:
		f.log.Warn("metadata fetch failed",
			logger.String("url", rawURL),
			logger.Error(err))
		f.metrics.MetadataFetched("error")
		return domain.FetchedMetadata{}
	case meta.IsEmpty():
		f.metrics.MetadataFetched("empty")
	default:
		f.metrics.MetadataFetched("ok")
	}
	return meta
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (domain.FetchedMetadata, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return domain.FetchedMetadata{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.FetchedMetadata{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.FetchedMetadata{}, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return domain.FetchedMetadata{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.FetchedMetadata{}, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return Extract(doc), nil
}

// ValidateURL accepts absolute http(s) URLs only.
func ValidateURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("URL must be http or https")
	}
	if u.Host == "" {
		return nil, errors.New("URL has no host")
	}
	return u, nil
}
