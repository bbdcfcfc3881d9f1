package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/aic-factcheck/factsumm/internal/cache"
	"github.com/aic-factcheck/factsumm/internal/model"
	"github.com/aic-factcheck/factsumm/internal/util"
	"github.com/aic-factcheck/factsumm/internal/worker"
)

// Fetcher retrieves source documents by URL and reduces them to visible
// text. Fetches honor robots.txt, are rate limited per host and cached by
// final URL.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	store      cache.Cache
	cacheTTL   time.Duration
}

// NewFetcher creates a fetcher from configuration. store may be nil to
// disable caching.
func NewFetcher(cfg *model.Config, store cache.Cache) *Fetcher {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   cfg.HTTP.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.HTTP.UserAgent,
		maxBytes:  cfg.HTTP.MaxBodyBytes,
		robots:    util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout),
		limiter:   worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.Burst),
		store:     store,
		cacheTTL:  cfg.Cache.DiskTTL,
	}
}

// FetchResult holds the extracted text and fetch metadata.
type FetchResult struct {
	Text     string
	Subject  string
	FinalURL string
	Cached   bool
}

// FetchText retrieves the URL and returns its visible text. Disallowed
// URLs fail rather than being fetched anyway.
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.store != nil {
		if data, ok := f.store.Get(cache.Key("doc:" + rawURL)); ok {
			return &FetchResult{
				Text:     string(data),
				Subject:  extractSubject(rawURL),
				FinalURL: rawURL,
				Cached:   true,
			}, nil
		}
	}

	allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("robots check: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("fetch disallowed by robots.txt: %s", rawURL)
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	finalURL := resp.Request.URL.String()

	text := string(body)
	if isHTML(resp.Header.Get("Content-Type")) {
		doc, err := html.Parse(strings.NewReader(text))
		if err != nil {
			return nil, fmt.Errorf("parse HTML: %w", err)
		}
		text = extractVisibleText(doc)
	}
	text = strings.TrimSpace(text)

	if f.store != nil {
		_ = f.store.Set(cache.Key("doc:"+rawURL), []byte(text), f.cacheTTL)
	}

	return &FetchResult{
		Text:     text,
		Subject:  extractSubject(finalURL),
		FinalURL: finalURL,
	}, nil
}

func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	return strings.Contains(contentType, "text/html") || strings.Contains(contentType, "application/xhtml")
}

// extractVisibleText collects text nodes, skipping non-content tags.
func extractVisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return strings.TrimSpace(buf.String())
}

// extractSubject derives a readable subject from the URL's last path
// segment.
func extractSubject(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return parsed.Host
	}

	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]
	last = strings.ReplaceAll(last, "_", " ")
	last = strings.ReplaceAll(last, "-", " ")
	return last
}
