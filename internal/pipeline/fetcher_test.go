package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aic-factcheck/factsumm/internal/cache"
	"github.com/aic-factcheck/factsumm/internal/model"
)

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = 5 * time.Second
	cfg.Concurrency.RequestsPerSecond = 100
	cfg.Concurrency.Burst = 100
	return cfg
}

func TestFetchTextExtractsVisibleText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, `<html><head><script>var x = 1;</script><style>p{}</style></head>
<body><p>Paris is the capital of France.</p><noscript>enable js</noscript></body></html>`)
	}))
	defer server.Close()

	fetcher := NewFetcher(testConfig(), nil)
	result, err := fetcher.FetchText(context.Background(), server.URL+"/wiki/Paris_France")
	if err != nil {
		t.Fatalf("FetchText failed: %v", err)
	}

	if result.Text != "Paris is the capital of France." {
		t.Errorf("unexpected text: %q", result.Text)
	}
	if strings.Contains(result.Text, "var x") || strings.Contains(result.Text, "enable js") {
		t.Error("script and noscript content should be dropped")
	}
	if result.Subject != "Paris France" {
		t.Errorf("unexpected subject: %q", result.Subject)
	}
}

func TestFetchTextUsesCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, "<html><body>Cached content.</body></html>")
	}))
	defer server.Close()

	store := cache.NewMemoryCache(time.Minute, time.Minute)
	fetcher := NewFetcher(testConfig(), store)

	first, err := fetcher.FetchText(context.Background(), server.URL+"/page")
	if err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	if first.Cached {
		t.Error("first fetch should not be served from cache")
	}

	second, err := fetcher.FetchText(context.Background(), server.URL+"/page")
	if err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}
	if !second.Cached {
		t.Error("second fetch should be served from cache")
	}
	if second.Text != first.Text {
		t.Errorf("cached text %q differs from fetched %q", second.Text, first.Text)
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 origin hit, got %d", hits.Load())
	}
}

func TestFetchTextRespectsRobots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, "<html><body>secret</body></html>")
	}))
	defer server.Close()

	fetcher := NewFetcher(testConfig(), nil)

	if _, err := fetcher.FetchText(context.Background(), server.URL+"/private/page"); err == nil {
		t.Error("disallowed path should not be fetched")
	}
	if _, err := fetcher.FetchText(context.Background(), server.URL+"/public/page"); err != nil {
		t.Errorf("allowed path should be fetched: %v", err)
	}
}

func TestFetchTextRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(testConfig(), nil)
	if _, err := fetcher.FetchText(context.Background(), server.URL+"/missing"); err == nil {
		t.Error("expected an error for a 404 response")
	}
}

func TestFetchTextPlainBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = fmt.Fprint(w, "Just plain text. Two sentences.")
	}))
	defer server.Close()

	fetcher := NewFetcher(testConfig(), nil)
	result, err := fetcher.FetchText(context.Background(), server.URL+"/doc.txt")
	if err != nil {
		t.Fatalf("FetchText failed: %v", err)
	}
	if result.Text != "Just plain text. Two sentences." {
		t.Errorf("unexpected text: %q", result.Text)
	}
}

func TestExtractSubject(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://en.wikipedia.org/wiki/Marie_Curie", "Marie Curie"},
		{"https://example.com/posts/some-long-title", "some long title"},
		{"https://example.com/", "example.com"},
		{"https://example.com", "example.com"},
	}

	for _, tt := range tests {
		if got := extractSubject(tt.url); got != tt.want {
			t.Errorf("extractSubject(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
