package util

import (
	"net/http"
	"testing"
)

func mustRequest(t *testing.T, rawURL string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	return req
}

func TestNewProxyFuncSelectsByScheme(t *testing.T) {
	proxy := NewProxyFunc("http://plain-proxy:3128", "http://tls-proxy:3128", "")

	got, err := proxy(mustRequest(t, "http://example.com/"))
	if err != nil {
		t.Fatalf("proxy lookup failed: %v", err)
	}
	if got == nil || got.Host != "plain-proxy:3128" {
		t.Errorf("http request: got %v, want plain-proxy:3128", got)
	}

	got, err = proxy(mustRequest(t, "https://example.com/"))
	if err != nil {
		t.Fatalf("proxy lookup failed: %v", err)
	}
	if got == nil || got.Host != "tls-proxy:3128" {
		t.Errorf("https request: got %v, want tls-proxy:3128", got)
	}
}

func TestNewProxyFuncHonorsNoProxy(t *testing.T) {
	proxy := NewProxyFunc("http://plain-proxy:3128", "http://tls-proxy:3128", "internal.example.com,.corp.example.org")

	tests := []struct {
		url    string
		direct bool
	}{
		{"http://internal.example.com/page", true},
		{"https://internal.example.com/page", true},
		{"http://svc.corp.example.org/", true},
		{"http://external.example.net/", false},
	}
	for _, tt := range tests {
		got, err := proxy(mustRequest(t, tt.url))
		if err != nil {
			t.Fatalf("proxy lookup for %s failed: %v", tt.url, err)
		}
		if tt.direct && got != nil {
			t.Errorf("%s: expected direct connection, got proxy %v", tt.url, got)
		}
		if !tt.direct && got == nil {
			t.Errorf("%s: expected a proxy, got direct connection", tt.url)
		}
	}
}

func TestNewProxyFuncNoProxyOnly(t *testing.T) {
	// Exemptions alone still produce a configured selector rather than
	// the environment fallback.
	proxy := NewProxyFunc("", "", "example.com")

	got, err := proxy(mustRequest(t, "http://example.com/"))
	if err != nil {
		t.Fatalf("proxy lookup failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected direct connection, got %v", got)
	}
}

func TestNewProxyFuncEmptyFallsBackToEnvironment(t *testing.T) {
	proxy := NewProxyFunc("", "", "")
	if proxy == nil {
		t.Fatal("expected the environment-based selector")
	}
}
