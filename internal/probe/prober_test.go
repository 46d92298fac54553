package probe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// TestNewHTTPProber tests constructor validation.
func TestNewHTTPProber(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		p, err := NewHTTPProber()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.method != http.MethodGet {
			t.Errorf("expected GET, got %s", p.method)
		}
		if p.userAgent != DefaultUserAgent {
			t.Errorf("got user agent %q", p.userAgent)
		}
		if p.maxRedirects != DefaultMaxRedirects {
			t.Errorf("got max redirects %d", p.maxRedirects)
		}
		if p.ProxyAddress() != "" {
			t.Errorf("expected no proxy, got %q", p.ProxyAddress())
		}
	})

	t.Run("valid proxy address", func(t *testing.T) {
		t.Parallel()

		p, err := NewHTTPProber(WithProxy("127.0.0.1:9050"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ProxyAddress() != "127.0.0.1:9050" {
			t.Errorf("got %q", p.ProxyAddress())
		}
	})

	invalidProxies := []string{"127.0.0.1", ":9050", "127.0.0.1:", "127.0.0.1:70000", "127.0.0.1:0"}
	for _, addr := range invalidProxies {
		t.Run("invalid proxy "+addr, func(t *testing.T) {
			t.Parallel()

			_, err := NewHTTPProber(WithProxy(addr))
			if !errors.Is(err, ErrInvalidProxyAddress) {
				t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
			}
		})
	}

	t.Run("method is case-insensitive", func(t *testing.T) {
		t.Parallel()

		p, err := NewHTTPProber(WithMethod("head"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.method != http.MethodHead {
			t.Errorf("got %s", p.method)
		}
	})

	t.Run("unsupported method", func(t *testing.T) {
		t.Parallel()

		_, err := NewHTTPProber(WithMethod("POST"))
		if !errors.Is(err, ErrInvalidMethod) {
			t.Errorf("expected ErrInvalidMethod, got %v", err)
		}
	})
}

// TestHTTPProberProbe tests status codes returned by real HTTP servers.
func TestHTTPProberProbe(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/pixel.gif", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/gif")
		_, _ = w.Write([]byte("GIF89a"))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGone)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/pixel.gif", http.StatusFound)
	})
	mux.HandleFunc("/redirect-to-gone", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/gone", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/big", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 4*bodyDrainLimit)))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	p, err := NewHTTPProber()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(p.Close)

	tests := []struct {
		name string
		path string
		want int
	}{
		{name: "pixel returns 200", path: "/pixel.gif", want: http.StatusOK},
		{name: "410 is returned as-is", path: "/gone", want: http.StatusGone},
		{name: "500 is returned as-is", path: "/broken", want: http.StatusInternalServerError},
		{name: "unknown path is 404", path: "/missing", want: http.StatusNotFound},
		{name: "redirect is followed", path: "/redirect", want: http.StatusOK},
		{name: "redirect to failure reports final status", path: "/redirect-to-gone", want: http.StatusGone},
		{name: "large body is drained", path: "/big", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := p.Probe(context.Background(), server.URL+tt.path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got status %d, expected %d", got, tt.want)
			}
		})
	}
}

// TestHTTPProberRequestShape tests headers and method on the wire.
func TestHTTPProberRequestShape(t *testing.T) {
	t.Parallel()

	type seen struct {
		method, userAgent, partner string
	}
	ch := make(chan seen, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ch <- seen{method: r.Method, userAgent: r.UserAgent(), partner: r.Header.Get("X-Partner")}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	p, err := NewHTTPProber(
		WithMethod(http.MethodHead),
		WithUserAgent("audit-bot/2"),
		WithHeaders(map[string]string{"X-Partner": "acme"}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	code, err := p.Probe(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != http.StatusNoContent {
		t.Errorf("got status %d", code)
	}

	got := <-ch
	if got.method != http.MethodHead {
		t.Errorf("got method %s", got.method)
	}
	if got.userAgent != "audit-bot/2" {
		t.Errorf("got user agent %q", got.userAgent)
	}
	if got.partner != "acme" {
		t.Errorf("got X-Partner %q", got.partner)
	}
}

// TestHTTPProberRedirectLimit tests that redirects stop at the configured limit.
func TestHTTPProberRedirectLimit(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	t.Cleanup(server.Close)

	p, err := NewHTTPProber(WithMaxRedirects(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	code, err := p.Probe(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != http.StatusFound {
		t.Errorf("expected 302, got %d", code)
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 request, got %d", hits.Load())
	}
}

// TestHTTPProberRedirectLoop tests that an endless redirect chain fails
// instead of reporting the last 3xx.
func TestHTTPProberRedirectLoop(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	t.Cleanup(server.Close)

	tests := []struct {
		name    string
		opts    []Option
		maxHops int
	}{
		{name: "default limit", opts: nil, maxHops: DefaultMaxRedirects},
		{name: "custom limit", opts: []Option{WithMaxRedirects(2)}, maxHops: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewHTTPProber(tt.opts...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			t.Cleanup(p.Close)

			before := hits.Load()
			code, err := p.Probe(context.Background(), server.URL+"/loop")
			if !errors.Is(err, ErrTooManyRedirects) {
				t.Fatalf("expected ErrTooManyRedirects, got code=%d err=%v", code, err)
			}
			if got := hits.Load() - before; got != int32(tt.maxHops+1) {
				t.Errorf("expected %d requests, got %d", tt.maxHops+1, got)
			}
		})
	}
}

// TestHTTPProberErrors tests that failures to get a response are errors.
func TestHTTPProberErrors(t *testing.T) {
	t.Parallel()

	p, err := NewHTTPProber()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("deadline exceeded", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(server.Close)
		t.Cleanup(func() { close(release) })

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := p.Probe(ctx, server.URL)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		if _, err := p.Probe(context.Background(), url); err == nil {
			t.Error("expected error for closed server")
		}
	})

	t.Run("malformed URL", func(t *testing.T) {
		t.Parallel()

		if _, err := p.Probe(context.Background(), "http://[::1"); err == nil {
			t.Error("expected error for malformed URL")
		}
	})

	t.Run("missing scheme", func(t *testing.T) {
		t.Parallel()

		if _, err := p.Probe(context.Background(), "math.com"); err == nil {
			t.Error("expected error for URL without scheme")
		}
	})
}

// TestProberFunc tests the function adapter.
func TestProberFunc(t *testing.T) {
	t.Parallel()

	var p Prober = ProberFunc(func(_ context.Context, url string) (int, error) {
		if url == "bad" {
			return 0, errors.New("boom")
		}
		return 204, nil
	})

	if code, err := p.Probe(context.Background(), "ok"); err != nil || code != 204 {
		t.Errorf("got %d, %v", code, err)
	}
	if _, err := p.Probe(context.Background(), "bad"); err == nil {
		t.Error("expected error")
	}
}
