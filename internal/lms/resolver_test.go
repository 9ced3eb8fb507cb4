package lms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func probePolicyForTest() Policy {
	p := defaultProbePolicy()
	p.InitialDelay = time.Millisecond
	return p
}

func resolveAgainst(t *testing.T, handler http.Handler) (string, error, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	base, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse test url: %v", err)
	}
	httpc := &http.Client{Timeout: 2 * time.Second}
	path, resolveErr := resolveEndpoint(context.Background(), httpc, base, probePolicyForTest(), zerolog.Nop())
	return path, resolveErr, server
}

func TestResolveEndpoint_FirstMatchWins(t *testing.T) {
	var mu sync.Mutex
	probed := map[string]int{}
	path, err, _ := resolveAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		probed[r.URL.Path]++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	if err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}
	if path != "/jsonrpc.js" {
		t.Fatalf("path = %q, want /jsonrpc.js", path)
	}
	if probed["/rpc/json"] != 0 || probed["/api"] != 0 {
		t.Fatalf("later candidates probed: %v", probed)
	}
}

func TestResolveEndpoint_404MovesToNextCandidate(t *testing.T) {
	var mu sync.Mutex
	probed := map[string]int{}
	path, err, _ := resolveAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		probed[r.URL.Path]++
		mu.Unlock()
		switch r.URL.Path {
		case "/jsonrpc.js":
			http.NotFound(w, r)
		case "/rpc/json":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	if err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}
	if path != "/rpc/json" {
		t.Fatalf("path = %q, want /rpc/json", path)
	}
	// 404 is "wrong path", not transient: exactly one probe, no retries.
	if probed["/jsonrpc.js"] != 1 {
		t.Fatalf("/jsonrpc.js probed %d times, want 1", probed["/jsonrpc.js"])
	}
	if probed["/api"] != 0 {
		t.Fatalf("/api probed after a match: %v", probed)
	}
}

func TestResolveEndpoint_All404s(t *testing.T) {
	_, err, _ := resolveAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	if err == nil {
		t.Fatalf("expected error when every candidate 404s")
	}
	if kind, ok := KindOf(err); !ok || kind != KindConnection {
		t.Fatalf("kind = %v, want connection", err)
	}
	if !strings.Contains(err.Error(), "no valid API endpoint") {
		t.Fatalf("error = %v, want endpoint-specific message", err)
	}
}

func TestResolveEndpoint_MixedFailuresMention404s(t *testing.T) {
	// Some candidates answer 404, others fail outright. The exhaustion
	// message must surface both halves regardless of which came last.
	tests := []struct {
		name     string
		statuses map[string]int
	}{
		{"404 first", map[string]int{
			"/jsonrpc.js": http.StatusNotFound,
			"/rpc/json":   http.StatusInternalServerError,
			"/api":        http.StatusInternalServerError,
		}},
		{"404 last", map[string]int{
			"/jsonrpc.js": http.StatusInternalServerError,
			"/rpc/json":   http.StatusInternalServerError,
			"/api":        http.StatusNotFound,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err, _ := resolveAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/" {
					w.WriteHeader(http.StatusOK)
					return
				}
				w.WriteHeader(tt.statuses[r.URL.Path])
			}))
			if err == nil {
				t.Fatalf("expected error when every candidate fails")
			}
			if kind, _ := KindOf(err); kind != KindConnection {
				t.Fatalf("kind = %v, want connection", err)
			}
			if !strings.Contains(err.Error(), "404") {
				t.Fatalf("error = %v, want mention of the 404 candidates", err)
			}
			if !strings.Contains(err.Error(), "500") {
				t.Fatalf("error = %v, want the non-404 failure detail", err)
			}
		})
	}
}

func TestResolveEndpoint_AuthFailureIsFatal(t *testing.T) {
	var mu sync.Mutex
	probes := 0
	_, err, _ := resolveAgainst(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		mu.Lock()
		probes++
		mu.Unlock()
		w.WriteHeader(http.StatusUnauthorized)
	}))
	if err == nil {
		t.Fatalf("expected error")
	}
	if kind, _ := KindOf(err); kind != KindAuthentication {
		t.Fatalf("kind = %v, want authentication", err)
	}
	if probes != 1 {
		t.Fatalf("candidate probed %d times, want 1 (no retry, no next candidate)", probes)
	}
}

func TestResolveEndpoint_DroppedConnAcceptsCandidate(t *testing.T) {
	// The server answers the base probe, then hijacks and closes candidate
	// probes mid-request so the client sees a dropped connection.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Errorf("response writer does not support hijacking")
			return
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			t.Errorf("hijack: %v", err)
			return
		}
		_ = conn.Close()
	}))
	t.Cleanup(server.Close)

	base, _ := url.Parse(server.URL)
	httpc := &http.Client{Timeout: 2 * time.Second}
	path, err := resolveEndpoint(context.Background(), httpc, base, probePolicyForTest(), zerolog.Nop())
	if err != nil {
		t.Fatalf("resolve returned error: %v, want dropped probe to accept the endpoint", err)
	}
	if path != "/jsonrpc.js" {
		t.Fatalf("path = %q, want first candidate accepted", path)
	}
}

func TestResolveEndpoint_UnreachableHostFailsFast(t *testing.T) {
	base, _ := url.Parse("http://127.0.0.1:1")
	httpc := &http.Client{Timeout: time.Second}

	start := time.Now()
	_, err := resolveEndpoint(context.Background(), httpc, base, probePolicyForTest(), zerolog.Nop())
	if err == nil {
		t.Fatalf("expected error for unreachable host")
	}
	if kind, _ := KindOf(err); kind != KindConnection {
		t.Fatalf("kind = %v, want connection", err)
	}
	if !strings.Contains(err.Error(), "not responding") {
		t.Fatalf("error = %v, want base-probe message", err)
	}
	// The base probe must fail without walking the candidate list.
	if time.Since(start) > 5*time.Second {
		t.Fatalf("resolver spent %v, base probe should fail fast", time.Since(start))
	}
}

func TestParseServerURL(t *testing.T) {
	t.Parallel()

	u, err := parseServerURL("")
	if err != nil {
		t.Fatalf("parseServerURL returned error: %v", err)
	}
	if u.String() != defaultServerURL {
		t.Fatalf("default url = %q, want %q", u.String(), defaultServerURL)
	}

	u, err = parseServerURL("192.168.1.5:9000")
	if err != nil {
		t.Fatalf("parseServerURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "192.168.1.5:9000" {
		t.Fatalf("url = %q", u.String())
	}

	u, err = parseServerURL("http://media.local:9000/some/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseServerURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseServerURL("http://"); err == nil {
		t.Fatalf("missing host should error")
	}
}
