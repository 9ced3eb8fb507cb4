package lms

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// endpointCandidates lists the RPC paths server deployments expose, in
// priority order. The first one that answers a probe wins.
var endpointCandidates = []string{
	"/jsonrpc.js", // standard endpoint
	"/rpc/json",   // alternative used by some versions
	"/api",        // another possible endpoint
}

func defaultProbePolicy() Policy {
	return Policy{
		MaxTries:      3,
		InitialDelay:  time.Second,
		BackoffFactor: 2,
		Retryable:     []ErrorKind{KindConnection, KindServerError},
		Fatal:         []ErrorKind{KindAuthentication},
	}
}

// resolveEndpoint discovers which candidate RPC path the server accepts.
//
// A lightweight HEAD probe against the base URL runs first so an unreachable
// host fails in one round trip instead of once per candidate. Each candidate
// is then probed under the retry engine; a 404 moves straight to the next
// candidate without retrying. A probe that dies with a dropped or reset
// connection accepts the candidate anyway: that shape of failure usually
// means the endpoint exists but rejects HEAD, and the real traffic is POST.
func resolveEndpoint(ctx context.Context, httpc *http.Client, base *url.URL, policy Policy, log zerolog.Logger) (string, error) {
	if err := probe(ctx, httpc, base, ""); err != nil {
		return "", newError(KindConnection, 0, "server is not responding: %v", err)
	}

	sawNotFound := false
	var lastOtherErr error

	for _, candidate := range endpointCandidates {
		_, err := Do(ctx, policy, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, probe(ctx, httpc, base, candidate)
		}, nil)
		if err == nil {
			log.Debug().Str("endpoint", candidate).Msg("endpoint resolved")
			return candidate, nil
		}

		if kind, ok := KindOf(err); ok {
			switch kind {
			case KindAuthentication:
				return "", err
			case KindNotFound:
				sawNotFound = true
				continue
			}
		}
		if isDroppedConn(err) {
			// Weak evidence the endpoint is live but HEAD is unsupported.
			log.Debug().Str("endpoint", candidate).Msg("probe dropped, accepting endpoint")
			return candidate, nil
		}
		lastOtherErr = err
	}

	switch {
	case sawNotFound && lastOtherErr == nil:
		return "", newError(KindConnection, 0,
			"no valid API endpoint found; the server may not be a SqueezeBox server or may not have the JSON API enabled")
	case sawNotFound:
		// A mixed walk: some candidates answered 404, others never answered.
		// Both halves matter for diagnosing which server this actually is.
		return "", newError(KindConnection, 0,
			"failed to reach any API endpoint (some candidates returned 404): %v", lastOtherErr)
	case lastOtherErr != nil:
		return "", newError(KindConnection, 0, "failed to reach any API endpoint: %v", lastOtherErr)
	}
	return "", newError(KindConnection, 0, "failed to reach any API endpoint")
}

// probe sends a single HEAD request and classifies the outcome. An empty
// path probes the base URL itself.
func probe(ctx context.Context, httpc *http.Client, base *url.URL, path string) error {
	target := base
	if path != "" {
		target = base.ResolveReference(&url.URL{Path: path})
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target.String(), nil)
	if err != nil {
		return newError(KindConnection, 0, "create probe request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := httpc.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return classifyHTTPStatus(resp.StatusCode, "")
	}
	return nil
}
