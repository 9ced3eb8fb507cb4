package lms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultServerURL = "http://localhost:9000"
	defaultUserAgent = "squeezectl/0.1"
	requestTimeout   = 5 * time.Second
)

// rpcEnvelope is the wire-level request wrapper. Params is always a
// two-element array: the player id (or "" for server-scoped commands) and the
// command with its arguments.
type rpcEnvelope struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Params [2]any `json:"params"`
}

// rpcResponse mirrors the server's reply. Error stays raw because the server
// sends either an object or a bare string depending on version.
type rpcResponse struct {
	ID     int64           `json:"id"`
	Result map[string]any  `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// session owns the JSON-RPC exchange with one server: the resolved endpoint
// path and the monotonic request id counter. Ids are allocated atomically, so
// a session is safe to share between the monitor's poller and its key-command
// goroutines; everything else is read-only after construction.
type session struct {
	baseURL   *url.URL
	path      string
	http      *http.Client
	userAgent string
	policy    Policy
	nextID    atomic.Int64
	log       zerolog.Logger
}

func defaultSendPolicy() Policy {
	return Policy{
		MaxTries:      3,
		InitialDelay:  time.Second,
		BackoffFactor: 2,
		Retryable:     []ErrorKind{KindConnection, KindServerError, KindRateLimited},
		Fatal: []ErrorKind{
			KindAuthentication, KindNotFound,
			KindApplicationError, KindParseError, KindPlayerNotFound,
		},
	}
}

// send issues one logical RPC call. The request id is allocated exactly once,
// before the retry loop, so a retried request replays the same logical id as
// the protocol expects. The caller gets the decoded result object on success.
func (s *session) send(ctx context.Context, playerID, command string, args ...any) (map[string]any, error) {
	return s.sendWithFallback(ctx, playerID, command, args, "", nil)
}

// sendWithFallback behaves like send but also wires an alternate command
// into the retry engine's one-shot fallback slot. The fallback is a distinct
// logical call and gets its own request id when (and only when) it runs.
func (s *session) sendWithFallback(ctx context.Context, playerID, command string, args []any, fallbackCommand string, fallbackArgs []any) (map[string]any, error) {
	body, err := s.envelope(playerID, command, args)
	if err != nil {
		return nil, err
	}
	reqURL := s.baseURL.ResolveReference(&url.URL{Path: s.path})

	var fallback func(context.Context) (map[string]any, error)
	if fallbackCommand != "" {
		fallback = func(ctx context.Context) (map[string]any, error) {
			fbBody, err := s.envelope(playerID, fallbackCommand, fallbackArgs)
			if err != nil {
				return nil, err
			}
			return s.post(ctx, reqURL, fbBody)
		}
	}

	return Do(ctx, s.policy, func(ctx context.Context) (map[string]any, error) {
		return s.post(ctx, reqURL, body)
	}, fallback)
}

// envelope allocates the next request id and serializes one request.
func (s *session) envelope(playerID, command string, args []any) ([]byte, error) {
	id := s.nextID.Add(1)
	cmdParams := make([]any, 0, len(args)+1)
	cmdParams = append(cmdParams, command)
	cmdParams = append(cmdParams, args...)

	env := rpcEnvelope{
		ID:     id,
		Method: "slim.request",
		Params: [2]any{playerID, cmdParams},
	}
	body, err := json.Marshal(env)
	if err != nil {
		return nil, newError(KindParseError, 0, "encode request: %v", err)
	}
	s.log.Debug().
		Int64("id", env.ID).
		Str("player", playerID).
		Str("command", command).
		Msg("rpc send")
	return body, nil
}

func (s *session) post(ctx context.Context, reqURL *url.URL, body []byte) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		// Truncation mid-body is a transport problem, not a parse problem.
		return nil, classifyTransport(err)
	}

	if resp.StatusCode >= 400 {
		return nil, classifyHTTPStatus(resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, newError(KindConnection, 0, "empty response body")
	}

	var decoded rpcResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, newError(KindParseError, 0, "parse response: %v", err)
	}

	if len(decoded.Error) > 0 && !bytes.Equal(decoded.Error, []byte("null")) {
		var errPayload any
		if err := json.Unmarshal(decoded.Error, &errPayload); err != nil {
			return nil, newError(KindParseError, 0, "parse error payload: %v", err)
		}
		return nil, classifyRPCError(errPayload)
	}

	return decoded.Result, nil
}

// parseServerURL normalizes the configured server address into a bare
// scheme://host:port base. A plain host:port gets an http scheme; path,
// query, and fragment are discarded.
func parseServerURL(serverURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(serverURL)
	if trimmed == "" {
		trimmed = defaultServerURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server url %q: %w", serverURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse server url %q: missing host", serverURL)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
