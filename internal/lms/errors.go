package lms

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// ErrorKind is the closed set of failure classes the client distinguishes.
// Every raw transport, HTTP, or protocol failure is normalized to exactly one
// kind before any retry decision is made.
type ErrorKind int

const (
	// KindConnection covers socket failures, refused or reset connections,
	// timeouts, and transport-level truncation. Retryable.
	KindConnection ErrorKind = iota
	// KindAuthentication covers HTTP 401/403. Never retried.
	KindAuthentication
	// KindNotFound covers HTTP 404. Not retryable against the same endpoint;
	// the resolver treats it as "try the next candidate path".
	KindNotFound
	// KindRateLimited covers HTTP 429. Retryable with a longer backoff.
	KindRateLimited
	// KindServerError covers HTTP 5xx and any unrecognized status. Retryable.
	KindServerError
	// KindApplicationError covers an RPC response carrying an error payload.
	// Never retried: the server understood the request and rejected it.
	KindApplicationError
	// KindParseError covers a syntactically invalid JSON body. Never retried.
	KindParseError
	// KindPlayerNotFound refines an application error whose message names a
	// missing player. Never retried.
	KindPlayerNotFound
)

// String returns the kind's wire-stable name.
func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindAuthentication:
		return "authentication"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindServerError:
		return "server_error"
	case KindApplicationError:
		return "application_error"
	case KindParseError:
		return "parse_error"
	case KindPlayerNotFound:
		return "player_not_found"
	}
	return "unknown"
}

// Retryable reports whether the kind is safe to retry by default.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindConnection, KindRateLimited, KindServerError:
		return true
	}
	return false
}

// Error is a classified client failure: one kind, a human message, and an
// optional numeric code (HTTP status or RPC error code).
type Error struct {
	Kind    ErrorKind
	Message string
	Code    int

	cause error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s (code %d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the raw failure the classification was derived from.
func (e *Error) Unwrap() error { return e.cause }

func newError(kind ErrorKind, code int, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Code: code}
}

// AsClassified extracts a classified error from err's chain.
func AsClassified(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// KindOf returns the classified kind of err and whether one was found.
func KindOf(err error) (ErrorKind, bool) {
	if ce, ok := AsClassified(err); ok {
		return ce.Kind, true
	}
	return 0, false
}

// classifyHTTPStatus maps a non-2xx HTTP status to a classified error.
func classifyHTTPStatus(status int, detail string) *Error {
	switch {
	case status == 401 || status == 403:
		return newError(KindAuthentication, status, "authentication required: HTTP %d", status)
	case status == 404:
		return newError(KindNotFound, status, "endpoint not found: HTTP 404")
	case status == 429:
		return newError(KindRateLimited, status, "rate limited: HTTP 429")
	case status == 500 || status == 502 || status == 503 || status == 504:
		return newError(KindServerError, status, "server error: HTTP %d", status)
	default:
		// Conservative default: unknown statuses are treated as transient
		// server trouble rather than permanent failures.
		if detail != "" {
			return newError(KindServerError, status, "HTTP %d: %s", status, detail)
		}
		return newError(KindServerError, status, "HTTP %d", status)
	}
}

// classifyTransport maps a failure from http.Client.Do to a classified error.
// Everything that happens before a status line is readable counts as a
// connection problem, including bodies truncated mid-response.
func classifyTransport(err error) *Error {
	ce := newError(KindConnection, 0, "request failed: %v", err)
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		ce.Message = fmt.Sprintf("request failed: %v", urlErr.Err)
	}
	ce.cause = err
	return ce
}

// classifyRPCError maps a decoded response error payload to a classified
// error. Payloads arrive either as an object with code/message fields or as a
// bare string, depending on server version.
func classifyRPCError(payload any) *Error {
	var message string
	var code int
	switch v := payload.(type) {
	case map[string]any:
		message, _ = v["message"].(string)
		if message == "" {
			message = "unknown error"
		}
		if c, ok := coerceInt(v["code"]); ok {
			code = c
		}
	case string:
		message = v
	default:
		message = fmt.Sprintf("%v", payload)
	}
	if strings.Contains(strings.ToLower(message), "player not found") {
		return newError(KindPlayerNotFound, code, "server error: %s", message)
	}
	return newError(KindApplicationError, code, "server error: %s", message)
}

// isDroppedConn reports whether err looks like the server accepted the
// connection and then dropped or reset it, as opposed to never answering.
// The resolver uses this to accept endpoints that reject HEAD but serve POST.
func isDroppedConn(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "read" {
		return true
	}
	// http.Client loses the typed cause in some paths; fall back to the
	// message the transport produces for mid-stream closes.
	msg := err.Error()
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "server closed")
}

// CommandError wraps a classified failure with the command string that was
// being executed, for uniform display by the CLI layer.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
	}
	return e.Err.Error()
}

func (e *CommandError) Unwrap() error { return e.Err }

func wrapCommand(command string, err error) error {
	if err == nil {
		return nil
	}
	return &CommandError{Command: command, Err: err}
}
