// Package lms implements a client for the SqueezeBox server JSON-RPC
// control API.
//
// # Overview
//
// The server exposes a single POST endpoint that accepts envelopes of the
// form:
//
//	{"id": 1, "method": "slim.request", "params": ["<playerid>", ["status", "-", 1]]}
//
// and replies with {"id", "result"} or {"id", "error"}. The endpoint path
// varies across server versions, field presence varies across player models,
// and numeric fields arrive as ints, floats, or strings. This package turns
// that into a small set of reliable operations.
//
// # Layers
//
//   - errors.go: the closed ErrorKind taxonomy every failure is normalized
//     to, which drives retry eligibility.
//   - retry.go: generic retry with exponential backoff and a one-shot
//     fallback operation.
//   - resolver.go: endpoint discovery by probing candidate paths.
//   - session.go: envelope construction, POST transport, response unwrapping.
//   - normalize.go: loosely-typed status results into PlayerStatus values.
//   - client.go: the command facade the CLI consumes.
//
// # Usage
//
//	client, err := lms.Connect(ctx, "http://localhost:9000", lms.Options{})
//	if err != nil {
//		return err
//	}
//	players, err := client.ListPlayers(ctx)
//
// A Client wraps one session and is safe for concurrent use: request ids are
// allocated atomically, so the monitor's poller and key handlers can share
// one Client. Ids increase monotonically per logical call; a retried request
// deliberately replays its id.
//
// # Error handling
//
// Operations return either a *CommandError wrapping a classified *Error, or
// a classified *Error directly during construction. Callers can recover the
// kind with KindOf or errors.As. Retry and backoff happen entirely inside
// this package; a returned error is terminal.
package lms
