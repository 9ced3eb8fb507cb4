// Package app provides the orchestration layer for the squeezectl monitor.
//
// # Overview
//
// This package wires together the server client, polling, state management,
// and the UI to create the live monitor experience. It serves as the
// composition root where dependencies are initialized and connected.
//
// # Architecture
//
// The app package follows a simple initialization pattern:
//
//  1. Connect to the media server and resolve its API endpoint
//  2. Resolve the target player, prompting an interactive pick if needed
//  3. Create shared state.Store for UI and poller coordination
//  4. Launch background poller goroutine for continuous status updates
//  5. Start the TUI and block until user exits or context cancels
//
// # Polling Behavior
//
// The poller runs continuously in the background at a configurable interval
// (default: 1 second). On each tick it fetches the player's status and
// updates the shared state.Store atomically. Poll failures are logged and
// polling continues, with the cadence doubling per consecutive failure up to
// a 30 second cap so an unreachable server is not hammered.
//
// The UI reads snapshots from the store at its own refresh rate. This
// separation keeps the UI responsive even during slow server calls.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Server unreachable or no valid API endpoint found
//   - Player listing failure during the interactive pick
//
// Recoverable errors (logged, polling continues):
//   - Periodic status fetch failures
//   - Network timeouts during polling
//
// After two consecutive poll failures the UI shows the player as offline
// while continuing to retry in the background.
package app
