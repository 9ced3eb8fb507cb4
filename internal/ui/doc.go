// Package ui implements the terminal interfaces for squeezectl: an
// interactive player picker used when a command needs a player and none was
// named, and a live monitor that renders the now-playing state while
// forwarding transport and volume keys to the server.
//
// Both views are Bubble Tea models. The picker is self-contained and returns
// the chosen player id. The monitor reads snapshots from a shared state.Store
// on a tick so slow server calls never block rendering; key actions dispatch
// client commands asynchronously and surface their errors in the view.
package ui
