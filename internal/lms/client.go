package lms

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// statusTags is the fixed metadata tag set requested with every status call:
// a=artist, c=coverid, d=duration, e=album_id, i=disc, j=coverart, l=album,
// m=bpm, N=remote_title, o=type, r=bitrate, t=tracknum, u=url, K=artwork_url,
// R=rating, Y=replay_gain. The server only returns fields whose tags are
// requested, so this string is part of the protocol contract.
const statusTags = "tags:abcdeilmNortuKRYj"

// Client is the command facade the CLI layer talks to. One Client wraps one
// RPC session against one server; construct it per invocation.
type Client struct {
	session *session
	log     zerolog.Logger
}

// Options tune client construction. The zero value is usable.
type Options struct {
	// MaxTries overrides the per-call attempt budget (default 3).
	MaxTries int
	// RetryDelay overrides the initial backoff delay (default 1s).
	RetryDelay time.Duration
	// HTTPClient substitutes the transport, for tests.
	HTTPClient *http.Client
	// Logger receives debug-level request tracing.
	Logger zerolog.Logger
}

// Connect validates the server URL, discovers the RPC endpoint path, and
// returns a ready client. Discovery failures surface as classified
// connection errors.
func Connect(ctx context.Context, serverURL string, opts Options) (*Client, error) {
	base, err := parseServerURL(serverURL)
	if err != nil {
		return nil, err
	}

	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: requestTimeout}
	}

	policy := defaultSendPolicy()
	probePolicy := defaultProbePolicy()
	if opts.MaxTries > 0 {
		policy.MaxTries = opts.MaxTries
		probePolicy.MaxTries = opts.MaxTries
	}
	if opts.RetryDelay > 0 {
		policy.InitialDelay = opts.RetryDelay
		probePolicy.InitialDelay = opts.RetryDelay
	}

	path, err := resolveEndpoint(ctx, httpc, base, probePolicy, opts.Logger)
	if err != nil {
		return nil, err
	}

	return &Client{
		session: &session{
			baseURL:   base,
			path:      path,
			http:      httpc,
			userAgent: defaultUserAgent,
			policy:    policy,
			log:       opts.Logger,
		},
		log: opts.Logger,
	}, nil
}

// EndpointPath returns the RPC path discovery settled on.
func (c *Client) EndpointPath() string { return c.session.path }

// ListPlayers returns the players the server knows about. A server with zero
// players yields an empty list, not an error.
func (c *Client) ListPlayers(ctx context.Context) ([]PlayerSummary, error) {
	result, err := c.session.send(ctx, "", "players", 0, 100)
	if err != nil {
		return nil, wrapCommand("players", err)
	}

	loop, ok := result["players_loop"].([]any)
	if !ok {
		return []PlayerSummary{}, nil
	}

	players := make([]PlayerSummary, 0, len(loop))
	for _, entry := range loop {
		raw, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		summary := PlayerSummary{Name: "Unknown Player"}
		if id, ok := raw["playerid"].(string); ok {
			summary.ID = id
		}
		if name, ok := raw["name"].(string); ok {
			summary.Name = name
		}
		if ip, ok := raw["ip"].(string); ok {
			summary.IP = ip
		}
		if model, ok := raw["model"].(string); ok {
			summary.Model = model
		}
		if n, ok := coerceInt(raw["connected"]); ok {
			summary.Connected = n == 1
		}
		if n, ok := coerceInt(raw["canpoweroff"]); ok {
			summary.CanPowerOff = n == 1
		}
		players = append(players, summary)
	}
	return players, nil
}

// PlayerStatus fetches and normalizes the current status of one player.
// subscribe asks the server to keep pushing updates on its side; the client
// itself always reads a single snapshot.
func (c *Client) PlayerStatus(ctx context.Context, playerID string, subscribe bool) (PlayerStatus, error) {
	sub := "subscribe:0"
	if subscribe {
		sub = "subscribe:1"
	}
	result, err := c.session.send(ctx, playerID, "status", "-", 1, statusTags, sub)
	if err != nil {
		return PlayerStatus{}, wrapCommand("status", err)
	}
	return normalizeStatus(playerID, result), nil
}

// SetVolume sets a player's volume, clamping to [0,100] before sending.
// The clamp lives here so every path that sets volume shares it.
func (c *Client) SetVolume(ctx context.Context, playerID string, volume int) error {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	_, err := c.session.send(ctx, playerID, "mixer", "volume", strconv.Itoa(volume))
	return wrapCommand(fmt.Sprintf("mixer volume %d", volume), err)
}

// SeekToTime seeks the current track to the given position. Seeking to zero
// means "restart the track": the direct time command is preferred, with the
// remote-control rewind button as a one-shot fallback for servers where the
// time command is unreliable at position zero.
func (c *Client) SeekToTime(ctx context.Context, playerID string, seconds int) error {
	command := fmt.Sprintf("time %d", seconds)
	if seconds != 0 {
		_, err := c.session.send(ctx, playerID, "time", strconv.Itoa(seconds))
		return wrapCommand(command, err)
	}

	_, err := c.session.sendWithFallback(ctx, playerID,
		"time", []any{"0"},
		"button", []any{"jump_rew"})
	return wrapCommand(command, err)
}

// ShowNowPlaying switches the player's display to the Now Playing screen,
// like pressing the button on the remote.
func (c *Client) ShowNowPlaying(ctx context.Context, playerID string) error {
	_, err := c.session.send(ctx, playerID, "display")
	return wrapCommand("display", err)
}

// SetPower switches the player on or off.
func (c *Client) SetPower(ctx context.Context, playerID string, on bool) error {
	state := "0"
	if on {
		state = "1"
	}
	_, err := c.session.send(ctx, playerID, "power", state)
	return wrapCommand("power "+state, err)
}

// NextTrack advances the playlist by one track.
func (c *Client) NextTrack(ctx context.Context, playerID string) error {
	_, err := c.session.send(ctx, playerID, "playlist", "index", "+1")
	return wrapCommand("playlist index +1", err)
}

// JumpToTrack jumps to an absolute playlist index (0-based).
func (c *Client) JumpToTrack(ctx context.Context, playerID string, index int) error {
	_, err := c.session.send(ctx, playerID, "playlist", "index", strconv.Itoa(index))
	return wrapCommand(fmt.Sprintf("playlist index %d", index), err)
}

// PreviousTrack mimics remote-control behavior: past thresholdSeconds into
// the current track it restarts the track, otherwise it goes back one track.
func (c *Client) PreviousTrack(ctx context.Context, playerID string, thresholdSeconds int) error {
	if thresholdSeconds <= 0 {
		thresholdSeconds = 5
	}
	status, err := c.PlayerStatus(ctx, playerID, false)
	if err != nil {
		return err
	}
	if status.CurrentTrack != nil && status.CurrentTrack.Position() > float64(thresholdSeconds) {
		return c.SeekToTime(ctx, playerID, 0)
	}
	_, err = c.session.send(ctx, playerID, "playlist", "index", "-1")
	return wrapCommand("playlist index -1", err)
}

// SendCommand forwards a raw command with positional string arguments.
// "mixer volume N" is special-cased through SetVolume so clamping and
// validation stay in one place.
func (c *Client) SendCommand(ctx context.Context, playerID, command string, params []string) error {
	cmdStr := strings.TrimSpace(command + " " + strings.Join(params, " "))

	if command == "mixer" && len(params) >= 2 && params[0] == "volume" {
		volume, err := strconv.Atoi(params[1])
		if err != nil {
			return wrapCommand(cmdStr, newError(KindApplicationError, 0, "invalid volume parameter: %v", err))
		}
		return c.SetVolume(ctx, playerID, volume)
	}

	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p
	}
	_, err := c.session.send(ctx, playerID, command, args...)
	return wrapCommand(cmdStr, err)
}

// ServerStatus fetches server-wide status and library totals.
func (c *Client) ServerStatus(ctx context.Context) (ServerStatus, error) {
	result, err := c.session.send(ctx, "", "serverstatus", 0, 100)
	if err != nil {
		return ServerStatus{}, wrapCommand("serverstatus", err)
	}

	status := ServerStatus{LibraryTotals: map[string]int{}}
	if v, ok := result["version"].(string); ok {
		status.Version = v
	}
	if v, ok := result["server_name"].(string); ok {
		status.ServerName = v
	}
	if v, ok := result["uuid"].(string); ok {
		status.UUID = v
	}

	if n, ok := coerceInt(result["player count"]); ok {
		status.PlayerCount = n
	} else if loop, ok := result["players_loop"].([]any); ok {
		status.PlayerCount = len(loop)
	}

	// Library totals arrive either nested under info or flattened at the
	// top level, always with a total_ prefix.
	collectTotals(result, status.LibraryTotals)
	if info, ok := result["info"].(map[string]any); ok {
		collectTotals(info, status.LibraryTotals)
	}

	return status, nil
}

func collectTotals(source map[string]any, totals map[string]int) {
	for key, value := range source {
		if !strings.HasPrefix(key, "total_") {
			continue
		}
		if n, ok := coerceInt(value); ok {
			totals[strings.TrimPrefix(key, "total_")] = n
		}
	}
}

// Artists lists library artists, optionally filtered by a search term.
func (c *Client) Artists(ctx context.Context, start, count int, search string) ([]map[string]any, error) {
	var filters []string
	if search != "" {
		filters = append(filters, "search:"+search)
	}
	return c.libraryInfo(ctx, "artists", start, count, filters)
}

// Albums lists library albums, optionally filtered by artist id and/or a
// search term.
func (c *Client) Albums(ctx context.Context, start, count int, artistID, search string) ([]map[string]any, error) {
	var filters []string
	if artistID != "" {
		filters = append(filters, "artist_id:"+artistID)
	}
	if search != "" {
		filters = append(filters, "search:"+search)
	}
	return c.libraryInfo(ctx, "albums", start, count, filters)
}

// Tracks lists library tracks, optionally filtered by album id and/or a
// search term.
func (c *Client) Tracks(ctx context.Context, start, count int, albumID, search string) ([]map[string]any, error) {
	var filters []string
	if albumID != "" {
		filters = append(filters, "album_id:"+albumID)
	}
	if search != "" {
		filters = append(filters, "search:"+search)
	}
	return c.libraryInfo(ctx, "tracks", start, count, filters)
}

// libraryInfo runs one library browse command. The server replies with the
// items under "<command>_loop"; a missing loop means no matches.
func (c *Client) libraryInfo(ctx context.Context, command string, start, count int, filters []string) ([]map[string]any, error) {
	args := []any{start, count}
	for _, f := range filters {
		args = append(args, f)
	}
	result, err := c.session.send(ctx, "", command, args...)
	if err != nil {
		return nil, wrapCommand(command, err)
	}

	loop, ok := result[command+"_loop"].([]any)
	if !ok {
		return []map[string]any{}, nil
	}
	items := make([]map[string]any, 0, len(loop))
	for _, entry := range loop {
		if m, ok := entry.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items, nil
}

// Search queries the requested library categories for term and returns the
// full result lists. Truncating for display is the caller's concern.
func (c *Client) Search(ctx context.Context, term string, kind SearchKind) (SearchResults, error) {
	if !kind.Valid() {
		return SearchResults{}, wrapCommand("search",
			newError(KindApplicationError, 0, "unknown search kind %q", kind))
	}

	var results SearchResults
	var err error
	if kind == SearchAll || kind == SearchArtists {
		if results.Artists, err = c.Artists(ctx, 0, 100, term); err != nil {
			return SearchResults{}, err
		}
	}
	if kind == SearchAll || kind == SearchAlbums {
		if results.Albums, err = c.Albums(ctx, 0, 100, "", term); err != nil {
			return SearchResults{}, err
		}
	}
	if kind == SearchAll || kind == SearchTracks {
		if results.Tracks, err = c.Tracks(ctx, 0, 100, "", term); err != nil {
			return SearchResults{}, err
		}
	}
	return results, nil
}
