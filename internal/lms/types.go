package lms

// PlayerSummary describes one connected player as reported by the server's
// players listing.
type PlayerSummary struct {
	ID          string
	Name        string
	IP          string
	Model       string
	Connected   bool
	CanPowerOff bool
}

// PowerState is a player's reported power switch position.
type PowerState string

const (
	PowerOn  PowerState = "on"
	PowerOff PowerState = "off"
)

// PlayerMode is the transport state the server reports for a player.
type PlayerMode string

const (
	ModeStop  PlayerMode = "stop"
	ModePlay  PlayerMode = "play"
	ModePause PlayerMode = "pause"
)

// StatusText returns the human label for a mode. The lookup is total:
// unrecognized modes render as "Unknown" rather than failing.
func (m PlayerMode) StatusText() string {
	switch m {
	case ModePlay:
		return "Now Playing"
	case ModePause:
		return "Now Paused"
	case ModeStop:
		return "Stopped"
	}
	return "Unknown"
}

// Shuffle and repeat modes, numeric per the protocol.
const (
	ShuffleOff    = 0
	ShuffleSongs  = 1
	ShuffleAlbums = 2

	RepeatOff = 0
	RepeatOne = 1
	RepeatAll = 2
)

// ShuffleModeText renders a shuffle mode for display; total lookup.
func ShuffleModeText(mode int) string {
	switch mode {
	case ShuffleOff:
		return "Off"
	case ShuffleSongs:
		return "Songs"
	case ShuffleAlbums:
		return "Albums"
	}
	return "Unknown"
}

// RepeatModeText renders a repeat mode for display; total lookup.
func RepeatModeText(mode int) string {
	switch mode {
	case RepeatOff:
		return "Off"
	case RepeatOne:
		return "One"
	case RepeatAll:
		return "All"
	}
	return "Unknown"
}

// Track is an open map of track fields. Well-known keys ("title", "artist",
// "album", "position", "duration", "artwork") are normalized by name during
// status normalization; every other server-reported field passes through
// verbatim. The server does not guarantee position <= duration.
type Track map[string]any

// Title returns the track title or "".
func (t Track) Title() string { s, _ := t["title"].(string); return s }

// Artist returns the track artist or "".
func (t Track) Artist() string { s, _ := t["artist"].(string); return s }

// Album returns the track album or "".
func (t Track) Album() string { s, _ := t["album"].(string); return s }

// Artwork returns the artwork URL or "".
func (t Track) Artwork() string { s, _ := t["artwork"].(string); return s }

// Position returns the live playback position in seconds, or 0.
func (t Track) Position() float64 {
	v, _ := coerceFloat(t["position"])
	return v
}

// Duration returns the track duration in seconds, or 0.
func (t Track) Duration() float64 {
	v, _ := coerceFloat(t["duration"])
	return v
}

// PlayerStatus is the normalized view of a player's current state. Every
// field is populated: absent or malformed server fields fall back to the
// documented defaults instead of failing.
type PlayerStatus struct {
	PlayerID   string
	PlayerName string
	Power      PowerState
	Mode       PlayerMode
	StatusText string
	Volume     int

	Shuffle int
	Repeat  int
	// ShuffleModeText/RepeatModeText are set only when the server reported
	// the corresponding playlist_shuffle/playlist_repeat fields.
	ShuffleModeText string
	RepeatModeText  string

	PlaylistCount    int
	PlaylistPosition int

	// CurrentTrack is nil when the player has no playlist window.
	CurrentTrack Track
	// Playlist is the raw playlist window as the server sent it.
	Playlist []map[string]any
}

// ServerStatus summarizes the server-wide status response.
type ServerStatus struct {
	Version     string
	ServerName  string
	UUID        string
	PlayerCount int
	// LibraryTotals maps category ("albums", "artists", ...) to count,
	// flattened from the server's total_*-prefixed info fields.
	LibraryTotals map[string]int
}

// SearchKind selects which library categories a search queries.
type SearchKind string

const (
	SearchAll     SearchKind = "all"
	SearchArtists SearchKind = "artists"
	SearchAlbums  SearchKind = "albums"
	SearchTracks  SearchKind = "tracks"
)

// Valid reports whether k is a recognized search kind.
func (k SearchKind) Valid() bool {
	switch k {
	case SearchAll, SearchArtists, SearchAlbums, SearchTracks:
		return true
	}
	return false
}

// SearchResults carries the full, unfiltered library matches per category.
// Display truncation is the presentation layer's business.
type SearchResults struct {
	Artists []map[string]any
	Albums  []map[string]any
	Tracks  []map[string]any
}
