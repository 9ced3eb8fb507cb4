package lms

import (
	"strconv"
	"strings"
)

// normalizeStatus maps a raw status result into a PlayerStatus. It is pure
// and total: no input shape causes it to fail, the worst case is a status
// full of defaults. Numeric fields arrive as ints, floats, or strings
// depending on server version, so every conversion degrades to the field's
// default instead of erroring.
//
// A reported volume of exactly zero is taken literally. Some hardware setups
// report zero while an external amplifier controls the real volume; treating
// that as "externally controlled" is a policy call that belongs here if it is
// ever made, not in the RPC layer.
func normalizeStatus(playerID string, raw map[string]any) PlayerStatus {
	status := PlayerStatus{
		PlayerID:   playerID,
		PlayerName: "Unknown",
		Power:      PowerOff,
		Mode:       ModeStop,
		StatusText: ModeStop.StatusText(),
	}
	if raw == nil {
		return status
	}

	if name, ok := raw["player_name"].(string); ok {
		status.PlayerName = name
	}

	if v, present := raw["power"]; present {
		if n, ok := coerceInt(v); ok && n == 1 {
			status.Power = PowerOn
		}
	}

	if v, present := raw["volume"]; present {
		status.Volume = clampVolume(v)
	} else if v, present := raw["mixer volume"]; present {
		// Older servers report volume under the mixer key.
		status.Volume = clampVolume(v)
	}

	if mode, ok := raw["mode"].(string); ok {
		status.Mode = PlayerMode(mode)
	}
	status.StatusText = status.Mode.StatusText()

	if v, present := raw["playlist_shuffle"]; present {
		n, _ := coerceInt(v)
		status.Shuffle = n
		status.ShuffleModeText = ShuffleModeText(n)
	}
	if v, present := raw["playlist_repeat"]; present {
		n, _ := coerceInt(v)
		status.Repeat = n
		status.RepeatModeText = RepeatModeText(n)
	}

	// The counters follow the presence of the playlist_loop key, not a
	// successfully parsed window: a malformed window still means the server
	// reported a playlist.
	if _, present := raw["playlist_loop"]; present {
		if n, ok := coerceInt(raw["playlist_tracks"]); ok {
			status.PlaylistCount = n
		}
		if n, ok := coerceInt(raw["playlist_cur_index"]); ok {
			status.PlaylistPosition = n
		}
	}

	playlist := playlistWindow(raw["playlist_loop"])
	if playlist != nil {
		status.Playlist = playlist
	}

	if len(playlist) > 0 {
		status.CurrentTrack = normalizeTrack(playlist[0], raw["time"])
	}

	return status
}

// normalizeTrack renames the well-known track fields and passes the rest
// through unchanged. The top-level time value, when present, overlays the
// track position: it is the authoritative live position, distinct from any
// position the track object itself carries.
func normalizeTrack(entry map[string]any, liveTime any) Track {
	track := Track{}
	for key, value := range entry {
		switch key {
		case "artwork_url":
			track["artwork"] = value
		default:
			track[key] = value
		}
	}
	if liveTime != nil {
		track["position"] = liveTime
	}
	return track
}

func playlistWindow(v any) []map[string]any {
	entries, ok := v.([]any)
	if !ok {
		return nil
	}
	window := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		if m, ok := e.(map[string]any); ok {
			window = append(window, m)
		}
	}
	return window
}

// clampVolume coerces a volume of any reported type into [0,100],
// truncating fractional values and defaulting to 0 when unparseable.
func clampVolume(v any) int {
	f, ok := coerceFloat(v)
	if !ok {
		return 0
	}
	if f < 0 {
		return 0
	}
	if f > 100 {
		return 100
	}
	return int(f)
}

// coerceInt converts the numeric shapes the server produces into an int.
func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		trimmed := strings.TrimSpace(n)
		if parsed, err := strconv.Atoi(trimmed); err == nil {
			return parsed, true
		}
		if parsed, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return int(parsed), true
		}
	}
	return 0, false
}

// coerceFloat converts the numeric shapes the server produces into a float64.
func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return parsed, true
		}
	}
	return 0, false
}
