package lms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

// fakeServer records decoded RPC envelopes and answers from a per-command
// result table.
type fakeServer struct {
	t         *testing.T
	envelopes []rpcEnvelope
	results   map[string]any // command -> result payload (or error payload under "error")
}

func (f *fakeServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		var env rpcEnvelope
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			f.t.Errorf("decode envelope: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		f.envelopes = append(f.envelopes, env)

		command := envelopeCommand(env)
		w.Header().Set("Content-Type", "application/json")
		if result, ok := f.results[command]; ok {
			_ = json.NewEncoder(w).Encode(map[string]any{"id": env.ID, "result": result})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": env.ID, "result": map[string]any{}})
	}
}

func envelopeCommand(env rpcEnvelope) string {
	params, ok := env.Params[1].([]any)
	if !ok || len(params) == 0 {
		return ""
	}
	s, _ := params[0].(string)
	return s
}

func envelopeArgs(env rpcEnvelope) []string {
	params, _ := env.Params[1].([]any)
	args := make([]string, 0, len(params))
	for _, p := range params {
		switch v := p.(type) {
		case string:
			args = append(args, v)
		case float64:
			args = append(args, strconv.FormatFloat(v, 'g', -1, 64))
		}
	}
	return args
}

func newTestClient(t *testing.T, fake *fakeServer) *Client {
	t.Helper()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	client, err := Connect(context.Background(), server.URL, Options{
		MaxTries:   2,
		RetryDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	return client
}

func TestListPlayers_MapsSummaries(t *testing.T) {
	fake := &fakeServer{t: t, results: map[string]any{
		"players": map[string]any{
			"count": 1,
			"players_loop": []any{
				map[string]any{
					"playerid":    "00:11:22:33:44:55",
					"name":        "Kitchen",
					"ip":          "192.168.1.20:9000",
					"model":       "squeezebox3",
					"connected":   1,
					"canpoweroff": 1,
				},
			},
		},
	}}
	client := newTestClient(t, fake)

	players, err := client.ListPlayers(context.Background())
	if err != nil {
		t.Fatalf("ListPlayers returned error: %v", err)
	}
	if len(players) != 1 {
		t.Fatalf("players = %d, want 1", len(players))
	}
	got := players[0]
	if got.ID != "00:11:22:33:44:55" || got.Name != "Kitchen" {
		t.Fatalf("player = %+v", got)
	}
	if got.IP != "192.168.1.20:9000" || got.Model != "squeezebox3" {
		t.Fatalf("player extras = %+v", got)
	}
	if !got.Connected || !got.CanPowerOff {
		t.Fatalf("player flags = %+v", got)
	}
}

func TestListPlayers_EmptyServerYieldsEmptyList(t *testing.T) {
	fake := &fakeServer{t: t, results: map[string]any{
		"players": map[string]any{"count": 0},
	}}
	client := newTestClient(t, fake)

	players, err := client.ListPlayers(context.Background())
	if err != nil {
		t.Fatalf("ListPlayers returned error: %v", err)
	}
	if len(players) != 0 {
		t.Fatalf("players = %v, want empty", players)
	}
}

func TestPlayerStatus_EndToEnd(t *testing.T) {
	fake := &fakeServer{t: t, results: map[string]any{
		"status": map[string]any{
			"power":            1,
			"mode":             "play",
			"volume":           "50",
			"playlist_shuffle": 0,
		},
	}}
	client := newTestClient(t, fake)

	status, err := client.PlayerStatus(context.Background(), "00:11:22:33:44:55", false)
	if err != nil {
		t.Fatalf("PlayerStatus returned error: %v", err)
	}
	if status.Power != PowerOn || status.Mode != ModePlay || status.StatusText != "Now Playing" {
		t.Fatalf("status = %+v", status)
	}
	if status.Volume != 50 {
		t.Fatalf("volume = %d, want 50", status.Volume)
	}
	if status.Shuffle != 0 || status.ShuffleModeText != "Off" {
		t.Fatalf("shuffle = %d %q", status.Shuffle, status.ShuffleModeText)
	}

	// The status request must carry the exact protocol tag string.
	if len(fake.envelopes) != 1 {
		t.Fatalf("envelopes = %d, want 1", len(fake.envelopes))
	}
	args := envelopeArgs(fake.envelopes[0])
	found := false
	for _, arg := range args {
		if arg == statusTags {
			found = true
		}
	}
	if !found {
		t.Fatalf("status args %v missing tag string %q", args, statusTags)
	}
}

func TestSetVolume_ClampsBeforeSending(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{-5, "0"},
		{150, "100"},
		{42, "42"},
	}
	for _, tc := range cases {
		fake := &fakeServer{t: t, results: map[string]any{}}
		client := newTestClient(t, fake)

		if err := client.SetVolume(context.Background(), "p1", tc.in); err != nil {
			t.Fatalf("SetVolume(%d) returned error: %v", tc.in, err)
		}
		env := fake.envelopes[len(fake.envelopes)-1]
		args := envelopeArgs(env)
		if len(args) != 3 || args[0] != "mixer" || args[1] != "volume" || args[2] != tc.want {
			t.Fatalf("SetVolume(%d) sent %v, want mixer volume %s", tc.in, args, tc.want)
		}
	}
}

func TestSendCommand_MixerVolumeDelegates(t *testing.T) {
	fake := &fakeServer{t: t, results: map[string]any{}}
	client := newTestClient(t, fake)

	err := client.SendCommand(context.Background(), "p1", "mixer", []string{"volume", "150"})
	if err != nil {
		t.Fatalf("SendCommand returned error: %v", err)
	}
	args := envelopeArgs(fake.envelopes[len(fake.envelopes)-1])
	if len(args) != 3 || args[2] != "100" {
		t.Fatalf("mixer volume 150 sent %v, want clamp to 100", args)
	}

	err = client.SendCommand(context.Background(), "p1", "mixer", []string{"volume", "loud"})
	if err == nil {
		t.Fatalf("non-numeric volume should error")
	}
}

func TestSendCommand_PassesArgsThrough(t *testing.T) {
	fake := &fakeServer{t: t, results: map[string]any{}}
	client := newTestClient(t, fake)

	if err := client.SendCommand(context.Background(), "p1", "playlist", []string{"index", "+1"}); err != nil {
		t.Fatalf("SendCommand returned error: %v", err)
	}
	args := envelopeArgs(fake.envelopes[len(fake.envelopes)-1])
	if len(args) != 3 || args[0] != "playlist" || args[1] != "index" || args[2] != "+1" {
		t.Fatalf("sent %v", args)
	}
}

func TestServerStatus_DerivesCountAndFlattensTotals(t *testing.T) {
	fake := &fakeServer{t: t, results: map[string]any{
		"serverstatus": map[string]any{
			"version":      "8.3.1",
			"server_name":  "media",
			"uuid":         "abcd-1234",
			"players_loop": []any{map[string]any{}, map[string]any{}},
			"info": map[string]any{
				"total_albums":  float64(812),
				"total_artists": float64(144),
				"total_songs":   "9664",
			},
		},
	}}
	client := newTestClient(t, fake)

	status, err := client.ServerStatus(context.Background())
	if err != nil {
		t.Fatalf("ServerStatus returned error: %v", err)
	}
	if status.Version != "8.3.1" || status.ServerName != "media" || status.UUID != "abcd-1234" {
		t.Fatalf("status = %+v", status)
	}
	if status.PlayerCount != 2 {
		t.Fatalf("player count = %d, want 2 derived from players_loop", status.PlayerCount)
	}
	if status.LibraryTotals["albums"] != 812 || status.LibraryTotals["artists"] != 144 || status.LibraryTotals["songs"] != 9664 {
		t.Fatalf("totals = %v", status.LibraryTotals)
	}
}

func TestSearch_QueriesRequestedCategories(t *testing.T) {
	fake := &fakeServer{t: t, results: map[string]any{
		"artists": map[string]any{"artists_loop": []any{map[string]any{"artist": "The Kinks"}}},
		"albums":  map[string]any{"albums_loop": []any{map[string]any{"album": "Arthur"}}},
		"tracks":  map[string]any{"tracks_loop": []any{map[string]any{"title": "Victoria"}}},
	}}
	client := newTestClient(t, fake)

	results, err := client.Search(context.Background(), "kinks", SearchAll)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results.Artists) != 1 || len(results.Albums) != 1 || len(results.Tracks) != 1 {
		t.Fatalf("results = %+v", results)
	}
	if len(fake.envelopes) != 3 {
		t.Fatalf("envelopes = %d, want one per category", len(fake.envelopes))
	}
	for _, env := range fake.envelopes {
		args := envelopeArgs(env)
		if args[len(args)-1] != "search:kinks" {
			t.Fatalf("args %v missing search filter", args)
		}
	}

	fake.envelopes = nil
	if _, err := client.Search(context.Background(), "kinks", SearchArtists); err != nil {
		t.Fatalf("Search(artists) returned error: %v", err)
	}
	if len(fake.envelopes) != 1 || envelopeCommand(fake.envelopes[0]) != "artists" {
		t.Fatalf("artists-only search sent %d envelopes", len(fake.envelopes))
	}

	if _, err := client.Search(context.Background(), "kinks", SearchKind("podcasts")); err == nil {
		t.Fatalf("unknown search kind should error")
	}
}

func TestSessionIDs_MonotonicAcrossCalls(t *testing.T) {
	fake := &fakeServer{t: t, results: map[string]any{}}
	client := newTestClient(t, fake)

	ctx := context.Background()
	_ = client.ShowNowPlaying(ctx, "p1")
	_ = client.NextTrack(ctx, "p1")
	_ = client.SetVolume(ctx, "p1", 10)

	if len(fake.envelopes) != 3 {
		t.Fatalf("envelopes = %d, want 3", len(fake.envelopes))
	}
	for i := 1; i < len(fake.envelopes); i++ {
		if fake.envelopes[i].ID <= fake.envelopes[i-1].ID {
			t.Fatalf("ids not increasing: %d then %d", fake.envelopes[i-1].ID, fake.envelopes[i].ID)
		}
	}
}

func TestPreviousTrack_ThresholdBehavior(t *testing.T) {
	// Past the threshold: restart the current track.
	fake := &fakeServer{t: t, results: map[string]any{
		"status": map[string]any{
			"mode":          "play",
			"time":          float64(120),
			"playlist_loop": []any{map[string]any{"title": "Deep Cut"}},
		},
	}}
	client := newTestClient(t, fake)

	if err := client.PreviousTrack(context.Background(), "p1", 5); err != nil {
		t.Fatalf("PreviousTrack returned error: %v", err)
	}
	last := envelopeArgs(fake.envelopes[len(fake.envelopes)-1])
	if last[0] != "time" || last[1] != "0" {
		t.Fatalf("past threshold sent %v, want time 0", last)
	}

	// Near the start: jump to the previous track.
	fake.results["status"] = map[string]any{
		"mode":          "play",
		"time":          float64(2),
		"playlist_loop": []any{map[string]any{"title": "Deep Cut"}},
	}
	if err := client.PreviousTrack(context.Background(), "p1", 5); err != nil {
		t.Fatalf("PreviousTrack returned error: %v", err)
	}
	last = envelopeArgs(fake.envelopes[len(fake.envelopes)-1])
	if last[0] != "playlist" || last[2] != "-1" {
		t.Fatalf("near start sent %v, want playlist index -1", last)
	}
}

func TestSeekToTime_ZeroFallsBackToButton(t *testing.T) {
	// First "time" command gets a 503, then the fallback button command
	// succeeds. The facade must report success and the primary must have
	// been attempted exactly once before the fallback ran.
	var primaryAttempts, fallbackAttempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		var env rpcEnvelope
		_ = json.NewDecoder(r.Body).Decode(&env)
		switch envelopeCommand(env) {
		case "time":
			primaryAttempts++
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		case "button":
			fallbackAttempts++
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"id": env.ID, "result": map[string]any{}})
		default:
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"id": env.ID, "result": map[string]any{}})
		}
	}))
	t.Cleanup(server.Close)

	client, err := Connect(context.Background(), server.URL, Options{MaxTries: 3, RetryDelay: time.Millisecond})
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}

	if err := client.SeekToTime(context.Background(), "p1", 0); err != nil {
		t.Fatalf("SeekToTime returned error: %v", err)
	}
	if primaryAttempts != 1 {
		t.Fatalf("primary attempted %d times before fallback, want 1", primaryAttempts)
	}
	if fallbackAttempts != 1 {
		t.Fatalf("fallback attempted %d times, want 1", fallbackAttempts)
	}
}

func TestCommandErrors_CarryCommandContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		var env rpcEnvelope
		_ = json.NewDecoder(r.Body).Decode(&env)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    env.ID,
			"error": map[string]any{"code": 5, "message": "player not found: p9"},
		})
	}))
	t.Cleanup(server.Close)

	client, err := Connect(context.Background(), server.URL, Options{MaxTries: 2, RetryDelay: time.Millisecond})
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}

	err = client.ShowNowPlaying(context.Background(), "p9")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), `command "display" failed`) {
		t.Fatalf("error = %v, want command context", err)
	}
	if kind, ok := KindOf(err); !ok || kind != KindPlayerNotFound {
		t.Fatalf("kind = %v, want player not found", kind)
	}
}
