package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hollandm/squeezectl/internal/lms"
	"github.com/hollandm/squeezectl/internal/state"
)

// MonitorOptions configure the live monitor view.
type MonitorOptions struct {
	Context  context.Context
	Client   *lms.Client
	Store    *state.Store
	PlayerID string
	PollTick time.Duration
}

type tickMsg time.Time

// commandDoneMsg reports the outcome of a transport/mixer key action.
type commandDoneMsg struct{ err error }

// monitorModel renders the now-playing dashboard from store snapshots and
// forwards transport keys to the client.
type monitorModel struct {
	ctx      context.Context
	client   *lms.Client
	store    *state.Store
	playerID string
	pollTick time.Duration

	keys     monitorKeyMap
	theme    theme
	spinner  spinner.Model
	snapshot state.Snapshot
	cmdErr   error
	width    int
	quitting bool
}

func newMonitorModel(opts MonitorOptions) monitorModel {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}
	th := defaultTheme()
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(th.Dimmed))
	return monitorModel{
		ctx:      ctx,
		client:   opts.Client,
		store:    opts.Store,
		playerID: opts.PlayerID,
		pollTick: pollTick,
		keys:     defaultMonitorKeyMap(),
		theme:    th,
		spinner:  sp,
		snapshot: opts.Store.Snapshot(),
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.spinner.Tick)
}

func (m monitorModel) tick() tea.Cmd {
	return tea.Tick(m.pollTick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		m.snapshot = m.store.Snapshot()
		return m, m.tick()

	case commandDoneMsg:
		m.cmdErr = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.PlayPause):
			return m, m.sendCommand(m.togglePlayPauseCommand())
		case key.Matches(msg, m.keys.Stop):
			return m, m.sendCommand(func(ctx context.Context) error {
				return m.client.SendCommand(ctx, m.playerID, "stop", nil)
			})
		case key.Matches(msg, m.keys.Next):
			return m, m.sendCommand(func(ctx context.Context) error {
				return m.client.NextTrack(ctx, m.playerID)
			})
		case key.Matches(msg, m.keys.Prev):
			return m, m.sendCommand(func(ctx context.Context) error {
				return m.client.PreviousTrack(ctx, m.playerID, 0)
			})
		case key.Matches(msg, m.keys.VolumeUp):
			return m, m.sendCommand(m.volumeStepCommand(+5))
		case key.Matches(msg, m.keys.VolumeDown):
			return m, m.sendCommand(m.volumeStepCommand(-5))
		}
	}
	return m, nil
}

func (m monitorModel) sendCommand(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, 10*time.Second)
		defer cancel()
		return commandDoneMsg{err: fn(ctx)}
	}
}

func (m monitorModel) togglePlayPauseCommand() func(context.Context) error {
	// The server toggles pause itself; from stop, play is the right verb.
	mode := m.snapshot.Status.Mode
	return func(ctx context.Context) error {
		if mode == lms.ModeStop {
			return m.client.SendCommand(ctx, m.playerID, "play", nil)
		}
		return m.client.SendCommand(ctx, m.playerID, "pause", nil)
	}
}

func (m monitorModel) volumeStepCommand(delta int) func(context.Context) error {
	volume := m.snapshot.Status.Volume + delta
	return func(ctx context.Context) error {
		return m.client.SetVolume(ctx, m.playerID, volume)
	}
}

func (m monitorModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	snap := m.snapshot

	title := "squeezectl"
	if snap.HasStatus {
		title = snap.Status.PlayerName
	}
	b.WriteString(m.theme.Title.Render(title))
	if snap.IsOffline() {
		b.WriteString("  " + m.theme.Offline.Render("OFFLINE"))
	}
	b.WriteString("\n\n")

	if !snap.HasStatus {
		b.WriteString(m.spinner.View() + m.theme.Dimmed.Render(" waiting for status..."))
	} else {
		b.WriteString(m.renderStatus(snap.Status))
	}

	if snap.LastError != nil {
		b.WriteString("\n" + m.theme.Error.Render(fmt.Sprintf("poll: %v", snap.LastError)))
	}
	if m.cmdErr != nil {
		b.WriteString("\n" + m.theme.Error.Render(m.cmdErr.Error()))
	}

	b.WriteString("\n\n" + m.theme.Help.Render(
		"space play/pause · s stop · n/p track · +/- volume · q quit"))
	return m.theme.Frame.Render(b.String())
}

func (m monitorModel) renderStatus(status lms.PlayerStatus) string {
	var b strings.Builder

	row := func(label, value string) {
		b.WriteString(m.theme.Label.Render(label) + m.theme.Value.Render(value) + "\n")
	}

	row("State", status.StatusText)
	row("Power", string(status.Power))
	row("Volume", fmt.Sprintf("%d%%", status.Volume))

	if status.ShuffleModeText != "" {
		row("Shuffle", status.ShuffleModeText)
	}
	if status.RepeatModeText != "" {
		row("Repeat", status.RepeatModeText)
	}
	if status.PlaylistCount > 0 {
		row("Playlist", fmt.Sprintf("%d of %d", status.PlaylistPosition+1, status.PlaylistCount))
	}

	track := status.CurrentTrack
	if track != nil {
		b.WriteString("\n")
		if title := track.Title(); title != "" {
			row("Track", title)
		}
		if artist := track.Artist(); artist != "" {
			row("Artist", artist)
		}
		if album := track.Album(); album != "" {
			row("Album", album)
		}
		if track.Duration() > 0 {
			row("Time", fmt.Sprintf("%s / %s",
				FormatSeconds(track.Position()), FormatSeconds(track.Duration())))
		}
	}
	return b.String()
}

// FormatSeconds renders a duration in seconds as m:ss or h:mm:ss.
func FormatSeconds(seconds float64) string {
	total := int(seconds)
	minutes, secs := total/60, total%60
	hours, minutes := minutes/60, minutes%60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// RunMonitor boots the live dashboard until the user quits or the context is
// cancelled.
func RunMonitor(opts MonitorOptions) error {
	program := tea.NewProgram(newMonitorModel(opts), tea.WithContext(opts.Context))
	_, err := program.Run()
	return err
}
