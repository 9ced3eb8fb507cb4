package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hollandm/squeezectl/internal/lms"
)

// pickerModel is a minimal cursor list over the available players.
type pickerModel struct {
	players  []lms.PlayerSummary
	cursor   int
	chosen   string
	keys     pickerKeyMap
	theme    theme
	quitting bool
}

func newPickerModel(players []lms.PlayerSummary) pickerModel {
	return pickerModel{
		players: players,
		keys:    defaultPickerKeyMap(),
		theme:   defaultTheme(),
	}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.players)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Confirm):
		if len(m.players) > 0 {
			m.chosen = m.players[m.cursor].ID
		}
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}
	out := m.theme.Title.Render("Select a player") + "\n\n"
	for i, player := range m.players {
		line := fmt.Sprintf("%s  %s", player.Name, m.theme.Dimmed.Render(player.ID))
		if !player.Connected {
			line += m.theme.Dimmed.Render("  (disconnected)")
		}
		if i == m.cursor {
			out += m.theme.Selected.Render("> "+line) + "\n"
		} else {
			out += "  " + line + "\n"
		}
	}
	out += "\n" + m.theme.Help.Render("↑/↓ move · enter select · q cancel")
	return out
}

// SelectPlayer runs an interactive picker over players and returns the
// chosen player id, or "" when the selection was cancelled.
func SelectPlayer(players []lms.PlayerSummary) (string, error) {
	if len(players) == 0 {
		return "", fmt.Errorf("no players available")
	}
	program := tea.NewProgram(newPickerModel(players))
	final, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("run player picker: %w", err)
	}
	model, ok := final.(pickerModel)
	if !ok {
		return "", fmt.Errorf("unexpected picker model %T", final)
	}
	return model.chosen, nil
}
