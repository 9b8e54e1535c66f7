// Package tui implements an optional full-screen dashboard for modplay,
// an alternative to the inline ANSI renderer in play.go. Audio is driven
// by the PortAudio callback; the dashboard polls the player and redraws,
// and its keys only pause/resume playback and toggle channel mutes.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gomodtracker/modplayer"
)

const frameInterval = 33 * time.Millisecond // ~30fps, plenty for a row-granularity display

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	instStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	fxStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	curRowSty  = lipgloss.NewStyle().Background(lipgloss.Color("4")).Foreground(lipgloss.Color("15"))
	vuStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	mutedSty   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Controller is the subset of *modplayer.Player the dashboard drives.
// Defined as an interface so tests can exercise View() against a fake.
type Controller interface {
	State() modplayer.PlaybackSnapshot
	NoteDataFor(position, row int) []modplayer.ChannelNoteData
	IsPlaying() bool
	Start()
	Stop()
	ToggleMute(channel int)
}

// Model is the bubbletea model backing `modplay -tui`.
type Model struct {
	player  Controller
	song    *modplayer.Song
	rowSpan int // rows of pattern context shown above/below the cursor

	quit     bool
	selected int // selected channel, the target of the m (mute) key
	muted    []bool
}

// New creates a dashboard Model for song, driven by player.
func New(player Controller, song *modplayer.Song) Model {
	return Model{
		player:  player,
		song:    song,
		rowSpan: 8,
		muted:   make([]bool, song.Format.NumChannels),
	}
}

type frameMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

func (m Model) Init() tea.Cmd { return tickCmd() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quit = true
			return m, tea.Quit
		case " ":
			if m.player.IsPlaying() {
				m.player.Stop()
			} else {
				m.player.Start()
			}
		case "left", "h":
			if m.selected > 0 {
				m.selected--
			}
		case "right", "l":
			if m.selected < m.song.Format.NumChannels-1 {
				m.selected++
			}
		case "m":
			m.muted[m.selected] = !m.muted[m.selected]
			m.player.ToggleMute(m.selected)
		}
		return m, nil

	case frameMsg:
		return m, tickCmd()
	}
	return m, nil
}

func (m Model) View() string {
	if m.quit {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString(m.patternView())
	b.WriteString("\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	state := m.player.State()
	status := dimStyle.Render("paused")
	if m.player.IsPlaying() {
		status = vuStyle.Render("playing")
	}
	title := titleStyle.Render(m.song.Name)
	if title == "" {
		title = titleStyle.Render("(untitled)")
	}
	return fmt.Sprintf("%s  %s  pos %02X/%02X row %02X",
		title, status, state.Position, m.song.NumUsedPatterns, state.Row)
}

func (m Model) patternView() string {
	state := m.player.State()
	var b strings.Builder

	b.WriteString(m.channelHeader())
	b.WriteString("\n")

	for i := -m.rowSpan; i <= m.rowSpan; i++ {
		row := state.Row + i
		b.WriteString(m.rowView(state.Position, row, i == 0))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) channelHeader() string {
	var parts []string
	for ch := 0; ch < m.song.Format.NumChannels; ch++ {
		label := fmt.Sprintf(" ch%-2d", ch+1)
		if ch == m.selected {
			label = titleStyle.Render(label)
		} else if m.muted[ch] {
			label = mutedSty.Render(label)
		} else {
			label = dimStyle.Render(label)
		}
		parts = append(parts, label)
	}
	return "    " + strings.Join(parts, " │")
}

func (m Model) rowView(position, row int, isCurrent bool) string {
	notes := m.player.NoteDataFor(position, row)
	prefix := fmt.Sprintf("%02X  ", ((row % modplayer.RowsPerPattern) + modplayer.RowsPerPattern) % modplayer.RowsPerPattern)
	if notes == nil {
		return dimStyle.Render(prefix)
	}

	var cells []string
	for _, n := range notes {
		cells = append(cells, renderCell(n))
	}
	line := prefix + strings.Join(cells, dimStyle.Render("│"))
	if isCurrent {
		return curRowSty.Render(line)
	}
	return line
}

func renderCell(n modplayer.ChannelNoteData) string {
	note := dimStyle.Render("...")
	if n.Note != "..." {
		note = noteStyle.Render(n.Note)
	}
	inst := dimStyle.Render("..")
	if n.Instrument != 0 {
		inst = instStyle.Render(fmt.Sprintf("%02d", n.Instrument))
	}
	fx := dimStyle.Render("....")
	if n.Effect != 0 || n.Param != 0 {
		fx = fxStyle.Render(fmt.Sprintf("%X%02X", n.Effect, n.Param))
	}
	return fmt.Sprintf("%s %s %s ", note, inst, fx)
}

func (m Model) footerView() string {
	return dimStyle.Render("space: pause/play   ←/→: select channel   m: mute   q: quit")
}

// Run blocks until the user quits the dashboard.
func Run(player Controller, song *modplayer.Song) error {
	_, err := tea.NewProgram(New(player, song), tea.WithAltScreen()).Run()
	return err
}
