package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"engageops-sim/internal/engine"
	"engageops-sim/internal/registry"
)

const maxLogLines = 1000

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// simsMsg carries a fresh simulation listing.
type simsMsg []registry.Status

// passMsg carries the results of an update pass.
type passMsg []engine.UpdateResult

// errMsg reports a failed API call.
type errMsg struct{ err error }

// tickMsg schedules the next poll.
type tickMsg time.Time

// Model is the dashboard state. It polls the admin API and renders the
// active simulations plus a scrolling pass-result log.
type Model struct {
	client     *Client
	poll       time.Duration
	table      table.Model
	vp         viewport.Model
	logs       []string
	stopInput  textinput.Model
	stopDialog bool
	autoscroll bool
	wrap       bool
	width      int
	height     int
	lastErr    string
}

// NewModel builds a dashboard polling client every poll interval.
func NewModel(client *Client, poll time.Duration) Model {
	cols := []table.Column{
		{Title: "Target", Width: 26},
		{Title: "Curve", Width: 12},
		{Title: "Max Views", Width: 10},
		{Title: "Max Likes", Width: 10},
		{Title: "Elapsed", Width: 9},
		{Title: "Progress", Width: 9},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(8))
	return Model{
		client:     client,
		poll:       poll,
		table:      t,
		vp:         viewport.New(0, 0),
		autoscroll: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchSims(), m.fetchLastPass(), m.tick())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.poll, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) fetchSims() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		sims, err := m.client.ListSimulations(ctx)
		if err != nil {
			return errMsg{err}
		}
		return simsMsg(sims)
	}
}

func (m Model) fetchLastPass() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		results, err := m.client.LastPass(ctx)
		if err != nil {
			return errMsg{err}
		}
		return passMsg(results)
	}
}

func (m Model) runPass() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		results, err := m.client.RunPass(ctx)
		if err != nil {
			return errMsg{err}
		}
		return passMsg(results)
	}
}

func (m Model) stopTarget(target string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.client.StopSimulation(ctx, target); err != nil {
			return errMsg{err}
		}
		return tickMsg(time.Now())
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Width = msg.Width
		h := msg.Height - m.table.Height() - 8
		if h < 3 {
			h = 3
		}
		m.vp.Height = h
		m.refreshLog()
	case tickMsg:
		return m, tea.Batch(m.fetchSims(), m.fetchLastPass(), m.tick())
	case simsMsg:
		m.lastErr = ""
		rows := make([]table.Row, 0, len(msg))
		for _, s := range msg {
			rows = append(rows, table.Row{
				s.TargetID,
				string(s.Curve),
				fmt.Sprintf("%d", s.MaxViews),
				fmt.Sprintf("%d", s.MaxLikes),
				fmt.Sprintf("%.1fh", s.ElapsedHours),
				fmt.Sprintf("%.0f%%", s.Progress*100),
			})
		}
		m.table.SetRows(rows)
	case passMsg:
		m.lastErr = ""
		for _, r := range msg {
			m.appendLog(formatResult(r))
		}
		m.refreshLog()
	case errMsg:
		m.lastErr = msg.err.Error()
	case tea.KeyMsg:
		if m.stopDialog {
			switch msg.Type {
			case tea.KeyEnter:
				target := strings.TrimSpace(m.stopInput.Value())
				m.stopDialog = false
				if target != "" {
					return m, m.stopTarget(target)
				}
			case tea.KeyEsc:
				m.stopDialog = false
			default:
				var cmd tea.Cmd
				m.stopInput, cmd = m.stopInput.Update(msg)
				return m, cmd
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.runPass()
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
		case "w":
			m.wrap = !m.wrap
			m.refreshLog()
		case "x":
			m.stopInput = textinput.New()
			m.stopInput.Placeholder = "content id"
			m.stopInput.Focus()
			m.stopDialog = true
		case "j", "down":
			m.vp.LineDown(1)
		case "k", "up":
			m.vp.LineUp(1)
		}
	}
	return m, nil
}

func (m *Model) appendLog(line string) {
	m.logs = append(m.logs, line)
	if len(m.logs) > maxLogLines {
		m.logs = m.logs[len(m.logs)-maxLogLines:]
	}
}

func (m *Model) refreshLog() {
	lines := m.logs
	if m.wrap && m.vp.Width > 0 {
		lines = make([]string, len(m.logs))
		for i, l := range m.logs {
			lines[i] = wordwrap.String(l, m.vp.Width)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func formatResult(r engine.UpdateResult) string {
	ts := dimStyle.Render("[" + time.Now().Format(time.RFC3339) + "]")
	if !r.Success {
		return fmt.Sprintf("%s %s %s: %s", ts, failStyle.Render("FAIL"), r.TargetID, r.Error)
	}
	line := fmt.Sprintf("%s %s %s views=%d (+%d) likes=%d (+%d) progress=%.0f%%",
		ts, okStyle.Render("PASS"), r.TargetID,
		r.CurrentViews, r.DeltaViews, r.CurrentLikes, r.DeltaLikes, r.Progress*100)
	if r.IsComplete {
		line += " " + okStyle.Render("complete")
	}
	return line
}

func (m Model) View() string {
	divider := dimStyle.Render(strings.Repeat("─", max(m.width, 20)))
	sections := []string{
		titleStyle.Render("EngageOps Simulator"),
		m.table.View(),
		divider,
		"Pass results:",
		m.vp.View(),
		divider,
	}
	if m.stopDialog {
		sections = append(sections, "Stop simulation (Enter to confirm, Esc to cancel): "+m.stopInput.View())
	}
	footer := footerStyle.Render("q quit · r run pass · x stop target · s autoscroll · w wrap · j/k scroll")
	if m.lastErr != "" {
		footer += "\n" + failStyle.Render(wordwrap.String("error: "+m.lastErr, max(m.width, 40)))
	}
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

// Run starts the dashboard in the alternate screen until the user quits.
func Run(client *Client, poll time.Duration) error {
	p := tea.NewProgram(NewModel(client, poll), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
