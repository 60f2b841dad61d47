// Package tui provides the Bubble Tea live detection view.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/codeswitch/internal/detect"
	"github.com/verte-zerg/codeswitch/internal/model"
)

const (
	historyLimit = 50
	placeholder  = "Type Spanish, English or both..."
)

var (
	spanishStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	englishStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4FA3E0"))
	sharedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	unknownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cursorStyle  = unknownStyle.Underline(true)
	mixedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B37FEB")).Bold(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

type keyMap struct {
	Commit key.Binding
	Delete key.Binding
	Clear  key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Commit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "keep")),
		Delete: key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "delete")),
		Clear:  key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "clear")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Commit, k.Clear, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Commit, k.Delete, k.Clear, k.Quit}}
}

// Model implements the Bubble Tea detection UI. Every edit re-runs
// detection on the whole input.
type Model struct {
	detector  *detect.Detector
	threshold float64

	keys    keyMap
	help    help.Model
	history table.Model
	entries []model.Result

	width  int
	height int

	input     []rune
	result    model.Result
	hasResult bool
}

// NewModel constructs a live detection model.
func NewModel(d *detect.Detector, threshold float64) *Model {
	return &Model{
		detector:  d,
		threshold: threshold,
		keys:      defaultKeyMap(),
		help:      help.New(),
		history:   newHistoryTable(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.history.SetWidth(m.contentWidth())
		m.history.SetHeight(max(1, m.height/3))
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Commit):
			m.commit()
		case key.Matches(msg, m.keys.Clear):
			m.setInput(nil)
		case key.Matches(msg, m.keys.Delete):
			if len(m.input) > 0 {
				m.setInput(m.input[:len(m.input)-1])
			}
		case msg.Type == tea.KeySpace:
			m.setInput(append(m.input, ' '))
		case msg.Type == tea.KeyRunes:
			m.setInput(append(m.input, msg.Runes...))
		}
		return m, nil
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	content := m.renderInput()
	if len(m.entries) > 0 {
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", m.history.View())
	}
	footer := m.renderFooter()
	helpLine := m.help.View(m.keys)
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer + "\n" + helpLine
	}
	content = lipgloss.NewStyle().Width(m.contentWidth()).Render(content)
	if m.height < 4 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	helpRow := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, helpLine)
	return body + "\n" + footerLine + "\n" + helpRow
}

func (m *Model) contentWidth() int {
	return max(1, int(float64(m.width)*0.70))
}

func (m *Model) setInput(runes []rune) {
	m.input = runes
	if strings.TrimSpace(string(runes)) == "" {
		m.result = model.Result{}
		m.hasResult = false
		return
	}
	m.result = m.detector.Detect(string(runes), m.threshold)
	m.hasResult = true
}

func (m *Model) commit() {
	if !m.hasResult {
		return
	}
	m.entries = append([]model.Result{m.result}, m.entries...)
	if len(m.entries) > historyLimit {
		m.entries = m.entries[:historyLimit]
	}
	m.history.SetRows(historyRows(m.entries))
	m.setInput(nil)
}

func (m *Model) renderInput() string {
	if len(m.input) == 0 {
		return cursorStyle.Render(" ") + unknownStyle.Render(placeholder)
	}
	models := m.detector.Models()
	cov := coverage(m.input, models.DiscriminativeES, models.DiscriminativeEN, m.detector.Config().Extract)
	runes := buildStyledRunes(m.input, cov, true)
	if m.width == 0 {
		return renderStyledRunes(runes)
	}
	return wrapStyledRunes(runes, m.contentWidth())
}

func (m *Model) renderFooter() string {
	if !m.hasResult {
		return footerStyle.Render("Waiting for input")
	}
	r := m.result
	verdict := r.Verdict()
	if t := r.Type(); t != "" {
		verdict = fmt.Sprintf("%s (%s)", verdict, t)
	}
	segments := []string{
		mixedOr(r.IsSpanglish, verdict),
		spanishStyle.Render(fmt.Sprintf("ES %.1f%%", r.Proportions.Spanish)),
		englishStyle.Render(fmt.Sprintf("EN %.1f%%", r.Proportions.English)),
		footerStyle.Render(fmt.Sprintf("Confidence %.1f%%", r.Confidence)),
	}
	return strings.Join(segments, footerStyle.Render("  "))
}

func mixedOr(mixed bool, verdict string) string {
	if mixed {
		return mixedStyle.Render(verdict)
	}
	return footerStyle.Render(verdict)
}

func newHistoryTable() table.Model {
	columns := []table.Column{
		{Title: "Verdict", Width: 24},
		{Title: "ES %", Width: 6},
		{Title: "EN %", Width: 6},
		{Title: "Text", Width: 50},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(5),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Cell
	t.SetStyles(styles)
	return t
}

func historyRows(entries []model.Result) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, r := range entries {
		verdict := r.Verdict()
		if t := r.Type(); t != "" {
			verdict += " " + string(t)
		}
		rows = append(rows, table.Row{
			verdict,
			fmt.Sprintf("%.1f", r.Proportions.Spanish),
			fmt.Sprintf("%.1f", r.Proportions.English),
			r.Text,
		})
	}
	return rows
}

// Run starts the full-screen view and blocks until the user quits.
func Run(d *detect.Detector, threshold float64) error {
	program := tea.NewProgram(NewModel(d, threshold), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
