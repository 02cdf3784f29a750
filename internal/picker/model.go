// pattern: Imperative Shell

package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"projmux/internal/logging"
)

// Header is shown under the prompt.
const Header = "Select directory or session"

const sessionPrefix = "session:"

// chromeLines counts the prompt, header and help rows around the list.
const chromeLines = 3

// Model is the bubbletea model behind the picker. The prompt is on top and
// the best match is listed first.
type Model struct {
	input      textinput.Model
	candidates []string
	matches    []int
	cursor     int
	offset     int
	width      int
	height     int
	styles     *Styles
	logger     *logging.ScopedLogger

	done     bool
	selected []string
}

// NewModel creates a picker model over candidates with an initial query.
func NewModel(candidates []string, query string, styles *Styles, logger *logging.ScopedLogger) Model {
	if styles == nil {
		styles = NewStyles("")
	}
	if logger == nil {
		logger = logging.NopLogger()
	}

	input := textinput.New()
	input.Prompt = "> "
	input.PromptStyle = styles.PromptStyle()
	input.SetValue(query)
	input.CursorEnd()
	input.Focus()

	m := Model{
		input:      input,
		candidates: candidates,
		width:      80,
		height:     24,
		styles:     styles,
		logger:     logger,
	}
	m.refilter()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-len(m.input.Prompt)-1, 1)
		m.clampOffset()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.logger.Debug("picker aborted")
			m.done = true
			m.selected = nil
			return m, tea.Quit
		case "enter":
			m.done = true
			m.selected = m.choose()
			m.logger.Debug("picker accepted", "selection", m.selected)
			return m, tea.Quit
		case "up", "ctrl+p", "ctrl+k":
			m.move(-1)
			return m, nil
		case "down", "ctrl+n", "ctrl+j", "tab":
			m.move(1)
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.refilter()
	}
	return m, cmd
}

// choose returns the highlighted candidate, or the raw query when nothing
// matches. An empty query with no match selects nothing.
func (m Model) choose() []string {
	if len(m.matches) > 0 {
		return []string{m.candidates[m.matches[m.cursor]]}
	}
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return nil
	}
	return []string{query}
}

func (m *Model) refilter() {
	m.matches = Filter(m.candidates, m.input.Value())
	m.cursor = 0
	m.offset = 0
}

func (m *Model) move(delta int) {
	if len(m.matches) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.matches) {
		m.cursor = len(m.matches) - 1
	}
	m.clampOffset()
}

func (m *Model) listHeight() int {
	return max(m.height-chromeLines, 1)
}

func (m *Model) clampOffset() {
	rows := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

// Done reports whether the user accepted or aborted.
func (m Model) Done() bool {
	return m.done
}

// Selection returns the accepted line, or nil if the picker was aborted.
func (m Model) Selection() []string {
	return m.selected
}

// Query returns the current query text.
func (m Model) Query() string {
	return m.input.Value()
}

// Matches returns the candidates matching the current query, best first.
func (m Model) Matches() []string {
	out := make([]string, len(m.matches))
	for i, idx := range m.matches {
		out[i] = m.candidates[idx]
	}
	return out
}

// Cursor returns the index of the highlighted match.
func (m Model) Cursor() int {
	return m.cursor
}

func (m Model) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")
	count := m.styles.CountStyle().Render(fmt.Sprintf("  %d/%d", len(m.matches), len(m.candidates)))
	b.WriteString(m.styles.HeaderStyle().Render(Header) + count)
	b.WriteString("\n")

	rows := m.listHeight()
	end := min(m.offset+rows, len(m.matches))
	for i := m.offset; i < end; i++ {
		line := ansi.Truncate(m.candidates[m.matches[i]], max(m.width-2, 1), "…")
		if i == m.cursor {
			b.WriteString(m.styles.SelectedStyle().Render("▌ " + line))
		} else if strings.HasPrefix(line, sessionPrefix) {
			b.WriteString("  " + m.styles.SessionStyle().Render(line))
		} else {
			b.WriteString("  " + m.styles.ItemStyle().Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.styles.HelpStyle().Render("enter: select  esc: cancel  ↑/↓: move"))
	return b.String()
}
