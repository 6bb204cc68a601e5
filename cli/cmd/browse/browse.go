// Package browse provides an interactive fuzzy-filtered viewer for the
// resolved environment.
package browse

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fireproofsocks/dotenvy/cli/cmd"
	"github.com/fireproofsocks/dotenvy/log"
)

const filterPrompt = "➜ "

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	matchStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// Browse opens an interactive viewer over the resolved environment.
// Typing filters variable names with fuzzy matching, Up/Down move the
// selection, and Enter prints the selected definition on exit.
type Browse struct {
	Height int `default:"15" help:"Maximum rows in the list view"`
}

// Run executes the browse command.
func (b *Browse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	e, err := cmd.Load(ctx)
	if err != nil {
		return err
	}

	log.TraceContext(ctx, "browse start",
		slog.Int("variable_count", e.Len()))

	m := newModel(ctx, e.Keys(), e.Map(), b.Height)

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithOutput(os.Stderr))

	final, err := p.Run()
	if err != nil {
		return err
	}

	// Print the accepted definition to stdout so it can be captured by
	// shell pipelines.
	if fm, ok := final.(model); ok && fm.accepted != "" {
		fmt.Fprintf(os.Stdout, "%s=%s\n", fm.accepted, fm.vars[fm.accepted])
	}

	return nil
}

// model is the Bubble Tea model for the browser.
type model struct {
	ctxFunc  func() context.Context
	input    textinput.Model
	keys     []string      // all variable names, sorted
	vars     map[string]string
	matches  fuzzy.Matches // current filter results
	cursor   int           // selected row within matches
	offset   int           // first visible row
	height   int           // maximum visible rows
	width    int           // terminal width for truncation
	accepted string        // key accepted with Enter, if any
	quitting bool
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	keys []string,
	vars map[string]string,
	height int,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(filterPrompt)
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = defaultWidth

	m := model{
		ctxFunc: func() context.Context { return ctx },
		input:   ti,
		keys:    keys,
		vars:    vars,
		height:  max(height, 1),
		width:   defaultWidth,
	}

	m.refilter()

	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(filterPrompt) - 2

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		if m.input.Value() != "" && msg.Type == tea.KeyCtrlC {
			m.input.SetValue("")
			m.refilter()

			return m, nil
		}

		m.quitting = true

		return m, tea.Quit

	case tea.KeyCtrlD:
		m.quitting = true

		return m, tea.Quit

	case tea.KeyEnter:
		if len(m.matches) > 0 {
			m.accepted = m.matches[m.cursor].Str
		}

		m.quitting = true

		return m, tea.Quit

	case tea.KeyUp:
		m.move(-1)

		return m, nil

	case tea.KeyDown:
		m.move(1)

		return m, nil

	case tea.KeyPgUp:
		m.move(-m.height)

		return m, nil

	case tea.KeyPgDown:
		m.move(m.height)

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	m.refilter()

	return m, cmd
}

// move adjusts the selection by delta rows, clamping to the match list and
// keeping the selection visible.
func (m *model) move(delta int) {
	if len(m.matches) == 0 {
		return
	}

	m.cursor = min(max(m.cursor+delta, 0), len(m.matches)-1)

	if m.cursor < m.offset {
		m.offset = m.cursor
	}

	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// refilter recomputes fuzzy matches for the current filter text and resets
// the selection.
func (m *model) refilter() {
	filter := strings.TrimSpace(m.input.Value())

	if filter == "" {
		// No filter: every key matches, in sorted order.
		m.matches = make(fuzzy.Matches, len(m.keys))
		for i, key := range m.keys {
			m.matches[i] = fuzzy.Match{Str: key, Index: i}
		}
	} else {
		m.matches = fuzzy.Find(filter, m.keys)
	}

	m.cursor = 0
	m.offset = 0
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	end := min(m.offset+m.height, len(m.matches))

	for i := m.offset; i < end; i++ {
		match := m.matches[i]
		line := renderMatch(match, m.vars[match.Str], m.width)

		if i == m.cursor {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(hintStyle.Render(
		fmt.Sprintf("%d/%d  Enter accept, Esc quit", len(m.matches), len(m.keys)),
	))
	b.WriteString("\n")

	return b.String()
}

// renderMatch renders one row with matched filter runes highlighted and the
// value truncated to fit the terminal width.
func renderMatch(match fuzzy.Match, value string, width int) string {
	var key strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			key.WriteString(matchStyle.Render(string(r)))
		} else {
			key.WriteString(keyStyle.Render(string(r)))
		}
	}

	avail := width - len(match.Str) - 4
	if avail < 0 {
		avail = 0
	}

	value = flatten(value)
	if len(value) > avail {
		value = value[:max(avail-1, 0)] + "…"
	}

	return key.String() + "=" + valueStyle.Render(value)
}

// flatten collapses newlines so multiline values occupy a single row.
func flatten(value string) string {
	return strings.ReplaceAll(value, "\n", "␤")
}
