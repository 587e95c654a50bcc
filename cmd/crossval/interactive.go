package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/wippyai/crossval/serializer"
	"github.com/wippyai/crossval/stream"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type keyMap struct {
	Run  key.Binding
	Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding { return []key.Binding{k.Run, k.Quit} }

func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var keys = keyMap{
	Run:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "re-run")),
	Quit: key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
}

type interactiveModel struct {
	err     error
	app     *app
	session *stream.Session
	input   textarea.Model
	output  viewport.Model
	help    help.Model
	lines   []string
	status  string
	gen     int // current session generation
	editSeq int // last edit, for debouncing
	width   int
	height  int
}

type debounceMsg struct {
	seq int
}

type snippetMsg struct {
	snip stream.Snippet
	gen  int
}

type sessionDoneMsg struct {
	err error
	gen int
}

func newInteractiveModel(a *app, src string) *interactiveModel {
	ta := textarea.New()
	ta.SetValue(src)
	ta.ShowLineNumbers = true
	ta.Placeholder = "JavaScript value"
	ta.Focus()

	return &interactiveModel{
		app:    a,
		input:  ta,
		output: viewport.New(40, 10),
		help:   help.New(),
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.process())
}

// process cancels the running session and serializes the current input.
// A failure keeps the previous output on screen.
func (m *interactiveModel) process() tea.Cmd {
	if m.session != nil {
		m.session.Cancel()
		m.session = nil
	}
	m.gen++

	start := time.Now()
	s, err := m.app.start(context.Background(), m.input.Value())
	if err != nil {
		m.err = err
		m.status = "error"
		m.app.log.Debug("re-run failed", zap.Error(err))
		return nil
	}
	m.err = nil
	m.session = s
	m.lines = m.lines[:0]
	m.status = "streaming"
	m.refresh()
	m.app.log.Debug("re-run", zap.Int("gen", m.gen), zap.Duration("eval", time.Since(start)))
	return waitSnippet(m.gen, s)
}

func waitSnippet(gen int, s *stream.Session) tea.Cmd {
	return func() tea.Msg {
		snip, ok := <-s.Snippets()
		if !ok {
			return sessionDoneMsg{gen: gen, err: s.Err()}
		}
		return snippetMsg{gen: gen, snip: snip}
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			if m.session != nil {
				m.session.Cancel()
			}
			return m, tea.Quit
		case key.Matches(msg, keys.Run):
			return m, m.process()
		}
		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != before {
			m.editSeq++
			seq := m.editSeq
			return m, tea.Batch(cmd, tea.Tick(m.app.cfg.Debounce, func(time.Time) tea.Msg {
				return debounceMsg{seq: seq}
			}))
		}
		return m, cmd

	case debounceMsg:
		if msg.seq == m.editSeq {
			return m, m.process()
		}
		return m, nil

	case snippetMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.snip.Initial {
			m.lines = append(m.lines, headerStyle.Render(serializer.CrossReferenceHeader()))
		}
		m.lines = append(m.lines, codeStyle.Render(msg.snip.Code+";"))
		m.refresh()
		return m, waitSnippet(msg.gen, m.session)

	case sessionDoneMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.session = nil
		m.status = "done"
		if msg.err != nil {
			m.err = msg.err
			m.status = "failed"
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		paneWidth := msg.Width/2 - 2
		paneHeight := msg.Height - 6
		if paneWidth < 10 {
			paneWidth = 10
		}
		if paneHeight < 3 {
			paneHeight = 3
		}
		m.input.SetWidth(paneWidth)
		m.input.SetHeight(paneHeight)
		m.output.Width = paneWidth
		m.output.Height = paneHeight
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) refresh() {
	m.output.SetContent(strings.Join(m.lines, "\n"))
	m.output.GotoBottom()
}

func (m *interactiveModel) View() string {
	left := paneStyle.Render(titleStyle.Render("Input") + "\n" + m.input.View())
	right := paneStyle.Render(titleStyle.Render("Output") + "\n" + m.output.View())

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else {
		b.WriteString(statusStyle.Render(fmt.Sprintf("%s • %d lines", m.status, len(m.lines))))
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(keys.ShortHelp()))
	return b.String()
}

// runInteractive owns the terminal, so logs are redirected to a file.
func runInteractive(a *app, src string) error {
	if a.cfg.LogFile == "" {
		cfg := *a.cfg
		cfg.LogFile = filepath.Join(os.TempDir(), "crossval.log")
		log, err := newLogger(&cfg)
		if err != nil {
			return err
		}
		defer log.Sync()
		a.log = log
		setLoggers(log)
	}

	p := tea.NewProgram(newInteractiveModel(a, src), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
