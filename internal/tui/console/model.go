// ============================================================================
// calcscript - Arithmetic Scripting Playground
// ============================================================================
//
// Package:     console
// Description: Bubbletea model of the interactive console. The editor holds
//              a whole program; every run is a fresh session.
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/msto63/calcscript/foundation/script"
	mdwast "github.com/msto63/calcscript/foundation/script/ast"
	"github.com/msto63/calcscript/internal/history/store"
)

const maxRecall = 100

// Runner executes and parses programs
type Runner interface {
	Run(ctx context.Context, source store.Source, code string) (*script.Result, error)
	Parse(code string) ([]script.ParsedLine, error)
}

// Config holds console configuration
type Config struct {
	Runner  Runner
	Timeout time.Duration
	Version string
}

// Model is the Bubbletea model of the console
type Model struct {
	width   int
	height  int
	ready   bool
	running bool

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	entries []Entry
	runs    int
	faults  int
	lastErr error

	// Program recall
	recall      []string
	recallIndex int // -1 = editing a new program
	draft       string

	runner  Runner
	timeout time.Duration
	version string
}

// New creates a console model
func New(cfg Config) Model {
	ta := textarea.New()
	ta.Placeholder = "x = 5\nprint(x * 2)"
	ta.Focus()
	ta.CharLimit = 64 * 1024
	ta.SetWidth(80)
	ta.SetHeight(6)
	ta.ShowLineNumbers = true
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return Model{
		textarea:    ta,
		spinner:     sp,
		viewport:    viewport.New(80, 10),
		recallIndex: -1,
		runner:      cfg.Runner,
		timeout:     timeout,
		version:     cfg.Version,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, tea.EnterAltScreen)
}

// Entries returns the transcript
func (m Model) Entries() []Entry {
	return m.entries
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		footerHeight := m.textarea.Height() + 6
		viewportHeight := msg.Height - headerHeight - footerHeight
		if viewportHeight < 3 {
			viewportHeight = 3
		}

		m.viewport.Width = msg.Width - 4
		m.viewport.Height = viewportHeight
		m.textarea.SetWidth(msg.Width - 4)
		m.ready = true
		m.updateViewportContent()

	case spinner.TickMsg:
		if m.running {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case runResultMsg:
		m.running = false
		m.runs++
		m.lastErr = msg.err
		if msg.err != nil {
			m.faults++
			m.addEntry(Entry{Kind: EntryFault, Content: "Error: " + script.Describe(msg.err)})
		} else if msg.output == "" {
			m.addEntry(Entry{Kind: EntryNotice, Content: "Code executed successfully but no output.", Duration: msg.duration})
		} else {
			m.addEntry(Entry{Kind: EntryOutput, Content: strings.TrimSuffix(msg.output, "\n"), Duration: msg.duration})
		}
		m.textarea.Focus()

	case parseResultMsg:
		if msg.err != nil {
			m.addEntry(Entry{Kind: EntryFault, Content: "Error: " + script.Describe(msg.err)})
		} else {
			m.addEntry(Entry{Kind: EntryTree, Content: msg.tree})
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyCtrlL:
		m.entries = nil
		m.updateViewportContent()
		return m, nil

	case tea.KeyPgUp:
		m.viewport.ViewUp()
		return m, nil

	case tea.KeyPgDown:
		m.viewport.ViewDown()
		return m, nil
	}

	if m.running {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlR:
		code := m.textarea.Value()
		m.remember(code)
		m.addEntry(Entry{Kind: EntryProgram, Content: code})
		m.running = true
		m.textarea.Blur()
		return m, tea.Batch(m.spinner.Tick, m.run(code))

	case tea.KeyCtrlT:
		code := m.textarea.Value()
		return m, m.parse(code)

	case tea.KeyCtrlP:
		if len(m.recall) > 0 {
			if m.recallIndex == -1 {
				m.draft = m.textarea.Value()
				m.recallIndex = len(m.recall) - 1
			} else if m.recallIndex > 0 {
				m.recallIndex--
			}
			m.textarea.SetValue(m.recall[m.recallIndex])
		}
		return m, nil

	case tea.KeyCtrlN:
		if m.recallIndex != -1 {
			if m.recallIndex < len(m.recall)-1 {
				m.recallIndex++
				m.textarea.SetValue(m.recall[m.recallIndex])
			} else {
				m.recallIndex = -1
				m.textarea.SetValue(m.draft)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// remember appends code to the recall list unless it repeats the last entry
func (m *Model) remember(code string) {
	m.recallIndex = -1
	m.draft = ""
	if strings.TrimSpace(code) == "" {
		return
	}
	if n := len(m.recall); n > 0 && m.recall[n-1] == code {
		return
	}
	m.recall = append(m.recall, code)
	if len(m.recall) > maxRecall {
		m.recall = m.recall[len(m.recall)-maxRecall:]
	}
}

func (m *Model) addEntry(e Entry) {
	e.Timestamp = time.Now()
	m.entries = append(m.entries, e)
	m.updateViewportContent()
	m.viewport.GotoBottom()
}

func (m Model) run(code string) tea.Cmd {
	runner, timeout := m.runner, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		res, err := runner.Run(ctx, store.SourceConsole, code)
		if err != nil {
			return runResultMsg{err: err}
		}
		return runResultMsg{output: res.Output, statements: res.Statements, duration: res.Duration}
	}
}

func (m Model) parse(code string) tea.Cmd {
	runner := m.runner
	return func() tea.Msg {
		lines, err := runner.Parse(code)
		if err != nil {
			return parseResultMsg{err: err}
		}

		var b strings.Builder
		for _, line := range lines {
			for _, stmt := range line.Statements {
				fmt.Fprintf(&b, "line %d\n", line.Number)
				b.WriteString(mdwast.TreeString(stmt))
			}
		}
		if b.Len() == 0 {
			return parseResultMsg{tree: "(empty program)"}
		}
		return parseResultMsg{tree: strings.TrimSuffix(b.String(), "\n")}
	}
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading console..."
	}

	var b strings.Builder

	header := LogoStyle.Render(Logo)
	if m.version != "" {
		header += "  " + MetaStyle.Render("v"+m.version)
	}
	b.WriteString(TitlePanelStyle.Width(m.width - 4).Render(header))
	b.WriteString("\n")

	b.WriteString(TranscriptPanelStyle.Width(m.width - 2).Render(m.viewport.View()))
	b.WriteString("\n")

	if m.running {
		b.WriteString(EditorStyle.Width(m.width - 2).Render(m.spinner.View() + NoticeStyle.Render(" running...")))
	} else {
		b.WriteString(EditorStyle.Width(m.width - 2).Render(m.textarea.View()))
	}
	b.WriteString("\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")

	b.WriteString(HelpStyle.Render(strings.Join([]string{
		RenderKeyHint("Ctrl+R", "run"),
		RenderKeyHint("Ctrl+T", "tree"),
		RenderKeyHint("Ctrl+P/N", "recall"),
		RenderKeyHint("Ctrl+L", "clear"),
		RenderKeyHint("Ctrl+C", "quit"),
	}, "  ")))

	return b.String()
}

func (m Model) renderStatusBar() string {
	left := MetaStyle.Render(fmt.Sprintf("runs: %d  faults: %d", m.runs, m.faults))

	var right string
	switch {
	case m.runs == 0:
		right = MetaStyle.Render("ready")
	case m.lastErr != nil:
		right = StatusFaultStyle.Render("fault")
	default:
		right = StatusOKStyle.Render("ok")
	}

	space := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if space < 2 {
		space = 2
	}
	return StatusBarStyle.Width(m.width - 2).Render(left + strings.Repeat(" ", space) + right)
}

// updateViewportContent renders the transcript into the viewport
func (m *Model) updateViewportContent() {
	width := m.width - 6
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	for _, e := range m.entries {
		switch e.Kind {
		case EntryProgram:
			content.WriteString(LabelStyle.Render("program") + "  " + MetaStyle.Render(e.Timestamp.Format("15:04:05")))
			content.WriteString("\n")
			content.WriteString(ProgramStyle.Width(width).Render(e.Content))
		case EntryOutput:
			content.WriteString(OutputStyle.Render(e.Content))
			if e.Duration > 0 {
				content.WriteString("\n" + MetaStyle.Render(fmt.Sprintf("  (%s)", e.Duration.Round(time.Microsecond))))
			}
		case EntryFault:
			content.WriteString(FaultStyle.Render(e.Content))
		case EntryTree:
			content.WriteString(TreeStyle.Render(e.Content))
		case EntryNotice:
			content.WriteString(NoticeStyle.Render(e.Content))
		}
		content.WriteString("\n\n")
	}

	m.viewport.SetContent(content.String())
}
