// Package tui is the terminal shell: the same create/dedupe runs as the
// web form, driven by text inputs with a live log view.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/semekork/spotify-playlist-Generator/controller"
	"github.com/semekork/spotify-playlist-Generator/pipeline"
)

// Runner is the slice of the controller the TUI drives.
type Runner interface {
	CreatePlaylist(ctx context.Context, source controller.Source, name string, sink pipeline.Sink) (*pipeline.BuildReport, error)
	Dedupe(ctx context.Context, playlistRef string, sink pipeline.Sink) (*pipeline.DedupeReport, error)
	AuthError() error
}

type viewState int

const (
	formView viewState = iota
	runView
	resultView
)

type runMode int

const (
	createMode runMode = iota
	dedupeMode
)

const (
	sourceField = iota
	nameField
	playlistField
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#1DB954")).Bold(true).MarginBottom(1)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Italic(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
)

type logLineMsg string

type runDoneMsg struct{ err error }

// chanSink forwards pipeline progress lines into the update loop.
type chanSink struct {
	ch chan string
}

func (s *chanSink) Append(line string) {
	s.ch <- line
}

// Model is the TUI application state.
type Model struct {
	ctx    context.Context
	runner Runner

	view   viewState
	mode   runMode
	inputs []textinput.Model
	focus  int

	logView  viewport.Model
	lines    []string
	logCh    chan string
	runErr   error
	width    int
	height   int
	sized    bool
}

// NewModel builds the TUI model around a controller.
func NewModel(ctx context.Context, runner Runner) *Model {
	inputs := make([]textinput.Model, 3)

	inputs[sourceField] = textinput.New()
	inputs[sourceField].Placeholder = "songs.csv, songs.txt or a YouTube / Apple Music URL"
	inputs[sourceField].Width = 60
	inputs[sourceField].Focus()

	inputs[nameField] = textinput.New()
	inputs[nameField].Placeholder = "My Mix"
	inputs[nameField].Width = 60

	inputs[playlistField] = textinput.New()
	inputs[playlistField].Placeholder = "https://open.spotify.com/playlist/..."
	inputs[playlistField].Width = 60

	return &Model{
		ctx:    ctx,
		runner: runner,
		inputs: inputs,
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.sized {
			m.logView = viewport.New(msg.Width-4, msg.Height-8)
			m.sized = true
		} else {
			m.logView.Width = msg.Width - 4
			m.logView.Height = msg.Height - 8
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case formView:
			return m.handleFormKeys(msg)
		case runView:
			// Runs are not cancellable mid-flight; keys only scroll the log.
			var cmd tea.Cmd
			m.logView, cmd = m.logView.Update(msg)
			return m, cmd
		case resultView:
			return m.handleResultKeys(msg)
		}

	case logLineMsg:
		m.appendLine(string(msg))
		return m, m.waitForLine()

	case runDoneMsg:
		m.runErr = msg.err
		m.view = resultView
		return m, nil
	}

	return m, nil
}

func (m *Model) View() string {
	switch m.view {
	case formView:
		return m.renderForm()
	case runView:
		return m.renderRun()
	case resultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "ctrl+t":
		m.toggleMode()
		return m, nil
	case "tab", "shift+tab", "down", "up":
		m.cycleFocus(msg.String() == "shift+tab" || msg.String() == "up")
		return m, nil
	case "enter":
		return m, m.startRun()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "r":
		m.view = formView
		m.lines = nil
		m.runErr = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

func (m *Model) toggleMode() {
	if m.mode == createMode {
		m.mode = dedupeMode
		m.setFocus(playlistField)
	} else {
		m.mode = createMode
		m.setFocus(sourceField)
	}
}

func (m *Model) cycleFocus(backwards bool) {
	fields := []int{sourceField, nameField}
	if m.mode == dedupeMode {
		fields = []int{playlistField}
	}

	pos := 0
	for i, f := range fields {
		if f == m.focus {
			pos = i
		}
	}
	if backwards {
		pos = (pos + len(fields) - 1) % len(fields)
	} else {
		pos = (pos + 1) % len(fields)
	}
	m.setFocus(fields[pos])
}

func (m *Model) setFocus(field int) {
	for i := range m.inputs {
		if i == field {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	m.focus = field
}

// startRun validates the form and launches the pipeline in a goroutine,
// streaming its log through logCh until the channel closes.
func (m *Model) startRun() tea.Cmd {
	if !m.sized {
		m.logView = viewport.New(76, 16)
		m.sized = true
	}

	m.logCh = make(chan string, 50)
	sink := &chanSink{ch: m.logCh}

	switch m.mode {
	case createMode:
		source := controller.Source{}
		raw := strings.TrimSpace(m.inputs[sourceField].Value())
		if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
			source.URL = raw
		} else {
			source.Path = raw
		}
		name := strings.TrimSpace(m.inputs[nameField].Value())
		if name == "" {
			m.appendLine("❌ Playlist name is required.")
			return nil
		}

		go func() {
			_, err := m.runner.CreatePlaylist(m.ctx, source, name, sink)
			m.runErr = err
			close(m.logCh)
		}()

	case dedupeMode:
		playlistRef := strings.TrimSpace(m.inputs[playlistField].Value())
		if playlistRef == "" {
			m.appendLine("❌ Playlist URL or ID is required.")
			return nil
		}

		go func() {
			_, err := m.runner.Dedupe(m.ctx, playlistRef, sink)
			m.runErr = err
			close(m.logCh)
		}()
	}

	m.view = runView
	m.lines = nil
	return m.waitForLine()
}

func (m *Model) waitForLine() tea.Cmd {
	return func() tea.Msg {
		line, ok := <-m.logCh
		if !ok {
			return runDoneMsg{err: m.runErr}
		}
		return logLineMsg(line)
	}
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	if m.sized {
		m.logView.SetContent(strings.Join(m.lines, "\n"))
		m.logView.GotoBottom()
	}
}

func (m *Model) renderForm() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Playlist Generator"))
	sb.WriteString("\n")

	if err := m.runner.AuthError(); err != nil {
		sb.WriteString(errStyle.Render("Spotify authentication failed. Runs are disabled."))
		sb.WriteString("\n\n")
	}

	if m.mode == createMode {
		sb.WriteString(labelStyle.Render("Song list file or URL"))
		sb.WriteString("\n" + m.inputs[sourceField].View() + "\n\n")
		sb.WriteString(labelStyle.Render("Playlist name"))
		sb.WriteString("\n" + m.inputs[nameField].View() + "\n\n")
		sb.WriteString(helpStyle.Render("enter run • tab next field • ctrl+t dedupe mode • esc quit"))
	} else {
		sb.WriteString(labelStyle.Render("Playlist URL or ID to deduplicate"))
		sb.WriteString("\n" + m.inputs[playlistField].View() + "\n\n")
		sb.WriteString(helpStyle.Render("enter run • ctrl+t create mode • esc quit"))
	}

	if len(m.lines) > 0 {
		sb.WriteString("\n\n" + errStyle.Render(m.lines[len(m.lines)-1]))
	}

	return sb.String()
}

func (m *Model) renderRun() string {
	title := titleStyle.Render("Running...")
	return fmt.Sprintf("%s\n%s", title, m.logView.View())
}

func (m *Model) renderResult() string {
	var title string
	if m.runErr != nil {
		title = errStyle.Render(fmt.Sprintf("Run failed: %v", m.runErr))
	} else {
		title = okStyle.Render("✓ Run complete")
	}

	log := strings.Join(m.lines, "\n")
	help := helpStyle.Render("r new run • q quit")
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, log, help)
}
