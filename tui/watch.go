// Package tui renders pipeline progress in the terminal for interactive
// runs. The model is a thin consumer of StageEvents; all real work happens
// in the pipeline goroutine.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"briefcast/types"
)

const (
	colorPrimary   = "#7D56F4"
	colorSuccess   = "#04B575"
	colorError     = "#FF5555"
	colorInfo      = "#626262"
	colorHighlight = "#FAFAFA"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrimary)).
			MarginTop(1).
			MarginBottom(1)

	stageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSuccess))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorError))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorInfo))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorPrimary)).
			Padding(1, 2)

	highlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorHighlight)).
			Background(lipgloss.Color(colorPrimary)).
			Padding(0, 1)
)

const maxLogLines = 8

// resultMsg carries the run outcome into the model.
type resultMsg struct {
	result *types.Result
	err    error
}

// Model displays one pipeline run.
type Model struct {
	events <-chan types.StageEvent

	stage   types.Stage
	detail  string
	current int
	total   int
	logs    []string

	result *types.Result
	err    error
	done   bool
}

// NewModel builds a watch model over an event channel.
func NewModel(events <-chan types.StageEvent) Model {
	return Model{events: events, stage: types.StageScript}
}

// Finish delivers the run outcome to a running program.
func Finish(p *tea.Program, result *types.Result, err error) {
	p.Send(resultMsg{result: result, err: err})
}

func (m Model) Init() tea.Cmd {
	return m.waitForEvent()
}

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return ev
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case types.StageEvent:
		m.stage = msg.Stage
		m.detail = msg.Detail
		m.current = msg.Current
		m.total = msg.Total
		m.logs = append(m.logs, fmt.Sprintf("%s  %s", msg.At.Format("15:04:05"), msg.Detail))
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		return m, m.waitForEvent()
	case resultMsg:
		m.result = msg.result
		m.err = msg.err
		m.done = true
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🎬 briefcast"))
	b.WriteString("\n\n")

	switch {
	case m.done && m.err != nil:
		b.WriteString(errorStyle.Render("❌ " + m.err.Error()))
		b.WriteString("\n\n")
	case m.done:
		b.WriteString(boxStyle.Render(Summary(m.result)))
		b.WriteString("\n\n")
	default:
		line := fmt.Sprintf("⏳ %s", m.stage)
		if m.total > 0 {
			line += fmt.Sprintf("  [%d/%d]", m.current, m.total)
		}
		b.WriteString(stageStyle.Render(line))
		b.WriteString("\n\n")
	}

	for _, l := range m.logs {
		b.WriteString(infoStyle.Render("  " + l))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.done {
		b.WriteString(highlightStyle.Render("Press 'q' to exit"))
	} else {
		b.WriteString(infoStyle.Render("Press 'q' or Ctrl+C to quit"))
	}
	return b.String()
}

// Summary renders the run outcome as a plain block, reused by both the watch
// view and the non-interactive run summary.
func Summary(r *types.Result) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(highlightStyle.Render("Render complete"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Video:    %s\n", r.VideoPath)
	fmt.Fprintf(&b, "Audio:    %s\n", r.AudioPath)
	fmt.Fprintf(&b, "Duration: %.1fs across %d slide(s)\n", r.Duration, r.Slides)
	fmt.Fprintf(&b, "Elapsed:  %s\n", r.Elapsed.Round(10*time.Millisecond))
	if r.Fallbacks > 0 {
		fmt.Fprintf(&b, "Generated backgrounds: %d\n", r.Fallbacks)
	}
	if r.SilentTTS {
		b.WriteString(errorStyle.Render("Narration fell back to silence\n"))
	}
	if r.StaticBody {
		b.WriteString(errorStyle.Render("Body fell back to a static frame\n"))
	}
	if r.Published != "" {
		fmt.Fprintf(&b, "Published: %s\n", r.Published)
	}
	return strings.TrimRight(b.String(), "\n")
}
