// Package ui renders the progress of a directory run in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"phphint/internal/driver"
)

// Status labels shown next to each file.
const (
	StatusQueued   = "queued"
	StatusClean    = "clean"
	StatusFindings = "findings"
	StatusCached   = "cached"
	StatusError    = "error"
)

type progressModel struct {
	title    string
	events   <-chan driver.Progress
	spinner  spinner.Model
	prog     progress.Model
	items    []fileItem
	index    map[string]int
	finished int
	findings int
	width    int
	done     bool
}

type fileItem struct {
	path     string
	status   string
	findings int
}

type eventMsg driver.Progress
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model listing files with their
// analysis status. The model quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Progress) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]fileItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, fileItem{path: file, status: StatusQueued})
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.Progress(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s (%d/%d files, %d findings)", m.title, m.finished, len(m.items), m.findings)
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := max(m.width-statusWidth-10, 20)
	for _, item := range m.items {
		name := truncate(item.path, nameWidth)
		status := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		if item.findings > 0 {
			name = fmt.Sprintf("%s (%d)", name, item.findings)
		}
		b.WriteString("  ")
		b.WriteString(status)
		b.WriteString(" ")
		b.WriteString(name)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.Progress) tea.Cmd {
	idx, ok := m.index[ev.Path]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	if item.status == StatusQueued {
		m.finished++
	}
	m.findings += ev.Findings - item.findings
	item.findings = ev.Findings
	item.status = statusLabel(ev)
	return m.prog.SetPercent(float64(m.finished) / float64(len(m.items)))
}

func statusLabel(ev driver.Progress) string {
	switch {
	case ev.Err != nil:
		return StatusError
	case ev.Cached:
		return StatusCached
	case ev.Findings > 0:
		return StatusFindings
	default:
		return StatusClean
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case StatusClean, StatusCached:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case StatusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case StatusFindings:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
