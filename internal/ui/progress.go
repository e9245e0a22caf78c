package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"gramc/internal/buildpipeline"
)

type progressModel struct {
	title      string
	events     <-chan buildpipeline.Event
	spinner    spinner.Model
	prog       progress.Model
	items      []fileItem
	index      map[string]int
	stageLabel string
	width      int
	done       bool
}

type fileItem struct {
	path     string
	status   string
	stage    buildpipeline.Stage
	depth    int
	finished bool
}

type eventMsg buildpipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders compile progress.
// Files are the requested grammars; cascaded grammars are added as they start.
func NewProgressModel(title string, files []string, events <-chan buildpipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]fileItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, fileItem{path: file, status: "queued", depth: 1})
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
		cmd := m.applyEvent(buildpipeline.Event(msg))
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
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.stageLabel != "" {
		header = fmt.Sprintf("%s (%s)", header, m.stageLabel)
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	const statusWidth = 12
	for _, item := range m.items {
		indent := strings.Repeat("  ", max(item.depth-1, 0))
		nameWidth := max(m.width-statusWidth-4-len(indent), 20)
		name := truncate(item.path, nameWidth)
		status := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		fmt.Fprintf(&b, "  %s %s%s\n", status, indent, name)
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

func (m *progressModel) applyEvent(ev buildpipeline.Event) tea.Cmd {
	if ev.File == "" {
		if label := stageLabel(ev.Stage); label != "" {
			m.stageLabel = label
		}
		return nil
	}
	idx, ok := m.index[ev.File]
	if !ok {
		if ev.Depth <= 1 {
			return nil
		}
		idx = len(m.items)
		m.items = append(m.items, fileItem{path: ev.File, status: "queued", depth: ev.Depth})
		m.index[ev.File] = idx
	}
	item := &m.items[idx]
	item.stage = ev.Stage
	switch {
	case ev.Status == buildpipeline.StatusWorking:
		item.status = stageLabel(ev.Stage)
		item.finished = false
	case finalEvent(ev):
		item.status = string(ev.Status)
		item.finished = true
	case ev.Status == buildpipeline.StatusQueued:
		item.status = "queued"
	}
	return m.prog.SetPercent(m.percent())
}

// finalEvent reports whether ev ends the compile of its file: the report
// stage finishing, or configuration failing before the tool ran.
func finalEvent(ev buildpipeline.Event) bool {
	switch ev.Status {
	case buildpipeline.StatusDone:
		return ev.Stage == buildpipeline.StageReport
	case buildpipeline.StatusError:
		return ev.Stage == buildpipeline.StageReport || ev.Stage == buildpipeline.StageConfigure
	}
	return false
}

func (m *progressModel) percent() float64 {
	total := 0
	sum := 0.0
	for _, item := range m.items {
		if item.depth > 1 {
			continue
		}
		total++
		if item.finished {
			sum += 1.0
		} else {
			sum += progressFromStage(item.stage)
		}
	}
	if total == 0 {
		return 0
	}
	return sum / float64(total)
}

func progressFromStage(stage buildpipeline.Stage) float64 {
	switch stage {
	case buildpipeline.StageConfigure:
		return 0.05
	case buildpipeline.StageSnapshot:
		return 0.1
	case buildpipeline.StageInvoke:
		return 0.3
	case buildpipeline.StageDiff:
		return 0.6
	case buildpipeline.StageAnnotate:
		return 0.7
	case buildpipeline.StageCascade:
		return 0.8
	case buildpipeline.StageReport:
		return 0.95
	default:
		return 0.0
	}
}

func stageLabel(stage buildpipeline.Stage) string {
	switch stage {
	case buildpipeline.StageConfigure:
		return "configuring"
	case buildpipeline.StageSnapshot, buildpipeline.StageDiff:
		return "scanning"
	case buildpipeline.StageInvoke:
		return "running"
	case buildpipeline.StageAnnotate:
		return "annotating"
	case buildpipeline.StageCascade:
		return "cascading"
	case buildpipeline.StageReport:
		return "reporting"
	default:
		return ""
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "queued", "":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
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
	return runewidth.Truncate(value, width-3, "...")
}
