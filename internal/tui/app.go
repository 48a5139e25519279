package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stride-cli/internal/config"
	"stride-cli/internal/model"
	"stride-cli/internal/slots"
	"stride-cli/internal/state"
)

type view int

const (
	viewDashboard view = iota
	viewWeek
	viewDay
)

type rowKind int

const (
	rowHeading rowKind = iota
	rowGoal
	rowMilestone
	rowWeeklyGoal
	rowTask
)

// row is one selectable (or decorative) line of the active view. Keeping the
// id and kind beside the rendered text lets key handlers act on whatever the
// cursor is on without re-deriving the layout.
type row struct {
	kind rowKind
	id   string
	text string
}

func (r row) selectable() bool { return r.kind != rowHeading }

type asyncErrMsg struct{ err error }

type opDoneMsg struct{ err error }

type appModel struct {
	coord *state.Coordinator

	width  int
	height int

	view view
	week int
	day  int

	cursor        map[view]int
	showCompleted bool

	editing bool
	editID  string
	input   textinput.Model

	detail   bool
	detailVP viewport.Model

	errText string
}

func newAppModel(coord *state.Coordinator) appModel {
	in := textinput.New()
	in.CharLimit = 200
	return appModel{
		coord:  coord,
		view:   viewDashboard,
		week:   1,
		day:    1,
		cursor: map[view]int{},
		input:  in,
	}
}

// Run starts the interactive program. Pending debounced writes are flushed on
// the way out so a quick edit-then-quit still lands.
func Run(coord *state.Coordinator, cfg *config.Config) error {
	glyphPref := ""
	if cfg != nil && cfg.TUI != nil {
		glyphPref = cfg.TUI.Glyphs
	}
	applyGlyphPreference(glyphPref)

	m := newAppModel(coord)
	if cfg != nil && cfg.TUI != nil {
		m.showCompleted = cfg.TUI.ShowCompleted
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	coord.SetOnAsyncError(func(err error) {
		p.Send(asyncErrMsg{err: err})
	})

	_, err := p.Run()
	coord.SetOnAsyncError(nil)
	coord.FlushPending()
	return err
}

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) rows() []row {
	s := m.coord.Store().View()
	switch m.view {
	case viewWeek:
		return weekRows(s, m.week)
	case viewDay:
		return dayRows(s, m.week, m.day)
	default:
		return dashboardRows(s, m.week, m.showCompleted)
	}
}

func (m *appModel) clampCursor(rows []row) {
	c := m.cursor[m.view]
	if c >= len(rows) {
		c = len(rows) - 1
	}
	if c < 0 {
		c = 0
	}
	// Land on a selectable row when possible.
	for c < len(rows) && !rows[c].selectable() {
		c++
	}
	if c >= len(rows) {
		c = 0
	}
	m.cursor[m.view] = c
}

func (m *appModel) moveCursor(rows []row, delta int) {
	c := m.cursor[m.view]
	for {
		c += delta
		if c < 0 || c >= len(rows) {
			return
		}
		if rows[c].selectable() {
			m.cursor[m.view] = c
			return
		}
	}
}

func (m appModel) current(rows []row) (row, bool) {
	c := m.cursor[m.view]
	if c < 0 || c >= len(rows) || !rows[c].selectable() {
		return row{}, false
	}
	return rows[c], true
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detailVP.Width = msg.Width - 4
		m.detailVP.Height = msg.Height - 6
		return m, nil

	case asyncErrMsg:
		m.errText = "save failed, changes reverted: " + msg.err.Error()
		return m, nil

	case opDoneMsg:
		if msg.err != nil {
			m.errText = msg.err.Error()
		} else {
			m.errText = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		if m.detail {
			return m.updateDetail(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m appModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.input.Blur()
		return m, nil
	case "enter":
		m.editing = false
		m.input.Blur()
		title := strings.TrimSpace(m.input.Value())
		if title != "" {
			if err := m.coord.SetTaskTitle(m.editID, title); err != nil {
				m.errText = err.Error()
			}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	// Each keystroke lands locally right away; the write coalesces.
	if t := strings.TrimSpace(m.input.Value()); t != "" {
		_ = m.coord.SetTaskTitle(m.editID, t)
	}
	return m, cmd
}

func (m appModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "q":
		m.detail = false
		return m, nil
	}
	var cmd tea.Cmd
	m.detailVP, cmd = m.detailVP.Update(msg)
	return m, cmd
}

func (m appModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.rows()
	m.clampCursor(rows)

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "tab":
		m.view = (m.view + 1) % 3
		return m, nil
	case "1":
		m.view = viewDashboard
		return m, nil
	case "2":
		m.view = viewWeek
		return m, nil
	case "3":
		m.view = viewDay
		return m, nil

	case "up", "k":
		m.moveCursor(rows, -1)
		return m, nil
	case "down", "j":
		m.moveCursor(rows, 1)
		return m, nil

	case "left", "h":
		if m.view == viewDay {
			if m.day > 1 {
				m.day--
			}
		} else if m.week > 1 {
			m.week--
		}
		return m, nil
	case "right", "l":
		if m.view == viewDay {
			if m.day < 7 {
				m.day++
			}
		} else if m.week < model.PlanWeeks {
			m.week++
		}
		return m, nil
	case "shift+left":
		if m.week > 1 {
			m.week--
		}
		return m, nil
	case "shift+right":
		if m.week < model.PlanWeeks {
			m.week++
		}
		return m, nil

	case "c":
		m.showCompleted = !m.showCompleted
		return m, nil

	case "r":
		return m, m.reloadCmd()

	case " ":
		if r, ok := m.current(rows); ok {
			return m, m.toggleCmd(r)
		}
		return m, nil

	case "p":
		if r, ok := m.current(rows); ok && r.kind == rowTask {
			if _, err := m.coord.CyclePriority(r.id); err != nil {
				m.errText = err.Error()
			}
		}
		return m, nil

	case "+", "=":
		return m.adjustProgress(rows, 5)
	case "-":
		return m.adjustProgress(rows, -5)

	case "K":
		return m, m.reorderCmd(rows, -1)
	case "J":
		return m, m.reorderCmd(rows, 1)

	case "s":
		if m.view == viewDay {
			if r, ok := m.current(rows); ok && r.kind == rowTask {
				return m, m.cycleLaneCmd(r.id)
			}
		}
		return m, nil

	case "e":
		if r, ok := m.current(rows); ok && r.kind == rowTask {
			if t, found := m.coord.Store().View().FindTask(r.id); found {
				m.editing = true
				m.editID = t.ID
				m.input.SetValue(t.Title)
				m.input.CursorEnd()
				m.input.Focus()
			}
		}
		return m, nil

	case "enter":
		if r, ok := m.current(rows); ok && r.kind == rowTask {
			if t, found := m.coord.Store().View().FindTask(r.id); found {
				m.detail = true
				m.detailVP.SetContent(renderTaskDetail(t, m.detailVP.Width))
				m.detailVP.GotoTop()
			}
		}
		return m, nil
	}
	return m, nil
}

func (m appModel) adjustProgress(rows []row, delta int) (tea.Model, tea.Cmd) {
	r, ok := m.current(rows)
	if !ok || r.kind != rowGoal {
		return m, nil
	}
	g, found := m.coord.Store().View().FindGoal(r.id)
	if !found {
		return m, nil
	}
	next := g.ProgressPercentage + delta
	if next < 0 {
		next = 0
	}
	if next > 100 {
		next = 100
	}
	if err := m.coord.SetGoalProgress(g.ID, next); err != nil {
		m.errText = err.Error()
	}
	return m, nil
}

func (m appModel) toggleCmd(r row) tea.Cmd {
	coord := m.coord
	switch r.kind {
	case rowTask:
		t, ok := coord.Store().View().FindTask(r.id)
		if !ok {
			return nil
		}
		next := model.TaskCompleted
		if t.Status == model.TaskCompleted {
			next = model.TaskTodo
		}
		return func() tea.Msg {
			_, err := coord.SetTaskStatus(context.Background(), r.id, next)
			return opDoneMsg{err: err}
		}
	case rowMilestone:
		return func() tea.Msg {
			_, err := coord.ToggleMilestone(context.Background(), r.id)
			return opDoneMsg{err: err}
		}
	}
	return nil
}

// reorderCmd swaps the selected task with its neighbor in the active
// ordering and pushes the whole new order through a batch reposition.
func (m appModel) reorderCmd(rows []row, delta int) tea.Cmd {
	r, ok := m.current(rows)
	if !ok || r.kind != rowTask {
		return nil
	}
	s := m.coord.Store().View()

	var tasks []model.Task
	if m.view == viewDay {
		tasks = s.DayTasks(m.week, m.day)
	} else {
		tasks = s.WeekTasks(m.week)
	}
	idx := -1
	for i, t := range tasks {
		if t.ID == r.id {
			idx = i
			break
		}
	}
	other := idx + delta
	if idx < 0 || other < 0 || other >= len(tasks) {
		return nil
	}
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	ids[idx], ids[other] = ids[other], ids[idx]

	coord := m.coord
	week, day, inDay := m.week, m.day, m.view == viewDay
	return func() tea.Msg {
		var err error
		if inDay {
			err = coord.ReorderDay(context.Background(), week, day, ids)
		} else {
			err = coord.ReorderWeek(context.Background(), week, ids)
		}
		return opDoneMsg{err: err}
	}
}

// cycleLaneCmd moves the selected task into the next lane down (wrapping),
// which also syncs its priority. A full target lane surfaces as an error
// instead of silently downgrading.
func (m appModel) cycleLaneCmd(id string) tea.Cmd {
	s := m.coord.Store().View()
	laneOf, _ := state.AssignLanes(s.DayTasks(m.week, m.day))
	all := slots.All()
	next := all[0]
	for i, slot := range all {
		if laneOf[id] == slot {
			next = all[(i+1)%len(all)]
			break
		}
	}
	coord, week, day := m.coord, m.week, m.day
	return func() tea.Msg {
		_, err := coord.MoveTaskToSlot(context.Background(), id, week, day, next)
		return opDoneMsg{err: err}
	}
}

func (m appModel) reloadCmd() tea.Cmd {
	coord := m.coord
	planID := coord.Store().View().Plan.ID
	return func() tea.Msg {
		return opDoneMsg{err: coord.Load(context.Background(), planID)}
	}
}

func (m appModel) View() string {
	if m.width == 0 {
		return "loading..."
	}

	if m.detail {
		return lipgloss.JoinVertical(lipgloss.Left,
			styleHeading.Render("  Task"),
			"",
			m.detailVP.View(),
			"",
			styleStatus.Render("  esc: back  ↑/↓: scroll"),
		)
	}

	rows := m.rows()
	var b strings.Builder
	b.WriteString(m.headerLine())
	b.WriteString("\n\n")

	cursor := m.cursor[m.view]
	avail := m.height - 5
	start := 0
	if cursor >= avail {
		start = cursor - avail + 1
	}
	for i := start; i < len(rows) && i-start < avail; i++ {
		line := rows[i].text
		if i == cursor && rows[i].selectable() {
			line = styleSelected.Render(glyphCursor() + " " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(truncLine(line, m.width))
		b.WriteString("\n")
	}

	if m.editing {
		b.WriteString("\n")
		b.WriteString("  title: " + m.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.errText != "" {
		b.WriteString(styleError.Render(truncLine("  "+m.errText, m.width)))
	} else {
		b.WriteString(styleStatus.Render(truncLine("  "+m.helpLine(), m.width)))
	}
	return b.String()
}

func (m appModel) headerLine() string {
	s := m.coord.Store().View()
	name := s.Plan.Name
	if name == "" {
		name = "(no plan)"
	}
	tabs := []string{"dashboard", "week", "day"}
	var parts []string
	for i, t := range tabs {
		if view(i) == m.view {
			parts = append(parts, styleHeading.Render(t))
		} else {
			parts = append(parts, styleMuted.Render(t))
		}
	}
	scope := fmt.Sprintf("week %d", m.week)
	if m.view == viewDay {
		scope = fmt.Sprintf("week %d day %d", m.week, m.day)
	}
	return "  " + name + "  " + strings.Join(parts, " | ") + "  " + styleMuted.Render(scope)
}

func (m appModel) helpLine() string {
	switch m.view {
	case viewDay:
		return "tab: view  h/l: day  shift+←/→: week  space: done  s: lane  p: priority  J/K: move  e: edit  enter: detail  q: quit"
	case viewWeek:
		return "tab: view  h/l: week  space: done  p: priority  J/K: move  e: edit  enter: detail  q: quit"
	default:
		return "tab: view  h/l: week  space: toggle  +/-: progress  c: completed  r: reload  q: quit"
	}
}
