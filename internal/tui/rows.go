package tui

import (
	"fmt"
	"strings"

	"stride-cli/internal/hierarchy"
	"stride-cli/internal/model"
	"stride-cli/internal/slots"
	"stride-cli/internal/state"
)

func taskCheckbox(t model.Task) string {
	switch t.Status {
	case model.TaskCompleted:
		return glyphCheckboxDone()
	case model.TaskCancelled:
		return glyphCheckboxCancelled()
	default:
		return glyphCheckboxOpen()
	}
}

func taskLine(t model.Task) string {
	pr := priorityStyle(string(t.Priority)).Render(string(t.Priority))
	line := fmt.Sprintf("%s %s %s", taskCheckbox(t), pr, t.Title)
	if t.DueDay != nil {
		line += styleMuted.Render(fmt.Sprintf("  d%d", *t.DueDay))
	}
	if t.Status == model.TaskInProgress {
		line += styleMuted.Render("  …")
	}
	if t.Closed() {
		line = faintIfDark(styleMuted).Render(stripAnsiFallback(t, line))
	}
	return line
}

// stripAnsiFallback re-renders a closed task plainly so the muted style is
// not fighting the per-priority colors.
func stripAnsiFallback(t model.Task, _ string) string {
	line := fmt.Sprintf("%s %s %s", taskCheckbox(t), t.Priority, t.Title)
	if t.DueDay != nil {
		line += fmt.Sprintf("  d%d", *t.DueDay)
	}
	return line
}

func progressBar(pct int) string {
	const cells = 10
	filled := pct / 10
	return strings.Repeat(glyphProgressFilled(), filled) +
		strings.Repeat(glyphProgressEmpty(), cells-filled) +
		fmt.Sprintf(" %d%%", pct)
}

func dashboardRows(s state.State, week int, showCompleted bool) []row {
	root := hierarchy.BuildTree(s.Plan, s.Goals, s.Milestones, s.WeeklyGoals, s.Tasks, hierarchy.Options{
		ShowCompleted: showCompleted,
		SelectedWeek:  week,
	})

	var out []row
	for _, n := range hierarchy.Flatten(root) {
		indent := strings.Repeat("  ", n.Indent)
		switch n.Type {
		case hierarchy.NodePlan:
			continue
		case hierarchy.NodeGoal:
			text := indent + styleHeading.Render(n.Title)
			if n.Progress != nil {
				text += "  " + styleMuted.Render(progressBar(*n.Progress))
			}
			out = append(out, row{kind: rowGoal, id: n.ID, text: text})
		case hierarchy.NodeMilestone:
			box := glyphCheckboxOpen()
			if n.IsCompleted {
				box = glyphCheckboxDone()
			}
			out = append(out, row{kind: rowMilestone, id: n.ID, text: indent + box + " " + n.Title})
		case hierarchy.NodeWeeklyGoal:
			text := indent + glyphBullet() + " " + n.Title
			if n.WeekNumber != nil {
				text += styleMuted.Render(fmt.Sprintf("  w%d", *n.WeekNumber))
			}
			out = append(out, row{kind: rowWeeklyGoal, id: n.ID, text: text})
		case hierarchy.NodeAdHocGroup:
			out = append(out, row{kind: rowHeading, text: styleMuted.Render(indent + n.Title)})
		case hierarchy.NodeTask:
			if t, ok := s.FindTask(n.ID); ok {
				out = append(out, row{kind: rowTask, id: n.ID, text: indent + taskLine(t)})
			}
		}
	}
	if len(out) == 0 {
		out = append(out, row{kind: rowHeading, text: styleMuted.Render("nothing here yet")})
	}
	return out
}

// weekRows groups the week's tasks (in block order) under their weekly goals,
// with the rest in an ad-hoc section at the bottom.
func weekRows(s state.State, week int) []row {
	var out []row

	tasks := s.WeekTasks(week)
	byWG := map[string][]model.Task{}
	var adHoc []model.Task
	for _, t := range tasks {
		if t.WeeklyGoalID != nil {
			if _, ok := s.FindWeeklyGoal(*t.WeeklyGoalID); ok {
				byWG[*t.WeeklyGoalID] = append(byWG[*t.WeeklyGoalID], t)
				continue
			}
		}
		adHoc = append(adHoc, t)
	}

	wgs := s.WeekWeeklyGoals(week)
	out = append(out, row{kind: rowHeading, text: styleHeading.Render(fmt.Sprintf("Week %d", week))})
	if len(wgs) == 0 && len(tasks) == 0 {
		out = append(out, row{kind: rowHeading, text: styleMuted.Render("  nothing planned")})
	}
	for _, wg := range wgs {
		text := glyphBullet() + " " + wg.Title
		text += styleMuted.Render(fmt.Sprintf("  %d/%d tasks", s.WeeklyGoalTaskCount(wg.ID), model.MaxTasksPerWeeklyGoal))
		out = append(out, row{kind: rowWeeklyGoal, id: wg.ID, text: text})
		for _, t := range byWG[wg.ID] {
			out = append(out, row{kind: rowTask, id: t.ID, text: "  " + taskLine(t)})
		}
	}

	if len(adHoc) > 0 {
		out = append(out, row{kind: rowHeading, text: ""})
		out = append(out, row{kind: rowHeading, text: styleMuted.Render("Ad hoc")})
		for _, t := range adHoc {
			out = append(out, row{kind: rowTask, id: t.ID, text: taskLine(t)})
		}
	}
	return out
}

func dayRows(s state.State, week, day int) []row {
	tasks := s.DayTasks(week, day)
	laneOf, counts := state.AssignLanes(tasks)

	var out []row
	for _, slot := range slots.All() {
		used := 0
		switch slot {
		case slots.MostImportant:
			used = counts.MostImportant
		case slots.Secondary:
			used = counts.Secondary
		default:
			used = counts.Additional
		}
		label := laneTitle(slot)
		out = append(out, row{kind: rowHeading, text: styleHeading.Render(label) +
			styleMuted.Render(fmt.Sprintf("  %d/%d", used, slots.Capacity(slot)))})
		any := false
		for _, t := range tasks {
			if laneOf[t.ID] != slot {
				continue
			}
			any = true
			text := taskLine(t)
			if slot == slots.MostImportant {
				text = glyphStar() + " " + text
			}
			out = append(out, row{kind: rowTask, id: t.ID, text: "  " + text})
		}
		if !any {
			out = append(out, row{kind: rowHeading, text: styleMuted.Render("  empty")})
		}
		out = append(out, row{kind: rowHeading, text: ""})
	}
	return out
}

func laneTitle(s slots.Slot) string {
	switch s {
	case slots.MostImportant:
		return "Most important"
	case slots.Secondary:
		return "Secondary"
	default:
		return "Additional"
	}
}

func renderTaskDetail(t model.Task, width int) string {
	var b strings.Builder
	b.WriteString("  " + taskLine(t) + "\n")
	meta := fmt.Sprintf("  week %d", t.WeekNumber)
	if t.DueDay != nil {
		meta += fmt.Sprintf(", day %d", *t.DueDay)
	}
	meta += ", " + string(t.Status)
	if t.WeeklyGoalID != nil {
		meta += ", weekly goal " + *t.WeeklyGoalID
	}
	b.WriteString(styleMuted.Render(meta) + "\n")
	if t.Description != "" {
		b.WriteString("\n")
		b.WriteString(renderMarkdown(t.Description, width-4))
		b.WriteString("\n")
	}
	return b.String()
}
