package tui

import (
	"strings"
	"testing"

	"stride-cli/internal/model"
	"stride-cli/internal/state"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func testState() state.State {
	return state.State{
		Plan: model.Plan{ID: "p1", Name: "Q1", StartDate: "2026-01-05", Status: model.PlanActive},
		Goals: []model.Goal{
			{ID: "g1", PlanID: "p1", Title: "Ship the beta", Category: model.CategoryCareer, ProgressPercentage: 40, Position: 1},
		},
		WeeklyGoals: []model.WeeklyGoal{
			{ID: "wg1", PlanID: "p1", WeekNumber: 1, Title: "Kick off", LongTermGoalID: strPtr("g1"), Position: 1},
		},
		Tasks: []model.Task{
			{ID: "t1", PlanID: "p1", Title: "write docs", Priority: model.PriorityA, Status: model.TaskTodo, TaskType: model.TaskWeeklySub, WeeklyGoalID: strPtr("wg1"), LongTermGoalID: strPtr("g1"), WeekNumber: 1, DueDay: intPtr(1), Position: 101},
			{ID: "t2", PlanID: "p1", Title: "sweep inbox", Priority: model.PriorityC, Status: model.TaskTodo, TaskType: model.TaskAdHoc, WeekNumber: 1, DueDay: intPtr(1), Position: 201},
		},
	}
}

func TestDashboardRowsOrder(t *testing.T) {
	setGlyphs(glyphSetASCII)
	rows := dashboardRows(testState(), 1, false)

	var kinds []rowKind
	var ids []string
	for _, r := range rows {
		if r.selectable() {
			kinds = append(kinds, r.kind)
			ids = append(ids, r.id)
		}
	}
	want := []rowKind{rowGoal, rowWeeklyGoal, rowTask, rowTask}
	if len(kinds) != len(want) {
		t.Fatalf("selectable rows = %v (%v)", kinds, ids)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("row %d kind = %v, want %v (ids %v)", i, kinds[i], want[i], ids)
		}
	}
	// The goal-linked task hangs under its weekly goal; the unlinked one
	// lands in the ad-hoc group at the end.
	if ids[2] != "t1" || ids[3] != "t2" {
		t.Fatalf("task order = %v", ids[2:])
	}
}

func TestDayRowsPutsAIntoTopLane(t *testing.T) {
	setGlyphs(glyphSetASCII)
	rows := dayRows(testState(), 1, 1)

	laneOfTask := map[string]string{}
	currentLane := ""
	for _, r := range rows {
		if r.kind == rowHeading && strings.TrimSpace(r.text) != "" {
			currentLane = r.text
			continue
		}
		if r.kind == rowTask {
			laneOfTask[r.id] = currentLane
		}
	}
	if !strings.Contains(laneOfTask["t1"], "Most important") {
		t.Fatalf("t1 lane = %q", laneOfTask["t1"])
	}
	if !strings.Contains(laneOfTask["t2"], "Additional") {
		t.Fatalf("t2 lane = %q", laneOfTask["t2"])
	}
}

func TestWeekRowsShowTaskCounts(t *testing.T) {
	setGlyphs(glyphSetASCII)
	rows := weekRows(testState(), 1)

	var wgText string
	for _, r := range rows {
		if r.kind == rowWeeklyGoal {
			wgText = r.text
		}
	}
	if !strings.Contains(wgText, "1/15 tasks") {
		t.Fatalf("weekly goal row = %q", wgText)
	}
}

func TestTruncLineKeepsWidth(t *testing.T) {
	if got := truncLine("hello world", 5); got != "hell…" {
		t.Fatalf("got %q", got)
	}
	if got := truncLine("hi", 5); got != "hi" {
		t.Fatalf("got %q", got)
	}
}
