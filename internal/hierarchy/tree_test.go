package hierarchy

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"stride-cli/internal/model"
)

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func fixturePlan() model.Plan {
	return model.Plan{ID: "plan-1", Name: "Q1", StartDate: "2026-01-05", Status: model.PlanActive}
}

func TestBuildTreeTraversalOrder(t *testing.T) {
	plan := fixturePlan()
	goals := []model.Goal{
		{ID: "g2", PlanID: "plan-1", Title: "Second goal", Position: 2},
		{ID: "g1", PlanID: "plan-1", Title: "First goal", Position: 1},
	}
	milestones := []model.Milestone{
		{ID: "m1", LongTermGoalID: "g1", Title: "Milestone", Position: 1},
	}
	weekly := []model.WeeklyGoal{
		{ID: "wg-m", PlanID: "plan-1", WeekNumber: 2, MilestoneID: strp("m1"), LongTermGoalID: strp("g1"), Title: "Under milestone"},
		{ID: "wg-g", PlanID: "plan-1", WeekNumber: 1, LongTermGoalID: strp("g1"), Title: "Under goal"},
		{ID: "wg-o", PlanID: "plan-1", WeekNumber: 3, Title: "Orphan weekly"},
	}
	tasks := []model.Task{
		{ID: "t-wg", PlanID: "plan-1", WeeklyGoalID: strp("wg-m"), Title: "Weekly sub", TaskType: model.TaskWeeklySub, WeekNumber: 2},
		{ID: "t-m", PlanID: "plan-1", MilestoneID: strp("m1"), Title: "Direct milestone task", WeekNumber: 2},
		{ID: "t-g", PlanID: "plan-1", LongTermGoalID: strp("g1"), Title: "Direct goal task", WeekNumber: 1},
		{ID: "t-adhoc", PlanID: "plan-1", Title: "Loose task", TaskType: model.TaskAdHoc, WeekNumber: 4},
	}

	root := BuildTree(plan, goals, milestones, weekly, tasks, Options{ShowCompleted: true, ShowAllWeeks: true})

	type row struct {
		ID     string
		Indent int
	}
	var got []row
	for _, n := range Flatten(root) {
		got = append(got, row{n.ID, n.Indent})
	}
	want := []row{
		{"plan-1", 0},
		{"g1", 1},
		{"m1", 2},
		{"wg-m", 3},
		{"t-wg", 4},
		{"t-m", 3},
		{"wg-g", 2},
		{"t-g", 2},
		{"g2", 1},
		{"wg-o", 1},
		{AdHocGroupID, 1},
		{"t-adhoc", 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("traversal order mismatch (-want +got):\n%s", diff)
	}
}

// A filtered node takes its entire subtree with it: incomplete descendants of
// a completed milestone are not promoted anywhere else in the tree.
func TestCompletedMilestonePrunesIncompleteDescendants(t *testing.T) {
	plan := fixturePlan()
	goals := []model.Goal{{ID: "g1", PlanID: "plan-1", Title: "Goal", Position: 1}}
	milestones := []model.Milestone{
		{ID: "m1", LongTermGoalID: "g1", Title: "Done milestone", IsCompleted: true, Position: 1},
	}
	weekly := []model.WeeklyGoal{
		{ID: "wg1", PlanID: "plan-1", WeekNumber: 1, MilestoneID: strp("m1"), Title: "Incomplete weekly"},
	}
	tasks := []model.Task{
		{ID: "t1", PlanID: "plan-1", WeeklyGoalID: strp("wg1"), Title: "Open task", Status: model.TaskTodo, WeekNumber: 1},
	}

	root := BuildTree(plan, goals, milestones, weekly, tasks, Options{ShowCompleted: false, ShowAllWeeks: true})

	for _, n := range Flatten(root) {
		switch n.ID {
		case "m1", "wg1", "t1":
			t.Fatalf("node %s should have been pruned with the milestone subtree", n.ID)
		}
	}
}

// A node that passes the filter stays even when every child was filtered out.
func TestPassingNodeRetainedWhenEmpty(t *testing.T) {
	plan := fixturePlan()
	goals := []model.Goal{{ID: "g1", PlanID: "plan-1", Title: "Goal", Position: 1}}
	milestones := []model.Milestone{
		{ID: "m1", LongTermGoalID: "g1", Title: "Done", IsCompleted: true, Position: 1},
	}

	root := BuildTree(plan, goals, milestones, nil, nil, Options{ShowCompleted: false, ShowAllWeeks: true})
	if len(root.Children) != 1 {
		t.Fatalf("expected goal retained under plan, got %d children", len(root.Children))
	}
	g := root.Children[0]
	if g.ID != "g1" || len(g.Children) != 0 {
		t.Fatalf("expected empty g1 node, got %s with %d children", g.ID, len(g.Children))
	}
}

// The synthetic ad-hoc group is the one node that is dropped when empty.
func TestAdHocGroupOnlyWhenNonEmpty(t *testing.T) {
	plan := fixturePlan()
	tasks := []model.Task{
		{ID: "t1", PlanID: "plan-1", Title: "Done loose task", Status: model.TaskCompleted, WeekNumber: 1},
	}

	root := BuildTree(plan, nil, nil, nil, tasks, Options{ShowCompleted: false, ShowAllWeeks: true})
	if len(root.Children) != 0 {
		t.Fatalf("expected no ad-hoc group when all tasks filtered, got %d children", len(root.Children))
	}

	root = BuildTree(plan, nil, nil, nil, tasks, Options{ShowCompleted: true, ShowAllWeeks: true})
	if len(root.Children) != 1 || root.Children[0].Type != NodeAdHocGroup {
		t.Fatalf("expected ad-hoc group when task survives, got %+v", root.Children)
	}
}

func TestWeekScopeFilter(t *testing.T) {
	plan := fixturePlan()
	weekly := []model.WeeklyGoal{
		{ID: "wg1", PlanID: "plan-1", WeekNumber: 1, Title: "Week one"},
		{ID: "wg2", PlanID: "plan-1", WeekNumber: 2, Title: "Week two"},
	}
	tasks := []model.Task{
		{ID: "t1", PlanID: "plan-1", Title: "W1 task", WeekNumber: 1},
		{ID: "t2", PlanID: "plan-1", Title: "W2 task", WeekNumber: 2},
	}

	root := BuildTree(plan, nil, nil, weekly, tasks, Options{ShowCompleted: true, ShowAllWeeks: false, SelectedWeek: 2})

	var ids []string
	for _, n := range Flatten(root) {
		ids = append(ids, n.ID)
	}
	want := []string{"plan-1", "wg2", AdHocGroupID, "t2"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("week scope mismatch (-want +got):\n%s", diff)
	}
}

// Links to deleted entities fall back to the next level instead of vanishing.
func TestDanglingLinksFallBack(t *testing.T) {
	plan := fixturePlan()
	goals := []model.Goal{{ID: "g1", PlanID: "plan-1", Title: "Goal", Position: 1}}
	tasks := []model.Task{
		{ID: "t1", PlanID: "plan-1", WeeklyGoalID: strp("wg-gone"), LongTermGoalID: strp("g1"), Title: "Orphaned sub", WeekNumber: 1},
		{ID: "t2", PlanID: "plan-1", WeeklyGoalID: strp("wg-gone"), MilestoneID: strp("m-gone"), Title: "Fully orphaned", WeekNumber: 1},
	}

	root := BuildTree(plan, goals, nil, nil, tasks, Options{ShowCompleted: true, ShowAllWeeks: true})

	var ids []string
	for _, n := range Flatten(root) {
		ids = append(ids, n.ID)
	}
	want := []string{"plan-1", "g1", "t1", AdHocGroupID, "t2"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("fallback mismatch (-want +got):\n%s", diff)
	}
}

func TestTaskSortDayLessLast(t *testing.T) {
	plan := fixturePlan()
	tasks := []model.Task{
		{ID: "t-noday", PlanID: "plan-1", Title: "No day", WeekNumber: 1},
		{ID: "t-day3", PlanID: "plan-1", Title: "Wednesday", WeekNumber: 1, DueDay: intp(3)},
		{ID: "t-day1", PlanID: "plan-1", Title: "Monday", WeekNumber: 1, DueDay: intp(1)},
		{ID: "t-w2", PlanID: "plan-1", Title: "Next week", WeekNumber: 2, DueDay: intp(1)},
	}

	root := BuildTree(plan, nil, nil, nil, tasks, Options{ShowCompleted: true, ShowAllWeeks: true})
	group := root.Children[0]
	var ids []string
	for _, n := range group.Children {
		ids = append(ids, n.ID)
	}
	want := []string{"t-day1", "t-day3", "t-noday", "t-w2"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("task sort mismatch (-want +got):\n%s", diff)
	}
}
