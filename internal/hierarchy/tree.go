// Package hierarchy flattens the five linked entity collections into a single
// ordered tree for the dashboard.
//
// The filter semantics are deliberately asymmetric and must stay that way:
// a node that fails the filter is skipped together with its whole subtree
// (descendants are never promoted), a node that passes is kept even when all
// of its children were filtered out, and the synthetic ad-hoc group appears
// only when at least one of its tasks survives.
package hierarchy

import (
	"sort"
	"strings"

	"stride-cli/internal/model"
)

type NodeType string

const (
	NodePlan       NodeType = "plan"
	NodeGoal       NodeType = "goal"
	NodeMilestone  NodeType = "milestone"
	NodeWeeklyGoal NodeType = "weekly_goal"
	NodeTask       NodeType = "task"
	NodeAdHocGroup NodeType = "ad_hoc_group"
)

type Node struct {
	ID          string   `json:"id"`
	Type        NodeType `json:"type"`
	Title       string   `json:"title"`
	Status      string   `json:"status,omitempty"`
	IsCompleted bool     `json:"is_completed"`
	Progress    *int     `json:"progress,omitempty"`
	WeekNumber  *int     `json:"week_number,omitempty"`
	Indent      int      `json:"indent"`
	Children    []*Node  `json:"children"`
}

type Options struct {
	ShowCompleted bool
	ShowAllWeeks  bool
	SelectedWeek  int
}

// AdHocGroupID is the id of the synthetic group collecting fully unlinked
// tasks.
const AdHocGroupID = "ad-hoc"

// builder holds the parent->children indexes, built once per BuildTree call
// so tree assembly never re-filters the flat slices.
type builder struct {
	opts Options

	milestonesByGoal  map[string][]model.Milestone
	weeklyByMilestone map[string][]model.WeeklyGoal
	weeklyByGoal      map[string][]model.WeeklyGoal // goal link, no (resolvable) milestone
	weeklyOrphans     []model.WeeklyGoal

	tasksByWeekly    map[string][]model.Task
	tasksByMilestone map[string][]model.Task // milestone link, no weekly goal
	tasksByGoal      map[string][]model.Task // goal link only
	adHocTasks       []model.Task
}

// BuildTree assembles the dashboard tree. Traversal order (and therefore
// indent) is fixed: plan > goals (stored position order) > milestones >
// milestone-linked weekly goals and direct milestone tasks > goal-linked
// weekly goals > goal-direct tasks > orphan weekly goals > ad-hoc group.
func BuildTree(plan model.Plan, goals []model.Goal, milestones []model.Milestone, weeklyGoals []model.WeeklyGoal, tasks []model.Task, opts Options) *Node {
	b := &builder{
		opts:              opts,
		milestonesByGoal:  map[string][]model.Milestone{},
		weeklyByMilestone: map[string][]model.WeeklyGoal{},
		weeklyByGoal:      map[string][]model.WeeklyGoal{},
		tasksByWeekly:     map[string][]model.Task{},
		tasksByMilestone:  map[string][]model.Task{},
		tasksByGoal:       map[string][]model.Task{},
	}
	b.index(goals, milestones, weeklyGoals, tasks)

	root := &Node{
		ID:          plan.ID,
		Type:        NodePlan,
		Title:       plan.Name,
		Status:      string(plan.Status),
		IsCompleted: plan.Status == model.PlanCompleted,
		Indent:      0,
		Children:    []*Node{},
	}

	sortedGoals := append([]model.Goal(nil), goals...)
	sort.SliceStable(sortedGoals, func(i, j int) bool {
		return sortedGoals[i].Position < sortedGoals[j].Position
	})
	for _, g := range sortedGoals {
		if n := b.goalNode(g); n != nil {
			root.Children = append(root.Children, n)
		}
	}

	for _, wg := range b.weeklyOrphans {
		if n := b.weeklyGoalNode(wg, 1); n != nil {
			root.Children = append(root.Children, n)
		}
	}

	if group := b.adHocGroupNode(); group != nil {
		root.Children = append(root.Children, group)
	}

	return root
}

func (b *builder) index(goals []model.Goal, milestones []model.Milestone, weeklyGoals []model.WeeklyGoal, tasks []model.Task) {
	goalIDs := map[string]bool{}
	for _, g := range goals {
		goalIDs[g.ID] = true
	}
	milestoneIDs := map[string]bool{}
	for _, m := range milestones {
		milestoneIDs[m.ID] = true
	}
	weeklyIDs := map[string]bool{}
	for _, wg := range weeklyGoals {
		weeklyIDs[wg.ID] = true
	}

	sortedMilestones := append([]model.Milestone(nil), milestones...)
	sort.SliceStable(sortedMilestones, func(i, j int) bool {
		return sortedMilestones[i].Position < sortedMilestones[j].Position
	})
	for _, m := range sortedMilestones {
		b.milestonesByGoal[m.LongTermGoalID] = append(b.milestonesByGoal[m.LongTermGoalID], m)
	}

	// Weekly goals sort by week ascending before attachment.
	sortedWeekly := append([]model.WeeklyGoal(nil), weeklyGoals...)
	sort.SliceStable(sortedWeekly, func(i, j int) bool {
		if sortedWeekly[i].WeekNumber != sortedWeekly[j].WeekNumber {
			return sortedWeekly[i].WeekNumber < sortedWeekly[j].WeekNumber
		}
		return sortedWeekly[i].Position < sortedWeekly[j].Position
	})
	for _, wg := range sortedWeekly {
		// Links to deleted entities fall back to the next level up.
		mid := refOr(wg.MilestoneID, milestoneIDs)
		gid := refOr(wg.LongTermGoalID, goalIDs)
		switch {
		case mid != "":
			b.weeklyByMilestone[mid] = append(b.weeklyByMilestone[mid], wg)
		case gid != "":
			b.weeklyByGoal[gid] = append(b.weeklyByGoal[gid], wg)
		default:
			b.weeklyOrphans = append(b.weeklyOrphans, wg)
		}
	}

	// Tasks sort by (week, due day) with day-less tasks last in their week.
	sortedTasks := append([]model.Task(nil), tasks...)
	sort.SliceStable(sortedTasks, func(i, j int) bool {
		a, c := sortedTasks[i], sortedTasks[j]
		if a.WeekNumber != c.WeekNumber {
			return a.WeekNumber < c.WeekNumber
		}
		ad, cd := dueOrLast(a.DueDay), dueOrLast(c.DueDay)
		if ad != cd {
			return ad < cd
		}
		return a.Position < c.Position
	})
	for _, t := range sortedTasks {
		wid := refOr(t.WeeklyGoalID, weeklyIDs)
		mid := refOr(t.MilestoneID, milestoneIDs)
		gid := refOr(t.LongTermGoalID, goalIDs)
		switch {
		case wid != "":
			b.tasksByWeekly[wid] = append(b.tasksByWeekly[wid], t)
		case mid != "":
			b.tasksByMilestone[mid] = append(b.tasksByMilestone[mid], t)
		case gid != "":
			b.tasksByGoal[gid] = append(b.tasksByGoal[gid], t)
		default:
			b.adHocTasks = append(b.adHocTasks, t)
		}
	}
}

func refOr(ref *string, present map[string]bool) string {
	if ref == nil {
		return ""
	}
	id := strings.TrimSpace(*ref)
	if id == "" || !present[id] {
		return ""
	}
	return id
}

func dueOrLast(d *int) int {
	if d == nil {
		return 8
	}
	return *d
}

func (b *builder) inWeekScope(week int) bool {
	return b.opts.ShowAllWeeks || week == b.opts.SelectedWeek
}

func (b *builder) goalNode(g model.Goal) *Node {
	if !b.opts.ShowCompleted && g.Completed() {
		return nil
	}
	progress := g.ProgressPercentage
	n := &Node{
		ID:          g.ID,
		Type:        NodeGoal,
		Title:       g.Title,
		IsCompleted: g.Completed(),
		Progress:    &progress,
		Indent:      1,
		Children:    []*Node{},
	}
	for _, m := range b.milestonesByGoal[g.ID] {
		if mn := b.milestoneNode(m); mn != nil {
			n.Children = append(n.Children, mn)
		}
	}
	for _, wg := range b.weeklyByGoal[g.ID] {
		if wn := b.weeklyGoalNode(wg, 2); wn != nil {
			n.Children = append(n.Children, wn)
		}
	}
	for _, t := range b.tasksByGoal[g.ID] {
		if tn := b.taskNode(t, 2); tn != nil {
			n.Children = append(n.Children, tn)
		}
	}
	return n
}

func (b *builder) milestoneNode(m model.Milestone) *Node {
	if !b.opts.ShowCompleted && m.IsCompleted {
		return nil
	}
	n := &Node{
		ID:          m.ID,
		Type:        NodeMilestone,
		Title:       m.Title,
		IsCompleted: m.IsCompleted,
		Indent:      2,
		Children:    []*Node{},
	}
	for _, wg := range b.weeklyByMilestone[m.ID] {
		if wn := b.weeklyGoalNode(wg, 3); wn != nil {
			n.Children = append(n.Children, wn)
		}
	}
	for _, t := range b.tasksByMilestone[m.ID] {
		if tn := b.taskNode(t, 3); tn != nil {
			n.Children = append(n.Children, tn)
		}
	}
	return n
}

// weeklyGoalNode filters by week scope only: weekly goals carry no completion
// concept.
func (b *builder) weeklyGoalNode(wg model.WeeklyGoal, indent int) *Node {
	if !b.inWeekScope(wg.WeekNumber) {
		return nil
	}
	week := wg.WeekNumber
	n := &Node{
		ID:         wg.ID,
		Type:       NodeWeeklyGoal,
		Title:      wg.Title,
		WeekNumber: &week,
		Indent:     indent,
		Children:   []*Node{},
	}
	for _, t := range b.tasksByWeekly[wg.ID] {
		if tn := b.taskNode(t, indent+1); tn != nil {
			n.Children = append(n.Children, tn)
		}
	}
	return n
}

func (b *builder) taskNode(t model.Task, indent int) *Node {
	if !b.opts.ShowCompleted && t.Closed() {
		return nil
	}
	if !b.inWeekScope(t.WeekNumber) {
		return nil
	}
	week := t.WeekNumber
	return &Node{
		ID:          t.ID,
		Type:        NodeTask,
		Title:       t.Title,
		Status:      string(t.Status),
		IsCompleted: t.Status == model.TaskCompleted,
		WeekNumber:  &week,
		Indent:      indent,
		Children:    []*Node{},
	}
}

// adHocGroupNode returns the synthetic group, or nil when no child task
// survives filtering.
func (b *builder) adHocGroupNode() *Node {
	var children []*Node
	for _, t := range b.adHocTasks {
		if tn := b.taskNode(t, 2); tn != nil {
			children = append(children, tn)
		}
	}
	if len(children) == 0 {
		return nil
	}
	return &Node{
		ID:       AdHocGroupID,
		Type:     NodeAdHocGroup,
		Title:    "Ad-hoc tasks",
		Indent:   1,
		Children: children,
	}
}

// Flatten walks the tree depth-first and returns nodes in display order.
func Flatten(root *Node) []*Node {
	if root == nil {
		return nil
	}
	out := []*Node{root}
	for _, c := range root.Children {
		out = append(out, Flatten(c)...)
	}
	return out
}
