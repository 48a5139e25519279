// Package state holds the local mirror of the remote store and the
// optimistic mutation coordinator shared by every view.
//
// All local state lives in one State value owned by a Store; mutations go
// through typed actions on a single dispatch path. Snapshots are structural
// clones, so a captured snapshot can never be corrupted by later mutations.
package state

import (
	"sort"

	"stride-cli/internal/model"
	"stride-cli/internal/position"
	"stride-cli/internal/slots"
)

type State struct {
	Plan        model.Plan
	Goals       []model.Goal
	Milestones  []model.Milestone
	WeeklyGoals []model.WeeklyGoal
	Tasks       []model.Task
}

// Clone returns a structural copy. Pointer-typed fields are re-pointed so no
// aliasing survives into the clone.
func (s State) Clone() State {
	out := State{Plan: s.Plan}
	out.Goals = append([]model.Goal(nil), s.Goals...)
	out.Milestones = append([]model.Milestone(nil), s.Milestones...)

	out.WeeklyGoals = make([]model.WeeklyGoal, len(s.WeeklyGoals))
	for i, wg := range s.WeeklyGoals {
		wg.LongTermGoalID = clonePtr(wg.LongTermGoalID)
		wg.MilestoneID = clonePtr(wg.MilestoneID)
		out.WeeklyGoals[i] = wg
	}

	out.Tasks = make([]model.Task, len(s.Tasks))
	for i, t := range s.Tasks {
		t.WeeklyGoalID = clonePtr(t.WeeklyGoalID)
		t.LongTermGoalID = clonePtr(t.LongTermGoalID)
		t.MilestoneID = clonePtr(t.MilestoneID)
		t.DueDay = clonePtr(t.DueDay)
		out.Tasks[i] = t
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (s State) FindTask(id string) (model.Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func (s State) FindGoal(id string) (model.Goal, bool) {
	for _, g := range s.Goals {
		if g.ID == id {
			return g, true
		}
	}
	return model.Goal{}, false
}

func (s State) FindMilestone(id string) (model.Milestone, bool) {
	for _, m := range s.Milestones {
		if m.ID == id {
			return m, true
		}
	}
	return model.Milestone{}, false
}

func (s State) FindWeeklyGoal(id string) (model.WeeklyGoal, bool) {
	for _, wg := range s.WeeklyGoals {
		if wg.ID == id {
			return wg, true
		}
	}
	return model.WeeklyGoal{}, false
}

// WeekTasks returns the week's tasks in week-block order.
func (s State) WeekTasks(week int) []model.Task {
	var out []model.Task
	for _, t := range s.Tasks {
		if t.WeekNumber == week {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// DayTasks returns the tasks due on one (week, day) in day-rank order.
func (s State) DayTasks(week, day int) []model.Task {
	var out []model.Task
	for _, t := range s.Tasks {
		if t.WeekNumber == week && t.DueDay != nil && *t.DueDay == day {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return position.Decode(out[i].Position).DayRank < position.Decode(out[j].Position).DayRank
	})
	return out
}

// AssignLanes distributes a day's tasks (in day-rank order) over the three
// lanes using the greedy priority chain, and returns lane membership by task
// id plus the resulting occupancy.
func AssignLanes(tasks []model.Task) (map[string]slots.Slot, slots.Counts) {
	lanes := make(map[string]slots.Slot, len(tasks))
	var counts slots.Counts
	for _, t := range tasks {
		s := slots.PriorityToSlot(t.Priority, counts)
		lanes[t.ID] = s
		switch s {
		case slots.MostImportant:
			counts.MostImportant++
		case slots.Secondary:
			counts.Secondary++
		default:
			counts.Additional++
		}
	}
	return lanes, counts
}

// WeeklyGoalTaskCount counts tasks attached to one weekly goal.
func (s State) WeeklyGoalTaskCount(weeklyGoalID string) int {
	n := 0
	for _, t := range s.Tasks {
		if t.WeeklyGoalID != nil && *t.WeeklyGoalID == weeklyGoalID {
			n++
		}
	}
	return n
}

// AdHocTaskCount counts stand-alone tasks in one week.
func (s State) AdHocTaskCount(week int) int {
	n := 0
	for _, t := range s.Tasks {
		if t.WeekNumber == week && t.TaskType == model.TaskAdHoc {
			n++
		}
	}
	return n
}

// GoalMilestoneCount counts milestones under one goal.
func (s State) GoalMilestoneCount(goalID string) int {
	n := 0
	for _, m := range s.Milestones {
		if m.LongTermGoalID == goalID {
			n++
		}
	}
	return n
}

// WeekWeeklyGoals returns a week's weekly goals in position order.
func (s State) WeekWeeklyGoals(week int) []model.WeeklyGoal {
	var out []model.WeeklyGoal
	for _, wg := range s.WeeklyGoals {
		if wg.WeekNumber == week {
			out = append(out, wg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}
