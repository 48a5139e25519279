package state

import (
	"sync"

	"stride-cli/internal/model"
)

// Action is one applied state transition. Every mutation, optimistic or
// confirmed, flows through Store.Dispatch as one of these variants.
type Action interface{ isAction() }

type BundleLoaded struct{ State State }

// SnapshotRestored discards all optimistic changes by restoring a
// pre-mutation snapshot in full. Rollback is always total, never partial.
type SnapshotRestored struct{ State State }

type PlanUpdated struct{ Plan model.Plan }

type TaskCreated struct{ Task model.Task }

// TaskConfirmed swaps an optimistic temp-id task for the server's canonical
// entity.
type TaskConfirmed struct {
	TempID string
	Task   model.Task
}

type TaskUpdated struct{ Task model.Task }

type TaskDeleted struct{ ID string }

// TasksRepositioned applies a batch of new ordering keys at once.
type TasksRepositioned struct{ Positions map[string]int }

type GoalCreated struct{ Goal model.Goal }

type GoalConfirmed struct {
	TempID string
	Goal   model.Goal
}

type GoalUpdated struct{ Goal model.Goal }

type GoalDeleted struct{ ID string }

type MilestoneCreated struct{ Milestone model.Milestone }

type MilestoneConfirmed struct {
	TempID    string
	Milestone model.Milestone
}

type MilestoneUpdated struct{ Milestone model.Milestone }

type MilestoneDeleted struct{ ID string }

type WeeklyGoalCreated struct{ WeeklyGoal model.WeeklyGoal }

type WeeklyGoalConfirmed struct {
	TempID     string
	WeeklyGoal model.WeeklyGoal
}

type WeeklyGoalUpdated struct{ WeeklyGoal model.WeeklyGoal }

type WeeklyGoalDeleted struct{ ID string }

// WeeklyGoalsRepositioned applies a batch of weekly-goal positions at once.
type WeeklyGoalsRepositioned struct{ Positions map[string]int }

func (BundleLoaded) isAction()            {}
func (SnapshotRestored) isAction()        {}
func (PlanUpdated) isAction()             {}
func (TaskCreated) isAction()             {}
func (TaskConfirmed) isAction()           {}
func (TaskUpdated) isAction()             {}
func (TaskDeleted) isAction()             {}
func (TasksRepositioned) isAction()       {}
func (GoalCreated) isAction()             {}
func (GoalConfirmed) isAction()           {}
func (GoalUpdated) isAction()             {}
func (GoalDeleted) isAction()             {}
func (MilestoneCreated) isAction()        {}
func (MilestoneConfirmed) isAction()      {}
func (MilestoneUpdated) isAction()        {}
func (MilestoneDeleted) isAction()        {}
func (WeeklyGoalCreated) isAction()       {}
func (WeeklyGoalConfirmed) isAction()     {}
func (WeeklyGoalUpdated) isAction()       {}
func (WeeklyGoalDeleted) isAction()       {}
func (WeeklyGoalsRepositioned) isAction() {}

// Store owns the State and applies actions under a mutex. Reads hand out
// clones, so callers can never mutate shared state behind its back.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{}
}

// Snapshot returns a structural clone of the current state.
func (st *Store) Snapshot() State {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.state.Clone()
}

// View is Snapshot under a friendlier name for read paths.
func (st *Store) View() State {
	return st.Snapshot()
}

func (st *Store) Dispatch(a Action) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.state = reduce(st.state, a)
}

func reduce(s State, a Action) State {
	switch a := a.(type) {
	case BundleLoaded:
		return a.State.Clone()
	case SnapshotRestored:
		return a.State.Clone()
	case PlanUpdated:
		s.Plan = a.Plan
		return s

	case TaskCreated:
		s.Tasks = append(s.Tasks, a.Task)
		return s
	case TaskConfirmed:
		for i := range s.Tasks {
			if s.Tasks[i].ID == a.TempID {
				s.Tasks[i] = a.Task
				return s
			}
		}
		s.Tasks = append(s.Tasks, a.Task)
		return s
	case TaskUpdated:
		for i := range s.Tasks {
			if s.Tasks[i].ID == a.Task.ID {
				s.Tasks[i] = a.Task
				return s
			}
		}
		return s
	case TaskDeleted:
		s.Tasks = removeByID(s.Tasks, a.ID, func(t model.Task) string { return t.ID })
		return s
	case TasksRepositioned:
		for i := range s.Tasks {
			if p, ok := a.Positions[s.Tasks[i].ID]; ok {
				s.Tasks[i].Position = p
			}
		}
		return s

	case GoalCreated:
		s.Goals = append(s.Goals, a.Goal)
		return s
	case GoalConfirmed:
		for i := range s.Goals {
			if s.Goals[i].ID == a.TempID {
				s.Goals[i] = a.Goal
				return s
			}
		}
		s.Goals = append(s.Goals, a.Goal)
		return s
	case GoalUpdated:
		for i := range s.Goals {
			if s.Goals[i].ID == a.Goal.ID {
				s.Goals[i] = a.Goal
				return s
			}
		}
		return s
	case GoalDeleted:
		s.Goals = removeByID(s.Goals, a.ID, func(g model.Goal) string { return g.ID })
		return s

	case MilestoneCreated:
		s.Milestones = append(s.Milestones, a.Milestone)
		return s
	case MilestoneConfirmed:
		for i := range s.Milestones {
			if s.Milestones[i].ID == a.TempID {
				s.Milestones[i] = a.Milestone
				return s
			}
		}
		s.Milestones = append(s.Milestones, a.Milestone)
		return s
	case MilestoneUpdated:
		for i := range s.Milestones {
			if s.Milestones[i].ID == a.Milestone.ID {
				s.Milestones[i] = a.Milestone
				return s
			}
		}
		return s
	case MilestoneDeleted:
		s.Milestones = removeByID(s.Milestones, a.ID, func(m model.Milestone) string { return m.ID })
		return s

	case WeeklyGoalCreated:
		s.WeeklyGoals = append(s.WeeklyGoals, a.WeeklyGoal)
		return s
	case WeeklyGoalConfirmed:
		for i := range s.WeeklyGoals {
			if s.WeeklyGoals[i].ID == a.TempID {
				s.WeeklyGoals[i] = a.WeeklyGoal
				return s
			}
		}
		s.WeeklyGoals = append(s.WeeklyGoals, a.WeeklyGoal)
		return s
	case WeeklyGoalUpdated:
		for i := range s.WeeklyGoals {
			if s.WeeklyGoals[i].ID == a.WeeklyGoal.ID {
				s.WeeklyGoals[i] = a.WeeklyGoal
				return s
			}
		}
		return s
	case WeeklyGoalDeleted:
		s.WeeklyGoals = removeByID(s.WeeklyGoals, a.ID, func(wg model.WeeklyGoal) string { return wg.ID })
		return s
	case WeeklyGoalsRepositioned:
		for i := range s.WeeklyGoals {
			if p, ok := a.Positions[s.WeeklyGoals[i].ID]; ok {
				s.WeeklyGoals[i].Position = p
			}
		}
		return s

	default:
		return s
	}
}

func removeByID[T any](xs []T, id string, key func(T) string) []T {
	out := xs[:0:0]
	for _, x := range xs {
		if key(x) != id {
			out = append(out, x)
		}
	}
	return out
}
