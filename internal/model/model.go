package model

// A plan is a fixed 12-week (84-day) cycle starting on a Monday. Its end date
// is always derived from the start date, never stored.
const (
	PlanWeeks = 12
	PlanDays  = 84
)

// Hard capacity ceilings, enforced client-side before any network call.
const (
	MaxGoalsPerPlan       = 6
	MaxMilestonesPerGoal  = 5
	MaxTasksPerWeeklyGoal = 15
	MaxAdHocTasksPerWeek  = 100
)

type PlanStatus string

const (
	PlanReady     PlanStatus = "ready"
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
	PlanArchived  PlanStatus = "archived"
)

type Plan struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	StartDate string     `json:"start_date"` // YYYY-MM-DD, must be a Monday
	Status    PlanStatus `json:"status"`
}

type GoalCategory string

const (
	CategoryHealth        GoalCategory = "health"
	CategoryCareer        GoalCategory = "career"
	CategoryFinance       GoalCategory = "finance"
	CategoryRelationships GoalCategory = "relationships"
	CategoryLearning      GoalCategory = "learning"
	CategoryPersonal      GoalCategory = "personal"
)

// Goal is a long-term objective scoped to the whole plan.
type Goal struct {
	ID                 string       `json:"id"`
	PlanID             string       `json:"plan_id"`
	Title              string       `json:"title"`
	Category           GoalCategory `json:"category"`
	ProgressPercentage int          `json:"progress_percentage"` // 0..100, step 5
	Position           int          `json:"position"`            // 1..6
}

type Milestone struct {
	ID             string `json:"id"`
	LongTermGoalID string `json:"long_term_goal_id"`
	Title          string `json:"title"`
	DueDate        string `json:"due_date"` // YYYY-MM-DD, inside the plan window
	IsCompleted    bool   `json:"is_completed"`
	Position       int    `json:"position"` // max 5 per goal
}

// WeeklyGoal is scoped to a single week and optionally linked to a long-term
// goal and/or milestone.
type WeeklyGoal struct {
	ID             string  `json:"id"`
	PlanID         string  `json:"plan_id"`
	WeekNumber     int     `json:"week_number"` // 1..12
	LongTermGoalID *string `json:"long_term_goal_id,omitempty"`
	MilestoneID    *string `json:"milestone_id,omitempty"`
	Title          string  `json:"title"`
	Position       int     `json:"position"`
}

type Priority string

const (
	PriorityA Priority = "A"
	PriorityB Priority = "B"
	PriorityC Priority = "C"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
	TaskPostponed  TaskStatus = "postponed"
)

type TaskType string

const (
	TaskAdHoc     TaskType = "ad_hoc"
	TaskWeeklySub TaskType = "weekly_sub"
)

// Task is the atomic unit of work. Position encodes both the week-block order
// and the day rank in a single integer (see internal/position).
//
// TaskType is weekly_sub iff WeeklyGoalID is set; assignment and unassignment
// flip it atomically (see state.Coordinator).
type Task struct {
	ID             string     `json:"id"`
	PlanID         string     `json:"plan_id"`
	WeeklyGoalID   *string    `json:"weekly_goal_id,omitempty"`
	LongTermGoalID *string    `json:"long_term_goal_id,omitempty"`
	MilestoneID    *string    `json:"milestone_id,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Priority       Priority   `json:"priority"`
	Status         TaskStatus `json:"status"`
	TaskType       TaskType   `json:"task_type"`
	WeekNumber     int        `json:"week_number"` // 1..12
	DueDay         *int       `json:"due_day,omitempty"` // 1..7
	Position       int        `json:"position"`
}

// Closed reports whether the task no longer counts as open work.
// Completed and cancelled tasks are both pruned by the dashboard filter.
func (t Task) Closed() bool {
	return t.Status == TaskCompleted || t.Status == TaskCancelled
}

// Completed reports whether a goal's progress has reached 100%.
func (g Goal) Completed() bool {
	return g.ProgressPercentage >= 100
}
