package state

import (
	"context"

	"golang.org/x/sync/errgroup"

	"stride-cli/internal/api"
	"stride-cli/internal/model"
	"stride-cli/internal/position"
	"stride-cli/internal/sched"
	"stride-cli/internal/slots"
)

// TaskDraft carries the caller-supplied fields for a new task. Position and
// type are derived.
type TaskDraft struct {
	Title        string
	Priority     model.Priority
	WeekNumber   int
	DueDay       *int
	WeeklyGoalID *string
}

// CreateTask appends the task to the end of its week's ordering. Capacity is
// checked against the weekly goal or the week's ad-hoc pool before anything
// is dispatched.
func (c *Coordinator) CreateTask(ctx context.Context, d TaskDraft) (model.Task, error) {
	if err := model.ValidateWeekNumber(d.WeekNumber); err != nil {
		return model.Task{}, err
	}
	if d.DueDay != nil {
		if err := model.ValidateDueDay(*d.DueDay); err != nil {
			return model.Task{}, err
		}
	}
	snap := c.store.Snapshot()

	draft := model.Task{
		PlanID:     snap.Plan.ID,
		Title:      d.Title,
		Priority:   d.Priority,
		Status:     model.TaskTodo,
		TaskType:   model.TaskAdHoc,
		WeekNumber: d.WeekNumber,
		DueDay:     d.DueDay,
	}
	if draft.Priority == "" {
		draft.Priority = model.PriorityC
	}

	if d.WeeklyGoalID != nil {
		wg, ok := snap.FindWeeklyGoal(*d.WeeklyGoalID)
		if !ok {
			return model.Task{}, NotFoundError{Kind: "weekly goal", ID: *d.WeeklyGoalID}
		}
		if snap.WeeklyGoalTaskCount(wg.ID) >= model.MaxTasksPerWeeklyGoal {
			return model.Task{}, CapacityError{What: "tasks per weekly goal", Limit: model.MaxTasksPerWeeklyGoal}
		}
		draft.TaskType = model.TaskWeeklySub
		draft.WeeklyGoalID = d.WeeklyGoalID
		draft.LongTermGoalID = wg.LongTermGoalID
		draft.MilestoneID = wg.MilestoneID
	} else if snap.AdHocTaskCount(d.WeekNumber) >= model.MaxAdHocTasksPerWeek {
		return model.Task{}, CapacityError{What: "ad-hoc tasks per week", Limit: model.MaxAdHocTasksPerWeek}
	}

	maxWeek := 0
	for _, t := range snap.WeekTasks(d.WeekNumber) {
		if w := position.Decode(t.Position).WeekOrder; w > maxWeek {
			maxWeek = w
		}
	}
	draft.Position = position.Encode(maxWeek+1, position.DefaultDayRank)

	tmp := draft
	tmp.ID = tempID()
	c.store.Dispatch(TaskCreated{Task: tmp})

	server, err := c.client.CreateTask(ctx, draft)
	if err != nil {
		return model.Task{}, c.rollback(snap, err)
	}
	c.store.Dispatch(TaskConfirmed{TempID: tmp.ID, Task: server})
	return server, nil
}

func (c *Coordinator) UpdateTask(ctx context.Context, id string, patch api.Patch) (model.Task, error) {
	snap := c.store.Snapshot()
	local, ok := snap.FindTask(id)
	if !ok {
		return model.Task{}, NotFoundError{Kind: "task", ID: id}
	}
	applyTaskPatch(&local, patch)
	c.store.Dispatch(TaskUpdated{Task: local})

	server, err := c.client.UpdateTask(ctx, id, patch)
	if err != nil {
		return model.Task{}, c.rollback(snap, err)
	}
	c.store.Dispatch(TaskUpdated{Task: server})
	return server, nil
}

func (c *Coordinator) SetTaskStatus(ctx context.Context, id string, status model.TaskStatus) (model.Task, error) {
	return c.UpdateTask(ctx, id, api.Patch{"status": status})
}

// AssignWeeklyGoal attaches an ad-hoc task to a weekly goal. The task becomes
// a weekly sub-task and inherits the goal and milestone links of its parent.
func (c *Coordinator) AssignWeeklyGoal(ctx context.Context, taskID, weeklyGoalID string) (model.Task, error) {
	snap := c.store.Snapshot()
	if _, ok := snap.FindTask(taskID); !ok {
		return model.Task{}, NotFoundError{Kind: "task", ID: taskID}
	}
	wg, ok := snap.FindWeeklyGoal(weeklyGoalID)
	if !ok {
		return model.Task{}, NotFoundError{Kind: "weekly goal", ID: weeklyGoalID}
	}
	if snap.WeeklyGoalTaskCount(weeklyGoalID) >= model.MaxTasksPerWeeklyGoal {
		return model.Task{}, CapacityError{What: "tasks per weekly goal", Limit: model.MaxTasksPerWeeklyGoal}
	}

	patch := api.Patch{
		"weekly_goal_id": weeklyGoalID,
		"task_type":      model.TaskWeeklySub,
	}
	if wg.LongTermGoalID != nil {
		patch["long_term_goal_id"] = *wg.LongTermGoalID
	}
	if wg.MilestoneID != nil {
		patch["milestone_id"] = *wg.MilestoneID
	}
	return c.UpdateTask(ctx, taskID, patch)
}

// UnassignWeeklyGoal detaches a weekly sub-task back into the week's ad-hoc
// pool. The weekly_goal_id is sent as an explicit null.
func (c *Coordinator) UnassignWeeklyGoal(ctx context.Context, taskID string) (model.Task, error) {
	snap := c.store.Snapshot()
	t, ok := snap.FindTask(taskID)
	if !ok {
		return model.Task{}, NotFoundError{Kind: "task", ID: taskID}
	}
	if snap.AdHocTaskCount(t.WeekNumber) >= model.MaxAdHocTasksPerWeek {
		return model.Task{}, CapacityError{What: "ad-hoc tasks per week", Limit: model.MaxAdHocTasksPerWeek}
	}
	return c.UpdateTask(ctx, taskID, api.Patch{
		"weekly_goal_id": nil,
		"task_type":      model.TaskAdHoc,
	})
}

func (c *Coordinator) DeleteTask(ctx context.Context, id string) error {
	snap := c.store.Snapshot()
	if _, ok := snap.FindTask(id); !ok {
		return NotFoundError{Kind: "task", ID: id}
	}
	c.store.Dispatch(TaskDeleted{ID: id})
	if err := c.client.DeleteTask(ctx, id); err != nil {
		return c.rollback(snap, err)
	}
	return nil
}

// CopyTask duplicates a task into another week. The copy is made server-side,
// so nothing optimistic happens here; the result is mirrored on success.
func (c *Coordinator) CopyTask(ctx context.Context, id string, weekNumber int) (model.Task, error) {
	if err := model.ValidateWeekNumber(weekNumber); err != nil {
		return model.Task{}, err
	}
	if _, ok := c.store.Snapshot().FindTask(id); !ok {
		return model.Task{}, NotFoundError{Kind: "task", ID: id}
	}
	server, err := c.client.CopyTask(ctx, id, weekNumber)
	if err != nil {
		return model.Task{}, err
	}
	c.store.Dispatch(TaskCreated{Task: server})
	return server, nil
}

// MoveTaskToSlot places a task into a named lane on one day. The lane decides
// the new priority; a full lane is a hard error rather than a downgrade,
// since the user pointed at that lane explicitly.
func (c *Coordinator) MoveTaskToSlot(ctx context.Context, id string, week, day int, target slots.Slot) (model.Task, error) {
	if err := model.ValidateWeekNumber(week); err != nil {
		return model.Task{}, err
	}
	if err := model.ValidateDueDay(day); err != nil {
		return model.Task{}, err
	}
	snap := c.store.Snapshot()
	t, ok := snap.FindTask(id)
	if !ok {
		return model.Task{}, NotFoundError{Kind: "task", ID: id}
	}

	var others []model.Task
	for _, dt := range snap.DayTasks(week, day) {
		if dt.ID != id {
			others = append(others, dt)
		}
	}
	_, counts := AssignLanes(others)

	prio, err := slots.PlanChange(target, counts)
	if err != nil {
		return model.Task{}, err
	}

	maxRank := 0
	for _, dt := range others {
		if r := position.Decode(dt.Position).DayRank; r > maxRank {
			maxRank = r
		}
	}
	return c.UpdateTask(ctx, id, api.Patch{
		"priority": prio,
		"due_day":  day,
		"position": position.UpdateDayRank(t.Position, maxRank+1),
	})
}

// ReorderWeek rewrites the positions of a week's tasks to match orderedIDs.
// Day ranks survive the move; only the week ordering changes.
func (c *Coordinator) ReorderWeek(ctx context.Context, week int, orderedIDs []string) error {
	snap := c.store.Snapshot()
	old := make([]int, len(orderedIDs))
	for i, id := range orderedIDs {
		t, ok := snap.FindTask(id)
		if !ok {
			return NotFoundError{Kind: "task", ID: id}
		}
		if t.WeekNumber != week {
			return NotFoundError{Kind: "task in week", ID: id}
		}
		old[i] = t.Position
	}
	return c.batchReposition(ctx, snap, orderedIDs, position.RegenerateForWeekView(old))
}

// ReorderDay rewrites day ranks within one day. Every task keeps the day's
// week order; ranks run 1..N in the given order.
func (c *Coordinator) ReorderDay(ctx context.Context, week, day int, orderedIDs []string) error {
	snap := c.store.Snapshot()
	old := make([]int, len(orderedIDs))
	for i, id := range orderedIDs {
		t, ok := snap.FindTask(id)
		if !ok {
			return NotFoundError{Kind: "task", ID: id}
		}
		if t.WeekNumber != week || t.DueDay == nil || *t.DueDay != day {
			return NotFoundError{Kind: "task on day", ID: id}
		}
		old[i] = t.Position
	}
	return c.batchReposition(ctx, snap, orderedIDs, position.RegenerateForDayView(old))
}

// NormalizeWeek rewrites a week's positions into canonical form when the
// encoding has drifted past the overflow threshold.
func (c *Coordinator) NormalizeWeek(ctx context.Context, week int, preserveWeekBlocks bool) error {
	snap := c.store.Snapshot()
	tasks := snap.WeekTasks(week)
	old := make([]int, len(tasks))
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		old[i] = t.Position
		ids[i] = t.ID
	}
	if !position.NeedsNormalize(old) {
		return nil
	}
	return c.batchReposition(ctx, snap, ids, position.Normalize(old, preserveWeekBlocks))
}

// batchReposition applies new positions optimistically, then issues one PATCH
// per changed task in parallel. In-flight siblings are never aborted; any
// failure restores the pre-batch snapshot wholesale.
func (c *Coordinator) batchReposition(ctx context.Context, snap State, ids []string, newPositions []int) error {
	positions := map[string]int{}
	for i, id := range ids {
		t, _ := snap.FindTask(id)
		if t.Position != newPositions[i] {
			positions[id] = newPositions[i]
		}
	}
	if len(positions) == 0 {
		return nil
	}

	c.store.Dispatch(TasksRepositioned{Positions: positions})

	err := c.fanOut(positions, func(id string, pos int) error {
		_, err := c.client.UpdateTask(ctx, id, api.Patch{"position": pos})
		return err
	})
	if err != nil {
		return c.rollback(snap, err)
	}
	return nil
}

func (c *Coordinator) fanOut(positions map[string]int, call func(id string, pos int) error) error {
	var g errgroup.Group
	for id, pos := range positions {
		id, pos := id, pos
		g.Go(func() error { return call(id, pos) })
	}
	return g.Wait()
}

// CyclePriority steps A -> B -> C -> A. Rapid repeats coalesce into a single
// write carrying the final value.
func (c *Coordinator) CyclePriority(id string) (model.Priority, error) {
	t, ok := c.store.Snapshot().FindTask(id)
	if !ok {
		return "", NotFoundError{Kind: "task", ID: id}
	}
	var next model.Priority
	switch t.Priority {
	case model.PriorityA:
		next = model.PriorityB
	case model.PriorityB:
		next = model.PriorityC
	default:
		next = model.PriorityA
	}
	c.debounceField(kindTask, id, "priority", sched.SliderWindow, next)
	return next, nil
}

func (c *Coordinator) SetTaskTitle(id, title string) error {
	if _, ok := c.store.Snapshot().FindTask(id); !ok {
		return NotFoundError{Kind: "task", ID: id}
	}
	c.debounceField(kindTask, id, "title", sched.TextWindow, title)
	return nil
}

func (c *Coordinator) SetTaskDescription(id, description string) error {
	if _, ok := c.store.Snapshot().FindTask(id); !ok {
		return NotFoundError{Kind: "task", ID: id}
	}
	c.debounceField(kindTask, id, "description", sched.TextWindow, description)
	return nil
}

func applyTaskPatch(t *model.Task, patch api.Patch) {
	for k, v := range patch {
		switch k {
		case "title":
			t.Title = asString(v)
		case "description":
			t.Description = asString(v)
		case "priority":
			t.Priority = model.Priority(asString(v))
		case "status":
			t.Status = model.TaskStatus(asString(v))
		case "task_type":
			t.TaskType = model.TaskType(asString(v))
		case "week_number":
			t.WeekNumber = asInt(v)
		case "due_day":
			t.DueDay = asIntPtr(v)
		case "position":
			t.Position = asInt(v)
		case "weekly_goal_id":
			t.WeeklyGoalID = asStringPtr(v)
		case "long_term_goal_id":
			t.LongTermGoalID = asStringPtr(v)
		case "milestone_id":
			t.MilestoneID = asStringPtr(v)
		}
	}
}
