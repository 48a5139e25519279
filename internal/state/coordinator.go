package state

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stride-cli/internal/api"
	"stride-cli/internal/model"
	"stride-cli/internal/sched"
)

// Coordinator runs the shared optimistic-mutation protocol: snapshot, apply
// locally, call the remote store, then confirm or restore the snapshot in
// full. Batch reorders are all-or-nothing; debounced field edits coalesce to
// one write carrying the last value.
type Coordinator struct {
	store  *Store
	client *api.Client
	timers *sched.Scheduler
	log    *zap.Logger

	// onAsyncError receives failures from debounce-flushed writes, which have
	// no caller left to return to. The rollback has already happened.
	onAsyncError func(error)

	mu      sync.Mutex
	pending map[sched.Key]*pendingEdit
}

// pendingEdit is one debounced field's in-flight state: the snapshot taken at
// the first pending edit and the latest patch value.
type pendingEdit struct {
	snap  State
	patch api.Patch
}

type Options struct {
	Clock        sched.Clock
	Logger       *zap.Logger
	OnAsyncError func(error)
}

func NewCoordinator(store *Store, client *api.Client, opts Options) *Coordinator {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	var timers *sched.Scheduler
	if opts.Clock != nil {
		timers = sched.NewWithClock(opts.Clock)
	} else {
		timers = sched.New()
	}
	return &Coordinator{
		store:        store,
		client:       client,
		timers:       timers,
		log:          log,
		onAsyncError: opts.OnAsyncError,
		pending:      map[sched.Key]*pendingEdit{},
	}
}

// Close drops all pending debounce timers. Nothing is flushed: a torn-down
// view must not produce orphaned writes.
func (c *Coordinator) Close() {
	c.timers.Stop()
	c.mu.Lock()
	c.pending = map[sched.Key]*pendingEdit{}
	c.mu.Unlock()
}

func (c *Coordinator) Store() *Store { return c.store }

// SetOnAsyncError replaces the handler for failures surfacing from debounced
// writes. The TUI installs its own once the program is running.
func (c *Coordinator) SetOnAsyncError(fn func(error)) {
	c.mu.Lock()
	c.onAsyncError = fn
	c.mu.Unlock()
}

const tempIDPrefix = "tmp-"

func tempID() string { return tempIDPrefix + uuid.NewString() }

// IsTempID reports whether id is a client-generated optimistic id that has
// not been confirmed by the server yet.
func IsTempID(id string) bool { return strings.HasPrefix(id, tempIDPrefix) }

// rollback restores the pre-mutation snapshot in full and passes err through.
func (c *Coordinator) rollback(snap State, err error) error {
	c.store.Dispatch(SnapshotRestored{State: snap})
	c.log.Debug("rolled back optimistic mutation", zap.Error(err))
	return err
}

func (c *Coordinator) asyncError(err error) {
	c.mu.Lock()
	fn := c.onAsyncError
	c.mu.Unlock()
	if fn != nil {
		fn(err)
		return
	}
	c.log.Warn("debounced write failed", zap.Error(err))
}

// Load fetches the plan bundle and replaces local state with it.
func (c *Coordinator) Load(ctx context.Context, planID string) error {
	b, err := c.client.FetchBundle(ctx, planID)
	if err != nil {
		return err
	}
	c.LoadBundle(b)
	return nil
}

// LoadBundle mirrors an already-fetched bundle (e.g. the offline cache) into
// local state.
func (c *Coordinator) LoadBundle(b *api.Bundle) {
	c.store.Dispatch(BundleLoaded{State: State{
		Plan:        b.Plan,
		Goals:       b.Goals,
		Milestones:  b.Milestones,
		WeeklyGoals: b.WeeklyGoals,
		Tasks:       b.Tasks,
	}})
}

// Bundle exports current state in the cacheable form.
func (c *Coordinator) Bundle() *api.Bundle {
	s := c.store.Snapshot()
	return &api.Bundle{
		Plan:        s.Plan,
		Goals:       s.Goals,
		Milestones:  s.Milestones,
		WeeklyGoals: s.WeeklyGoals,
		Tasks:       s.Tasks,
	}
}

// ---- plans ----

// CreatePlan is create-only: the new plan is not mirrored into local state
// until it is loaded.
func (c *Coordinator) CreatePlan(ctx context.Context, name, startDate string) (model.Plan, error) {
	if err := model.ValidateStartDate(startDate); err != nil {
		return model.Plan{}, err
	}
	return c.client.CreatePlan(ctx, model.Plan{Name: name, StartDate: startDate, Status: model.PlanReady})
}

func (c *Coordinator) UpdatePlan(ctx context.Context, patch api.Patch) (model.Plan, error) {
	snap := c.store.Snapshot()
	local := snap.Plan
	applyPlanPatch(&local, patch)
	c.store.Dispatch(PlanUpdated{Plan: local})

	server, err := c.client.UpdatePlan(ctx, local.ID, patch)
	if err != nil {
		return model.Plan{}, c.rollback(snap, err)
	}
	c.store.Dispatch(PlanUpdated{Plan: server})
	return server, nil
}

func (c *Coordinator) ArchivePlan(ctx context.Context) (model.Plan, error) {
	snap := c.store.Snapshot()
	local := snap.Plan
	local.Status = model.PlanArchived
	c.store.Dispatch(PlanUpdated{Plan: local})

	server, err := c.client.ArchivePlan(ctx, local.ID)
	if err != nil {
		return model.Plan{}, c.rollback(snap, err)
	}
	c.store.Dispatch(PlanUpdated{Plan: server})
	return server, nil
}

func (c *Coordinator) DeletePlan(ctx context.Context) error {
	snap := c.store.Snapshot()
	c.store.Dispatch(BundleLoaded{State: State{}})
	if err := c.client.DeletePlan(ctx, snap.Plan.ID); err != nil {
		return c.rollback(snap, err)
	}
	return nil
}

func applyPlanPatch(p *model.Plan, patch api.Patch) {
	for k, v := range patch {
		switch k {
		case "name":
			p.Name = asString(v)
		case "status":
			p.Status = model.PlanStatus(asString(v))
		case "start_date":
			p.StartDate = asString(v)
		}
	}
}

// ---- goals ----

func (c *Coordinator) CreateGoal(ctx context.Context, title string, category model.GoalCategory) (model.Goal, error) {
	snap := c.store.Snapshot()
	if len(snap.Goals) >= model.MaxGoalsPerPlan {
		return model.Goal{}, CapacityError{What: "goals per plan", Limit: model.MaxGoalsPerPlan}
	}

	draft := model.Goal{
		PlanID:   snap.Plan.ID,
		Title:    title,
		Category: category,
		Position: len(snap.Goals) + 1,
	}
	tmp := draft
	tmp.ID = tempID()
	c.store.Dispatch(GoalCreated{Goal: tmp})

	server, err := c.client.CreateGoal(ctx, draft)
	if err != nil {
		return model.Goal{}, c.rollback(snap, err)
	}
	c.store.Dispatch(GoalConfirmed{TempID: tmp.ID, Goal: server})
	return server, nil
}

func (c *Coordinator) UpdateGoal(ctx context.Context, id string, patch api.Patch) (model.Goal, error) {
	snap := c.store.Snapshot()
	local, ok := snap.FindGoal(id)
	if !ok {
		return model.Goal{}, NotFoundError{Kind: "goal", ID: id}
	}
	applyGoalPatch(&local, patch)
	c.store.Dispatch(GoalUpdated{Goal: local})

	server, err := c.client.UpdateGoal(ctx, id, patch)
	if err != nil {
		return model.Goal{}, c.rollback(snap, err)
	}
	c.store.Dispatch(GoalUpdated{Goal: server})
	return server, nil
}

// SetGoalProgress applies immediately and coalesces writes: rapid slider
// movements produce one PATCH carrying the final value.
func (c *Coordinator) SetGoalProgress(id string, progress int) error {
	if err := model.ValidateProgress(progress); err != nil {
		return err
	}
	if _, ok := c.store.Snapshot().FindGoal(id); !ok {
		return NotFoundError{Kind: "goal", ID: id}
	}
	c.debounceField(kindGoal, id, "progress_percentage", sched.SliderWindow, progress)
	return nil
}

func (c *Coordinator) DeleteGoal(ctx context.Context, id string) error {
	snap := c.store.Snapshot()
	if _, ok := snap.FindGoal(id); !ok {
		return NotFoundError{Kind: "goal", ID: id}
	}
	c.store.Dispatch(GoalDeleted{ID: id})
	if err := c.client.DeleteGoal(ctx, id); err != nil {
		return c.rollback(snap, err)
	}
	return nil
}

func applyGoalPatch(g *model.Goal, patch api.Patch) {
	for k, v := range patch {
		switch k {
		case "title":
			g.Title = asString(v)
		case "category":
			g.Category = model.GoalCategory(asString(v))
		case "progress_percentage":
			g.ProgressPercentage = asInt(v)
		case "position":
			g.Position = asInt(v)
		}
	}
}

// ---- milestones ----

func (c *Coordinator) CreateMilestone(ctx context.Context, goalID, title, dueDate string) (model.Milestone, error) {
	snap := c.store.Snapshot()
	if _, ok := snap.FindGoal(goalID); !ok {
		return model.Milestone{}, NotFoundError{Kind: "goal", ID: goalID}
	}
	if snap.GoalMilestoneCount(goalID) >= model.MaxMilestonesPerGoal {
		return model.Milestone{}, CapacityError{What: "milestones per goal", Limit: model.MaxMilestonesPerGoal}
	}
	inWindow, err := snap.Plan.ContainsDate(dueDate)
	if err != nil {
		return model.Milestone{}, err
	}
	if !inWindow {
		end, _ := snap.Plan.EndDate()
		return model.Milestone{}, fmt.Errorf("due date %s is outside the plan window %s..%s", dueDate, snap.Plan.StartDate, end)
	}

	draft := model.Milestone{
		LongTermGoalID: goalID,
		Title:          title,
		DueDate:        dueDate,
		Position:       snap.GoalMilestoneCount(goalID) + 1,
	}
	tmp := draft
	tmp.ID = tempID()
	c.store.Dispatch(MilestoneCreated{Milestone: tmp})

	server, err := c.client.CreateMilestone(ctx, draft)
	if err != nil {
		return model.Milestone{}, c.rollback(snap, err)
	}
	c.store.Dispatch(MilestoneConfirmed{TempID: tmp.ID, Milestone: server})
	return server, nil
}

func (c *Coordinator) UpdateMilestone(ctx context.Context, id string, patch api.Patch) (model.Milestone, error) {
	snap := c.store.Snapshot()
	local, ok := snap.FindMilestone(id)
	if !ok {
		return model.Milestone{}, NotFoundError{Kind: "milestone", ID: id}
	}
	applyMilestonePatch(&local, patch)
	c.store.Dispatch(MilestoneUpdated{Milestone: local})

	server, err := c.client.UpdateMilestone(ctx, id, patch)
	if err != nil {
		return model.Milestone{}, c.rollback(snap, err)
	}
	c.store.Dispatch(MilestoneUpdated{Milestone: server})
	return server, nil
}

func (c *Coordinator) ToggleMilestone(ctx context.Context, id string) (model.Milestone, error) {
	m, ok := c.store.Snapshot().FindMilestone(id)
	if !ok {
		return model.Milestone{}, NotFoundError{Kind: "milestone", ID: id}
	}
	return c.UpdateMilestone(ctx, id, api.Patch{"is_completed": !m.IsCompleted})
}

func (c *Coordinator) DeleteMilestone(ctx context.Context, id string) error {
	snap := c.store.Snapshot()
	if _, ok := snap.FindMilestone(id); !ok {
		return NotFoundError{Kind: "milestone", ID: id}
	}
	c.store.Dispatch(MilestoneDeleted{ID: id})
	if err := c.client.DeleteMilestone(ctx, id); err != nil {
		return c.rollback(snap, err)
	}
	return nil
}

func applyMilestonePatch(m *model.Milestone, patch api.Patch) {
	for k, v := range patch {
		switch k {
		case "title":
			m.Title = asString(v)
		case "due_date":
			m.DueDate = asString(v)
		case "is_completed":
			b, _ := v.(bool)
			m.IsCompleted = b
		case "position":
			m.Position = asInt(v)
		}
	}
}

// ---- weekly goals ----

func (c *Coordinator) CreateWeeklyGoal(ctx context.Context, week int, title string, goalID, milestoneID *string) (model.WeeklyGoal, error) {
	if err := model.ValidateWeekNumber(week); err != nil {
		return model.WeeklyGoal{}, err
	}
	snap := c.store.Snapshot()

	draft := model.WeeklyGoal{
		PlanID:         snap.Plan.ID,
		WeekNumber:     week,
		Title:          title,
		LongTermGoalID: goalID,
		MilestoneID:    milestoneID,
		Position:       len(snap.WeekWeeklyGoals(week)) + 1,
	}
	// A weekly goal tied to a milestone inherits the milestone's goal when
	// the caller did not name one.
	if milestoneID != nil && goalID == nil {
		if m, ok := snap.FindMilestone(*milestoneID); ok {
			gid := m.LongTermGoalID
			draft.LongTermGoalID = &gid
		}
	}

	tmp := draft
	tmp.ID = tempID()
	c.store.Dispatch(WeeklyGoalCreated{WeeklyGoal: tmp})

	server, err := c.client.CreateWeeklyGoal(ctx, draft)
	if err != nil {
		return model.WeeklyGoal{}, c.rollback(snap, err)
	}
	c.store.Dispatch(WeeklyGoalConfirmed{TempID: tmp.ID, WeeklyGoal: server})
	return server, nil
}

func (c *Coordinator) UpdateWeeklyGoal(ctx context.Context, id string, patch api.Patch) (model.WeeklyGoal, error) {
	snap := c.store.Snapshot()
	local, ok := snap.FindWeeklyGoal(id)
	if !ok {
		return model.WeeklyGoal{}, NotFoundError{Kind: "weekly goal", ID: id}
	}
	applyWeeklyGoalPatch(&local, patch)
	c.store.Dispatch(WeeklyGoalUpdated{WeeklyGoal: local})

	server, err := c.client.UpdateWeeklyGoal(ctx, id, patch)
	if err != nil {
		return model.WeeklyGoal{}, c.rollback(snap, err)
	}
	c.store.Dispatch(WeeklyGoalUpdated{WeeklyGoal: server})
	return server, nil
}

func (c *Coordinator) DeleteWeeklyGoal(ctx context.Context, id string) error {
	snap := c.store.Snapshot()
	if _, ok := snap.FindWeeklyGoal(id); !ok {
		return NotFoundError{Kind: "weekly goal", ID: id}
	}
	c.store.Dispatch(WeeklyGoalDeleted{ID: id})
	if err := c.client.DeleteWeeklyGoal(ctx, id); err != nil {
		return c.rollback(snap, err)
	}
	return nil
}

// ReorderWeeklyGoals applies positions 1..N in the given order, one PATCH per
// moved item in parallel. Any failure rolls the whole batch back.
func (c *Coordinator) ReorderWeeklyGoals(ctx context.Context, week int, orderedIDs []string) error {
	snap := c.store.Snapshot()

	positions := map[string]int{}
	for i, id := range orderedIDs {
		wg, ok := snap.FindWeeklyGoal(id)
		if !ok {
			return NotFoundError{Kind: "weekly goal", ID: id}
		}
		if wg.WeekNumber != week {
			return NotFoundError{Kind: "weekly goal in week", ID: id}
		}
		if wg.Position != i+1 {
			positions[id] = i + 1
		}
	}
	if len(positions) == 0 {
		return nil
	}

	c.store.Dispatch(WeeklyGoalsRepositioned{Positions: positions})

	err := c.fanOut(positions, func(id string, pos int) error {
		_, err := c.client.UpdateWeeklyGoal(ctx, id, api.Patch{"position": pos})
		return err
	})
	if err != nil {
		return c.rollback(snap, err)
	}
	return nil
}

func applyWeeklyGoalPatch(wg *model.WeeklyGoal, patch api.Patch) {
	for k, v := range patch {
		switch k {
		case "title":
			wg.Title = asString(v)
		case "week_number":
			wg.WeekNumber = asInt(v)
		case "position":
			wg.Position = asInt(v)
		case "long_term_goal_id":
			wg.LongTermGoalID = asStringPtr(v)
		case "milestone_id":
			wg.MilestoneID = asStringPtr(v)
		}
	}
}

// ---- debounced field edits ----

type entityKind int

const (
	kindTask entityKind = iota
	kindGoal
)

// debounceField applies the edit optimistically right away and (re)arms the
// per-field timer. The snapshot backing the eventual rollback is the one
// taken when the field first went pending, so a failed flush rewinds the
// whole burst.
func (c *Coordinator) debounceField(kind entityKind, id, field string, window time.Duration, value any) {
	key := sched.Key{EntityID: id, Field: field}

	c.mu.Lock()
	pe, ok := c.pending[key]
	if !ok {
		pe = &pendingEdit{snap: c.store.Snapshot()}
		c.pending[key] = pe
	}
	pe.patch = api.Patch{field: value}
	c.mu.Unlock()

	switch kind {
	case kindTask:
		if t, ok := c.store.Snapshot().FindTask(id); ok {
			applyTaskPatch(&t, api.Patch{field: value})
			c.store.Dispatch(TaskUpdated{Task: t})
		}
	case kindGoal:
		if g, ok := c.store.Snapshot().FindGoal(id); ok {
			applyGoalPatch(&g, api.Patch{field: value})
			c.store.Dispatch(GoalUpdated{Goal: g})
		}
	}

	c.timers.Schedule(key, window, func() { c.flushField(kind, key, id) })
}

func (c *Coordinator) flushField(kind entityKind, key sched.Key, id string) {
	c.mu.Lock()
	pe, ok := c.pending[key]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.pending, key)
	c.mu.Unlock()

	ctx := context.Background()
	switch kind {
	case kindTask:
		server, err := c.client.UpdateTask(ctx, id, pe.patch)
		if err != nil {
			c.store.Dispatch(SnapshotRestored{State: pe.snap})
			c.asyncError(err)
			return
		}
		c.store.Dispatch(TaskUpdated{Task: server})
	case kindGoal:
		server, err := c.client.UpdateGoal(ctx, id, pe.patch)
		if err != nil {
			c.store.Dispatch(SnapshotRestored{State: pe.snap})
			c.asyncError(err)
			return
		}
		c.store.Dispatch(GoalUpdated{Goal: server})
	}
}

// FlushPending forces all debounced edits out now. The CLI uses this so a
// short-lived process does not exit with writes still parked on timers.
func (c *Coordinator) FlushPending() {
	c.mu.Lock()
	keys := make([]sched.Key, 0, len(c.pending))
	for k := range c.pending {
		keys = append(keys, k)
	}
	c.mu.Unlock()
	for _, k := range keys {
		c.timers.Flush(k)
	}
}

// ---- patch value coercion ----

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case model.Priority:
		return string(s)
	case model.TaskStatus:
		return string(s)
	case model.TaskType:
		return string(s)
	case model.PlanStatus:
		return string(s)
	case model.GoalCategory:
		return string(s)
	}
	return ""
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

func asStringPtr(v any) *string {
	if v == nil {
		return nil
	}
	s := asString(v)
	if s == "" {
		return nil
	}
	return &s
}

func asIntPtr(v any) *int {
	if v == nil {
		return nil
	}
	switch n := v.(type) {
	case int:
		return &n
	case *int:
		return n
	case float64:
		i := int(n)
		return &i
	}
	return nil
}
