package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"stride-cli/internal/api"
	"stride-cli/internal/model"
	"stride-cli/internal/sched"
	"stride-cli/internal/slots"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func fixtureState() State {
	return State{
		Plan: model.Plan{ID: "p1", Name: "Q1", StartDate: "2026-01-05", Status: model.PlanActive},
		Goals: []model.Goal{
			{ID: "g1", PlanID: "p1", Title: "Ship", Category: model.CategoryCareer, ProgressPercentage: 40, Position: 1},
		},
		WeeklyGoals: []model.WeeklyGoal{
			{ID: "wg1", PlanID: "p1", WeekNumber: 1, Title: "Kick off", LongTermGoalID: strPtr("g1"), Position: 1},
		},
		Tasks: []model.Task{
			{ID: "t1", PlanID: "p1", Title: "one", Priority: model.PriorityA, Status: model.TaskTodo, TaskType: model.TaskAdHoc, WeekNumber: 1, DueDay: intPtr(1), Position: 101},
			{ID: "t2", PlanID: "p1", Title: "two", Priority: model.PriorityB, Status: model.TaskTodo, TaskType: model.TaskAdHoc, WeekNumber: 1, DueDay: intPtr(1), Position: 201},
			{ID: "t3", PlanID: "p1", Title: "three", Priority: model.PriorityC, Status: model.TaskTodo, TaskType: model.TaskAdHoc, WeekNumber: 1, Position: 301},
			{ID: "t4", PlanID: "p1", Title: "four", Priority: model.PriorityC, Status: model.TaskTodo, TaskType: model.TaskAdHoc, WeekNumber: 1, Position: 401},
		},
	}
}

// echoServer answers every PATCH/POST with a data envelope reflecting the
// request body merged over a base task, and lets a test fail chosen ids.
type echoServer struct {
	mu      sync.Mutex
	patches map[string][]api.Patch // task id -> bodies received
	fail    map[string]bool       // task id -> respond 500
}

func newEchoServer() *echoServer {
	return &echoServer{patches: map[string][]api.Patch{}, fail: map[string]bool{}}
}

func (s *echoServer) handler(base State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

		var body api.Patch
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}

		s.mu.Lock()
		s.patches[id] = append(s.patches[id], body)
		failed := s.fail[id]
		s.mu.Unlock()

		if failed {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "boom"})
			return
		}

		switch {
		case strings.Contains(r.URL.Path, "/tasks"):
			t, ok := base.FindTask(id)
			if !ok && r.Method == http.MethodPost {
				t = model.Task{ID: "srv-1", PlanID: base.Plan.ID}
			}
			applyTaskPatch(&t, body)
			_ = json.NewEncoder(w).Encode(map[string]any{"data": t})
		case strings.Contains(r.URL.Path, "/goals") && !strings.Contains(r.URL.Path, "weekly"):
			g, _ := base.FindGoal(id)
			applyGoalPatch(&g, body)
			_ = json.NewEncoder(w).Encode(map[string]any{"data": g})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"data": body})
		}
	}
}

func newTestCoordinator(t *testing.T, base State, srv *echoServer) (*Coordinator, *sched.FakeClock, func()) {
	t.Helper()
	hs := httptest.NewServer(srv.handler(base))
	clock := sched.NewFakeClock()
	store := NewStore()
	store.Dispatch(BundleLoaded{State: base})
	c := NewCoordinator(store, api.New(api.Config{BaseURL: hs.URL}), Options{Clock: clock})
	return c, clock, func() {
		c.Close()
		hs.Close()
	}
}

func TestReorderWeekRollsBackWholeBatch(t *testing.T) {
	base := fixtureState()
	srv := newEchoServer()
	srv.fail["t3"] = true
	c, _, done := newTestCoordinator(t, base, srv)
	defer done()

	// The order moves every task, so all four positions change.
	err := c.ReorderWeek(context.Background(), 1, []string{"t4", "t3", "t1", "t2"})
	if err == nil {
		t.Fatal("expected batch failure")
	}

	// Every sibling PATCH still went out; nothing was aborted.
	srv.mu.Lock()
	sent := len(srv.patches)
	srv.mu.Unlock()
	if sent != 4 {
		t.Fatalf("sent patches to %d tasks, want 4", sent)
	}

	// Positions are exactly pre-batch, including the ones that succeeded
	// remotely.
	got := c.Store().Snapshot()
	if diff := cmp.Diff(base.Tasks, got.Tasks); diff != "" {
		t.Fatalf("tasks after rollback (-want +got):\n%s", diff)
	}
}

func TestReorderWeekSuccessKeepsNewPositions(t *testing.T) {
	base := fixtureState()
	srv := newEchoServer()
	c, _, done := newTestCoordinator(t, base, srv)
	defer done()

	if err := c.ReorderWeek(context.Background(), 1, []string{"t3", "t1", "t2", "t4"}); err != nil {
		t.Fatal(err)
	}

	got := c.Store().Snapshot()
	want := map[string]int{"t3": 101, "t1": 201, "t2": 301, "t4": 401}
	for id, pos := range want {
		tk, _ := got.FindTask(id)
		if tk.Position != pos {
			t.Errorf("%s position = %d, want %d", id, tk.Position, pos)
		}
	}

	// t4 keeps its old position 401, so no PATCH goes out for it.
	srv.mu.Lock()
	sent := len(srv.patches)
	_, patchedT4 := srv.patches["t4"]
	srv.mu.Unlock()
	if sent != 3 || patchedT4 {
		t.Fatalf("sent patches to %d tasks (t4 patched: %v), want 3 without t4", sent, patchedT4)
	}
}

func TestCyclePriorityCoalescesToOneWrite(t *testing.T) {
	base := fixtureState()
	srv := newEchoServer()
	c, clock, done := newTestCoordinator(t, base, srv)
	defer done()

	// Three rapid presses: A -> B -> C -> A. Each lands locally at once.
	for i := 0; i < 3; i++ {
		if _, err := c.CyclePriority("t1"); err != nil {
			t.Fatal(err)
		}
		clock.Advance(200 * time.Millisecond)
	}
	tk, _ := c.Store().Snapshot().FindTask("t1")
	if tk.Priority != model.PriorityA {
		t.Fatalf("local priority = %s, want A", tk.Priority)
	}

	srv.mu.Lock()
	sent := len(srv.patches["t1"])
	srv.mu.Unlock()
	if sent != 0 {
		t.Fatalf("patch sent before window elapsed")
	}

	clock.Advance(time.Second)
	c.FlushPending()

	srv.mu.Lock()
	got := srv.patches["t1"]
	srv.mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("sent %d patches, want 1", len(got))
	}
	if got[0]["priority"] != "A" {
		t.Fatalf("patched priority = %v, want A", got[0]["priority"])
	}
}

func TestDebouncedFlushFailureRestoresFirstSnapshot(t *testing.T) {
	base := fixtureState()
	srv := newEchoServer()
	srv.fail["g1"] = true
	var asyncErr error
	clock := sched.NewFakeClock()
	hs := httptest.NewServer(srv.handler(base))
	defer hs.Close()
	store := NewStore()
	store.Dispatch(BundleLoaded{State: base})
	c := NewCoordinator(store, api.New(api.Config{BaseURL: hs.URL}), Options{
		Clock:        clock,
		OnAsyncError: func(err error) { asyncErr = err },
	})
	defer c.Close()

	// Two slider stops inside one window; both apply locally.
	if err := c.SetGoalProgress("g1", 50); err != nil {
		t.Fatal(err)
	}
	clock.Advance(300 * time.Millisecond)
	if err := c.SetGoalProgress("g1", 75); err != nil {
		t.Fatal(err)
	}
	g, _ := c.Store().Snapshot().FindGoal("g1")
	if g.ProgressPercentage != 75 {
		t.Fatalf("local progress = %d, want 75", g.ProgressPercentage)
	}

	clock.Advance(sched.SliderWindow)

	if asyncErr == nil {
		t.Fatal("expected async error")
	}
	// The rollback rewinds the whole burst, not just the last step.
	g, _ = c.Store().Snapshot().FindGoal("g1")
	if g.ProgressPercentage != 40 {
		t.Fatalf("progress after rollback = %d, want 40", g.ProgressPercentage)
	}
}

func TestCreateTaskConfirmSwapsTempID(t *testing.T) {
	base := fixtureState()
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var tk model.Task
		_ = json.NewDecoder(r.Body).Decode(&tk)
		tk.ID = "srv-42"
		_ = json.NewEncoder(w).Encode(map[string]any{"data": tk})
	}))
	defer hs.Close()
	store := NewStore()
	store.Dispatch(BundleLoaded{State: base})
	c := NewCoordinator(store, api.New(api.Config{BaseURL: hs.URL}), Options{})
	defer c.Close()

	got, err := c.CreateTask(context.Background(), TaskDraft{Title: "new", WeekNumber: 1})
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "srv-42" {
		t.Fatalf("task id = %s, want srv-42", got.ID)
	}

	s := c.Store().Snapshot()
	if _, ok := s.FindTask("srv-42"); !ok {
		t.Fatal("confirmed task missing from state")
	}
	for _, tk := range s.Tasks {
		if IsTempID(tk.ID) {
			t.Fatalf("temp id %s survived confirmation", tk.ID)
		}
	}
	// Appended after the week's last block.
	tk, _ := s.FindTask("srv-42")
	if tk.Position != 501 {
		t.Fatalf("position = %d, want 501", tk.Position)
	}
}

func TestCreateTaskRollsBackOnError(t *testing.T) {
	base := fixtureState()
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":   "validation failed",
			"details": []map[string]string{{"message": "title too long"}},
		})
	}))
	defer hs.Close()
	store := NewStore()
	store.Dispatch(BundleLoaded{State: base})
	c := NewCoordinator(store, api.New(api.Config{BaseURL: hs.URL}), Options{})
	defer c.Close()

	_, err := c.CreateTask(context.Background(), TaskDraft{Title: "new", WeekNumber: 1})
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Message != "title too long" {
		t.Fatalf("err = %v, want detail message", err)
	}

	got := c.Store().Snapshot()
	if diff := cmp.Diff(base.Tasks, got.Tasks); diff != "" {
		t.Fatalf("tasks after rollback (-want +got):\n%s", diff)
	}
}

func TestCapacityChecksBlockBeforeNetwork(t *testing.T) {
	base := fixtureState()
	for i := 0; i < model.MaxTasksPerWeeklyGoal; i++ {
		base.Tasks = append(base.Tasks, model.Task{
			ID:           fmt.Sprintf("wt%d", i),
			TaskType:     model.TaskWeeklySub,
			WeeklyGoalID: strPtr("wg1"),
			WeekNumber:   1,
			Status:       model.TaskTodo,
		})
	}

	var calls int
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
	}))
	defer hs.Close()
	store := NewStore()
	store.Dispatch(BundleLoaded{State: base})
	c := NewCoordinator(store, api.New(api.Config{BaseURL: hs.URL}), Options{})
	defer c.Close()

	_, err := c.CreateTask(context.Background(), TaskDraft{Title: "x", WeekNumber: 1, WeeklyGoalID: strPtr("wg1")})
	if !IsCapacity(err) {
		t.Fatalf("err = %v, want capacity", err)
	}
	_, err = c.AssignWeeklyGoal(context.Background(), "t1", "wg1")
	if !IsCapacity(err) {
		t.Fatalf("err = %v, want capacity", err)
	}
	if calls != 0 {
		t.Fatalf("server saw %d calls, want 0", calls)
	}
}

func TestMoveTaskToSlotFullLane(t *testing.T) {
	base := fixtureState()
	c, _, done := newTestCoordinator(t, base, newEchoServer())
	defer done()

	// Day 1 already holds an A task in the single most-important slot.
	_, err := c.MoveTaskToSlot(context.Background(), "t3", 1, 1, slots.MostImportant)
	var capErr slots.CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("err = %v, want slot capacity error", err)
	}
	if capErr.Slot != slots.MostImportant {
		t.Fatalf("slot = %s, want most_important", capErr.Slot)
	}
}

func TestMoveTaskToSlotAssignsPriorityAndRank(t *testing.T) {
	base := fixtureState()
	c, _, done := newTestCoordinator(t, base, newEchoServer())
	defer done()

	got, err := c.MoveTaskToSlot(context.Background(), "t3", 1, 1, slots.Secondary)
	if err != nil {
		t.Fatal(err)
	}
	if got.Priority != model.PriorityB {
		t.Fatalf("priority = %s, want B", got.Priority)
	}
	if got.DueDay == nil || *got.DueDay != 1 {
		t.Fatalf("due day = %v, want 1", got.DueDay)
	}
	// Week order 3 survives; the task lands after the day's last rank.
	if got.Position != 302 {
		t.Fatalf("position = %d, want 302", got.Position)
	}
}

func TestCloseDropsPendingWrites(t *testing.T) {
	base := fixtureState()
	srv := newEchoServer()
	c, clock, done := newTestCoordinator(t, base, srv)
	defer done()

	if err := c.SetTaskTitle("t1", "renamed"); err != nil {
		t.Fatal(err)
	}
	c.Close()
	clock.Advance(time.Minute)

	srv.mu.Lock()
	sent := len(srv.patches["t1"])
	srv.mu.Unlock()
	if sent != 0 {
		t.Fatal("pending write escaped after Close")
	}
}
