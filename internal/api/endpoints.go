package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"stride-cli/internal/model"
)

// Patch is a partial update body. Using a map keeps explicit nulls possible
// (clearing a weekly-goal link needs `"weekly_goal_id": null` on the wire).
type Patch map[string]any

// TaskQuery filters the task listing.
type TaskQuery struct {
	PlanID     string
	WeekNumber *int
	DueDay     *int
}

func (q TaskQuery) values() url.Values {
	v := url.Values{}
	if q.PlanID != "" {
		v.Set("plan_id", q.PlanID)
	}
	if q.WeekNumber != nil {
		v.Set("week_number", strconv.Itoa(*q.WeekNumber))
	}
	if q.DueDay != nil {
		v.Set("due_day", strconv.Itoa(*q.DueDay))
	}
	return v
}

func (c *Client) ListTasks(ctx context.Context, q TaskQuery) ([]model.Task, error) {
	return one[[]model.Task](c, ctx, http.MethodGet, "/tasks", q.values(), nil)
}

func (c *Client) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	return one[model.Task](c, ctx, http.MethodPost, "/tasks", nil, t)
}

func (c *Client) UpdateTask(ctx context.Context, id string, p Patch) (model.Task, error) {
	return one[model.Task](c, ctx, http.MethodPatch, "/tasks/"+id, nil, p)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, nil, nil)
}

// CopyTask duplicates a task into another week on the server side.
func (c *Client) CopyTask(ctx context.Context, id string, weekNumber int) (model.Task, error) {
	body := Patch{"week_number": weekNumber}
	return one[model.Task](c, ctx, http.MethodPost, "/tasks/"+id+"/copy", nil, body)
}

func (c *Client) ListPlans(ctx context.Context) ([]model.Plan, error) {
	return one[[]model.Plan](c, ctx, http.MethodGet, "/plans", nil, nil)
}

// GetPlan resolves a plan id through the listing; the store has no
// single-plan read.
func (c *Client) GetPlan(ctx context.Context, id string) (model.Plan, error) {
	plans, err := c.ListPlans(ctx)
	if err != nil {
		return model.Plan{}, err
	}
	for _, p := range plans {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Plan{}, &Error{Status: http.StatusNotFound, Message: fmt.Sprintf("plan not found: %s", id)}
}

func (c *Client) CreatePlan(ctx context.Context, p model.Plan) (model.Plan, error) {
	return one[model.Plan](c, ctx, http.MethodPost, "/plans", nil, p)
}

func (c *Client) UpdatePlan(ctx context.Context, id string, p Patch) (model.Plan, error) {
	return one[model.Plan](c, ctx, http.MethodPatch, "/plans/"+id, nil, p)
}

func (c *Client) DeletePlan(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/plans/"+id, nil, nil, nil)
}

func (c *Client) ArchivePlan(ctx context.Context, id string) (model.Plan, error) {
	return one[model.Plan](c, ctx, http.MethodPost, "/plans/"+id+"/archive", nil, nil)
}

func (c *Client) ListGoals(ctx context.Context) ([]model.Goal, error) {
	return one[[]model.Goal](c, ctx, http.MethodGet, "/goals", nil, nil)
}

func (c *Client) ListPlanGoals(ctx context.Context, planID string) ([]model.Goal, error) {
	return one[[]model.Goal](c, ctx, http.MethodGet, "/plans/"+planID+"/goals", nil, nil)
}

func (c *Client) CreateGoal(ctx context.Context, g model.Goal) (model.Goal, error) {
	return one[model.Goal](c, ctx, http.MethodPost, "/goals", nil, g)
}

func (c *Client) UpdateGoal(ctx context.Context, id string, p Patch) (model.Goal, error) {
	return one[model.Goal](c, ctx, http.MethodPatch, "/goals/"+id, nil, p)
}

func (c *Client) DeleteGoal(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/goals/"+id, nil, nil, nil)
}

func (c *Client) ListGoalMilestones(ctx context.Context, goalID string) ([]model.Milestone, error) {
	return one[[]model.Milestone](c, ctx, http.MethodGet, "/goals/"+goalID+"/milestones", nil, nil)
}

func (c *Client) CreateMilestone(ctx context.Context, m model.Milestone) (model.Milestone, error) {
	return one[model.Milestone](c, ctx, http.MethodPost, "/milestones", nil, m)
}

func (c *Client) UpdateMilestone(ctx context.Context, id string, p Patch) (model.Milestone, error) {
	return one[model.Milestone](c, ctx, http.MethodPatch, "/milestones/"+id, nil, p)
}

func (c *Client) DeleteMilestone(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/milestones/"+id, nil, nil, nil)
}

func (c *Client) ListWeeklyGoals(ctx context.Context, planID string) ([]model.WeeklyGoal, error) {
	v := url.Values{}
	if planID != "" {
		v.Set("plan_id", planID)
	}
	return one[[]model.WeeklyGoal](c, ctx, http.MethodGet, "/weekly-goals", v, nil)
}

func (c *Client) CreateWeeklyGoal(ctx context.Context, wg model.WeeklyGoal) (model.WeeklyGoal, error) {
	return one[model.WeeklyGoal](c, ctx, http.MethodPost, "/weekly-goals", nil, wg)
}

func (c *Client) UpdateWeeklyGoal(ctx context.Context, id string, p Patch) (model.WeeklyGoal, error) {
	return one[model.WeeklyGoal](c, ctx, http.MethodPatch, "/weekly-goals/"+id, nil, p)
}

func (c *Client) DeleteWeeklyGoal(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/weekly-goals/"+id, nil, nil, nil)
}

// Bundle is a plan with all four child collections, enough to drive every
// view.
type Bundle struct {
	Plan        model.Plan         `json:"plan"`
	Goals       []model.Goal       `json:"goals"`
	Milestones  []model.Milestone  `json:"milestones"`
	WeeklyGoals []model.WeeklyGoal `json:"weekly_goals"`
	Tasks       []model.Task       `json:"tasks"`
}

// FetchBundle loads a plan and everything under it.
func (c *Client) FetchBundle(ctx context.Context, planID string) (*Bundle, error) {
	plan, err := c.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	goals, err := c.ListPlanGoals(ctx, planID)
	if err != nil {
		return nil, err
	}
	var milestones []model.Milestone
	for _, g := range goals {
		ms, err := c.ListGoalMilestones(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		milestones = append(milestones, ms...)
	}
	weekly, err := c.ListWeeklyGoals(ctx, planID)
	if err != nil {
		return nil, err
	}
	tasks, err := c.ListTasks(ctx, TaskQuery{PlanID: planID})
	if err != nil {
		return nil, err
	}
	return &Bundle{
		Plan:        plan,
		Goals:       goals,
		Milestones:  milestones,
		WeeklyGoals: weekly,
		Tasks:       tasks,
	}, nil
}
