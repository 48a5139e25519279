package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"stride-cli/internal/hierarchy"
	"stride-cli/internal/model"
	"stride-cli/internal/slots"
	"stride-cli/internal/state"
)

func parseWeekArg(s string) (int, error) {
	w, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return w, model.ValidateWeekNumber(w)
}

func newWeekCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "week <n>",
		Short: "Show one week: its weekly goals and tasks in week order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			week, err := parseWeekArg(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			s := coord.Store().View()
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"week":         week,
				"weekly_goals": s.WeekWeeklyGoals(week),
				"tasks":        s.WeekTasks(week),
			}})
		},
	}
}

type dayLane struct {
	Slot     string       `json:"slot"`
	Capacity int          `json:"capacity"`
	Tasks    []model.Task `json:"tasks"`
}

func newDayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "day <week> <day>",
		Short: "Show one day's tasks distributed over the three lanes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			week, err := parseWeekArg(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			day, err := strconv.Atoi(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := model.ValidateDueDay(day); err != nil {
				return writeErr(cmd, err)
			}
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			s := coord.Store().View()
			tasks := s.DayTasks(week, day)
			laneOf, _ := state.AssignLanes(tasks)

			var lanes []dayLane
			for _, slot := range slotsAll() {
				lane := dayLane{Slot: string(slot.slot), Capacity: slot.capacity, Tasks: []model.Task{}}
				for _, t := range tasks {
					if laneOf[t.ID] == slot.slot {
						lane.Tasks = append(lane.Tasks, t)
					}
				}
				lanes = append(lanes, lane)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"week":  week,
				"day":   day,
				"lanes": lanes,
			}})
		},
	}
}

type laneInfo struct {
	slot     slots.Slot
	capacity int
}

func slotsAll() []laneInfo {
	var out []laneInfo
	for _, s := range slots.All() {
		out = append(out, laneInfo{slot: s, capacity: slots.Capacity(s)})
	}
	return out
}

type flatNode struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	Status     string `json:"status,omitempty"`
	Progress   *int   `json:"progress,omitempty"`
	WeekNumber *int   `json:"week_number,omitempty"`
	Indent     int    `json:"indent"`
}

func newDashboardCmd(app *App) *cobra.Command {
	var week int
	var allWeeks, showCompleted bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the plan hierarchy: goals, milestones, weekly goals and tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			s := coord.Store().View()
			root := hierarchy.BuildTree(s.Plan, s.Goals, s.Milestones, s.WeeklyGoals, s.Tasks, hierarchy.Options{
				ShowCompleted: showCompleted,
				ShowAllWeeks:  allWeeks,
				SelectedWeek:  week,
			})

			out := []flatNode{}
			for _, n := range hierarchy.Flatten(root) {
				out = append(out, flatNode{
					ID:         n.ID,
					Type:       string(n.Type),
					Title:      n.Title,
					Status:     n.Status,
					Progress:   n.Progress,
					WeekNumber: n.WeekNumber,
					Indent:     n.Indent,
				})
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}

	cmd.Flags().IntVar(&week, "week", 1, "Week scope for weekly goals (1-12)")
	cmd.Flags().BoolVar(&allWeeks, "all-weeks", false, "Include weekly goals from every week")
	cmd.Flags().BoolVar(&showCompleted, "show-completed", false, "Keep completed and cancelled entries visible")
	return cmd
}
