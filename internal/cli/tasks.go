package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"stride-cli/internal/api"
	"stride-cli/internal/model"
	"stride-cli/internal/slots"
	"stride-cli/internal/state"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task commands",
	}
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksStatusCmd(app))
	cmd.AddCommand(newTasksPriorityCmd(app))
	cmd.AddCommand(newTasksAssignCmd(app))
	cmd.AddCommand(newTasksUnassignCmd(app))
	cmd.AddCommand(newTasksMoveCmd(app))
	cmd.AddCommand(newTasksCopyCmd(app))
	cmd.AddCommand(newTasksReorderCmd(app))
	cmd.AddCommand(newTasksNormalizeCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	return cmd
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var title, priority, weeklyGoalID string
	var week, due int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task in a week, as ad-hoc or under a weekly goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := state.TaskDraft{
				Title:      strings.TrimSpace(title),
				WeekNumber: week,
			}
			if priority != "" {
				p, err := model.ParsePriority(priority)
				if err != nil {
					return writeErr(cmd, err)
				}
				draft.Priority = p
			}
			if cmd.Flags().Changed("due") {
				draft.DueDay = &due
			}
			if weeklyGoalID != "" {
				draft.WeeklyGoalID = &weeklyGoalID
			}
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			t, err := coord.CreateTask(cmd.Context(), draft)
			if err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().IntVar(&week, "week", 0, "Week number (1-12)")
	cmd.Flags().IntVar(&due, "due", 0, "Due day within the week (1-7)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (A|B|C, default C)")
	cmd.Flags().StringVar(&weeklyGoalID, "weekly-goal", "", "Parent weekly goal id")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("week")
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var week, due int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, scoped to a week or a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			s := coord.Store().View()
			switch {
			case cmd.Flags().Changed("week") && cmd.Flags().Changed("due"):
				return writeOut(cmd, app, map[string]any{"data": taskTable(s.DayTasks(week, due))})
			case cmd.Flags().Changed("week"):
				return writeOut(cmd, app, map[string]any{"data": taskTable(s.WeekTasks(week))})
			}
			return writeOut(cmd, app, map[string]any{"data": taskTable(s.Tasks)})
		},
	}

	cmd.Flags().IntVar(&week, "week", 0, "Week number (1-12)")
	cmd.Flags().IntVar(&due, "due", 0, "Due day within the week (1-7)")
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update a task's title or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := api.Patch{}
			if cmd.Flags().Changed("title") {
				patch["title"] = strings.TrimSpace(title)
			}
			if cmd.Flags().Changed("description") {
				patch["description"] = description
			}
			if len(patch) == 0 {
				return writeErr(cmd, errConfirm("nothing to update; pass --title or --description"))
			}
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			t, err := coord.UpdateTask(cmd.Context(), args[0], patch)
			if err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	return cmd
}

func newTasksStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <task-id> <status>",
		Short: "Set a task's status (todo|in_progress|completed|cancelled|postponed)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := model.ParseTaskStatus(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			t, err := coord.SetTaskStatus(cmd.Context(), args[0], st)
			if err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}
}

func newTasksPriorityCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "priority <task-id> <A|B|C>",
		Short: "Set a task's priority",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := model.ParsePriority(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			t, err := coord.UpdateTask(cmd.Context(), args[0], api.Patch{"priority": p})
			if err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}
}

func newTasksAssignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <task-id> <weekly-goal-id>",
		Short: "Attach a task to a weekly goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			t, err := coord.AssignWeeklyGoal(cmd.Context(), args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}
}

func newTasksUnassignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <task-id>",
		Short: "Detach a task from its weekly goal back into the ad-hoc pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			t, err := coord.UnassignWeeklyGoal(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}
}

func newTasksMoveCmd(app *App) *cobra.Command {
	var week, day int
	var slot string

	cmd := &cobra.Command{
		Use:   "move <task-id>",
		Short: "Move a task into a day lane (most_important|secondary|additional)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := slots.ParseSlot(slot)
			if err != nil {
				return writeErr(cmd, err)
			}
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			t, err := coord.MoveTaskToSlot(cmd.Context(), args[0], week, day, target)
			if err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}

	cmd.Flags().IntVar(&week, "week", 0, "Week number (1-12)")
	cmd.Flags().IntVar(&day, "day", 0, "Day within the week (1-7)")
	cmd.Flags().StringVar(&slot, "slot", "", "Target lane")
	_ = cmd.MarkFlagRequired("week")
	_ = cmd.MarkFlagRequired("day")
	_ = cmd.MarkFlagRequired("slot")
	return cmd
}

func newTasksCopyCmd(app *App) *cobra.Command {
	var week int

	cmd := &cobra.Command{
		Use:   "copy <task-id>",
		Short: "Copy a task into another week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			t, err := coord.CopyTask(cmd.Context(), args[0], week)
			if err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}

	cmd.Flags().IntVar(&week, "week", 0, "Destination week number (1-12)")
	_ = cmd.MarkFlagRequired("week")
	return cmd
}

func newTasksReorderCmd(app *App) *cobra.Command {
	var week, day int

	cmd := &cobra.Command{
		Use:   "reorder <task-id>...",
		Short: "Reorder tasks within a week, or within one day when --day is given",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			if cmd.Flags().Changed("day") {
				err = coord.ReorderDay(cmd.Context(), week, day, args)
			} else {
				err = coord.ReorderWeek(cmd.Context(), week, args)
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": coord.Store().View().WeekTasks(week)})
		},
	}

	cmd.Flags().IntVar(&week, "week", 0, "Week number (1-12)")
	cmd.Flags().IntVar(&day, "day", 0, "Day within the week (1-7)")
	_ = cmd.MarkFlagRequired("week")
	return cmd
}

func newTasksNormalizeCmd(app *App) *cobra.Command {
	var week int
	var flatten bool

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Rewrite a week's positions into canonical form if they drifted",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			if err := coord.NormalizeWeek(cmd.Context(), week, !flatten); err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": coord.Store().View().WeekTasks(week)})
		},
	}

	cmd.Flags().IntVar(&week, "week", 0, "Week number (1-12)")
	cmd.Flags().BoolVar(&flatten, "flatten", false, "Collapse day groupings instead of preserving them")
	_ = cmd.MarkFlagRequired("week")
	return cmd
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			if err := coord.DeleteTask(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"deleted": args[0]}})
		},
	}
}
