package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"stride-cli/internal/api"
)

func newWeeklyGoalsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "weekly-goals",
		Aliases: []string{"wg"},
		Short:   "Weekly goal commands",
	}
	cmd.AddCommand(newWeeklyGoalsCreateCmd(app))
	cmd.AddCommand(newWeeklyGoalsListCmd(app))
	cmd.AddCommand(newWeeklyGoalsUpdateCmd(app))
	cmd.AddCommand(newWeeklyGoalsReorderCmd(app))
	cmd.AddCommand(newWeeklyGoalsDeleteCmd(app))
	return cmd
}

func newWeeklyGoalsCreateCmd(app *App) *cobra.Command {
	var week int
	var title, goalID, milestoneID string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a weekly goal, optionally linked to a goal or milestone",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			var gid, mid *string
			if goalID != "" {
				gid = &goalID
			}
			if milestoneID != "" {
				mid = &milestoneID
			}
			wg, err := coord.CreateWeeklyGoal(cmd.Context(), week, strings.TrimSpace(title), gid, mid)
			if err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": wg})
		},
	}

	cmd.Flags().IntVar(&week, "week", 0, "Week number (1-12)")
	cmd.Flags().StringVar(&title, "title", "", "Weekly goal title")
	cmd.Flags().StringVar(&goalID, "goal", "", "Linked long-term goal id")
	cmd.Flags().StringVar(&milestoneID, "milestone", "", "Linked milestone id")
	_ = cmd.MarkFlagRequired("week")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newWeeklyGoalsListCmd(app *App) *cobra.Command {
	var week int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List weekly goals, optionally for one week",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			s := coord.Store().View()
			if cmd.Flags().Changed("week") {
				return writeOut(cmd, app, map[string]any{"data": s.WeekWeeklyGoals(week)})
			}
			return writeOut(cmd, app, map[string]any{"data": s.WeeklyGoals})
		},
	}

	cmd.Flags().IntVar(&week, "week", 0, "Week number (1-12)")
	return cmd
}

func newWeeklyGoalsUpdateCmd(app *App) *cobra.Command {
	var title string
	var week int

	cmd := &cobra.Command{
		Use:   "update <weekly-goal-id>",
		Short: "Update a weekly goal's title or week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := api.Patch{}
			if cmd.Flags().Changed("title") {
				patch["title"] = strings.TrimSpace(title)
			}
			if cmd.Flags().Changed("week") {
				patch["week_number"] = week
			}
			if len(patch) == 0 {
				return writeErr(cmd, errConfirm("nothing to update; pass --title or --week"))
			}
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			wg, err := coord.UpdateWeeklyGoal(cmd.Context(), args[0], patch)
			if err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": wg})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().IntVar(&week, "week", 0, "New week number (1-12)")
	return cmd
}

func newWeeklyGoalsReorderCmd(app *App) *cobra.Command {
	var week int

	cmd := &cobra.Command{
		Use:   "reorder <id>...",
		Short: "Reorder a week's weekly goals into the given id order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			if err := coord.ReorderWeeklyGoals(cmd.Context(), week, args); err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": coord.Store().View().WeekWeeklyGoals(week)})
		},
	}

	cmd.Flags().IntVar(&week, "week", 0, "Week number (1-12)")
	_ = cmd.MarkFlagRequired("week")
	return cmd
}

func newWeeklyGoalsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <weekly-goal-id>",
		Short: "Delete a weekly goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			if err := coord.DeleteWeeklyGoal(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"deleted": args[0]}})
		},
	}
}
