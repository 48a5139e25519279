package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"stride-cli/internal/api"
)

func newMilestonesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "milestones",
		Short: "Milestone commands",
	}
	cmd.AddCommand(newMilestonesCreateCmd(app))
	cmd.AddCommand(newMilestonesListCmd(app))
	cmd.AddCommand(newMilestonesUpdateCmd(app))
	cmd.AddCommand(newMilestonesToggleCmd(app))
	cmd.AddCommand(newMilestonesDeleteCmd(app))
	return cmd
}

func newMilestonesCreateCmd(app *App) *cobra.Command {
	var goalID, title, due string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a milestone under a goal (at most 5 per goal, due inside the plan window)",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			m, err := coord.CreateMilestone(cmd.Context(), goalID, strings.TrimSpace(title), due)
			if err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": m})
		},
	}

	cmd.Flags().StringVar(&goalID, "goal", "", "Parent goal id")
	cmd.Flags().StringVar(&title, "title", "", "Milestone title")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("goal")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func newMilestonesListCmd(app *App) *cobra.Command {
	var goalID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List milestones, optionally for one goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			ms := coord.Store().View().Milestones
			if goalID != "" {
				kept := ms[:0:0]
				for _, m := range ms {
					if m.LongTermGoalID == goalID {
						kept = append(kept, m)
					}
				}
				ms = kept
			}
			return writeOut(cmd, app, map[string]any{"data": ms})
		},
	}

	cmd.Flags().StringVar(&goalID, "goal", "", "Filter by goal id")
	return cmd
}

func newMilestonesUpdateCmd(app *App) *cobra.Command {
	var title, due string

	cmd := &cobra.Command{
		Use:   "update <milestone-id>",
		Short: "Update a milestone's title or due date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := api.Patch{}
			if cmd.Flags().Changed("title") {
				patch["title"] = strings.TrimSpace(title)
			}
			if cmd.Flags().Changed("due") {
				patch["due_date"] = due
			}
			if len(patch) == 0 {
				return writeErr(cmd, errConfirm("nothing to update; pass --title or --due"))
			}
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			m, err := coord.UpdateMilestone(cmd.Context(), args[0], patch)
			if err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": m})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD)")
	return cmd
}

func newMilestonesToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <milestone-id>",
		Short: "Toggle a milestone's completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			m, err := coord.ToggleMilestone(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": m})
		},
	}
}

func newMilestonesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <milestone-id>",
		Short: "Delete a milestone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			if err := coord.DeleteMilestone(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"deleted": args[0]}})
		},
	}
}
