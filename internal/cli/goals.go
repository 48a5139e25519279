package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"stride-cli/internal/api"
	"stride-cli/internal/model"
)

func newGoalsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Long-term goal commands",
	}
	cmd.AddCommand(newGoalsCreateCmd(app))
	cmd.AddCommand(newGoalsListCmd(app))
	cmd.AddCommand(newGoalsUpdateCmd(app))
	cmd.AddCommand(newGoalsProgressCmd(app))
	cmd.AddCommand(newGoalsDeleteCmd(app))
	return cmd
}

func newGoalsCreateCmd(app *App) *cobra.Command {
	var title, category string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a long-term goal (at most 6 per plan)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := model.ParseCategory(category)
			if err != nil {
				return writeErr(cmd, err)
			}
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			g, err := coord.CreateGoal(cmd.Context(), strings.TrimSpace(title), cat)
			if err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": g})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Goal title")
	cmd.Flags().StringVar(&category, "category", "", "Category (health|career|finance|relationships|learning|personal)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newGoalsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the selected plan's goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			return writeOut(cmd, app, map[string]any{"data": goalTable(coord.Store().View().Goals)})
		},
	}
}

func newGoalsUpdateCmd(app *App) *cobra.Command {
	var title, category string

	cmd := &cobra.Command{
		Use:   "update <goal-id>",
		Short: "Update a goal's title or category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := api.Patch{}
			if cmd.Flags().Changed("title") {
				patch["title"] = strings.TrimSpace(title)
			}
			if cmd.Flags().Changed("category") {
				cat, err := model.ParseCategory(category)
				if err != nil {
					return writeErr(cmd, err)
				}
				patch["category"] = cat
			}
			if len(patch) == 0 {
				return writeErr(cmd, errConfirm("nothing to update; pass --title or --category"))
			}
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			g, err := coord.UpdateGoal(cmd.Context(), args[0], patch)
			if err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": g})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	return cmd
}

func newGoalsProgressCmd(app *App) *cobra.Command {
	var progress int

	cmd := &cobra.Command{
		Use:   "progress <goal-id>",
		Short: "Set a goal's progress (0-100, steps of 5)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := model.ValidateProgress(progress); err != nil {
				return writeErr(cmd, err)
			}
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			// The CLI is one-shot, so write through instead of debouncing.
			g, err := coord.UpdateGoal(cmd.Context(), args[0], api.Patch{"progress_percentage": progress})
			if err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": g})
		},
	}

	cmd.Flags().IntVar(&progress, "value", 0, "Progress percentage")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}

func newGoalsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <goal-id>",
		Short: "Delete a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			if err := coord.DeleteGoal(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"deleted": args[0]}})
		},
	}
}
