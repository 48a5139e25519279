package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"stride-cli/internal/api"
	"stride-cli/internal/config"
	"stride-cli/internal/model"
)

func newPlansCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Plan commands",
	}
	cmd.AddCommand(newPlansCreateCmd(app))
	cmd.AddCommand(newPlansListCmd(app))
	cmd.AddCommand(newPlansShowCmd(app))
	cmd.AddCommand(newPlansUseCmd(app))
	cmd.AddCommand(newPlansRenameCmd(app))
	cmd.AddCommand(newPlansArchiveCmd(app))
	cmd.AddCommand(newPlansDeleteCmd(app))
	return cmd
}

func newPlansCreateCmd(app *App) *cobra.Command {
	var name, start string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a 12-week plan (start date must be a Monday)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := model.ValidateStartDate(start); err != nil {
				return writeErr(cmd, err)
			}
			cfg, err := config.Load()
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := newClient(app, cfg).CreatePlan(cmd.Context(), model.Plan{
				Name:      strings.TrimSpace(name),
				StartDate: start,
				Status:    model.PlanReady,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Plan name")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD, a Monday)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func newPlansListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return writeErr(cmd, err)
			}
			plans, err := newClient(app, cfg).ListPlans(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": planTable(plans)})
		},
	}
}

func newPlansShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <plan-id>",
		Short: "Show one plan with its derived end date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := newClient(app, cfg).GetPlan(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			end, err := p.EndDate()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": p, "meta": map[string]any{"end_date": end}})
		},
	}
}

func newPlansUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <plan-id>",
		Short: "Select the plan later commands operate on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return writeErr(cmd, err)
			}
			// Fail early on a bad id rather than poisoning the config.
			p, err := newClient(app, cfg).GetPlan(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg.CurrentPlanID = p.ID
			if err := config.Save(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}
}

func newPlansRenameCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Rename the selected plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			p, err := coord.UpdatePlan(cmd.Context(), api.Patch{"name": strings.TrimSpace(name)})
			if err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New plan name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newPlansArchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Archive the selected plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			p, err := coord.ArchivePlan(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			refreshCache(cmd.Context(), coord)
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}
}

func newPlansDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the selected plan and everything under it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return writeErr(cmd, errConfirm("plan deletion removes all goals and tasks; pass --yes"))
			}
			coord, cfg, err := loadCoordinator(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer coord.Close()
			planID := coord.Store().View().Plan.ID
			if err := coord.DeletePlan(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			if c, err := openCache(); err == nil {
				_ = c.Drop(cmd.Context(), planID)
			}
			if cfg.CurrentPlanID == planID {
				cfg.CurrentPlanID = ""
				_ = config.Save(cfg)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]string{"deleted": planID}})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation check")
	return cmd
}
