package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stride-cli/internal/api"
	"stride-cli/internal/cache"
	"stride-cli/internal/config"
	"stride-cli/internal/format"
	"stride-cli/internal/state"
	"stride-cli/internal/tui"
)

type App struct {
	APIURL     string
	PlanID     string
	PrettyJSON bool
	Format     string
	Debug      bool
	Cached     bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "stride",
		Short:        "12-week plan CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  stride

  # Scriptable commands
  stride tasks list --week 3

  # Today's lanes
  stride day 3 2
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", "", "Base URL of the planning service (default: STRIDE_API_URL, then config)")
	cmd.PersistentFlags().StringVar(&app.PlanID, "plan", envOr("STRIDE_PLAN", ""), "Plan id (default: currentPlanId in config)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("STRIDE_FORMAT", "json"), "Output format (json|table)")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Log API traffic to stderr")
	cmd.PersistentFlags().BoolVar(&app.Cached, "cached", false, "Read from the local snapshot without contacting the service")

	cmd.AddCommand(newPlansCmd(app))
	cmd.AddCommand(newGoalsCmd(app))
	cmd.AddCommand(newMilestonesCmd(app))
	cmd.AddCommand(newWeeklyGoalsCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newWeekCmd(app))
	cmd.AddCommand(newDayCmd(app))
	cmd.AddCommand(newDashboardCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

func runTUI(app *App) error {
	ctx := context.Background()
	coord, cfg, err := loadCoordinator(ctx, app)
	if err != nil {
		return err
	}
	defer coord.Close()
	return tui.Run(coord, cfg)
}

func (a *App) logger() *zap.Logger {
	if !a.Debug {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func newClient(app *App, cfg *config.Config) *api.Client {
	return api.New(api.Config{
		BaseURL: config.ResolveAPIURL(app.APIURL, cfg),
		Token:   config.ResolveToken(cfg),
		Logger:  app.logger(),
	})
}

func resolvePlanID(app *App, cfg *config.Config) (string, error) {
	if app.PlanID != "" {
		return app.PlanID, nil
	}
	if cfg.CurrentPlanID != "" {
		return cfg.CurrentPlanID, nil
	}
	return "", errors.New("no plan selected; run `stride plans use <plan-id>` (or pass --plan)")
}

func openCache() (*cache.Cache, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return cache.New(dir)
}

// loadCoordinator builds the client and loads the selected plan's bundle. A
// failed fetch falls back to the cached snapshot; a successful fetch
// refreshes it.
func loadCoordinator(ctx context.Context, app *App) (*state.Coordinator, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	planID, err := resolvePlanID(app, cfg)
	if err != nil {
		return nil, nil, err
	}

	coord := state.NewCoordinator(state.NewStore(), newClient(app, cfg), state.Options{
		Logger: app.logger(),
	})

	if app.Cached {
		c, err := openCache()
		if err != nil {
			return nil, nil, err
		}
		b, err := c.Get(ctx, planID)
		if err != nil {
			return nil, nil, err
		}
		coord.LoadBundle(b)
		return coord, cfg, nil
	}

	if err := coord.Load(ctx, planID); err != nil {
		c, cerr := openCache()
		if cerr != nil {
			return nil, nil, err
		}
		b, cerr := c.Get(ctx, planID)
		if cerr != nil {
			return nil, nil, err
		}
		if at, aerr := c.FetchedAt(ctx, planID); aerr == nil {
			fmt.Fprintf(os.Stderr, "warning: service unreachable, using snapshot from %s\n", at.Format("2006-01-02 15:04"))
		} else {
			fmt.Fprintln(os.Stderr, "warning: service unreachable, using cached snapshot")
		}
		coord.LoadBundle(b)
		return coord, cfg, nil
	}

	if c, err := openCache(); err == nil {
		_ = c.Put(ctx, coord.Bundle())
	}
	return coord, cfg, nil
}

// refreshCache mirrors the coordinator's post-mutation state back to disk.
func refreshCache(ctx context.Context, coord *state.Coordinator) {
	if c, err := openCache(); err == nil {
		_ = c.Put(ctx, coord.Bundle())
	}
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
