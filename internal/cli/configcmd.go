package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"stride-cli/internal/config"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change stride settings",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return writeErr(cmd, err)
			}
			// Never echo the token in full.
			masked := *cfg
			if masked.Token != "" {
				masked.Token = "***"
			}
			return writeOut(cmd, app, map[string]any{"data": masked})
		},
	}
}

func newConfigSetCmd(app *App) *cobra.Command {
	var apiURL, token, glyphs string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set a config value",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return writeErr(cmd, err)
			}
			changed := false
			if cmd.Flags().Changed("api-url") {
				cfg.APIURL = strings.TrimSpace(apiURL)
				changed = true
			}
			if cmd.Flags().Changed("token") {
				cfg.Token = strings.TrimSpace(token)
				changed = true
			}
			if cmd.Flags().Changed("glyphs") {
				if cfg.TUI == nil {
					cfg.TUI = &config.TUIConfig{}
				}
				cfg.TUI.Glyphs = strings.TrimSpace(glyphs)
				changed = true
			}
			if !changed {
				return writeErr(cmd, errConfirm("nothing to set; pass --api-url, --token or --glyphs"))
			}
			if err := config.Save(cfg); err != nil {
				return writeErr(cmd, err)
			}
			masked := *cfg
			if masked.Token != "" {
				masked.Token = "***"
			}
			return writeOut(cmd, app, map[string]any{"data": masked})
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "Base URL of the planning service")
	cmd.Flags().StringVar(&token, "token", "", "API bearer token")
	cmd.Flags().StringVar(&glyphs, "glyphs", "", "TUI glyph set (unicode|ascii)")
	return cmd
}
