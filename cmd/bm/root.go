package main

import (
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmsync/internal/tui"
	"github.com/nikbrunner/bmsync/internal/visibility"
)

func newRootCmd() (*cobra.Command, *App) {
	app := &App{
		OpenURL:  openURL,
		CopyText: clipboard.WriteAll,
	}
	var filter string

	cmd := &cobra.Command{
		Use:   "bm",
		Short: "Browse and hide browser bookmarks, synced through a Gitee repository",
		Long: `bm keeps a managed copy of your browser bookmarks in a Gitee repository.
Hidden bookmarks stay in the repository but are removed from the browser's
bookmarks bar; showing them again recreates them.

Run without arguments to open the interactive browser.

TUI Keybindings:
  j/k         Move down/up
  h/l, tab    Switch pane
  gg/G        Jump to top/bottom
  space/t     Hide or show the selection
  f           Cycle filter (all, visible, hidden)
  /           Search
  o/Enter     Open bookmark
  y           Copy URL
  r           Reload
  ?           Help
  q           Quit

Data Storage:
  ~/.config/bm/config.yaml     configuration
  ~/.config/bm/bookmarks.db    offline snapshot and stored remote settings`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := visibility.ParseMode(filter)
			if err != nil {
				return err
			}
			return runTUI(cmd, app, mode)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&app.flags.configFile, "config", "", "config file (default is $HOME/.config/bm/config.yaml)")
	flags.StringVar(&app.flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&app.flags.dryRun, "dry-run", false, "do not modify the browser or the remote file")
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "initial filter: all, visible or hidden")

	cmd.AddCommand(newSearchCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newStatsCmd(app))
	cmd.AddCommand(newHideCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newToggleCmd(app))
	cmd.AddCommand(newSyncCmd(app))
	cmd.AddCommand(newRemoteCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newCheckCmd(app))

	return cmd, app
}

// runTUI runs the full interactive browser.
func runTUI(cmd *cobra.Command, app *App, mode visibility.Mode) error {
	ctx := cmd.Context()
	if err := app.load(ctx); err != nil {
		return err
	}

	model := tui.NewApp(tui.AppParams{
		Backend:  app.Syncer,
		Context:  ctx,
		Mode:     mode,
		CopyText: app.CopyText,
		OpenURL:  app.OpenURL,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running app: %w", err)
	}
	return nil
}
