package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmsync/internal/model"
	bmsync "github.com/nikbrunner/bmsync/internal/sync"
)

func newHideCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "hide <id>",
		Short: "Hide a bookmark or folder (and everything inside it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return changeVisibility(cmd, app, func() (model.Node, bmsync.Report, error) {
				return app.Syncer.SetHidden(cmd.Context(), args[0], true)
			})
		},
	}
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a hidden bookmark or folder again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return changeVisibility(cmd, app, func() (model.Node, bmsync.Report, error) {
				return app.Syncer.SetHidden(cmd.Context(), args[0], false)
			})
		},
	}
}

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip the hidden flag of a bookmark or folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return changeVisibility(cmd, app, func() (model.Node, bmsync.Report, error) {
				return app.Syncer.Toggle(cmd.Context(), args[0])
			})
		},
	}
}

func changeVisibility(cmd *cobra.Command, app *App, change func() (model.Node, bmsync.Report, error)) error {
	if err := app.load(cmd.Context()); err != nil {
		return err
	}
	node, rep, err := change()
	if err != nil {
		return err
	}

	verb := "Shown"
	if node.Hidden {
		verb = "Hidden"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %q (%d created in browser)\n", verb, node.Title, rep.Created)
	return nil
}
