package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	bmsync "github.com/nikbrunner/bmsync/internal/sync"
)

func newSyncCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Move bookmarks between the browser and the remote file",
		Long: `Move bookmarks between the browser and the remote file.

  push    upload the browser's bookmarks to the remote file
  pull    replace the browser's bookmarks bar with the remote one
  apply   rewrite the browser's bookmarks bar with the visible managed tree

With --merge, push and pull union both sides instead of overwriting.`,
	}

	cmd.AddCommand(newSyncPushCmd(app))
	cmd.AddCommand(newSyncPullCmd(app))
	cmd.AddCommand(newSyncApplyCmd(app))
	return cmd
}

func newSyncPushCmd(app *App) *cobra.Command {
	var merge bool

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Upload browser bookmarks to the remote file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := app.Syncer.Push(cmd.Context(), strategy(merge))
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), "Pushed", rep)
			return nil
		},
	}

	cmd.Flags().BoolVar(&merge, "merge", false, "merge with the remote content instead of overwriting it")
	return cmd
}

func newSyncPullCmd(app *App) *cobra.Command {
	var merge bool

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Replace the browser bookmarks bar with the remote one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := app.Syncer.Pull(cmd.Context(), strategy(merge))
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), "Pulled", rep)
			return nil
		},
	}

	cmd.Flags().BoolVar(&merge, "merge", false, "merge with the browser bookmarks instead of replacing them")
	return cmd
}

func newSyncApplyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Rewrite the browser bookmarks bar with the visible managed tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			rep, err := app.Syncer.ApplyToHost(cmd.Context())
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), "Applied", rep)
			return nil
		},
	}
}

func strategy(merge bool) bmsync.Strategy {
	if merge {
		return bmsync.Merge
	}
	return bmsync.Overwrite
}

func printReport(out io.Writer, verb string, rep bmsync.Report) {
	fmt.Fprintf(out, "%s (%s)", verb, rep.Strategy)
	if rep.Strategy == bmsync.Merge {
		fmt.Fprintf(out, ": %d added, %d duplicates skipped, %d folders merged", rep.Merge.Added, rep.Merge.Skipped, rep.Merge.Folders)
	}
	if rep.Removed > 0 || rep.Created > 0 {
		fmt.Fprintf(out, ", browser: %d removed, %d created", rep.Removed, rep.Created)
	}
	if rep.Revision != "" {
		fmt.Fprintf(out, ", revision %s", shortRevision(rep.Revision))
	}
	fmt.Fprintln(out)
}

func shortRevision(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}
