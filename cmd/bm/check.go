package main

import (
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmsync/internal/culler"
	"github.com/nikbrunner/bmsync/internal/model"
	"github.com/nikbrunner/bmsync/internal/visibility"
)

func newCheckCmd(app *App) *cobra.Command {
	var (
		filter   string
		hideDead bool
		quiet    bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check bookmark URLs for dead links",
		Long: `Request every bookmark URL and report dead (404/410) and unreachable ones.

404s from cull.exclude_domains are reported as possibly private instead of
dead. With --hide-dead, dead bookmarks are hidden in a single commit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := visibility.ParseMode(filter)
			if err != nil {
				return err
			}
			if err := app.load(cmd.Context()); err != nil {
				return err
			}

			flat := model.FlattenBookmarks(app.Syncer.View(mode, "").Tree)
			if len(flat) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No bookmarks to check")
				return nil
			}

			progress := func(done, total int) {
				if !quiet {
					fmt.Fprintf(cmd.ErrOrStderr(), "\rChecking %d/%d", done, total)
				}
			}
			results, err := culler.CheckURLs(cmd.Context(), flat, culler.Options{
				Concurrency:    app.Config.Cull.Concurrency,
				Timeout:        app.Config.Cull.Timeout,
				ExcludeDomains: app.Config.Cull.ExcludeDomains,
				Log:            app.Log,
			}, progress)
			if !quiet {
				fmt.Fprintln(cmd.ErrOrStderr())
			}
			if err != nil {
				return err
			}

			dead := printCheckResults(cmd.OutOrStdout(), results)
			if !hideDead || dead == 0 {
				return nil
			}

			ids := culler.DeadIDs(results)
			rep, err := app.Syncer.SetHiddenMany(cmd.Context(), ids, true)
			if err != nil {
				return fmt.Errorf("hiding dead bookmarks: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Hid %d dead bookmarks (%d removed from browser)\n", len(ids), rep.Removed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "visible", "check all, visible or hidden bookmarks")
	cmd.Flags().BoolVar(&hideDead, "hide-dead", false, "hide dead bookmarks")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "do not print progress")
	return cmd
}

// printCheckResults lists every non-healthy result and returns the number
// of dead ones.
func printCheckResults(out io.Writer, results []culler.Result) int {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, r := range results {
		if r.Status == culler.Healthy {
			continue
		}
		detail := r.Error
		if r.StatusCode != 0 {
			if detail == "" {
				detail = http.StatusText(r.StatusCode)
			}
			detail = fmt.Sprintf("%d %s", r.StatusCode, detail)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Status, r.Bookmark.ID, r.Bookmark.Title, r.Bookmark.URL, detail)
	}
	w.Flush()
	t := culler.Count(results)
	fmt.Fprintf(out, "%d healthy, %d dead, %d unreachable\n", t.Healthy, t.Dead, t.Unreachable)
	return t.Dead
}
