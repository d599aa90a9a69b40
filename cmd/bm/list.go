package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmsync/internal/model"
	"github.com/nikbrunner/bmsync/internal/stats"
	"github.com/nikbrunner/bmsync/internal/visibility"
)

// listEntry is one bookmark in `bm list --json` output.
type listEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Path      string `json:"path"`
	Hidden    bool   `json:"hidden"`
	DateAdded *int64 `json:"dateAdded,omitempty"`
}

func newListCmd(app *App) *cobra.Command {
	var (
		filter string
		query  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List bookmarks of the managed tree",
		Long: `List bookmarks with their ids and folder paths.

Examples:
  bm list                    # everything
  bm list --filter hidden    # only hidden bookmarks
  bm list -q docs --json     # titles or URLs containing "docs", as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := visibility.ParseMode(filter)
			if err != nil {
				return err
			}
			if err := app.load(cmd.Context()); err != nil {
				return err
			}

			flat := model.FlattenBookmarks(app.Syncer.View(mode, query).Tree)
			if asJSON {
				entries := make([]listEntry, 0, len(flat))
				for _, fb := range flat {
					entries = append(entries, listEntry{
						ID:        fb.Node.ID,
						Title:     fb.Node.Title,
						URL:       fb.Node.URL,
						Path:      fb.Path,
						Hidden:    fb.Node.Hidden,
						DateAdded: fb.Node.DateAdded,
					})
				}
				return outputJSON(cmd.OutOrStdout(), entries)
			}

			if len(flat) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No bookmarks found")
				return nil
			}
			printBookmarksTable(cmd.OutOrStdout(), flat)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "all, visible or hidden")
	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive substring of title or URL")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newStatsCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count bookmarks, folders and recently added bookmarks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			view := app.Syncer.View(visibility.ModeAll, "")
			if asJSON {
				return outputJSON(cmd.OutOrStdout(), struct {
					Source string      `json:"source"`
					Stats  stats.Stats `json:"stats"`
				}{view.Source.String(), view.Stats})
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Bookmarks:\t%d\n", view.Stats.Bookmarks)
			fmt.Fprintf(w, "Folders:\t%d\n", view.Stats.Folders)
			fmt.Fprintf(w, "Recent (7d):\t%d\n", view.Stats.Recent)
			fmt.Fprintf(w, "Source:\t%s\n", view.Source)
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func printBookmarksTable(out io.Writer, flat []model.FlatBookmark) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPATH\tURL\tHIDDEN")
	for _, fb := range flat {
		hidden := ""
		if fb.Node.Hidden {
			hidden = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", fb.Node.ID, fb.Node.Title, fb.Path, fb.Node.URL, hidden)
	}
	w.Flush()
}

func outputJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
