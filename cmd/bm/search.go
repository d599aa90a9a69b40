package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmsync/internal/model"
	"github.com/nikbrunner/bmsync/internal/picker"
	"github.com/nikbrunner/bmsync/internal/search"
	"github.com/nikbrunner/bmsync/internal/visibility"
)

func newSearchCmd(app *App) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy search bookmarks, then open or copy one",
		Long: `Fuzzy search bookmark titles. A single match is opened directly;
several matches open a picker (enter/o opens, y copies the URL).

Examples:
  bm search golang
  bm search --filter hidden "release notes"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := visibility.ParseMode(filter)
			if err != nil {
				return err
			}
			if err := app.load(cmd.Context()); err != nil {
				return err
			}

			query := strings.Join(args, " ")
			out := cmd.OutOrStdout()
			results := search.Fuzzy(app.Syncer.View(mode, "").Tree, query)

			if len(results) == 0 {
				fmt.Fprintf(out, "No bookmarks found for '%s'\n", query)
				return nil
			}

			if len(results) == 1 {
				selected := results[0].Bookmark
				fmt.Fprintf(out, "Opening: %s\n", selected.Title)
				return app.OpenURL(selected.URL)
			}

			program := tea.NewProgram(picker.New(results, query), tea.WithContext(cmd.Context()))
			finalModel, err := program.Run()
			if err != nil {
				return fmt.Errorf("running picker: %w", err)
			}

			finalPicker := finalModel.(picker.Picker)
			if finalPicker.Cancelled() {
				return nil
			}
			return act(cmd, app, finalPicker.Action(), finalPicker.Selected())
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "search all, visible or hidden bookmarks")
	return cmd
}

func act(cmd *cobra.Command, app *App, action picker.Action, selected *model.Node) error {
	if selected == nil {
		return nil
	}
	out := cmd.OutOrStdout()
	switch action {
	case picker.ActionOpen:
		fmt.Fprintf(out, "Opening: %s\n", selected.Title)
		return app.OpenURL(selected.URL)
	case picker.ActionYank:
		if err := app.CopyText(selected.URL); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Fprintf(out, "Copied: %s\n", selected.URL)
	}
	return nil
}
