package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmsync/internal/exporter"
	"github.com/nikbrunner/bmsync/internal/importer"
	"github.com/nikbrunner/bmsync/internal/stats"
	"github.com/nikbrunner/bmsync/internal/storage"
	"github.com/nikbrunner/bmsync/internal/visibility"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.html>",
		Short: "Merge a Netscape bookmark HTML export into the bookmarks bar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening file: %w", err)
			}
			defer file.Close()

			nodes, err := importer.ParseHTML(file)
			if err != nil {
				return fmt.Errorf("parsing HTML: %w", err)
			}

			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			rep, err := app.Syncer.Import(cmd.Context(), nodes)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d bookmarks, %d folders", rep.Merge.Added, rep.Merge.Folders)
			if rep.Merge.Skipped > 0 {
				fmt.Fprintf(out, " (%d duplicates skipped)", rep.Merge.Skipped)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}

func newExportCmd(app *App) *cobra.Command {
	var (
		format string
		filter string
	)

	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Export the managed tree as HTML or JSON",
		Long: `Export the managed tree. The default path is
~/Downloads/bookmarks-export-YYYY-MM-DD.<format>.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := exporter.ParseFormat(format)
			if err != nil {
				return err
			}
			mode, err := visibility.ParseMode(filter)
			if err != nil {
				return err
			}

			outputPath := ""
			if len(args) == 1 {
				outputPath = args[0]
			} else if outputPath, err = exporter.DefaultExportPath(f, time.Now()); err != nil {
				return fmt.Errorf("getting default export path: %w", err)
			}

			if err := app.load(cmd.Context()); err != nil {
				return err
			}
			tree := app.Syncer.View(mode, "").Tree
			data, err := exporter.Export(tree, f)
			if err != nil {
				return err
			}
			if err := storage.WriteFileAtomic(outputPath, data, 0644); err != nil {
				return fmt.Errorf("writing file: %w", err)
			}

			s := stats.Compute(tree, time.Now())
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bookmarks, %d folders to %s\n", s.Bookmarks, s.Folders, outputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "html", "html or json")
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "export all, visible or hidden bookmarks")
	return cmd
}
