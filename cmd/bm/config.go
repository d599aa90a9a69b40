package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmsync/internal/gitee"
	bmsync "github.com/nikbrunner/bmsync/internal/sync"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or store the remote settings",
		Long: `Show or store the Gitee settings.

Settings stored with 'bm config set' take precedence over the config file
and BM_GITEE_* environment variables.`,
	}

	cmd.AddCommand(newConfigGetCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	return cmd
}

func newConfigGetCmd(app *App) *cobra.Command {
	var showToken bool

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show the effective remote settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := bmsync.ResolveSettings(cmd.Context(), app.KV, app.Config.Gitee.Settings())
			if err != nil {
				return err
			}
			if !showToken {
				settings = settings.Redacted()
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "token\t%s\n", settings.Token)
			fmt.Fprintf(w, "owner\t%s\n", settings.Owner)
			fmt.Fprintf(w, "repo\t%s\n", settings.Repo)
			fmt.Fprintf(w, "branch\t%s\n", settings.Branch)
			fmt.Fprintf(w, "file_path\t%s\n", settings.FilePath)
			fmt.Fprintf(w, "config_file\t%s\n", app.Config.File)
			fmt.Fprintf(w, "data_dir\t%s\n", app.Config.DataDir)
			fmt.Fprintf(w, "bookmarks_file\t%s\n", app.Config.BookmarksFile)
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&showToken, "show-token", false, "print the token unmasked")
	return cmd
}

func newConfigSetCmd(app *App) *cobra.Command {
	var s gitee.Settings

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store remote settings",
		Long: `Store remote settings. Only the given flags are changed.

Example:
  bm config set --token abc123 --owner nik --repo bookmarks`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if s == (gitee.Settings{}) {
				return fmt.Errorf("nothing to set, pass at least one of --token, --owner, --repo, --branch, --file-path")
			}
			if err := bmsync.SaveSettings(cmd.Context(), app.KV, s); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}

			resolved, err := bmsync.ResolveSettings(cmd.Context(), app.KV, app.Config.Gitee.Settings())
			if err != nil {
				return err
			}
			if err := resolved.Validate(); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved, but the remote is not usable yet: %v\n", err)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved, remote is %s/%s@%s:%s\n",
				resolved.Owner, resolved.Repo, resolved.WithDefaults().Branch, resolved.WithDefaults().FilePath)
			return nil
		},
	}

	cmd.Flags().StringVar(&s.Token, "token", "", "Gitee personal access token")
	cmd.Flags().StringVar(&s.Owner, "owner", "", "repository owner")
	cmd.Flags().StringVar(&s.Repo, "repo", "", "repository name")
	cmd.Flags().StringVar(&s.Branch, "branch", "", "branch (default master)")
	cmd.Flags().StringVar(&s.FilePath, "file-path", "", "bookmark file path in the repository")
	return cmd
}
