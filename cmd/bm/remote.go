package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Inspect and manage the Gitee repository",
	}

	cmd.AddCommand(newRemoteBranchesCmd(app))
	cmd.AddCommand(newRemoteFilesCmd(app))
	cmd.AddCommand(newRemoteCreateCmd(app))
	cmd.AddCommand(newRemoteDeleteCmd(app))
	cmd.AddCommand(newRemoteOpenCmd(app))
	return cmd
}

func newRemoteBranchesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "branches",
		Short: "List repository branches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.requireRemote()
			if err != nil {
				return err
			}
			branches, err := client.ListBranches(cmd.Context())
			if err != nil {
				return err
			}
			current := client.Settings().Branch
			for _, b := range branches {
				marker := "  "
				if b == current {
					marker = "* "
				}
				fmt.Fprintln(cmd.OutOrStdout(), marker+b)
			}
			return nil
		},
	}
}

func newRemoteFilesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "files [dir]",
		Short: "List files in a repository directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.requireRemote()
			if err != nil {
				return err
			}
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			files, err := client.ListFiles(cmd.Context(), dir)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
}

func newRemoteCreateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create <path>",
		Short: "Create an empty bookmark file in the repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.requireRemote()
			if err != nil {
				return err
			}
			if app.flags.dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would create %s\n", args[0])
				return nil
			}
			if err := client.CreateFile(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", args[0])
			return nil
		},
	}
}

func newRemoteDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path>",
		Short: "Delete a file from the repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.requireRemote()
			if err != nil {
				return err
			}
			if args[0] == client.Settings().FilePath {
				return fmt.Errorf("refusing to delete the configured bookmark file %s", args[0])
			}
			if app.flags.dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would delete %s\n", args[0])
				return nil
			}
			if err := client.DeleteFile(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newRemoteOpenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "open [path]",
		Short: "Open the bookmark file (or another file) on gitee.com",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.requireRemote()
			if err != nil {
				return err
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			url := client.WebURL(path)
			fmt.Fprintf(cmd.OutOrStdout(), "Opening: %s\n", url)
			return app.OpenURL(url)
		},
	}
}
