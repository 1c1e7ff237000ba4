package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// createLsCommand creates the ls subcommand
func createLsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls IMAGE [PATH]",
		Short: "Lists a directory of the image",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, img, err := openVolume(args[0])
			if err != nil {
				return err
			}
			defer img.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				return fs.List(out, fs.RootCluster(), "/")
			}
			if _, err := fs.ChangeDirectory(out, fs.RootCluster(), args[1]); err != nil {
				return fmt.Errorf("ls %s: %w", args[1], err)
			}
			return nil
		},
	}
}

// createCatCommand creates the cat subcommand
func createCatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cat IMAGE PATH",
		Short: "Writes a file of the image to stdout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, img, err := openVolume(args[0])
			if err != nil {
				return err
			}
			defer img.Close()

			if err := fs.ReadFile(cmd.OutOrStdout(), fs.RootCluster(), args[1]); err != nil {
				return fmt.Errorf("cat %s: %w", args[1], err)
			}
			return nil
		},
	}
}

// createTreeCommand creates the tree subcommand
func createTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree IMAGE",
		Short: "Prints every file and directory of the image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, img, err := openVolume(args[0])
			if err != nil {
				return err
			}
			defer img.Close()

			out := cmd.OutOrStdout()
			return afero.Walk(fs, "/", func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "%s %10d %s %s\n",
					info.Mode(), info.Size(), info.ModTime().Format("2006-01-02 15:04"), path)
				return err
			})
		},
	}
}
