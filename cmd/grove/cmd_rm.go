package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRmCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <branch> <path>",
		Short: "Remove a file on a branch and publish the commit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			branch, path := args[0], args[1]

			r, err := openRepo(v)
			if err != nil {
				return err
			}
			defer r.Close()

			commitHash, err := r.RemoveFile(branch, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] rm %s\n", branch, commitHash[:12], path)
			return nil
		},
	}
}
