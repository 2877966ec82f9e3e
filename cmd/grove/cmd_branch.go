package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newBranchCmd(v *viper.Viper) *cobra.Command {
	var deleteBranch string
	var from string

	cmd := &cobra.Command{
		Use:   "branch [name]",
		Short: "List, create, or delete branches",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(v)
			if err != nil {
				return err
			}
			defer r.Close()

			// Delete mode.
			if deleteBranch != "" {
				if err := r.DeleteBranch(deleteBranch); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted branch '%s'\n", deleteBranch)
				return nil
			}

			// Create mode.
			if len(args) == 1 {
				if err := r.CreateBranch(args[0], from); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created branch '%s' from '%s'\n", args[0], from)
				return nil
			}

			// List mode.
			branches, err := r.ListBranches()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, b := range branches {
				fmt.Fprintf(out, "  %s\n", b)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&deleteBranch, "delete", "d", "", "delete the named branch")
	cmd.Flags().StringVar(&from, "from", "main", "ref the new branch starts at")

	return cmd
}
