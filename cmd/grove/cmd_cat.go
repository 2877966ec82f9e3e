package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newCatCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <ref> <path>",
		Short: "Print a file from a branch or tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(v)
			if err != nil {
				return err
			}
			defer r.Close()

			data, err := r.ReadFile(args[0], args[1])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
