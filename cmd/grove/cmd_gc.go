package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newGcCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "gc",
		Short: "Remove objects unreachable from any branch or tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(v)
			if err != nil {
				return err
			}
			defer r.Close()

			summary, err := r.GC()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if summary.Deleted == 0 {
				fmt.Fprintln(out, "nothing to collect")
				return nil
			}
			fmt.Fprintf(
				out,
				"collected %d of %d object(s), %d reachable from %d ref(s)\n",
				summary.Deleted,
				summary.Scanned,
				summary.Reachable,
				summary.Roots,
			)
			return nil
		},
	}
}
