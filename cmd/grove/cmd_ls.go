package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newLsCmd(v *viper.Viper) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "ls <ref> [path]",
		Short: "List a directory on a branch or tag",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(v)
			if err != nil {
				return err
			}
			defer r.Close()

			out := cmd.OutOrStdout()
			if recursive {
				files, err := r.ListFiles(args[0])
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Fprintf(out, "%s %s %s\n", f.Mode, f.BlobHash, f.Path)
				}
				return nil
			}

			path := ""
			if len(args) == 2 {
				path = args[1]
			}
			entries, err := r.ListDirectory(args[0], path)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if e.IsDir {
					fmt.Fprintf(out, "%s %s %s/\n", e.Mode, e.SubtreeHash, e.Name)
				} else {
					fmt.Fprintf(out, "%s %s %s\n", e.Mode, e.BlobHash, e.Name)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "list every file under the root")

	return cmd
}
