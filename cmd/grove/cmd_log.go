package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newLogCmd(v *viper.Viper) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log <ref>",
		Short: "Show commit history of a branch or tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(v)
			if err != nil {
				return err
			}
			defer r.Close()

			entries, err := r.Log(args[0], limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "commit %s\n", e.Hash)
				if len(e.Commit.Parents) > 1 {
					fmt.Fprint(out, "Merge:")
					for _, p := range e.Commit.Parents {
						fmt.Fprintf(out, " %s", p[:12])
					}
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "Author: %s\n", e.Commit.Author)
				fmt.Fprintf(out, "Date:   %s\n", time.Unix(e.Commit.Timestamp, 0).Format(time.RFC1123))
				if e.Commit.Signature != "" {
					fmt.Fprintln(out, "Signed: yes")
				}
				fmt.Fprintf(out, "\n    %s\n\n", e.Commit.Message)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "max-count", "n", 0, "limit the number of commits shown")

	return cmd
}
