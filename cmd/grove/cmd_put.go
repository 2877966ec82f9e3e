package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newPutCmd(v *viper.Viper) *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "put <branch> <path> [content]",
		Short: "Write a file on a branch and publish the commit",
		Long: "Writes content at the given path on the named branch and publishes " +
			"the resulting commit atomically. Content comes from the third " +
			"argument, from --file, or from stdin.",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			branch, path := args[0], args[1]

			var content []byte
			switch {
			case len(args) == 3:
				content = []byte(args[2])
			case fromFile != "":
				data, err := os.ReadFile(fromFile)
				if err != nil {
					return fmt.Errorf("read %s: %w", fromFile, err)
				}
				content = data
			default:
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				content = data
			}

			r, err := openRepo(v)
			if err != nil {
				return err
			}
			defer r.Close()

			commitHash, err := r.PutFile(branch, path, content)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] put %s\n", branch, commitHash[:12], path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "read content from a local file")

	return cmd
}
