package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/grovevcs/grove/pkg/tree"
)

func newMergeCmd(v *viper.Viper) *cobra.Command {
	var resolve []string
	var resolveFiles []string

	cmd := &cobra.Command{
		Use:   "merge <source> <dest>",
		Short: "Merge one branch into another",
		Long: "Three-way merges the source branch into the dest branch and " +
			"publishes the result. Conflicting paths fail the merge unless a " +
			"resolution is supplied with --resolve path=content or " +
			"--resolve-file path=localfile.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, dest := args[0], args[1]

			resolutions := tree.Resolutions{}
			for _, pair := range resolve {
				path, content, ok := strings.Cut(pair, "=")
				if !ok {
					return fmt.Errorf("invalid --resolve %q: want path=content", pair)
				}
				resolutions[path] = []byte(content)
			}
			for _, pair := range resolveFiles {
				path, file, ok := strings.Cut(pair, "=")
				if !ok {
					return fmt.Errorf("invalid --resolve-file %q: want path=localfile", pair)
				}
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read resolution %s: %w", file, err)
				}
				resolutions[path] = data
			}

			r, err := openRepo(v)
			if err != nil {
				return err
			}
			defer r.Close()

			commitHash, err := r.MergeBranches(source, dest, resolutions)
			if err != nil {
				var conflict *tree.ConflictError
				if errors.As(err, &conflict) {
					return fmt.Errorf("merge conflict at %s: re-run with --resolve %s=<content>", conflict.Path, conflict.Path)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "merged '%s' into '%s' at %s\n", source, dest, commitHash[:12])
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&resolve, "resolve", nil, "resolve a conflicting path with literal content (path=content)")
	cmd.Flags().StringArrayVar(&resolveFiles, "resolve-file", nil, "resolve a conflicting path from a local file (path=localfile)")

	return cmd
}
