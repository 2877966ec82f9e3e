package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/grovevcs/grove/pkg/repo"
)

func newInitCmd(v *viper.Viper) *cobra.Command {
	var backend string
	var noCompression bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty grove repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := v.GetString("repo")
			if len(args) > 0 {
				path = args[0]
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			cfg := repo.DefaultConfig()
			cfg.Storage.Backend = backend
			cfg.Storage.Compression = !noCompression

			r, err := repo.Init(abs, cfg)
			if err != nil {
				return err
			}
			defer r.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "initialized empty grove repository in %s\n", abs)
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", repo.BackendFile, "storage backend: file or badger")
	cmd.Flags().BoolVar(&noCompression, "no-compression", false, "store file-backend objects uncompressed")

	return cmd
}
