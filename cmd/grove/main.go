package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/grovevcs/grove/pkg/repo"
)

func main() {
	v := viper.New()
	v.SetEnvPrefix("GROVE")
	v.AutomaticEnv()
	v.SetDefault("repo", ".")

	root := &cobra.Command{
		Use:   "grove",
		Short: "Content-addressed branch storage with atomic publication",
	}
	root.PersistentFlags().String("repo", v.GetString("repo"), "repository directory (env GROVE_REPO)")
	if err := v.BindPFlag("repo", root.PersistentFlags().Lookup("repo")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(v))
	root.AddCommand(newPutCmd(v))
	root.AddCommand(newRmCmd(v))
	root.AddCommand(newCatCmd(v))
	root.AddCommand(newLsCmd(v))
	root.AddCommand(newBranchCmd(v))
	root.AddCommand(newTagCmd(v))
	root.AddCommand(newMergeCmd(v))
	root.AddCommand(newLogCmd(v))
	root.AddCommand(newGcCmd(v))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "grove 0.1.0-dev")
		},
	}
}

// openRepo opens the repository the --repo flag (or GROVE_REPO) points at
// and attaches a commit signer when the config asks for one.
func openRepo(v *viper.Viper) (*repo.Repo, error) {
	r, err := repo.Open(v.GetString("repo"))
	if err != nil {
		return nil, err
	}
	if key := r.Config.Sign.Key; key != "" {
		signer, _, err := newSSHCommitSigner(key)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.Signer = signer
	}
	return r, nil
}
