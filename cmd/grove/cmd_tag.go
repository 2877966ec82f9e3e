package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newTagCmd(v *viper.Viper) *cobra.Command {
	var deleteTag string
	var from string
	var message string

	cmd := &cobra.Command{
		Use:   "tag [name]",
		Short: "List, create, or delete tags",
		Long: "Without arguments lists tags. With a name creates a tag on the " +
			"commit --from resolves to; -m makes it an annotated tag object.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(v)
			if err != nil {
				return err
			}
			defer r.Close()

			if deleteTag != "" {
				if err := r.DeleteTag(deleteTag); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted tag '%s'\n", deleteTag)
				return nil
			}

			if len(args) == 1 {
				if err := r.CreateTag(args[0], from, message); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created tag '%s'\n", args[0])
				return nil
			}

			tags, err := r.ListTags()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range tags {
				fmt.Fprintf(out, "  %s\n", name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&deleteTag, "delete", "d", "", "delete the named tag")
	cmd.Flags().StringVar(&from, "from", "main", "ref the tag points at")
	cmd.Flags().StringVarP(&message, "message", "m", "", "create an annotated tag with this message")

	return cmd
}
