package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/EugenEistrach/mockfn/internal/domain"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [paths...]",
		Short: "List mock registrations and server functions",
		Long:  listLongDescription,
		RunE: func(_ *cobra.Command, args []string) error {
			paths := parsePaths(args)

			return workflow.List(context.Background(), domain.ListArgs{
				Paths:   paths,
				Exclude: viper.GetStringSlice(excludeConfigKey),
				Options: optionsFromConfig(),
			})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
