package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/EugenEistrach/mockfn/internal/domain"
	m "github.com/EugenEistrach/mockfn/internal/model"
)

var runWriteFlag bool
var runCheckFlag bool
var runNoReportFlag bool

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Rewrite server function declarations for mock substitution",
		Long:  runLongDescription,
		RunE: func(_ *cobra.Command, args []string) error {
			paths := parsePaths(args)

			reportsPath := m.Path(viper.GetString(outputFlagName))
			if runNoReportFlag {
				reportsPath = ""
			}

			return workflow.Run(context.Background(), domain.RunArgs{
				Paths:   paths,
				Exclude: viper.GetStringSlice(excludeConfigKey),
				Options: optionsFromConfig(),
				Write:   runWriteFlag,
				Check:   runCheckFlag,
				Reports: reportsPath,
			})
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&runWriteFlag, "write", "w", false, "apply rewrites in place instead of previewing diffs")
	cmd.Flags().BoolVar(&runCheckFlag, "check", false, "run the project's tests against the rewritten tree in a temp copy")
	cmd.Flags().BoolVar(&runNoReportFlag, "no-report", false, "do not persist transform reports")
}
