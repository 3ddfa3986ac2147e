// Package cmd provides the root command and CLI setup for mockfn.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/EugenEistrach/mockfn/internal/adapter"
	"github.com/EugenEistrach/mockfn/internal/controller"
	"github.com/EugenEistrach/mockfn/internal/domain"
	m "github.com/EugenEistrach/mockfn/internal/model"
)

var goFileAdapter adapter.GoFileAdapter
var sourceFSAdapter adapter.SourceFSAdapter
var reportStore adapter.ReportStore
var testAdapter adapter.TestRunnerAdapter
var verifier domain.Verifier
var workflow domain.Workflow
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

// excludePatterns is a root-level flag that filters files for applicable commands.
var excludePatterns []string

var factoryNameFlag string
var runtimeImportFlag string
var debugFlag bool
var verboseFlag bool
var plainFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	goFileAdapter = adapter.NewLocalGoFileAdapter()
	sourceFSAdapter = adapter.NewLocalSourceFSAdapter()
	reportStore = adapter.NewReportStore()
	testAdapter = adapter.NewLocalTestRunnerAdapter()
	verifier = domain.NewVerifier(sourceFSAdapter, testAdapter)
	workflow = domain.NewWorkflow(
		sourceFSAdapter,
		goFileAdapter,
		reportStore,
		ui,
		verifier,
	)
}

const pathPatternsHelp = `Supports Go-style path patterns:
  - ./...          recursively scan current directory
  - ./pkg/...      recursively scan pkg directory
  - ./cmd ./pkg    scan multiple directories`

const rootLongDescription = `Mockfn rewrites server function declarations so that tests can substitute
mock implementations registered with mockfn.RegisterMock. Declarations built
through the server function factory are replaced with a lookup that prefers a
registered mock and falls back to an error when none exists.

` + pathPatternsHelp

const runLongDescription = `Transform the given paths (default: current module). Without --write the
rewrites are previewed as diffs; with --write they are applied in place.

` + pathPatternsHelp

const listLongDescription = `List source files with mock registrations and server function declarations.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mockfn",
		Short: "Build-time mock substitution for server functions",
		Long:  rootLongDescription,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))

			if plainFlag {
				ui = controller.NewSimpleUI(cmd.Root())
				workflow = domain.NewWorkflow(
					sourceFSAdapter,
					goFileAdapter,
					reportStore,
					ui,
					verifier,
				)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for transform reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude files matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().StringVar(&factoryNameFlag, factoryNameFlagName, viper.GetString(factoryNameConfigKey), "server function factory to match (e.g. serverfn.New)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(factoryNameFlagName), factoryNameConfigKey)

	cmd.PersistentFlags().StringVar(&runtimeImportFlag, runtimeImportFlagName, viper.GetString(runtimeImportConfigKey), "import path of the mock registry runtime")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(runtimeImportFlagName), runtimeImportConfigKey)

	cmd.PersistentFlags().BoolVar(&debugFlag, debugFlagName, viper.GetBool(debugConfigKey), "log every skipped unit with its skip reason")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(debugFlagName), debugConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().BoolVar(&plainFlag, plainFlagName, false, "force plain output even on a TTY")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
