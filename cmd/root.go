/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fulmenhq/noticegen/pkg/buildinfo"
	"github.com/fulmenhq/noticegen/pkg/exitcode"
	"github.com/fulmenhq/noticegen/pkg/logger"
	"github.com/spf13/cobra"
)

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "noticegen",
		Short: "Generate and verify third-party NOTICE files for Maven projects",
		Long: `Noticegen walks a Maven project's transitive dependencies and writes a NOTICE
file listing each dependency's name, version, license and homepage. It can
compare the result with the NOTICE file committed to the project to catch drift.

Examples:
   noticegen generate              # Generate target/NOTICE.txt and compare with NOTICE.txt
   noticegen generate ./service    # Same, for the project in ./service
   noticegen list --format json    # Show where each dependency's license comes from
   noticegen verify NOTICE.txt target/NOTICE.txt --diff
   noticegen version --extended`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	// Add global flags
	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("noticegen {{.Version}}\n")

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(newGenerateCommand())
	cmd.AddCommand(newVerifyCommand())
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newReportCommand())
	cmd.AddCommand(newVersionCommand())
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

// Execute runs the root command and exits with a code describing the failure.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		code := exitCodeFor(err)
		logger.Error("Command execution failed", logger.Err(err), logger.String("reason", exitcode.String(code)))
		os.Exit(code)
	}
}

func init() {
	registerSubcommands(rootCmd)
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	config := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor && os.Getenv("NO_COLOR") == "",
		JSON:      jsonLogs,
		Component: "noticegen",
	}

	if err := logger.Initialize(config); err != nil {
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(exitcode.ConfigError)
	}
	logger.SetOutput(cmd.ErrOrStderr())
}
