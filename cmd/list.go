/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/fulmenhq/noticegen/pkg/notice"
	"github.com/fulmenhq/noticegen/pkg/report"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [project-dir]",
		Short: "List the dependencies that would appear in the NOTICE file",
		Long: `List resolves the project's dependencies without writing anything and shows,
for each one, the license that would be used and whether it came from the POM,
from a hint, or is missing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runList,
	}
	addResolutionFlags(cmd)
	addArtifactFlag(cmd)
	cmd.Flags().String("format", string(report.FormatTable), "Output format (table|json)")
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	switch report.Format(format) {
	case report.FormatTable, report.FormatJSON:
	default:
		return fmt.Errorf("unsupported format: %s (use table or json)", format)
	}

	r, err := buildReport(cmd.Context(), cmd, args, configFlags(cmd, "format"))
	if err != nil {
		return err
	}
	out, err := r.Render(report.Format(format))
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// buildReport resolves the project and classifies its dependencies
func buildReport(ctx context.Context, cmd *cobra.Command, args []string, flags *pflag.FlagSet) (*report.Report, error) {
	project, err := loadProject(ctx, cmd, projectDir(args), flags)
	if err != nil {
		return nil, err
	}
	opts := project.cfg.NoticeOptions()

	walker, err := notice.NewWalker(project.resolver, opts.Exclude)
	if err != nil {
		return nil, err
	}
	deps, err := walker.CollectDependencies(ctx, project.root)
	if err != nil {
		return nil, err
	}
	return report.Build(project.root, deps, opts, time.Now()), nil
}
