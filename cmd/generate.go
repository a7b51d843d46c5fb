/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"

	"github.com/fulmenhq/noticegen/pkg/notice"
	"github.com/spf13/cobra"
)

func newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate [project-dir]",
		Aliases: []string{"verify-notice"},
		Short:   "Generate the NOTICE file and compare it with the committed one",
		Long: `Generate walks the project's dependencies, writes the NOTICE file to the
output path and, unless --match-with-existing=false, fails when the committed
NOTICE file differs from the generated one.

Nothing is written when the project has no dependencies and no modified code
entries.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGenerate,
	}
	addResolutionFlags(cmd)
	cmd.Flags().String("output", "", "Where to write the generated notice (default target/NOTICE.txt)")
	cmd.Flags().String("notice", "", "Committed notice to compare against (default NOTICE.txt)")
	cmd.Flags().Bool("match-with-existing", true, "Compare the generated notice with the committed one")
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	project, err := loadProject(ctx, cmd, projectDir(args), cmd.Flags())
	if err != nil {
		return err
	}

	result, err := notice.Run(ctx, project.root, project.resolver, project.cfg.NoticeOptions())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Written {
		fmt.Fprintf(out, "Wrote %s (%d dependencies, %d modified code entries)\n",
			project.cfg.NoticeOutputPath, len(result.Dependencies), len(project.cfg.ModifiedCode))
	} else {
		fmt.Fprintln(out, "No dependencies or modified code entries, nothing written")
	}
	if result.Verified {
		fmt.Fprintf(out, "%s is up to date\n", project.cfg.ExistingNoticePath)
	}
	return nil
}
