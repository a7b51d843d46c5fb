/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"

	"github.com/fulmenhq/noticegen/pkg/logger"
	"github.com/fulmenhq/noticegen/pkg/notice"
	"github.com/fulmenhq/noticegen/pkg/report"
	"github.com/fulmenhq/noticegen/pkg/safeio"
	"github.com/spf13/cobra"
)

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [project-dir]",
		Short: "Render a Markdown, HTML or JSON licensing report",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runReport,
	}
	addResolutionFlags(cmd)
	addArtifactFlag(cmd)
	cmd.Flags().String("format", string(report.FormatMarkdown), "Report format (markdown|html|json)")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	switch report.Format(format) {
	case report.FormatMarkdown, report.FormatHTML, report.FormatJSON:
	default:
		return fmt.Errorf("unsupported format: %s (use markdown, html or json)", format)
	}

	// --output names the report file here, not the notice.
	r, err := buildReport(cmd.Context(), cmd, args, configFlags(cmd, "format", "output"))
	if err != nil {
		return err
	}
	rendered, err := r.Render(report.Format(format))
	if err != nil {
		return err
	}

	if output == "" {
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	}
	if err := safeio.WriteFileAtomic(output, []byte(rendered)); err != nil {
		return &notice.OutputWriteError{Path: output, Err: err}
	}
	logger.Info("Wrote report", logger.String("path", output), logger.String("format", format))
	return nil
}
