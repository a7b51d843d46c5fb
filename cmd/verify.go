/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/fulmenhq/noticegen/pkg/ascii"
	"github.com/fulmenhq/noticegen/pkg/notice"
	"github.com/spf13/cobra"
)

func newVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify EXPECTED ACTUAL",
		Short: "Compare two NOTICE files line by line",
		Long: `Verify compares two NOTICE files after decoding them with --encoding.
Line terminators (\n, \r\n, \r) are interchangeable; everything else must
match exactly. Two missing files match; a single missing file does not.`,
		Args: cobra.ExactArgs(2),
		RunE: runVerify,
	}
	cmd.Flags().String("encoding", notice.DefaultEncoding, "Character encoding of both files")
	cmd.Flags().Bool("diff", false, "Print a unified diff when the files differ")
	return cmd
}

func runVerify(cmd *cobra.Command, args []string) error {
	encoding, _ := cmd.Flags().GetString("encoding")
	showDiff, _ := cmd.Flags().GetBool("diff")
	expected, actual := args[0], args[1]
	out := cmd.OutOrStdout()

	err := notice.Verify(expected, actual, encoding)
	var mismatch *notice.NoticeMismatchError
	if !errors.As(err, &mismatch) {
		if err == nil {
			fmt.Fprintf(out, "%s matches %s\n", actual, expected)
		}
		return err
	}

	lines := []string{
		"NOTICE files differ",
		"expected: " + expected,
		"actual:   " + actual,
	}
	if mismatch.Line > 0 {
		lines = append(lines, fmt.Sprintf("first difference at line %d", mismatch.Line))
	} else {
		lines = append(lines, "one of the files is missing")
	}
	fmt.Fprint(out, ascii.Box(lines))

	if showDiff {
		diff, diffErr := notice.UnifiedDiff(expected, actual, encoding)
		if diffErr != nil {
			return diffErr
		}
		fmt.Fprint(out, diff)
	}
	return err
}
