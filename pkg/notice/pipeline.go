package notice

import (
	"context"

	"github.com/fulmenhq/noticegen/pkg/logger"
	"github.com/fulmenhq/noticegen/pkg/maven"
	"github.com/fulmenhq/noticegen/pkg/safeio"
	"golang.org/x/text/transform"
)

// Options configures one generate-and-verify run.
type Options struct {
	OutputPath        string
	ExistingPath      string
	MatchWithExisting bool
	Strict            bool
	Encoding          string
	ModifiedCode      []ProjectDescription
	Hints             []ProjectDescription
	Exclude           []string
}

// Result describes what a run produced.
type Result struct {
	Dependencies []*maven.Project
	Notice       string
	// Written is false when there was nothing to list.
	Written bool
	// Verified is true when the existing notice was compared and matched.
	Verified bool
}

// Run collects the dependencies of root, renders the notice, writes it to
// opts.OutputPath and, when requested, compares it with opts.ExistingPath.
// A strict-mode failure aborts before anything is written.
func Run(ctx context.Context, root *maven.Project, resolver Resolver, opts Options) (*Result, error) {
	enc, err := LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	walker, err := NewWalker(resolver, opts.Exclude)
	if err != nil {
		return nil, err
	}
	deps, err := walker.CollectDependencies(ctx, root)
	if err != nil {
		return nil, err
	}
	logger.Debug("Collected dependencies", logger.String("project", root.Coordinate.String()),
		logger.Int("count", len(deps)))

	text, err := Render(deps, RenderOptions{
		ModifiedCode: opts.ModifiedCode,
		Hints:        opts.Hints,
		Strict:       opts.Strict,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Dependencies: deps, Notice: text}
	if len(deps) == 0 && len(opts.ModifiedCode) == 0 {
		logger.Info("No dependencies or modified code to list, skipping notice output")
	} else {
		encoded, _, err := transform.String(enc.NewEncoder(), text)
		if err != nil {
			return nil, &OutputWriteError{Path: opts.OutputPath, Err: err}
		}
		if err := safeio.WriteFileAtomic(opts.OutputPath, []byte(encoded)); err != nil {
			return nil, &OutputWriteError{Path: opts.OutputPath, Err: err}
		}
		result.Written = true
		logger.Info("Wrote notice", logger.String("path", opts.OutputPath), logger.Int("dependencies", len(deps)),
			logger.Int("modified_code", len(opts.ModifiedCode)))
	}

	if !opts.MatchWithExisting {
		return result, nil
	}
	if err := Verify(opts.ExistingPath, opts.OutputPath, opts.Encoding); err != nil {
		return result, err
	}
	result.Verified = true
	return result, nil
}

// Verify compares the committed notice with the generated one and returns a
// *NoticeMismatchError when they differ.
func Verify(expectedPath, actualPath, encodingName string) error {
	same, err := FilesMatch(expectedPath, actualPath, encodingName)
	if err != nil {
		return err
	}
	if same {
		logger.Info("Notice matches existing file", logger.String("path", expectedPath))
		return nil
	}

	mismatch := &NoticeMismatchError{Expected: expectedPath, Actual: actualPath}
	if expected, actual, present, err := readPair(expectedPath, actualPath, encodingName); err == nil && present == 2 {
		mismatch.Line, _ = FirstDifference(expected, actual)
	}
	if diff, err := UnifiedDiff(expectedPath, actualPath, encodingName); err == nil {
		logger.Debug("Notice difference", logger.String("diff", diff))
	}
	return mismatch
}
