package notice

import (
	"errors"
	"fmt"

	"github.com/fulmenhq/noticegen/pkg/maven"
)

// ErrUnsupportedEncoding is returned for encoding names golang.org/x/text does not know.
var ErrUnsupportedEncoding = errors.New("unsupported encoding")

// ErrMalformedInput is wrapped when a notice file is not valid in its encoding.
var ErrMalformedInput = errors.New("malformed input")

// LicenseMissingError is returned in strict mode for a dependency with
// neither a declared license nor a matching hint.
type LicenseMissingError struct {
	Artifact maven.Coordinate
	Name     string
}

func (e *LicenseMissingError) Error() string {
	return fmt.Sprintf("artifact %s (%s) does not have a license in its POM; add a projectHints entry for %q",
		e.Artifact, e.Name, e.Name)
}

// HomepageMissingError is returned in strict mode for a dependency with
// neither a declared URL nor a matching hint.
type HomepageMissingError struct {
	Artifact maven.Coordinate
	Name     string
}

func (e *HomepageMissingError) Error() string {
	return fmt.Sprintf("artifact %s (%s) does not have a homepage in its POM; add a projectHints entry for %q",
		e.Artifact, e.Name, e.Name)
}

// OutputWriteError wraps a failure to write the generated notice.
type OutputWriteError struct {
	Path string
	Err  error
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("failed to save notice to %s: %v", e.Path, e.Err)
}

func (e *OutputWriteError) Unwrap() error {
	return e.Err
}

// NoticeMismatchError reports that the committed notice differs from the generated one.
type NoticeMismatchError struct {
	Expected string
	Actual   string
	// Line is the 1-based first differing line, or 0 when one file is missing.
	Line int
}

func (e *NoticeMismatchError) Error() string {
	msg := fmt.Sprintf("%s does not equal generated %s", e.Expected, e.Actual)
	if e.Line > 0 {
		msg += fmt.Sprintf(" (first difference at line %d)", e.Line)
	}
	return msg
}

// ComparisonIOError wraps a failure to read either file during verification.
type ComparisonIOError struct {
	Path string
	Err  error
}

func (e *ComparisonIOError) Error() string {
	return fmt.Sprintf("failed to compare notice files: %s: %v", e.Path, e.Err)
}

func (e *ComparisonIOError) Unwrap() error {
	return e.Err
}
