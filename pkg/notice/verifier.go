package notice

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fulmenhq/noticegen/pkg/safeio"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultEncoding is used when no encoding is configured.
const DefaultEncoding = "UTF-8"

const maxLineSize = 16 * 1024 * 1024

// LookupEncoding resolves an encoding by its IANA name or alias, e.g.
// "UTF-8" or "ISO-8859-1". WHATWG labels such as "utf8" are accepted when
// IANA has no match; IANA wins so that ISO-8859-1 stays true Latin-1
// rather than the WHATWG windows-1252 alias.
func LookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultEncoding
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
	}
	return enc, nil
}

// FilesMatch reports whether two notice files hold the same lines.
// Two missing files match; one missing file does not. Lines are compared
// exactly after decoding, and any of \n, \r or \r\n ends a line.
func FilesMatch(expectedPath, actualPath, encodingName string) (bool, error) {
	expected, actual, present, err := readPair(expectedPath, actualPath, encodingName)
	if err != nil {
		return false, err
	}
	if present != 2 {
		return present == 0, nil
	}
	_, same := FirstDifference(expected, actual)
	return same, nil
}

// FirstDifference returns the 1-based index of the first line that differs.
// When one slice is a prefix of the other the index is one past the shorter.
func FirstDifference(expected, actual []string) (int, bool) {
	n := min(len(expected), len(actual))
	for i := 0; i < n; i++ {
		if expected[i] != actual[i] {
			return i + 1, false
		}
	}
	if len(expected) != len(actual) {
		return n + 1, false
	}
	return 0, true
}

// UnifiedDiff renders the difference between the two notice files.
// A missing file is treated as empty.
func UnifiedDiff(expectedPath, actualPath, encodingName string) (string, error) {
	expected, actual, _, err := readPair(expectedPath, actualPath, encodingName)
	if err != nil {
		return "", err
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        withNewlines(expected),
		B:        withNewlines(actual),
		FromFile: expectedPath,
		ToFile:   actualPath,
		Context:  2,
	})
}

// ReadLines decodes path and splits it into lines without terminators.
// A trailing terminator does not produce an extra empty line. UTF-8 input
// is not repaired: a malformed byte sequence is a *ComparisonIOError
// wrapping ErrMalformedInput.
func ReadLines(path, encodingName string) ([]string, error) {
	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &ComparisonIOError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	// The x/text UTF-8 decoder substitutes U+FFFD for invalid bytes, so
	// UTF-8 is read raw and validated line by line instead.
	strictUTF8 := enc == unicode.UTF8
	var r io.Reader = f
	if !strictUTF8 {
		r = transform.NewReader(f, enc.NewDecoder())
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanAnyLineEnding)

	var lines []string
	for scanner.Scan() {
		line := scanner.Bytes()
		if strictUTF8 && !utf8.Valid(line) {
			return nil, &ComparisonIOError{
				Path: path,
				Err:  fmt.Errorf("%w: line %d is not valid UTF-8", ErrMalformedInput, len(lines)+1),
			}
		}
		lines = append(lines, string(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, &ComparisonIOError{Path: path, Err: err}
	}
	return lines, nil
}

// readPair loads both files, returning how many of them exist.
func readPair(expectedPath, actualPath, encodingName string) (expected, actual []string, present int, err error) {
	load := func(path string) ([]string, bool, error) {
		ok, err := safeio.Exists(path)
		if err != nil {
			return nil, false, &ComparisonIOError{Path: path, Err: err}
		}
		if !ok {
			return nil, false, nil
		}
		lines, err := ReadLines(path, encodingName)
		return lines, true, err
	}

	expected, okExpected, err := load(expectedPath)
	if err != nil {
		return nil, nil, 0, err
	}
	actual, okActual, err := load(actualPath)
	if err != nil {
		return nil, nil, 0, err
	}
	for _, ok := range []bool{okExpected, okActual} {
		if ok {
			present++
		}
	}
	return expected, actual, present, nil
}

func withNewlines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l + "\n"
	}
	return out
}

// scanAnyLineEnding is a bufio.SplitFunc that accepts \n, \r and \r\n.
func scanAnyLineEnding(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if !atEOF {
			// A lone \r at the buffer edge may be the first half of \r\n.
			return 0, nil, nil
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
