/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"errors"
	"io/fs"
	"net"
	"net/url"

	"github.com/fulmenhq/noticegen/pkg/config"
	"github.com/fulmenhq/noticegen/pkg/exitcode"
	"github.com/fulmenhq/noticegen/pkg/notice"
)

// exitCodeFor maps a command error to a process exit code
func exitCodeFor(err error) int {
	var (
		mismatch   *notice.NoticeMismatchError
		license    *notice.LicenseMissingError
		homepage   *notice.HomepageMissingError
		cfgErr     *config.ConfigError
		writeErr   *notice.OutputWriteError
		compareErr *notice.ComparisonIOError
		urlErr     *url.Error
		netErr     net.Error
		pathErr    *fs.PathError
	)

	switch {
	case err == nil:
		return exitcode.Success
	case errors.As(err, &mismatch):
		return exitcode.NoticeMismatch
	case errors.As(err, &license), errors.As(err, &homepage):
		return exitcode.LicenseMissing
	case errors.As(err, &cfgErr), errors.Is(err, notice.ErrUnsupportedEncoding):
		return exitcode.ConfigError
	case errors.As(err, &writeErr), errors.As(err, &compareErr):
		return exitcode.FileSystemError
	case errors.As(err, &urlErr), errors.As(err, &netErr):
		return exitcode.NetworkError
	case errors.As(err, &pathErr), errors.Is(err, fs.ErrNotExist):
		return exitcode.FileSystemError
	default:
		return exitcode.GeneralError
	}
}
