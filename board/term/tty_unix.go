// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

//go:build unix

package term

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

// Open puts the terminal attached to stdin in raw mode and returns a board
// rendering to stdout. Close restores the terminal.
//
func Open() (*Board, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("term board: stdin is not a terminal")
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, errors.Wrap(err, "term board")
	}
	if err = syscall.SetNonblock(fd, true); err != nil {
		_ = term.Restore(fd, old)
		return nil, errors.Wrap(err, "term board")
	}
	read := func(p []byte) (int, error) {
		n, err := syscall.Read(fd, p)
		switch {
		case err == syscall.EAGAIN || err == syscall.EWOULDBLOCK || err == syscall.EINTR:
			return 0, nil
		case err != nil:
			return 0, err
		case n < 0:
			return 0, nil
		}
		return n, nil
	}
	b := NewBoard(read, os.Stdout)
	b.close = func() error {
		_ = syscall.SetNonblock(fd, false)
		return term.Restore(fd, old)
	}
	return b, nil
}
