// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

//go:build !unix

package term

import (
	"runtime"

	"github.com/pkg/errors"
)

// Open is not supported on this platform.
//
func Open() (*Board, error) {
	return nil, errors.Errorf("term board: not supported on %s", runtime.GOOS)
}
