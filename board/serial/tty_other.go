// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

//go:build !linux && !darwin

package serial

import (
	"os"
	"runtime"

	"github.com/pkg/errors"
)

func openPort(name string, baud int) (*os.File, error) {
	return nil, errors.Errorf("serial ports are not supported on %s", runtime.GOOS)
}
