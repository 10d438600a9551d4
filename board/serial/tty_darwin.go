// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

//go:build darwin

package serial

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

var speeds = map[int]uint64{
	9600:   unix.B9600,
	19200:  unix.B19200,
	38400:  unix.B38400,
	57600:  unix.B57600,
	115200: unix.B115200,
	230400: unix.B230400,
}

func openPort(name string, baud int) (*os.File, error) {
	speed, ok := speeds[baud]
	if !ok {
		return nil, errors.Errorf("unsupported baud rate %d", baud)
	}
	f, err := os.OpenFile(name, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, err
	}
	fd := int(f.Fd())
	t, err := unix.IoctlGetTermios(fd, unix.TIOCGETA)
	if err != nil {
		f.Close()
		return nil, err
	}

	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL
	t.Ispeed = speed
	t.Ospeed = speed

	// replies time out after 1s
	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = 10

	if err = unix.IoctlSetTermios(fd, unix.TIOCSETA, t); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
