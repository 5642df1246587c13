// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2026 Canonical Ltd
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

package netlink

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// RawSockStopper returns a pair of functions to manage stopping code
// reading from a raw socket, readableOrStop blocks until fd is readable
// or stop was called. To work properly it sets fd to non-blocking mode.
func RawSockStopper(fd int) (readableOrStop func() (bool, error), stop func(), err error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, nil, err
	}
	stopR, stopW, err := os.Pipe()
	if err != nil {
		return nil, nil, err
	}

	// both stopR and stopW must be kept alive otherwise the corresponding
	// file descriptors will get closed
	readableOrStop = func() (bool, error) {
		return stopperSelectReadable(fd, int(stopR.Fd()))
	}
	stop = func() {
		stopW.Write([]byte{0})
	}
	return readableOrStop, stop, nil
}

// fdSetSize is FD_SETSIZE from sys/select.h
const fdSetSize = 1024

func stopperSelectReadable(fd, stopFd int) (bool, error) {
	maxFd := fd
	if maxFd < stopFd {
		maxFd = stopFd
	}
	if maxFd >= fdSetSize {
		return false, fmt.Errorf("fd too high for select")
	}
	for {
		var r unix.FdSet
		r.Set(fd)
		r.Set(stopFd)
		_, err := unix.Select(maxFd+1, &r, nil, nil, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		return r.IsSet(fd), nil
	}
}
