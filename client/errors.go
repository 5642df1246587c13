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

package client

import (
	"errors"

	"github.com/canonical/mediad/protocol"
)

var (
	// ErrTimeout is returned when no reply arrived in time. The request
	// may still have been carried out by the daemon.
	ErrTimeout = errors.New("timeout waiting for the daemon")
	// ErrInvalidState is returned for operations not possible in the
	// current connection state.
	ErrInvalidState = errors.New("invalid client state")
	// ErrDaemonNotResponding is returned when the daemon cannot be
	// reached, or the connection went away with the request outstanding.
	ErrDaemonNotResponding = errors.New("daemon not responding")
	// ErrCommandFailed matches every *Error.
	ErrCommandFailed = errors.New("command failed")
)

// ErrorKind distinguishes kind of errors.
type ErrorKind string

// Error kinds, as sent by the daemon.
const (
	// ErrorKindUnsupportedOption: a mount option is not allowed for
	// the filesystem.
	ErrorKindUnsupportedOption ErrorKind = protocol.CodeUnsupportedOption
	// ErrorKindFilesystemNotSupported: the filesystem type cannot be
	// mounted.
	ErrorKindFilesystemNotSupported ErrorKind = protocol.CodeFilesystemNotSupported
	// ErrorKindNoSuchDevice: the device is not known to the daemon.
	ErrorKindNoSuchDevice ErrorKind = protocol.CodeNoSuchDevice
	// ErrorKindAlreadyMounted: the device is mounted already.
	ErrorKindAlreadyMounted ErrorKind = protocol.CodeAlreadyMounted
	// ErrorKindNotMounted: the device is not mounted.
	ErrorKindNotMounted ErrorKind = protocol.CodeNotMounted
	// ErrorKindNotAuthorized: the caller may not perform the operation.
	ErrorKindNotAuthorized ErrorKind = protocol.CodeNotAuthorized
	// ErrorKindMountFailed: the kernel refused the mount.
	ErrorKindMountFailed ErrorKind = protocol.CodeMountFailed
	// ErrorKindUnmountFailed: the kernel refused the unmount, usually
	// because the filesystem is in use.
	ErrorKindUnmountFailed ErrorKind = protocol.CodeUnmountFailed
	// ErrorKindInvalidRequest: the daemon could not parse the request.
	ErrorKindInvalidRequest ErrorKind = protocol.CodeInvalidRequest
	// ErrorKindRateLimited: too many requests, try again later.
	ErrorKindRateLimited ErrorKind = protocol.CodeRateLimited
	// ErrorKindBusy: another operation on the device is in progress.
	ErrorKindBusy ErrorKind = protocol.CodeBusy
)

// Error is a request rejected by the daemon.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == ErrCommandFailed
}

// IsFatal returns whether err means that the connection is gone and
// must be rebuilt with Connect.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvalidState) || errors.Is(err, ErrDaemonNotResponding)
}
