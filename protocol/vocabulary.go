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

package protocol

import (
	"github.com/canonical/mediad/strutil"
)

// RootPath is the parent path of devices that sit at the top of the tree.
const RootPath = "/"

// Requests, sent by clients.
const (
	CmdMount      = "mount"
	CmdUnmount    = "unmount"
	CmdListAll    = "list_all_removable_devices"
	CmdListDevice = "list_removable_device"
)

// Replies, sent by the daemon in request order. A request is answered
// by zero or more ReplyDevice records followed by one ReplyOK or
// ReplyError.
const (
	ReplyDevice = "removable_device"
	ReplyOK     = "ok"
	ReplyError  = "error"
)

// Notifications, sent by the daemon at any time.
const (
	NotifyAdded     = "removable_device_added"
	NotifyRemoved   = "removable_device_removed"
	NotifyChanged   = "removable_device_changed"
	NotifyMounted   = "removable_device_mounted"
	NotifyUnmounted = "removable_device_unmounted"
)

// Error codes carried as the first argument of an error reply.
const (
	CodeUnsupportedOption      = "unsupported_option"
	CodeFilesystemNotSupported = "filesystem_not_supported"
	CodeNoSuchDevice           = "no_such_device"
	CodeAlreadyMounted         = "already_mounted"
	CodeNotMounted             = "not_mounted"
	CodeNotAuthorized          = "not_authorized"
	CodeMountFailed            = "mount_failed"
	CodeUnmountFailed          = "unmount_failed"
	CodeInvalidRequest         = "invalid_request"
	CodeRateLimited            = "rate_limited"
	CodeBusy                   = "busy"
)

var arity = map[string]int{
	CmdMount:      2,
	CmdUnmount:    1,
	CmdListAll:    0,
	CmdListDevice: 1,

	ReplyDevice: 9,
	ReplyOK:     0,
	ReplyError:  2,

	NotifyAdded:     7,
	NotifyRemoved:   1,
	NotifyChanged:   6,
	NotifyMounted:   3,
	NotifyUnmounted: 2,
}

// IsNotification returns whether name is one of the unsolicited daemon
// notifications.
func IsNotification(name string) bool {
	switch name {
	case NotifyAdded, NotifyRemoved, NotifyChanged, NotifyMounted, NotifyUnmounted:
		return true
	}
	return false
}

// IsReply returns whether name is part of a reply to a request.
func IsReply(name string) bool {
	switch name {
	case ReplyDevice, ReplyOK, ReplyError:
		return true
	}
	return false
}

// IsRequest returns whether name is a client request.
func IsRequest(name string) bool {
	switch name {
	case CmdMount, CmdUnmount, CmdListAll, CmdListDevice:
		return true
	}
	return false
}

func MountRequest(path, options string) *Command {
	return New(CmdMount, path, options)
}

func UnmountRequest(path string) *Command {
	return New(CmdUnmount, path)
}

func ListAllRequest() *Command {
	return New(CmdListAll)
}

func ListDeviceRequest(path string) *Command {
	return New(CmdListDevice, path)
}

func OK() *Command {
	return New(ReplyOK)
}

// ErrorReply builds an error reply; message is escaped so that it can
// carry arbitrary text.
func ErrorReply(code, message string) *Command {
	return New(ReplyError, code, strutil.EscapeLabel(message))
}

// ErrorMessage returns the unescaped message of an error reply.
func ErrorMessage(cmd *Command) string {
	msg, err := strutil.UnescapeLabel(cmd.Arg(1))
	if err != nil {
		return cmd.Arg(1)
	}
	return msg
}

func Removed(path string) *Command {
	return New(NotifyRemoved, path)
}

// Mounted builds the notification for a new mount. Mount points come
// from labels and mountinfo, they are escaped like labels, and so are
// the options.
func Mounted(path, mountPoint, options string) *Command {
	return New(NotifyMounted, path, strutil.EscapeLabel(mountPoint), strutil.EscapeLabel(options))
}

func Unmounted(path, mountPoint string) *Command {
	return New(NotifyUnmounted, path, strutil.EscapeLabel(mountPoint))
}
