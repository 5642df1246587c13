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

// Package notification sends desktop notifications through the
// freedesktop notification server on the session bus.
//
// Specification: https://specifications.freedesktop.org/notification-spec/
package notification

import (
	"fmt"
	"time"
)

// ID identifies a notification on the sending side. Sending a message
// with an ID that is still shown replaces it.
type ID string

// Message describes a single notification.
type Message struct {
	AppName string
	// Icon is an icon name from the icon theme, or a file:// URI.
	Icon  string
	Title string
	// Body may contain the simple markup the server supports.
	Body    string
	Actions []Action
	Hints   []Hint
	// ExpireTimeout is rounded to milliseconds. Zero means the message
	// never expires, see also ServerSelectedExpireTimeout.
	ExpireTimeout time.Duration
}

// ServerSelectedExpireTimeout lets the server decide when the message
// goes away.
const ServerSelectedExpireTimeout = time.Millisecond * -1

// Action is a button shown with the message. The key "default" is used
// when the message itself is clicked.
type Action struct {
	ActionKey     string
	LocalizedText string
}

// Hint is a message property the server may honour.
type Hint struct {
	Name  string
	Value interface{}
}

// CloseReason tells why a notification went away.
type CloseReason uint32

const (
	CloseReasonExpired   CloseReason = 1
	CloseReasonDismissed CloseReason = 2
	CloseReasonClosed    CloseReason = 3
	CloseReasonUndefined CloseReason = 4
)

func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return fmt.Sprintf("CloseReason(%d)", uint32(r))
	}
}

// Observer is told about what happens to sent notifications.
type Observer interface {
	ActionInvoked(id ID, actionKey string) error
	NotificationClosed(id ID, reason CloseReason) error
}
