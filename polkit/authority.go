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

// Package polkit asks the polkit authority whether a process may perform
// an action.
package polkit

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// CheckFlags change how CheckAuthorization behaves.
type CheckFlags uint32

const (
	CheckNone CheckFlags = 0x00
	// CheckAllowInteraction lets polkit ask the user to authenticate.
	CheckAllowInteraction CheckFlags = 0x01
)

// ErrDismissed is returned when the user dismissed the authentication
// dialog.
var ErrDismissed = errors.New("polkit authentication dialog dismissed")

type authorizationResult struct {
	IsAuthorized bool
	IsChallenge  bool
	Details      map[string]string
}

type subject struct {
	Kind    string
	Details map[string]dbus.Variant
}

var checkAuthorizationOnBus = func(subj subject, actionID string, details map[string]string, flags CheckFlags) (authorizationResult, error) {
	var result authorizationResult

	conn, err := dbus.SystemBus()
	if err != nil {
		return result, err
	}
	authority := conn.Object("org.freedesktop.PolicyKit1", "/org/freedesktop/PolicyKit1/Authority")
	if details == nil {
		details = make(map[string]string)
	}
	err = authority.Call(
		"org.freedesktop.PolicyKit1.Authority.CheckAuthorization", 0,
		subj, actionID, details, uint32(flags), "").Store(&result)
	return result, err
}

// CheckAuthorization checks whether the process pid, running as uid, is
// authorized for actionID. Passing the uid avoids races with a process
// exec'ing under the same pid.
func CheckAuthorization(pid int32, uid uint32, actionID string, details map[string]string, flags CheckFlags) (bool, error) {
	startTime, err := getStartTimeForPid(pid)
	if err != nil {
		return false, fmt.Errorf("cannot check authorization for pid %d: %v", pid, err)
	}
	subj := subject{
		Kind: "unix-process",
		Details: map[string]dbus.Variant{
			"pid":        dbus.MakeVariant(uint32(pid)),
			"start-time": dbus.MakeVariant(startTime),
			"uid":        dbus.MakeVariant(int32(uid)),
		},
	}

	result, err := checkAuthorizationOnBus(subj, actionID, details, flags)
	if err != nil {
		return false, err
	}
	if !result.IsAuthorized && result.Details["polkit.dismissed"] != "" {
		return false, ErrDismissed
	}
	return result.IsAuthorized, nil
}
