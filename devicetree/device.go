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

package devicetree

import (
	"fmt"
)

// Kind tells what a tree node stands for.
type Kind int

const (
	KindUnknownOrPersistent Kind = iota
	KindPartition
	// KindStatefulDevice is a device whose medium can go away, like a
	// card reader slot.
	KindStatefulDevice
	KindStatelessDevice
)

var kindNames = []string{
	KindUnknownOrPersistent: "unknown_or_persistent",
	KindPartition:           "partition",
	KindStatefulDevice:      "stateful_device",
	KindStatelessDevice:     "stateless_device",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("invalid device kind %q", s)
}

type Subtype int

const (
	SubtypeUnknown Subtype = iota
	SubtypeUSB
	SubtypeFlashCard
	SubtypeOptical
	SubtypeFloppy
)

var subtypeNames = []string{
	SubtypeUnknown:   "unknown",
	SubtypeUSB:       "usb",
	SubtypeFlashCard: "flash_card",
	SubtypeOptical:   "optical",
	SubtypeFloppy:    "floppy",
}

func (s Subtype) String() string {
	if s < 0 || int(s) >= len(subtypeNames) {
		return fmt.Sprintf("Subtype(%d)", int(s))
	}
	return subtypeNames[s]
}

func ParseSubtype(s string) (Subtype, error) {
	for i, name := range subtypeNames {
		if name == s {
			return Subtype(i), nil
		}
	}
	return 0, fmt.Errorf("invalid device subtype %q", s)
}

// State is the state of the medium of a stateful device.
type State int

const (
	StateUnknown State = iota
	StateOK
	StateUnavailable
)

var stateNames = []string{
	StateUnknown:     "unknown",
	StateOK:          "ok",
	StateUnavailable: "unavailable",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

func ParseState(s string) (State, error) {
	for i, name := range stateNames {
		if name == s {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("invalid device state %q", s)
}

// Ref is a weak reference to a device in a tree. It stops resolving once
// the device is removed, even if a device with the same path is added
// again later.
type Ref struct {
	path string
	id   uint64
}

func (r Ref) Path() string {
	return r.path
}

// IsZero returns whether the reference points nowhere, as the parent
// reference of root devices does.
func (r Ref) IsZero() bool {
	return r.id == 0
}

// Device is a snapshot of a tree node. Modifying it does not modify the
// tree.
type Device struct {
	Path    string
	Kind    Kind
	Subtype Subtype
	State   State
	// Label is the decoded filesystem label.
	Label  string
	FSType string

	// MountPoint is set only while the device is mounted.
	MountPoint   string
	MountOptions string

	// ParentPath is empty for root devices.
	ParentPath string

	Self     Ref
	Parent   Ref
	Children []string
}

func (d *Device) IsMounted() bool {
	return d.MountPoint != ""
}

func (d *Device) IsRoot() bool {
	return d.ParentPath == ""
}

// DisplayName is the label, or the path for unlabeled devices.
func (d *Device) DisplayName() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Path
}

func (d *Device) clone() *Device {
	cp := *d
	cp.Children = append([]string(nil), d.Children...)
	return &cp
}
