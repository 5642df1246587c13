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

	"github.com/canonical/mediad/protocol"
	"github.com/canonical/mediad/strutil"
)

func parentArg(parentPath string) string {
	if parentPath == "" {
		return protocol.RootPath
	}
	return parentPath
}

func parentFromArg(arg string) string {
	if arg == protocol.RootPath {
		return ""
	}
	return arg
}

// parseFields parses the kind, subtype, state, label and fstype
// arguments shared by records and notifications.
func parseFields(d *Device, args []string) error {
	var err error
	if d.Kind, err = ParseKind(args[0]); err != nil {
		return err
	}
	if d.Subtype, err = ParseSubtype(args[1]); err != nil {
		return err
	}
	if d.State, err = ParseState(args[2]); err != nil {
		return err
	}
	if d.Label, err = strutil.UnescapeLabel(args[3]); err != nil {
		return fmt.Errorf("invalid device label %q: %v", args[3], err)
	}
	d.FSType = args[4]
	return nil
}

// parseMount unescapes the mount point and mount options fields.
func parseMount(mountPoint, options string) (string, string, error) {
	mp, err := strutil.UnescapeLabel(mountPoint)
	if err != nil {
		return "", "", fmt.Errorf("invalid mount point %q: %v", mountPoint, err)
	}
	opts, err := strutil.UnescapeLabel(options)
	if err != nil {
		return "", "", fmt.Errorf("invalid mount options %q: %v", options, err)
	}
	return mp, opts, nil
}

// DeviceFromRecord converts a removable_device reply record.
func DeviceFromRecord(cmd *protocol.Command) (*Device, error) {
	if cmd.Name != protocol.ReplyDevice {
		return nil, fmt.Errorf("cannot use %q as a device record", cmd.Name)
	}
	if err := cmd.CheckArity(); err != nil {
		return nil, fmt.Errorf("cannot use device record: %v", err)
	}
	d := &Device{
		ParentPath: parentFromArg(cmd.Args[0]),
		Path:       cmd.Args[1],
	}
	if d.Path == "" {
		return nil, fmt.Errorf("cannot use device record without a path")
	}
	if err := parseFields(d, cmd.Args[2:7]); err != nil {
		return nil, fmt.Errorf("cannot use device record for %q: %v", d.Path, err)
	}
	var err error
	if d.MountPoint, d.MountOptions, err = parseMount(cmd.Args[7], cmd.Args[8]); err != nil {
		return nil, fmt.Errorf("cannot use device record for %q: %v", d.Path, err)
	}
	if d.MountPoint == "" {
		d.MountOptions = ""
	}
	return d, nil
}

// Record returns the removable_device reply record describing d.
func (d *Device) Record() *protocol.Command {
	return protocol.New(protocol.ReplyDevice,
		parentArg(d.ParentPath), d.Path,
		d.Kind.String(), d.Subtype.String(), d.State.String(),
		strutil.EscapeLabel(d.Label), d.FSType,
		strutil.EscapeLabel(d.MountPoint), strutil.EscapeLabel(d.MountOptions))
}

// AddedNotification returns the notification announcing d.
func (d *Device) AddedNotification() *protocol.Command {
	return protocol.New(protocol.NotifyAdded,
		parentArg(d.ParentPath), d.Path,
		d.Kind.String(), d.Subtype.String(), d.State.String(),
		strutil.EscapeLabel(d.Label), d.FSType)
}

// ChangedNotification returns the notification carrying the current
// mutable fields of d.
func (d *Device) ChangedNotification() *protocol.Command {
	return protocol.New(protocol.NotifyChanged,
		d.Path,
		d.Kind.String(), d.Subtype.String(), d.State.String(),
		strutil.EscapeLabel(d.Label), d.FSType)
}

// notification is a parsed notification command.
type notification struct {
	name string
	path string
	// dev carries the payload of added and changed notifications
	dev *Device

	mountPoint   string
	mountOptions string
}

func parseNotification(cmd *protocol.Command) (*notification, error) {
	if !protocol.IsNotification(cmd.Name) {
		return nil, fmt.Errorf("cannot apply %q: not a notification", cmd.Name)
	}
	if err := cmd.CheckArity(); err != nil {
		return nil, fmt.Errorf("cannot apply notification: %v", err)
	}

	n := &notification{name: cmd.Name}
	switch cmd.Name {
	case protocol.NotifyAdded:
		n.path = cmd.Args[1]
		n.dev = &Device{ParentPath: parentFromArg(cmd.Args[0]), Path: n.path}
		if err := parseFields(n.dev, cmd.Args[2:7]); err != nil {
			return nil, fmt.Errorf("cannot apply %s for %q: %v", cmd.Name, n.path, err)
		}
	case protocol.NotifyChanged:
		n.path = cmd.Args[0]
		n.dev = &Device{Path: n.path}
		if err := parseFields(n.dev, cmd.Args[1:6]); err != nil {
			return nil, fmt.Errorf("cannot apply %s for %q: %v", cmd.Name, n.path, err)
		}
	case protocol.NotifyRemoved:
		n.path = cmd.Args[0]
	case protocol.NotifyMounted:
		n.path = cmd.Args[0]
		var err error
		if n.mountPoint, n.mountOptions, err = parseMount(cmd.Args[1], cmd.Args[2]); err != nil {
			return nil, fmt.Errorf("cannot apply %s for %q: %v", cmd.Name, n.path, err)
		}
		if n.mountPoint == "" {
			return nil, fmt.Errorf("cannot apply %s for %q: empty mount point", cmd.Name, n.path)
		}
	case protocol.NotifyUnmounted:
		n.path = cmd.Args[0]
		var err error
		if n.mountPoint, _, err = parseMount(cmd.Args[1], ""); err != nil {
			return nil, fmt.Errorf("cannot apply %s for %q: %v", cmd.Name, n.path, err)
		}
	}
	if n.path == "" || n.path == protocol.RootPath {
		return nil, fmt.Errorf("cannot apply %s: invalid device path %q", cmd.Name, n.path)
	}
	return n, nil
}
