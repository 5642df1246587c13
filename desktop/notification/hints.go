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

package notification

import "fmt"

// Hint names understood by freedesktop notification servers.
const (
	urgencyHint      = "urgency"
	categoryHint     = "category"
	desktopEntryHint = "desktop-entry"
	transientHint    = "transient"
	residentHint     = "resident"
	soundNameHint    = "sound-name"
)

// Urgency is how pressing a message is. Servers in do-not-disturb mode
// may hold back the low ones.
type Urgency byte

const (
	LowUrgency      Urgency = 0
	NormalUrgency   Urgency = 1
	CriticalUrgency Urgency = 2
)

func (u Urgency) String() string {
	switch u {
	case LowUrgency:
		return "low"
	case NormalUrgency:
		return "normal"
	case CriticalUrgency:
		return "critical"
	}
	return fmt.Sprintf("Urgency(%d)", byte(u))
}

// WithUrgency sets how pressing the message is.
func WithUrgency(u Urgency) Hint {
	return Hint{Name: urgencyHint, Value: u}
}

// Category groups messages on the server side. Only the device family
// is of interest here.
type Category string

const (
	DeviceCategory        Category = "device"
	DeviceAddedCategory   Category = "device.added"
	DeviceErrorCategory   Category = "device.error"
	DeviceRemovedCategory Category = "device.removed"
)

// WithCategory files the message under c.
func WithCategory(c Category) Hint {
	return Hint{Name: categoryHint, Value: string(c)}
}

// WithDesktopEntry ties the message to an application, name being the
// desktop file name without its ".desktop" suffix.
func WithDesktopEntry(name string) Hint {
	return Hint{Name: desktopEntryHint, Value: name}
}

// WithTransient keeps the message out of the server's history.
func WithTransient() Hint {
	return Hint{Name: transientHint, Value: true}
}

// WithResident keeps the message around after one of its actions was
// invoked, so that a mounted device can still be unmounted later.
func WithResident() Hint {
	return Hint{Name: residentHint, Value: true}
}

// WithSoundName plays name from the sound theme along with the message.
func WithSoundName(name string) Hint {
	return Hint{Name: soundNameHint, Value: name}
}
