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

	"github.com/canonical/mediad/i18n"
)

// Change describes the outcome of applying one notification.
type Change struct {
	Notification string
	Path         string
	// Modified is set if the tree content changed.
	Modified bool
	// Queued is set if the notification was kept for later because the
	// tree was not initialized yet.
	Queued bool

	// Title and Message describe the change for humans. They are empty
	// for changes not worth telling about.
	Title   string
	Message string
}

func describeAdded(d *Device) (title, message string) {
	if d.Kind == KindPartition {
		return i18n.G("New partition"), fmt.Sprintf(i18n.G("%s is ready to be mounted"), d.DisplayName())
	}
	return i18n.G("Device connected"), fmt.Sprintf(i18n.G("%s was connected"), d.DisplayName())
}

func describeRemoved(d *Device) (title, message string) {
	return i18n.G("Device removed"), fmt.Sprintf(i18n.G("%s was removed"), d.DisplayName())
}

func describeChanged(before State, after *Device) (title, message string) {
	switch {
	case before != StateOK && after.State == StateOK:
		return i18n.G("Media available"), fmt.Sprintf(i18n.G("%s became available"), after.DisplayName())
	case before == StateOK && after.State != StateOK:
		return i18n.G("Media removed"), fmt.Sprintf(i18n.G("%s became unavailable"), after.DisplayName())
	}
	return "", ""
}

func describeMounted(d *Device) (title, message string) {
	return i18n.G("Device mounted"), fmt.Sprintf(i18n.G("%s is mounted at %s"), d.DisplayName(), d.MountPoint)
}

func describeUnmounted(d *Device) (title, message string) {
	return i18n.G("Device unmounted"), fmt.Sprintf(i18n.G("%s can be safely removed"), d.DisplayName())
}
