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

package daemon

import (
	"errors"

	"github.com/canonical/mediad/logger"
	"github.com/canonical/mediad/polkit"
)

const (
	polkitMountAction   = "com.canonical.mediad.mount"
	polkitUnmountAction = "com.canonical.mediad.unmount"
)

var (
	errAccessDenied    = errors.New("access denied")
	errAccessCancelled = errors.New("authentication cancelled")
)

func (d *Daemon) checkPolkitAction(ucred *ucrednet, action, path string) error {
	// Pass both pid and uid from the peer ucred to avoid pid race
	details := map[string]string{"device": path}
	switch authorized, err := d.authorize(ucred.Pid, ucred.Uid, action, details, polkit.CheckAllowInteraction); err {
	case nil:
		if authorized {
			// polkit says user is authorised
			return nil
		}
	case polkit.ErrDismissed:
		return errAccessCancelled
	default:
		logger.Noticef("polkit error: %s", err)
	}
	return errAccessDenied
}

// checkMountAccess allows root, and everybody unless polkit is
// required.
func (d *Daemon) checkMountAccess(ucred *ucrednet, path string) error {
	if ucred.Uid == 0 || !d.config.RequirePolkit {
		return nil
	}
	return d.checkPolkitAction(ucred, polkitMountAction, path)
}

// mountOwner returns the uid that mounted path, false for mounts the
// daemon did not make.
func (d *Daemon) mountOwner(path string) (uint32, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	owner, ok := d.owners[path]
	return owner, ok
}

// checkUnmountAccess allows root and whoever mounted the device, others
// need polkit.
func (d *Daemon) checkUnmountAccess(ucred *ucrednet, path string) error {
	if ucred.Uid == 0 {
		return nil
	}
	if owner, ok := d.mountOwner(path); ok && owner == ucred.Uid {
		return nil
	}
	return d.checkPolkitAction(ucred, polkitUnmountAction, path)
}
