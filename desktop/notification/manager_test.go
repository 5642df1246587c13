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

package notification_test

import (
	"github.com/godbus/dbus/v5"
	. "gopkg.in/check.v1"

	"github.com/canonical/mediad/desktop/notification"
)

type managerSuite struct{}

var _ = Suite(&managerSuite{})

func (s *managerSuite) TestUsesFdoBackend(c *C) {
	fdoBackend := &notification.FdoBackend{}
	restore := notification.MockNewFdoBackend(func(conn *dbus.Conn, desktopID string) notification.NotificationManager {
		c.Check(conn, IsNil)
		c.Check(desktopID, Equals, "desktop-id")
		return fdoBackend
	})
	defer restore()

	mgr := notification.NewNotificationManager(nil, "desktop-id")
	c.Check(mgr, Equals, fdoBackend)
}
