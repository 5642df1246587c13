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

package protocol_test

import (
	. "gopkg.in/check.v1"

	"github.com/canonical/mediad/protocol"
)

type vocabularySuite struct{}

var _ = Suite(&vocabularySuite{})

func (s *vocabularySuite) TestClassification(c *C) {
	for _, name := range []string{
		protocol.NotifyAdded, protocol.NotifyRemoved, protocol.NotifyChanged,
		protocol.NotifyMounted, protocol.NotifyUnmounted,
	} {
		c.Check(protocol.IsNotification(name), Equals, true, Commentf(name))
		c.Check(protocol.IsReply(name), Equals, false, Commentf(name))
		c.Check(protocol.IsRequest(name), Equals, false, Commentf(name))
	}
	for _, name := range []string{protocol.ReplyDevice, protocol.ReplyOK, protocol.ReplyError} {
		c.Check(protocol.IsReply(name), Equals, true, Commentf(name))
		c.Check(protocol.IsNotification(name), Equals, false, Commentf(name))
	}
	for _, name := range []string{protocol.CmdMount, protocol.CmdUnmount, protocol.CmdListAll, protocol.CmdListDevice} {
		c.Check(protocol.IsRequest(name), Equals, true, Commentf(name))
	}
	c.Check(protocol.IsNotification("removable_device_exploded"), Equals, false)
}

func (s *vocabularySuite) TestCheckArity(c *C) {
	c.Check(protocol.MountRequest("/dev/sdb", "").CheckArity(), IsNil)
	c.Check(protocol.ListAllRequest().CheckArity(), IsNil)
	c.Check(protocol.ListDeviceRequest("/dev/sdb").CheckArity(), IsNil)
	c.Check(protocol.Mounted("/dev/sdb", "/media/x", "ro").CheckArity(), IsNil)
	c.Check(protocol.Unmounted("/dev/sdb", "/media/x").CheckArity(), IsNil)
	c.Check(protocol.ErrorReply(protocol.CodeBusy, "busy").CheckArity(), IsNil)

	c.Check(protocol.New(protocol.CmdMount, "/dev/sdb").CheckArity(), ErrorMatches,
		`command "mount" takes 2 arguments, got 1`)
	c.Check(protocol.New("frobnicate").CheckArity(), ErrorMatches, `unknown command "frobnicate"`)
}

func (s *vocabularySuite) TestErrorReplyEscapesMessage(c *C) {
	cmd := protocol.ErrorReply(protocol.CodeMountFailed, "cannot mount \"x\":\nno")
	c.Check(cmd.Args, DeepEquals, []string{"mount_failed", `cannot mount \"x\":\nno`})
	c.Check(protocol.ErrorMessage(cmd), Equals, "cannot mount \"x\":\nno")

	_, err := protocol.Encode(cmd)
	c.Check(err, IsNil)
}
