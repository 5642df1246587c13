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
	"errors"
	"time"

	"github.com/godbus/dbus/v5"
	. "gopkg.in/check.v1"

	"github.com/canonical/mediad/desktop/notification"
)

type fakeCall struct {
	method string
	args   []interface{}
}

type fakeServer struct {
	calls  []fakeCall
	nextID uint32
	err    error
}

func (s *fakeServer) Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call {
	s.calls = append(s.calls, fakeCall{method, args})
	if s.err != nil {
		return &dbus.Call{Err: s.err}
	}
	switch method {
	case "org.freedesktop.Notifications.Notify":
		replacesID := args[1].(uint32)
		if replacesID != 0 {
			return &dbus.Call{Body: []interface{}{replacesID}}
		}
		s.nextID++
		return &dbus.Call{Body: []interface{}{s.nextID}}
	}
	return &dbus.Call{}
}

type recordingObserver struct {
	actions []string
	closed  []string
}

func (o *recordingObserver) ActionInvoked(id notification.ID, actionKey string) error {
	o.actions = append(o.actions, string(id)+" "+actionKey)
	return nil
}

func (o *recordingObserver) NotificationClosed(id notification.ID, reason notification.CloseReason) error {
	o.closed = append(o.closed, string(id)+" "+reason.String())
	return nil
}

type fdoSuite struct {
	server  *fakeServer
	backend *notification.FdoBackend
}

var _ = Suite(&fdoSuite{})

func (s *fdoSuite) SetUpTest(c *C) {
	s.server = &fakeServer{nextID: 41}
	s.backend = notification.NewFdoBackendWithCaller(s.server, "media-notify")
}

func (s *fdoSuite) TestSendNotification(c *C) {
	err := s.backend.SendNotification("/dev/sdb1", &notification.Message{
		AppName:       "media-notify",
		Icon:          "drive-removable-media",
		Title:         "Device mounted",
		Body:          "MY STICK is mounted at /media/MY STICK",
		Actions:       []notification.Action{{ActionKey: "unmount", LocalizedText: "Unmount"}},
		Hints:         []notification.Hint{notification.WithCategory(notification.DeviceCategory), notification.WithUrgency(notification.LowUrgency)},
		ExpireTimeout: 5 * time.Second,
	})
	c.Assert(err, IsNil)
	c.Assert(s.server.calls, HasLen, 1)
	c.Check(s.server.calls[0].method, Equals, "org.freedesktop.Notifications.Notify")
	c.Check(s.server.calls[0].args, DeepEquals, []interface{}{
		"media-notify",
		uint32(0),
		"drive-removable-media",
		"Device mounted",
		"MY STICK is mounted at /media/MY STICK",
		[]string{"unmount", "Unmount"},
		map[string]dbus.Variant{
			"category":      dbus.MakeVariant("device"),
			"urgency":       dbus.MakeVariant(notification.LowUrgency),
			"desktop-entry": dbus.MakeVariant("media-notify"),
		},
		int32(5000),
	})
}

func (s *fdoSuite) TestSendReplaces(c *C) {
	msg := &notification.Message{Title: "Device connected", ExpireTimeout: notification.ServerSelectedExpireTimeout}
	c.Assert(s.backend.SendNotification("/dev/sdb", msg), IsNil)
	c.Assert(s.backend.SendNotification("/dev/sdc", msg), IsNil)
	c.Assert(s.backend.SendNotification("/dev/sdb", msg), IsNil)

	c.Assert(s.server.calls, HasLen, 3)
	c.Check(s.server.calls[0].args[1], Equals, uint32(0))
	c.Check(s.server.calls[0].args[7], Equals, int32(-1))
	c.Check(s.server.calls[1].args[1], Equals, uint32(0))
	c.Check(s.server.calls[2].args[1], Equals, uint32(42))
}

func (s *fdoSuite) TestSendExplicitDesktopEntry(c *C) {
	msg := &notification.Message{Hints: []notification.Hint{notification.WithDesktopEntry("other")}}
	c.Assert(s.backend.SendNotification("id", msg), IsNil)
	hints := s.server.calls[0].args[6].(map[string]dbus.Variant)
	c.Check(hints["desktop-entry"], DeepEquals, dbus.MakeVariant("other"))
}

func (s *fdoSuite) TestSendError(c *C) {
	s.server.err = errors.New("no server")
	err := s.backend.SendNotification("id", &notification.Message{})
	c.Check(err, ErrorMatches, `cannot send notification "id": no server`)
}

func (s *fdoSuite) TestCloseNotification(c *C) {
	c.Assert(s.backend.SendNotification("/dev/sdb", &notification.Message{}), IsNil)
	c.Assert(s.backend.CloseNotification("/dev/sdb"), IsNil)
	c.Assert(s.server.calls, HasLen, 2)
	c.Check(s.server.calls[1], DeepEquals, fakeCall{
		method: "org.freedesktop.Notifications.CloseNotification",
		args:   []interface{}{uint32(42)},
	})

	err := s.backend.CloseNotification("/dev/sdz")
	c.Check(err, ErrorMatches, `cannot close notification "/dev/sdz": unknown notification`)
}

func (s *fdoSuite) TestProcessSignals(c *C) {
	c.Assert(s.backend.SendNotification("/dev/sdb1", &notification.Message{}), IsNil)
	observer := &recordingObserver{}

	err := s.backend.ProcessSignal(&dbus.Signal{
		Name: "org.freedesktop.Notifications.ActionInvoked",
		Body: []interface{}{uint32(42), "unmount"},
	}, observer)
	c.Assert(err, IsNil)
	// not ours
	err = s.backend.ProcessSignal(&dbus.Signal{
		Name: "org.freedesktop.Notifications.ActionInvoked",
		Body: []interface{}{uint32(7), "default"},
	}, observer)
	c.Assert(err, IsNil)
	err = s.backend.ProcessSignal(&dbus.Signal{
		Name: "org.freedesktop.Notifications.NotificationClosed",
		Body: []interface{}{uint32(42), uint32(notification.CloseReasonDismissed)},
	}, observer)
	c.Assert(err, IsNil)

	c.Check(observer.actions, DeepEquals, []string{"/dev/sdb1 unmount"})
	c.Check(observer.closed, DeepEquals, []string{"/dev/sdb1 dismissed"})

	// forgotten once closed
	c.Assert(s.backend.SendNotification("/dev/sdb1", &notification.Message{}), IsNil)
	c.Check(s.server.calls[1].args[1], Equals, uint32(0))
}

func (s *fdoSuite) TestProcessSignalErrors(c *C) {
	observer := &recordingObserver{}
	for _, t := range []struct {
		sig *dbus.Signal
		err string
	}{{
		&dbus.Signal{Name: "org.freedesktop.Notifications.NotificationClosed", Body: []interface{}{uint32(1)}},
		"unexpected number of body elements: 1",
	}, {
		&dbus.Signal{Name: "org.freedesktop.Notifications.NotificationClosed", Body: []interface{}{"1", uint32(1)}},
		"expected first body element to be uint32, got string",
	}, {
		&dbus.Signal{Name: "org.freedesktop.Notifications.ActionInvoked", Body: []interface{}{uint32(1), uint32(1)}},
		"expected second body element to be string, got uint32",
	}} {
		c.Check(s.backend.ProcessSignal(t.sig, observer), ErrorMatches, t.err)
	}
	c.Check(s.backend.ProcessSignal(&dbus.Signal{Name: "org.example.Other"}, observer), IsNil)
}
