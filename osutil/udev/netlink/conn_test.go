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

package netlink

import (
	"time"

	"golang.org/x/sys/unix"
	. "gopkg.in/check.v1"
)

type connSuite struct {
	conn *UEventConn
	peer int
}

var _ = Suite(&connSuite{})

func (s *connSuite) SetUpTest(c *C) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_DGRAM, 0)
	c.Assert(err, IsNil)
	s.conn = &UEventConn{NetlinkConn{Fd: fds[0], buf: make([]byte, 4096)}}
	s.peer = fds[1]
}

func (s *connSuite) TearDownTest(c *C) {
	s.conn.Close()
	unix.Close(s.peer)
}

func (s *connSuite) send(c *C, e UEvent) {
	_, err := unix.Write(s.peer, e.Bytes())
	c.Assert(err, IsNil)
}

func (s *connSuite) TestReadUEvent(c *C) {
	s.send(c, hidraw)
	e, err := s.conn.ReadUEvent()
	c.Assert(err, IsNil)
	c.Check(*e, DeepEquals, hidraw)
}

func (s *connSuite) TestMonitor(c *C) {
	queue := make(chan UEvent, 10)
	errs := make(chan error, 10)
	matcher := &RuleDefinitions{[]RuleDefinition{{Env: map[string]string{"SUBSYSTEM": "block"}}}}
	stop, err := s.conn.Monitor(queue, errs, matcher)
	c.Assert(err, IsNil)
	defer stop()

	block := UEvent{Action: REMOVE, KObj: "/devices/x/block/sdb", Env: map[string]string{
		"ACTION":    "remove",
		"SUBSYSTEM": "block",
	}}
	s.send(c, hidraw)
	_, err = unix.Write(s.peer, []byte("garbage"))
	c.Assert(err, IsNil)
	s.send(c, block)

	select {
	case err := <-errs:
		c.Check(err, ErrorMatches, `cannot parse uevent: invalid header "garbage"`)
	case <-time.After(5 * time.Second):
		c.Fatal("parse error not reported")
	}
	select {
	case e := <-queue:
		c.Check(e, DeepEquals, block)
	case <-time.After(5 * time.Second):
		c.Fatal("event not received")
	}
	c.Check(queue, HasLen, 0)
}

func (s *connSuite) TestMonitorStop(c *C) {
	queue := make(chan UEvent)
	stop, err := s.conn.Monitor(queue, make(chan error), nil)
	c.Assert(err, IsNil)

	done := make(chan struct{})
	go func() {
		stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		c.Fatal("monitor did not stop")
	}
}

func (s *connSuite) TestMonitorStopWhileBlockedOnQueue(c *C) {
	queue := make(chan UEvent)
	stop, err := s.conn.Monitor(queue, make(chan error), nil)
	c.Assert(err, IsNil)
	s.send(c, hidraw)
	// give the monitor a chance to block on the queue
	time.Sleep(10 * time.Millisecond)
	stop()
}

func (s *connSuite) TestMonitorBadMatcher(c *C) {
	bad := "("
	_, err := s.conn.Monitor(nil, nil, &RuleDefinition{Action: &bad})
	c.Check(err, ErrorMatches, `cannot use matcher: cannot compile action rule .*`)
}
