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

// Package netlink reads kernel and udev device events from a
// NETLINK_KOBJECT_UEVENT socket.
package netlink

import (
	"fmt"

	"golang.org/x/sys/unix"
)

type Mode int

// Mode determines event source: kernel events or udev-processed events.
// See libudev/libudev-monitor.c.
const (
	KernelEvent Mode = 1
	// Events that are processed by udev, with the properties from the
	// udev rules (filesystem type, labels, bus).
	UdevEvent Mode = 2
)

// NetlinkConn is a generic netlink connection.
type NetlinkConn struct {
	Fd   int
	Addr unix.SockaddrNetlink
	buf  []byte
}

type UEventConn struct {
	NetlinkConn
}

// Connect opens a AF_NETLINK socket of family NETLINK_KOBJECT_UEVENT and
// subscribes to the events of the given mode.
func (c *UEventConn) Connect(mode Mode) error {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.NETLINK_KOBJECT_UEVENT)
	if err != nil {
		return fmt.Errorf("cannot open uevent socket: %v", err)
	}

	c.Fd = fd
	c.Addr = unix.SockaddrNetlink{
		Family: unix.AF_NETLINK,
		Groups: uint32(mode),
		// let the kernel pick a unique port id, udev may have the pid
		Pid: 0,
	}
	if err := unix.Bind(c.Fd, &c.Addr); err != nil {
		unix.Close(c.Fd)
		return fmt.Errorf("cannot bind uevent socket: %v", err)
	}

	// this must be rather large for some events, see the reference
	// implementation from systemd's udevadm monitor
	c.buf = make([]byte, 128*1024)
	return nil
}

// Close closes the socket.
func (c *UEventConn) Close() error {
	return unix.Close(c.Fd)
}

// ReadMsg reads an entire uevent message. The result is only valid until
// the next read.
func (c *UEventConn) ReadMsg() ([]byte, error) {
	n, _, err := unix.Recvfrom(c.Fd, c.buf, 0)
	if err != nil {
		return nil, err
	}
	return c.buf[:n], nil
}

// ReadUEvent reads and parses one uevent.
func (c *UEventConn) ReadUEvent() (*UEvent, error) {
	msg, err := c.ReadMsg()
	if err != nil {
		return nil, err
	}
	return ParseUEvent(msg)
}

// Monitor reads events in the background, sending the ones matching
// matcher (all if nil) to queue and parsing errors to errs. A read
// error is sent to errs as well and ends the monitoring.
// The returned function stops the monitor and waits for the reading
// goroutine to be done.
func (c *UEventConn) Monitor(queue chan<- UEvent, errs chan<- error, matcher Matcher) (stop func(), err error) {
	if matcher != nil {
		if err := matcher.Compile(); err != nil {
			return nil, fmt.Errorf("cannot use matcher: %v", err)
		}
	}
	readableOrStop, stopReading, err := RawSockStopper(c.Fd)
	if err != nil {
		return nil, fmt.Errorf("cannot monitor uevents: %v", err)
	}

	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			readable, err := readableOrStop()
			if err != nil {
				sendErr(errs, quit, err)
				return
			}
			if !readable {
				return
			}
			msg, err := c.ReadMsg()
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			if err != nil {
				sendErr(errs, quit, fmt.Errorf("cannot read uevent: %v", err))
				return
			}
			uevent, err := ParseUEvent(msg)
			if err != nil {
				sendErr(errs, quit, err)
				continue
			}
			if matcher != nil && !matcher.Evaluate(*uevent) {
				continue
			}
			select {
			case queue <- *uevent:
			case <-quit:
				return
			}
		}
	}()

	stop = func() {
		close(quit)
		stopReading()
		<-done
	}
	return stop, nil
}

func sendErr(errs chan<- error, quit <-chan struct{}, err error) {
	select {
	case errs <- err:
	case <-quit:
	}
}
