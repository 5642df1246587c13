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

// Package udev finds removable block devices and follows their changes.
package udev

import (
	"fmt"
	"path/filepath"
	"sync"

	"gopkg.in/tomb.v2"

	"github.com/canonical/mediad/devicetree"
	"github.com/canonical/mediad/logger"
	"github.com/canonical/mediad/osutil/udev/netlink"
	"github.com/canonical/mediad/protocol"
)

// Event is a change of a removable device. For removals only the device
// path is meaningful.
type Event struct {
	Action netlink.KObjAction
	Device *devicetree.Device
}

// Notification returns the notification announcing the event.
func (e Event) Notification() *protocol.Command {
	switch e.Action {
	case netlink.ADD:
		return e.Device.AddedNotification()
	case netlink.REMOVE:
		return protocol.Removed(e.Device.Path)
	}
	return e.Device.ChangedNotification()
}

// A Source provides the removable devices of the system.
type Source interface {
	// Enumerate returns the devices present, parents first.
	Enumerate() ([]*devicetree.Device, error)
	// Events returns the channel changes are sent to once started.
	Events() <-chan Event
	Start() error
	Stop() error
}

type ueventConn interface {
	Connect(mode netlink.Mode) error
	Close() error
	Monitor(queue chan<- netlink.UEvent, errs chan<- error, matcher netlink.Matcher) (stop func(), err error)
}

var newUEventConn = func() ueventConn {
	return &netlink.UEventConn{}
}

// Monitor is a Source backed by sysfs, the udev database and udev's
// netlink events.
type Monitor struct {
	tomb        tomb.Tomb
	conn        ueventConn
	stopMonitor func()
	events      chan Event

	mu    sync.Mutex
	known map[string]*devicetree.Device
}

var _ Source = (*Monitor)(nil)

func NewMonitor() *Monitor {
	return &Monitor{
		events: make(chan Event, 64),
		known:  make(map[string]*devicetree.Device),
	}
}

func (m *Monitor) Events() <-chan Event {
	return m.events
}

func (m *Monitor) Enumerate() ([]*devicetree.Device, error) {
	devices, byDevpath, err := enumerate()
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.known = byDevpath
	m.mu.Unlock()
	return devices, nil
}

// Start subscribes to udev events. It must be called before Enumerate so
// that no change goes unnoticed.
func (m *Monitor) Start() error {
	conn := newUEventConn()
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		return err
	}
	queue := make(chan netlink.UEvent, 64)
	errs := make(chan error, 4)
	matcher := &netlink.RuleDefinition{Env: map[string]string{"SUBSYSTEM": "block"}}
	stop, err := conn.Monitor(queue, errs, matcher)
	if err != nil {
		conn.Close()
		return err
	}
	m.conn = conn
	m.stopMonitor = stop

	m.tomb.Go(func() error {
		for {
			select {
			case uevent := <-queue:
				ev, ok := m.handle(uevent)
				if !ok {
					continue
				}
				select {
				case m.events <- ev:
				case <-m.tomb.Dying():
					return nil
				}
			case err := <-errs:
				logger.Noticef("cannot monitor udev events: %v", err)
			case <-m.tomb.Dying():
				return nil
			}
		}
	})
	return nil
}

func (m *Monitor) Stop() error {
	if m.conn == nil {
		return nil
	}
	m.tomb.Kill(nil)
	err := m.tomb.Wait()
	m.stopMonitor()
	m.conn.Close()
	m.conn = nil
	return err
}

func (m *Monitor) handle(uevent netlink.UEvent) (Event, bool) {
	name := uevent.Env["DEVNAME"]
	if name == "" {
		return Event{}, false
	}
	name = filepath.Base(name)
	if ignoredName(name) {
		return Event{}, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	devpath := uevent.KObj
	known := m.known[devpath]

	if uevent.Action == netlink.REMOVE {
		if known == nil {
			return Event{}, false
		}
		m.forget(devpath, known)
		return Event{Action: netlink.REMOVE, Device: known}, true
	}
	if uevent.Action != netlink.ADD && uevent.Action != netlink.CHANGE {
		return Event{}, false
	}

	dev := classify(&blockDevice{name: name, devpath: devpath, props: uevent.Env})
	if dev == nil {
		if known != nil {
			m.forget(devpath, known)
			return Event{Action: netlink.REMOVE, Device: known}, true
		}
		return Event{}, false
	}
	if dev.Kind == devicetree.KindPartition && !m.knownPath(dev.ParentPath) {
		logger.Debugf("ignoring partition %s of a non removable device", dev.Path)
		return Event{}, false
	}

	m.known[devpath] = dev
	if known == nil {
		return Event{Action: netlink.ADD, Device: dev}, true
	}
	return Event{Action: netlink.CHANGE, Device: dev}, true
}

func (m *Monitor) knownPath(path string) bool {
	for _, dev := range m.known {
		if dev.Path == path {
			return true
		}
	}
	return false
}

// forget drops the device and its partitions.
func (m *Monitor) forget(devpath string, dev *devicetree.Device) {
	delete(m.known, devpath)
	for p, other := range m.known {
		if other.ParentPath == dev.Path {
			delete(m.known, p)
		}
	}
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Action, e.Device.Path)
}
