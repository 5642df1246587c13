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
	"github.com/moby/sys/mountinfo"
	"golang.org/x/sys/unix"

	"github.com/canonical/mediad/devicetree"
	"github.com/canonical/mediad/logger"
	"github.com/canonical/mediad/osutil/udev/netlink"
	"github.com/canonical/mediad/protocol"
	"github.com/canonical/mediad/udev"
)

var getMounts = mountinfo.GetMounts

// broadcast applies the notification to the tree and sends it to every
// client if something changed.
func (d *Daemon) broadcast(cmd *protocol.Command) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch, err := d.tree.Apply(cmd)
	if err != nil {
		logger.Noticef("internal error: cannot apply %s: %v", cmd.Name, err)
		return
	}
	if !ch.Modified {
		return
	}
	for cc := range d.conns {
		cc.notify(cmd)
	}
}

// ignored reports whether dev, or the device it is a partition of, is
// configured to be left alone.
func (d *Daemon) ignored(dev *devicetree.Device) bool {
	if d.config.Ignored(dev.Path) {
		return true
	}
	return dev.ParentPath != "" && d.config.Ignored(dev.ParentPath)
}

func (d *Daemon) withoutIgnored(devices []*devicetree.Device) []*devicetree.Device {
	if len(d.config.IgnoreDevices) == 0 {
		return devices
	}
	kept := make([]*devicetree.Device, 0, len(devices))
	for _, dev := range devices {
		if d.ignored(dev) {
			logger.Debugf("ignoring %s", dev.Path)
			continue
		}
		kept = append(kept, dev)
	}
	return kept
}

// deviceEvent handles a change reported by the device source.
func (d *Daemon) deviceEvent(ev udev.Event) {
	if d.ignored(ev.Device) {
		return
	}
	logger.Debugf("device event: %s", ev)
	switch ev.Action {
	case netlink.REMOVE:
		if dev, ok := d.tree.Lookup(ev.Device.Path); ok {
			d.detachAll(dev)
		}
	case netlink.CHANGE:
		// the medium went away under the mount
		if dev, ok := d.tree.Lookup(ev.Device.Path); ok && ev.Device.State != devicetree.StateOK {
			d.detachAll(dev)
		}
	}
	d.broadcast(ev.Notification())
}

// detachAll lazily unmounts dev and its partitions, they are gone.
func (d *Daemon) detachAll(dev *devicetree.Device) {
	devices := []*devicetree.Device{dev}
	for _, child := range dev.Children {
		if c, ok := d.tree.Lookup(child); ok {
			devices = append(devices, c)
		}
	}
	for _, dev := range devices {
		if !dev.IsMounted() {
			continue
		}
		logger.Noticef("%s went away while mounted at %s, detaching", dev.Path, dev.MountPoint)
		if err := d.mounter.Unmount(dev.MountPoint, unix.MNT_DETACH|unix.UMOUNT_NOFOLLOW); err != nil {
			logger.Noticef("cannot detach %s: %v", dev.MountPoint, err)
			continue
		}
		d.unmounted(dev)
	}
}

// reconcileMounts fills in the mount points of devices mounted before
// the daemon started. Their owner is not known, only root can unmount
// them without polkit.
func (d *Daemon) reconcileMounts(devices []*devicetree.Device) {
	mounts, err := getMounts(nil)
	if err != nil {
		logger.Noticef("cannot read existing mounts: %v", err)
		return
	}
	bySource := make(map[string]*mountinfo.Info, len(mounts))
	for _, m := range mounts {
		if _, ok := bySource[m.Source]; !ok {
			bySource[m.Source] = m
		}
	}
	for _, dev := range devices {
		if m, ok := bySource[dev.Path]; ok {
			logger.Debugf("%s is already mounted at %s", dev.Path, m.Mountpoint)
			dev.MountPoint = m.Mountpoint
			dev.MountOptions = m.Options
		}
	}
	removeStaleMountPoints(d.config.MountDir)
}
