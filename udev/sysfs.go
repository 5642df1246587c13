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

package udev

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/canonical/mediad/devicetree"
	"github.com/canonical/mediad/dirs"
	"github.com/canonical/mediad/logger"
)

// sysfsBlockDevices returns the block devices found in /sys/class/block,
// disks first.
func sysfsBlockDevices() ([]*blockDevice, error) {
	sysfs, err := filepath.EvalSymlinks(dirs.SysfsDir)
	if err != nil {
		return nil, fmt.Errorf("cannot enumerate block devices: %v", err)
	}
	classDir := filepath.Join(sysfs, "class", "block")
	entries, err := os.ReadDir(classDir)
	if err != nil {
		return nil, fmt.Errorf("cannot enumerate block devices: %v", err)
	}

	var devices []*blockDevice
	for _, entry := range entries {
		name := entry.Name()
		if ignoredName(name) {
			continue
		}
		target, err := filepath.EvalSymlinks(filepath.Join(classDir, name))
		if err != nil {
			logger.Debugf("cannot resolve block device %s: %v", name, err)
			continue
		}
		rel, err := filepath.Rel(sysfs, target)
		if err != nil {
			continue
		}
		b := &blockDevice{name: name, devpath: "/" + rel}
		majorMinor, err := readSysfsAttr(b.devpath, "dev")
		if err != nil {
			logger.Debugf("cannot read device number of %s: %v", name, err)
			continue
		}
		if b.props, err = readUdevProperties(majorMinor); err != nil {
			logger.Noticef("%v", err)
			continue
		}
		devices = append(devices, b)
	}

	sort.SliceStable(devices, func(i, j int) bool {
		return !devices[i].isPartition() && devices[j].isPartition()
	})
	return devices, nil
}

// enumerate returns the removable devices, indexed by their sysfs device
// path, parents before children.
func enumerate() (devices []*devicetree.Device, byDevpath map[string]*devicetree.Device, err error) {
	blockDevices, err := sysfsBlockDevices()
	if err != nil {
		return nil, nil, err
	}

	byDevpath = make(map[string]*devicetree.Device)
	byPath := make(map[string]bool)
	for _, b := range blockDevices {
		dev := classify(b)
		if dev == nil {
			continue
		}
		if dev.Kind == devicetree.KindPartition && !byPath[dev.ParentPath] {
			continue
		}
		devices = append(devices, dev)
		byDevpath[b.devpath] = dev
		byPath[dev.Path] = true
	}
	return devices, byDevpath, nil
}
