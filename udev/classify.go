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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/canonical/mediad/devicetree"
	"github.com/canonical/mediad/dirs"
	"github.com/canonical/mediad/logger"
	"github.com/canonical/mediad/strutil"
)

// blockDevice is what is known about a block device from sysfs and
// the udev properties.
type blockDevice struct {
	name    string
	devpath string
	props   map[string]string
}

func (b *blockDevice) isPartition() bool {
	if devtype := b.props["DEVTYPE"]; devtype != "" {
		return devtype == "partition"
	}
	return sysfsAttrExists(b.devpath, "partition")
}

// parentName is the name of the disk a partition is on.
func (b *blockDevice) parentName() string {
	return filepath.Base(filepath.Dir(b.devpath))
}

func (b *blockDevice) prop(key string) bool {
	return b.props[key] == "1"
}

func sysfsAttrExists(devpath, attr string) bool {
	_, err := os.Stat(filepath.Join(dirs.SysfsDir, devpath, attr))
	return err == nil
}

func readSysfsAttr(devpath, attr string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dirs.SysfsDir, devpath, attr))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// readUdevProperties reads the E: lines of the udev database entry of
// the block device with the given major:minor.
func readUdevProperties(majorMinor string) (map[string]string, error) {
	props := make(map[string]string)
	f, err := os.Open(filepath.Join(dirs.UdevDataDir, "b"+majorMinor))
	if err != nil {
		if os.IsNotExist(err) {
			return props, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "E:") {
			continue
		}
		kv := strings.SplitN(line[2:], "=", 2)
		if len(kv) != 2 {
			continue
		}
		props[kv[0]] = kv[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read udev database entry %s: %v", majorMinor, err)
	}
	return props, nil
}

func subtypeOf(b *blockDevice) devicetree.Subtype {
	switch {
	case b.prop("ID_CDROM"):
		return devicetree.SubtypeOptical
	case b.prop("ID_DRIVE_FLOPPY"):
		return devicetree.SubtypeFloppy
	case b.prop("ID_DRIVE_FLASH_SD"), b.prop("ID_DRIVE_MEDIA_FLASH_SD"),
		b.prop("ID_DRIVE_FLASH_CF"), b.prop("ID_DRIVE_FLASH_MS"):
		return devicetree.SubtypeFlashCard
	case b.props["ID_BUS"] == "usb":
		return devicetree.SubtypeUSB
	}
	return devicetree.SubtypeUnknown
}

// kindOf tells how a whole disk is shown. Drives with removable media
// are stateful, the medium can be absent. USB disks are their own
// medium. Everything else is not handled.
func kindOf(b *blockDevice, subtype devicetree.Subtype) devicetree.Kind {
	removable, _ := readSysfsAttr(b.devpath, "removable")
	switch {
	case subtype == devicetree.SubtypeOptical, subtype == devicetree.SubtypeFloppy,
		subtype == devicetree.SubtypeFlashCard, removable == "1":
		return devicetree.KindStatefulDevice
	case subtype == devicetree.SubtypeUSB:
		return devicetree.KindStatelessDevice
	}
	return devicetree.KindUnknownOrPersistent
}

func hasMedium(b *blockDevice) bool {
	size, err := readSysfsAttr(b.devpath, "size")
	if err != nil {
		return false
	}
	sectors, err := strconv.ParseUint(size, 10, 64)
	return err == nil && sectors > 0
}

func label(b *blockDevice) string {
	if enc, ok := b.props["ID_FS_LABEL_ENC"]; ok {
		label, err := strutil.UnescapeLabel(enc)
		if err == nil {
			return label
		}
		logger.Debugf("cannot decode label of %s: %v", b.name, err)
	}
	return b.props["ID_FS_LABEL"]
}

// classify returns the device for b, or nil if it is not removable. The
// parent of a partition is only looked at by the caller.
func classify(b *blockDevice) *devicetree.Device {
	dev := &devicetree.Device{
		Path:   "/dev/" + b.name,
		Label:  label(b),
		FSType: b.props["ID_FS_TYPE"],
		State:  devicetree.StateOK,
	}
	if b.isPartition() {
		dev.Kind = devicetree.KindPartition
		dev.ParentPath = "/dev/" + b.parentName()
		return dev
	}

	dev.Subtype = subtypeOf(b)
	dev.Kind = kindOf(b, dev.Subtype)
	switch dev.Kind {
	case devicetree.KindUnknownOrPersistent:
		return nil
	case devicetree.KindStatefulDevice:
		if !hasMedium(b) {
			dev.State = devicetree.StateUnavailable
			dev.FSType = ""
			dev.Label = ""
		}
	}
	return dev
}

// ignoredName are block devices that are never removable media.
func ignoredName(name string) bool {
	for _, prefix := range []string{"loop", "ram", "zram", "dm-", "md", "nbd"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
