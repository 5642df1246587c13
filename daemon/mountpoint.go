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
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/moby/sys/mountinfo"

	"github.com/canonical/mediad/devicetree"
	"github.com/canonical/mediad/logger"
)

var mountinfoMounted = mountinfo.Mounted

const maxMountPointAttempts = 100

// mountPointName returns a directory name for dev, its label if it has a
// usable one.
func mountPointName(dev *devicetree.Device) string {
	name := strings.Map(func(r rune) rune {
		// quotes and backslashes are kept out of the tree as well
		if strings.ContainsRune(`/"\`, r) || unicode.IsControl(r) {
			return '_'
		}
		return r
	}, dev.Label)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.Trim(name, "_") == "" {
		name = filepath.Base(dev.Path)
	}
	return name
}

// allocateMountPoint creates an empty directory in dir to mount dev at.
func allocateMountPoint(dir string, dev *devicetree.Device) (string, error) {
	base := mountPointName(dev)
	for i := 0; i < maxMountPointAttempts; i++ {
		name := base
		if i > 0 {
			name = base + strconv.Itoa(i)
		}
		candidate := filepath.Join(dir, name)
		err := os.Mkdir(candidate, 0700)
		if err == nil {
			return candidate, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("cannot create mount point: %v", err)
		}
	}
	return "", fmt.Errorf("cannot create mount point for %s: too many mount points named %q", dev.Path, base)
}

// removeStaleMountPoints removes the empty directories in dir that are
// not mount points, left behind if the daemon did not exit cleanly.
func removeStaleMountPoints(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p := filepath.Join(dir, entry.Name())
		if mounted, err := mountinfoMounted(p); err != nil || mounted {
			continue
		}
		// fails unless empty
		if os.Remove(p) == nil {
			logger.Debugf("removed stale mount point %s", p)
		}
	}
}

// removeMountPoint removes a mount point created by the daemon.
func removeMountPoint(dir, mountPoint string) error {
	if filepath.Dir(mountPoint) != filepath.Clean(dir) {
		return nil
	}
	if err := os.Remove(mountPoint); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
