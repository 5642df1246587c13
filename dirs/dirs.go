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

package dirs

import (
	"os"
	"path/filepath"
)

// the various file paths
var (
	GlobalRootDir string

	MediadSocket     string
	MediadConfigFile string
	MediadRunDir     string

	MediaDir string

	SysfsDir          string
	UdevDataDir       string
	ProcDir           string
	ProcSelfMountInfo string
)

const (
	defaultSocketName = "mediad.socket"
)

var callbacks = []func(string){}

// AddRootDirCallback registers a callback for whenever the global root
// directory (set by SetRootDir) is changed to enable updates to variables in
// other packages that depend on its location.
func AddRootDirCallback(c func(string)) {
	callbacks = append(callbacks, c)
}

// SetRootDir allows settings a new global root directory, this is useful
// for e.g. chroot operations
func SetRootDir(rootdir string) {
	if rootdir == "" {
		rootdir = "/"
	}
	GlobalRootDir = rootdir

	MediadRunDir = filepath.Join(rootdir, "/run/mediad")
	MediadSocket = filepath.Join(rootdir, "/run", defaultSocketName)
	if sock := os.Getenv("MEDIAD_SOCKET"); sock != "" {
		MediadSocket = sock
	}
	MediadConfigFile = filepath.Join(rootdir, "/etc/mediad/mediad.conf")

	MediaDir = filepath.Join(rootdir, "/media")

	SysfsDir = filepath.Join(rootdir, "/sys")
	UdevDataDir = filepath.Join(rootdir, "/run/udev/data")
	ProcDir = filepath.Join(rootdir, "/proc")
	ProcSelfMountInfo = filepath.Join(ProcDir, "self/mountinfo")

	for _, c := range callbacks {
		c(rootdir)
	}
}

// StripRootDir strips the custom global root directory from the specified argument.
func StripRootDir(dir string) string {
	if !filepath.IsAbs(dir) {
		panic("supplied path is not absolute " + dir)
	}
	if !filepath.IsAbs(GlobalRootDir) {
		panic("global root dir is not absolute " + GlobalRootDir)
	}
	rel, err := filepath.Rel(GlobalRootDir, dir)
	if err != nil {
		panic(err)
	}
	return filepath.Join("/", rel)
}

func init() {
	SetRootDir(os.Getenv("MEDIAD_GLOBAL_ROOT"))
}
