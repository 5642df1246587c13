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

// Package mount wraps the mount(2) and umount2(2) system calls used to
// mount removable media.
package mount

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/canonical/mediad/logger"
)

// UMOUNT_NOFOLLOW is not defined in go's syscall package
const UMOUNT_NOFOLLOW = unix.UMOUNT_NOFOLLOW

// Mounter is the privileged primitive that performs mounts.
type Mounter interface {
	Mount(source, target, fstype string, flags uintptr, data string) error
	Unmount(target string, flags int) error
}

var (
	unixMount   = unix.Mount
	unixUnmount = unix.Unmount
)

// System mounts through the kernel.
type System struct{}

func (System) Mount(source, target, fstype string, flags uintptr, data string) error {
	opts, unknown := MountFlagsToOpts(int(flags))
	logger.Debugf("mount %q %q -t %s -o %s (flags %s, unknown %#x)", source, target, fstype, data, strings.Join(opts, "|"), unknown)
	if err := unixMount(source, target, fstype, flags, data); err != nil {
		return fmt.Errorf("cannot mount %q at %q: %w", source, target, err)
	}
	return nil
}

func (System) Unmount(target string, flags int) error {
	opts, _ := UnmountFlagsToOpts(flags)
	logger.Debugf("umount %q (flags %s)", target, strings.Join(opts, "|"))
	if err := unixUnmount(target, flags); err != nil {
		return fmt.Errorf("cannot unmount %q: %w", target, err)
	}
	return nil
}

type syscallNumPair struct {
	str string
	num int
}

var mountSyscalls = []syscallNumPair{
	{"MS_RDONLY", unix.MS_RDONLY},
	{"MS_NOSUID", unix.MS_NOSUID},
	{"MS_NODEV", unix.MS_NODEV},
	{"MS_NOEXEC", unix.MS_NOEXEC},
	{"MS_SYNCHRONOUS", unix.MS_SYNCHRONOUS},
	{"MS_DIRSYNC", unix.MS_DIRSYNC},
	{"MS_NOATIME", unix.MS_NOATIME},
	{"MS_NODIRATIME", unix.MS_NODIRATIME},
	{"MS_REMOUNT", unix.MS_REMOUNT},
	{"MS_BIND", unix.MS_BIND},
}

var unmountSyscalls = []syscallNumPair{
	{"UMOUNT_NOFOLLOW", UMOUNT_NOFOLLOW},
	{"MNT_FORCE", unix.MNT_FORCE},
	{"MNT_DETACH", unix.MNT_DETACH},
	{"MNT_EXPIRE", unix.MNT_EXPIRE},
}

func flagOptSearch(flags int, lookupTable []syscallNumPair) (opts []string, unknown int) {
	for _, sys := range lookupTable {
		if flags&sys.num == sys.num {
			flags ^= sys.num
			opts = append(opts, sys.str)
		}
	}
	return opts, flags
}

// MountFlagsToOpts returns the symbolic representation of mount flags.
func MountFlagsToOpts(flags int) (opts []string, unknown int) {
	return flagOptSearch(flags, mountSyscalls)
}

// UnmountFlagsToOpts returns the symbolic representation of unmount flags.
func UnmountFlagsToOpts(flags int) (opts []string, unknown int) {
	return flagOptSearch(flags, unmountSyscalls)
}

// flagOptions maps generic mount options to the flag they set; options
// with a zero flag clear the flag of their negated form.
var flagOptions = map[string]struct {
	set   uintptr
	clear uintptr
}{
	"ro":         {set: unix.MS_RDONLY},
	"rw":         {clear: unix.MS_RDONLY},
	"noexec":     {set: unix.MS_NOEXEC},
	"exec":       {clear: unix.MS_NOEXEC},
	"nodev":      {set: unix.MS_NODEV},
	"nosuid":     {set: unix.MS_NOSUID},
	"sync":       {set: unix.MS_SYNCHRONOUS},
	"dirsync":    {set: unix.MS_DIRSYNC},
	"noatime":    {set: unix.MS_NOATIME},
	"atime":      {clear: unix.MS_NOATIME},
	"nodiratime": {set: unix.MS_NODIRATIME},
}

// OptionsToFlags splits mount options into mount(2) flags and the
// filesystem specific data string. Later options win over earlier ones.
// MS_NOSUID and MS_NODEV are always set.
func OptionsToFlags(opts []string) (flags uintptr, data string) {
	var rest []string
	for _, opt := range opts {
		if f, ok := flagOptions[opt]; ok {
			flags |= f.set
			flags &^= f.clear
			continue
		}
		rest = append(rest, opt)
	}
	flags |= unix.MS_NOSUID | unix.MS_NODEV
	return flags, strings.Join(rest, ",")
}
