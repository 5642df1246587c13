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

package main

import (
	"fmt"

	"github.com/jessevdk/go-flags"

	"github.com/canonical/mediad/i18n"
)

var shortMountHelp = i18n.G("Mount a removable device")
var longMountHelp = i18n.G(`
The mount command asks the daemon to mount the given device or partition
under the media directory. Only mount options allowed for the filesystem
can be given.
`)

var shortUnmountHelp = i18n.G("Unmount a removable device")
var longUnmountHelp = i18n.G(`
The unmount command asks the daemon to unmount the given device or
partition and to remove its mount point.
`)

type deviceArg struct {
	Device string `positional-arg-name:"<device>" required:"yes"`
}

type cmdMount struct {
	Options    string    `short:"o"`
	Positional deviceArg `positional-args:"yes" required:"yes"`
}

type cmdUnmount struct {
	Positional deviceArg `positional-args:"yes" required:"yes"`
}

func init() {
	addCommand("mount", shortMountHelp, longMountHelp, func() flags.Commander {
		return &cmdMount{}
	}, map[string]string{
		// TRANSLATORS: This should not start with a lowercase letter.
		"o": i18n.G("Comma separated mount options"),
	}, []argDesc{{
		name: i18n.G("<device>"),
		// TRANSLATORS: This should not start with a lowercase letter.
		desc: i18n.G("The device to mount, like /dev/sdb1"),
	}})
	addCommand("unmount", shortUnmountHelp, longUnmountHelp, func() flags.Commander {
		return &cmdUnmount{}
	}, nil, []argDesc{{
		name: i18n.G("<device>"),
		// TRANSLATORS: This should not start with a lowercase letter.
		desc: i18n.G("The device to unmount"),
	}})
}

func (x *cmdMount) Execute(args []string) error {
	if len(args) > 0 {
		return ErrExtraArgs
	}
	cli, err := connect()
	if err != nil {
		return err
	}
	defer cli.Close()

	path := x.Positional.Device
	if err := cli.Mount(optionsData.Timeout, path, x.Options); err != nil {
		return err
	}
	dev, err := cli.ListDevice(optionsData.Timeout, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(Stdout, i18n.G("Mounted %s at %s\n"), path, dev.MountPoint)
	return nil
}

func (x *cmdUnmount) Execute(args []string) error {
	if len(args) > 0 {
		return ErrExtraArgs
	}
	cli, err := connect()
	if err != nil {
		return err
	}
	defer cli.Close()

	path := x.Positional.Device
	if err := cli.Unmount(optionsData.Timeout, path); err != nil {
		return err
	}
	fmt.Fprintf(Stdout, i18n.G("Unmounted %s\n"), path)
	return nil
}
