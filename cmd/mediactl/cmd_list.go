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

	"github.com/canonical/mediad/client"
	"github.com/canonical/mediad/i18n"
)

var shortListHelp = i18n.G("List removable devices")
var longListHelp = i18n.G(`
The list command shows the removable devices and partitions known to the
daemon, with their state and mount point.
`)

type cmdList struct {
	Format string `long:"format" default:"table" choice:"table" choice:"yaml"`
}

func init() {
	addCommand("list", shortListHelp, longListHelp, func() flags.Commander {
		return &cmdList{}
	}, map[string]string{
		// TRANSLATORS: This should not start with a lowercase letter.
		"format": i18n.G("Output format, table or yaml"),
	}, nil)
}

// connect returns a client with an initialized device tree.
func connect() (*client.Client, error) {
	cli := Client()
	if err := cli.Connect(); err != nil {
		return nil, fmt.Errorf(i18n.G("cannot talk to the daemon: %v"), err)
	}
	return cli, nil
}

func (x *cmdList) Execute(args []string) error {
	if len(args) > 0 {
		return ErrExtraArgs
	}
	cli, err := connect()
	if err != nil {
		return err
	}
	defer cli.Close()

	devices := cli.Tree().Devices()
	if x.Format == "yaml" {
		return writeYAML(Stdout, devices)
	}
	if len(devices) == 0 {
		fmt.Fprintln(Stderr, i18n.G("No removable devices."))
		return nil
	}
	return writeTable(Stdout, deviceRows(devices))
}
