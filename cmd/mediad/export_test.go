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
	"github.com/canonical/mediad/config"
	"github.com/canonical/mediad/daemon"
)

var (
	Run         = run
	RunWatchdog = runWatchdog
	LoadConfig  = loadConfig
)

type Options = options

func MockSdNotify(f func(unsetEnvironment bool, state string) (bool, error)) (restore func()) {
	old := sdNotify
	sdNotify = f
	return func() {
		sdNotify = old
	}
}

func MockNewDaemon(f func(conf *config.Config) (*daemon.Daemon, error)) (restore func()) {
	old := newDaemon
	newDaemon = f
	return func() {
		newDaemon = old
	}
}
