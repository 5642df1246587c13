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
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/canonical/mediad/client"
	"github.com/canonical/mediad/devicetree"
	"github.com/canonical/mediad/i18n"
)

var shortMonitorHelp = i18n.G("Watch removable devices")
var longMonitorHelp = i18n.G(`
The monitor command prints a line for every change to the removable
devices until interrupted or until the daemon goes away.
`)

type cmdMonitor struct{}

func init() {
	addCommand("monitor", shortMonitorHelp, longMonitorHelp, func() flags.Commander {
		return &cmdMonitor{}
	}, nil, nil)
}

var notifySignals = signal.Notify

// monitorObserver prints changes as they are applied.
type monitorObserver struct {
	client.NullObserver

	mu   sync.Mutex
	gone chan error
}

func (o *monitorObserver) DeviceChanged(ch devicetree.Change) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if ch.Message != "" {
		fmt.Fprintf(Stdout, "%s %s: %s\n", ch.Notification, ch.Path, ch.Message)
	} else {
		fmt.Fprintf(Stdout, "%s %s\n", ch.Notification, ch.Path)
	}
}

func (o *monitorObserver) lost(err error) {
	select {
	case o.gone <- err:
	default:
	}
}

func (o *monitorObserver) Disconnected() {
	o.lost(fmt.Errorf(i18n.G("the daemon went away")))
}

func (o *monitorObserver) Failed(err error) {
	o.lost(err)
}

func (x *cmdMonitor) Execute(args []string) error {
	if len(args) > 0 {
		return ErrExtraArgs
	}

	sigs := make(chan os.Signal, 1)
	notifySignals(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	observer := &monitorObserver{gone: make(chan error, 1)}
	conf := ClientConfig
	conf.Timeout = optionsData.Timeout
	conf.Observer = observer
	cli := client.New(&conf)
	if err := cli.Connect(); err != nil {
		return fmt.Errorf(i18n.G("cannot talk to the daemon: %v"), err)
	}
	defer cli.Close()

	select {
	case <-sigs:
		return nil
	case err := <-observer.gone:
		return err
	}
}
