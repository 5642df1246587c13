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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/jessevdk/go-flags"

	"github.com/canonical/mediad/client"
	"github.com/canonical/mediad/desktop/notification"
	"github.com/canonical/mediad/logger"
)

type options struct {
	Socket  string        `long:"socket" description:"Path to the daemon socket"`
	Timeout time.Duration `long:"timeout" default:"30s" description:"How long to wait for the daemon"`
}

func init() {
	err := logger.SimpleSetup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: failed to activate logging: %s\n", err)
	}
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var sessionBus = dbus.SessionBus

func run(args []string) error {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			parser.WriteHelp(os.Stdout)
			return nil
		}
		return err
	}

	conn, err := sessionBus()
	if err != nil {
		return fmt.Errorf("cannot connect to the session bus: %v", err)
	}
	mgr := notification.NewNotificationManager(conn, desktopID)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	n := newNotifier(mgr, opts.Timeout)
	n.client = client.New(&client.Config{
		Socket:   opts.Socket,
		Observer: n,
		Timeout:  opts.Timeout,
	})

	go func() {
		if err := mgr.HandleNotifications(ctx, n); err != nil && ctx.Err() == nil {
			logger.Noticef("cannot handle notification actions: %v", err)
		}
	}()
	return n.run(ctx)
}
