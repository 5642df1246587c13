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
	"syscall"
	"time"

	sddaemon "github.com/coreos/go-systemd/daemon"
	"github.com/jessevdk/go-flags"

	"github.com/canonical/mediad/config"
	"github.com/canonical/mediad/daemon"
	"github.com/canonical/mediad/dirs"
	"github.com/canonical/mediad/logger"
	"github.com/canonical/mediad/osutil"
)

type options struct {
	Config string `long:"config" description:"Path to the configuration file"`
	Debug  bool   `long:"debug" description:"Enable debug logging"`
}

var (
	sdNotify  = sddaemon.SdNotify
	newDaemon = func(conf *config.Config) (*daemon.Daemon, error) {
		return daemon.New(conf, daemon.Options{})
	}
)

func init() {
	err := logger.SimpleSetup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: failed to activate logging: %s\n", err)
	}
}

func main() {
	if err := run(os.Args[1:], nil); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runWatchdog(d *daemon.Daemon) (*time.Ticker, error) {
	// not running under systemd
	if os.Getenv("WATCHDOG_USEC") == "" {
		return nil, nil
	}
	usec := osutil.GetenvInt64("WATCHDOG_USEC")
	if usec <= 0 {
		return nil, fmt.Errorf("cannot parse WATCHDOG_USEC: %q", os.Getenv("WATCHDOG_USEC"))
	}
	dur := time.Duration(usec/2) * time.Microsecond
	logger.Debugf("Setting up sd_notify() watchdog timer every %s", dur)
	wt := time.NewTicker(dur)

	go func() {
		for {
			select {
			case <-wt.C:
				sdNotify(false, sddaemon.SdNotifyWatchdog)
			case <-d.Dying():
				return
			}
		}
	}()

	return wt, nil
}

// loadConfig reads the configuration, the debug flag wins over the file.
func loadConfig(opts *options) (*config.Config, error) {
	path := opts.Config
	if path == "" {
		path = dirs.MediadConfigFile
	}
	conf, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if opts.Debug {
		conf.Debug = true
	}
	return conf, nil
}

// run starts the daemon and serves until a signal arrives on sigs, or
// SIGINT/SIGTERM if sigs is nil.
func run(args []string, sigs chan os.Signal) error {
	t0 := time.Now().Truncate(time.Millisecond)

	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			parser.WriteHelp(os.Stdout)
			return nil
		}
		return err
	}

	conf, err := loadConfig(&opts)
	if err != nil {
		return err
	}
	logger.SetDebug(conf.Debug)

	if sigs == nil {
		sigs = make(chan os.Signal, 2)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigs)
	}

	d, err := newDaemon(conf)
	if err != nil {
		return err
	}
	if err := d.Init(); err != nil {
		return err
	}
	if err := d.Start(); err != nil {
		d.Stop()
		return err
	}
	sdNotify(false, sddaemon.SdNotifyReady)

	watchdog, err := runWatchdog(d)
	if err != nil {
		d.Stop()
		return fmt.Errorf("cannot run software watchdog: %v", err)
	}
	if watchdog != nil {
		defer watchdog.Stop()
	}

	logger.Debugf("activation done in %v", time.Now().Truncate(time.Millisecond).Sub(t0))

	select {
	case sig := <-sigs:
		logger.Noticef("Exiting on %s signal.", sig)
	case <-d.Dying():
		// something called Stop()
	}

	sdNotify(false, sddaemon.SdNotifyStopping)
	return d.Stop()
}
