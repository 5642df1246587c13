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

// Package daemon serves the removable device tree and mount requests on
// the mediad socket.
package daemon

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/coreos/go-systemd/activation"
	"golang.org/x/sys/unix"
	"gopkg.in/tomb.v2"

	"github.com/canonical/mediad/config"
	"github.com/canonical/mediad/devicetree"
	"github.com/canonical/mediad/logger"
	"github.com/canonical/mediad/mountopts"
	"github.com/canonical/mediad/osutil/mount"
	"github.com/canonical/mediad/polkit"
	"github.com/canonical/mediad/udev"
)

// Authorizer asks polkit whether a process may perform an action.
type Authorizer func(pid int32, uid uint32, actionID string, details map[string]string, flags polkit.CheckFlags) (bool, error)

// Options are the pieces of the system the daemon works with.
type Options struct {
	// Mounter mounts and unmounts, mount.System{} if nil.
	Mounter mount.Mounter
	// Source provides the devices, a udev.Monitor if nil.
	Source udev.Source
	// Authorizer is polkit.CheckAuthorization if nil.
	Authorizer Authorizer
}

// A Daemon listens for requests and carries them out.
type Daemon struct {
	config    *config.Config
	policy    *mountopts.Policy
	mounter   mount.Mounter
	source    udev.Source
	authorize Authorizer
	tree      *devicetree.Tree

	listener net.Listener
	tomb     tomb.Tomb
	started  bool

	// mu serializes changes to the tree with their broadcast
	mu    sync.Mutex
	conns map[*clientConn]bool
	// owners are the uids that mounted devices, by device path
	owners map[string]uint32
	// busy are the devices with a mount or unmount in progress
	busy map[string]bool
}

// New returns a daemon for the given configuration.
func New(conf *config.Config, opts Options) (*Daemon, error) {
	if conf == nil {
		conf = config.Default()
	}
	policy, err := conf.Policy()
	if err != nil {
		return nil, err
	}
	d := &Daemon{
		config:    conf,
		policy:    policy,
		mounter:   opts.Mounter,
		source:    opts.Source,
		authorize: opts.Authorizer,
		tree:      devicetree.New(),
		conns:     make(map[*clientConn]bool),
		owners:    make(map[string]uint32),
		busy:      make(map[string]bool),
	}
	if d.mounter == nil {
		d.mounter = mount.System{}
	}
	if d.source == nil {
		d.source = udev.NewMonitor()
	}
	if d.authorize == nil {
		d.authorize = polkit.CheckAuthorization
	}
	return d, nil
}

var activationListeners = activation.Listeners

// getListener tries to get a listener for the given socket path from
// the listener map, and if it fails it tries to set it up directly.
func getListener(socketPath string, listenerMap map[string]net.Listener) (net.Listener, error) {
	if listener, ok := listenerMap[socketPath]; ok {
		return listener, nil
	}

	if c, err := net.Dial("unix", socketPath); err == nil {
		c.Close()
		return nil, fmt.Errorf("socket %q already in use", socketPath)
	}

	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(socketPath), 0755); err != nil {
		return nil, err
	}

	address, err := net.ResolveUnixAddr("unix", socketPath)
	if err != nil {
		return nil, err
	}

	runtime.LockOSThread()
	oldmask := unix.Umask(0111)
	listener, err := net.ListenUnix("unix", address)
	unix.Umask(oldmask)
	runtime.UnlockOSThread()
	if err != nil {
		return nil, err
	}

	logger.Debugf("socket %q was not activated; listening", socketPath)

	return listener, nil
}

// Init sets up the listener. Don't call more than once.
func (d *Daemon) Init() error {
	t0 := time.Now()
	listeners, err := activationListeners()
	if err != nil {
		return err
	}

	listenerMap := make(map[string]net.Listener, len(listeners))
	for _, listener := range listeners {
		listenerMap[listener.Addr().String()] = listener
	}

	listener, err := getListener(d.config.Socket, listenerMap)
	if err != nil {
		return fmt.Errorf("when trying to listen on %s: %v", d.config.Socket, err)
	}
	d.listener = &ucrednetListener{listener}

	if err := os.MkdirAll(d.config.MountDir, 0755); err != nil {
		d.listener.Close()
		return fmt.Errorf("cannot create mount directory: %v", err)
	}

	logger.Debugf("init done in %s", time.Since(t0))
	return nil
}

// Start enumerates the devices and starts serving.
func (d *Daemon) Start() error {
	if err := d.source.Start(); err != nil {
		return fmt.Errorf("cannot monitor devices: %v", err)
	}
	devices, err := d.source.Enumerate()
	if err != nil {
		d.source.Stop()
		return err
	}
	devices = d.withoutIgnored(devices)
	d.reconcileMounts(devices)
	d.tree.Initialize(devices)
	logger.Noticef("serving %d removable devices", d.tree.Len())

	d.started = true
	d.tomb.Go(func() error {
		d.tomb.Go(d.watchDevices)
		return d.serve()
	})
	return nil
}

func (d *Daemon) serve() error {
	for {
		conn, err := d.listener.Accept()
		if err != nil {
			if d.tomb.Err() == tomb.ErrStillAlive {
				return err
			}
			return nil
		}
		d.handleConn(conn)
	}
}

func (d *Daemon) watchDevices() error {
	for {
		select {
		case ev := <-d.source.Events():
			d.deviceEvent(ev)
		case <-d.tomb.Dying():
			return nil
		}
	}
}

// Stop shuts down the Daemon
func (d *Daemon) Stop() error {
	d.tomb.Kill(nil)
	if d.listener != nil {
		d.listener.Close()
	}
	if !d.started {
		return nil
	}

	d.mu.Lock()
	conns := make([]*clientConn, 0, len(d.conns))
	for cc := range d.conns {
		conns = append(conns, cc)
	}
	d.mu.Unlock()
	for _, cc := range conns {
		cc.tomb.Kill(nil)
		cc.tomb.Wait()
	}

	err := d.tomb.Wait()
	if serr := d.source.Stop(); err == nil {
		err = serr
	}
	return err
}

// Dying is a tomb-ish thing
func (d *Daemon) Dying() <-chan struct{} {
	return d.tomb.Dying()
}
