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

// Package client talks to mediad over its unix socket and mirrors the
// daemon's device tree.
package client

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"gopkg.in/tomb.v2"

	"github.com/canonical/mediad/devicetree"
	"github.com/canonical/mediad/dirs"
	"github.com/canonical/mediad/logger"
	"github.com/canonical/mediad/protocol"
)

func unixDialer(socket string) (net.Conn, error) {
	return net.Dial("unix", socket)
}

var dial = unixDialer

// DefaultTimeout is used by Connect for the initial enumeration when the
// configuration does not say otherwise.
const DefaultTimeout = 5 * time.Second

// Observer is told about the connection and about tree changes. Its
// methods are never called concurrently. They must not call Close.
type Observer interface {
	Connected()
	Disconnected()
	// Failed is called when the connection broke for any other reason
	// than the daemon closing it.
	Failed(err error)
	DeviceChanged(ch devicetree.Change)
}

// NullObserver ignores everything; embed it to implement only some of
// the Observer methods.
type NullObserver struct{}

func (NullObserver) Connected()                       {}
func (NullObserver) Disconnected()                    {}
func (NullObserver) Failed(error)                     {}
func (NullObserver) DeviceChanged(devicetree.Change) {}

// Config allows to customize client behavior.
type Config struct {
	// Socket is the daemon socket, dirs.MediadSocket if empty.
	Socket string
	// Observer, if set, gets connection and tree events.
	Observer Observer
	// Timeout bounds the enumeration done by Connect.
	Timeout time.Duration
}

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type request struct {
	records []*protocol.Command
	// done is buffered so that replies to requests nobody waits for
	// anymore do not block the receive loop.
	done chan error
}

type connection struct {
	conn          net.Conn
	w             *protocol.Writer
	tomb          tomb.Tomb
	notifications chan *protocol.Command
}

// A Client knows how to talk to the media daemon.
type Client struct {
	socket   string
	timeout  time.Duration
	observer Observer
	tree     *devicetree.Tree

	observerMu sync.Mutex

	// writeMu keeps the order of pending equal to the order of requests
	// on the wire
	writeMu sync.Mutex

	mu      sync.Mutex
	state   State
	cur     *connection
	pending []*request
	closing bool
}

// New returns a new, disconnected, Client.
func New(config *Config) *Client {
	if config == nil {
		config = &Config{}
	}
	c := &Client{
		socket:   config.Socket,
		timeout:  config.Timeout,
		observer: config.Observer,
		tree:     devicetree.New(),
	}
	if c.socket == "" {
		c.socket = dirs.MediadSocket
	}
	if c.timeout == 0 {
		c.timeout = DefaultTimeout
	}
	if c.observer == nil {
		c.observer = NullObserver{}
	}
	return c
}

// Tree returns the mirrored device tree. It is initialized once Connect
// succeeds.
func (c *Client) Tree() *devicetree.Tree {
	return c.tree
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) notify(f func(o Observer)) {
	c.observerMu.Lock()
	defer c.observerMu.Unlock()
	f(c.observer)
}

// Connect dials the daemon, enumerates the devices into the tree and
// replays notifications that arrived meanwhile. It can be called again
// after the connection was lost.
func (c *Client) Connect() error {
	c.mu.Lock()
	if c.state == StateConnecting || c.state == StateConnected {
		c.mu.Unlock()
		return fmt.Errorf("cannot connect: %w", ErrInvalidState)
	}
	c.state = StateConnecting
	c.closing = false
	c.mu.Unlock()

	conn, err := dial(c.socket)
	if err != nil {
		c.setState(StateDisconnected)
		return fmt.Errorf("%w: %v", ErrDaemonNotResponding, err)
	}

	cur := &connection{
		conn:          conn,
		w:             protocol.NewWriter(conn),
		notifications: make(chan *protocol.Command, 64),
	}
	c.mu.Lock()
	if c.closing {
		c.state = StateDisconnected
		c.mu.Unlock()
		conn.Close()
		return fmt.Errorf("cannot connect: %w", ErrInvalidState)
	}
	c.cur = cur
	c.mu.Unlock()

	cur.tomb.Go(func() error {
		cur.tomb.Go(func() error {
			return c.applyLoop(cur)
		})
		return c.receiveLoop(cur)
	})

	devices, err := c.Enumerate(c.timeout)
	if err != nil {
		c.teardown(cur, ErrInvalidState, false)
		return fmt.Errorf("cannot enumerate devices: %w", err)
	}
	// applyLoop can deliver changes as soon as the tree is initialized,
	// those must come after the ones of the initialization
	c.observerMu.Lock()
	defer c.observerMu.Unlock()
	changes := c.tree.Initialize(devices)

	c.mu.Lock()
	if c.cur != cur {
		// lost while initializing, already reported
		c.mu.Unlock()
		return fmt.Errorf("cannot connect: %w", ErrDaemonNotResponding)
	}
	c.state = StateConnected
	c.mu.Unlock()

	for _, ch := range changes {
		if ch.Modified {
			c.observer.DeviceChanged(ch)
		}
	}
	c.observer.Connected()
	return nil
}

func (c *Client) setState(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
}

// Close disconnects from the daemon. Outstanding requests fail with
// ErrInvalidState. It does not call the observer.
func (c *Client) Close() error {
	c.mu.Lock()
	cur := c.cur
	c.closing = true
	c.mu.Unlock()

	if cur == nil {
		return nil
	}
	c.teardown(cur, ErrInvalidState, false)
	cur.tomb.Kill(nil)
	return cur.tomb.Wait()
}

// teardown forgets about cur, failing the outstanding requests with
// reqErr. It returns false if cur was already torn down.
func (c *Client) teardown(cur *connection, reqErr error, lost bool) bool {
	c.mu.Lock()
	if c.cur != cur {
		c.mu.Unlock()
		return false
	}
	c.cur = nil
	pending := c.pending
	c.pending = nil
	if lost && !c.closing {
		c.state = StateFailed
	} else {
		c.state = StateDisconnected
	}
	c.mu.Unlock()

	cur.conn.Close()
	c.tree.Invalidate()
	for _, req := range pending {
		req.done <- reqErr
	}
	return true
}

func (c *Client) connectionLost(cur *connection, err error) {
	cur.tomb.Kill(nil)

	c.mu.Lock()
	closing := c.closing
	c.mu.Unlock()

	eof := errors.Is(err, io.EOF)
	if !c.teardown(cur, ErrDaemonNotResponding, !eof) || closing {
		return
	}

	if eof {
		logger.Debugf("daemon closed the connection")
		c.notify(func(o Observer) { o.Disconnected() })
		return
	}
	logger.Noticef("lost connection to the daemon: %v", err)
	c.notify(func(o Observer) { o.Failed(fmt.Errorf("cannot read from daemon: %v", err)) })
}

func (c *Client) receiveLoop(cur *connection) error {
	r := protocol.NewReader(cur.conn)
	for {
		cmd, err := r.ReadCommand()
		if err != nil {
			if protocol.IsParseError(err) {
				logger.Noticef("ignoring line from daemon: %v", err)
				continue
			}
			c.connectionLost(cur, err)
			return nil
		}

		switch {
		case protocol.IsNotification(cmd.Name):
			select {
			case cur.notifications <- cmd:
			case <-cur.tomb.Dying():
				return nil
			}
		case protocol.IsReply(cmd.Name):
			c.handleReply(cmd)
		default:
			logger.Noticef("ignoring unexpected %q from daemon", cmd.Name)
		}
	}
}

func (c *Client) handleReply(cmd *protocol.Command) {
	c.mu.Lock()
	if len(c.pending) == 0 {
		c.mu.Unlock()
		logger.Noticef("ignoring unsolicited %q from daemon", cmd.Name)
		return
	}
	req := c.pending[0]
	if cmd.Name == protocol.ReplyDevice {
		req.records = append(req.records, cmd)
		c.mu.Unlock()
		return
	}
	c.pending = c.pending[1:]
	c.mu.Unlock()

	if cmd.Name == protocol.ReplyOK {
		req.done <- nil
		return
	}
	req.done <- &Error{
		Kind:    ErrorKind(cmd.Arg(0)),
		Message: protocol.ErrorMessage(cmd),
	}
}

// applyLoop is the only consumer of notifications, so they reach the
// tree in arrival order.
func (c *Client) applyLoop(cur *connection) error {
	for {
		select {
		case cmd := <-cur.notifications:
			ch, err := c.tree.Apply(cmd)
			if err != nil {
				logger.Noticef("cannot apply notification from daemon: %v", err)
				continue
			}
			if ch.Modified {
				c.notify(func(o Observer) { o.DeviceChanged(ch) })
			}
		case <-cur.tomb.Dying():
			return nil
		}
	}
}

// do sends cmd and waits up to timeout for its reply. On success the
// device records that came with the reply are returned.
func (c *Client) do(timeout time.Duration, cmd *protocol.Command) ([]*protocol.Command, error) {
	if _, err := protocol.Encode(cmd); err != nil {
		return nil, err
	}
	req := &request{done: make(chan error, 1)}

	c.writeMu.Lock()
	c.mu.Lock()
	cur := c.cur
	if cur == nil || (c.state != StateConnected && c.state != StateConnecting) {
		c.mu.Unlock()
		c.writeMu.Unlock()
		return nil, ErrInvalidState
	}
	c.pending = append(c.pending, req)
	c.mu.Unlock()
	// a daemon that stopped reading must not hold writeMu forever
	cur.conn.SetWriteDeadline(time.Now().Add(timeout))
	err := cur.w.WriteCommand(cmd)
	cur.conn.SetWriteDeadline(time.Time{})
	c.writeMu.Unlock()
	if err != nil {
		c.connectionLost(cur, err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-req.done:
		if err != nil {
			return nil, err
		}
		return req.records, nil
	case <-timer.C:
		return nil, ErrTimeout
	}
}

// Enumerate asks the daemon for every device it knows.
func (c *Client) Enumerate(timeout time.Duration) ([]*devicetree.Device, error) {
	records, err := c.do(timeout, protocol.ListAllRequest())
	if err != nil {
		return nil, err
	}
	devices := make([]*devicetree.Device, 0, len(records))
	for _, rec := range records {
		d, err := devicetree.DeviceFromRecord(rec)
		if err != nil {
			logger.Noticef("ignoring device record from daemon: %v", err)
			continue
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// ListDevice asks the daemon about a single device.
func (c *Client) ListDevice(timeout time.Duration, path string) (*devicetree.Device, error) {
	records, err := c.do(timeout, protocol.ListDeviceRequest(path))
	if err != nil {
		return nil, err
	}
	if len(records) != 1 {
		return nil, fmt.Errorf("cannot list %q: daemon sent %d records", path, len(records))
	}
	return devicetree.DeviceFromRecord(records[0])
}

// Mount asks the daemon to mount the device at path with the given comma
// separated options. The resulting mount point is announced with a
// notification.
func (c *Client) Mount(timeout time.Duration, path, options string) error {
	_, err := c.do(timeout, protocol.MountRequest(path, options))
	return err
}

func (c *Client) Unmount(timeout time.Duration, path string) error {
	_, err := c.do(timeout, protocol.UnmountRequest(path))
	return err
}
