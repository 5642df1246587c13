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

package testutil

import (
	"net"
	"path/filepath"
	"sync"

	"gopkg.in/check.v1"
	"gopkg.in/tomb.v2"

	"github.com/canonical/mediad/protocol"
)

// FakeDaemon is a scripted mediad peer listening on a unix socket, for
// client side tests.
type FakeDaemon struct {
	Socket string

	l       net.Listener
	tomb    tomb.Tomb
	handler func(req *protocol.Command) []*protocol.Command

	mu        sync.Mutex
	conns     map[net.Conn]*protocol.Writer
	requests  []*protocol.Command
	connected chan struct{}
}

// NewFakeDaemon starts a fake daemon in a temporary directory. For every
// request the handler returns the reply lines to send back; a nil
// handler answers everything with ok(), a nil result sends nothing.
func NewFakeDaemon(c *check.C, handler func(req *protocol.Command) []*protocol.Command) *FakeDaemon {
	if handler == nil {
		handler = func(*protocol.Command) []*protocol.Command {
			return []*protocol.Command{protocol.OK()}
		}
	}
	socket := filepath.Join(c.MkDir(), "mediad.socket")
	l, err := net.Listen("unix", socket)
	c.Assert(err, check.IsNil)

	d := &FakeDaemon{
		Socket:    socket,
		l:         l,
		handler:   handler,
		conns:     make(map[net.Conn]*protocol.Writer),
		connected: make(chan struct{}, 16),
	}
	d.tomb.Go(d.accept)
	return d
}

func (d *FakeDaemon) accept() error {
	for {
		conn, err := d.l.Accept()
		if err != nil {
			select {
			case <-d.tomb.Dying():
				return nil
			default:
				return err
			}
		}
		w := protocol.NewWriter(conn)
		d.mu.Lock()
		d.conns[conn] = w
		d.mu.Unlock()
		select {
		case d.connected <- struct{}{}:
		default:
		}
		d.tomb.Go(func() error {
			d.serve(conn, w)
			return nil
		})
	}
}

func (d *FakeDaemon) serve(conn net.Conn, w *protocol.Writer) {
	defer d.drop(conn)
	r := protocol.NewReader(conn)
	for {
		req, err := r.ReadCommand()
		if err != nil {
			if protocol.IsParseError(err) {
				continue
			}
			return
		}
		d.mu.Lock()
		d.requests = append(d.requests, req)
		d.mu.Unlock()
		for _, reply := range d.handler(req) {
			if err := w.WriteCommand(reply); err != nil {
				return
			}
		}
	}
}

func (d *FakeDaemon) drop(conn net.Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()
	conn.Close()
	delete(d.conns, conn)
}

// Connected returns a channel that receives a value for every accepted
// connection.
func (d *FakeDaemon) Connected() <-chan struct{} {
	return d.connected
}

// Notify sends cmd to every connected client.
func (d *FakeDaemon) Notify(cmd *protocol.Command) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, w := range d.conns {
		if err := w.WriteCommand(cmd); err != nil {
			return err
		}
	}
	return nil
}

// SendRaw writes data as is to every connected client, for sending
// malformed lines. It must not be used while requests are being served.
func (d *FakeDaemon) SendRaw(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for conn := range d.conns {
		if _, err := conn.Write(data); err != nil {
			return err
		}
	}
	return nil
}

// Requests returns the requests received so far.
func (d *FakeDaemon) Requests() []*protocol.Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*protocol.Command(nil), d.requests...)
}

// DropConnections closes every client connection, keeping the listener.
func (d *FakeDaemon) DropConnections() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for conn := range d.conns {
		conn.Close()
		delete(d.conns, conn)
	}
}

// Stop closes the listener and every connection.
func (d *FakeDaemon) Stop() error {
	d.tomb.Kill(nil)
	d.l.Close()
	d.DropConnections()
	return d.tomb.Wait()
}
