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

package daemon

import (
	"errors"
	"io"
	"net"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/tomb.v2"

	"github.com/canonical/mediad/logger"
	"github.com/canonical/mediad/protocol"
)

// outgoingQueue is how many batches of lines may wait for a slow client
// before it is disconnected.
const outgoingQueue = 64

var errSlowClient = errors.New("client is not reading")

// clientConn is a connected client. Its requests are handled one at a
// time, in order.
type clientConn struct {
	d       *Daemon
	conn    net.Conn
	ucred   *ucrednet
	limiter *rate.Limiter
	out     chan []*protocol.Command
	tomb    tomb.Tomb
}

func (d *Daemon) handleConn(conn net.Conn) {
	ucred, err := connUcred(conn)
	if err != nil {
		logger.Noticef("refusing connection: %v", err)
		conn.Close()
		return
	}

	cc := &clientConn{
		d:       d,
		conn:    conn,
		ucred:   ucred,
		limiter: rate.NewLimiter(rate.Limit(d.config.RequestRate), d.config.RequestBurst),
		out:     make(chan []*protocol.Command, outgoingQueue),
	}

	d.mu.Lock()
	if !d.tomb.Alive() {
		d.mu.Unlock()
		conn.Close()
		return
	}
	d.conns[cc] = true
	d.mu.Unlock()
	logger.Debugf("client connected: %s", ucred)

	cc.tomb.Go(func() error {
		cc.tomb.Go(cc.writeLoop)
		return cc.readLoop()
	})
	go func() {
		<-cc.tomb.Dying()
		conn.Close()
		err := cc.tomb.Wait()

		d.mu.Lock()
		delete(d.conns, cc)
		d.mu.Unlock()
		if err != nil {
			logger.Noticef("client %s disconnected: %v", ucred, err)
		} else {
			logger.Debugf("client disconnected: %s", ucred)
		}
	}()
}

func (cc *clientConn) readLoop() error {
	r := protocol.NewReader(cc.conn)
	for {
		cmd, err := r.ReadCommand()
		if err != nil {
			if protocol.IsParseError(err) {
				logger.Debugf("invalid request from %s: %v", cc.ucred, err)
				cc.reply(protocol.ErrorReply(protocol.CodeInvalidRequest, err.Error()))
				continue
			}
			if errors.Is(err, io.EOF) || cc.tomb.Err() != tomb.ErrStillAlive {
				return nil
			}
			return err
		}

		if !cc.limiter.Allow() {
			cc.reply(protocol.ErrorReply(protocol.CodeRateLimited, "too many requests"))
			continue
		}
		cc.reply(cc.d.dispatch(cc, cmd)...)
	}
}

func (cc *clientConn) writeLoop() error {
	w := protocol.NewWriter(cc.conn)
	for {
		select {
		case batch := <-cc.out:
			for _, cmd := range batch {
				err := w.WriteCommand(cmd)
				if errors.Is(err, protocol.ErrInvalidArgument) {
					// nothing was written, the client just misses this line
					logger.Noticef("internal error: cannot send %s to %s: %v", cmd.Name, cc.ucred, err)
					continue
				}
				if err != nil {
					return err
				}
			}
		case <-cc.tomb.Dying():
			return nil
		}
	}
}

// reply queues the lines answering a request, waiting for room if the
// client is slow. A client that does not make room within the configured
// timeout is dropped.
func (cc *clientConn) reply(cmds ...*protocol.Command) {
	select {
	case cc.out <- cmds:
		return
	default:
	}
	timer := time.NewTimer(cc.d.config.Timeout)
	defer timer.Stop()
	select {
	case cc.out <- cmds:
	case <-timer.C:
		cc.tomb.Kill(errSlowClient)
	case <-cc.tomb.Dying():
	}
}

// notify queues a notification. It must not block as it is called with
// the daemon lock held, clients not keeping up are dropped.
func (cc *clientConn) notify(cmd *protocol.Command) {
	select {
	case cc.out <- []*protocol.Command{cmd}:
	default:
		cc.tomb.Kill(errSlowClient)
	}
}
