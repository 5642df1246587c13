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
	"fmt"
	"net"

	"golang.org/x/sys/unix"

	"github.com/canonical/mediad/logger"
)

var errNoID = errors.New("no pid/uid found")

const (
	ucrednetNoProcess = int32(0)
	ucrednetNobody    = uint32((1 << 32) - 1)
)

// ucrednet are the credentials of the process on the other end of a
// connection, as seen when it connected.
type ucrednet struct {
	Pid int32
	Uid uint32
	Gid uint32
}

func (un *ucrednet) String() string {
	if un == nil {
		return "pid=;uid=;gid=;"
	}
	return fmt.Sprintf("pid=%d;uid=%d;gid=%d;", un.Pid, un.Uid, un.Gid)
}

type ucrednetConn struct {
	net.Conn
	*ucrednet
}

type ucrednetListener struct {
	net.Listener
}

var getUcred = unix.GetsockoptUcred

func peerCredentials(ucon *net.UnixConn) (*unix.Ucred, error) {
	rawConn, err := ucon.SyscallConn()
	if err != nil {
		return nil, err
	}
	var ucred *unix.Ucred
	var ucredErr error
	if err := rawConn.Control(func(fd uintptr) {
		ucred, ucredErr = getUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	}); err != nil {
		return nil, err
	}
	return ucred, ucredErr
}

func (wl *ucrednetListener) Accept() (net.Conn, error) {
	con, err := wl.Listener.Accept()
	if err != nil {
		return nil, err
	}

	var unet *ucrednet
	if ucon, ok := con.(*net.UnixConn); ok {
		ucred, err := peerCredentials(ucon)
		if err != nil {
			// the connection is refused when handled
			logger.Noticef("cannot get peer credentials: %v", err)
		} else {
			unet = &ucrednet{
				Pid: ucred.Pid,
				Uid: ucred.Uid,
				Gid: ucred.Gid,
			}
		}
	}

	return &ucrednetConn{con, unet}, nil
}

// connUcred returns the peer credentials of a connection accepted from
// a ucrednetListener.
func connUcred(conn net.Conn) (*ucrednet, error) {
	wc, ok := conn.(*ucrednetConn)
	if !ok || wc.ucrednet == nil {
		return nil, errNoID
	}
	if wc.Pid == ucrednetNoProcess || wc.Uid == ucrednetNobody {
		return nil, errNoID
	}
	return wc.ucrednet, nil
}
