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

package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/canonical/mediad/logger"
)

const (
	dBusName          = "org.freedesktop.Notifications"
	dBusObjectPath    = "/org/freedesktop/Notifications"
	dBusInterfaceName = "org.freedesktop.Notifications"
)

// busCaller is the part of dbus.BusObject used to talk to the server.
type busCaller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// fdoBackend is a notification manager for the freedesktop
// notification server.
type fdoBackend struct {
	conn      *dbus.Conn
	obj       busCaller
	desktopID string

	mu              sync.Mutex
	serverToLocalID map[uint32]ID
	localToServerID map[ID]uint32
}

var newFdoBackend = func(conn *dbus.Conn, desktopID string) NotificationManager {
	return &fdoBackend{
		conn:            conn,
		obj:             conn.Object(dBusName, dBusObjectPath),
		desktopID:       desktopID,
		serverToLocalID: make(map[uint32]ID),
		localToServerID: make(map[ID]uint32),
	}
}

func (srv *fdoBackend) hints(msg *Message) map[string]dbus.Variant {
	hints := make(map[string]dbus.Variant, len(msg.Hints)+1)
	for _, hint := range msg.Hints {
		hints[hint.Name] = dbus.MakeVariant(hint.Value)
	}
	if _, ok := hints[desktopEntryHint]; !ok && srv.desktopID != "" {
		hints[desktopEntryHint] = dbus.MakeVariant(srv.desktopID)
	}
	return hints
}

func expireTimeout(d time.Duration) int32 {
	if d < 0 {
		return -1
	}
	return int32(d / time.Millisecond)
}

// SendNotification sends a new notification or updates the one with
// the same id.
func (srv *fdoBackend) SendNotification(id ID, msg *Message) error {
	actions := make([]string, 0, 2*len(msg.Actions))
	for _, action := range msg.Actions {
		actions = append(actions, action.ActionKey, action.LocalizedText)
	}

	srv.mu.Lock()
	replacesID := srv.localToServerID[id]
	srv.mu.Unlock()

	var serverID uint32
	call := srv.obj.Call(dBusInterfaceName+".Notify", 0,
		msg.AppName, replacesID, msg.Icon, msg.Title, msg.Body,
		actions, srv.hints(msg), expireTimeout(msg.ExpireTimeout))
	if err := call.Store(&serverID); err != nil {
		return fmt.Errorf("cannot send notification %q: %v", id, err)
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	if replacesID != 0 && replacesID != serverID {
		delete(srv.serverToLocalID, replacesID)
	}
	srv.serverToLocalID[serverID] = id
	srv.localToServerID[id] = serverID
	return nil
}

// CloseNotification closes a notification message.
func (srv *fdoBackend) CloseNotification(id ID) error {
	srv.mu.Lock()
	serverID, ok := srv.localToServerID[id]
	srv.mu.Unlock()
	if !ok {
		return fmt.Errorf("cannot close notification %q: unknown notification", id)
	}

	call := srv.obj.Call(dBusInterfaceName+".CloseNotification", 0, serverID)
	if call.Err != nil {
		return fmt.Errorf("cannot close notification %q: %v", id, call.Err)
	}
	return nil
}

func (srv *fdoBackend) HandleNotifications(ctx context.Context, observer Observer) error {
	matchOpts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(dBusObjectPath),
		dbus.WithMatchInterface(dBusInterfaceName),
	}
	if err := srv.conn.AddMatchSignal(matchOpts...); err != nil {
		return fmt.Errorf("cannot subscribe to notification signals: %v", err)
	}
	defer srv.conn.RemoveMatchSignal(matchOpts...)

	signals := make(chan *dbus.Signal, 10)
	srv.conn.Signal(signals)
	defer srv.conn.RemoveSignal(signals)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-signals:
			if !ok {
				return fmt.Errorf("session bus connection closed")
			}
			if err := srv.processSignal(sig, observer); err != nil {
				logger.Noticef("%v", err)
			}
		}
	}
}

func (srv *fdoBackend) processSignal(sig *dbus.Signal, observer Observer) error {
	switch sig.Name {
	case dBusInterfaceName + ".NotificationClosed":
		return srv.processNotificationClosed(sig, observer)
	case dBusInterfaceName + ".ActionInvoked":
		return srv.processActionInvoked(sig, observer)
	}
	return nil
}

func (srv *fdoBackend) processNotificationClosed(sig *dbus.Signal, observer Observer) error {
	if len(sig.Body) != 2 {
		return fmt.Errorf("unexpected number of body elements: %d", len(sig.Body))
	}
	serverID, ok := sig.Body[0].(uint32)
	if !ok {
		return fmt.Errorf("expected first body element to be uint32, got %T", sig.Body[0])
	}
	reason, ok := sig.Body[1].(uint32)
	if !ok {
		return fmt.Errorf("expected second body element to be uint32, got %T", sig.Body[1])
	}

	srv.mu.Lock()
	id, known := srv.serverToLocalID[serverID]
	if known {
		delete(srv.serverToLocalID, serverID)
		delete(srv.localToServerID, id)
	}
	srv.mu.Unlock()
	if !known {
		// sent by someone else
		return nil
	}
	return observer.NotificationClosed(id, CloseReason(reason))
}

func (srv *fdoBackend) processActionInvoked(sig *dbus.Signal, observer Observer) error {
	if len(sig.Body) != 2 {
		return fmt.Errorf("unexpected number of body elements: %d", len(sig.Body))
	}
	serverID, ok := sig.Body[0].(uint32)
	if !ok {
		return fmt.Errorf("expected first body element to be uint32, got %T", sig.Body[0])
	}
	actionKey, ok := sig.Body[1].(string)
	if !ok {
		return fmt.Errorf("expected second body element to be string, got %T", sig.Body[1])
	}

	srv.mu.Lock()
	id, known := srv.serverToLocalID[serverID]
	srv.mu.Unlock()
	if !known {
		return nil
	}
	return observer.ActionInvoked(id, actionKey)
}
