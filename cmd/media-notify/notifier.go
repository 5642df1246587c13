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
	"sync"
	"time"

	"github.com/juju/ratelimit"
	"gopkg.in/retry.v1"

	"github.com/canonical/mediad/desktop/notification"
	"github.com/canonical/mediad/devicetree"
	"github.com/canonical/mediad/i18n"
	"github.com/canonical/mediad/logger"
	"github.com/canonical/mediad/protocol"
)

const (
	appName   = "media-notify"
	desktopID = "media-notify"
	icon      = "drive-removable-media"

	unmountAction = "unmount"
)

var reconnectStrategy retry.Strategy = retry.Exponential{
	Initial:  500 * time.Millisecond,
	Factor:   2,
	MaxDelay: 30 * time.Second,
}

// A hub full of sticks plugged at once should not bury the desktop.
var (
	notificationRate  = 1.0
	notificationBurst = int64(8)
)

type mediaClient interface {
	Connect() error
	Close() error
	Unmount(timeout time.Duration, path string) error
}

// notifier turns device tree changes into desktop notifications.
type notifier struct {
	mgr     notification.NotificationManager
	client  mediaClient
	timeout time.Duration
	bucket  *ratelimit.Bucket

	mu sync.Mutex
	// seenFirstConnect is unset while the devices present at start up
	// are enumerated, they are not worth telling about.
	seenFirstConnect bool
	lost             chan struct{}
}

func newNotifier(mgr notification.NotificationManager, timeout time.Duration) *notifier {
	return &notifier{
		mgr:     mgr,
		timeout: timeout,
		bucket:  ratelimit.NewBucketWithRate(notificationRate, notificationBurst),
		lost:    make(chan struct{}, 1),
	}
}

func (n *notifier) Connected() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seenFirstConnect = true
}

func (n *notifier) connectionLost() {
	select {
	case n.lost <- struct{}{}:
	default:
	}
}

func (n *notifier) Disconnected() {
	logger.Noticef("lost connection to the daemon")
	n.connectionLost()
}

func (n *notifier) Failed(err error) {
	logger.Noticef("connection to the daemon failed: %v", err)
	n.connectionLost()
}

func categoryFor(ch devicetree.Change) notification.Category {
	switch ch.Notification {
	case protocol.NotifyAdded:
		return notification.DeviceAddedCategory
	case protocol.NotifyRemoved:
		return notification.DeviceRemovedCategory
	}
	return notification.DeviceCategory
}

func (n *notifier) message(ch devicetree.Change) *notification.Message {
	msg := &notification.Message{
		AppName:       appName,
		Icon:          icon,
		Title:         ch.Title,
		Body:          ch.Message,
		ExpireTimeout: notification.ServerSelectedExpireTimeout,
		Hints: []notification.Hint{
			notification.WithCategory(categoryFor(ch)),
			notification.WithUrgency(notification.LowUrgency),
		},
	}
	switch ch.Notification {
	case protocol.NotifyMounted:
		msg.Actions = []notification.Action{{ActionKey: unmountAction, LocalizedText: i18n.G("Unmount")}}
		msg.Hints = append(msg.Hints, notification.WithResident())
	case protocol.NotifyRemoved, protocol.NotifyUnmounted:
		msg.Hints = append(msg.Hints, notification.WithTransient())
	}
	return msg
}

func (n *notifier) DeviceChanged(ch devicetree.Change) {
	n.mu.Lock()
	startup := !n.seenFirstConnect
	n.mu.Unlock()
	if startup || ch.Title == "" {
		return
	}
	if n.bucket.TakeAvailable(1) == 0 {
		logger.Debugf("too many notifications, dropping %q for %s", ch.Title, ch.Path)
		return
	}
	if err := n.mgr.SendNotification(notification.ID(ch.Path), n.message(ch)); err != nil {
		logger.Noticef("%v", err)
	}
}

func (n *notifier) ActionInvoked(id notification.ID, actionKey string) error {
	if actionKey != unmountAction {
		return nil
	}
	path := string(id)
	if err := n.client.Unmount(n.timeout, path); err != nil {
		return n.mgr.SendNotification(id, &notification.Message{
			AppName: appName,
			Icon:    icon,
			Title:   i18n.G("Cannot unmount device"),
			Body:    err.Error(),
			Hints: []notification.Hint{
				notification.WithCategory(notification.DeviceErrorCategory),
				notification.WithUrgency(notification.NormalUrgency),
			},
			ExpireTimeout: notification.ServerSelectedExpireTimeout,
		})
	}
	return nil
}

func (n *notifier) NotificationClosed(id notification.ID, reason notification.CloseReason) error {
	logger.Debugf("notification for %s closed: %s", id, reason)
	return nil
}

// connect tries to connect until it works or ctx is done.
func (n *notifier) connect(ctx context.Context) error {
	var err error
	for attempt := retry.Start(reconnectStrategy, nil); attempt.Next(); {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err = n.client.Connect(); err == nil {
			return nil
		}
		logger.Debugf("cannot connect to the daemon: %v", err)
	}
	return fmt.Errorf("cannot connect to the daemon: %v", err)
}

// run keeps the client connected until ctx is done.
func (n *notifier) run(ctx context.Context) error {
	for {
		if err := n.connect(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case <-n.lost:
			// the lost connection is torn down, start over
			n.client.Close()
		case <-ctx.Done():
			n.client.Close()
			return nil
		}
	}
}
