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
	"time"

	"gopkg.in/retry.v1"

	"github.com/canonical/mediad/client"
	"github.com/canonical/mediad/desktop/notification"
)

type Notifier = notifier

func NewNotifier(mgr notification.NotificationManager, socket string, timeout time.Duration) *Notifier {
	n := newNotifier(mgr, timeout)
	n.client = client.New(&client.Config{Socket: socket, Observer: n, Timeout: timeout})
	return n
}

func (n *notifier) Run(ctx context.Context) error {
	return n.run(ctx)
}

func MockReconnectStrategy(s retry.Strategy) (restore func()) {
	old := reconnectStrategy
	reconnectStrategy = s
	return func() {
		reconnectStrategy = old
	}
}

func MockNotificationRate(rate float64, burst int64) (restore func()) {
	oldRate, oldBurst := notificationRate, notificationBurst
	notificationRate, notificationBurst = rate, burst
	return func() {
		notificationRate, notificationBurst = oldRate, oldBurst
	}
}
