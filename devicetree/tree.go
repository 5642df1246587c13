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

// Package devicetree keeps the forest of removable devices and their
// partitions, as described by the mediad notification stream.
//
// Devices live in an arena indexed by path. Parents are referenced by
// Ref, which stops resolving when the parent goes away, so removals
// never leave dangling links.
package devicetree

import (
	"fmt"
	"sync"

	"github.com/canonical/mediad/logger"
	"github.com/canonical/mediad/protocol"
)

type node struct {
	dev *Device
}

// Tree is safe for concurrent use. All reads return snapshots.
//
// A new tree is uninitialized: notifications are queued until
// Initialize installs a full enumeration and replays them.
type Tree struct {
	mu          sync.Mutex
	nodes       map[string]*node
	roots       []string
	pending     []*protocol.Command
	initialized bool
	// nextID is never reset, so that refs from an old generation do not
	// resolve again.
	nextID    uint64
	anomalies uint64
}

func New() *Tree {
	return &Tree{nodes: make(map[string]*node)}
}

// Apply applies one notification, or queues it if the tree is not
// initialized. Stale notifications (unknown device, unknown parent,
// duplicate add) are not errors, they are ignored and counted in
// Anomalies. Errors are returned only for commands that are not valid
// notifications.
func (t *Tree) Apply(cmd *protocol.Command) (Change, error) {
	n, err := parseNotification(cmd)
	if err != nil {
		return Change{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		t.pending = append(t.pending, cmd)
		return Change{Notification: n.name, Path: n.path, Queued: true}, nil
	}
	return t.apply(n), nil
}

func (t *Tree) anomaly(format string, v ...interface{}) {
	t.anomalies++
	logger.Debugf("ignoring notification: "+format, v...)
}

func (t *Tree) apply(n *notification) Change {
	ch := Change{Notification: n.name, Path: n.path}
	nd := t.nodes[n.path]

	switch n.name {
	case protocol.NotifyAdded:
		if nd != nil {
			t.anomaly("device %q already present", n.path)
			return ch
		}
		dev := n.dev.clone()
		if !t.insert(dev) {
			t.anomaly("parent %q of %q not present", dev.ParentPath, n.path)
			return ch
		}
		ch.Modified = true
		ch.Title, ch.Message = describeAdded(dev)
	case protocol.NotifyRemoved:
		if nd == nil {
			t.anomaly("removed device %q not present", n.path)
			return ch
		}
		t.remove(nd.dev)
		ch.Modified = true
		ch.Title, ch.Message = describeRemoved(nd.dev)
	case protocol.NotifyChanged:
		if nd == nil {
			t.anomaly("changed device %q not present", n.path)
			return ch
		}
		dev := nd.dev
		before := *dev
		dev.State = n.dev.State
		dev.FSType = n.dev.FSType
		dev.Label = n.dev.Label
		dev.Subtype = n.dev.Subtype
		ch.Modified = before.State != dev.State || before.FSType != dev.FSType ||
			before.Label != dev.Label || before.Subtype != dev.Subtype
		if ch.Modified {
			ch.Title, ch.Message = describeChanged(before.State, dev)
		}
	case protocol.NotifyMounted:
		if nd == nil {
			t.anomaly("mounted device %q not present", n.path)
			return ch
		}
		dev := nd.dev
		ch.Modified = dev.MountPoint != n.mountPoint || dev.MountOptions != n.mountOptions
		dev.MountPoint = n.mountPoint
		dev.MountOptions = n.mountOptions
		if ch.Modified {
			ch.Title, ch.Message = describeMounted(dev)
		}
	case protocol.NotifyUnmounted:
		if nd == nil {
			t.anomaly("unmounted device %q not present", n.path)
			return ch
		}
		dev := nd.dev
		ch.Modified = dev.MountPoint != "" || dev.MountOptions != ""
		dev.MountPoint = ""
		dev.MountOptions = ""
		if ch.Modified {
			ch.Title, ch.Message = describeUnmounted(dev)
		}
	default:
		panic(fmt.Sprintf("internal error: unhandled notification %q", n.name))
	}
	return ch
}

// insert adds dev to the arena, under its parent. It returns false if
// the parent is not present.
func (t *Tree) insert(dev *Device) bool {
	var parent *node
	if dev.ParentPath != "" {
		parent = t.nodes[dev.ParentPath]
		if parent == nil {
			return false
		}
	}
	t.nextID++
	dev.Self = Ref{path: dev.Path, id: t.nextID}
	dev.Children = nil
	if parent != nil {
		dev.Parent = parent.dev.Self
		parent.dev.Children = append(parent.dev.Children, dev.Path)
	} else {
		dev.Parent = Ref{}
		t.roots = append(t.roots, dev.Path)
	}
	if dev.MountPoint == "" {
		dev.MountOptions = ""
	}
	t.nodes[dev.Path] = &node{dev: dev}
	return true
}

func removePath(paths []string, path string) []string {
	for i, p := range paths {
		if p == path {
			return append(paths[:i:i], paths[i+1:]...)
		}
	}
	return paths
}

// remove detaches dev and drops its whole subtree from the arena.
func (t *Tree) remove(dev *Device) {
	if dev.ParentPath == "" {
		t.roots = removePath(t.roots, dev.Path)
	} else if parent := t.nodes[dev.ParentPath]; parent != nil {
		parent.dev.Children = removePath(parent.dev.Children, dev.Path)
	}
	t.dropSubtree(dev)
}

func (t *Tree) dropSubtree(dev *Device) {
	for _, child := range dev.Children {
		if nd := t.nodes[child]; nd != nil {
			t.dropSubtree(nd.dev)
		}
	}
	delete(t.nodes, dev.Path)
}

// Initialize replaces the content of the tree with a full enumeration,
// marks the tree initialized and replays the queued notifications in
// arrival order. All of it happens under one lock acquisition, so
// readers see either the old tree or the fully replayed one.
//
// Devices may come in any order; a device whose parent cannot be found
// is dropped.
func (t *Tree) Initialize(devices []*Device) []Change {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nodes = make(map[string]*node, len(devices))
	t.roots = nil

	remaining := devices
	for len(remaining) > 0 {
		var deferred []*Device
		for _, d := range remaining {
			if t.nodes[d.Path] != nil {
				t.anomaly("duplicate device %q in enumeration", d.Path)
				continue
			}
			if d.ParentPath != "" && t.nodes[d.ParentPath] == nil {
				deferred = append(deferred, d)
				continue
			}
			t.insert(d.clone())
		}
		if len(deferred) == len(remaining) {
			for _, d := range deferred {
				t.anomaly("parent %q of %q not in enumeration", d.ParentPath, d.Path)
			}
			break
		}
		remaining = deferred
	}

	t.initialized = true
	pending := t.pending
	t.pending = nil

	var changes []Change
	for _, cmd := range pending {
		n, err := parseNotification(cmd)
		if err != nil {
			// validated when queued
			panic(fmt.Sprintf("internal error: queued invalid notification: %v", err))
		}
		changes = append(changes, t.apply(n))
	}
	return changes
}

// Invalidate marks the tree uninitialized again, as when the connection
// to the daemon is lost. The content is kept for readers; notifications
// queue until the next Initialize.
func (t *Tree) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.initialized = false
	t.pending = nil
}

func (t *Tree) Initialized() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.initialized
}

// Pending returns the queued notifications.
func (t *Tree) Pending() []*protocol.Command {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*protocol.Command(nil), t.pending...)
}

// Anomalies returns how many stale or duplicate notifications were
// ignored so far.
func (t *Tree) Anomalies() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.anomalies
}

func (t *Tree) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.nodes)
}

func (t *Tree) Lookup(path string) (*Device, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	nd := t.nodes[path]
	if nd == nil {
		return nil, false
	}
	return nd.dev.clone(), true
}

// Resolve follows a weak reference.
func (t *Tree) Resolve(ref Ref) (*Device, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resolve(ref)
}

func (t *Tree) resolve(ref Ref) (*Device, bool) {
	if ref.IsZero() {
		return nil, false
	}
	nd := t.nodes[ref.path]
	if nd == nil || nd.dev.Self.id != ref.id {
		return nil, false
	}
	return nd.dev.clone(), true
}

// Parent returns the live parent of dev, if any.
func (t *Tree) Parent(dev *Device) (*Device, bool) {
	return t.Resolve(dev.Parent)
}

func (t *Tree) Roots() []*Device {
	t.mu.Lock()
	defer t.mu.Unlock()
	roots := make([]*Device, 0, len(t.roots))
	for _, path := range t.roots {
		roots = append(roots, t.nodes[path].dev.clone())
	}
	return roots
}

// Devices returns every device, parents before their children.
func (t *Tree) Devices() []*Device {
	t.mu.Lock()
	defer t.mu.Unlock()
	devices := make([]*Device, 0, len(t.nodes))
	var walk func(path string)
	walk = func(path string) {
		nd := t.nodes[path]
		devices = append(devices, nd.dev.clone())
		for _, child := range nd.dev.Children {
			walk(child)
		}
	}
	for _, path := range t.roots {
		walk(path)
	}
	return devices
}
