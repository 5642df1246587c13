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

	"github.com/canonical/mediad/devicetree"
	"github.com/canonical/mediad/logger"
	"github.com/canonical/mediad/mountopts"
	"github.com/canonical/mediad/osutil/mount"
	"github.com/canonical/mediad/protocol"
)

func errorReply(code string, format string, v ...interface{}) []*protocol.Command {
	return []*protocol.Command{protocol.ErrorReply(code, fmt.Sprintf(format, v...))}
}

func okReply() []*protocol.Command {
	return []*protocol.Command{protocol.OK()}
}

// dispatch carries out a request and returns the reply lines.
func (d *Daemon) dispatch(cc *clientConn, cmd *protocol.Command) []*protocol.Command {
	if !protocol.IsRequest(cmd.Name) {
		return errorReply(protocol.CodeInvalidRequest, "unknown request %q", cmd.Name)
	}
	if err := cmd.CheckArity(); err != nil {
		return errorReply(protocol.CodeInvalidRequest, "%v", err)
	}

	switch cmd.Name {
	case protocol.CmdListAll:
		return d.listAll()
	case protocol.CmdListDevice:
		return d.listDevice(cmd.Arg(0))
	case protocol.CmdMount:
		return d.mount(cc.ucred, cmd.Arg(0), cmd.Arg(1))
	case protocol.CmdUnmount:
		return d.unmount(cc.ucred, cmd.Arg(0))
	}
	return errorReply(protocol.CodeInvalidRequest, "unknown request %q", cmd.Name)
}

func (d *Daemon) listAll() []*protocol.Command {
	devices := d.tree.Devices()
	replies := make([]*protocol.Command, 0, len(devices)+1)
	for _, dev := range devices {
		replies = append(replies, dev.Record())
	}
	return append(replies, protocol.OK())
}

func (d *Daemon) listDevice(path string) []*protocol.Command {
	dev, ok := d.tree.Lookup(path)
	if !ok {
		return errorReply(protocol.CodeNoSuchDevice, "no such device %q", path)
	}
	return []*protocol.Command{dev.Record(), protocol.OK()}
}

// claim marks the device as busy, it returns false if it already was.
func (d *Daemon) claim(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.busy[path] {
		return false
	}
	d.busy[path] = true
	return true
}

func (d *Daemon) release(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.busy, path)
}

func accessErrorReply(err error, path string) []*protocol.Command {
	return errorReply(protocol.CodeNotAuthorized, "cannot access %s: %v", path, err)
}

// mountable looks up path and validates options for it, it checks
// everything but authorization.
func (d *Daemon) mountable(ucred *ucrednet, path, options string) (*devicetree.Device, *mountopts.Args, []*protocol.Command) {
	dev, ok := d.tree.Lookup(path)
	if !ok {
		return nil, nil, errorReply(protocol.CodeNoSuchDevice, "no such device %q", path)
	}
	if dev.IsMounted() {
		return nil, nil, errorReply(protocol.CodeAlreadyMounted, "%s is already mounted at %s", path, dev.MountPoint)
	}
	if dev.State != devicetree.StateOK {
		return nil, nil, errorReply(protocol.CodeMountFailed, "cannot mount %s: no medium", path)
	}

	args, err := d.policy.Validate(dev.FSType, options, ucred.Uid, ucred.Gid)
	switch {
	case errors.Is(err, mountopts.ErrFilesystemNotSupported):
		return nil, nil, errorReply(protocol.CodeFilesystemNotSupported, "%v", err)
	case errors.Is(err, mountopts.ErrUnsupportedOption):
		return nil, nil, errorReply(protocol.CodeUnsupportedOption, "%v", err)
	case err != nil:
		return nil, nil, errorReply(protocol.CodeMountFailed, "%v", err)
	}
	return dev, args, nil
}

func (d *Daemon) mount(ucred *ucrednet, path, options string) []*protocol.Command {
	if _, _, reply := d.mountable(ucred, path, options); reply != nil {
		return reply
	}

	if err := d.checkMountAccess(ucred, path); err != nil {
		return accessErrorReply(err, path)
	}

	if !d.claim(path) {
		return errorReply(protocol.CodeBusy, "%s is busy", path)
	}
	defer d.release(path)

	// the authorization check may have taken a while, somebody else
	// could have mounted the device or changed its medium meanwhile
	dev, args, reply := d.mountable(ucred, path, options)
	if reply != nil {
		return reply
	}

	mountPoint, err := allocateMountPoint(d.config.MountDir, dev)
	if err != nil {
		return errorReply(protocol.CodeMountFailed, "%v", err)
	}
	flags, data := args.Flags()
	logger.Noticef("mounting %s (%s) at %s for uid %d", path, args, mountPoint, ucred.Uid)
	if err := d.mounter.Mount(path, mountPoint, args.FSType, flags, data); err != nil {
		if rerr := removeMountPoint(d.config.MountDir, mountPoint); rerr != nil {
			logger.Noticef("cannot remove mount point: %v", rerr)
		}
		return errorReply(protocol.CodeMountFailed, "%v", err)
	}

	d.mu.Lock()
	d.owners[path] = ucred.Uid
	d.mu.Unlock()
	d.broadcast(protocol.Mounted(path, mountPoint, args.String()))
	return okReply()
}

func (d *Daemon) mounted(path string) (*devicetree.Device, []*protocol.Command) {
	dev, ok := d.tree.Lookup(path)
	if !ok {
		return nil, errorReply(protocol.CodeNoSuchDevice, "no such device %q", path)
	}
	if !dev.IsMounted() {
		return nil, errorReply(protocol.CodeNotMounted, "%s is not mounted", path)
	}
	return dev, nil
}

func (d *Daemon) unmount(ucred *ucrednet, path string) []*protocol.Command {
	checked, reply := d.mounted(path)
	if reply != nil {
		return reply
	}
	owner, owned := d.mountOwner(path)
	if err := d.checkUnmountAccess(ucred, path); err != nil {
		return accessErrorReply(err, path)
	}

	if !d.claim(path) {
		return errorReply(protocol.CodeBusy, "%s is busy", path)
	}
	defer d.release(path)

	dev, reply := d.mounted(path)
	if reply != nil {
		return reply
	}
	nowOwner, nowOwned := d.mountOwner(path)
	if dev.MountPoint != checked.MountPoint || nowOwner != owner || nowOwned != owned {
		// unmounted and mounted again, possibly by someone else
		if err := d.checkUnmountAccess(ucred, path); err != nil {
			return accessErrorReply(err, path)
		}
	}

	logger.Noticef("unmounting %s from %s for uid %d", path, dev.MountPoint, ucred.Uid)
	if err := d.mounter.Unmount(dev.MountPoint, mount.UMOUNT_NOFOLLOW); err != nil {
		return errorReply(protocol.CodeUnmountFailed, "%v", err)
	}
	d.unmounted(dev)
	return okReply()
}

// unmounted cleans up after dev was unmounted and tells the clients.
func (d *Daemon) unmounted(dev *devicetree.Device) {
	if err := removeMountPoint(d.config.MountDir, dev.MountPoint); err != nil {
		logger.Noticef("cannot remove mount point: %v", err)
	}
	d.mu.Lock()
	delete(d.owners, dev.Path)
	d.mu.Unlock()
	d.broadcast(protocol.Unmounted(dev.Path, dev.MountPoint))
}
