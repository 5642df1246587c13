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

package netlink

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
)

// KObjAction is the action of a kernel object event.
type KObjAction string

const (
	ADD     KObjAction = "add"
	REMOVE  KObjAction = "remove"
	CHANGE  KObjAction = "change"
	MOVE    KObjAction = "move"
	ONLINE  KObjAction = "online"
	OFFLINE KObjAction = "offline"
	BIND    KObjAction = "bind"
	UNBIND  KObjAction = "unbind"
)

func (a KObjAction) String() string {
	return string(a)
}

// ParseKObjAction returns the action named by raw.
func ParseKObjAction(raw string) (KObjAction, error) {
	a := KObjAction(raw)
	switch a {
	case ADD, REMOVE, CHANGE, MOVE, ONLINE, OFFLINE, BIND, UNBIND:
		return a, nil
	}
	return "", fmt.Errorf("unknown kobject action %q", raw)
}

// UEvent is a kernel (or udev) device event.
type UEvent struct {
	Action KObjAction
	KObj   string
	Env    map[string]string
}

// String returns the event in kernel format, with the environment sorted
// and separated by new lines.
func (e UEvent) String() string {
	keys := make([]string, 0, len(e.Env))
	for k := range e.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "%s@%s\n", e.Action, e.KObj)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, e.Env[k])
	}
	return b.String()
}

// Bytes returns the event as the kernel would send it.
func (e UEvent) Bytes() []byte {
	return []byte(strings.Replace(e.String(), "\n", "\x00", -1))
}

const (
	libudevPrefix = "libudev\x00"
	libudevMagic  = 0xfeedcafe
	// prefix, magic, header size, properties offset and length
	libudevHeaderMin = 8 + 4*4
)

// ParseUEvent parses a message as sent by the kernel ("action@devpath"
// followed by NUL separated KEY=VALUE pairs) or by udev (the libudev
// monitor header followed by the properties).
func ParseUEvent(raw []byte) (*UEvent, error) {
	if bytes.HasPrefix(raw, []byte(libudevPrefix)) {
		return parseUdevEvent(raw)
	}

	fields := bytes.Split(raw, []byte{0x00})
	if len(fields) == 0 || len(fields[0]) == 0 {
		return nil, fmt.Errorf("cannot parse uevent: empty message")
	}
	header := bytes.SplitN(fields[0], []byte("@"), 2)
	if len(header) != 2 {
		return nil, fmt.Errorf("cannot parse uevent: invalid header %q", fields[0])
	}
	action, err := ParseKObjAction(string(header[0]))
	if err != nil {
		return nil, fmt.Errorf("cannot parse uevent: %v", err)
	}

	e := &UEvent{
		Action: action,
		KObj:   string(header[1]),
		Env:    parseEnv(fields[1:]),
	}
	return e, nil
}

func parseEnv(fields [][]byte) map[string]string {
	env := make(map[string]string, len(fields))
	for _, field := range fields {
		kv := bytes.SplitN(field, []byte("="), 2)
		if len(kv) != 2 {
			continue
		}
		env[string(kv[0])] = string(kv[1])
	}
	return env
}

func parseUdevEvent(raw []byte) (*UEvent, error) {
	if len(raw) < libudevHeaderMin {
		return nil, fmt.Errorf("cannot parse udev event: short header")
	}
	if magic := binary.BigEndian.Uint32(raw[8:12]); magic != libudevMagic {
		return nil, fmt.Errorf("cannot parse udev event: invalid magic %#x", magic)
	}
	off := int(binary.LittleEndian.Uint32(raw[16:20]))
	length := int(binary.LittleEndian.Uint32(raw[20:24]))
	if off < libudevHeaderMin || length < 0 || off+length > len(raw) {
		return nil, fmt.Errorf("cannot parse udev event: properties out of bounds")
	}

	env := parseEnv(bytes.Split(raw[off:off+length], []byte{0x00}))
	action, err := ParseKObjAction(env["ACTION"])
	if err != nil {
		return nil, fmt.Errorf("cannot parse udev event: %v", err)
	}
	devpath := env["DEVPATH"]
	if devpath == "" {
		return nil, fmt.Errorf("cannot parse udev event: no DEVPATH")
	}
	return &UEvent{Action: action, KObj: devpath, Env: env}, nil
}
