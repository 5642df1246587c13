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

// Package protocol implements the line oriented wire format spoken
// between mediad and its clients.
//
// Every message is a single command line of the form
//
//	name("arg1", "arg2")\n
//
// Arguments are carried verbatim: the codec never unescapes them.
// Fields that may hold arbitrary bytes (labels, error messages) are
// escaped by their producers with strutil.EscapeLabel.
package protocol

import (
	"fmt"
	"strings"
)

// Command is a single decoded (or to be encoded) protocol line.
type Command struct {
	Name string
	Args []string
}

// New returns a command with the given name and arguments.
func New(name string, args ...string) *Command {
	return &Command{Name: name, Args: args}
}

// Arg returns the i-th argument or the empty string if there is no such
// argument.
func (c *Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// CheckArity returns an error unless the command carries exactly the
// number of arguments its name requires. Names without a known arity
// are refused.
func (c *Command) CheckArity() error {
	n, ok := arity[c.Name]
	if !ok {
		return fmt.Errorf("unknown command %q", c.Name)
	}
	if len(c.Args) != n {
		return fmt.Errorf("command %q takes %d arguments, got %d", c.Name, n, len(c.Args))
	}
	return nil
}

// String returns the command as it would appear on the wire, without the
// line terminator. It does not validate the command.
func (c *Command) String() string {
	var b strings.Builder
	writeCommand(&b, c)
	return b.String()
}

func writeCommand(b *strings.Builder, c *Command) {
	b.WriteString(c.Name)
	b.WriteByte('(')
	for i, arg := range c.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('"')
		b.WriteString(arg)
		b.WriteByte('"')
	}
	b.WriteByte(')')
}
