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

package mountopts

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/canonical/mediad/osutil/mount"
)

var (
	ErrFilesystemNotSupported = errors.New("filesystem not supported")
	ErrUnsupportedOption      = errors.New("unsupported mount option")
)

// UnsupportedOptionError names the option that made validation fail.
type UnsupportedOptionError struct {
	FSType string
	Option string
}

func (e *UnsupportedOptionError) Error() string {
	return fmt.Sprintf("mount option %q is not allowed for %s", e.Option, e.FSType)
}

func (e *UnsupportedOptionError) Is(target error) bool {
	return target == ErrUnsupportedOption
}

// Args are validated mount arguments.
type Args struct {
	FSType  string
	Options []string
}

// String returns the comma separated option list.
func (a *Args) String() string {
	return strings.Join(a.Options, ",")
}

// Flags splits the options into mount(2) flags and data.
func (a *Args) Flags() (uintptr, string) {
	return mount.OptionsToFlags(a.Options)
}

func optionKey(option string) string {
	if i := strings.IndexByte(option, '='); i >= 0 {
		return option[:i]
	}
	return option
}

// Validate checks the comma separated optionList of a client wanting to
// mount a filesystem of type fstype as uid/gid.
//
// Either every option is allowed and the full argument list is returned,
// or nothing is: the error is ErrFilesystemNotSupported or an
// *UnsupportedOptionError. The result holds the client options in
// order, followed by the defaults the client did not override, followed
// by the uid and gid options if the filesystem has them.
func (p *Policy) Validate(fstype, optionList string, uid, gid uint32) (*Args, error) {
	spec, ok := p.specs[fstype]
	if !ok {
		return nil, fmt.Errorf("cannot mount %q: %w", fstype, ErrFilesystemNotSupported)
	}

	var options []string
	seen := make(map[string]bool)
	for _, option := range strings.Split(optionList, ",") {
		if option == "" {
			continue
		}
		switch {
		case spec.UIDOption != "" && strings.HasPrefix(option, spec.UIDOption):
			// synthesized below
			continue
		case spec.GIDOption != "" && strings.HasPrefix(option, spec.GIDOption):
			continue
		case p.IsOptionAllowed(fstype, option):
			options = append(options, option)
			seen[optionKey(option)] = true
		default:
			return nil, &UnsupportedOptionError{FSType: fstype, Option: option}
		}
	}

	for _, d := range spec.Defaults {
		if !seen[d.Key] {
			options = append(options, d.String())
		}
	}
	if spec.UIDOption != "" {
		options = append(options, spec.UIDOption+strconv.FormatUint(uint64(uid), 10))
	}
	if spec.GIDOption != "" {
		options = append(options, spec.GIDOption+strconv.FormatUint(uint64(gid), 10))
	}

	return &Args{FSType: fstype, Options: options}, nil
}
