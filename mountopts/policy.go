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

// Package mountopts decides which mount options an unprivileged client
// may pass for a given filesystem type.
//
// Validation fails closed: an unknown filesystem type or a single
// unknown option rejects the whole request. The uid and gid options are
// never taken from the client; they are synthesized from the identity of
// the caller.
package mountopts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/canonical/mediad/strutil"
)

// Rule allows one mount option. A rule that takes a value matches any
// option starting with Prefix (which should end in "="); otherwise the
// option must be equal to Prefix.
type Rule struct {
	Prefix     string
	TakesValue bool
}

func (r Rule) matches(option string) bool {
	if r.TakesValue {
		return strings.HasPrefix(option, r.Prefix) && len(option) > len(r.Prefix)
	}
	return option == r.Prefix
}

func flag(name string) Rule {
	return Rule{Prefix: name}
}

func value(prefix string) Rule {
	return Rule{Prefix: prefix, TakesValue: true}
}

// Default is an option added to every mount of a filesystem type unless
// the client already specified an option with the same key.
type Default struct {
	Key   string
	Value string
}

func (d Default) String() string {
	if d.Value == "" {
		return d.Key
	}
	return d.Key + "=" + d.Value
}

// FSSpec describes what is allowed for one filesystem type.
type FSSpec struct {
	FSType  string
	Allowed []Rule
	// UIDOption and GIDOption are the option prefixes (e.g. "uid=") used
	// to mount as the caller. Empty if the filesystem has no such option.
	UIDOption string
	GIDOption string
	Defaults  []Default
}

// globalRules apply to every filesystem type.
var globalRules = []Rule{
	flag("exec"),
	flag("noexec"),
	flag("nodev"),
	flag("nosuid"),
	flag("atime"),
	flag("noatime"),
	flag("nodiratime"),
	flag("ro"),
	flag("rw"),
	flag("sync"),
	flag("dirsync"),
}

var builtinSpecs = []FSSpec{{
	FSType: "vfat",
	Allowed: []Rule{
		flag("flush"), flag("utf8"), value("utf8="), value("shortname="),
		value("umask="), value("dmask="), value("fmask="), value("codepage="),
		value("iocharset="), flag("usefree"), flag("showexec"), flag("quiet"),
	},
	UIDOption: "uid=",
	GIDOption: "gid=",
	Defaults:  []Default{{"shortname", "mixed"}, {"dmask", "0077"}, {"utf8", "1"}},
}, {
	FSType: "exfat",
	Allowed: []Rule{
		value("umask="), value("dmask="), value("fmask="), value("iocharset="),
		flag("namecase=0"), flag("namecase=1"),
	},
	UIDOption: "uid=",
	GIDOption: "gid=",
	Defaults:  []Default{{"dmask", "0077"}, {"iocharset", "utf8"}},
}, {
	FSType:    "ntfs",
	Allowed:   ntfsRules,
	UIDOption: "uid=",
	GIDOption: "gid=",
	Defaults:  []Default{{"dmask", "0077"}, {"fmask", "0177"}},
}, {
	FSType:    "ntfs-3g",
	Allowed:   ntfsRules,
	UIDOption: "uid=",
	GIDOption: "gid=",
	Defaults:  []Default{{"dmask", "0077"}, {"fmask", "0177"}},
}, {
	FSType:    "ntfs3",
	Allowed:   append([]Rule{flag("prealloc"), flag("sparse")}, ntfsRules...),
	UIDOption: "uid=",
	GIDOption: "gid=",
	Defaults:  []Default{{"dmask", "0077"}, {"fmask", "0177"}},
}, {
	FSType: "iso9660",
	Allowed: []Rule{
		flag("norock"), flag("nojoliet"), value("iocharset="), value("mode="),
		value("dmode="), flag("unhide"), flag("utf8"),
	},
	UIDOption: "uid=",
	GIDOption: "gid=",
	Defaults:  []Default{{"iocharset", "utf8"}, {"mode", "0400"}, {"dmode", "0500"}},
}, {
	FSType: "udf",
	Allowed: []Rule{
		value("iocharset="), value("umask="), value("mode="), value("dmode="),
		flag("undelete"), flag("unhide"), flag("utf8"),
	},
	UIDOption: "uid=",
	GIDOption: "gid=",
	Defaults:  []Default{{"iocharset", "utf8"}, {"umask", "0077"}},
}, {
	FSType: "hfsplus",
	Allowed: []Rule{
		value("creator="), value("type="), value("umask="), flag("force"),
		flag("nodecompose"), flag("decompose"),
	},
	UIDOption: "uid=",
	GIDOption: "gid=",
}, {
	FSType:  "ext2",
	Allowed: extRules,
}, {
	FSType:  "ext3",
	Allowed: extRules,
}, {
	FSType:  "ext4",
	Allowed: extRules,
}, {
	FSType:  "btrfs",
	Allowed: []Rule{value("compress="), flag("nodatacow"), value("subvol=")},
}, {
	FSType:  "xfs",
	Allowed: []Rule{flag("nouuid"), flag("norecovery")},
}, {
	FSType:  "f2fs",
	Allowed: []Rule{flag("discard"), flag("nodiscard")},
}}

var ntfsRules = []Rule{
	value("umask="), value("dmask="), value("fmask="), value("iocharset="),
	flag("windows_names"), flag("hide_dot_files"),
}

var extRules = []Rule{
	flag("acl"), flag("noacl"), flag("user_xattr"), flag("nouser_xattr"),
	value("errors="), flag("discard"), flag("nodiscard"),
}

// Policy is an immutable table of FSSpecs. It is safe for concurrent
// use.
type Policy struct {
	specs map[string]*FSSpec
}

var defaultPolicy = mustPolicy(builtinSpecs)

func mustPolicy(specs []FSSpec) *Policy {
	p, err := NewPolicy(specs)
	if err != nil {
		panic(err)
	}
	return p
}

// DefaultPolicy returns the built-in policy.
func DefaultPolicy() *Policy {
	return defaultPolicy
}

// NewPolicy builds a policy from the given specs. Every filesystem type
// may be described only once.
func NewPolicy(specs []FSSpec) (*Policy, error) {
	p := &Policy{specs: make(map[string]*FSSpec, len(specs))}
	for i := range specs {
		spec := specs[i]
		if spec.FSType == "" {
			return nil, fmt.Errorf("cannot use mount option spec without a filesystem type")
		}
		if _, ok := p.specs[spec.FSType]; ok {
			return nil, fmt.Errorf("cannot use duplicate mount option spec for %q", spec.FSType)
		}
		for _, r := range spec.Allowed {
			if r.TakesValue && !strings.HasSuffix(r.Prefix, "=") {
				return nil, fmt.Errorf("cannot use value rule %q for %q: prefix must end in \"=\"", r.Prefix, spec.FSType)
			}
		}
		spec.Allowed = append([]Rule(nil), spec.Allowed...)
		spec.Defaults = append([]Default(nil), spec.Defaults...)
		p.specs[spec.FSType] = &spec
	}
	return p, nil
}

// Without returns a copy of the policy not supporting the given
// filesystem types.
func (p *Policy) Without(fstypes ...string) (*Policy, error) {
	var unknown []string
	for _, fstype := range fstypes {
		if _, ok := p.specs[fstype]; !ok {
			unknown = append(unknown, fstype)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("cannot disable unknown filesystem types %s", strutil.Quoted(unknown))
	}
	np := &Policy{specs: make(map[string]*FSSpec, len(p.specs))}
	for fstype, spec := range p.specs {
		if !strutil.ListContains(fstypes, fstype) {
			np.specs[fstype] = spec
		}
	}
	return np, nil
}

// FSTypes returns the sorted list of supported filesystem types.
func (p *Policy) FSTypes() []string {
	fstypes := make([]string, 0, len(p.specs))
	for fstype := range p.specs {
		fstypes = append(fstypes, fstype)
	}
	sort.Strings(fstypes)
	return fstypes
}

// Spec returns a copy of the spec for fstype.
func (p *Policy) Spec(fstype string) (FSSpec, bool) {
	spec, ok := p.specs[fstype]
	if !ok {
		return FSSpec{}, false
	}
	cp := *spec
	cp.Allowed = append([]Rule(nil), spec.Allowed...)
	cp.Defaults = append([]Default(nil), spec.Defaults...)
	return cp, true
}

// IsSupported returns whether the filesystem type can be mounted at all.
func (p *Policy) IsSupported(fstype string) bool {
	_, ok := p.specs[fstype]
	return ok
}

// IsOptionAllowed returns whether a client may pass option for the
// filesystem type. Unknown filesystem types only get the global rules.
// uid= and gid= options are never allowed as such, see Validate.
func (p *Policy) IsOptionAllowed(fstype, option string) bool {
	for _, r := range globalRules {
		if r.matches(option) {
			return true
		}
	}
	spec, ok := p.specs[fstype]
	if !ok {
		return false
	}
	for _, r := range spec.Allowed {
		if r.matches(option) {
			return true
		}
	}
	return false
}
