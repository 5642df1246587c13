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

package mountopts_test

import (
	"syscall"

	. "gopkg.in/check.v1"

	"github.com/canonical/mediad/mountopts"
	"github.com/canonical/mediad/testutil"
)

type validateSuite struct {
	policy *mountopts.Policy
}

var _ = Suite(&validateSuite{})

func (s *validateSuite) SetUpTest(c *C) {
	s.policy = mountopts.DefaultPolicy()
}

func (s *validateSuite) TestValidateVfat(c *C) {
	args, err := s.policy.Validate("vfat", "ro,dmask=0022", 1000, 1000)
	c.Assert(err, IsNil)
	c.Check(args.FSType, Equals, "vfat")
	c.Check(args.String(), Equals, "ro,dmask=0022,shortname=mixed,utf8=1,uid=1000,gid=1000")
}

func (s *validateSuite) TestValidateSynthesizesUIDGID(c *C) {
	args, err := s.policy.Validate("vfat", "uid=0,gid=0", 1000, 1001)
	c.Assert(err, IsNil)
	c.Check(args.Options, DeepEquals, []string{
		"shortname=mixed", "dmask=0077", "utf8=1", "uid=1000", "gid=1001",
	})

	args, err = s.policy.Validate("vfat", "uid=1000", 1000, 1000)
	c.Assert(err, IsNil)
	c.Check(args.String(), Equals, "shortname=mixed,dmask=0077,utf8=1,uid=1000,gid=1000")
}

func (s *validateSuite) TestValidateNoUIDOption(c *C) {
	args, err := s.policy.Validate("ext4", "noatime", 1000, 1000)
	c.Assert(err, IsNil)
	c.Check(args.Options, DeepEquals, []string{"noatime"})

	_, err = s.policy.Validate("ext4", "uid=1000", 1000, 1000)
	c.Check(err, testutil.ErrorIs, mountopts.ErrUnsupportedOption)
	c.Check(err, ErrorMatches, `mount option "uid=1000" is not allowed for ext4`)
}

func (s *validateSuite) TestValidateDefaultsOverridden(c *C) {
	args, err := s.policy.Validate("vfat", "shortname=lower,utf8", 0, 0)
	c.Assert(err, IsNil)
	c.Check(args.Options, DeepEquals, []string{"shortname=lower", "utf8", "dmask=0077", "uid=0", "gid=0"})
}

func (s *validateSuite) TestValidateEmptyTokens(c *C) {
	args, err := s.policy.Validate("iso9660", ",,ro,", 5, 6)
	c.Assert(err, IsNil)
	c.Check(args.Options, DeepEquals, []string{"ro", "iocharset=utf8", "mode=0400", "dmode=0500", "uid=5", "gid=6"})

	args, err = s.policy.Validate("udf", "", 5, 6)
	c.Assert(err, IsNil)
	c.Check(args.String(), Equals, "iocharset=utf8,umask=0077,uid=5,gid=6")
}

func (s *validateSuite) TestValidateAllOrNothing(c *C) {
	for _, opts := range []string{
		"ro,exec=1",
		"ro,suid",
		"dev,ro",
		"ro,dmask=0022,context=system_u",
		"dmask=",
	} {
		args, err := s.policy.Validate("vfat", opts, 1000, 1000)
		c.Check(args, IsNil, Commentf(opts))
		c.Check(err, testutil.ErrorIs, mountopts.ErrUnsupportedOption, Commentf(opts))
	}

	_, err := s.policy.Validate("vfat", "ro,exec=1,suid", 1000, 1000)
	uerr, ok := err.(*mountopts.UnsupportedOptionError)
	c.Assert(ok, Equals, true)
	c.Check(uerr.Option, Equals, "exec=1")
	c.Check(uerr.FSType, Equals, "vfat")
}

func (s *validateSuite) TestValidateUnknownFilesystem(c *C) {
	for _, fstype := range []string{"", "zfs", "VFAT", "squashfs"} {
		args, err := s.policy.Validate(fstype, "ro", 1000, 1000)
		c.Check(args, IsNil)
		c.Check(err, testutil.ErrorIs, mountopts.ErrFilesystemNotSupported)
	}
}

func (s *validateSuite) TestArgsFlags(c *C) {
	args, err := s.policy.Validate("vfat", "ro,noexec", 1000, 1000)
	c.Assert(err, IsNil)
	flags, data := args.Flags()
	c.Check(flags, Equals, uintptr(syscall.MS_RDONLY|syscall.MS_NOEXEC|syscall.MS_NOSUID|syscall.MS_NODEV))
	c.Check(data, Equals, "shortname=mixed,dmask=0077,utf8=1,uid=1000,gid=1000")
}
