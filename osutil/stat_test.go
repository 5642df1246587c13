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

package osutil_test

import (
	"net"
	"os"
	"path/filepath"

	. "gopkg.in/check.v1"

	"github.com/canonical/mediad/osutil"
)

type StatTestSuite struct{}

var _ = Suite(&StatTestSuite{})

func (ts *StatTestSuite) TestFileDoesNotExist(c *C) {
	c.Assert(osutil.FileExists("/i-do-not-exist"), Equals, false)
}

func (ts *StatTestSuite) TestFileExistsSimple(c *C) {
	fname := filepath.Join(c.MkDir(), "foo")
	c.Assert(os.WriteFile(fname, []byte(fname), 0644), IsNil)

	c.Assert(osutil.FileExists(fname), Equals, true)
}

func (ts *StatTestSuite) TestIsDirectory(c *C) {
	c.Assert(osutil.IsDirectory("/i-do-not-exist"), Equals, false)

	dname := filepath.Join(c.MkDir(), "bar")
	c.Assert(os.Mkdir(dname, 0700), IsNil)
	c.Assert(osutil.IsDirectory(dname), Equals, true)

	fname := filepath.Join(dname, "file")
	c.Assert(os.WriteFile(fname, nil, 0644), IsNil)
	c.Assert(osutil.IsDirectory(fname), Equals, false)
}

func (ts *StatTestSuite) TestIsSocket(c *C) {
	d := c.MkDir()
	c.Check(osutil.IsSocket(d), Equals, false)
	c.Check(osutil.IsSocket(filepath.Join(d, "nope")), Equals, false)

	sock := filepath.Join(d, "sock")
	l, err := net.Listen("unix", sock)
	c.Assert(err, IsNil)
	defer l.Close()
	c.Check(osutil.IsSocket(sock), Equals, true)
}
