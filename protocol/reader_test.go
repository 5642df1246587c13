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

package protocol_test

import (
	"bytes"
	"io"
	"strings"
	"sync"

	. "gopkg.in/check.v1"

	"github.com/canonical/mediad/protocol"
	"github.com/canonical/mediad/testutil"
)

type readerSuite struct{}

var _ = Suite(&readerSuite{})

// oneByteReader hands out its input a byte at a time, so that lines
// always span several reads.
type oneByteReader struct {
	data []byte
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	p[0] = r.data[0]
	r.data = r.data[1:]
	return 1, nil
}

func (s *readerSuite) TestReadCommands(c *C) {
	input := "ok()\n" + `mount("/dev/sdb", "ro")` + "\n"
	r := protocol.NewReader(&oneByteReader{data: []byte(input)})

	cmd, err := r.ReadCommand()
	c.Assert(err, IsNil)
	c.Check(cmd, DeepEquals, protocol.OK())

	cmd, err = r.ReadCommand()
	c.Assert(err, IsNil)
	c.Check(cmd, DeepEquals, protocol.MountRequest("/dev/sdb", "ro"))

	_, err = r.ReadCommand()
	c.Check(err, Equals, io.EOF)
}

func (s *readerSuite) TestReadSurvivesBadLines(c *C) {
	input := "bad name()\n" + "ok()\n"
	r := protocol.NewReader(strings.NewReader(input))

	_, err := r.ReadCommand()
	c.Check(err, testutil.ErrorIs, protocol.ErrInvalidCommandName)
	c.Check(protocol.IsParseError(err), Equals, true)

	cmd, err := r.ReadCommand()
	c.Assert(err, IsNil)
	c.Check(cmd.Name, Equals, "ok")
}

func (s *readerSuite) TestReadPartialLine(c *C) {
	r := protocol.NewReader(strings.NewReader("ok()\nok("))

	_, err := r.ReadCommand()
	c.Assert(err, IsNil)
	_, err = r.ReadCommand()
	c.Check(err, Equals, io.ErrUnexpectedEOF)
}

func (s *readerSuite) TestReadLineTooLong(c *C) {
	long := "x(\"" + strings.Repeat("a", protocol.MaxLineLength) + "\")\n"
	r := protocol.NewReader(strings.NewReader(long + "ok()\n"))

	_, err := r.ReadCommand()
	c.Check(err, testutil.ErrorIs, protocol.ErrLineTooLong)

	cmd, err := r.ReadCommand()
	c.Assert(err, IsNil)
	c.Check(cmd.Name, Equals, "ok")
}

func (s *readerSuite) TestWriter(c *C) {
	var buf bytes.Buffer
	w := protocol.NewWriter(&buf)

	c.Assert(w.WriteCommand(protocol.UnmountRequest("/dev/sdb1")), IsNil)
	c.Check(buf.String(), Equals, `unmount("/dev/sdb1")`+"\n")

	err := w.WriteCommand(protocol.New("x", "a\nb"))
	c.Check(err, testutil.ErrorIs, protocol.ErrInvalidArgument)
	c.Check(buf.String(), Equals, `unmount("/dev/sdb1")`+"\n")
}

func (s *readerSuite) TestWriterConcurrent(c *C) {
	var buf bytes.Buffer
	w := protocol.NewWriter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.WriteCommand(protocol.Removed("/dev/sdb1"))
		}()
	}
	wg.Wait()

	r := protocol.NewReader(&buf)
	for i := 0; i < 20; i++ {
		cmd, err := r.ReadCommand()
		c.Assert(err, IsNil)
		c.Check(cmd, DeepEquals, protocol.Removed("/dev/sdb1"))
	}
}
