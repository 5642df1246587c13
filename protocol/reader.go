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

package protocol

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// MaxLineLength is the longest line, terminator included, that a Reader
// accepts.
const MaxLineLength = 64 * 1024

// Reader reads commands from a byte stream, one line at a time.
type Reader struct {
	r *bufio.Reader
}

// NewReader returns a Reader buffering the given stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, MaxLineLength)}
}

// ReadCommand blocks until a full line is available and decodes it.
//
// A malformed line yields a *ParseError; the line is consumed and the
// reader can be used again. io.EOF is returned on a clean end of stream,
// io.ErrUnexpectedEOF if the stream ends in the middle of a line.
func (r *Reader) ReadCommand() (*Command, error) {
	line, err := r.r.ReadSlice('\n')
	switch {
	case errors.Is(err, bufio.ErrBufferFull):
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = r.r.ReadSlice('\n')
		}
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		if err != nil {
			return nil, err
		}
		return nil, parseError(ErrLineTooLong, MaxLineLength)
	case err == io.EOF:
		if len(line) == 0 {
			return nil, io.EOF
		}
		return nil, io.ErrUnexpectedEOF
	case err != nil:
		return nil, err
	}
	return Decode(line)
}

// Writer writes whole commands to a stream. It is safe for concurrent
// use; lines are never interleaved.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteCommand encodes cmd and writes it in a single call.
func (w *Writer) WriteCommand(cmd *Command) error {
	buf, err := Encode(cmd)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = w.w.Write(buf)
	return err
}
