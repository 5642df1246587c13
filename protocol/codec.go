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
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCommandName    = errors.New("invalid command name")
	ErrUnterminatedArgument  = errors.New("unterminated argument")
	ErrMalformedArgumentList = errors.New("malformed argument list")
	ErrUnterminatedCommand   = errors.New("unterminated command")
	ErrLineTooLong           = errors.New("line too long")

	// ErrInvalidArgument is returned by Encode for commands that could
	// not be read back unchanged.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ParseError describes why a line could not be decoded. Err is one of the
// ErrInvalidCommandName, ErrUnterminatedArgument, ErrMalformedArgumentList,
// ErrUnterminatedCommand or ErrLineTooLong sentinels.
type ParseError struct {
	Err    error
	Offset int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse command: %v at offset %d", e.Err, e.Offset)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError returns whether err was caused by malformed input, as
// opposed to a transport failure.
func IsParseError(err error) bool {
	var perr *ParseError
	return errors.As(err, &perr)
}

func isNameByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isNameByte(name[i]) {
			return false
		}
	}
	return true
}

// validArg reports whether arg survives a trip through the decoder: no
// newline, no unescaped quote and no backslash without a following byte.
func validArg(arg string) bool {
	for i := 0; i < len(arg); i++ {
		switch arg[i] {
		case '\n', '"':
			return false
		case '\\':
			if i+1 >= len(arg) || arg[i+1] == '\n' {
				return false
			}
			i++
		}
	}
	return true
}

func parseError(err error, offset int) error {
	return &ParseError{Err: err, Offset: offset}
}

// Decode parses exactly one command line, including its trailing newline.
func Decode(line []byte) (*Command, error) {
	pos := 0
	for pos < len(line) && isNameByte(line[pos]) {
		pos++
	}
	if pos == len(line) && pos > 0 {
		return nil, parseError(ErrUnterminatedCommand, pos)
	}
	if pos == 0 || line[pos] != '(' {
		return nil, parseError(ErrInvalidCommandName, pos)
	}
	cmd := &Command{Name: string(line[:pos])}
	pos++

	if pos < len(line) && line[pos] == ')' {
		pos++
		return finish(cmd, line, pos)
	}

	for {
		if pos >= len(line) || line[pos] == '\n' {
			return nil, parseError(ErrUnterminatedCommand, pos)
		}
		if line[pos] != '"' {
			return nil, parseError(ErrMalformedArgumentList, pos)
		}
		pos++

		start := pos
	arg:
		for {
			if pos >= len(line) {
				return nil, parseError(ErrUnterminatedArgument, pos)
			}
			switch line[pos] {
			case '\n':
				return nil, parseError(ErrUnterminatedArgument, pos)
			case '\\':
				if pos+1 >= len(line) || line[pos+1] == '\n' {
					return nil, parseError(ErrUnterminatedArgument, pos+1)
				}
				pos += 2
			case '"':
				break arg
			default:
				pos++
			}
		}
		cmd.Args = append(cmd.Args, string(line[start:pos]))
		pos++

		if pos >= len(line) {
			return nil, parseError(ErrUnterminatedCommand, pos)
		}
		switch line[pos] {
		case ')':
			pos++
			return finish(cmd, line, pos)
		case '\n':
			return nil, parseError(ErrUnterminatedCommand, pos)
		case ',':
			if pos+1 >= len(line) {
				return nil, parseError(ErrUnterminatedCommand, pos+1)
			}
			if line[pos+1] != ' ' {
				return nil, parseError(ErrMalformedArgumentList, pos+1)
			}
			pos += 2
		default:
			return nil, parseError(ErrMalformedArgumentList, pos)
		}
	}
}

// finish checks that the closing parenthesis is followed by exactly one
// line terminator.
func finish(cmd *Command, line []byte, pos int) (*Command, error) {
	if pos >= len(line) || line[pos] != '\n' {
		return nil, parseError(ErrUnterminatedCommand, pos)
	}
	if pos+1 != len(line) {
		return nil, parseError(ErrUnterminatedCommand, pos+1)
	}
	return cmd, nil
}

// Encode returns the wire form of cmd, including the line terminator.
func Encode(cmd *Command) ([]byte, error) {
	if !validName(cmd.Name) {
		return nil, fmt.Errorf("cannot encode command %q: %w", cmd.Name, ErrInvalidArgument)
	}
	for i, arg := range cmd.Args {
		if !validArg(arg) {
			return nil, fmt.Errorf("cannot encode argument %d of command %q: %w", i, cmd.Name, ErrInvalidArgument)
		}
	}
	var b strings.Builder
	writeCommand(&b, cmd)
	b.WriteByte('\n')
	return []byte(b.String()), nil
}
