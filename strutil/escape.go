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

package strutil

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrTruncatedEscape is returned when a string ends in a lone backslash.
var ErrTruncatedEscape = errors.New("truncated escape sequence")

var namedEscapes = map[byte]byte{
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
}

var escapeNames = map[byte]byte{
	'\a': 'a',
	'\b': 'b',
	'\f': 'f',
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
}

func isOctal(b byte) bool {
	return b >= '0' && b <= '7'
}

func hexValue(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

// UnescapeLabel decodes the C style escapes found in device labels, as
// sent by udev in ID_FS_LABEL_ENC and by mediad on the wire.
//
// Recognized are the named escapes \a \b \f \n \r \t \\ \' \", exactly
// three octal digits (\ooo, masked to a byte) and exactly two hex digits
// (\xHH). A backslash followed by anything else is kept as is, so
// unknown escapes survive. Only a trailing lone backslash is an error.
func UnescapeLabel(s string) (string, error) {
	if strings.IndexByte(s, '\\') < 0 {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 >= len(s) {
			return "", ErrTruncatedEscape
		}
		next := s[i+1]
		if c, ok := namedEscapes[next]; ok {
			b.WriteByte(c)
			i++
			continue
		}
		if isOctal(next) && i+3 < len(s) && isOctal(s[i+2]) && isOctal(s[i+3]) {
			v := (uint(next-'0')<<6 | uint(s[i+2]-'0')<<3 | uint(s[i+3]-'0')) & 0xff
			b.WriteByte(byte(v))
			i += 3
			continue
		}
		if next == 'x' && i+3 < len(s) {
			hi, ok1 := hexValue(s[i+2])
			lo, ok2 := hexValue(s[i+3])
			if ok1 && ok2 {
				b.WriteByte(hi<<4 | lo)
				i += 3
				continue
			}
		}
		// unknown escape, pass it through
		b.WriteByte('\\')
		b.WriteByte(next)
		i++
	}
	return b.String(), nil
}

// EscapeLabel is the inverse of UnescapeLabel. Valid UTF-8 is kept,
// quotes, backslashes and the common control characters use the named
// escapes, and other control bytes or bytes that are not valid UTF-8 are
// written as \xHH. The result never contains a quote or a newline.
func EscapeLabel(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if name, ok := escapeNames[c]; ok {
			b.WriteByte('\\')
			b.WriteByte(name)
			i++
			continue
		}
		if c < 0x20 || c == 0x7f {
			fmt.Fprintf(&b, `\x%02x`, c)
			i++
			continue
		}
		if c < utf8.RuneSelf {
			b.WriteByte(c)
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			fmt.Fprintf(&b, `\x%02x`, c)
			i++
			continue
		}
		b.WriteString(s[i : i+size])
		i += size
	}
	return b.String()
}
