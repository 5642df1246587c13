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

package osutil

import (
	"os"
	"strconv"
)

func envDefault[T any](dflt []T) (d T) {
	if len(dflt) > 0 {
		d = dflt[0]
	}
	return d
}

// GetenvBool reports whether key is set to a true value ("1", "true",
// ...). A missing or unparsable value gives the optional default, or
// false.
func GetenvBool(key string, dflt ...bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return envDefault(dflt)
	}
	return b
}

// GetenvInt64 interprets the value of the given environment variable as
// an int64. Missing or unparsable values yield the optional default, or
// zero.
func GetenvInt64(key string, dflt ...int64) int64 {
	n, err := strconv.ParseInt(os.Getenv(key), 0, 64)
	if err != nil {
		return envDefault(dflt)
	}
	return n
}
