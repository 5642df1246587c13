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

package testutil

import (
	"os"
	"strconv"
	"time"
)

// TimeoutScaleEnv names the variable a slow builder (a loaded CI runner,
// an emulated architecture, a -race build) uses to stretch the timeouts
// of the tests.
const TimeoutScaleEnv = "MEDIAD_TEST_TIMEOUT_SCALE"

// HostScaledTimeout multiplies t by the integer factor found in
// MEDIAD_TEST_TIMEOUT_SCALE. Unset, unparsable or non positive factors
// leave t alone.
func HostScaledTimeout(t time.Duration) time.Duration {
	factor, err := strconv.Atoi(os.Getenv(TimeoutScaleEnv))
	if err != nil || factor < 1 {
		return t
	}
	return t * time.Duration(factor)
}
