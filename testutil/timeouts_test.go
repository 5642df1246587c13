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
	"time"

	"gopkg.in/check.v1"
)

type timeoutsSuite struct{}

var _ = check.Suite(&timeoutsSuite{})

func (s *timeoutsSuite) TestHostScaledTimeout(c *check.C) {
	old, had := os.LookupEnv(TimeoutScaleEnv)
	defer func() {
		if had {
			os.Setenv(TimeoutScaleEnv, old)
		} else {
			os.Unsetenv(TimeoutScaleEnv)
		}
	}()

	for _, t := range []struct {
		scale    string
		expected time.Duration
	}{
		{"", time.Second},
		{"1", time.Second},
		{"4", 4 * time.Second},
		{"0", time.Second},
		{"-2", time.Second},
		{"lots", time.Second},
	} {
		os.Setenv(TimeoutScaleEnv, t.scale)
		c.Check(HostScaledTimeout(time.Second), check.Equals, t.expected, check.Commentf("scale %q", t.scale))
	}
}
