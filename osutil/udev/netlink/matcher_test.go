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

package netlink

import (
	. "gopkg.in/check.v1"
)

type matcherSuite struct{}

var _ = Suite(&matcherSuite{})

var hidraw = UEvent{
	Action: ADD,
	KObj:   "/devices/pci0000:00/0000:00:14.0/usb2/2-1/2-1:1.2/0003:04F2:0976.0008/hidraw/hidraw4",
	Env: map[string]string{
		"ACTION":    "add",
		"DEVPATH":   "/devices/pci0000:00/0000:00:14.0/usb2/2-1/2-1:1.2/0003:04F2:0976.0008/hidraw/hidraw4",
		"SUBSYSTEM": "hidraw",
		"MAJOR":     "247",
		"MINOR":     "4",
		"DEVNAME":   "hidraw4",
		"SEQNUM":    "2569",
	},
}

func (s *matcherSuite) TestRules(c *C) {
	add := ADD.String()
	wrongAction := "can't match"

	rules := []RuleDefinition{
		{Env: map[string]string{"DEVNAME": `hidraw\d+`}},
		{Action: &add, Env: map[string]string{}},
		{Env: map[string]string{"SUBSYSTEM": "can't match", "MAJOR": "247"}},
		{Action: &add, Env: map[string]string{"SUBSYSTEM": "hidraw", "MAJOR": `\d+`}},
		{Action: &wrongAction, Env: map[string]string{"SUBSYSTEM": "hidraw", "MAJOR": `\d+`}},
		// matches are anchored
		{Env: map[string]string{"SUBSYSTEM": "hid"}},
		// missing keys do not match
		{Env: map[string]string{"ID_FS_TYPE": ".*"}},
	}

	for i, t := range []struct {
		matcher Matcher
		valid   bool
	}{
		{&rules[0], true},
		{&rules[1], true},
		{&rules[2], false},
		{&rules[3], true},
		{&rules[4], false},
		{&rules[5], false},
		{&rules[6], false},
		{&RuleDefinitions{[]RuleDefinition{rules[0], rules[4]}}, true},
		{&RuleDefinitions{[]RuleDefinition{rules[4], rules[0]}}, true},
		{&RuleDefinitions{[]RuleDefinition{rules[2], rules[4]}}, false},
		{&RuleDefinitions{[]RuleDefinition{rules[3], rules[1]}}, true},
		{&RuleDefinitions{}, false},
	} {
		c.Assert(t.matcher.Compile(), IsNil, Commentf("testcase %d", i))
		c.Check(t.matcher.Evaluate(hidraw), Equals, t.valid, Commentf("testcase %d", i))
	}
}

func (s *matcherSuite) TestCompileErrors(c *C) {
	bad := "("
	r := &RuleDefinition{Action: &bad}
	c.Check(r.Compile(), ErrorMatches, `cannot compile action rule "\(": .*`)

	r = &RuleDefinition{Env: map[string]string{"DEVNAME": "[a-"}}
	c.Check(r.Compile(), ErrorMatches, `cannot compile rule for DEVNAME: .*`)

	rs := &RuleDefinitions{[]RuleDefinition{{}, *r}}
	c.Check(rs.Compile(), NotNil)
}
