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

package devicetree_test

import (
	. "gopkg.in/check.v1"

	"github.com/canonical/mediad/devicetree"
	"github.com/canonical/mediad/protocol"
)

type recordSuite struct{}

var _ = Suite(&recordSuite{})

func (s *recordSuite) TestEnums(c *C) {
	for _, k := range []devicetree.Kind{
		devicetree.KindUnknownOrPersistent, devicetree.KindPartition,
		devicetree.KindStatefulDevice, devicetree.KindStatelessDevice,
	} {
		back, err := devicetree.ParseKind(k.String())
		c.Assert(err, IsNil)
		c.Check(back, Equals, k)
	}
	for _, st := range []devicetree.Subtype{
		devicetree.SubtypeUnknown, devicetree.SubtypeUSB, devicetree.SubtypeFlashCard,
		devicetree.SubtypeOptical, devicetree.SubtypeFloppy,
	} {
		back, err := devicetree.ParseSubtype(st.String())
		c.Assert(err, IsNil)
		c.Check(back, Equals, st)
	}
	for _, st := range []devicetree.State{devicetree.StateUnknown, devicetree.StateOK, devicetree.StateUnavailable} {
		back, err := devicetree.ParseState(st.String())
		c.Assert(err, IsNil)
		c.Check(back, Equals, st)
	}

	c.Check(devicetree.KindPartition.String(), Equals, "partition")
	c.Check(devicetree.SubtypeFlashCard.String(), Equals, "flash_card")
	c.Check(devicetree.StateUnavailable.String(), Equals, "unavailable")
	c.Check(devicetree.Kind(42).String(), Equals, "Kind(42)")

	_, err := devicetree.ParseKind("Partition")
	c.Check(err, ErrorMatches, `invalid device kind "Partition"`)
}

func (s *recordSuite) TestRecordRoundTrip(c *C) {
	d := &devicetree.Device{
		Path:         "/dev/sdb1",
		ParentPath:   "/dev/sdb",
		Kind:         devicetree.KindPartition,
		Subtype:      devicetree.SubtypeUSB,
		State:        devicetree.StateOK,
		Label:        "My \"Stick\"\n",
		FSType:       "vfat",
		MountPoint:   "/media/My_Stick",
		MountOptions: "ro,uid=1000",
	}
	rec := d.Record()
	c.Check(rec.Args, DeepEquals, []string{
		"/dev/sdb", "/dev/sdb1", "partition", "usb", "ok", `My \"Stick\"\n`, "vfat", "/media/My_Stick", "ro,uid=1000",
	})
	_, err := protocol.Encode(rec)
	c.Assert(err, IsNil)

	back, err := devicetree.DeviceFromRecord(rec)
	c.Assert(err, IsNil)
	c.Check(back, DeepEquals, d)
}

func (s *recordSuite) TestRecordEscapesMountFields(c *C) {
	d := &devicetree.Device{
		Path:         "/dev/sdb1",
		ParentPath:   "/dev/sdb",
		Kind:         devicetree.KindPartition,
		State:        devicetree.StateOK,
		FSType:       "vfat",
		MountPoint:   `/media/MY "STICK" \ 1`,
		MountOptions: `ro,uid=1000`,
	}
	rec := d.Record()
	c.Check(rec.Arg(7), Equals, `/media/MY \"STICK\" \\ 1`)
	buf, err := protocol.Encode(rec)
	c.Assert(err, IsNil)

	decoded, err := protocol.Decode(buf)
	c.Assert(err, IsNil)
	back, err := devicetree.DeviceFromRecord(decoded)
	c.Assert(err, IsNil)
	c.Check(back, DeepEquals, d)

	_, err = devicetree.DeviceFromRecord(protocol.New(protocol.ReplyDevice, "/", "/dev/sdb", "partition", "usb", "ok", "", "", `/media/x\`, ""))
	c.Check(err, ErrorMatches, `cannot use device record for "/dev/sdb": invalid mount point .*`)
}

func (s *recordSuite) TestRecordRoot(c *C) {
	d := &devicetree.Device{Path: "/dev/sr0", Kind: devicetree.KindStatefulDevice, Subtype: devicetree.SubtypeOptical}
	rec := d.Record()
	c.Check(rec.Arg(0), Equals, protocol.RootPath)

	back, err := devicetree.DeviceFromRecord(rec)
	c.Assert(err, IsNil)
	c.Check(back.IsRoot(), Equals, true)
	c.Check(back.ParentPath, Equals, "")
}

func (s *recordSuite) TestDeviceFromRecordErrors(c *C) {
	_, err := devicetree.DeviceFromRecord(protocol.OK())
	c.Check(err, ErrorMatches, `cannot use "ok" as a device record`)

	_, err = devicetree.DeviceFromRecord(protocol.New(protocol.ReplyDevice, "/"))
	c.Check(err, ErrorMatches, `cannot use device record: command "removable_device" takes 9 arguments, got 1`)

	_, err = devicetree.DeviceFromRecord(protocol.New(protocol.ReplyDevice, "/", "", "partition", "usb", "ok", "", "", "", ""))
	c.Check(err, ErrorMatches, `cannot use device record without a path`)

	_, err = devicetree.DeviceFromRecord(protocol.New(protocol.ReplyDevice, "/", "/dev/sdb", "partition", "usb", "meh", "", "", "", ""))
	c.Check(err, ErrorMatches, `cannot use device record for "/dev/sdb": invalid device state "meh"`)
}

func (s *recordSuite) TestDeviceFromRecordClearsOptionsWhenUnmounted(c *C) {
	d, err := devicetree.DeviceFromRecord(protocol.New(protocol.ReplyDevice, "/", "/dev/sdb", "partition", "usb", "ok", "", "", "", "ro"))
	c.Assert(err, IsNil)
	c.Check(d.MountOptions, Equals, "")
}

func (s *recordSuite) TestLabelsAreDecoded(c *C) {
	d, err := devicetree.DeviceFromRecord(protocol.New(protocol.ReplyDevice, "/", "/dev/sdb", "partition", "usb", "ok", `BIOS\x20Boot`, "vfat", "", ""))
	c.Assert(err, IsNil)
	c.Check(d.Label, Equals, "BIOS Boot")
	c.Check(d.DisplayName(), Equals, "BIOS Boot")

	d.Label = ""
	c.Check(d.DisplayName(), Equals, "/dev/sdb")
}
