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

package main

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/canonical/mediad/devicetree"
)

// writeTable aligns rows in columns by display width, labels can hold
// wide characters.
func writeTable(w io.Writer, rows [][]string) error {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if n := runewidth.StringWidth(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}
	var b strings.Builder
	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				line.WriteString(cell)
				break
			}
			line.WriteString(runewidth.FillRight(cell, widths[i]))
			line.WriteString("  ")
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func deviceType(dev *devicetree.Device) string {
	if dev.Kind == devicetree.KindPartition {
		return "partition"
	}
	return dev.Subtype.String()
}

func deviceRows(devices []*devicetree.Device) [][]string {
	rows := [][]string{{"Device", "Type", "State", "Label", "Filesystem", "Mount point"}}
	for _, dev := range devices {
		rows = append(rows, []string{
			dev.Path,
			deviceType(dev),
			dev.State.String(),
			orDash(dev.Label),
			orDash(dev.FSType),
			orDash(dev.MountPoint),
		})
	}
	return rows
}

type deviceYAML struct {
	Path         string `yaml:"path"`
	Kind         string `yaml:"kind"`
	Subtype      string `yaml:"subtype,omitempty"`
	State        string `yaml:"state"`
	Label        string `yaml:"label,omitempty"`
	FSType       string `yaml:"filesystem,omitempty"`
	MountPoint   string `yaml:"mount-point,omitempty"`
	MountOptions string `yaml:"mount-options,omitempty"`
	Parent       string `yaml:"parent,omitempty"`
}

func writeYAML(w io.Writer, devices []*devicetree.Device) error {
	out := struct {
		Devices []deviceYAML `yaml:"devices"`
	}{Devices: []deviceYAML{}}
	for _, dev := range devices {
		d := deviceYAML{
			Path:         dev.Path,
			Kind:         dev.Kind.String(),
			State:        dev.State.String(),
			Label:        dev.Label,
			FSType:       dev.FSType,
			MountPoint:   dev.MountPoint,
			MountOptions: dev.MountOptions,
			Parent:       dev.ParentPath,
		}
		if dev.Subtype != devicetree.SubtypeUnknown {
			d.Subtype = dev.Subtype.String()
		}
		out.Devices = append(out.Devices, d)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}
