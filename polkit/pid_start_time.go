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

package polkit

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/canonical/mediad/dirs"
)

// getStartTimeForPid returns the start time of the process, in clock
// ticks since boot, as found in field 22 of /proc/<pid>/stat.
func getStartTimeForPid(pid int32) (uint64, error) {
	data, err := os.ReadFile(filepath.Join(dirs.ProcDir, strconv.Itoa(int(pid)), "stat"))
	if err != nil {
		return 0, err
	}
	// the command name is in parens and may contain anything, skip it
	stat := string(data)
	idx := strings.LastIndexByte(stat, ')')
	if idx < 0 {
		return 0, fmt.Errorf("cannot parse stat of pid %d", pid)
	}
	// the fields after the name start at field 3
	fields := strings.Fields(stat[idx+1:])
	if len(fields) < 20 {
		return 0, fmt.Errorf("cannot parse stat of pid %d: too few fields", pid)
	}
	startTime, err := strconv.ParseUint(fields[19], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse start time of pid %d: %v", pid, err)
	}
	return startTime, nil
}
