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

// Package config reads the mediad configuration file.
package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mvo5/goconfigparser"

	"github.com/canonical/mediad/dirs"
	"github.com/canonical/mediad/mountopts"
	"github.com/canonical/mediad/osutil"
	"github.com/canonical/mediad/strutil"
)

const (
	// DefaultRequestRate is the number of requests per second a single
	// connection may make.
	DefaultRequestRate = 20
	// DefaultRequestBurst is how many requests may arrive at once.
	DefaultRequestBurst = 40
)

// Config is the daemon configuration.
type Config struct {
	// Socket is where the daemon listens when not socket activated.
	Socket string
	// MountDir is the directory mount points are created in.
	MountDir string
	// RequirePolkit makes non-root mount and unmount requests go
	// through polkit.
	RequirePolkit bool
	Debug         bool
	// RequestRate and RequestBurst limit requests per connection.
	RequestRate  float64
	RequestBurst int
	// Timeout bounds how long a reply waits for a client that is not
	// reading before the client is dropped.
	Timeout time.Duration
	// DisabledFilesystems are taken out of the mount option policy.
	DisabledFilesystems []string
	// IgnoreDevices are patterns of device paths that are never exposed.
	IgnoreDevices []string
}

// Default returns the configuration used when there is no file.
func Default() *Config {
	return &Config{
		Socket:       dirs.MediadSocket,
		MountDir:     dirs.MediaDir,
		RequestRate:  DefaultRequestRate,
		RequestBurst: DefaultRequestBurst,
		Timeout:      30 * time.Second,
	}
}

func getString(cfg *goconfigparser.ConfigParser, section, option string) (string, bool) {
	v, err := cfg.Get(section, option)
	if err != nil {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Load reads the configuration at path. A missing file gives the
// defaults.
func Load(path string) (*Config, error) {
	conf := Default()

	if !osutil.FileExists(path) {
		return conf, nil
	}
	cfg := goconfigparser.New()
	if err := cfg.ReadFile(path); err != nil {
		return nil, fmt.Errorf("cannot read configuration: %v", err)
	}

	if v, ok := getString(cfg, "daemon", "socket"); ok {
		conf.Socket = v
	}
	if v, ok := getString(cfg, "daemon", "mount-dir"); ok {
		conf.MountDir = filepath.Join(dirs.GlobalRootDir, v)
	}
	for _, b := range []struct {
		option string
		value  *bool
	}{
		{"require-polkit", &conf.RequirePolkit},
		{"debug", &conf.Debug},
	} {
		v, ok := getString(cfg, "daemon", b.option)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %s %q in %s: not a boolean", b.option, v, path)
		}
		*b.value = parsed
	}
	if v, ok := getString(cfg, "daemon", "request-rate"); ok {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil || rate <= 0 {
			return nil, fmt.Errorf("cannot parse request-rate %q in %s: not a positive number", v, path)
		}
		conf.RequestRate = rate
	}
	if v, ok := getString(cfg, "daemon", "request-burst"); ok {
		burst, err := strconv.Atoi(v)
		if err != nil || burst <= 0 {
			return nil, fmt.Errorf("cannot parse request-burst %q in %s: not a positive integer", v, path)
		}
		conf.RequestBurst = burst
	}
	if v, ok := getString(cfg, "daemon", "timeout"); ok {
		timeout, err := time.ParseDuration(v)
		if err != nil || timeout <= 0 {
			return nil, fmt.Errorf("cannot parse timeout %q in %s: not a positive duration", v, path)
		}
		conf.Timeout = timeout
	}
	if v, ok := getString(cfg, "filesystems", "disabled"); ok {
		conf.DisabledFilesystems = strutil.CommaSeparatedList(v)
	}
	if v, ok := getString(cfg, "devices", "ignore"); ok {
		patterns := strutil.CommaSeparatedList(v)
		for _, pattern := range patterns {
			if !doublestar.ValidatePattern(pattern) {
				return nil, fmt.Errorf("cannot parse ignore pattern %q in %s: invalid pattern", pattern, path)
			}
		}
		conf.IgnoreDevices = patterns
	}

	return conf, nil
}

// Ignored reports whether the device at path matches one of the ignore
// patterns.
func (c *Config) Ignored(path string) bool {
	for _, pattern := range c.IgnoreDevices {
		// patterns were validated on load
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// Policy returns the mount option policy without the disabled
// filesystems.
func (c *Config) Policy() (*mountopts.Policy, error) {
	return mountopts.DefaultPolicy().Without(c.DisabledFilesystems...)
}
