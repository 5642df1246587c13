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

// Package logger is the global logger used by mediad and its tools.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/canonical/mediad/osutil"
)

// A Logger writes notices, and debug messages when debugging is on.
type Logger interface {
	// Notice is for messages that the user should see
	Notice(msg string)
	// Debug is for messages that the user should be able to find if they're debugging something
	Debug(msg string)
}

const (
	// DefaultFlags are passed to the default console log.Logger
	DefaultFlags = log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile
)

// Line prefixes journald reads as syslog priorities, see sd-daemon(3).
const (
	journalNotice = "<5>"
	journalDebug  = "<7>"
)

type nullLogger struct{}

func (nullLogger) Notice(string) {}
func (nullLogger) Debug(string)  {}

// NullLogger is a logger that does nothing
var NullLogger = nullLogger{}

var (
	logger Logger = NullLogger
	lock   sync.Mutex
)

// Panicf notifies the user and then panics
func Panicf(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)

	lock.Lock()
	defer lock.Unlock()

	logger.Notice("PANIC " + msg)
	panic(msg)
}

// Noticef notifies the user of something
func Noticef(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)

	lock.Lock()
	defer lock.Unlock()

	logger.Notice(msg)
}

// Debugf records something in the debug log
func Debugf(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)

	lock.Lock()
	defer lock.Unlock()

	logger.Debug(msg)
}

// MockLogger replaces the existing logger with a buffer and returns
// the log buffer and a restore function.
func MockLogger() (buf *bytes.Buffer, restore func()) {
	buf = &bytes.Buffer{}
	oldLogger := logger
	l, err := New(buf, DefaultFlags, nil)
	if err != nil {
		panic(err)
	}
	SetLogger(l)
	return buf, func() {
		SetLogger(oldLogger)
	}
}

// SetLogger sets the global logger to the given one
func SetLogger(l Logger) {
	lock.Lock()
	defer lock.Unlock()

	logger = l
}

// SetDebug forces debug output on or off for the current logger,
// regardless of MEDIAD_DEBUG. It is a no-op for loggers that are not
// created by this package.
func SetDebug(enabled bool) {
	lock.Lock()
	defer lock.Unlock()

	if l, ok := logger.(*Log); ok {
		l.forceDebug = enabled
	}
}

// LoggerOptions tweak what New creates.
type LoggerOptions struct {
	// Journal prefixes every line with its priority for journald.
	Journal bool
	// ForceDebug prints debug messages even without MEDIAD_DEBUG.
	ForceDebug bool
}

// Log is the Logger created by New.
type Log struct {
	notice *log.Logger
	debug  *log.Logger

	forceDebug bool
}

func (l *Log) debugEnabled() bool {
	return l.forceDebug || osutil.GetenvBool("MEDIAD_DEBUG")
}

// Debug only prints if MEDIAD_DEBUG is set or debugging is forced
func (l *Log) Debug(msg string) {
	if l.debugEnabled() {
		l.debug.Output(3, "DEBUG: "+msg)
	}
}

// Notice alerts the user about something
func (l *Log) Notice(msg string) {
	l.notice.Output(3, msg)
}

// New creates a Logger writing to w with the given log.Logger flags.
func New(w io.Writer, flag int, opts *LoggerOptions) (Logger, error) {
	if opts == nil {
		opts = &LoggerOptions{}
	}
	noticePrefix, debugPrefix := "", ""
	if opts.Journal {
		noticePrefix, debugPrefix = journalNotice, journalDebug
	}
	return &Log{
		notice:     log.New(w, noticePrefix, flag),
		debug:      log.New(w, debugPrefix, flag),
		forceDebug: opts.ForceDebug,
	}, nil
}

// onJournal reports whether f is the stream systemd connected to the
// journal, as announced in JOURNAL_STREAM ("<device>:<inode>").
func onJournal(f *os.File) bool {
	dev, ino, ok := strings.Cut(os.Getenv("JOURNAL_STREAM"), ":")
	if !ok {
		return false
	}
	wantDev, err := strconv.ParseUint(dev, 10, 64)
	if err != nil {
		return false
	}
	wantIno, err := strconv.ParseUint(ino, 10, 64)
	if err != nil {
		return false
	}
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		return false
	}
	return uint64(st.Dev) == wantDev && uint64(st.Ino) == wantIno
}

// SimpleSetup creates the default logger on stderr. Under systemd the
// journal timestamps lines itself.
func SimpleSetup() error {
	opts := &LoggerOptions{Journal: onJournal(os.Stderr)}
	flags := log.Lshortfile
	if !opts.Journal && os.Getenv("TERM") != "" {
		flags = DefaultFlags
	}
	l, err := New(os.Stderr, flags, opts)
	if err == nil {
		SetLogger(l)
	}
	return err
}
