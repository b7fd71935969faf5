// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package log provides leveled logging for the dareblopy pipeline.
//
// Time/Date are not logged by default because systemd (or whatever supervises
// the process) usually adds them for us; call SetLogDateTime(true) to
// restore them.
//
// Uses these prefixes: https://www.freedesktop.org/software/systemd/man/sd-daemon.html
package log

import (
	"fmt"
	"io"
	"log"
	"os"
)

var logDateTime bool

var (
	debugWriter io.Writer = os.Stderr
	infoWriter  io.Writer = os.Stderr
	warnWriter  io.Writer = os.Stderr
	errWriter   io.Writer = os.Stderr
	critWriter  io.Writer = os.Stderr
)

const (
	debugPrefix = "<7>[DEBUG]    "
	infoPrefix  = "<6>[INFO]     "
	warnPrefix  = "<4>[WARNING]  "
	errPrefix   = "<3>[ERROR]    "
	critPrefix  = "<2>[CRITICAL] "
)

var (
	debugLog *log.Logger = log.New(debugWriter, debugPrefix, 0)
	infoLog  *log.Logger = log.New(infoWriter, infoPrefix, 0)
	warnLog  *log.Logger = log.New(warnWriter, warnPrefix, log.Lshortfile)
	errLog   *log.Logger = log.New(errWriter, errPrefix, log.Llongfile)
	critLog  *log.Logger = log.New(critWriter, critPrefix, log.Llongfile)

	debugTimeLog *log.Logger = log.New(debugWriter, debugPrefix, log.LstdFlags)
	infoTimeLog  *log.Logger = log.New(infoWriter, infoPrefix, log.LstdFlags)
	warnTimeLog  *log.Logger = log.New(warnWriter, warnPrefix, log.LstdFlags|log.Lshortfile)
	errTimeLog   *log.Logger = log.New(errWriter, errPrefix, log.LstdFlags|log.Llongfile)
	critTimeLog  *log.Logger = log.New(critWriter, critPrefix, log.LstdFlags|log.Llongfile)
)

// SetLevel discards writers below lvl. Valid values, from quietest to
// loudest: "crit", "err", "warn", "info", "debug".
func SetLevel(lvl string) {
	switch lvl {
	case "crit":
		errWriter = io.Discard
		fallthrough
	case "err":
		warnWriter = io.Discard
		fallthrough
	case "warn":
		infoWriter = io.Discard
		fallthrough
	case "info":
		debugWriter = io.Discard
	case "debug":
	default:
		fmt.Printf("log: invalid level %q, using \"debug\"\n", lvl)
		SetLevel("debug")
		return
	}
	rebuild()
}

func rebuild() {
	debugLog = log.New(debugWriter, debugPrefix, 0)
	infoLog = log.New(infoWriter, infoPrefix, 0)
	warnLog = log.New(warnWriter, warnPrefix, log.Lshortfile)
	errLog = log.New(errWriter, errPrefix, log.Llongfile)
	critLog = log.New(critWriter, critPrefix, log.Llongfile)
	debugTimeLog = log.New(debugWriter, debugPrefix, log.LstdFlags)
	infoTimeLog = log.New(infoWriter, infoPrefix, log.LstdFlags)
	warnTimeLog = log.New(warnWriter, warnPrefix, log.LstdFlags|log.Lshortfile)
	errTimeLog = log.New(errWriter, errPrefix, log.LstdFlags|log.Llongfile)
	critTimeLog = log.New(critWriter, critPrefix, log.LstdFlags|log.Llongfile)
}

// SetLogDateTime toggles the date/time prefix on every line.
func SetLogDateTime(on bool) {
	logDateTime = on
}

func pick(dt, t *log.Logger) *log.Logger {
	if logDateTime {
		return t
	}
	return dt
}

func Debug(v ...interface{}) {
	if debugWriter != io.Discard {
		pick(debugLog, debugTimeLog).Output(2, fmt.Sprint(v...))
	}
}

func Info(v ...interface{}) {
	if infoWriter != io.Discard {
		pick(infoLog, infoTimeLog).Output(2, fmt.Sprint(v...))
	}
}

func Warn(v ...interface{}) {
	if warnWriter != io.Discard {
		pick(warnLog, warnTimeLog).Output(2, fmt.Sprint(v...))
	}
}

func Error(v ...interface{}) {
	if errWriter != io.Discard {
		pick(errLog, errTimeLog).Output(2, fmt.Sprint(v...))
	}
}

func Crit(v ...interface{}) {
	if critWriter != io.Discard {
		pick(critLog, critTimeLog).Output(2, fmt.Sprint(v...))
	}
}

// Abort logs at critical level and terminates the process. Used for startup
// failures where there is no sane way to continue (bad config, unreadable
// manifest database).
func Abort(v ...interface{}) {
	Crit(v...)
	os.Exit(1)
}

func Debugf(format string, v ...interface{}) {
	if debugWriter != io.Discard {
		pick(debugLog, debugTimeLog).Output(2, fmt.Sprintf(format, v...))
	}
}

func Infof(format string, v ...interface{}) {
	if infoWriter != io.Discard {
		pick(infoLog, infoTimeLog).Output(2, fmt.Sprintf(format, v...))
	}
}

func Warnf(format string, v ...interface{}) {
	if warnWriter != io.Discard {
		pick(warnLog, warnTimeLog).Output(2, fmt.Sprintf(format, v...))
	}
}

func Errorf(format string, v ...interface{}) {
	if errWriter != io.Discard {
		pick(errLog, errTimeLog).Output(2, fmt.Sprintf(format, v...))
	}
}

func Critf(format string, v ...interface{}) {
	if critWriter != io.Discard {
		pick(critLog, critTimeLog).Output(2, fmt.Sprintf(format, v...))
	}
}

func Abortf(format string, v ...interface{}) {
	Critf(format, v...)
	os.Exit(1)
}
