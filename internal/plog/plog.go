// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

// Implementation of simple logging interfaces efficient in production
// environments, aiming at being as fast as possible when disabled. The
// underlying implementation is swapped for a disabled logger which does
// nothing when called, so that a disabled call costs the interface call
// indirection only. This matters here since some log calls sit on the
// pipeline's streaming thread.

package plog

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the log level. Higher levels include lowers.
type LogLevel int

const (
	// Disabled value.
	Disabled LogLevel = iota
	// Error logs.
	Error
	// Info to Error logs.
	Info
	// Debug to Error logs.
	Debug
)

// String representations of log levels.
const (
	DisabledString = "disabled"
	ErrorString    = "error"
	InfoString     = "info"
	DebugString    = "debug"
)

// LogLevel type stringer.
func (l LogLevel) String() string {
	switch l {
	case Error:
		return ErrorString
	case Info:
		return InfoString
	case Debug:
		return DebugString
	}
	return DisabledString
}

// ParseLogLevel returns the logger level corresponding to the string
// representation `level`. The returned LogLevel is Disabled when none matches.
func ParseLogLevel(level string) LogLevel {
	switch strings.TrimSpace(strings.ToLower(level)) {
	case DebugString:
		return Debug
	case InfoString:
		return Info
	case ErrorString:
		return Error
	default:
		return Disabled
	}
}

// Logger structure wrapping logger interfaces, one per level.
type Logger struct {
	DebugLevelLogger
}

type (
	DebugLevelLogger interface {
		DebugLogger
		InfoLevelLogger
	}

	InfoLevelLogger interface {
		InfoLogger
		ErrorLevelLogger
	}

	ErrorLevelLogger ErrorLogger

	ErrorLogger interface {
		Error(err error)
	}

	InfoLogger interface {
		Info(v ...interface{})
		Infof(format string, v ...interface{})
	}

	DebugLogger interface {
		Debug(v ...interface{})
		Debugf(format string, v ...interface{})
	}
)

// NewLogger returns a Logger instance wrapping one logger instance per level.
// They can thus be individually enabled or disabled.
func NewLogger(level LogLevel, out io.Writer) *Logger {
	var levelLogger DebugLevelLogger
	switch level {
	case Debug:
		levelLogger = debugLevelLogger{
			infoLevelLogger: infoLevelLogger{
				errorLevelLogger: newErrorLevelLogger(out, true),
			},
		}
	case Info:
		levelLogger = infoLevelLogger{
			errorLevelLogger: newErrorLevelLogger(out, false),
		}
	case Error:
		levelLogger = newErrorLevelLogger(out, false)
	default:
		levelLogger = disabledLogger{}
	}

	return &Logger{
		DebugLevelLogger: levelLogger,
	}
}

func newErrorLevelLogger(out io.Writer, debugLevel bool) *errorLevelLogger {
	return &errorLevelLogger{
		writer:     &logWriter{out: out},
		debugLevel: debugLevel,
	}
}

type (
	debugLevelLogger struct {
		infoLevelLogger
	}

	infoLevelLogger struct {
		*errorLevelLogger
	}

	errorLevelLogger struct {
		disabledLogger
		writer     *logWriter
		debugLevel bool
	}

	disabledLogger struct{}
)

func (l debugLevelLogger) Debug(v ...interface{}) {
	l.writer.write(Debug, fmt.Sprint(v...))
}

func (l debugLevelLogger) Debugf(format string, v ...interface{}) {
	l.writer.write(Debug, fmt.Sprintf(format, v...))
}

func (l infoLevelLogger) Info(v ...interface{}) {
	l.writer.write(Info, fmt.Sprint(v...))
}

func (l infoLevelLogger) Infof(format string, v ...interface{}) {
	l.writer.write(Info, fmt.Sprintf(format, v...))
}

func (l *errorLevelLogger) Error(err error) {
	// Most detailed error format, including stacktrace when available.
	var format string
	if l.debugLevel {
		format = "%+v"
	} else {
		format = "%v"
	}
	l.writer.write(Error, fmt.Sprintf(format, err))
}

func (disabledLogger) Error(error)                   {}
func (disabledLogger) Info(...interface{})           {}
func (disabledLogger) Infof(string, ...interface{})  {}
func (disabledLogger) Debug(...interface{})          {}
func (disabledLogger) Debugf(string, ...interface{}) {}

// Time formatting layout with microsecond precision.
const TimestampLayout = "2006-01-02T15:04:05.999999"

type logWriter struct {
	// Log calls come from both the streaming and the control threads of the
	// pipeline.
	mu  sync.Mutex
	out io.Writer
}

func (l *logWriter) write(level LogLevel, message string) {
	var str strings.Builder
	str.WriteString("dxvahook/")
	str.WriteString(level.String())
	str.WriteString(" - ")
	str.WriteString(time.Now().Format(TimestampLayout))
	str.WriteString(" - ")
	str.WriteString(message)
	str.WriteString("\n")
	l.mu.Lock()
	_, _ = io.WriteString(l.out, str.String())
	l.mu.Unlock()
}
