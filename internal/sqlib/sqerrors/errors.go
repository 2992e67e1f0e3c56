// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

// Package sqerrors annotates errors with a timestamp and a stack trace, and
// walks error chains whether they were built by pkg/errors (Cause) or by
// xerrors (Unwrap).
package sqerrors

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/xerrors"
)

type Causer interface {
	Cause() error
}

type StackTracer interface {
	StackTrace() errors.StackTrace
}

type Timestamper interface {
	Timestamp() time.Time
}

type withTimestamp struct {
	error
	timestamp time.Time
}

// WithTimestamp annotates the given error `err` with the current time. The
// returned error value implements interface Timestamper.
func WithTimestamp(err error) error {
	return withTimestamp{
		error:     err,
		timestamp: time.Now(),
	}
}

func (e withTimestamp) Timestamp() time.Time { return e.timestamp }
func (e withTimestamp) Unwrap() error        { return e.error }
func (e withTimestamp) Cause() error         { return e.error }

func (e withTimestamp) Format(f fmt.State, c rune) {
	if formatter, ok := e.error.(fmt.Formatter); ok {
		formatter.Format(f, c)
	} else {
		_, _ = fmt.Fprintf(f, "%v", e.error)
	}
}

// New returns a new error annotated with a timestamp, a message and a stack
// trace.
func New(message string) error {
	return WithTimestamp(errors.New(message))
}

// Errorf returns a new errors whose message is formatted by `fmt.Sprintf`.
func Errorf(format string, args ...interface{}) error {
	return New(fmt.Sprintf(format, args...))
}

// Wrap annotates the given error `err` with a timestamp, a message and a stack
// trace.
func Wrap(err error, message string) error {
	return WithTimestamp(errors.Wrap(err, message))
}

// Wrapf is Wrap with a message formatted by `fmt.Sprintf`.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// StackTrace returns the deepest stack trace found in the chain of errors.
func StackTrace(err error) errors.StackTrace {
	var st errors.StackTrace
	for err != nil {
		if tracer, ok := err.(StackTracer); ok {
			st = tracer.StackTrace()
		}
		err = next(err)
	}
	return st
}

// Timestamp returns the timestamp of the first error of the chain created
// by WithTimestamp.
func Timestamp(err error) (t time.Time, ok bool) {
	for err != nil {
		if ts, ok := err.(Timestamper); ok {
			return ts.Timestamp(), true
		}
		err = next(err)
	}
	return time.Time{}, false
}

func next(err error) error {
	switch actual := err.(type) {
	case Causer:
		return actual.Cause()
	case xerrors.Wrapper:
		return actual.Unwrap()
	default:
		return nil
	}
}

// ErrorCollection is a list of errors reported as one.
type ErrorCollection []error

func (c ErrorCollection) Error() string {
	var s strings.Builder
	s.WriteString("multiple errors occurred:")
	for i, e := range c {
		fmt.Fprintf(&s, " (error %d) %s;", i+1, e.Error())
	}
	return s.String()[:s.Len()-1]
}

func (c *ErrorCollection) Add(e error) {
	if e != nil {
		*c = append(*c, e)
	}
}

func (c ErrorCollection) ToError() error {
	if len(c) == 0 {
		return nil
	}
	return c
}
